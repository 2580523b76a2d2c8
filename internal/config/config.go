package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config captures environment driven configuration values for the booking
// service.
type Config struct {
	HTTP struct {
		Host string `env:"BOOKING_HTTP_HOST" envDefault:""`
		Port int    `env:"BOOKING_HTTP_PORT" envDefault:"8080"`
	}

	SQLite struct {
		DSN string `env:"BOOKING_SQLITE_DSN" envDefault:"file:booking.db"`
	}

	Occupancy struct {
		PollInterval time.Duration `env:"BOOKING_POLL_INTERVAL" envDefault:"10s"`
		CacheSize    int           `env:"BOOKING_CACHE_SIZE" envDefault:"256"`
	}
}

// Load parses configuration from the process environment, applying defaults
// for unset variables and validating the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	invalid := make([]string, 0, 2)
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		invalid = append(invalid, "BOOKING_HTTP_PORT")
	}
	if strings.TrimSpace(cfg.SQLite.DSN) == "" {
		invalid = append(invalid, "BOOKING_SQLITE_DSN")
	}
	if cfg.Occupancy.PollInterval <= 0 {
		invalid = append(invalid, "BOOKING_POLL_INTERVAL")
	}
	if cfg.Occupancy.CacheSize <= 0 {
		invalid = append(invalid, "BOOKING_CACHE_SIZE")
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// ListenAddr returns the host:port the HTTP server should bind to.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}
