package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/config"
	httptransport "github.com/example/classroom-booking/internal/http"
	"github.com/example/classroom-booking/internal/occupancy"
	"github.com/example/classroom-booking/internal/persistence"
	"github.com/example/classroom-booking/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.SQLite.DSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	cachedOccupations, err := occupancy.NewCachedSource(store.Occupations, cfg.Occupancy.CacheSize, logger)
	if err != nil {
		logger.Error("failed to build occupation cache", "error", err)
		os.Exit(1)
	}

	roomCatalog := newRoomCatalogAdapter(store.Rooms)
	occupationService := application.NewOccupationServiceWithLogger(store.Occupations, roomCatalog, idGenerator, now, logger)
	occupationService.SetInvalidator(cachedOccupations)
	roomService := application.NewRoomServiceWithLogger(store.Rooms, idGenerator, now, logger)
	occupancyService := application.NewOccupancyServiceWithLogger(cachedOccupations, store.Rooms, logger)

	watcher := occupancy.NewWatcher(occupancyService, cfg.Occupancy.PollInterval, now, logger)
	releaseWatcher := watcher.Subscribe(func() {
		logger.Info("occupied room set changed")
	})
	defer releaseWatcher()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Occupations: httptransport.NewOccupationHandler(occupationService, logger),
		Rooms:       httptransport.NewRoomHandler(roomService, logger),
		Occupancy:   httptransport.NewOccupancyHandler(occupancyService, now, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type roomCatalogAdapter struct {
	repo persistence.RoomRepository
}

func newRoomCatalogAdapter(repo persistence.RoomRepository) *roomCatalogAdapter {
	return &roomCatalogAdapter{repo: repo}
}

func (a *roomCatalogAdapter) RoomExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetRoom(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
