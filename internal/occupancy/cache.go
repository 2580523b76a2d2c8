package occupancy

import (
	"context"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/classroom-booking/internal/booking"
)

// Source supplies a room's occupations.
type Source interface {
	ListOccupationsForRoom(ctx context.Context, roomID string) ([]booking.Occupation, error)
}

// CachedSource is an LRU cache in front of an occupation source. The polling
// watcher re-reads every room on each tick; without a cache that is a full
// repository scan every ten seconds. Entries are invalidation-driven: writes
// call InvalidateRoom, so there is no TTL.
type CachedSource struct {
	mu     sync.RWMutex
	source Source
	cache  *lru.Cache[string, []booking.Occupation]
	logger *slog.Logger
}

// NewCachedSource builds a cache holding at most size rooms.
func NewCachedSource(source Source, size int, logger *slog.Logger) (*CachedSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, []booking.Occupation](size)
	if err != nil {
		return nil, err
	}
	return &CachedSource{source: source, cache: cache, logger: logger}, nil
}

// ListOccupationsForRoom returns the cached occupation set for the room,
// fetching and storing it on miss. Fetch failures are returned, never cached.
func (c *CachedSource) ListOccupationsForRoom(ctx context.Context, roomID string) ([]booking.Occupation, error) {
	c.mu.RLock()
	occupations, ok := c.cache.Get(roomID)
	c.mu.RUnlock()
	if ok {
		return occupations, nil
	}

	occupations, err := c.source.ListOccupationsForRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache.Add(roomID, occupations)
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "occupation cache filled", "room_id", roomID, "count", len(occupations))
	return occupations, nil
}

// InvalidateRoom drops the cached occupation set for the room.
func (c *CachedSource) InvalidateRoom(roomID string) {
	c.mu.Lock()
	c.cache.Remove(roomID)
	c.mu.Unlock()
}
