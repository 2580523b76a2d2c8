package occupancy

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/classroom-booking/internal/booking"
	"github.com/example/classroom-booking/internal/testfixtures"
)

type countingSource struct {
	mu    sync.Mutex
	calls map[string]int
	fail  error
}

func (s *countingSource) ListOccupationsForRoom(_ context.Context, roomID string) ([]booking.Occupation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[roomID]++
	if s.fail != nil {
		return nil, s.fail
	}
	return []booking.Occupation{testfixtures.NewOccupation(testfixtures.WithOccupationRoom(roomID))}, nil
}

func (s *countingSource) callCount(roomID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[roomID]
}

func TestCachedSource(t *testing.T) {
	t.Parallel()

	t.Run("serves repeated reads from the cache", func(t *testing.T) {
		t.Parallel()

		source := &countingSource{}
		cached, err := NewCachedSource(source, 8, nil)
		if err != nil {
			t.Fatalf("NewCachedSource: %v", err)
		}

		for range 3 {
			occupations, err := cached.ListOccupationsForRoom(context.Background(), "room-001")
			if err != nil {
				t.Fatalf("ListOccupationsForRoom: %v", err)
			}
			if len(occupations) != 1 {
				t.Fatalf("expected 1 occupation, got %d", len(occupations))
			}
		}
		if got := source.callCount("room-001"); got != 1 {
			t.Fatalf("expected a single source fetch, got %d", got)
		}
	})

	t.Run("invalidation forces a refetch", func(t *testing.T) {
		t.Parallel()

		source := &countingSource{}
		cached, err := NewCachedSource(source, 8, nil)
		if err != nil {
			t.Fatalf("NewCachedSource: %v", err)
		}

		if _, err := cached.ListOccupationsForRoom(context.Background(), "room-001"); err != nil {
			t.Fatalf("ListOccupationsForRoom: %v", err)
		}
		cached.InvalidateRoom("room-001")
		if _, err := cached.ListOccupationsForRoom(context.Background(), "room-001"); err != nil {
			t.Fatalf("ListOccupationsForRoom: %v", err)
		}
		if got := source.callCount("room-001"); got != 2 {
			t.Fatalf("expected 2 source fetches, got %d", got)
		}
	})

	t.Run("does not cache fetch failures", func(t *testing.T) {
		t.Parallel()

		source := &countingSource{fail: errors.New("database is locked")}
		cached, err := NewCachedSource(source, 8, nil)
		if err != nil {
			t.Fatalf("NewCachedSource: %v", err)
		}

		if _, err := cached.ListOccupationsForRoom(context.Background(), "room-001"); err == nil {
			t.Fatal("expected fetch error")
		}

		source.mu.Lock()
		source.fail = nil
		source.mu.Unlock()

		occupations, err := cached.ListOccupationsForRoom(context.Background(), "room-001")
		if err != nil {
			t.Fatalf("ListOccupationsForRoom after recovery: %v", err)
		}
		if len(occupations) != 1 {
			t.Fatalf("expected 1 occupation, got %d", len(occupations))
		}
		if got := source.callCount("room-001"); got != 2 {
			t.Fatalf("expected 2 source fetches, got %d", got)
		}
	})

	t.Run("evicts least recently used rooms", func(t *testing.T) {
		t.Parallel()

		source := &countingSource{}
		cached, err := NewCachedSource(source, 1, nil)
		if err != nil {
			t.Fatalf("NewCachedSource: %v", err)
		}

		if _, err := cached.ListOccupationsForRoom(context.Background(), "room-001"); err != nil {
			t.Fatalf("ListOccupationsForRoom: %v", err)
		}
		if _, err := cached.ListOccupationsForRoom(context.Background(), "room-002"); err != nil {
			t.Fatalf("ListOccupationsForRoom: %v", err)
		}
		if _, err := cached.ListOccupationsForRoom(context.Background(), "room-001"); err != nil {
			t.Fatalf("ListOccupationsForRoom: %v", err)
		}
		if got := source.callCount("room-001"); got != 2 {
			t.Fatalf("expected room-001 to be refetched after eviction, got %d fetches", got)
		}
	})
}
