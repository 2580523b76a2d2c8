package testfixtures

import (
	"context"
	"sort"
	"sync"

	"github.com/example/classroom-booking/internal/booking"
	"github.com/example/classroom-booking/internal/persistence"
)

// MemoryStore is an in-memory implementation of the persistence interfaces
// for tests. Writes go through the same conflict gate as the SQLite store so
// service tests exercise the authoritative re-check path.
type MemoryStore struct {
	mu          sync.RWMutex
	rooms       map[string]persistence.Room
	occupations map[string]booking.Occupation

	// FailListOccupations simulates an unavailable backend; conflict checks
	// must abort instead of assuming an empty occupation set.
	FailListOccupations error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:       make(map[string]persistence.Room),
		occupations: make(map[string]booking.Occupation),
	}
}

// CreateRoom stores a new room.
func (s *MemoryStore) CreateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return persistence.ErrConstraintViolation
	}
	s.rooms[room.ID] = room
	return nil
}

// GetRoom retrieves a room by ID.
func (s *MemoryStore) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

// UpdateRoom replaces an existing room.
func (s *MemoryStore) UpdateRoom(ctx context.Context, room persistence.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.rooms[room.ID] = room
	return nil
}

// DeleteRoom removes a room and its occupations.
func (s *MemoryStore) DeleteRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.rooms, id)
	for occID, occ := range s.occupations {
		if occ.RoomID == id {
			delete(s.occupations, occID)
		}
	}
	return nil
}

// ListRooms returns all rooms ordered by name.
func (s *MemoryStore) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]persistence.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// RoomExists reports whether a room is present in the catalog.
func (s *MemoryStore) RoomExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

// CreateOccupation stores a new occupation after re-running conflict
// detection against the room's current set, mirroring the SQLite store.
func (s *MemoryStore) CreateOccupation(ctx context.Context, occupation booking.Occupation) error {
	if err := occupation.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.occupations[occupation.ID]; ok {
		return persistence.ErrConstraintViolation
	}

	existing := s.occupationsForRoomLocked(occupation.RoomID)
	if conflicting := booking.FirstConflict(occupation, existing); conflicting != nil {
		return &booking.ConflictError{Conflicting: *conflicting}
	}

	s.occupations[occupation.ID] = occupation
	return nil
}

// GetOccupation retrieves an occupation by ID.
func (s *MemoryStore) GetOccupation(ctx context.Context, id string) (booking.Occupation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	occupation, ok := s.occupations[id]
	if !ok {
		return booking.Occupation{}, persistence.ErrNotFound
	}
	return occupation, nil
}

// DeleteOccupation removes an occupation.
func (s *MemoryStore) DeleteOccupation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.occupations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.occupations, id)
	return nil
}

// ListOccupationsForRoom returns the room's occupations in creation order.
func (s *MemoryStore) ListOccupationsForRoom(ctx context.Context, roomID string) ([]booking.Occupation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.FailListOccupations != nil {
		return nil, s.FailListOccupations
	}
	return s.occupationsForRoomLocked(roomID), nil
}

func (s *MemoryStore) occupationsForRoomLocked(roomID string) []booking.Occupation {
	var occupations []booking.Occupation
	for _, occupation := range s.occupations {
		if occupation.RoomID == roomID {
			occupations = append(occupations, occupation)
		}
	}
	sort.Slice(occupations, func(i, j int) bool {
		if occupations[i].CreatedAt.Equal(occupations[j].CreatedAt) {
			return occupations[i].ID < occupations[j].ID
		}
		return occupations[i].CreatedAt.Before(occupations[j].CreatedAt)
	})
	return occupations
}
