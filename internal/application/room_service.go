package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/classroom-booking/internal/persistence"
)

// RoomRepository captures the persistence operations needed by the service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room persistence.Room) error
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
	UpdateRoom(ctx context.Context, room persistence.Room) error
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]persistence.Room, error)
}

// RoomService orchestrates validation and persistence for the classroom
// catalog. The room record carries no occupancy state; that is derived from
// the occupation set at query time.
type RoomService struct {
	rooms       RoomRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new room.
func (s *RoomService) CreateRoom(ctx context.Context, input RoomInput) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom", "name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	vErr := validateRoomInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	room = persistence.Room{
		ID:           s.idGenerator(),
		Name:         strings.TrimSpace(input.Name),
		Building:     strings.TrimSpace(input.Building),
		Floor:        input.Floor,
		Capacity:     input.Capacity,
		Desks:        input.Desks,
		Chairs:       input.Chairs,
		Computers:    input.Computers,
		HasProjector: input.HasProjector,
		IsActive:     input.IsActive,
		CreatedAt:    s.now(),
	}
	room.UpdatedAt = room.CreatedAt

	if err = mapRoomRepoError(s.rooms.CreateRoom(ctx, room)); err != nil {
		room = persistence.Room{}
		return
	}
	return
}

// GetRoom retrieves a room by ID.
func (s *RoomService) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if s == nil {
		return persistence.Room{}, fmt.Errorf("RoomService is nil")
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return persistence.Room{}, mapRoomRepoError(err)
	}
	return room, nil
}

// UpdateRoom validates input and updates an existing room.
func (s *RoomService) UpdateRoom(ctx context.Context, id string, input RoomInput) (room persistence.Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom", "room_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	vErr := validateRoomInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	room = existing
	room.Name = strings.TrimSpace(input.Name)
	room.Building = strings.TrimSpace(input.Building)
	room.Floor = input.Floor
	room.Capacity = input.Capacity
	room.Desks = input.Desks
	room.Chairs = input.Chairs
	room.Computers = input.Computers
	room.HasProjector = input.HasProjector
	room.IsActive = input.IsActive
	room.UpdatedAt = s.now()

	if err = mapRoomRepoError(s.rooms.UpdateRoom(ctx, room)); err != nil {
		room = persistence.Room{}
		return
	}
	return
}

// DeleteRoom removes a room from the catalog.
func (s *RoomService) DeleteRoom(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteRoom", "room_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room deleted")
	}()

	return mapRoomRepoError(s.rooms.DeleteRoom(ctx, id))
}

// ListRooms returns the whole catalog.
func (s *RoomService) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapRoomRepoError(err)
	}
	return rooms, nil
}

func validateRoomInput(input RoomInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if input.Floor < 0 {
		vErr.add("floor", "floor must not be negative")
	}
	if input.Desks < 0 || input.Chairs < 0 || input.Computers < 0 {
		vErr.add("furniture", "furniture counts must not be negative")
	}
	return vErr
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		return ErrAlreadyExists
	}
	return err
}
