package persistence

import (
	"context"

	"github.com/example/classroom-booking/internal/booking"
)

// RoomRepository manages the classroom catalog.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	UpdateRoom(ctx context.Context, room Room) error
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// OccupationRepository manages recurring room occupations.
//
// CreateOccupation is the authoritative conflict gate: it re-reads the
// room's occupations and re-runs conflict detection inside the write
// transaction, returning *booking.ConflictError when the candidate lost a
// race that an earlier optimistic check did not see.
type OccupationRepository interface {
	CreateOccupation(ctx context.Context, occupation booking.Occupation) error
	GetOccupation(ctx context.Context, id string) (booking.Occupation, error)
	DeleteOccupation(ctx context.Context, id string) error
	ListOccupationsForRoom(ctx context.Context, roomID string) ([]booking.Occupation, error)
}
