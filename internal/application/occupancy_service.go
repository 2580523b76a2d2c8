package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/classroom-booking/internal/booking"
	"github.com/example/classroom-booking/internal/persistence"
)

// OccupationSource supplies the occupation set used for occupancy queries.
// It is satisfied by the repository directly or by a caching layer in front
// of it.
type OccupationSource interface {
	ListOccupationsForRoom(ctx context.Context, roomID string) ([]booking.Occupation, error)
}

// RoomLister enumerates the classroom catalog for bulk occupancy queries.
type RoomLister interface {
	ListRooms(ctx context.Context) ([]persistence.Room, error)
}

// RoomOccupancy pairs a room with the occupation covering it at the queried
// instant.
type RoomOccupancy struct {
	Room       persistence.Room
	Occupation booking.Occupation
}

// OccupancyService answers "is room R occupied at (date, time)". It is a
// stateless predicate over data fetched fresh each call; occupancy is never
// stored.
type OccupancyService struct {
	occupations OccupationSource
	rooms       RoomLister
	logger      *slog.Logger
}

// NewOccupancyService wires dependencies for occupancy queries.
func NewOccupancyService(occupations OccupationSource, rooms RoomLister) *OccupancyService {
	return NewOccupancyServiceWithLogger(occupations, rooms, nil)
}

// NewOccupancyServiceWithLogger constructs an occupancy service with a
// specified logger.
func NewOccupancyServiceWithLogger(occupations OccupationSource, rooms RoomLister, logger *slog.Logger) *OccupancyService {
	return &OccupancyService{occupations: occupations, rooms: rooms, logger: defaultLogger(logger)}
}

// OccupyingBooking returns the occupation covering the room at the given
// date and time, or nil when the room is free. More than one match means an
// occupation bypassed conflict detection on its way into the store; that is
// logged, and the first match is returned.
func (s *OccupancyService) OccupyingBooking(ctx context.Context, roomID string, date booking.Date, t booking.TimeOfDay) (*booking.Occupation, error) {
	if s == nil {
		return nil, fmt.Errorf("OccupancyService is nil")
	}

	occupations, err := s.occupations.ListOccupationsForRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occupations for room %s: %w", roomID, err)
	}

	matches := booking.OccupyingBookings(occupations, date, t)
	if len(matches) == 0 {
		return nil, nil
	}
	if len(matches) > 1 {
		serviceLogger(ctx, s.logger, "OccupancyService", "OccupyingBooking").WarnContext(ctx,
			"multiple occupations cover the same instant, conflict detection was bypassed",
			"room_id", roomID, "date", date.String(), "time", t.String(), "count", len(matches))
	}
	return &matches[0], nil
}

// OccupiedRooms classifies every active room at the given instant and
// returns the occupied ones with their covering occupation. It applies the
// same predicate as OccupyingBooking, batched over the catalog.
func (s *OccupancyService) OccupiedRooms(ctx context.Context, date booking.Date, t booking.TimeOfDay) ([]RoomOccupancy, error) {
	if s == nil {
		return nil, fmt.Errorf("OccupancyService is nil")
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	var occupied []RoomOccupancy
	for _, room := range rooms {
		if !room.IsActive {
			continue
		}
		occupation, err := s.OccupyingBooking(ctx, room.ID, date, t)
		if err != nil {
			return nil, err
		}
		if occupation != nil {
			occupied = append(occupied, RoomOccupancy{Room: room, Occupation: *occupation})
		}
	}
	return occupied, nil
}
