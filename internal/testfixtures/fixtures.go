package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/classroom-booking/internal/booking"
	"github.com/example/classroom-booking/internal/persistence"
)

var (
	roomCounter       uint64
	occupationCounter uint64
)

var referenceTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// RoomOption configures a generated room fixture.
type RoomOption func(*persistence.Room)

// NewRoom returns a deterministic active room with optional overrides.
func NewRoom(opts ...RoomOption) persistence.Room {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	room := persistence.Room{
		ID:           fmt.Sprintf("room-%03d", idx),
		Name:         fmt.Sprintf("Room %03d", idx),
		Building:     "Main",
		Floor:        1,
		Capacity:     40,
		Desks:        20,
		Chairs:       40,
		HasProjector: true,
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(r *persistence.Room) {
		r.ID = id
	}
}

// WithRoomInactive marks the room as out of service.
func WithRoomInactive() RoomOption {
	return func(r *persistence.Room) {
		r.IsActive = false
	}
}

// OccupationOption configures a generated occupation fixture.
type OccupationOption func(*booking.Occupation)

// NewOccupation returns a deterministic occupation: Monday and Wednesday
// mornings 08:00-10:00 through March 2024, with optional overrides.
func NewOccupation(opts ...OccupationOption) booking.Occupation {
	idx := atomic.AddUint64(&occupationCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	occupation := booking.Occupation{
		ID:          fmt.Sprintf("occupation-%03d", idx),
		RoomID:      "room-001",
		Responsible: fmt.Sprintf("teacher-%03d@example.edu", idx),
		Label:       fmt.Sprintf("Subject %03d", idx),
		Dates: booking.DateRange{
			Start: booking.NewDate(2024, time.March, 4),
			End:   booking.NewDate(2024, time.March, 29),
		},
		Window: booking.TimeWindow{
			Start: booking.NewTimeOfDay(8, 0),
			End:   booking.NewTimeOfDay(10, 0),
		},
		Weekdays:  booking.NewWeekdaySet(time.Monday, time.Wednesday),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&occupation)
	}
	return occupation
}

// WithOccupationID overrides the generated occupation ID.
func WithOccupationID(id string) OccupationOption {
	return func(o *booking.Occupation) {
		o.ID = id
	}
}

// WithOccupationRoom points the occupation at a different room.
func WithOccupationRoom(roomID string) OccupationOption {
	return func(o *booking.Occupation) {
		o.RoomID = roomID
	}
}

// WithOccupationWindow overrides the daily time window.
func WithOccupationWindow(start, end booking.TimeOfDay) OccupationOption {
	return func(o *booking.Occupation) {
		o.Window = booking.TimeWindow{Start: start, End: end}
	}
}

// WithOccupationWeekdays overrides the weekday selection.
func WithOccupationWeekdays(days ...time.Weekday) OccupationOption {
	return func(o *booking.Occupation) {
		o.Weekdays = booking.NewWeekdaySet(days...)
	}
}

// WithOccupationDates overrides the date range.
func WithOccupationDates(start, end booking.Date) OccupationOption {
	return func(o *booking.Occupation) {
		o.Dates = booking.DateRange{Start: start, End: end}
	}
}
