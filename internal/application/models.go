package application

import "github.com/example/classroom-booking/internal/booking"

// OccupationInput captures caller provided occupation fields.
type OccupationInput struct {
	RoomID      string
	Responsible string
	Label       string
	StartDate   booking.Date
	EndDate     booking.Date
	StartTime   booking.TimeOfDay
	EndTime     booking.TimeOfDay
	Weekdays    booking.WeekdaySet
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name         string
	Building     string
	Floor        int
	Capacity     int
	Desks        int
	Chairs       int
	Computers    int
	HasProjector bool
	IsActive     bool
}

// CheckResult is the outcome of an optimistic conflict precheck. Conflicting
// is nil when the candidate can be booked. The precheck is a UX aid only:
// the authoritative decision is re-made at write time.
type CheckResult struct {
	CanBook     bool
	Conflicting *booking.Occupation
}
