package booking

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// ErrInvalidOccupation indicates an occupation violates a structural
// invariant and must be rejected before any conflict math runs.
var ErrInvalidOccupation = errors.New("booking: invalid occupation")

// Occupation is a recurring reservation of a room: a fixed daily time window
// applied to every qualifying weekday within an inclusive date range. It is
// not a single interval but a sequence of disjoint daily intervals.
type Occupation struct {
	ID          string     `json:"id"`
	RoomID      string     `json:"room_id"`
	Responsible string     `json:"responsible"`
	Label       string     `json:"label"`
	Dates       DateRange  `json:"dates"`
	Window      TimeWindow `json:"window"`
	Weekdays    WeekdaySet `json:"weekdays"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks the structural invariants: a non-empty weekday set, an
// ordered date range, and a positive time window. It never fails for
// well-formed input and reports nothing about conflicts.
func (o Occupation) Validate() error {
	if o.Dates.Start.After(o.Dates.End) {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidOccupation, o.Dates.Start, o.Dates.End)
	}
	if o.Window.Start >= o.Window.End {
		return fmt.Errorf("%w: start time %s is not before end time %s", ErrInvalidOccupation, o.Window.Start, o.Window.End)
	}
	if o.Weekdays.IsEmpty() {
		return fmt.Errorf("%w: weekday set is empty", ErrInvalidOccupation)
	}
	return nil
}

// AppliesOn reports whether the occupation is active on date: the date falls
// within the inclusive range and its weekday is selected.
func (o Occupation) AppliesOn(date Date) bool {
	return o.Dates.Contains(date) && o.Weekdays.Contains(date.Weekday())
}

// OccupiesAt reports whether the occupation covers the given date and
// wall-clock time, start inclusive and end exclusive.
func (o Occupation) OccupiesAt(date Date, t TimeOfDay) bool {
	return o.AppliesOn(date) && o.Window.Contains(t)
}

// ActiveDates returns the qualifying dates in chronological order as a lazy
// sequence. The sequence is finite, bounded by the date range, and can be
// ranged over any number of times. A range whose span excludes every
// selected weekday yields an empty sequence.
func (o Occupation) ActiveDates() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for date := o.Dates.Start; !date.After(o.Dates.End); date = date.Next() {
			if !o.Weekdays.Contains(date.Weekday()) {
				continue
			}
			if !yield(date) {
				return
			}
		}
	}
}

// Summary renders a human readable description of the recurrence, e.g.
// "Monday, Wednesday from 2024-03-01 to 2024-06-01, 08:00-10:00".
func (o Occupation) Summary() string {
	return fmt.Sprintf("%s from %s to %s, %s-%s",
		o.Weekdays, o.Dates.Start, o.Dates.End, o.Window.Start, o.Window.End)
}
