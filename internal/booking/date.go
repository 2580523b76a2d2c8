package booking

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day or timezone component.
// Occupancy is always evaluated in the room's local wall-clock terms, so the
// engine never converts dates between zones.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate constructs a Date from its components, normalizing out-of-range
// values the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf extracts the calendar date from an instant in that instant's location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses the wire form "2006-01-02".
func ParseDate(value string) (Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("booking: invalid date %q: %w", value, err)
	}
	return DateOf(t), nil
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday reports the day of the week d falls on.
func (d Date) Weekday() time.Weekday {
	return d.time().Weekday()
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.time().Before(other.time())
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.time().After(other.time())
}

// Equal reports whether d and other name the same calendar date.
func (d Date) Equal(other Date) bool {
	return d == other
}

// Next returns the following calendar day.
func (d Date) Next() Date {
	return DateOf(d.time().AddDate(0, 0, 1))
}

// DaysUntil returns the inclusive number of calendar days from d through
// other. A date and itself span one day; a negative result means other is
// earlier than d.
func (d Date) DaysUntil(other Date) int {
	return int(other.time().Sub(d.time())/(24*time.Hour)) + 1
}

// String renders the wire form "2006-01-02".
func (d Date) String() string {
	return d.time().Format("2006-01-02")
}

// MarshalJSON encodes the date as a "2006-01-02" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "2006-01-02" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}

// Contains reports whether date falls within the range, boundaries included.
func (r DateRange) Contains(date Date) bool {
	return !date.Before(r.Start) && !date.After(r.End)
}

// Intersect returns the overlap between two ranges. The second return is
// false when the ranges share no dates.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	start := r.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := r.End
	if other.End.Before(end) {
		end = other.End
	}
	if start.After(end) {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}
