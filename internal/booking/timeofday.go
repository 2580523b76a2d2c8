package booking

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with minute resolution, stored as minutes
// since midnight.
type TimeOfDay int

// NewTimeOfDay constructs a TimeOfDay from an hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses the wire form "15:04".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("booking: invalid time %q: %w", value, err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

// Minute returns the minute component.
func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// String renders the wire form "15:04".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalJSON encodes the time as a "15:04" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a "15:04" string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeWindow is a daily interval, start inclusive and end exclusive. An
// occupation ending at 10:00 does not collide with one starting at 10:00.
type TimeWindow struct {
	Start TimeOfDay `json:"start_time"`
	End   TimeOfDay `json:"end_time"`
}

// Overlaps reports whether two windows share any instant.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && other.Start < w.End
}

// Contains reports whether t falls within the window, honoring the
// start-inclusive end-exclusive convention.
func (w TimeWindow) Contains(t TimeOfDay) bool {
	return t >= w.Start && t < w.End
}

// Intersect returns the shared portion of two windows. The second return is
// false when the windows do not overlap.
func (w TimeWindow) Intersect(other TimeWindow) (TimeWindow, bool) {
	if !w.Overlaps(other) {
		return TimeWindow{}, false
	}
	start := w.Start
	if other.Start > start {
		start = other.Start
	}
	end := w.End
	if other.End < end {
		end = other.End
	}
	return TimeWindow{Start: start, End: end}, true
}
