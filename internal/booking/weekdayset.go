package booking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a set of weekdays stored as a bitmask. The numbering follows
// time.Weekday: Sunday=0 through Saturday=6, uniformly on the wire and in
// storage.
type WeekdaySet uint8

// NewWeekdaySet builds a set from the given weekdays. Duplicates collapse.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var set WeekdaySet
	for _, day := range days {
		set |= 1 << uint(day)
	}
	return set
}

// Contains reports whether day is in the set.
func (s WeekdaySet) Contains(day time.Weekday) bool {
	return s&(1<<uint(day)) != 0
}

// Intersect returns the weekdays present in both sets.
func (s WeekdaySet) Intersect(other WeekdaySet) WeekdaySet {
	return s & other
}

// IsEmpty reports whether the set contains no weekdays.
func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Weekdays returns the members in Sunday-first order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		if s.Contains(day) {
			days = append(days, day)
		}
	}
	return days
}

// String renders the members as a comma separated list of weekday names.
func (s WeekdaySet) String() string {
	names := make([]string, 0, 7)
	for _, day := range s.Weekdays() {
		names = append(names, day.String())
	}
	return strings.Join(names, ", ")
}

// MarshalJSON encodes the set as a sorted array of integers 0-6, Sunday=0.
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	days := s.Weekdays()
	numbers := make([]int, len(days))
	for i, day := range days {
		numbers[i] = int(day)
	}
	return json.Marshal(numbers)
}

// UnmarshalJSON decodes an array of integers 0-6, Sunday=0. Values outside
// that range are rejected; repeated values collapse into the set.
func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var numbers []int
	if err := json.Unmarshal(data, &numbers); err != nil {
		return err
	}
	var set WeekdaySet
	for _, n := range numbers {
		if n < 0 || n > 6 {
			return fmt.Errorf("booking: invalid weekday %d: must be 0 (Sunday) through 6 (Saturday)", n)
		}
		set |= 1 << uint(n)
	}
	*s = set
	return nil
}
