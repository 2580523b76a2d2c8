package booking

import (
	"testing"
	"time"
)

func TestOccupyingBooking(t *testing.T) {
	t.Parallel()

	morning := occupation("101",
		NewWeekdaySet(time.Monday),
		NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
		NewTimeOfDay(8, 0), NewTimeOfDay(10, 0))
	morning.Label = "Algebra"
	afternoon := occupation("101",
		NewWeekdaySet(time.Monday),
		NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
		NewTimeOfDay(14, 0), NewTimeOfDay(16, 0))
	afternoon.Label = "Physics"

	occupations := []Occupation{morning, afternoon}
	monday := NewDate(2024, time.March, 11)

	t.Run("matches the covering occupation", func(t *testing.T) {
		t.Parallel()
		occ, ok := OccupyingBooking(occupations, monday, NewTimeOfDay(15, 0))
		if !ok {
			t.Fatal("expected the room to be occupied")
		}
		if occ.Label != "Physics" {
			t.Fatalf("expected the afternoon occupation, got %q", occ.Label)
		}
	})

	t.Run("free between windows", func(t *testing.T) {
		t.Parallel()
		if _, ok := OccupyingBooking(occupations, monday, NewTimeOfDay(11, 0)); ok {
			t.Fatal("expected the room to be free between windows")
		}
	})

	t.Run("free on unselected weekdays", func(t *testing.T) {
		t.Parallel()
		tuesday := NewDate(2024, time.March, 12)
		if _, ok := OccupyingBooking(occupations, tuesday, NewTimeOfDay(9, 0)); ok {
			t.Fatal("expected the room to be free on Tuesday")
		}
	})

	t.Run("window end is exclusive", func(t *testing.T) {
		t.Parallel()
		if _, ok := OccupyingBooking(occupations, monday, NewTimeOfDay(10, 0)); ok {
			t.Fatal("expected no occupation at exactly 10:00")
		}
		if occ, ok := OccupyingBooking(occupations, monday, NewTimeOfDay(8, 0)); !ok || occ.Label != "Algebra" {
			t.Fatal("expected the morning occupation at exactly 08:00")
		}
	})
}

func TestOccupyingBookings(t *testing.T) {
	t.Parallel()

	// A store maintained only through successful conflict checks never holds
	// overlapping occupations, so at most one match surfaces.
	t.Run("conflict-free store yields at most one match", func(t *testing.T) {
		t.Parallel()
		var accepted []Occupation
		candidates := []Occupation{
			occupation("101", NewWeekdaySet(time.Monday, time.Wednesday),
				NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
				NewTimeOfDay(8, 0), NewTimeOfDay(10, 0)),
			occupation("101", NewWeekdaySet(time.Wednesday, time.Friday),
				NewDate(2024, time.March, 20), NewDate(2024, time.April, 10),
				NewTimeOfDay(9, 0), NewTimeOfDay(11, 0)),
			occupation("101", NewWeekdaySet(time.Tuesday, time.Thursday),
				NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
				NewTimeOfDay(8, 0), NewTimeOfDay(10, 0)),
			occupation("101", NewWeekdaySet(time.Monday),
				NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
				NewTimeOfDay(10, 0), NewTimeOfDay(12, 0)),
		}
		for _, candidate := range candidates {
			if FirstConflict(candidate, accepted) == nil {
				accepted = append(accepted, candidate)
			}
		}

		for date := NewDate(2024, time.March, 4); !date.After(NewDate(2024, time.April, 10)); date = date.Next() {
			for hour := 7; hour < 13; hour++ {
				matches := OccupyingBookings(accepted, date, NewTimeOfDay(hour, 0))
				if len(matches) > 1 {
					t.Fatalf("found %d overlapping occupations at %s %02d:00", len(matches), date, hour)
				}
			}
		}
	})

	t.Run("reports every match when the store was bypassed", func(t *testing.T) {
		t.Parallel()
		first := occupation("101", NewWeekdaySet(time.Monday),
			NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
			NewTimeOfDay(8, 0), NewTimeOfDay(10, 0))
		second := occupation("101", NewWeekdaySet(time.Monday),
			NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
			NewTimeOfDay(9, 0), NewTimeOfDay(11, 0))
		matches := OccupyingBookings([]Occupation{first, second}, NewDate(2024, time.March, 11), NewTimeOfDay(9, 30))
		if len(matches) != 2 {
			t.Fatalf("expected 2 matches for a bypassed store, got %d", len(matches))
		}
	})
}
