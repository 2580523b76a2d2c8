package booking

import (
	"testing"
	"time"
)

func TestOccupationAppliesOn(t *testing.T) {
	t.Parallel()

	occ := occupation("101",
		NewWeekdaySet(time.Monday, time.Wednesday),
		NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
		NewTimeOfDay(8, 0), NewTimeOfDay(10, 0))

	cases := []struct {
		name string
		date Date
		want bool
	}{
		{"first monday of the range", NewDate(2024, time.March, 4), true},
		{"wednesday inside the range", NewDate(2024, time.March, 20), true},
		{"tuesday inside the range", NewDate(2024, time.March, 5), false},
		{"monday before the range", NewDate(2024, time.February, 26), false},
		{"monday after the range", NewDate(2024, time.April, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := occ.AppliesOn(tc.date); got != tc.want {
				t.Fatalf("AppliesOn(%s) = %v, want %v", tc.date, got, tc.want)
			}
		})
	}
}

func TestOccupationOccupiesAt(t *testing.T) {
	t.Parallel()

	occ := occupation("101",
		NewWeekdaySet(time.Monday),
		NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
		NewTimeOfDay(8, 0), NewTimeOfDay(10, 0))
	monday := NewDate(2024, time.March, 4)

	t.Run("start is inclusive", func(t *testing.T) {
		t.Parallel()
		if !occ.OccupiesAt(monday, NewTimeOfDay(8, 0)) {
			t.Fatal("expected occupation at exactly the window start")
		}
	})

	t.Run("end is exclusive", func(t *testing.T) {
		t.Parallel()
		if occ.OccupiesAt(monday, NewTimeOfDay(10, 0)) {
			t.Fatal("expected no occupation at exactly the window end")
		}
	})

	t.Run("minute before the end", func(t *testing.T) {
		t.Parallel()
		if !occ.OccupiesAt(monday, NewTimeOfDay(9, 59)) {
			t.Fatal("expected occupation one minute before the window end")
		}
	})
}

func TestOccupationActiveDates(t *testing.T) {
	t.Parallel()

	t.Run("yields qualifying dates in order", func(t *testing.T) {
		t.Parallel()
		occ := occupation("101",
			NewWeekdaySet(time.Monday, time.Wednesday),
			NewDate(2024, time.March, 4), NewDate(2024, time.March, 13),
			NewTimeOfDay(8, 0), NewTimeOfDay(10, 0))

		want := []Date{
			NewDate(2024, time.March, 4),
			NewDate(2024, time.March, 6),
			NewDate(2024, time.March, 11),
			NewDate(2024, time.March, 13),
		}
		var got []Date
		for date := range occ.ActiveDates() {
			got = append(got, date)
		}
		if len(got) != len(want) {
			t.Fatalf("got %d dates, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("date[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("sequence is restartable and stops early", func(t *testing.T) {
		t.Parallel()
		occ := occupation("101",
			NewWeekdaySet(time.Monday),
			NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
			NewTimeOfDay(8, 0), NewTimeOfDay(10, 0))

		seq := occ.ActiveDates()
		var first Date
		for date := range seq {
			first = date
			break
		}
		var again Date
		for date := range seq {
			again = date
			break
		}
		if first != again {
			t.Fatalf("restarted sequence began at %s, want %s", again, first)
		}
	})

	t.Run("range excluding every selected weekday is empty not an error", func(t *testing.T) {
		t.Parallel()
		// 2024-03-05 (Tue) .. 2024-03-07 (Thu) never hits a Sunday.
		occ := occupation("101",
			NewWeekdaySet(time.Sunday),
			NewDate(2024, time.March, 5), NewDate(2024, time.March, 7),
			NewTimeOfDay(8, 0), NewTimeOfDay(10, 0))
		for date := range occ.ActiveDates() {
			t.Fatalf("expected empty sequence, got %s", date)
		}
	})
}

func TestOccupationValidate(t *testing.T) {
	t.Parallel()

	valid := occupation("101",
		NewWeekdaySet(time.Monday),
		NewDate(2024, time.March, 4), NewDate(2024, time.March, 29),
		NewTimeOfDay(8, 0), NewTimeOfDay(10, 0))

	cases := []struct {
		name    string
		mutate  func(*Occupation)
		wantErr bool
	}{
		{"well-formed occupation", func(*Occupation) {}, false},
		{"single day range", func(o *Occupation) {
			o.Dates.End = o.Dates.Start
		}, false},
		{"start date after end date", func(o *Occupation) {
			o.Dates.Start = NewDate(2024, time.April, 1)
		}, true},
		{"start time equals end time", func(o *Occupation) {
			o.Window.End = o.Window.Start
		}, true},
		{"start time after end time", func(o *Occupation) {
			o.Window.Start = NewTimeOfDay(11, 0)
		}, true},
		{"empty weekday set", func(o *Occupation) {
			o.Weekdays = 0
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			occ := valid
			tc.mutate(&occ)
			err := occ.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestOccupationSummary(t *testing.T) {
	t.Parallel()

	occ := occupation("101",
		NewWeekdaySet(time.Wednesday, time.Monday),
		NewDate(2024, time.March, 1), NewDate(2024, time.June, 1),
		NewTimeOfDay(8, 0), NewTimeOfDay(10, 0))

	want := "Monday, Wednesday from 2024-03-01 to 2024-06-01, 08:00-10:00"
	if got := occ.Summary(); got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}
