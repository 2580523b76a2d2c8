package booking

// Conflicts reports whether two occupations of the same room ever cover an
// overlapping wall-clock interval. The checks run cheapest first: the daily
// time windows, then the date ranges, then the weekday sets. Only when a
// shared window spans fewer than seven days does any per-date work happen;
// a span of seven or more days necessarily visits every weekday.
func Conflicts(a, b Occupation) bool {
	if !a.Window.Overlaps(b.Window) {
		return false
	}

	overlap, ok := a.Dates.Intersect(b.Dates)
	if !ok {
		return false
	}

	shared := a.Weekdays.Intersect(b.Weekdays)
	if shared.IsEmpty() {
		return false
	}

	if overlap.Start.DaysUntil(overlap.End) >= 7 {
		return true
	}

	for date := overlap.Start; !date.After(overlap.End); date = date.Next() {
		if shared.Contains(date.Weekday()) {
			return true
		}
	}
	return false
}

// FirstConflict returns the first existing occupation that conflicts with
// the candidate, in list order, or nil when the candidate is bookable. It is
// a pure function: persistence and the authoritative write-time re-check are
// the caller's concern.
func FirstConflict(candidate Occupation, existing []Occupation) *Occupation {
	for i := range existing {
		if Conflicts(candidate, existing[i]) {
			return &existing[i]
		}
	}
	return nil
}
