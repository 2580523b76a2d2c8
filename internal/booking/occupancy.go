package booking

// OccupyingBooking returns the first occupation covering the room at the
// given date and time, or false when the room is free. Occupancy is always
// derived from the occupation set at query time; it is never a stored flag.
func OccupyingBooking(occupations []Occupation, date Date, t TimeOfDay) (Occupation, bool) {
	for _, occupation := range occupations {
		if occupation.OccupiesAt(date, t) {
			return occupation, true
		}
	}
	return Occupation{}, false
}

// OccupyingBookings returns every occupation covering the given instant. A
// correctly maintained store yields at most one; more than one signals a
// conflict-detection bypass, which callers should log rather than treat as
// fatal.
func OccupyingBookings(occupations []Occupation, date Date, t TimeOfDay) []Occupation {
	var matches []Occupation
	for _, occupation := range occupations {
		if occupation.OccupiesAt(date, t) {
			matches = append(matches, occupation)
		}
	}
	return matches
}
