package booking

import "fmt"

// ConflictError reports that a candidate occupation overlaps an existing one.
// It carries the conflicting occupation so callers can present an actionable
// message instead of a generic failure.
type ConflictError struct {
	Conflicting Occupation
}

// Error implements the error interface with the details the conflicting
// booking exposes: who holds it, what for, and the occupied window.
func (e *ConflictError) Error() string {
	c := e.Conflicting
	return fmt.Sprintf("booking: room %s already booked by %s for %s from %s to %s",
		c.RoomID, c.Responsible, c.Label, c.Window.Start, c.Window.End)
}
