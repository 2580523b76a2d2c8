package persistence

import "time"

// Room represents a classroom catalog entry. Occupancy is never stored on
// the room record; it is derived from the occupation set at query time.
type Room struct {
	ID           string
	Name         string
	Building     string
	Floor        int
	Capacity     int
	Desks        int
	Chairs       int
	Computers    int
	HasProjector bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
