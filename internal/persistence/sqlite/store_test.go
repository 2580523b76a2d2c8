package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/classroom-booking/internal/booking"
	"github.com/example/classroom-booking/internal/persistence"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "bookings.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func testRoom(id string) persistence.Room {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	return persistence.Room{
		ID:           id,
		Name:         "Room " + id,
		Building:     "Main",
		Floor:        1,
		Capacity:     40,
		Desks:        20,
		Chairs:       40,
		HasProjector: true,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func testOccupation(id, roomID string) booking.Occupation {
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	return booking.Occupation{
		ID:          id,
		RoomID:      roomID,
		Responsible: "prof.silva@example.edu",
		Label:       "Algebra",
		Dates: booking.DateRange{
			Start: booking.NewDate(2024, time.March, 4),
			End:   booking.NewDate(2024, time.March, 29),
		},
		Window: booking.TimeWindow{
			Start: booking.NewTimeOfDay(8, 0),
			End:   booking.NewTimeOfDay(10, 0),
		},
		Weekdays:  booking.NewWeekdaySet(time.Monday, time.Wednesday),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestRoomRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("create and get round trip", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		room := testRoom("101")
		if err := store.Rooms.CreateRoom(ctx, room); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := store.Rooms.GetRoom(ctx, "101")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !got.CreatedAt.Equal(room.CreatedAt) || !got.UpdatedAt.Equal(room.UpdatedAt) {
			t.Fatalf("timestamps did not round trip: %+v", got)
		}
		got.CreatedAt, got.UpdatedAt = room.CreatedAt, room.UpdatedAt
		if got != room {
			t.Fatalf("got %+v, want %+v", got, room)
		}
	})

	t.Run("duplicate id maps to constraint violation", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		if err := store.Rooms.CreateRoom(ctx, testRoom("101")); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		err := store.Rooms.CreateRoom(ctx, testRoom("101"))
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected constraint violation, got %v", err)
		}
	})

	t.Run("update missing room reports not found", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		err := store.Rooms.UpdateRoom(ctx, testRoom("nope"))
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("delete cascades to occupations", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		if err := store.Rooms.CreateRoom(ctx, testRoom("101")); err != nil {
			t.Fatalf("create room failed: %v", err)
		}
		if err := store.Occupations.CreateOccupation(ctx, testOccupation("occ-1", "101")); err != nil {
			t.Fatalf("create occupation failed: %v", err)
		}
		if err := store.Rooms.DeleteRoom(ctx, "101"); err != nil {
			t.Fatalf("delete room failed: %v", err)
		}
		if _, err := store.Occupations.GetOccupation(ctx, "occ-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected cascade delete, got %v", err)
		}
	})

	t.Run("list orders by name", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		for _, id := range []string{"203", "101", "102"} {
			if err := store.Rooms.CreateRoom(ctx, testRoom(id)); err != nil {
				t.Fatalf("create failed: %v", err)
			}
		}
		rooms, err := store.Rooms.ListRooms(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(rooms) != 3 || rooms[0].ID != "101" || rooms[2].ID != "203" {
			t.Fatalf("unexpected order: %+v", rooms)
		}
	})
}

func TestOccupationRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("create get delete round trip", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		if err := store.Rooms.CreateRoom(ctx, testRoom("101")); err != nil {
			t.Fatalf("create room failed: %v", err)
		}
		occupation := testOccupation("occ-1", "101")
		if err := store.Occupations.CreateOccupation(ctx, occupation); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		got, err := store.Occupations.GetOccupation(ctx, "occ-1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !got.CreatedAt.Equal(occupation.CreatedAt) || !got.UpdatedAt.Equal(occupation.UpdatedAt) {
			t.Fatalf("timestamps did not round trip: %+v", got)
		}
		got.CreatedAt, got.UpdatedAt = occupation.CreatedAt, occupation.UpdatedAt
		if got != occupation {
			t.Fatalf("got %+v, want %+v", got, occupation)
		}

		if err := store.Occupations.DeleteOccupation(ctx, "occ-1"); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := store.Occupations.GetOccupation(ctx, "occ-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected not found after delete, got %v", err)
		}
	})

	t.Run("write-time conflict re-check rejects overlapping occupation", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		if err := store.Rooms.CreateRoom(ctx, testRoom("101")); err != nil {
			t.Fatalf("create room failed: %v", err)
		}
		if err := store.Occupations.CreateOccupation(ctx, testOccupation("occ-1", "101")); err != nil {
			t.Fatalf("first create failed: %v", err)
		}

		overlapping := testOccupation("occ-2", "101")
		overlapping.Window = booking.TimeWindow{
			Start: booking.NewTimeOfDay(9, 0),
			End:   booking.NewTimeOfDay(11, 0),
		}
		err := store.Occupations.CreateOccupation(ctx, overlapping)
		var conflict *booking.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected conflict error, got %v", err)
		}
		if conflict.Conflicting.ID != "occ-1" {
			t.Fatalf("expected conflict with occ-1, got %s", conflict.Conflicting.ID)
		}

		occupations, err := store.Occupations.ListOccupationsForRoom(ctx, "101")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(occupations) != 1 {
			t.Fatalf("rejected occupation must not persist, found %d rows", len(occupations))
		}
	})

	t.Run("same room different weekdays coexist", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		if err := store.Rooms.CreateRoom(ctx, testRoom("101")); err != nil {
			t.Fatalf("create room failed: %v", err)
		}
		if err := store.Occupations.CreateOccupation(ctx, testOccupation("occ-1", "101")); err != nil {
			t.Fatalf("first create failed: %v", err)
		}

		disjoint := testOccupation("occ-2", "101")
		disjoint.Weekdays = booking.NewWeekdaySet(time.Tuesday, time.Thursday)
		if err := store.Occupations.CreateOccupation(ctx, disjoint); err != nil {
			t.Fatalf("disjoint create failed: %v", err)
		}
	})

	t.Run("unknown room fails the foreign key", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		err := store.Occupations.CreateOccupation(ctx, testOccupation("occ-1", "ghost"))
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected constraint violation, got %v", err)
		}
	})

	t.Run("invalid occupation is rejected before any write", func(t *testing.T) {
		t.Parallel()
		store := openTestStore(t)

		if err := store.Rooms.CreateRoom(ctx, testRoom("101")); err != nil {
			t.Fatalf("create room failed: %v", err)
		}
		malformed := testOccupation("occ-1", "101")
		malformed.Weekdays = 0
		if err := store.Occupations.CreateOccupation(ctx, malformed); !errors.Is(err, booking.ErrInvalidOccupation) {
			t.Fatalf("expected invalid occupation error, got %v", err)
		}
	})
}
