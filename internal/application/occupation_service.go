package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/classroom-booking/internal/booking"
	"github.com/example/classroom-booking/internal/persistence"
)

// OccupationRepository captures the persistence interactions needed by the
// service. CreateOccupation performs the authoritative conflict re-check at
// write time.
type OccupationRepository interface {
	CreateOccupation(ctx context.Context, occupation booking.Occupation) error
	GetOccupation(ctx context.Context, id string) (booking.Occupation, error)
	DeleteOccupation(ctx context.Context, id string) error
	ListOccupationsForRoom(ctx context.Context, roomID string) ([]booking.Occupation, error)
}

// RoomCatalog exposes room existence lookups.
type RoomCatalog interface {
	RoomExists(ctx context.Context, id string) (bool, error)
}

// RoomInvalidator receives invalidation signals when a room's occupation set
// changes. A cached occupation source implements it.
type RoomInvalidator interface {
	InvalidateRoom(roomID string)
}

// OccupationService orchestrates validation, conflict checking, and
// persistence for recurring occupations.
type OccupationService struct {
	occupations OccupationRepository
	rooms       RoomCatalog
	invalidator RoomInvalidator
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewOccupationService wires dependencies for occupation operations.
func NewOccupationService(occupations OccupationRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time) *OccupationService {
	return NewOccupationServiceWithLogger(occupations, rooms, idGenerator, now, nil)
}

// NewOccupationServiceWithLogger constructs an occupation service with a
// specified logger.
func NewOccupationServiceWithLogger(occupations OccupationRepository, rooms RoomCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *OccupationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &OccupationService{
		occupations: occupations,
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// SetInvalidator registers a cache invalidation hook fired after writes.
func (s *OccupationService) SetInvalidator(invalidator RoomInvalidator) {
	s.invalidator = invalidator
}

func (s *OccupationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "OccupationService", operation, attrs...)
}

// CreateOccupation validates the candidate, runs the optimistic conflict
// check against the room's current occupations, and persists it. The
// repository re-runs the check inside the write transaction; losing that
// race surfaces as *booking.ConflictError just like losing the optimistic
// check. A failed fetch of existing occupations aborts the operation rather
// than assuming an empty set.
func (s *OccupationService) CreateOccupation(ctx context.Context, input OccupationInput) (occupation booking.Occupation, err error) {
	if s == nil {
		err = fmt.Errorf("OccupationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateOccupation", "room_id", input.RoomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create occupation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("occupation_id", occupation.ID).InfoContext(ctx, "occupation created")
	}()

	candidate, err := s.buildCandidate(ctx, input)
	if err != nil {
		return booking.Occupation{}, err
	}

	existing, err := s.occupations.ListOccupationsForRoom(ctx, input.RoomID)
	if err != nil {
		return booking.Occupation{}, fmt.Errorf("failed to fetch occupations for room %s: %w", input.RoomID, err)
	}
	if conflicting := booking.FirstConflict(candidate, existing); conflicting != nil {
		return booking.Occupation{}, &booking.ConflictError{Conflicting: *conflicting}
	}

	candidate.ID = s.idGenerator()
	candidate.CreatedAt = s.now()
	candidate.UpdatedAt = candidate.CreatedAt

	if err := s.occupations.CreateOccupation(ctx, candidate); err != nil {
		return booking.Occupation{}, mapOccupationRepoError(err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateRoom(candidate.RoomID)
	}
	return candidate, nil
}

// CheckOccupation runs the optimistic conflict precheck without writing
// anything. It exists to give forms an early, actionable answer; acceptance
// here guarantees nothing about the later write.
func (s *OccupationService) CheckOccupation(ctx context.Context, input OccupationInput) (result CheckResult, err error) {
	if s == nil {
		err = fmt.Errorf("OccupationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CheckOccupation", "room_id", input.RoomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to check occupation", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	candidate, err := s.buildCandidate(ctx, input)
	if err != nil {
		return CheckResult{}, err
	}

	existing, err := s.occupations.ListOccupationsForRoom(ctx, input.RoomID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to fetch occupations for room %s: %w", input.RoomID, err)
	}

	if conflicting := booking.FirstConflict(candidate, existing); conflicting != nil {
		return CheckResult{CanBook: false, Conflicting: conflicting}, nil
	}
	return CheckResult{CanBook: true}, nil
}

// GetOccupation retrieves a single occupation.
func (s *OccupationService) GetOccupation(ctx context.Context, id string) (booking.Occupation, error) {
	if s == nil {
		return booking.Occupation{}, fmt.Errorf("OccupationService is nil")
	}
	occupation, err := s.occupations.GetOccupation(ctx, id)
	if err != nil {
		return booking.Occupation{}, mapOccupationRepoError(err)
	}
	return occupation, nil
}

// ListOccupations returns every occupation recorded for the room.
func (s *OccupationService) ListOccupations(ctx context.Context, roomID string) ([]booking.Occupation, error) {
	if s == nil {
		return nil, fmt.Errorf("OccupationService is nil")
	}
	if strings.TrimSpace(roomID) == "" {
		vErr := &ValidationError{}
		vErr.add("room_id", "room id is required")
		return nil, vErr
	}
	occupations, err := s.occupations.ListOccupationsForRoom(ctx, roomID)
	if err != nil {
		return nil, mapOccupationRepoError(err)
	}
	return occupations, nil
}

// DeleteOccupation removes an occupation and invalidates the room's cached
// occupation set.
func (s *OccupationService) DeleteOccupation(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("OccupationService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteOccupation", "occupation_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete occupation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "occupation deleted")
	}()

	occupation, err := s.occupations.GetOccupation(ctx, id)
	if err != nil {
		return mapOccupationRepoError(err)
	}
	if err := s.occupations.DeleteOccupation(ctx, id); err != nil {
		return mapOccupationRepoError(err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateRoom(occupation.RoomID)
	}
	return nil
}

// buildCandidate validates the input and assembles an unpersisted occupation.
func (s *OccupationService) buildCandidate(ctx context.Context, input OccupationInput) (booking.Occupation, error) {
	vErr := &ValidationError{}
	validateOccupationCore(input, vErr)
	if vErr.HasErrors() {
		return booking.Occupation{}, vErr
	}

	if err := s.ensureRoomExists(ctx, input.RoomID); err != nil {
		return booking.Occupation{}, err
	}

	return booking.Occupation{
		RoomID:      input.RoomID,
		Responsible: strings.TrimSpace(input.Responsible),
		Label:       strings.TrimSpace(input.Label),
		Dates:       booking.DateRange{Start: input.StartDate, End: input.EndDate},
		Window:      booking.TimeWindow{Start: input.StartTime, End: input.EndTime},
		Weekdays:    input.Weekdays,
	}, nil
}

func (s *OccupationService) ensureRoomExists(ctx context.Context, roomID string) error {
	if s.rooms == nil {
		return nil
	}
	exists, err := s.rooms.RoomExists(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to look up room %s: %w", roomID, err)
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("room_id", "room does not exist")
	return vErr
}

func validateOccupationCore(input OccupationInput, vErr *ValidationError) {
	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("room_id", "room id is required")
	}
	if strings.TrimSpace(input.Responsible) == "" {
		vErr.add("responsible", "responsible is required")
	}
	if strings.TrimSpace(input.Label) == "" {
		vErr.add("label", "label is required")
	}
	if input.StartDate.After(input.EndDate) {
		vErr.add("dates", "start date must not be after end date")
	}
	if input.StartTime >= input.EndTime {
		vErr.add("times", "start time must be before end time")
	}
	if input.Weekdays.IsEmpty() {
		vErr.add("weekdays", "at least one weekday is required")
	}
}

func mapOccupationRepoError(err error) error {
	if err == nil {
		return nil
	}
	var cErr *booking.ConflictError
	if errors.As(err, &cErr) {
		return err
	}
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		return ErrAlreadyExists
	}
	return err
}
