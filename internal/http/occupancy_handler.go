package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/booking"
)

type occupancyService interface {
	OccupyingBooking(ctx context.Context, roomID string, date booking.Date, t booking.TimeOfDay) (*booking.Occupation, error)
	OccupiedRooms(ctx context.Context, date booking.Date, t booking.TimeOfDay) ([]application.RoomOccupancy, error)
}

type OccupancyHandler struct {
	service   occupancyService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

// NewOccupancyHandler builds a handler answering point-in-time occupancy
// queries. A nil now defaults to time.Now.
func NewOccupancyHandler(service occupancyService, now func() time.Time, logger *slog.Logger) *OccupancyHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &OccupancyHandler{service: service, now: now, responder: newResponder(base), logger: base}
}

func (h *OccupancyHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "OccupancyHandler", operation, attrs...)
}

// OccupiedRooms answers GET /rooms/occupied.
func (h *OccupancyHandler) OccupiedRooms(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, timeOfDay, err := h.instantFromQuery(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "OccupiedRooms", "date", date.String(), "time", timeOfDay.String())

	occupancies, err := h.service.OccupiedRooms(r.Context(), date, timeOfDay)
	if err != nil {
		logger.ErrorContext(r.Context(), "occupied rooms query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(occupancies)).InfoContext(r.Context(), "occupied rooms listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, occupiedRoomsResponse{
		Date:  date.String(),
		Time:  timeOfDay.String(),
		Rooms: toRoomOccupancyDTOs(occupancies),
	})
}

// RoomOccupation answers GET /rooms/{id}/occupation.
func (h *OccupancyHandler) RoomOccupation(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := RoomIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomIDPath)
		return
	}

	date, timeOfDay, err := h.instantFromQuery(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "RoomOccupation", "room_id", roomID, "date", date.String(), "time", timeOfDay.String())

	occupation, err := h.service.OccupyingBooking(r.Context(), roomID, date, timeOfDay)
	if err != nil {
		logger.ErrorContext(r.Context(), "room occupation query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := roomOccupationResponse{
		RoomID: roomID,
		Date:   date.String(),
		Time:   timeOfDay.String(),
	}
	if occupation != nil {
		response.Occupied = true
		dto := toOccupationDTO(*occupation)
		response.Occupation = &dto
	}

	logger.With("occupied", response.Occupied).InfoContext(r.Context(), "room occupation answered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

// instantFromQuery reads the date and time parameters, defaulting each to the
// current instant when absent.
func (h *OccupancyHandler) instantFromQuery(query url.Values) (booking.Date, booking.TimeOfDay, error) {
	now := h.now()
	date := booking.DateOf(now)
	timeOfDay := booking.NewTimeOfDay(now.Hour(), now.Minute())

	if raw := strings.TrimSpace(query.Get("date")); raw != "" {
		parsed, err := booking.ParseDate(raw)
		if err != nil {
			return booking.Date{}, 0, errInvalidOccupancyTime
		}
		date = parsed
	}
	if raw := strings.TrimSpace(query.Get("time")); raw != "" {
		parsed, err := booking.ParseTimeOfDay(raw)
		if err != nil {
			return booking.Date{}, 0, errInvalidOccupancyTime
		}
		timeOfDay = parsed
	}
	return date, timeOfDay, nil
}

type roomOccupancyDTO struct {
	Room       roomDTO       `json:"room"`
	Occupation occupationDTO `json:"occupation"`
}

type occupiedRoomsResponse struct {
	Date  string             `json:"date"`
	Time  string             `json:"time"`
	Rooms []roomOccupancyDTO `json:"rooms"`
}

type roomOccupationResponse struct {
	RoomID     string         `json:"room_id"`
	Date       string         `json:"date"`
	Time       string         `json:"time"`
	Occupied   bool           `json:"occupied"`
	Occupation *occupationDTO `json:"occupation,omitempty"`
}

func toRoomOccupancyDTOs(occupancies []application.RoomOccupancy) []roomOccupancyDTO {
	if len(occupancies) == 0 {
		return nil
	}
	out := make([]roomOccupancyDTO, 0, len(occupancies))
	for _, occupancy := range occupancies {
		out = append(out, roomOccupancyDTO{
			Room:       toRoomDTO(occupancy.Room),
			Occupation: toOccupationDTO(occupancy.Occupation),
		})
	}
	return out
}
