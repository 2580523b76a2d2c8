package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/classroom-booking/internal/application"
	"github.com/example/classroom-booking/internal/booking"
)

type occupationService interface {
	CreateOccupation(ctx context.Context, input application.OccupationInput) (booking.Occupation, error)
	CheckOccupation(ctx context.Context, input application.OccupationInput) (application.CheckResult, error)
	GetOccupation(ctx context.Context, id string) (booking.Occupation, error)
	ListOccupations(ctx context.Context, roomID string) ([]booking.Occupation, error)
	DeleteOccupation(ctx context.Context, id string) error
}

type OccupationHandler struct {
	service   occupationService
	validate  *validator.Validate
	responder responder
	logger    *slog.Logger
}

func NewOccupationHandler(service occupationService, logger *slog.Logger) *OccupationHandler {
	base := defaultLogger(logger)
	return &OccupationHandler{
		service:   service,
		validate:  newRequestValidator(),
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *OccupationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "OccupationHandler", operation, attrs...)
}

func (h *OccupationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	input, ok := h.decodeInput(w, r, "Create")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Create", "room_id", input.RoomID)

	occupation, err := h.service.CreateOccupation(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "occupation creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("occupation_id", occupation.ID).InfoContext(r.Context(), "occupation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, occupationResponse{Occupation: toOccupationDTO(occupation)})
}

func (h *OccupationHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	input, ok := h.decodeInput(w, r, "Check")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Check", "room_id", input.RoomID)

	result, err := h.service.CheckOccupation(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "occupation check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("can_book", result.CanBook).InfoContext(r.Context(), "occupation checked")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCheckDTO(result))
}

func (h *OccupationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := OccupationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOccupationID)
		return
	}

	occupation, err := h.service.GetOccupation(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "occupation_id", id).ErrorContext(r.Context(), "occupation fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, occupationResponse{Occupation: toOccupationDTO(occupation)})
}

func (h *OccupationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID := strings.TrimSpace(r.URL.Query().Get("room_id"))
	if roomID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingRoomIDQuery)
		return
	}

	logger := h.log(r.Context(), "List", "room_id", roomID)

	occupations, err := h.service.ListOccupations(r.Context(), roomID)
	if err != nil {
		logger.ErrorContext(r.Context(), "occupation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(occupations)).InfoContext(r.Context(), "occupations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listOccupationsResponse{Occupations: toOccupationDTOs(occupations)})
}

func (h *OccupationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := OccupationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidOccupationID)
		return
	}

	logger := h.log(r.Context(), "Delete", "occupation_id", id)
	if err := h.service.DeleteOccupation(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "occupation delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "occupation deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *OccupationHandler) decodeInput(w http.ResponseWriter, r *http.Request, operation string) (application.OccupationInput, bool) {
	var req occupationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode occupation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return application.OccupationInput{}, false
	}

	input, fieldErrors := req.toInput(h.validate)
	if len(fieldErrors) > 0 {
		h.log(r.Context(), operation, "error_kind", "validation").ErrorContext(r.Context(), "occupation request rejected", "errors", fieldErrors)
		h.responder.writeFieldErrors(r.Context(), w, fieldErrors)
		return application.OccupationInput{}, false
	}
	return input, true
}

type occupationRequest struct {
	RoomID      string `json:"room_id" validate:"required"`
	Responsible string `json:"responsible" validate:"required"`
	Label       string `json:"label" validate:"required"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Weekdays    []int  `json:"weekdays" validate:"required,min=1,dive,gte=0,lte=6"`
}

// toInput validates the request shape and parses its wire forms. Semantic
// validation, such as date ordering, is left to the application layer.
func (r occupationRequest) toInput(validate *validator.Validate) (application.OccupationInput, map[string]string) {
	fieldErrors := validateRequest(validate, r)

	input := application.OccupationInput{
		RoomID:      strings.TrimSpace(r.RoomID),
		Responsible: strings.TrimSpace(r.Responsible),
		Label:       strings.TrimSpace(r.Label),
	}

	parseDate := func(field, value string) booking.Date {
		if value == "" {
			return booking.Date{}
		}
		date, err := booking.ParseDate(value)
		if err != nil {
			setFieldError(fieldErrors, field, "must look like 2006-01-02")
			return booking.Date{}
		}
		return date
	}
	parseTime := func(field, value string) booking.TimeOfDay {
		if value == "" {
			return booking.TimeOfDay(0)
		}
		t, err := booking.ParseTimeOfDay(value)
		if err != nil {
			setFieldError(fieldErrors, field, "must look like 15:04")
			return booking.TimeOfDay(0)
		}
		return t
	}

	input.StartDate = parseDate("start_date", r.StartDate)
	input.EndDate = parseDate("end_date", r.EndDate)
	input.StartTime = parseTime("start_time", r.StartTime)
	input.EndTime = parseTime("end_time", r.EndTime)

	days := make([]time.Weekday, 0, len(r.Weekdays))
	for _, day := range r.Weekdays {
		if day < 0 || day > 6 {
			setFieldError(fieldErrors, "weekdays", "weekday values must be between 0 and 6")
			continue
		}
		days = append(days, time.Weekday(day))
	}
	input.Weekdays = booking.NewWeekdaySet(days...)

	if len(fieldErrors) > 0 {
		return application.OccupationInput{}, fieldErrors
	}
	return input, nil
}

type occupationDTO struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	Responsible string `json:"responsible"`
	Label       string `json:"label"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Weekdays    []int  `json:"weekdays"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type occupationResponse struct {
	Occupation occupationDTO `json:"occupation"`
}

type listOccupationsResponse struct {
	Occupations []occupationDTO `json:"occupations"`
}

type checkDTO struct {
	CanBook     bool           `json:"can_book"`
	Conflicting *occupationDTO `json:"conflicting,omitempty"`
}

func toOccupationDTO(occupation booking.Occupation) occupationDTO {
	weekdays := occupation.Weekdays.Weekdays()
	days := make([]int, 0, len(weekdays))
	for _, day := range weekdays {
		days = append(days, int(day))
	}
	return occupationDTO{
		ID:          occupation.ID,
		RoomID:      occupation.RoomID,
		Responsible: occupation.Responsible,
		Label:       occupation.Label,
		StartDate:   occupation.Dates.Start.String(),
		EndDate:     occupation.Dates.End.String(),
		StartTime:   occupation.Window.Start.String(),
		EndTime:     occupation.Window.End.String(),
		Weekdays:    days,
		CreatedAt:   occupation.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   occupation.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toOccupationDTOs(occupations []booking.Occupation) []occupationDTO {
	if len(occupations) == 0 {
		return nil
	}
	out := make([]occupationDTO, 0, len(occupations))
	for _, occupation := range occupations {
		out = append(out, toOccupationDTO(occupation))
	}
	return out
}

func toCheckDTO(result application.CheckResult) checkDTO {
	dto := checkDTO{CanBook: result.CanBook}
	if result.Conflicting != nil {
		conflicting := toOccupationDTO(*result.Conflicting)
		dto.Conflicting = &conflicting
	}
	return dto
}

// newRequestValidator builds a validator that reports JSON field names in its
// errors.
func newRequestValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func validateRequest(validate *validator.Validate, req any) map[string]string {
	fieldErrors := make(map[string]string)
	if validate == nil {
		return fieldErrors
	}

	err := validate.Struct(req)
	if err == nil {
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fieldErrors["request"] = "could not be validated"
		return fieldErrors
	}

	for _, fieldError := range validationErrors {
		setFieldError(fieldErrors, fieldError.Field(), validationMessage(fieldError))
	}
	return fieldErrors
}

func validationMessage(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fieldError.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fieldError.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fieldError.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fieldError.Param())
	default:
		return "is invalid"
	}
}

// setFieldError keeps the first message recorded for a field.
func setFieldError(fieldErrors map[string]string, field, message string) {
	if _, exists := fieldErrors[field]; exists {
		return
	}
	fieldErrors[field] = message
}
