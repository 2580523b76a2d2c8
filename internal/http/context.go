package http

import (
	"context"
	"log/slog"

	"github.com/example/classroom-booking/internal/logging"
)

type contextKey string

const (
	occupationIDContextKey contextKey = "occupation_id"
	roomIDContextKey       contextKey = "room_id"
)

// ContextWithOccupationID injects the occupation identifier resolved from the request path.
func ContextWithOccupationID(ctx context.Context, occupationID string) context.Context {
	return context.WithValue(ctx, occupationIDContextKey, occupationID)
}

// OccupationIDFromContext extracts an occupation identifier previously associated with the context.
func OccupationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(occupationIDContextKey).(string)
	return id, ok
}

// ContextWithRoomID injects the room identifier resolved from the request path.
func ContextWithRoomID(ctx context.Context, roomID string) context.Context {
	return context.WithValue(ctx, roomIDContextKey, roomID)
}

// RoomIDFromContext extracts a room identifier previously associated with the context.
func RoomIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(roomIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
