package logging

import (
	"context"
	"log/slog"
)

// Structured logging keys shared by the engine surfaces.
const (
	FieldComponent      = "component"
	FieldOperation      = "operation"
	FieldOwnerID        = "owner_id"
	FieldOrganizationID = "organization_id"
	FieldEntryID        = "entry_id"
	FieldCorrelationID  = "correlation_id"
)

type contextKey struct{}

var requestIDKey contextKey

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithContext returns logger augmented with fields carried by ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		return logger.With(slog.String(FieldCorrelationID, id))
	}
	return logger
}
