package services

import (
	"context"

	"github.com/google/uuid"
)

// UseCounter records that a stored translation was used.
type UseCounter interface {
	IncrementUseCount(ctx context.Context, id uuid.UUID) error
}

// UsageTracker records accepted suggestions.
type UsageTracker struct {
	counter UseCounter
}

// NewUsageTracker creates a UsageTracker writing through counter.
func NewUsageTracker(counter UseCounter) *UsageTracker {
	return &UsageTracker{counter: counter}
}

// Accept bumps the use count of id. Unknown ids are ignored so that a
// suggestion deleted between lookup and accept does not surface an error.
func (t *UsageTracker) Accept(ctx context.Context, id uuid.UUID) error {
	return t.counter.IncrementUseCount(ctx, id)
}
