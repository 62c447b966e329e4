// Package command contains write operations (CQRS - Commands). Each command
// is a plain struct with a Validate method, executed by a handler that
// orchestrates repositories, the event bus, and the availability cache.
package command

import (
	"context"

	"github.com/google/uuid"
)

// AvailabilityInvalidator drops cached availability views for a mentor after
// any schedule or session write that changes what can be booked.
type AvailabilityInvalidator interface {
	InvalidateMentor(ctx context.Context, mentorID uuid.UUID) error
}

// NoopInvalidator satisfies AvailabilityInvalidator when caching is disabled.
type NoopInvalidator struct{}

// InvalidateMentor does nothing.
func (NoopInvalidator) InvalidateMentor(context.Context, uuid.UUID) error { return nil }
