// Package shared contains common domain types, errors, events, and the clock
// abstraction used across all domain packages. This package has zero external
// dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
// They form the four-kind taxonomy every caller-facing failure maps onto:
// validation, conflict, not-found, transient infrastructure.
var (
	// Validation errors - malformed or out-of-range input, never retried.
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrEmptyValue    = errors.New("value cannot be empty")
	ErrOutOfRange    = errors.New("value out of range")
	ErrStartInPast   = errors.New("start time is in the past")
	ErrStartTooFar   = errors.New("start time is too far in the future")
	ErrBlockTooShort = errors.New("time block is shorter than the minimum duration")
	ErrBlockTooLong  = errors.New("time block exceeds the maximum duration")
	ErrSpanTooWide   = errors.New("batch spans more than one week")

	// Conflict errors - legal input colliding with current state; the caller
	// may retry with different input, the engine never retries on its own.
	ErrConflict        = errors.New("conflict")
	ErrScheduleOverlap = errors.New("schedule overlaps another schedule")
	ErrSlotClaimed     = errors.New("schedule slot is already claimed")
	ErrStateTransition = errors.New("invalid state transition")
	ErrScheduleInUse   = errors.New("schedule has an active session")

	// Entity errors.
	ErrNotFound = errors.New("entity not found")

	// Transient infrastructure errors - persistence or mail failures.
	// Background workers log and retry on the next tick; request paths
	// propagate them to the caller.
	ErrTransient = errors.New("transient infrastructure error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "schedule", "session", "availability"
	Op      string // Operation that failed, e.g., "Create", "Approve"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsValidation reports whether err belongs to the validation kind.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrStartInPast) ||
		errors.Is(err, ErrStartTooFar) ||
		errors.Is(err, ErrBlockTooShort) ||
		errors.Is(err, ErrBlockTooLong) ||
		errors.Is(err, ErrSpanTooWide)
}

// IsConflict reports whether err belongs to the conflict kind.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrScheduleOverlap) ||
		errors.Is(err, ErrSlotClaimed) ||
		errors.Is(err, ErrStateTransition) ||
		errors.Is(err, ErrScheduleInUse)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient reports whether err is a transient infrastructure error.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
