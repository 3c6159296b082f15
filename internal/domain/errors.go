package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed query or record. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrRetrieval signals that the vector store could not answer a nearest-neighbour query.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrConfiguration signals an unknown ranking variant or an invalid weight profile.
	ErrConfiguration = errors.New("configuration error")
	// ErrInconsistentState signals a main vector that is stale relative to its sources.
	ErrInconsistentState = errors.New("inconsistent state")
	// ErrEncoding signals an embedding failure (empty, oversized or provider error).
	ErrEncoding = errors.New("encoding failed")
	// ErrRateLimited signals a rate limit hit reported by an external provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrGate signals that the external judge gate gave up on a call.
	ErrGate = errors.New("judge gate")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)

// GateErrorKind classifies why the judge gate gave up.
type GateErrorKind string

const (
	// GateRateLimited means the judge kept rate limiting after all retries.
	GateRateLimited GateErrorKind = "rate_limited"
	// GateTimeout means the call (or the wait for a permit) exceeded its deadline.
	GateTimeout GateErrorKind = "timeout"
	// GateInvalid means the judge failed or returned an unusable answer.
	GateInvalid GateErrorKind = "invalid"
)

// GateError is returned by the judge gate instead of propagating provider failures.
// Callers treat it as a degrade signal.
type GateError struct {
	Kind     GateErrorKind
	Op       string
	Attempts int
	Err      error
}

func (e *GateError) Error() string {
	msg := fmt.Sprintf("%s: %s %s after %d attempt(s)", ErrGate.Error(), e.Op, e.Kind, e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrGate and the underlying cause.
func (e *GateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGate}
	}
	return []error{ErrGate, e.Err}
}

// NewValidationError wraps a validation message with ErrValidation.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewEncodingError wraps an encoding message with ErrEncoding.
func NewEncodingError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEncoding, fmt.Sprintf(format, args...))
}
