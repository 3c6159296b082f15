package snipdex

import (
	"fmt"

	"github.com/kailas-cloud/snipdex/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation        = domain.ErrValidation
	ErrConfiguration     = domain.ErrConfiguration
	ErrNotFound          = domain.ErrNotFound
	ErrInconsistentState = domain.ErrInconsistentState
	ErrRateLimited       = domain.ErrRateLimited
	ErrEncoding          = domain.ErrEncoding
	ErrRetrieval         = domain.ErrRetrieval
	ErrGate              = domain.ErrGate
)

// codeSentinels maps API error codes to sentinels.
var codeSentinels = map[string]error{
	"bad_request":              ErrValidation,
	"validation_failed":        ErrValidation,
	"configuration_error":      ErrConfiguration,
	"not_found":                ErrNotFound,
	"inconsistent_state":       ErrInconsistentState,
	"rate_limited":             ErrRateLimited,
	"embedding_provider_error": ErrEncoding,
	"retrieval_failed":         ErrRetrieval,
	"judge_unavailable":        ErrGate,
}

// APIError is a non-2xx response from the server.
// It unwraps to the matching sentinel when the code is known.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("snipdex: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return codeSentinels[e.Code]
}
