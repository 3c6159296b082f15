package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/snipdex/internal/domain"
)

// errorCode is the machine-readable error code in API responses.
type errorCode string

const (
	codeBadRequest             errorCode = "bad_request"
	codeValidationFailed       errorCode = "validation_failed"
	codeConfiguration          errorCode = "configuration_error"
	codeNotFound               errorCode = "not_found"
	codeInconsistentState      errorCode = "inconsistent_state"
	codeRateLimited            errorCode = "rate_limited"
	codeEmbeddingProviderError errorCode = "embedding_provider_error"
	codeRetrievalFailed        errorCode = "retrieval_failed"
	codeJudgeUnavailable       errorCode = "judge_unavailable"
	codeInternalError          errorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a client-safe message. Validation and configuration
// errors describe the caller's mistake and are returned in full; everything
// else collapses to the sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConfiguration) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInconsistentState,
		domain.ErrRateLimited,
		domain.ErrEncoding,
		domain.ErrRetrieval,
		domain.ErrGate,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}
