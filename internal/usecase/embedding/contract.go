package embedding

import (
	"context"

	"github.com/kailas-cloud/snipdex/internal/domain"
)

// Provider is the batch embedding backend the adapter drives
// (the openai transport, optionally wrapped by the KV cache and instrumentation).
type Provider interface {
	domain.BatchEmbedder
}

// healthChecker is implemented by providers that can probe their backend.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}
