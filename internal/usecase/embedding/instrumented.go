package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/snipdex/internal/domain"
	"github.com/kailas-cloud/snipdex/internal/metrics"
)

// InstrumentedEmbedder wraps a BatchEmbedder with logging and per-kind text counters.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner    domain.BatchEmbedder
	provider string
	model    string
	kind     string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
// kind labels the traffic ("query" or "record").
func NewInstrumentedEmbedder(
	inner domain.BatchEmbedder, provider, model, kind string, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		kind:     kind,
		logger:   logger,
	}
}

// BatchEmbed delegates to inner and logs the outcome.
func (p *InstrumentedEmbedder) BatchEmbed(
	ctx context.Context, texts []string,
) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	result, err := p.inner.BatchEmbed(ctx, texts)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Batch embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.String("kind", p.kind),
			zap.Int("batch_size", len(texts)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}

	metrics.EmbeddingTextsTotal.WithLabelValues(p.kind).Add(float64(len(texts)))

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.String("kind", p.kind),
		zap.Duration("duration", duration),
		zap.Int("batch_size", len(texts)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(healthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
