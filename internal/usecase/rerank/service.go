package rerank

import (
	"context"
	"sort"

	"go.uber.org/zap"

	domjudge "github.com/kailas-cloud/snipdex/internal/domain/judge"
	"github.com/kailas-cloud/snipdex/internal/domain/search/result"
	"github.com/kailas-cloud/snipdex/internal/metrics"
)

// Reranker defaults.
const (
	DefaultWindow = 10
	DefaultWeight = 0.1
	// NeutralConfidence is assigned to window results the judge did not score.
	NeutralConfidence = 0.5
)

// Config bounds the judge's influence on ordering.
type Config struct {
	Window int
	Weight float64
}

// Service refines the head of a ranked list with judge confidences.
type Service struct {
	gate   Gate
	cfg    Config
	logger *zap.Logger
}

// New creates a reranker.
func New(g Gate, cfg Config, logger *zap.Logger) *Service {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Weight < 0 {
		cfg.Weight = DefaultWeight
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gate: g, cfg: cfg, logger: logger}
}

// Rerank sends the top window to the judge and shifts each window score by
// Weight*(confidence-0.5). Only the window is reordered; results outside it
// keep their positions. Any judge failure returns the input ordering unchanged.
func (s *Service) Rerank(ctx context.Context, query string, ranked []result.Result) []result.Result {
	out := result.CloneAll(ranked)
	if len(out) < 2 {
		return out
	}

	window := out[:min(s.cfg.Window, len(out))]
	items := make([]domjudge.Item, len(window))
	for i := range window {
		items[i] = domjudge.Item{
			ID:       window[i].ID(),
			Summary:  window[i].Summary(),
			RawText:  window[i].RawText(),
			Keywords: window[i].Keywords(),
		}
	}

	scores, err := s.gate.Rerank(ctx, query, items).Result()
	if err != nil || len(scores) == 0 {
		metrics.RerankTotal.WithLabelValues("fallback").Inc()
		s.logger.Info("Rerank skipped, keeping fused order",
			zap.Int("window", len(window)),
			zap.Error(err),
		)
		return out
	}

	for i := range window {
		conf, ok := scores[window[i].ID()]
		if !ok {
			conf = NeutralConfidence
		}
		conf = min(1, max(0, conf))
		adjusted := window[i].Score() + s.cfg.Weight*(conf-NeutralConfidence)
		r := window[i].WithScore(adjusted)
		window[i] = r.WithConfidence(conf)
	}

	sort.SliceStable(window, func(i, j int) bool {
		if window[i].Score() != window[j].Score() {
			return window[i].Score() > window[j].Score()
		}
		return window[i].ID() < window[j].ID()
	})

	metrics.RerankTotal.WithLabelValues("applied").Inc()
	s.logger.Debug("Rerank applied",
		zap.Int("window", len(window)),
		zap.Int("judged", len(scores)),
	)
	return out
}
