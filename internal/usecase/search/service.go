package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/snipdex/internal/cache"
	"github.com/kailas-cloud/snipdex/internal/domain"
	"github.com/kailas-cloud/snipdex/internal/domain/search/query"
	"github.com/kailas-cloud/snipdex/internal/domain/search/result"
	"github.com/kailas-cloud/snipdex/internal/domain/variant"
	"github.com/kailas-cloud/snipdex/internal/metrics"
)

// DefaultCandidates is how many neighbours are retrieved before fusion.
const DefaultCandidates = 15

// Config selects the default variant, the candidate pool and reranking.
type Config struct {
	DefaultVariant string
	Candidates     int
	RerankEnabled  bool
}

// Service runs the query path: encode, retrieve, fuse, rerank, truncate.
type Service struct {
	enc       Encoder
	retriever Retriever
	ranker    Ranker
	reranker  Reranker
	cache     Cache
	audit     AuditSink
	cfg       Config
	logger    *zap.Logger
}

// New creates a search service. reranker may be nil; a nil audit sink logs events.
func New(
	enc Encoder, retriever Retriever, ranker Ranker, reranker Reranker,
	c Cache, audit AuditSink, cfg Config, logger *zap.Logger,
) *Service {
	if cfg.DefaultVariant == "" {
		cfg.DefaultVariant = variant.B
	}
	if cfg.Candidates <= 0 {
		cfg.Candidates = DefaultCandidates
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = NewLogSink(logger)
	}
	return &Service{
		enc: enc, retriever: retriever, ranker: ranker, reranker: reranker,
		cache: c, audit: audit, cfg: cfg, logger: logger,
	}
}

// Search returns the top k results for q. An empty variant uses the default.
// Identical queries within the cache lifetime are answered without retrieval.
func (s *Service) Search(ctx context.Context, q *query.Query) ([]result.Result, error) {
	start := time.Now()

	name := q.Variant()
	if name == "" {
		name = s.cfg.DefaultVariant
	}
	if _, err := s.ranker.Profile(name); err != nil {
		return nil, err
	}
	bound := q.WithVariant(name)

	key := cache.Key(bound.Text(), name, bound.Filters().Canonical(), bound.K())
	results, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) ([]result.Result, error) {
		return s.pipeline(ctx, &bound)
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	elapsed := time.Since(start)
	metrics.SearchDuration.WithLabelValues(name, status).Observe(elapsed.Seconds())
	s.emit(ctx, &bound, results, elapsed, err)

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) pipeline(ctx context.Context, q *query.Query) ([]result.Result, error) {
	vecs, err := s.enc.Encode(ctx, []string{q.Text()})
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, domain.NewEncodingError("expected 1 query vector, got %d", len(vecs))
	}

	neighbors, err := s.retriever.Nearest(ctx, vecs[0], max(s.cfg.Candidates, q.K()), q.Filters())
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}

	ranked, err := s.ranker.Rank(q, vecs[0], neighbors)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	if s.cfg.RerankEnabled && s.reranker != nil {
		ranked = s.reranker.Rerank(ctx, q.Text(), ranked)
	}

	if len(ranked) > q.K() {
		ranked = ranked[:q.K()]
	}
	return ranked, nil
}

func (s *Service) emit(ctx context.Context, q *query.Query, rs []result.Result, d time.Duration, err error) {
	ids := make([]string, len(rs))
	for i := range rs {
		ids[i] = rs[i].ID()
	}
	ev := Event{Query: q.Text(), Variant: q.Variant(), K: q.K(), ResultIDs: ids, Duration: d, Err: err}

	actx := context.WithoutCancel(ctx)
	go func() {
		if err := s.audit.Record(actx, ev); err != nil {
			s.logger.Debug("Audit sink failed", zap.Error(err))
		}
	}()
}
