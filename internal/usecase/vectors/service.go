package vectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/snipdex/internal/domain"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/vector"
)

// Default main vector mix.
const (
	DefaultSummaryWeight = 0.5
	DefaultRawWeight     = 0.5
)

// Config sets the weights of the main vector mix.
type Config struct {
	SummaryWeight float64
	RawWeight     float64
}

// Service derives record vectors from summary and raw text.
type Service struct {
	enc Encoder
	cfg Config
}

// New creates a vector service. Zero weights fall back to the defaults.
func New(enc Encoder, cfg Config) *Service {
	if cfg.SummaryWeight == 0 && cfg.RawWeight == 0 {
		cfg.SummaryWeight = DefaultSummaryWeight
		cfg.RawWeight = DefaultRawWeight
	}
	return &Service{enc: enc, cfg: cfg}
}

// Recompute encodes summary, raw text and the combined document text in a
// single call and returns a record whose vectors match its current sources.
// A blank summary reuses the raw vector for the summary slot.
func (s *Service) Recompute(ctx context.Context, rec *record.Record) (record.Record, error) {
	hasSummary := strings.TrimSpace(rec.Summary()) != ""

	texts := []string{rec.RawText(), rec.DocText()}
	if hasSummary {
		texts = append(texts, rec.Summary())
	}

	vecs, err := s.enc.Encode(ctx, texts)
	if err != nil {
		return record.Record{}, fmt.Errorf("recompute vectors for %s: %w", rec.ID(), err)
	}
	if len(vecs) != len(texts) {
		return record.Record{}, domain.NewEncodingError(
			"recompute vectors for %s: got %d vectors for %d texts", rec.ID(), len(vecs), len(texts))
	}

	raw, doc := vecs[0], vecs[1]
	summary := raw
	if hasSummary {
		summary = vecs[2]
	}

	main, err := vector.Combine(summary, s.cfg.SummaryWeight, raw, s.cfg.RawWeight)
	if err != nil {
		return record.Record{}, domain.NewEncodingError("recompute vectors for %s: %v", rec.ID(), err)
	}

	return rec.WithVectors(record.Vectors{
		Summary: summary,
		Raw:     raw,
		Doc:     doc,
		Main:    main,
	}, rec.SourceFingerprint()), nil
}

// CheckConsistency reports ErrInconsistentState when the record's vectors
// were not computed from its current summary and raw text.
func (s *Service) CheckConsistency(rec *record.Record) error {
	if rec.Vectors().IsEmpty() {
		return fmt.Errorf("%w: record %s has no main vector", domain.ErrInconsistentState, rec.ID())
	}
	if rec.IsStale() {
		return fmt.Errorf("%w: record %s main vector is stale", domain.ErrInconsistentState, rec.ID())
	}
	return nil
}

// EnsureFresh returns rec unchanged when consistent, otherwise a recomputed copy.
func (s *Service) EnsureFresh(ctx context.Context, rec *record.Record) (record.Record, error) {
	if s.CheckConsistency(rec) == nil {
		return *rec, nil
	}
	return s.Recompute(ctx, rec)
}
