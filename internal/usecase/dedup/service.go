package dedup

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/snipdex/internal/domain"
	domdedup "github.com/kailas-cloud/snipdex/internal/domain/dedup"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
	"github.com/kailas-cloud/snipdex/internal/metrics"
)

// Pipeline defaults.
const (
	DefaultTopK            = 3
	DefaultSimilarityFloor = 0.80
	DefaultConfidenceFloor = 0.7
	DefaultSummaryWords    = 12
)

// Config tunes candidate retrieval and verification thresholds.
type Config struct {
	TopK            int
	SimilarityFloor float64
	ConfidenceFloor float64
	SummaryWords    int
}

func (c *Config) applyDefaults() {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.SimilarityFloor <= 0 {
		c.SimilarityFloor = DefaultSimilarityFloor
	}
	if c.ConfidenceFloor <= 0 {
		c.ConfidenceFloor = DefaultConfidenceFloor
	}
	if c.SummaryWords <= 0 {
		c.SummaryWords = DefaultSummaryWords
	}
}

// Service screens new snippets for near-duplicates.
type Service struct {
	enc       Encoder
	retriever Retriever
	gate      Gate
	cfg       Config
	logger    *zap.Logger
}

// New creates a dedup pipeline.
func New(enc Encoder, retriever Retriever, gate Gate, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{enc: enc, retriever: retriever, gate: gate, cfg: cfg, logger: logger}
}

// run carries one screening attempt through the state machine.
type run struct {
	candidateID string
	ev          domdedup.Evidence
}

func (r *run) to(s domdedup.State) {
	r.ev.Trail = append(r.ev.Trail, s)
}

// Check screens rawText. Judge failures degrade the decision; encoding and
// retrieval failures end in ERROR_FALLBACK with a UNIQUE verdict. Only blank
// input is rejected with an error.
func (s *Service) Check(ctx context.Context, candidateID, rawText string) (domdedup.Decision, error) {
	if strings.TrimSpace(rawText) == "" {
		return domdedup.Decision{}, domain.NewValidationError("raw text is required")
	}

	r := &run{candidateID: candidateID}
	r.to(domdedup.StateNew)

	basis := s.summarize(ctx, r, rawText)

	candidates, err := s.fetch(ctx, basis)
	if err != nil {
		return s.fallback(r, err), nil
	}
	r.to(domdedup.StateCandidatesFetched)

	if len(candidates) == 0 {
		r.ev.Reason = "no candidates above similarity floor"
		return s.finish(r, domdedup.Unique, "", 1, domdedup.StateAccepted), nil
	}

	return s.verify(ctx, r, rawText, candidates), nil
}

// summarize returns the comparison basis: the judge summary, or the raw text
// when the judge could not summarize.
func (s *Service) summarize(ctx context.Context, r *run, rawText string) string {
	summary, err := s.gate.Summarize(ctx, rawText, s.cfg.SummaryWords).Result()
	if err != nil || strings.TrimSpace(summary) == "" {
		s.logger.Info("Dedup summary unavailable, comparing raw text",
			zap.String("candidate_id", r.candidateID),
			zap.Error(err),
		)
		r.ev.SummaryFallback = true
		return rawText
	}
	r.ev.Summary = summary
	r.to(domdedup.StateSummarized)
	return summary
}

func (s *Service) fetch(ctx context.Context, basis string) ([]record.Neighbor, error) {
	vecs, err := s.enc.Encode(ctx, []string{basis})
	if err != nil {
		return nil, fmt.Errorf("encode basis: %w", err)
	}
	if len(vecs) != 1 {
		return nil, domain.NewEncodingError("expected 1 vector, got %d", len(vecs))
	}

	neighbors, err := s.retriever.Nearest(ctx, vecs[0], s.cfg.TopK, filter.Expression{})
	if err != nil {
		return nil, fmt.Errorf("nearest: %w", err)
	}

	out := neighbors[:0:0]
	for _, n := range neighbors {
		if n.Similarity >= s.cfg.SimilarityFloor {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Service) verify(
	ctx context.Context, r *run, rawText string, candidates []record.Neighbor,
) domdedup.Decision {
	indeterminate := false
	var uncertainConf float64
	uniqueConf := 1.0

	for _, c := range candidates {
		check := domdedup.Check{CandidateID: c.ID, Similarity: c.Similarity}

		jd, err := s.gate.VerifyDuplicate(ctx, rawText, c.Record.RawText()).Result()
		if err != nil {
			check.GateFailure = err.Error()
			r.ev.Checks = append(r.ev.Checks, check)
			indeterminate = true
			continue
		}
		check.Judgment = jd
		r.ev.Checks = append(r.ev.Checks, check)

		switch {
		case jd.Verdict == domdedup.Duplicate && jd.Confidence >= s.cfg.ConfidenceFloor:
			r.to(domdedup.StateVerified)
			r.ev.Reason = "judge confirmed duplicate"
			return s.finish(r, domdedup.Duplicate, c.ID, jd.Confidence, domdedup.StateRejected)
		case jd.Verdict == domdedup.Unique:
			uniqueConf = min(uniqueConf, jd.Confidence)
		default:
			indeterminate = true
			uncertainConf = max(uncertainConf, jd.Confidence)
		}
	}

	r.to(domdedup.StateVerified)
	if indeterminate {
		r.ev.Reason = "judge could not confirm or rule out duplication"
		return s.finish(r, domdedup.Uncertain, "", uncertainConf, domdedup.StateFlagged)
	}
	r.ev.Reason = "judge ruled out every candidate"
	return s.finish(r, domdedup.Unique, "", uniqueConf, domdedup.StateAccepted)
}

func (s *Service) fallback(r *run, err error) domdedup.Decision {
	s.logger.Warn("Dedup degraded to UNIQUE: candidates unavailable",
		zap.String("candidate_id", r.candidateID),
		zap.Error(err),
	)
	r.ev.Fallback = true
	r.ev.Reason = err.Error()
	return s.finish(r, domdedup.Unique, "", 0, domdedup.StateErrorFallback)
}

func (s *Service) finish(
	r *run, verdict domdedup.Verdict, matchedID string, confidence float64, final domdedup.State,
) domdedup.Decision {
	r.to(final)
	metrics.DedupDecisionsTotal.WithLabelValues(string(verdict), string(final)).Inc()
	s.logger.Info("Dedup decision",
		zap.String("candidate_id", r.candidateID),
		zap.String("verdict", string(verdict)),
		zap.String("state", string(final)),
		zap.String("matched_id", matchedID),
		zap.Int("checks", len(r.ev.Checks)),
	)
	return domdedup.NewDecision(r.candidateID, verdict, matchedID, confidence, final, r.ev)
}
