package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/snipdex/internal/domain"
	domdedup "github.com/kailas-cloud/snipdex/internal/domain/dedup"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
)

// Policy decides what happens to a snippet the dedup pipeline flagged as uncertain.
type Policy string

// Uncertain verdict policies.
const (
	PolicyHold   Policy = "hold"
	PolicyAccept Policy = "accept"
	PolicyReject Policy = "reject"
)

// IsValid checks if the policy is one of the supported values.
func (p Policy) IsValid() bool {
	return p == PolicyHold || p == PolicyAccept || p == PolicyReject
}

// Status is the ingest outcome.
type Status string

// Ingest statuses.
const (
	StatusCommitted Status = "committed"
	StatusRejected  Status = "rejected"
	StatusHeld      Status = "held"
)

// Request is one snippet to ingest. An empty ID gets a generated UUID,
// empty Keywords are extracted from the final summary and raw text.
type Request struct {
	ID         string
	RawText    string
	Summary    string
	Keywords   []string
	Tags       map[string]string
	Popularity int
}

// Outcome reports what happened to an ingested snippet.
type Outcome struct {
	ID       string
	Status   Status
	Decision domdedup.Decision
}

// Service screens snippets and stores the ones that pass.
type Service struct {
	screener Screener
	vectors  Recomputer
	saver    Saver
	policy   Policy
	now      func() time.Time
	logger   *zap.Logger
}

// New creates an ingest service. An invalid policy falls back to PolicyHold.
func New(screener Screener, vectors Recomputer, saver Saver, policy Policy, logger *zap.Logger) *Service {
	if !policy.IsValid() {
		policy = PolicyHold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		screener: screener, vectors: vectors, saver: saver,
		policy: policy, now: time.Now, logger: logger,
	}
}

// Ingest screens req for duplicates and, when accepted, recomputes its vectors and saves it.
func (s *Service) Ingest(ctx context.Context, req *Request) (Outcome, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	rec, err := record.New(id, req.RawText, req.Summary, req.Keywords, req.Tags, s.now())
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if req.Popularity > 0 {
		rec = rec.WithPopularity(req.Popularity)
	}

	decision, err := s.screener.Check(ctx, id, req.RawText)
	if err != nil {
		return Outcome{}, fmt.Errorf("check duplicate: %w", err)
	}

	out := Outcome{ID: id, Decision: decision}
	switch s.route(&decision) {
	case StatusRejected:
		out.Status = StatusRejected
		s.logger.Info("Snippet not stored", zap.String("id", id),
			zap.String("verdict", string(decision.Verdict())),
			zap.String("matched_id", decision.MatchedID()))
		return out, nil
	case StatusHeld:
		out.Status = StatusHeld
		s.logger.Info("Snippet held for review", zap.String("id", id))
		return out, nil
	}

	if rec.Summary() == "" && decision.Evidence().Summary != "" {
		rec = rec.WithSummary(decision.Evidence().Summary)
	}
	if len(rec.Keywords()) == 0 {
		rec = rec.WithKeywords(record.ExtractKeywords(rec.DocText(), record.MaxExtractedKeywords))
	}

	fresh, err := s.vectors.Recompute(ctx, &rec)
	if err != nil {
		return Outcome{}, fmt.Errorf("recompute vectors: %w", err)
	}
	if err := s.saver.Save(ctx, &fresh); err != nil {
		return Outcome{}, fmt.Errorf("save record: %w", err)
	}

	out.Status = StatusCommitted
	s.logger.Info("Snippet stored", zap.String("id", id),
		zap.String("verdict", string(decision.Verdict())))
	return out, nil
}

func (s *Service) route(d *domdedup.Decision) Status {
	switch d.Verdict() {
	case domdedup.Duplicate:
		return StatusRejected
	case domdedup.Uncertain:
		switch s.policy {
		case PolicyAccept:
			return StatusCommitted
		case PolicyReject:
			return StatusRejected
		default:
			return StatusHeld
		}
	default:
		return StatusCommitted
	}
}
