package ingest

import (
	"context"

	domdedup "github.com/kailas-cloud/snipdex/internal/domain/dedup"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
)

// Screener decides whether a snippet duplicates an indexed one.
type Screener interface {
	Check(ctx context.Context, candidateID, rawText string) (domdedup.Decision, error)
}

// Recomputer derives fresh vectors for a record.
type Recomputer interface {
	Recompute(ctx context.Context, rec *record.Record) (record.Record, error)
}

// Saver persists a record with fresh vectors.
type Saver interface {
	Save(ctx context.Context, rec *record.Record) error
}
