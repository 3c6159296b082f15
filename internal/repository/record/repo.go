package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/snipdex/internal/db"
	domrec "github.com/kailas-cloud/snipdex/internal/domain/record"
)

// store is the consumer interface for record persistence (ISP).
type store interface {
	Upsert(ctx context.Context, index string, p *db.Point) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo persists records for the ingest surface.
type Repo struct {
	store  store
	schema Schema
}

// New creates a record repository.
func New(s store, schema Schema) *Repo {
	return &Repo{store: s, schema: schema}
}

// EnsureIndex creates the record index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.schema.Index)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.schema.Index, err)
	}
	if exists {
		return nil
	}

	def, err := r.schema.Definition()
	if err != nil {
		return fmt.Errorf("index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.schema.Index, err)
	}
	return nil
}

// Save upserts a record. Records with stale or missing vectors are refused.
func (r *Repo) Save(ctx context.Context, rec *domrec.Record) error {
	if rec.IsStale() {
		return fmt.Errorf("save %s: vectors are stale", rec.ID())
	}
	for k := range rec.Tags() {
		if IsReserved(k) {
			return fmt.Errorf("save %s: tag %q uses a reserved name", rec.ID(), k)
		}
	}
	if err := r.store.Upsert(ctx, r.schema.Index, ToPoint(r.schema, rec)); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.ID(), err)
	}
	return nil
}
