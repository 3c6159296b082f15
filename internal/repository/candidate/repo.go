package candidate

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/snipdex/internal/db"
	"github.com/kailas-cloud/snipdex/internal/domain"
	domrec "github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
	"github.com/kailas-cloud/snipdex/internal/domain/vector"
	"github.com/kailas-cloud/snipdex/internal/repository/record"
)

// store is the consumer interface for nearest-neighbour retrieval (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo retrieves the records nearest to a probe vector.
type Repo struct {
	store  store
	schema record.Schema
}

// New creates a candidate repository.
func New(s store, schema record.Schema) *Repo {
	return &Repo{store: s, schema: schema}
}

// Nearest returns up to k neighbours of vec on the main vector, most similar first.
// Ties are broken by ID. Store failures are wrapped with domain.ErrRetrieval; there is no retry.
func (r *Repo) Nearest(
	ctx context.Context, vec []float32, k int, filters filter.Expression,
) ([]domrec.Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}

	q := &db.KNNQuery{
		IndexName:     r.schema.Index,
		VectorField:   record.VecMain,
		Filters:       filters,
		Vector:        vec,
		K:             k,
		ReturnFields:  r.returnFields(),
		ReturnVectors: []string{record.VecSummary, record.VecDoc},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: knn on %s: %w", domain.ErrRetrieval, r.schema.Index, err)
	}

	out := make([]domrec.Neighbor, 0, len(sr.Entries))
	for i := range sr.Entries {
		e := &sr.Entries[i]
		rec, err := record.FromEntry(r.schema, e)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
		}
		out = append(out, domrec.Neighbor{
			ID:         rec.ID(),
			Similarity: vector.ClampCosine(e.Score),
			Record:     rec,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ID < out[j].ID
	})

	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (r *Repo) returnFields() []string {
	fields := []string{
		record.FieldRawText, record.FieldSummary, record.FieldKeywords,
		record.FieldFingerprint, record.FieldPopularity,
		record.FieldCreatedAt, record.FieldUpdatedAt,
	}
	return append(fields, r.schema.TagFields...)
}
