package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/snipdex/internal/db"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
)

// SearchKNN queries the named vector and maps cosine scores to [0,1].
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.VectorField == "" {
		return nil, fmt.Errorf("vector field is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	req := &qdrant.QueryPoints{
		CollectionName: q.IndexName,
		Query:          qdrant.NewQuery(q.Vector...),
		Using:          qdrant.PtrOf(q.VectorField),
		Filter:         buildFilter(q.Filters),
		Limit:          qdrant.PtrOf(uint64(q.K)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if len(q.ReturnVectors) > 0 {
		req.WithVectors = qdrant.NewWithVectorsInclude(q.ReturnVectors...)
	}

	points, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	return toSearchResult(points, q.ReturnFields), nil
}

func toSearchResult(points []*qdrant.ScoredPoint, returnFields []string) *db.SearchResult {
	entries := make([]db.SearchEntry, 0, len(points))
	for _, p := range points {
		key, fields := payloadToFields(p.GetPayload())
		if key == "" {
			key = p.GetId().GetUuid()
		}
		if len(returnFields) > 0 {
			fields = project(fields, returnFields)
		}

		entry := db.SearchEntry{
			Key:    key,
			Score:  min(1, max(-1, float64(p.GetScore()))),
			Fields: fields,
		}

		if named := p.GetVectors().GetVectors().GetVectors(); len(named) > 0 {
			entry.Vectors = make(map[string][]float32, len(named))
			for name, v := range named {
				entry.Vectors[name] = v.GetData()
			}
		}

		entries = append(entries, entry)
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}
}

func project(fields map[string]string, keep []string) map[string]string {
	out := make(map[string]string, len(keep))
	for _, k := range keep {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// buildFilter translates filter.Expression into a Qdrant payload filter.
func buildFilter(expr filter.Expression) *qdrant.Filter {
	if expr.IsEmpty() {
		return nil
	}
	return &qdrant.Filter{
		Must:    buildConditions(expr.Must()),
		Should:  buildConditions(expr.Should()),
		MustNot: buildConditions(expr.MustNot()),
	}
}

func buildConditions(conds []filter.Condition) []*qdrant.Condition {
	if len(conds) == 0 {
		return nil
	}
	out := make([]*qdrant.Condition, 0, len(conds))
	for _, c := range conds {
		switch {
		case c.IsMatch():
			out = append(out, qdrant.NewMatch(c.Key(), c.Match()))
		case c.IsRange():
			r := c.Range()
			out = append(out, qdrant.NewRange(c.Key(), &qdrant.Range{
				Gt: r.GT(), Gte: r.GTE(), Lt: r.LT(), Lte: r.LTE(),
			}))
		}
	}
	return out
}
