package candidate

import (
	"context"

	"github.com/kailas-cloud/snipdex/internal/db"
	"github.com/kailas-cloud/snipdex/internal/repository/record"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	calls       int
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.calls++
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func testSchema() record.Schema {
	return record.Schema{Index: "snippets", Prefix: "snip:", Dimension: 3, TagFields: []string{"feature"}}
}

func entry(id string, score float64) db.SearchEntry {
	return db.SearchEntry{
		Key:   "snip:" + id,
		Score: score,
		Fields: map[string]string{
			record.FieldRawText:    "raw " + id,
			record.FieldSummary:    "summary " + id,
			record.FieldKeywords:   "login,button",
			record.FieldPopularity: "3",
			"feature":              "auth",
		},
		Vectors: map[string][]float32{
			record.VecSummary: {1, 0, 0},
			record.VecDoc:     {0, 1, 0},
		},
	}
}
