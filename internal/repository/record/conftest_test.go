package record

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/snipdex/internal/db"
	domrec "github.com/kailas-cloud/snipdex/internal/domain/record"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	upsertFn      func(ctx context.Context, index string, p *db.Point) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) Upsert(ctx context.Context, index string, p *db.Point) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, index, p)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func testSchema() Schema {
	return Schema{Index: "snippets", Prefix: "snip:", Dimension: 3, TagFields: []string{"feature"}}
}

func freshRecord(t *testing.T) domrec.Record {
	t.Helper()
	now := time.Unix(1_700_000_000, 0).UTC()
	rec, err := domrec.New("r1", "click the login button", "click login",
		[]string{"Login", "click"}, map[string]string{"feature": "auth"}, now)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	rec = rec.WithPopularity(4)
	return rec.WithVectors(domrec.Vectors{
		Summary: []float32{1, 0, 0},
		Raw:     []float32{0, 1, 0},
		Doc:     []float32{0, 0, 1},
		Main:    []float32{0.7071, 0.7071, 0},
	}, rec.SourceFingerprint())
}
