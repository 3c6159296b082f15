package candidate

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/snipdex/internal/db"
	"github.com/kailas-cloud/snipdex/internal/domain"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
	"github.com/kailas-cloud/snipdex/internal/repository/record"
)

func TestNearest_SortsBySimilarityThenID(t *testing.T) {
	ms := &mockStore{
		searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
				entry("b", 0.8), entry("c", 0.9), entry("a", 0.8),
			}}, nil
		},
	}
	got, err := New(ms, testSchema()).Nearest(context.Background(), []float32{1, 0, 0}, 3, filter.Expression{})
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}

	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d neighbours, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestNearest_KeepsNegativeSimilarityOrder(t *testing.T) {
	ms := &mockStore{
		searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
				entry("a", -0.7), entry("b", -0.2), entry("c", 0.1),
			}}, nil
		},
	}
	got, err := New(ms, testSchema()).Nearest(context.Background(), []float32{1, 0, 0}, 3, filter.Expression{})
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}

	want := []struct {
		id  string
		sim float64
	}{{"c", 0.1}, {"b", -0.2}, {"a", -0.7}}
	for i, w := range want {
		if got[i].ID != w.id || got[i].Similarity != w.sim {
			t.Errorf("position %d: got %s/%v, want %s/%v", i, got[i].ID, got[i].Similarity, w.id, w.sim)
		}
	}
}

func TestNearest_HydratesRecord(t *testing.T) {
	ms := &mockStore{
		searchKNNFn: func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{entry("a", 0.75)}}, nil
		},
	}
	got, err := New(ms, testSchema()).Nearest(context.Background(), []float32{1, 0, 0}, 1, filter.Expression{})
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}

	rec := got[0].Record
	if rec.Summary() != "summary a" || rec.RawText() != "raw a" {
		t.Errorf("unexpected texts: %q / %q", rec.Summary(), rec.RawText())
	}
	if len(rec.Keywords()) != 2 || rec.Popularity() != 3 {
		t.Errorf("unexpected keywords %v popularity %d", rec.Keywords(), rec.Popularity())
	}
	if len(rec.Vectors().Summary) != 3 || len(rec.Vectors().Doc) != 3 {
		t.Error("expected summary and doc vectors hydrated")
	}
	if got[0].Similarity != 0.75 {
		t.Errorf("expected similarity 0.75, got %v", got[0].Similarity)
	}
}

func TestNearest_BuildsQuery(t *testing.T) {
	var q *db.KNNQuery
	ms := &mockStore{
		searchKNNFn: func(_ context.Context, got *db.KNNQuery) (*db.SearchResult, error) {
			q = got
			return &db.SearchResult{}, nil
		},
	}
	f, _ := filter.NewExpression([]filter.Condition{mustMatch(t, "feature", "auth")}, nil, nil)

	if _, err := New(ms, testSchema()).Nearest(context.Background(), []float32{1}, 15, f); err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if q.IndexName != "snippets" || q.VectorField != record.VecMain || q.K != 15 {
		t.Errorf("unexpected query: %+v", q)
	}
	if len(q.Filters.Must()) != 1 {
		t.Errorf("expected filter to be forwarded, got %+v", q.Filters)
	}
	if len(q.ReturnVectors) != 2 {
		t.Errorf("expected summary and doc vectors requested, got %v", q.ReturnVectors)
	}
	found := false
	for _, f := range q.ReturnFields {
		if f == "feature" {
			found = true
		}
	}
	if !found {
		t.Error("expected tag field in RETURN list")
	}
}

func TestNearest_StoreErrorIsRetrievalError(t *testing.T) {
	cause := errors.New("connection reset")
	ms := &mockStore{
		searchKNNFn: func(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
			return nil, cause
		},
	}
	_, err := New(ms, testSchema()).Nearest(context.Background(), []float32{1}, 3, filter.Expression{})
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Errorf("expected ErrRetrieval, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
	if ms.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", ms.calls)
	}
}

func TestNearest_ZeroK(t *testing.T) {
	ms := &mockStore{}
	got, err := New(ms, testSchema()).Nearest(context.Background(), []float32{1}, 0, filter.Expression{})
	if err != nil || got != nil {
		t.Errorf("expected nil, nil; got %v, %v", got, err)
	}
	if ms.calls != 0 {
		t.Error("store must not be called for k=0")
	}
}

func mustMatch(t *testing.T, key, val string) filter.Condition {
	t.Helper()
	c, err := filter.NewMatch(key, val)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return c
}
