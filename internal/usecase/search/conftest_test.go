package search

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/snipdex/internal/cache"
	"github.com/kailas-cloud/snipdex/internal/domain"
	domjudge "github.com/kailas-cloud/snipdex/internal/domain/judge"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
	"github.com/kailas-cloud/snipdex/internal/domain/search/query"
	"github.com/kailas-cloud/snipdex/internal/domain/variant"
	"github.com/kailas-cloud/snipdex/internal/usecase/ranking"
	"github.com/kailas-cloud/snipdex/internal/usecase/rerank"
)

// --- Mocks ---

type mockEncoder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vec
	}
	return out, nil
}

type mockRetriever struct {
	mu        sync.Mutex
	neighbors []record.Neighbor
	err       error
	calls     int
	lastK     int
}

func (m *mockRetriever) Nearest(_ context.Context, _ []float32, k int, _ filter.Expression) ([]record.Neighbor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.neighbors, nil
}

type mockGate struct {
	out   domain.Outcome[domjudge.Scores]
	calls int
}

func (m *mockGate) Rerank(_ context.Context, _ string, _ []domjudge.Item) domain.Outcome[domjudge.Scores] {
	m.calls++
	return m.out
}

type chanSink struct {
	events chan Event
}

func (s *chanSink) Record(_ context.Context, ev Event) error {
	s.events <- ev
	return fmt.Errorf("sink errors are ignored")
}

// --- Fixtures ---

// neighbor builds a retrieved record whose vectors all equal vec.
func neighbor(t *testing.T, id, raw string, sim float64, vec []float32) record.Neighbor {
	t.Helper()
	rec, err := record.New(id, raw, raw, nil, nil, time.Unix(1_700_000_000, 0))
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	rec = rec.WithVectors(record.Vectors{Summary: vec, Raw: vec, Doc: vec, Main: vec}, rec.SourceFingerprint())
	return record.Neighbor{ID: id, Similarity: sim, Record: rec}
}

func pool(t *testing.T) []record.Neighbor {
	t.Helper()
	return []record.Neighbor{
		neighbor(t, "a", "retry a flaky http call", 0.95, []float32{1, 0}),
		neighbor(t, "b", "bounded worker pool with semaphore", 0.90, []float32{1, 0}),
		neighbor(t, "c", "parse yaml config file", 0.60, []float32{0, 1}),
		neighbor(t, "d", "render html template", 0.50, []float32{0, 1}),
	}
}

type fixture struct {
	enc       *mockEncoder
	retriever *mockRetriever
	gate      *mockGate
	sink      *chanSink
	svc       *Service
}

func newFixture(t *testing.T, cfg Config, gateOut domain.Outcome[domjudge.Scores]) *fixture {
	t.Helper()
	reg, err := variant.NewRegistry(variant.Builtins()...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	f := &fixture{
		enc:       &mockEncoder{vec: []float32{1, 0}},
		retriever: &mockRetriever{neighbors: pool(t)},
		gate:      &mockGate{out: gateOut},
		sink:      &chanSink{events: make(chan Event, 16)},
	}
	f.svc = New(f.enc, f.retriever, ranking.New(reg, ranking.Config{}),
		rerank.New(f.gate, rerank.Config{}, nil),
		cache.NewResults(16, time.Minute), f.sink, cfg, nil)
	return f
}

func newQuery(t *testing.T, text, v string, k int) query.Query {
	t.Helper()
	q, err := query.New(text, v, filter.Expression{}, k)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}
