package chi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	domdedup "github.com/kailas-cloud/snipdex/internal/domain/dedup"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/query"
	"github.com/kailas-cloud/snipdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/snipdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/snipdex/internal/usecase/ingest"
)

// --- Mocks ---

type mockSearcher struct {
	results []result.Result
	err     error
	last    query.Query
}

func (m *mockSearcher) Search(_ context.Context, q *query.Query) ([]result.Result, error) {
	m.last = *q
	return m.results, m.err
}

type mockScreener struct {
	decision domdedup.Decision
	err      error
}

func (m *mockScreener) Check(_ context.Context, _, _ string) (domdedup.Decision, error) {
	return m.decision, m.err
}

type mockIngester struct {
	out  ingestuc.Outcome
	err  error
	last ingestuc.Request
}

func (m *mockIngester) Ingest(_ context.Context, req *ingestuc.Request) (ingestuc.Outcome, error) {
	m.last = *req
	return m.out, m.err
}

type mockRecomputer struct {
	err error
}

func (m *mockRecomputer) Recompute(_ context.Context, rec *record.Record) (record.Record, error) {
	if m.err != nil {
		return record.Record{}, m.err
	}
	v := []float32{0.6, 0.8, 0}
	return rec.WithVectors(record.Vectors{Summary: v, Raw: v, Doc: v, Main: v}, rec.SourceFingerprint()), nil
}

type mockSaver struct {
	saved []record.Record
	err   error
}

func (m *mockSaver) Save(_ context.Context, rec *record.Record) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *rec)
	return nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Helpers ---

type deps struct {
	search   *mockSearcher
	screener *mockScreener
	ingest   *mockIngester
	vectors  *mockRecomputer
	saver    *mockSaver
	health   *mockHealth
}

func newDeps() *deps {
	return &deps{
		search:   &mockSearcher{},
		screener: &mockScreener{},
		ingest:   &mockIngester{},
		vectors:  &mockRecomputer{},
		saver:    &mockSaver{},
		health:   &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
	}
}

func (d *deps) handler() http.Handler {
	s := NewServer(d.search, d.screener, d.ingest, d.vectors, d.saver, d.health, zap.NewNop())
	return NewRouter(s, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
