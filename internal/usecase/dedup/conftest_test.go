package dedup

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/snipdex/internal/domain"
	domdedup "github.com/kailas-cloud/snipdex/internal/domain/dedup"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
	"github.com/kailas-cloud/snipdex/internal/domain/vector"
)

// hashEncoder maps each word to a bucket: identical texts get identical vectors.
type hashEncoder struct {
	err error
}

func (e *hashEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 16)
		for _, w := range strings.Fields(strings.ToLower(t)) {
			h := fnv.New32a()
			h.Write([]byte(w))
			v[h.Sum32()%16]++
		}
		out[i] = vector.Normalize(v)
	}
	return out, nil
}

// memoryRetriever is an in-memory nearest-neighbour index.
type memoryRetriever struct {
	mu      sync.Mutex
	records []record.Record
	enc     *hashEncoder
	err     error
	calls   int
}

func (m *memoryRetriever) add(rec record.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
}

func (m *memoryRetriever) Nearest(_ context.Context, vec []float32, k int, _ filter.Expression) ([]record.Neighbor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]record.Neighbor, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, record.Neighbor{ID: r.ID(), Similarity: vector.Cosine(vec, r.Vectors().Main), Record: r})
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

// stubGate answers summaries and verdicts from funcs; nil funcs fail with a gate error.
type stubGate struct {
	summarize func(text string) domain.Outcome[string]
	verify    func(candidate, existing string) domain.Outcome[domdedup.Judgment]
	verifies  int
}

func (g *stubGate) Summarize(_ context.Context, text string, _ int) domain.Outcome[string] {
	if g.summarize == nil {
		return domain.Failed[string](&domain.GateError{Kind: domain.GateTimeout, Op: "summarize"})
	}
	return g.summarize(text)
}

func (g *stubGate) VerifyDuplicate(_ context.Context, candidate, existing string) domain.Outcome[domdedup.Judgment] {
	g.verifies++
	if g.verify == nil {
		return domain.Failed[domdedup.Judgment](&domain.GateError{Kind: domain.GateRateLimited, Op: "verify_duplicate"})
	}
	return g.verify(candidate, existing)
}

func alwaysDuplicate(conf float64) func(string, string) domain.Outcome[domdedup.Judgment] {
	return func(string, string) domain.Outcome[domdedup.Judgment] {
		return domain.Succeeded(domdedup.Judgment{Verdict: domdedup.Duplicate, Confidence: conf})
	}
}

func echoSummary(text string) domain.Outcome[string] {
	return domain.Succeeded(text)
}

// indexed builds a record whose main vector is the encoding of raw.
func indexed(enc *hashEncoder, id, raw string) record.Record {
	rec, err := record.New(id, raw, raw, nil, nil, time.Unix(1_700_000_000, 0))
	if err != nil {
		panic(err)
	}
	vecs, _ := enc.Encode(context.Background(), []string{raw})
	return rec.WithVectors(record.Vectors{Summary: vecs[0], Raw: vecs[0], Doc: vecs[0], Main: vecs[0]},
		rec.SourceFingerprint())
}
