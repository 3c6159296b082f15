package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/query"
	"github.com/kailas-cloud/snipdex/internal/domain/search/result"
	"github.com/kailas-cloud/snipdex/internal/domain/signal"
	"github.com/kailas-cloud/snipdex/internal/domain/variant"
	"github.com/kailas-cloud/snipdex/internal/domain/vector"
)

// Signal normalization defaults.
const (
	DefaultPopularitySaturation = 100
	// MaxKeywordMatches saturates the keyword signal.
	MaxKeywordMatches = 5
)

// Config tunes signal normalization.
type Config struct {
	PopularitySaturation float64
	// PopularityHalfLife decays popularity by age since the last update; zero uses raw counts.
	PopularityHalfLife time.Duration
	// Now is the clock used for popularity decay.
	Now func() time.Time
}

// Service fuses signals into ranked results.
type Service struct {
	registry *variant.Registry
	cfg      Config
}

// New creates a ranking service over the variant registry.
func New(registry *variant.Registry, cfg Config) *Service {
	if cfg.PopularitySaturation <= 0 {
		cfg.PopularitySaturation = DefaultPopularitySaturation
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{registry: registry, cfg: cfg}
}

// Profile resolves a variant name. Unknown names fail with domain.ErrConfiguration.
func (s *Service) Profile(name string) (variant.Profile, error) {
	return s.registry.Get(name)
}

// Score fuses a signal set under the named variant.
func (s *Service) Score(signals signal.Set, m signal.Matches, variantName string) (Fused, error) {
	p, err := s.registry.Get(variantName)
	if err != nil {
		return Fused{}, err
	}
	return Score(signals, m, p), nil
}

// Signals computes the normalized signal set and token matches for one neighbour.
func (s *Service) Signals(q *query.Query, queryVec []float32, n *record.Neighbor) (signal.Set, signal.Matches) {
	rec := &n.Record
	tokens := q.Tokens()

	vecs := rec.Vectors()
	semantic := max(vector.Cosine(queryVec, vecs.Summary), vector.Cosine(queryVec, vecs.Doc))

	textTokens := toSet(query.Tokenize(rec.Summary() + " " + rec.RawText()))
	keywords := toSet(rec.Keywords())

	var m signal.Matches
	for _, t := range tokens {
		if _, ok := textTokens[t]; ok {
			m.Text++
		}
		if _, ok := keywords[t]; ok {
			m.Keyword++
		}
	}

	var density float64
	if len(tokens) > 0 {
		density = float64(m.Text) / float64(len(tokens))
	}

	return signal.NewSet(map[signal.Name]float64{
		signal.Vector:     n.Similarity,
		signal.Semantic:   semantic,
		signal.Keyword:    float64(min(m.Keyword, MaxKeywordMatches)) / MaxKeywordMatches,
		signal.Density:    density,
		signal.Popularity: s.popularity(rec),
	}), m
}

// Rank scores every neighbour under the query's variant and orders them by
// fused score descending, ties by ID ascending. Each result carries the
// min-max normalized score of its pool.
func (s *Service) Rank(q *query.Query, queryVec []float32, neighbors []record.Neighbor) ([]result.Result, error) {
	p, err := s.registry.Get(q.Variant())
	if err != nil {
		return nil, err
	}

	out := make([]result.Result, 0, len(neighbors))
	for i := range neighbors {
		n := &neighbors[i]
		set, m := s.Signals(q, queryVec, n)
		f := Score(set, m, p)
		r := result.New(n.ID, f.Score, set, f.Boost,
			n.Record.Summary(), n.Record.RawText(), n.Record.Tags())
		out = append(out, r.WithKeywords(n.Record.Keywords()))
	}

	SortResults(out)
	return withLocalNorm(out), nil
}

// SortResults orders by score descending, ties by ID ascending.
func SortResults(rs []result.Result) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Score() != rs[j].Score() {
			return rs[i].Score() > rs[j].Score()
		}
		return rs[i].ID() < rs[j].ID()
	})
}

// popularity maps the usage counter to [0,1], saturating at cfg.PopularitySaturation.
func (s *Service) popularity(rec *record.Record) float64 {
	count := float64(rec.Popularity())
	if count <= 0 {
		return 0
	}
	if s.cfg.PopularityHalfLife > 0 && !rec.UpdatedAt().IsZero() {
		age := s.cfg.Now().Sub(rec.UpdatedAt())
		if age > 0 {
			count *= math.Exp2(-float64(age) / float64(s.cfg.PopularityHalfLife))
		}
	}
	return min(count/s.cfg.PopularitySaturation, 1)
}

func withLocalNorm(rs []result.Result) []result.Result {
	if len(rs) == 0 {
		return rs
	}
	lo, hi := rs[0].Score(), rs[0].Score()
	for i := range rs {
		lo = min(lo, rs[i].Score())
		hi = max(hi, rs[i].Score())
	}
	for i := range rs {
		norm := 1.0
		if hi-lo > 1e-12 {
			norm = (rs[i].Score() - lo) / (hi - lo)
		}
		rs[i] = rs[i].WithLocalNorm(norm)
	}
	return rs
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
