package result

import (
	"github.com/kailas-cloud/snipdex/internal/domain/signal"
)

// Result is a single ranked search hit.
type Result struct {
	id            string
	score         float64
	signals       signal.Set
	boost         float64
	localNorm     float64
	confidence    float64
	hasConfidence bool
	summary       string
	rawText       string
	keywords      []string
	tags          map[string]string
}

// New creates a ranked result.
func New(id string, score float64, signals signal.Set, boost float64, summary, rawText string, tags map[string]string) Result {
	return Result{
		id: id, score: score, signals: signals, boost: boost,
		summary: summary, rawText: rawText, tags: tags,
	}
}

// ID returns the record identifier.
func (r *Result) ID() string { return r.id }

// Score returns the fused (possibly rerank-adjusted) score.
func (r *Result) Score() float64 { return r.score }

// Signals returns the per-signal breakdown.
func (r *Result) Signals() signal.Set { return r.signals }

// Boost returns the additive token-match boost included in Score.
func (r *Result) Boost() float64 { return r.boost }

// LocalNorm returns the min-max normalized score within the ranked pool.
func (r *Result) LocalNorm() float64 { return r.localNorm }

// Confidence returns the judge confidence and whether one was assigned.
func (r *Result) Confidence() (float64, bool) { return r.confidence, r.hasConfidence }

// Summary returns the record summary.
func (r *Result) Summary() string { return r.summary }

// RawText returns the record source text.
func (r *Result) RawText() string { return r.rawText }

// Keywords returns the record keyword set.
func (r *Result) Keywords() []string { return r.keywords }

// Tags returns the record tags.
func (r *Result) Tags() map[string]string { return r.tags }

// WithScore returns a copy with a new score.
func (r *Result) WithScore(score float64) Result {
	c := *r
	c.score = score
	return c
}

// WithLocalNorm returns a copy with the pool-normalized score.
func (r *Result) WithLocalNorm(n float64) Result {
	c := *r
	c.localNorm = n
	return c
}

// WithKeywords returns a copy carrying the record keywords.
func (r *Result) WithKeywords(keywords []string) Result {
	c := *r
	c.keywords = append([]string(nil), keywords...)
	return c
}

// WithConfidence returns a copy carrying a judge confidence.
func (r *Result) WithConfidence(conf float64) Result {
	c := *r
	c.confidence = conf
	c.hasConfidence = true
	return c
}

// Clone returns a deep copy so cached slices cannot be mutated through results.
func (r *Result) Clone() Result {
	c := *r
	c.signals = r.signals.Clone()
	if r.keywords != nil {
		c.keywords = append([]string(nil), r.keywords...)
	}
	if r.tags != nil {
		c.tags = make(map[string]string, len(r.tags))
		for k, v := range r.tags {
			c.tags[k] = v
		}
	}
	return c
}

// CloneAll deep-copies a result slice.
func CloneAll(in []Result) []Result {
	if in == nil {
		return nil
	}
	out := make([]Result, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
