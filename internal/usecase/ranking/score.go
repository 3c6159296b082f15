package ranking

import (
	"math"

	"github.com/kailas-cloud/snipdex/internal/domain/signal"
	"github.com/kailas-cloud/snipdex/internal/domain/variant"
)

// scorePrecision is the rounding step applied to fused scores so that
// re-runs and different summation orders agree exactly.
const scorePrecision = 1e9

// Fused is a fused score with its parts.
type Fused struct {
	Score    float64
	Weighted float64
	Boost    float64
}

// Score fuses a signal set under a profile. It is a pure function:
// the weighted sum runs in sorted signal order and the boost is
// additive, capped and applied after the sum.
func Score(signals signal.Set, m signal.Matches, p variant.Profile) Fused {
	var weighted float64
	for _, n := range p.Signals() {
		weighted += p.Weights[n] * signals.Get(n)
	}

	boost := float64(m.Text)*p.Boost.TextPerMatch + float64(m.Keyword)*p.Boost.KeywordPerMatch
	boost = min(boost, p.Boost.Cap)

	return Fused{
		Score:    round(weighted + boost),
		Weighted: round(weighted),
		Boost:    round(boost),
	}
}

func round(x float64) float64 {
	return math.Round(x*scorePrecision) / scorePrecision
}
