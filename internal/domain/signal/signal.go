// Package signal names the normalized relevance signals fused by the ranker.
package signal

import (
	"sort"

	"github.com/kailas-cloud/snipdex/internal/domain/vector"
)

// Name identifies a ranking signal.
type Name string

// Known signals. Every value is normalized to [0,1] before weighting.
const (
	Vector     Name = "vector"
	Semantic   Name = "semantic"
	Keyword    Name = "keyword"
	Density    Name = "density"
	Popularity Name = "popularity"
)

// IsValid checks if the name is one of the known signals.
func (n Name) IsValid() bool {
	switch n {
	case Vector, Semantic, Keyword, Density, Popularity:
		return true
	}
	return false
}

// Set maps signal names to normalized scalars. Missing signals read as 0.
type Set map[Name]float64

// NewSet clamps every value into [0,1].
func NewSet(values map[Name]float64) Set {
	s := make(Set, len(values))
	for n, v := range values {
		s[n] = vector.Clamp01(v)
	}
	return s
}

// Get returns the signal value or 0.
func (s Set) Get(n Name) float64 { return s[n] }

// Names returns the present signal names sorted for stable iteration.
func (s Set) Names() []Name {
	out := make([]Name, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for n, v := range s {
		c[n] = v
	}
	return c
}

// Matches counts query tokens found in a candidate, used by additive boosts.
type Matches struct {
	// Text is the number of query tokens present in the candidate text.
	Text int
	// Keyword is the number of query tokens present in the candidate keyword set.
	Keyword int
}
