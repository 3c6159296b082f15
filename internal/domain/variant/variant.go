// Package variant holds ranking weight profiles as data.
package variant

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/snipdex/internal/domain"
	"github.com/kailas-cloud/snipdex/internal/domain/signal"
)

// MaxWeightSum bounds the weighted part of a fused score.
const MaxWeightSum = 1.0

const weightEpsilon = 1e-9

// Boost describes additive token-match bonuses applied after the weighted sum.
type Boost struct {
	TextPerMatch    float64
	KeywordPerMatch float64
	Cap             float64
}

// IsZero reports whether the profile applies no boost.
func (b Boost) IsZero() bool {
	return b.TextPerMatch == 0 && b.KeywordPerMatch == 0
}

// Profile is a named, versioned weight table.
type Profile struct {
	Name    string
	Version int
	Weights map[signal.Name]float64
	Boost   Boost
}

// Validate checks weights are known, non-negative and bounded, and the boost is well formed.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: variant name is required", domain.ErrConfiguration)
	}
	if p.Version <= 0 {
		return fmt.Errorf("%w: variant %q: version must be positive", domain.ErrConfiguration, p.Name)
	}
	if len(p.Weights) == 0 {
		return fmt.Errorf("%w: variant %q: at least one weight is required", domain.ErrConfiguration, p.Name)
	}
	var sum float64
	for n, w := range p.Weights {
		if !n.IsValid() {
			return fmt.Errorf("%w: variant %q: unknown signal %q", domain.ErrConfiguration, p.Name, n)
		}
		if w < 0 {
			return fmt.Errorf("%w: variant %q: weight for %q is negative", domain.ErrConfiguration, p.Name, n)
		}
		sum += w
	}
	if sum > MaxWeightSum+weightEpsilon {
		return fmt.Errorf("%w: variant %q: weights sum to %.4f (max %.1f)",
			domain.ErrConfiguration, p.Name, sum, MaxWeightSum)
	}
	if p.Boost.TextPerMatch < 0 || p.Boost.KeywordPerMatch < 0 || p.Boost.Cap < 0 {
		return fmt.Errorf("%w: variant %q: boost values must be non-negative", domain.ErrConfiguration, p.Name)
	}
	return nil
}

// Signals returns the weighted signal names sorted for stable summation.
func (p Profile) Signals() []signal.Name {
	out := make([]signal.Name, 0, len(p.Weights))
	for n := range p.Weights {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p Profile) clone() Profile {
	w := make(map[signal.Name]float64, len(p.Weights))
	for n, v := range p.Weights {
		w[n] = v
	}
	p.Weights = w
	return p
}

// Built-in variant names.
const (
	A = "A"
	B = "B"
)

// Builtins returns the shipped profiles.
// A is a coarse baseline weighted toward raw vector similarity plus token boosts.
// B spreads weight over more signals and applies no boost.
func Builtins() []Profile {
	return []Profile{
		{
			Name:    A,
			Version: 1,
			Weights: map[signal.Name]float64{
				signal.Vector:   0.60,
				signal.Semantic: 0.25,
			},
			Boost: Boost{TextPerMatch: 0.10, KeywordPerMatch: 0.15, Cap: 0.15},
		},
		{
			Name:    B,
			Version: 1,
			Weights: map[signal.Name]float64{
				signal.Vector:     0.45,
				signal.Semantic:   0.20,
				signal.Keyword:    0.12,
				signal.Density:    0.05,
				signal.Popularity: 0.05,
			},
		},
	}
}

// Registry resolves variant names to validated profiles. Safe for concurrent reads.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry validates every profile. Later profiles override earlier ones with the same name.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[string]Profile, len(profiles))}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.profiles[p.Name] = p.clone()
	}
	return r, nil
}

// Get returns the profile for name or ErrConfiguration when unknown.
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: unknown variant %q", domain.ErrConfiguration, name)
	}
	return p.clone(), nil
}

// Names returns the registered variant names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
