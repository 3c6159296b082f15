package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kailas-cloud/snipdex/internal/domain"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
)

// Query parameter limits.
const (
	// MaxTextLength is the maximum allowed query length in bytes.
	MaxTextLength = 4096
	DefaultK      = 5
	MaxK          = 100
)

var tokenRegex = regexp.MustCompile(`[\p{L}\p{N}_'-]+`)

// Query is a validated search request (immutable value object).
type Query struct {
	text    string
	variant string
	filters filter.Expression
	k       int
	tokens  []string
}

// New validates and normalizes search parameters.
// An empty variant means "use the configured default"; k=0 means DefaultK.
func New(text, variant string, filters filter.Expression, k int) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, domain.NewValidationError("query text is required")
	}
	if len(text) > MaxTextLength {
		return Query{}, domain.NewValidationError("query too long (max %d bytes)", MaxTextLength)
	}
	if k < 0 {
		return Query{}, domain.NewValidationError("k must be positive")
	}
	if k == 0 {
		k = DefaultK
	}
	if k > MaxK {
		return Query{}, domain.NewValidationError("k too large (max %d)", MaxK)
	}

	return Query{
		text:    text,
		variant: strings.TrimSpace(variant),
		filters: filters,
		k:       k,
		tokens:  Tokenize(text),
	}, nil
}

// Text returns the trimmed query text.
func (q *Query) Text() string { return q.text }

// Variant returns the requested ranking variant name (may be empty).
func (q *Query) Variant() string { return q.variant }

// Filters returns the pre-filter expression.
func (q *Query) Filters() filter.Expression { return q.filters }

// K returns the number of results to return.
func (q *Query) K() int { return q.k }

// Tokens returns the distinct lower-cased query tokens, sorted.
func (q *Query) Tokens() []string { return q.tokens }

// WithVariant returns a copy bound to a resolved variant name.
func (q *Query) WithVariant(variant string) Query {
	c := *q
	c.variant = variant
	return c
}

// Tokenize splits text into a sorted set of lower-cased word tokens.
func Tokenize(text string) []string {
	words := tokenRegex.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "-'")
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
