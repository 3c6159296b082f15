package dedup

import (
	"context"

	"github.com/kailas-cloud/snipdex/internal/domain"
	domdedup "github.com/kailas-cloud/snipdex/internal/domain/dedup"
	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
)

// Encoder vectorizes the comparison basis.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever finds existing records near a vector.
type Retriever interface {
	Nearest(ctx context.Context, vec []float32, k int, filters filter.Expression) ([]record.Neighbor, error)
}

// Gate is the subset of the judge gate used for screening.
type Gate interface {
	Summarize(ctx context.Context, text string, maxWords int) domain.Outcome[string]
	VerifyDuplicate(ctx context.Context, candidate, existing string) domain.Outcome[domdedup.Judgment]
}
