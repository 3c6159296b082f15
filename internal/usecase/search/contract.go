package search

import (
	"context"
	"time"

	"github.com/kailas-cloud/snipdex/internal/domain/record"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
	"github.com/kailas-cloud/snipdex/internal/domain/search/query"
	"github.com/kailas-cloud/snipdex/internal/domain/search/result"
	"github.com/kailas-cloud/snipdex/internal/domain/variant"
)

// Encoder vectorizes the query text.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever returns the nearest stored records for a query vector.
type Retriever interface {
	Nearest(ctx context.Context, vec []float32, k int, filters filter.Expression) ([]record.Neighbor, error)
}

// Ranker fuses signals into an ordered result list.
type Ranker interface {
	Profile(name string) (variant.Profile, error)
	Rank(q *query.Query, queryVec []float32, neighbors []record.Neighbor) ([]result.Result, error)
}

// Reranker refines the head of a ranked list. It never fails.
type Reranker interface {
	Rerank(ctx context.Context, query string, ranked []result.Result) []result.Result
}

// Cache memoizes ranked results by key.
type Cache interface {
	GetOrCompute(
		ctx context.Context, key string, compute func(ctx context.Context) ([]result.Result, error),
	) ([]result.Result, error)
}

// Event is emitted after every search.
type Event struct {
	Query     string
	Variant   string
	K         int
	ResultIDs []string
	Duration  time.Duration
	Err       error
}

// AuditSink receives search events. Failures are ignored by the caller.
type AuditSink interface {
	Record(ctx context.Context, ev Event) error
}
