package rerank

import (
	"context"

	"github.com/kailas-cloud/snipdex/internal/domain"
	domjudge "github.com/kailas-cloud/snipdex/internal/domain/judge"
)

// Gate is the judge gate operation the reranker needs.
type Gate interface {
	Rerank(ctx context.Context, query string, items []domjudge.Item) domain.Outcome[domjudge.Scores]
}
