package judge

import (
	"context"

	"github.com/kailas-cloud/snipdex/internal/domain/dedup"
	domjudge "github.com/kailas-cloud/snipdex/internal/domain/judge"
)

// Service is the external judge. Implementations report rate limiting by
// wrapping domain.ErrRateLimited; any other error is treated as a failed call.
type Service interface {
	Summarize(ctx context.Context, text string, maxWords int) (string, error)
	VerifyDuplicate(ctx context.Context, candidate, existing string) (dedup.Judgment, error)
	Rerank(ctx context.Context, query string, items []domjudge.Item) (domjudge.Scores, error)
}
