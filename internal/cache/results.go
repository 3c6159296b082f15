// Package cache memoizes ranked result sets with bounded size and lifetime.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/snipdex/internal/domain/search/result"
	"github.com/kailas-cloud/snipdex/internal/metrics"
)

// Defaults.
const (
	DefaultMaxEntries = 1024
	DefaultTTL        = 5 * time.Minute

	// computeTimeout bounds a shared compute once it is detached from its caller.
	computeTimeout = 30 * time.Second
)

// Results is a concurrency-safe LRU of ranked results with per-entry TTL.
// Concurrent misses on one key run compute once. Errors are never stored.
type Results struct {
	lru   *expirable.LRU[string, []result.Result]
	group singleflight.Group
}

// NewResults creates a cache bounded by maxEntries and ttl.
func NewResults(maxEntries int, ttl time.Duration) *Results {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Results{lru: expirable.NewLRU[string, []result.Result](maxEntries, nil, ttl)}
}

// GetOrCompute returns the cached results for key, or runs compute and stores its output.
// Callers always receive their own copy.
func (c *Results) GetOrCompute(
	ctx context.Context, key string, compute func(ctx context.Context) ([]result.Result, error),
) ([]result.Result, error) {
	if v, ok := c.lru.Get(key); ok {
		metrics.ResultCacheTotal.WithLabelValues("hit").Inc()
		return result.CloneAll(v), nil
	}

	// Shared compute is detached from the cancellation of whichever caller started it.
	ch := c.group.DoChan(key, func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		rs, err := compute(cctx)
		if err != nil {
			return nil, err
		}
		stored := result.CloneAll(rs)
		c.lru.Add(key, stored)
		return stored, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	v, shared := res.Val, res.Shared

	if shared {
		metrics.ResultCacheTotal.WithLabelValues("shared").Inc()
	} else {
		metrics.ResultCacheTotal.WithLabelValues("miss").Inc()
	}
	return result.CloneAll(v.([]result.Result)), nil
}

// Len returns the number of live entries.
func (c *Results) Len() int { return c.lru.Len() }

// Purge drops every entry.
func (c *Results) Purge() { c.lru.Purge() }

// Key hashes the inputs that determine a ranked result set.
// filters must already be in canonical form.
func Key(text, variant, filters string, k int) string {
	h := sha256.New()
	for _, part := range []string{text, variant, filters, strconv.Itoa(k)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
