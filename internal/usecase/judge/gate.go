package judge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/snipdex/internal/domain"
	"github.com/kailas-cloud/snipdex/internal/domain/dedup"
	domjudge "github.com/kailas-cloud/snipdex/internal/domain/judge"
	"github.com/kailas-cloud/snipdex/internal/metrics"
)

// Gate defaults.
const (
	DefaultConcurrency    = 2
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 8 * time.Second
	DefaultTimeout        = 20 * time.Second
)

// Config bounds every judge call.
type Config struct {
	Concurrency    int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration
	// MinInterval paces successive calls; zero disables pacing.
	MinInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Gate is the single choke point for judge calls. At most Concurrency calls
// hold a permit at once; waiters queue and are never dropped.
type Gate struct {
	svc     Service
	cfg     Config
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGate creates a gate over svc.
func NewGate(svc Service, cfg Config, logger *zap.Logger) *Gate {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{
		svc:    svc,
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.Concurrency)),
		logger: logger,
	}
	if cfg.MinInterval > 0 {
		g.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	return g
}

// Summarize produces a short summary of text.
func (g *Gate) Summarize(ctx context.Context, text string, maxWords int) domain.Outcome[string] {
	return Call(ctx, g, domjudge.KindSummarize, func(ctx context.Context) (string, error) {
		return g.svc.Summarize(ctx, text, maxWords)
	})
}

// VerifyDuplicate asks whether candidate duplicates existing.
func (g *Gate) VerifyDuplicate(ctx context.Context, candidate, existing string) domain.Outcome[dedup.Judgment] {
	return Call(ctx, g, domjudge.KindVerify, func(ctx context.Context) (dedup.Judgment, error) {
		jd, err := g.svc.VerifyDuplicate(ctx, candidate, existing)
		if err == nil && !jd.Verdict.IsValid() {
			return jd, fmt.Errorf("judge returned verdict %q", jd.Verdict)
		}
		return jd, err
	})
}

// Rerank scores items against query.
func (g *Gate) Rerank(ctx context.Context, query string, items []domjudge.Item) domain.Outcome[domjudge.Scores] {
	return Call(ctx, g, domjudge.KindRerank, func(ctx context.Context) (domjudge.Scores, error) {
		return g.svc.Rerank(ctx, query, items)
	})
}

// Call runs fn under the gate: permit, pacing, per-call timeout and
// retry with exponential backoff on rate limiting. It never returns a bare
// provider error; failures come back as *domain.GateError.
func Call[T any](ctx context.Context, g *Gate, kind domjudge.Kind, fn func(ctx context.Context) (T, error)) domain.Outcome[T] {
	var (
		value    T
		attempts int
	)

	op := func() error {
		attempts++
		v, err := attempt(ctx, g, kind, fn)
		if err == nil {
			value = v
			return nil
		}
		if errors.Is(err, domain.ErrRateLimited) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		metrics.JudgeRetriesTotal.WithLabelValues(string(kind)).Inc()
		g.logger.Warn("Judge rate limited, backing off",
			zap.String("kind", string(kind)),
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(op, g.retryPolicy(ctx), notify)
	if err == nil {
		metrics.JudgeCallsTotal.WithLabelValues(string(kind), "ok").Inc()
		return domain.Succeeded(value)
	}

	ge := &domain.GateError{Kind: classify(ctx, err), Op: string(kind), Attempts: attempts, Err: err}
	metrics.JudgeCallsTotal.WithLabelValues(string(kind), string(ge.Kind)).Inc()
	g.logger.Warn("Judge call gave up",
		zap.String("kind", string(kind)),
		zap.String("reason", string(ge.Kind)),
		zap.Int("attempts", attempts),
		zap.Error(err),
	)
	return domain.Failed[T](ge)
}

// attempt holds one permit for exactly one judge invocation. The permit is
// released before any backoff sleep.
func attempt[T any](
	ctx context.Context, g *Gate, kind domjudge.Kind, fn func(ctx context.Context) (T, error),
) (v T, err error) {
	waitStart := time.Now()
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return v, fmt.Errorf("wait for permit: %w", err)
	}
	defer g.sem.Release(1)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return v, fmt.Errorf("pace: %w", err)
		}
	}
	metrics.JudgeWaitDuration.WithLabelValues(string(kind)).Observe(time.Since(waitStart).Seconds())

	metrics.JudgeInFlight.Inc()
	defer metrics.JudgeInFlight.Dec()

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("judge panicked: %v", r)
		}
	}()

	v, err = fn(callCtx)
	if err != nil && callCtx.Err() != nil && !errors.Is(err, domain.ErrRateLimited) {
		return v, fmt.Errorf("%w: %w", callCtx.Err(), err)
	}
	return v, err
}

func (g *Gate) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.InitialBackoff
	b.MaxInterval = g.cfg.MaxBackoff
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.cfg.MaxAttempts-1)), ctx)
}

func classify(ctx context.Context, err error) domain.GateErrorKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), ctx.Err() != nil:
		return domain.GateTimeout
	case errors.Is(err, domain.ErrRateLimited):
		return domain.GateRateLimited
	default:
		return domain.GateInvalid
	}
}
