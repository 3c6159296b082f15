package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds each component check.
const DefaultTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type probe struct {
	name string
	fn   func(ctx context.Context) error
}

// Service coordinates health checks.
type Service struct {
	probes  []probe
	timeout time.Duration
}

// New creates a Service. embedding and judge can be nil.
func New(db DBPinger, embedding, judge Checker) *Service {
	s := &Service{timeout: DefaultTimeout}
	s.probes = append(s.probes, probe{name: "database", fn: db.Ping})
	if embedding != nil {
		s.probes = append(s.probes, probe{name: "embedding", fn: embedding.HealthCheck})
	}
	if judge != nil {
		s.probes = append(s.probes, probe{name: "judge", fn: judge.HealthCheck})
	}
	return s
}

// Check runs all component checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var mu sync.Mutex
	checks := make(map[string]CheckResult, len(s.probes))

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.probes {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := p.fn(cctx); err != nil {
				res = CheckError
			}
			mu.Lock()
			checks[p.name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
