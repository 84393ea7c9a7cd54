// Package health runs the readiness and liveness probes served next to the
// metrics endpoint.
package health

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single probe run
const DefaultTimeout = 2 * time.Second

// NewChecker creates a checker with no probes. An empty checker reports healthy.
func NewChecker() *Checker {
	return &Checker{
		checks:      make(map[string]CheckFunc),
		readyChecks: make(map[string]CheckFunc),
		liveChecks:  make(map[string]CheckFunc),
		timeout:     DefaultTimeout,
		startTime:   time.Now(),
	}
}

// SetTimeout changes the deadline applied to each probe run
func (hc *Checker) SetTimeout(d time.Duration) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.timeout = d
}

// Register registers a general health check
func (hc *Checker) Register(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// RegisterReadiness registers a check that gates readiness. It is also part
// of the general report.
func (hc *Checker) RegisterReadiness(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.readyChecks[name] = check
	hc.checks[name] = check
}

// RegisterLiveness registers a liveness check
func (hc *Checker) RegisterLiveness(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.liveChecks[name] = check
}

// Check performs all general checks
func (hc *Checker) Check(ctx context.Context) Response {
	return hc.run(ctx, func() map[string]CheckFunc { return hc.checks })
}

// CheckReadiness performs readiness checks
func (hc *Checker) CheckReadiness(ctx context.Context) Response {
	return hc.run(ctx, func() map[string]CheckFunc { return hc.readyChecks })
}

// CheckLiveness performs liveness checks
func (hc *Checker) CheckLiveness(ctx context.Context) Response {
	return hc.run(ctx, func() map[string]CheckFunc { return hc.liveChecks })
}

func (hc *Checker) run(ctx context.Context, pick func() map[string]CheckFunc) Response {
	hc.mu.RLock()
	src := pick()
	checks := make(map[string]CheckFunc, len(src))
	for name, fn := range src {
		checks[name] = fn
	}
	timeout := hc.timeout
	hc.mu.RUnlock()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return hc.performChecks(ctx, checks)
}

func (hc *Checker) performChecks(ctx context.Context, checksMap map[string]CheckFunc) Response {
	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(checksMap)),
		Uptime:    time.Since(hc.startTime).Seconds(),
	}

	for name, checkFunc := range checksMap {
		start := time.Now()
		check := checkFunc(ctx)
		if check.Name == "" {
			check.Name = name
		}
		check.Duration = time.Since(start)
		check.LastChecked = start

		response.Checks[name] = check

		// Worst status wins
		if check.Status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		} else if check.Status == StatusDegraded && response.Status != StatusUnhealthy {
			response.Status = StatusDegraded
		}
	}

	return response
}
