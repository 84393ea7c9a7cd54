package health

import (
	"context"
	"runtime"
	"time"

	"github.com/sony/gobreaker"
)

// SimpleCheck creates a check that always returns healthy
func SimpleCheck(name string) CheckFunc {
	return func(context.Context) Check {
		return Check{
			Name:        name,
			Status:      StatusHealthy,
			LastChecked: time.Now(),
		}
	}
}

// ErrorCheck reports unhealthy while fn returns an error, e.g. before the
// first graph has loaded
func ErrorCheck(name string, fn func() error) CheckFunc {
	return func(context.Context) Check {
		check := Check{Name: name, Status: StatusHealthy}
		if err := fn(); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		}
		return check
	}
}

// PingCheck creates a connectivity check for the graph source
func PingCheck(name string, ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{Name: name}

		if err := ping(ctx); err != nil {
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		} else {
			check.Status = StatusHealthy
			check.Message = "Connected"
		}

		return check
	}
}

// BreakerCheck reports the state of the detail circuit breaker. The graph
// stays usable while the breaker is open, so open counts as degraded.
func BreakerCheck(state func() gobreaker.State) CheckFunc {
	return func(context.Context) Check {
		s := state()
		check := Check{
			Name:    "detail_breaker",
			Details: map[string]any{"state": s.String()},
		}

		switch s {
		case gobreaker.StateOpen:
			check.Status = StatusDegraded
			check.Message = "Detail requests short-circuited"
		case gobreaker.StateHalfOpen:
			check.Status = StatusDegraded
			check.Message = "Probing detail source"
		default:
			check.Status = StatusHealthy
			check.Message = "Detail source healthy"
		}

		return check
	}
}

// MemoryCheck creates a health check for memory usage
func MemoryCheck(getUsage func() (alloc, sys uint64)) CheckFunc {
	return func(context.Context) Check {
		check := Check{
			Name:    "memory",
			Details: make(map[string]any),
		}

		alloc, sys := getUsage()

		check.Details["alloc_bytes"] = alloc
		check.Details["sys_bytes"] = sys

		usagePercent := 0.0
		if sys > 0 {
			usagePercent = float64(alloc) / float64(sys) * 100
		}

		if usagePercent > 90 {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}

		return check
	}
}

// RuntimeMemory reads heap allocation and total system memory from the runtime
func RuntimeMemory() (alloc, sys uint64) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc, m.Sys
}
