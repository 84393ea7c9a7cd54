package detail

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dd0wney/cluso-graphview/pkg/logging"
)

// BreakerConfig controls the circuit breaker placed in front of a slow or failing source
type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled" toml:"enabled"`
	MaxRequests      uint32        `yaml:"max_requests" toml:"max_requests"`
	Interval         time.Duration `yaml:"interval" toml:"interval"`
	Timeout          time.Duration `yaml:"timeout" toml:"timeout"`
	FailureThreshold float64       `yaml:"failure_threshold" toml:"failure_threshold" validate:"gte=0,lte=1"`
	MinRequests      uint32        `yaml:"min_requests" toml:"min_requests"`
}

// DefaultBreakerConfig returns the default breaker settings
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// BreakerFetcher short-circuits detail requests while the source keeps failing.
// Unknown ids count as successful calls.
type BreakerFetcher struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerFetcher wraps next in a circuit breaker
func NewBreakerFetcher(name string, next Fetcher, config BreakerConfig, logger logging.Logger) *BreakerFetcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerFetcher{next: next, cb: cb}
}

// FetchDetail forwards to the wrapped fetcher unless the breaker is open
func (f *BreakerFetcher) FetchDetail(ctx context.Context, id int64) (*EntityDetail, error) {
	res, err := f.cb.Execute(func() (any, error) {
		return f.next.FetchDetail(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	d, _ := res.(*EntityDetail)
	return d, nil
}

// State returns the breaker state
func (f *BreakerFetcher) State() gobreaker.State {
	return f.cb.State()
}

// Wrap applies the breaker when enabled and returns next unchanged otherwise
func Wrap(name string, next Fetcher, config BreakerConfig, logger logging.Logger) Fetcher {
	if !config.Enabled {
		return next
	}
	return NewBreakerFetcher(name, next, config, logger)
}
