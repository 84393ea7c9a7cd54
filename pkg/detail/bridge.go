package detail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-graphview/pkg/logging"
)

// Config holds the detail request settings
type Config struct {
	Timeout time.Duration `yaml:"timeout" toml:"timeout" validate:"gte=0"`
	Breaker BreakerConfig `yaml:"breaker" toml:"breaker"`
}

// DefaultConfig returns the default request timeout and breaker settings
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Second,
		Breaker: DefaultBreakerConfig(),
	}
}

// Bridge relays node selections to a Fetcher without blocking the caller.
// Results are applied only while their id is still the selected id, so
// responses arriving out of order can never replace a newer selection.
type Bridge struct {
	fetcher  Fetcher
	config   Config
	logger   logging.Logger
	observer Observer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	pending int    // outstanding requests of the current epoch
	epoch   uint64 // bumped whenever the selected id changes or is cleared
	subs    []func(State)
	closed  bool
}

// Option configures a Bridge
type Option func(*Bridge)

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// WithObserver sets the request observer
func WithObserver(o Observer) Option {
	return func(b *Bridge) { b.observer = o }
}

// NewBridge creates a bridge over fetcher
func NewBridge(fetcher Fetcher, config Config, opts ...Option) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewNopLogger(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logging.Component("detail"))
	return b
}

// Subscribe registers fn to be called with the new state after every change.
// fn runs on the goroutine that made the change and must not block.
func (b *Bridge) Subscribe(fn func(State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// State returns a copy of the current selection state
func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Select marks id as selected and starts fetching its detail in the
// background. It returns the request id, or "" once the bridge is closed.
func (b *Bridge) Select(id int64) string {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ""
	}
	reqID := uuid.NewString()
	if b.state.HasSelection && b.state.SelectedID == id {
		b.pending++
	} else {
		b.epoch++
		b.pending = 1
	}
	epoch := b.epoch
	b.state = State{
		SelectedID:   id,
		HasSelection: true,
		Loading:      true,
		RequestID:    reqID,
	}
	b.wg.Add(1)
	b.mu.Unlock()

	b.logger.Debug("detail requested", logging.NodeID(id), logging.RequestID(reqID))
	b.notify()

	go b.fetch(id, reqID, epoch)
	return reqID
}

func (b *Bridge) fetch(id int64, reqID string, epoch uint64) {
	defer b.wg.Done()

	ctx := b.ctx
	if b.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	d, err := b.fetcher.FetchDetail(ctx, id)
	latency := time.Since(start)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	// A request from an earlier selection of the same id is stale too
	if !b.state.HasSelection || b.state.SelectedID != id || b.epoch != epoch {
		b.mu.Unlock()
		b.logger.Debug("stale detail dropped",
			logging.NodeID(id),
			logging.RequestID(reqID),
			logging.Latency(latency),
		)
		b.observe(StatusStale, latency)
		return
	}

	// Another request for the same id keeps the loading flag up
	b.pending--
	b.state.Loading = b.pending > 0
	if err != nil {
		b.state.Detail = nil
		b.state.Err = err
	} else {
		b.state.Detail = d
		b.state.Err = nil
	}
	b.mu.Unlock()

	if err != nil {
		level := b.logger.Warn
		if errors.Is(err, ErrNotFound) {
			level = b.logger.Info
		}
		level("detail fetch failed",
			logging.NodeID(id),
			logging.RequestID(reqID),
			logging.Latency(latency),
			logging.Error(err),
		)
		b.observe(StatusError, latency)
	} else {
		b.logger.Debug("detail loaded",
			logging.NodeID(id),
			logging.RequestID(reqID),
			logging.Latency(latency),
		)
		b.observe(StatusOK, latency)
	}
	b.notify()
}

func (b *Bridge) observe(status Status, latency time.Duration) {
	if b.observer != nil {
		b.observer.ObserveDetail(status, latency)
	}
}

func (b *Bridge) notify() {
	b.mu.Lock()
	state := b.state
	subs := make([]func(State), len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// Clear drops the selection. Requests still in flight become stale.
func (b *Bridge) Clear() {
	b.mu.Lock()
	if !b.state.HasSelection {
		b.mu.Unlock()
		return
	}
	b.state = State{}
	b.pending = 0
	b.epoch++
	b.mu.Unlock()
	b.notify()
}

// Wait blocks until every started request has resolved
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// Close cancels in-flight requests and waits for them to return
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
}
