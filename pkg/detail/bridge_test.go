package detail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedFetcher blocks each request until the test releases that id
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[int64]chan error
	started chan int64
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		gates:   make(map[int64]chan error),
		started: make(chan int64, 16),
	}
}

func (f *gatedFetcher) gate(id int64) chan error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.gates[id]
	if !ok {
		ch = make(chan error, 1)
		f.gates[id] = ch
	}
	return ch
}

func (f *gatedFetcher) FetchDetail(ctx context.Context, id int64) (*EntityDetail, error) {
	f.started <- id
	select {
	case err := <-f.gate(id):
		if err != nil {
			return nil, err
		}
		return &EntityDetail{ID: id, Title: "entity"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) release(id int64, err error) {
	f.gate(id) <- err
}

func (f *gatedFetcher) waitStarted(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("fetch %d never started", i)
		}
	}
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[Status]int
}

func (o *countingObserver) ObserveDetail(status Status, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = make(map[Status]int)
	}
	o.counts[status]++
}

func (o *countingObserver) get(s Status) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[s]
}

func TestSelectLoadsDetail(t *testing.T) {
	f := newGatedFetcher()
	b := NewBridge(f, DefaultConfig())
	defer b.Close()

	reqID := b.Select(7)
	require.NotEmpty(t, reqID)

	st := b.State()
	assert.True(t, st.HasSelection)
	assert.True(t, st.Loading)
	assert.Equal(t, int64(7), st.SelectedID)
	assert.Nil(t, st.Detail)

	f.waitStarted(t, 1)
	f.release(7, nil)
	b.Wait()

	st = b.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Detail)
	assert.Equal(t, int64(7), st.Detail.ID)
	assert.NoError(t, st.Err)
}

func TestStaleResponseDropped(t *testing.T) {
	f := newGatedFetcher()
	obs := &countingObserver{}
	b := NewBridge(f, DefaultConfig(), WithObserver(obs))
	defer b.Close()

	b.Select(1)
	b.Select(2)
	f.waitStarted(t, 2)

	// The newer request resolves first, then the older one
	f.release(2, nil)
	f.release(1, nil)
	b.Wait()

	st := b.State()
	assert.Equal(t, int64(2), st.SelectedID)
	require.NotNil(t, st.Detail)
	assert.Equal(t, int64(2), st.Detail.ID)
	assert.Equal(t, 1, obs.get(StatusStale))
	assert.Equal(t, 1, obs.get(StatusOK))
}

func TestStaleResponseBeforeNewer(t *testing.T) {
	f := newGatedFetcher()
	b := NewBridge(f, DefaultConfig())
	defer b.Close()

	b.Select(1)
	b.Select(2)
	f.waitStarted(t, 2)

	f.release(1, nil)
	// Give the stale result time to land
	time.Sleep(20 * time.Millisecond)

	st := b.State()
	assert.Equal(t, int64(2), st.SelectedID)
	assert.True(t, st.Loading)
	assert.Nil(t, st.Detail)

	f.release(2, nil)
	b.Wait()
	assert.Equal(t, int64(2), b.State().Detail.ID)
}

func TestFetchErrorKeepsSelection(t *testing.T) {
	f := newGatedFetcher()
	obs := &countingObserver{}
	b := NewBridge(f, DefaultConfig(), WithObserver(obs))
	defer b.Close()

	b.Select(3)
	f.waitStarted(t, 1)
	f.release(3, ErrNotFound)
	b.Wait()

	st := b.State()
	assert.True(t, st.HasSelection)
	assert.Equal(t, int64(3), st.SelectedID)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Detail)
	assert.ErrorIs(t, st.Err, ErrNotFound)
	assert.Equal(t, 1, obs.get(StatusError))
}

func TestRequestTimeout(t *testing.T) {
	f := newGatedFetcher()
	cfg := DefaultConfig()
	cfg.Timeout = 10 * time.Millisecond
	b := NewBridge(f, cfg)
	defer b.Close()

	b.Select(4)
	b.Wait()

	assert.ErrorIs(t, b.State().Err, context.DeadlineExceeded)
}

func TestClearMakesInflightStale(t *testing.T) {
	f := newGatedFetcher()
	b := NewBridge(f, DefaultConfig())
	defer b.Close()

	b.Select(5)
	f.waitStarted(t, 1)
	b.Clear()
	f.release(5, nil)
	b.Wait()

	assert.Equal(t, State{}, b.State())
}

func TestSameIDTwiceKeepsLoadingUntilLatest(t *testing.T) {
	f := newGatedFetcher()
	b := NewBridge(f, DefaultConfig())
	defer b.Close()

	b.Select(6)
	f.waitStarted(t, 1)
	b.Select(6)
	f.waitStarted(t, 1)

	// Only one result is released so far
	f.release(6, nil)
	time.Sleep(20 * time.Millisecond)
	st := b.State()
	assert.NotNil(t, st.Detail)

	f.release(6, nil)
	b.Wait()
	assert.False(t, b.State().Loading)
}

// queuedFetcher hands every request to the test in start order
type queuedFetcher struct {
	calls chan queuedCall
}

type queuedCall struct {
	id   int64
	done chan error
}

func newQueuedFetcher() *queuedFetcher {
	return &queuedFetcher{calls: make(chan queuedCall, 16)}
}

func (f *queuedFetcher) FetchDetail(ctx context.Context, id int64) (*EntityDetail, error) {
	c := queuedCall{id: id, done: make(chan error, 1)}
	f.calls <- c
	select {
	case err := <-c.done:
		if err != nil {
			return nil, err
		}
		return &EntityDetail{ID: id, Title: "entity"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *queuedFetcher) next(t *testing.T) queuedCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never started")
		return queuedCall{}
	}
}

func TestReselectAfterOtherIDKeepsLoading(t *testing.T) {
	f := newQueuedFetcher()
	obs := &countingObserver{}
	b := NewBridge(f, DefaultConfig(), WithObserver(obs))
	defer b.Close()

	b.Select(1)
	first := f.next(t)
	b.Select(2)
	other := f.next(t)
	b.Select(1)
	latest := f.next(t)

	// The request for 1 issued before 2 was selected belongs to an old selection
	first.done <- nil
	require.Eventually(t, func() bool { return obs.get(StatusStale) == 1 }, 2*time.Second, 5*time.Millisecond)
	st := b.State()
	assert.True(t, st.Loading)
	assert.Nil(t, st.Detail)

	other.done <- nil
	require.Eventually(t, func() bool { return obs.get(StatusStale) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, b.State().Loading)

	latest.done <- nil
	require.Eventually(t, func() bool { return obs.get(StatusOK) == 1 }, 2*time.Second, 5*time.Millisecond)
	st = b.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Detail)
	assert.Equal(t, int64(1), st.Detail.ID)

	// Selecting the same id twice still waits for both requests
	b.Select(1)
	a := f.next(t)
	b.Select(1)
	c := f.next(t)

	a.done <- nil
	require.Eventually(t, func() bool { return obs.get(StatusOK) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, b.State().Loading)

	c.done <- nil
	b.Wait()
	assert.False(t, b.State().Loading)
	assert.Equal(t, 3, obs.get(StatusOK))
}

func TestClearThenReselectSameID(t *testing.T) {
	f := newQueuedFetcher()
	obs := &countingObserver{}
	b := NewBridge(f, DefaultConfig(), WithObserver(obs))
	defer b.Close()

	b.Select(4)
	old := f.next(t)
	b.Clear()
	b.Select(4)
	fresh := f.next(t)

	old.done <- nil
	require.Eventually(t, func() bool { return obs.get(StatusStale) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, b.State().Loading)

	fresh.done <- nil
	b.Wait()
	assert.False(t, b.State().Loading)
	assert.NotNil(t, b.State().Detail)
}

func TestSubscribeNotifies(t *testing.T) {
	f := newGatedFetcher()
	b := NewBridge(f, DefaultConfig())
	defer b.Close()

	var mu sync.Mutex
	var seen []State
	b.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	b.Select(8)
	f.waitStarted(t, 1)
	f.release(8, nil)
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.False(t, seen[1].Loading)
	assert.NotNil(t, seen[1].Detail)
}

func TestCloseCancelsInflight(t *testing.T) {
	f := newGatedFetcher()
	cfg := DefaultConfig()
	cfg.Timeout = 0
	b := NewBridge(f, cfg)

	b.Select(9)
	f.waitStarted(t, 1)

	done := make(chan struct{})
	go func() {
		b.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the in-flight request")
	}
	assert.Empty(t, b.Select(10), "Select after Close is a no-op")
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	calls := 0
	failing := FetcherFunc(func(ctx context.Context, id int64) (*EntityDetail, error) {
		calls++
		return nil, errors.New("connection refused")
	})

	cfg := DefaultBreakerConfig()
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.5
	bf := NewBreakerFetcher("test", failing, cfg, nil)

	for i := 0; i < 3; i++ {
		_, err := bf.FetchDetail(context.Background(), 1)
		assert.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, bf.State())

	_, err := bf.FetchDetail(context.Background(), 1)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, calls)
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	missing := FetcherFunc(func(ctx context.Context, id int64) (*EntityDetail, error) {
		return nil, ErrNotFound
	})

	cfg := DefaultBreakerConfig()
	cfg.MinRequests = 1
	bf := NewBreakerFetcher("test", missing, cfg, nil)

	for i := 0; i < 5; i++ {
		_, err := bf.FetchDetail(context.Background(), 1)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, bf.State())
}

func TestWrapDisabled(t *testing.T) {
	f := newGatedFetcher()
	cfg := DefaultBreakerConfig()
	cfg.Enabled = false
	assert.Same(t, f, Wrap("x", f, cfg, nil))
}
