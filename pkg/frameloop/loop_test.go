package frameloop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInterval(t *testing.T) {
	tests := []struct {
		fps  float64
		want time.Duration
	}{
		{60, time.Second / 60},
		{30, time.Second / 30},
		{1, time.Second},
		{0, 0},
		{-5, 0},
	}

	for _, tt := range tests {
		if got := Interval(tt.fps); got != tt.want {
			t.Errorf("Interval(%v) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}

func TestRunMaxFrames(t *testing.T) {
	loop := &Loop{MaxFrames: 25}

	var seen []int
	n, err := loop.Run(context.Background(), func(i int) bool {
		seen = append(seen, i)
		return false
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 25 {
		t.Errorf("frames = %d, want 25", n)
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("frame %d got index %d", i, v)
		}
	}
}

func TestRunStopCondition(t *testing.T) {
	loop := &Loop{MaxFrames: 1000}

	n, err := loop.Run(context.Background(), func(i int) bool {
		return i == 9
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 10 {
		t.Errorf("frames = %d, want 10", n)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := &Loop{Interval: time.Millisecond}

	n, err := loop.Run(ctx, func(i int) bool {
		if i == 4 {
			cancel()
		}
		return false
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if n != 5 {
		t.Errorf("frames = %d, want 5", n)
	}
}

func TestRunAlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	n, err := (&Loop{}).Run(ctx, func(int) bool {
		called = true
		return false
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if called || n != 0 {
		t.Errorf("frame ran %d times after cancellation", n)
	}
}

func TestRunThrottled(t *testing.T) {
	loop := &Loop{Interval: 5 * time.Millisecond, MaxFrames: 5}

	start := time.Now()
	n, err := loop.Run(context.Background(), func(int) bool { return false })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 5 {
		t.Errorf("frames = %d, want 5", n)
	}
	// Five frames wait on the ticker five times
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 20ms", elapsed)
	}
}

func TestSettler(t *testing.T) {
	s := &Settler{Threshold: 0.5, Patience: 3}

	steps := []struct {
		displacement float64
		want         bool
	}{
		{10, false},
		{0.1, false},
		{0.2, false},
		{4, false},
		{0.1, false},
		{0.1, false},
		{0.1, true},
		{0.1, true},
	}
	for i, st := range steps {
		if got := s.Observe(st.displacement); got != st.want {
			t.Errorf("step %d: Observe(%v) = %v, want %v", i, st.displacement, got, st.want)
		}
	}

	s.Reset()
	if s.Observe(0.1) {
		t.Error("Observe() after Reset should not report settled")
	}
}
