// Package frameloop schedules simulation frames at a fixed rate for headless
// runs. Stopping the loop means no further frame is scheduled; no frame is
// interrupted.
package frameloop

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-graphview/pkg/logging"
)

// Loop calls a frame function at a fixed interval
type Loop struct {
	// Interval between frame starts; zero runs frames back to back
	Interval time.Duration
	// MaxFrames stops the loop after this many frames; zero means no limit
	MaxFrames int
	Logger    logging.Logger
}

// Interval converts a frame rate into a frame interval. Non-positive rates
// mean unthrottled.
func Interval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

// Run calls frame until it returns true, MaxFrames is reached or ctx is done.
// It returns the number of frames run and ctx.Err() when cancelled.
func (l *Loop) Run(ctx context.Context, frame func(n int) (stop bool)) (int, error) {
	logger := l.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	var tick <-chan time.Time
	if l.Interval > 0 {
		ticker := time.NewTicker(l.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	n := 0
	for {
		if l.MaxFrames > 0 && n >= l.MaxFrames {
			logger.Debug("frame limit reached", logging.Count(n))
			return n, nil
		}

		if err := ctx.Err(); err != nil {
			return n, err
		}

		stop := frame(n)
		n++
		if stop {
			logger.Debug("frame loop stopped", logging.Count(n))
			return n, nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return n, ctx.Err()
			case <-tick:
			}
		}
	}
}

// Settler reports convergence once the per-frame displacement has stayed
// below Threshold for Patience consecutive frames
type Settler struct {
	Threshold float64
	Patience  int

	quiet int
}

// Observe records one frame's displacement and reports whether the layout settled
func (s *Settler) Observe(displacement float64) bool {
	if displacement < s.Threshold {
		s.quiet++
	} else {
		s.quiet = 0
	}
	patience := s.Patience
	if patience <= 0 {
		patience = 1
	}
	return s.quiet >= patience
}

// Reset forgets the quiet streak
func (s *Settler) Reset() {
	s.quiet = 0
}
