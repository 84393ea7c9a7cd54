package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// frameBuckets spans 50µs to ~100ms; a 60 FPS frame budget is 16.7ms
var frameBuckets = prometheus.ExponentialBuckets(0.00005, 2, 12)

func (r *Registry) initFrameMetrics() {
	r.FramesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kgview_frames_total",
			Help: "Total number of frames (one tick plus one render)",
		},
	)

	r.TickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kgview_tick_duration_seconds",
			Help:    "Simulation tick duration in seconds",
			Buckets: frameBuckets,
		},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kgview_render_duration_seconds",
			Help:    "Render pass duration in seconds",
			Buckets: frameBuckets,
		},
	)
}
