package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initViewportMetrics() {
	r.ResizesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kgview_viewport_resizes_total",
			Help: "Host size changes applied to the viewport",
		},
	)

	r.ViewportWidth = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kgview_viewport_width",
			Help: "Viewport width in logical pixels",
		},
	)

	r.ViewportHeight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kgview_viewport_height",
			Help: "Viewport height in logical pixels",
		},
	)
}

func (r *Registry) initSourceMetrics() {
	r.SourceReloadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgview_source_reloads_total",
			Help: "Graph reloads triggered by source file changes",
		},
		[]string{"status"},
	)
}
