package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initInteractionMetrics() {
	r.ClicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kgview_clicks_total",
			Help: "Gestures resolved as clicks",
		},
	)

	r.DragsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kgview_drags_total",
			Help: "Gestures resolved as drags",
		},
	)

	r.CancelsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kgview_gesture_cancels_total",
			Help: "Drags released by pointer leave or cancel",
		},
	)
}
