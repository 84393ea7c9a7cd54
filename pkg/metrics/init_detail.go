package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDetailMetrics() {
	r.DetailRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgview_detail_requests_total",
			Help: "Detail requests by outcome (ok, error, stale)",
		},
		[]string{"status"},
	)

	r.DetailLatency = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kgview_detail_latency_seconds",
			Help:    "Detail fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
}
