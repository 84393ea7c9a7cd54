package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationAlpha = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kgview_simulation_alpha",
			Help: "Temperature used by the last simulation tick",
		},
	)

	r.SimulationDisplacement = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kgview_simulation_displacement",
			Help: "Total node displacement in logical pixels during the last tick",
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kgview_graph_nodes",
			Help: "Number of nodes in the loaded graph",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kgview_graph_edges",
			Help: "Number of distinct edges in the loaded graph",
		},
	)

	r.DroppedEdgesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kgview_dropped_edges_total",
			Help: "Connections discarded at load (missing endpoint, self-loop or duplicate)",
		},
	)

	r.GraphLoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgview_graph_loads_total",
			Help: "Total number of graph loads",
		},
		[]string{"status"},
	)

	r.GraphLoadDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kgview_graph_load_duration_seconds",
			Help:    "Time to fetch a snapshot and build the graph",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
	)
}
