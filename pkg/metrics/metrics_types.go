package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Frame Metrics
	FramesTotal    prometheus.Counter
	TickDuration   prometheus.Histogram
	RenderDuration prometheus.Histogram

	// Simulation Metrics
	SimulationAlpha        prometheus.Gauge
	SimulationDisplacement prometheus.Gauge
	GraphNodes             prometheus.Gauge
	GraphEdges             prometheus.Gauge
	DroppedEdgesTotal      prometheus.Counter
	GraphLoadsTotal        *prometheus.CounterVec
	GraphLoadDuration      prometheus.Histogram

	// Interaction Metrics
	ClicksTotal  prometheus.Counter
	DragsTotal   prometheus.Counter
	CancelsTotal prometheus.Counter

	// Detail Metrics
	DetailRequestsTotal *prometheus.CounterVec
	DetailLatency       *prometheus.HistogramVec

	// Viewport Metrics
	ResizesTotal   prometheus.Counter
	ViewportWidth  prometheus.Gauge
	ViewportHeight prometheus.Gauge

	// Source Metrics
	SourceReloadsTotal *prometheus.CounterVec

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	startTime time.Time
	registry  *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry:  reg,
		startTime: time.Now(),
	}

	// Initialize all metrics
	r.initFrameMetrics()
	r.initSimulationMetrics()
	r.initInteractionMetrics()
	r.initDetailMetrics()
	r.initViewportMetrics()
	r.initSourceMetrics()
	r.initHTTPMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
