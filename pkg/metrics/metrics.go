package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/interaction"
)

// RecordFrame records one tick plus render pass
func (r *Registry) RecordFrame(tick, render time.Duration, alpha, displacement float64) {
	r.FramesTotal.Inc()
	r.TickDuration.Observe(tick.Seconds())
	r.RenderDuration.Observe(render.Seconds())
	r.SimulationAlpha.Set(alpha)
	r.SimulationDisplacement.Set(displacement)
}

// RecordGraphLoad records a graph load and, on success, the graph size
func (r *Registry) RecordGraphLoad(err error, duration time.Duration, nodes, edges, dropped int) {
	if err != nil {
		r.GraphLoadsTotal.WithLabelValues("error").Inc()
		return
	}
	r.GraphLoadsTotal.WithLabelValues("success").Inc()
	r.GraphLoadDuration.Observe(duration.Seconds())
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
	r.DroppedEdgesTotal.Add(float64(dropped))
}

// ObserveGesture counts resolved gestures
func (r *Registry) ObserveGesture(g interaction.Gesture) {
	switch g.Kind {
	case interaction.GestureClick:
		r.ClicksTotal.Inc()
	case interaction.GestureDrag:
		r.DragsTotal.Inc()
	case interaction.GestureCancel:
		r.CancelsTotal.Inc()
	}
}

// ObserveDetail records the outcome of a detail request
func (r *Registry) ObserveDetail(status detail.Status, latency time.Duration) {
	r.DetailRequestsTotal.WithLabelValues(string(status)).Inc()
	r.DetailLatency.WithLabelValues(string(status)).Observe(latency.Seconds())
}

// RecordResize records a viewport size change
func (r *Registry) RecordResize(width, height float64) {
	r.ResizesTotal.Inc()
	r.ViewportWidth.Set(width)
	r.ViewportHeight.Set(height)
}

// RecordSourceReload records a reload triggered by a source change
func (r *Registry) RecordSourceReload(err error) {
	if err != nil {
		r.SourceReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	r.SourceReloadsTotal.WithLabelValues("success").Inc()
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	r.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// UpdateSystemMetrics refreshes uptime and Go runtime gauges
func (r *Registry) UpdateSystemMetrics() {
	r.UptimeSeconds.Set(time.Since(r.startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
