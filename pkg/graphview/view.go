// Package graphview ties the graph model, force engine, renderer, pointer
// controller, viewport and detail bridge into one interactive session.
package graphview

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/interaction"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/render"
	"github.com/dd0wney/cluso-graphview/pkg/viewport"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// View is one interactive graph session. The kinematic state (node positions,
// drag and hover) belongs to the goroutine that calls Frame and the pointer
// methods; only detail fetches run elsewhere.
type View struct {
	config  Config
	logger  logging.Logger
	metrics Metrics
	theme   *render.Theme

	surface    Surface
	graph      *visualization.Graph
	snapshot   visualization.Snapshot
	engine     *visualization.Engine
	controller *interaction.Controller
	viewport   *viewport.Manager
	renderer   *render.Renderer
	bridge     *detail.Bridge

	unseeded bool // loaded before the host reported a size
	frames   int
	loaded   atomic.Bool
}

// Option configures a View
type Option func(*View)

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(v *View) { v.logger = l }
}

// WithMetrics records frames, gestures, detail requests and loads
func WithMetrics(m Metrics) Option {
	return func(v *View) { v.metrics = m }
}

// WithSurface replaces the default terminal surface
func WithSurface(s Surface) Option {
	return func(v *View) { v.surface = s }
}

// WithTheme replaces the default palette
func WithTheme(t render.Theme) Option {
	return func(v *View) { v.theme = &t }
}

// New creates a session that fetches entity details from fetcher
func New(fetcher detail.Fetcher, config Config, opts ...Option) *View {
	v := &View{
		config: config,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With(logging.Component("graphview"))
	if v.surface == nil {
		v.surface = render.NewTermSurface()
	}

	var bridgeOpts []detail.Option
	bridgeOpts = append(bridgeOpts, detail.WithLogger(v.logger))
	ctrlOpts := []interaction.Option{
		interaction.WithLogger(v.logger),
		interaction.WithOnSelect(v.onSelect),
	}
	if v.metrics != nil {
		bridgeOpts = append(bridgeOpts, detail.WithObserver(v.metrics))
		ctrlOpts = append(ctrlOpts, interaction.WithObserver(v.metrics))
	}

	v.engine = visualization.NewEngine(config.Simulation)
	v.controller = interaction.NewController(config.Interaction, ctrlOpts...)
	v.bridge = detail.NewBridge(fetcher, config.Detail, bridgeOpts...)
	if v.theme != nil {
		v.renderer = render.NewRendererWithTheme(config.Render, *v.theme)
	} else {
		v.renderer = render.NewRenderer(config.Render)
	}

	v.viewport = viewport.NewManager(config.Viewport, v.surface, v.logger)
	v.viewport.Subscribe(v.onResize)
	return v
}

func (v *View) onSelect(id int64) {
	v.bridge.Select(id)
}

func (v *View) onResize(b visualization.Bounds) {
	v.engine.SetBounds(b)
	v.controller.SetBounds(b)
	if v.unseeded && v.graph != nil {
		v.config.seeder().Seed(v.graph, b)
		v.unseeded = false
	}
	if v.metrics != nil {
		v.metrics.RecordResize(b.Width, b.Height)
	}
}

// Load replaces the graph with a fresh one built from snap. All simulation,
// drag, hover and selection state of the previous graph is discarded. On error
// the previous graph stays in place.
func (v *View) Load(snap visualization.Snapshot) error {
	timer := logging.StartTimer(v.logger, "graph load")
	bounds := v.viewport.Bounds()

	g, err := visualization.Load(snap, bounds, visualization.WithSeeder(v.config.seeder()))
	if err != nil {
		timer.EndError(err)
		if v.metrics != nil {
			v.metrics.RecordGraphLoad(err, timer.Elapsed(), 0, 0, 0)
		}
		return fmt.Errorf("load graph: %w", err)
	}

	v.graph = g
	v.snapshot = snap
	v.unseeded = bounds.Empty()
	v.engine.Reset()
	v.controller.SetGraph(g)
	v.bridge.Clear()
	v.loaded.Store(true)

	if dropped := g.DroppedEdges(); dropped > 0 {
		v.logger.Warn("connections dropped",
			logging.Count(dropped),
			logging.Int("accepted", g.EdgeCount()),
		)
	}
	elapsed := timer.Elapsed()
	v.logger.Info("graph loaded",
		logging.Int("nodes", g.Len()),
		logging.Int("edges", g.EdgeCount()),
		logging.Latency(elapsed),
	)
	if v.metrics != nil {
		v.metrics.RecordGraphLoad(nil, elapsed, g.Len(), g.EdgeCount(), g.DroppedEdges())
	}
	return nil
}

// LoadFrom fetches a snapshot from src and loads it
func (v *View) LoadFrom(ctx context.Context, src SnapshotSource) error {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		if v.metrics != nil {
			v.metrics.RecordGraphLoad(err, 0, 0, 0, 0)
		}
		return fmt.Errorf("fetch snapshot: %w", err)
	}
	return v.Load(snap)
}

// Reseed reloads the current snapshot with a new placement seed
func (v *View) Reseed(seed int64) error {
	v.config.Seed = seed
	if !v.loaded.Load() {
		return nil
	}
	return v.Load(v.snapshot)
}

// Seed returns the placement seed used by the next load
func (v *View) Seed() int64 {
	return v.config.Seed
}

// Resize reports the host content box in logical pixels
func (v *View) Resize(width, height, pixelRatio float64) bool {
	return v.viewport.Observe(width, height, pixelRatio)
}

// Frame advances the simulation one tick against the current bounds and
// redraws the surface
func (v *View) Frame() FrameStats {
	start := time.Now()
	step := v.engine.Tick(v.graph)
	tickTime := time.Since(start)

	start = time.Now()
	rs := v.renderer.Render(v.surface, v.graph, v.controller.Hovered(), v.controller.Selected())
	renderTime := time.Since(start)

	v.frames++
	if v.metrics != nil {
		v.metrics.RecordFrame(tickTime, renderTime, step.Alpha, step.Displacement)
	}
	return FrameStats{
		Frame:      v.frames,
		Step:       step,
		Render:     rs,
		TickTime:   tickTime,
		RenderTime: renderTime,
	}
}

// PointerDown forwards a press to the controller
func (v *View) PointerDown(ev interaction.PointerEvent) {
	v.controller.PointerDown(ev)
}

// PointerMove forwards a move to the controller
func (v *View) PointerMove(ev interaction.PointerEvent) {
	v.controller.PointerMove(ev)
}

// PointerUp forwards a release and returns how the gesture resolved
func (v *View) PointerUp(ev interaction.PointerEvent) interaction.Gesture {
	return v.controller.PointerUp(ev)
}

// PointerCancel releases any drag and clears hover
func (v *View) PointerCancel() interaction.Gesture {
	return v.controller.PointerCancel()
}

// Select selects a node by id as if it had been clicked
func (v *View) Select(id int64) bool {
	return v.controller.Select(id)
}

// ClearSelection drops the selection and its detail
func (v *View) ClearSelection() {
	v.controller.ClearSelection()
	v.bridge.Clear()
}

// Hovered returns the node under the pointer, or nil
func (v *View) Hovered() *visualization.SimNode {
	return v.controller.Hovered()
}

// Selected returns the selected node, or nil
func (v *View) Selected() *visualization.SimNode {
	return v.controller.Selected()
}

// Phase returns the controller's gesture state
func (v *View) Phase() interaction.Phase {
	return v.controller.Phase()
}

// Detail returns a copy of the detail bridge state
func (v *View) Detail() detail.State {
	return v.bridge.State()
}

// SubscribeDetail registers fn for every detail state change. fn may run on a
// fetch goroutine.
func (v *View) SubscribeDetail(fn func(detail.State)) {
	v.bridge.Subscribe(fn)
}

// WaitDetail blocks until all started detail requests have resolved
func (v *View) WaitDetail() {
	v.bridge.Wait()
}

// Surface returns the drawing target
func (v *View) Surface() Surface {
	return v.surface
}

// Graph returns the current graph, or nil before the first load
func (v *View) Graph() *visualization.Graph {
	return v.graph
}

// Bounds returns the current viewport bounds
func (v *View) Bounds() visualization.Bounds {
	return v.viewport.Bounds()
}

// Engine returns the force engine
func (v *View) Engine() *visualization.Engine {
	return v.engine
}

// Layout returns a snapshot of current positions for export
func (v *View) Layout() *visualization.Visualization {
	return &visualization.Visualization{
		Graph:  v.graph,
		Bounds: v.viewport.Bounds(),
		Tick:   v.engine.Ticks(),
	}
}

// Healthy reports ErrNoGraph until a graph has loaded. Safe for concurrent use.
func (v *View) Healthy() error {
	if !v.loaded.Load() {
		return ErrNoGraph
	}
	return nil
}

// Close cancels in-flight detail requests and waits for them
func (v *View) Close() {
	v.bridge.Close()
}
