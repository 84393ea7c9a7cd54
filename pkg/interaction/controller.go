package interaction

import (
	"math"

	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Controller turns pointer events into drags, clicks and hover state.
// It is not safe for concurrent use; call it from the frame goroutine.
type Controller struct {
	config   Config
	graph    *visualization.Graph
	bounds   visualization.Bounds
	phase    Phase
	grab     grab
	hovered  *visualization.SimNode
	selected *visualization.SimNode

	onSelect func(id int64)
	observer Observer
	logger   logging.Logger
}

// Option configures a Controller
type Option func(*Controller)

// WithOnSelect sets the callback fired once per resolved click
func WithOnSelect(fn func(id int64)) Option {
	return func(c *Controller) { c.onSelect = fn }
}

// WithObserver sets the gesture observer
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates an idle controller
func NewController(config Config, opts ...Option) *Controller {
	if config.HitRadius <= 0 {
		config.HitRadius = DefaultConfig().HitRadius
	}
	c := &Controller{
		config: config,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.Component("interaction"))
	return c
}

// SetGraph replaces the graph and drops all gesture, hover and selection state
func (c *Controller) SetGraph(g *visualization.Graph) {
	c.release()
	c.graph = g
	c.hovered = nil
	c.selected = nil
}

// SetBounds updates the area dragged nodes are clamped to
func (c *Controller) SetBounds(b visualization.Bounds) {
	c.bounds = b
}

// Config returns the controller thresholds
func (c *Controller) Config() Config {
	return c.config
}

// Phase returns the current gesture state
func (c *Controller) Phase() Phase {
	return c.phase
}

// Hovered returns the node under the pointer, or nil
func (c *Controller) Hovered() *visualization.SimNode {
	return c.hovered
}

// Selected returns the last clicked node, or nil
func (c *Controller) Selected() *visualization.SimNode {
	return c.selected
}

// Dragged returns the node being dragged, or nil
func (c *Controller) Dragged() *visualization.SimNode {
	if c.phase != Dragging {
		return nil
	}
	return c.grab.node
}

// ClearSelection drops the selected node without firing OnSelect
func (c *Controller) ClearSelection() {
	c.selected = nil
}

// Select marks a node selected by id without a gesture, e.g. from a keyboard
// binding. It fires OnSelect like a click. Unknown ids are ignored.
func (c *Controller) Select(id int64) bool {
	n, ok := c.graph.Node(id)
	if !ok {
		return false
	}
	c.selected = n
	if c.onSelect != nil {
		c.onSelect(id)
	}
	return true
}

func (c *Controller) hitTest(x, y float64) *visualization.SimNode {
	return c.graph.NodeAt(x, y, c.config.HitRadius)
}

// PointerDown starts a drag when the pointer lands on a node
func (c *Controller) PointerDown(ev PointerEvent) {
	if c.phase == Dragging {
		// A second press without a release; the first gesture is abandoned
		c.finish(GestureCancel, ev)
	}

	n := c.hitTest(ev.X, ev.Y)
	if n == nil {
		c.updateHover(ev)
		return
	}

	n.Dragged = true
	n.VX, n.VY = 0, 0
	c.grab = grab{
		node:   n,
		startX: ev.X,
		startY: ev.Y,
		offX:   n.X - ev.X,
		offY:   n.Y - ev.Y,
	}
	c.phase = Dragging
	c.updateHover(ev)
	c.logger.Debug("drag started", logging.NodeID(n.ID))
}

// PointerMove updates hover and, while dragging, moves the held node
func (c *Controller) PointerMove(ev PointerEvent) {
	if c.phase == Dragging {
		n := c.grab.node
		x, y := ev.X+c.grab.offX, ev.Y+c.grab.offY
		if !c.bounds.Empty() {
			x, y = visualization.ClampToBounds(x, y, c.config.NodeRadius, c.bounds)
		}
		n.X, n.Y = x, y
		n.VX, n.VY = 0, 0
	}
	c.updateHover(ev)
}

// PointerUp resolves the gesture as a click or a drag and returns to Idle
func (c *Controller) PointerUp(ev PointerEvent) Gesture {
	if c.phase != Dragging {
		c.updateHover(ev)
		return Gesture{Kind: GestureNone}
	}

	dist := math.Hypot(ev.X-c.grab.startX, ev.Y-c.grab.startY)
	kind := GestureDrag
	if dist < c.config.ClickThreshold {
		kind = GestureClick
	}

	g := c.finish(kind, ev)
	c.updateHover(ev)
	return g
}

// PointerCancel releases any drag without a click and clears hover
func (c *Controller) PointerCancel() Gesture {
	g := Gesture{Kind: GestureNone}
	if c.phase == Dragging {
		g = c.finish(GestureCancel, PointerEvent{X: c.grab.startX, Y: c.grab.startY})
	}
	c.hovered = nil
	return g
}

func (c *Controller) finish(kind GestureKind, ev PointerEvent) Gesture {
	n := c.grab.node
	g := Gesture{
		Kind:     kind,
		NodeID:   n.ID,
		Distance: math.Hypot(ev.X-c.grab.startX, ev.Y-c.grab.startY),
	}
	c.release()

	switch kind {
	case GestureClick:
		c.selected = n
		c.logger.Debug("node clicked", logging.NodeID(n.ID))
		if c.onSelect != nil {
			c.onSelect(n.ID)
		}
	case GestureDrag:
		c.logger.Debug("drag ended",
			logging.NodeID(n.ID),
			logging.Float64("distance", g.Distance),
		)
	}

	if c.observer != nil {
		c.observer.ObserveGesture(g)
	}
	return g
}

// release hands the held node back to the engine
func (c *Controller) release() {
	if c.grab.node != nil {
		c.grab.node.Dragged = false
	}
	c.grab = grab{}
	c.phase = Idle
}

// updateHover applies the pointer-down hit test to mouse moves, and to any
// pointer during a drag. Touch and pen hover outside a drag is cleared.
func (c *Controller) updateHover(ev PointerEvent) {
	if ev.Type != Mouse && c.phase != Dragging {
		c.hovered = nil
		return
	}
	c.hovered = c.hitTest(ev.X, ev.Y)
}
