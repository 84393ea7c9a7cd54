package interaction

import (
	"testing"

	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

var testBounds = visualization.Bounds{Width: 400, Height: 300}

type placeSeeder map[int64]visualization.Position

func (p placeSeeder) Seed(g *visualization.Graph, _ visualization.Bounds) {
	for _, n := range g.Nodes() {
		n.X, n.Y = p[n.ID].X, p[n.ID].Y
	}
}

// newTestController loads three nodes: 1 at (100,100), 2 at (200,100) and 3 at (112,100)
func newTestController(t *testing.T, opts ...Option) (*Controller, *visualization.Graph, *[]int64) {
	t.Helper()
	snap := visualization.Snapshot{
		Nodes: []visualization.EntityNode{
			{ID: 1, Kind: "note", Label: "one"},
			{ID: 2, Kind: "person", Label: "two"},
			{ID: 3, Kind: "link", Label: "three"},
		},
		Edges: []visualization.Connection{{FromID: 1, ToID: 2}},
	}
	g, err := visualization.Load(snap, testBounds, visualization.WithSeeder(placeSeeder{
		1: {X: 100, Y: 100},
		2: {X: 200, Y: 100},
		3: {X: 112, Y: 100},
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var selects []int64
	opts = append([]Option{WithOnSelect(func(id int64) { selects = append(selects, id) })}, opts...)
	c := NewController(DefaultConfig(), opts...)
	c.SetGraph(g)
	c.SetBounds(testBounds)
	return c, g, &selects
}

func TestClickSelectsOnce(t *testing.T) {
	c, g, selects := newTestController(t)
	n, _ := g.Node(1)

	c.PointerDown(At(99, 100))
	if c.Phase() != Dragging {
		t.Fatalf("Phase() = %v, want dragging", c.Phase())
	}
	if !n.Dragged {
		t.Error("hit node should be marked dragged")
	}

	c.PointerMove(At(100, 101))
	gesture := c.PointerUp(At(100, 101))

	if gesture.Kind != GestureClick || gesture.NodeID != 1 {
		t.Errorf("gesture = %+v, want click on 1", gesture)
	}
	if len(*selects) != 1 || (*selects)[0] != 1 {
		t.Errorf("selects = %v, want [1]", *selects)
	}
	if c.Selected() != n {
		t.Error("clicked node should be selected")
	}
	if n.Dragged || c.Phase() != Idle {
		t.Error("click must release the drag")
	}
}

func TestDragDoesNotSelect(t *testing.T) {
	c, g, selects := newTestController(t)
	n, _ := g.Node(1)

	c.PointerDown(At(100, 100))
	c.PointerMove(At(150, 180))
	c.PointerMove(At(250, 200))
	gesture := c.PointerUp(At(250, 200))

	if gesture.Kind != GestureDrag {
		t.Errorf("gesture = %v, want drag", gesture.Kind)
	}
	if len(*selects) != 0 {
		t.Errorf("selects = %v, want none", *selects)
	}
	if c.Selected() != nil {
		t.Error("drag must not select")
	}
	if n.X != 250 || n.Y != 200 {
		t.Errorf("node at (%v, %v), want (250, 200)", n.X, n.Y)
	}
	if n.Dragged {
		t.Error("drag should be released")
	}
}

func TestClickThresholdBoundary(t *testing.T) {
	tests := []struct {
		name string
		dx   float64
		want GestureKind
	}{
		{"still", 0, GestureClick},
		{"jitter", 2.9, GestureClick},
		{"at threshold", 3, GestureDrag},
		{"moved", 10, GestureDrag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, selects := newTestController(t)
			c.PointerDown(At(200, 100))
			c.PointerMove(At(200+tt.dx, 100))
			got := c.PointerUp(At(200+tt.dx, 100))
			if got.Kind != tt.want {
				t.Errorf("gesture = %v, want %v", got.Kind, tt.want)
			}
			wantSelects := 0
			if tt.want == GestureClick {
				wantSelects = 1
			}
			if len(*selects) != wantSelects {
				t.Errorf("selects = %v, want %d", *selects, wantSelects)
			}
		})
	}
}

func TestGrabKeepsOffset(t *testing.T) {
	c, g, _ := newTestController(t)
	n, _ := g.Node(2)

	// Grab 5px left of the centre
	c.PointerDown(At(195, 100))
	c.PointerMove(At(295, 150))

	if n.X != 300 || n.Y != 150 {
		t.Errorf("node at (%v, %v), want (300, 150)", n.X, n.Y)
	}
}

func TestPointerDownOnEmptySpace(t *testing.T) {
	c, _, selects := newTestController(t)

	c.PointerDown(At(350, 250))
	if c.Phase() != Idle {
		t.Errorf("Phase() = %v, want idle", c.Phase())
	}
	if got := c.PointerUp(At(350, 250)); got.Kind != GestureNone {
		t.Errorf("gesture = %v, want none", got.Kind)
	}
	if len(*selects) != 0 {
		t.Errorf("selects = %v, want none", *selects)
	}
}

func TestHitTestPicksNearest(t *testing.T) {
	c, _, _ := newTestController(t)

	// Nodes 1 and 3 are 12px apart; both are within the hit radius of 107
	c.PointerDown(At(107, 100))
	if d := c.Dragged(); d == nil || d.ID != 3 {
		t.Errorf("Dragged() = %v, want node 3", d)
	}
}

func TestHitRadiusExceedsNodeRadius(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HitRadius <= cfg.NodeRadius {
		t.Fatalf("HitRadius %v should exceed NodeRadius %v", cfg.HitRadius, cfg.NodeRadius)
	}

	c, _, _ := newTestController(t)
	// Outside the drawn radius, inside the hit radius
	c.PointerDown(At(200, 110))
	if c.Phase() != Dragging {
		t.Error("pointer within hit radius should grab the node")
	}
}

func TestCancelReleasesWithoutClick(t *testing.T) {
	c, g, selects := newTestController(t)
	n, _ := g.Node(2)

	c.PointerDown(At(200, 100))
	c.PointerMove(At(230, 120))
	gesture := c.PointerCancel()

	if gesture.Kind != GestureCancel || gesture.NodeID != 2 {
		t.Errorf("gesture = %+v, want cancel on 2", gesture)
	}
	if len(*selects) != 0 {
		t.Errorf("selects = %v, want none", *selects)
	}
	if c.Hovered() != nil {
		t.Error("cancel should clear hover")
	}
	if n.Dragged || c.Phase() != Idle {
		t.Error("cancel should release the drag")
	}
	if n.X != 230 || n.Y != 120 {
		t.Errorf("node at (%v, %v), want (230, 120)", n.X, n.Y)
	}
}

func TestCancelWhenIdle(t *testing.T) {
	c, _, _ := newTestController(t)
	c.PointerMove(At(100, 100))
	if got := c.PointerCancel(); got.Kind != GestureNone {
		t.Errorf("gesture = %v, want none", got.Kind)
	}
	if c.Hovered() != nil {
		t.Error("cancel should clear hover")
	}
}

func TestHoverMouseOnly(t *testing.T) {
	c, _, _ := newTestController(t)

	c.PointerMove(At(200, 101))
	if h := c.Hovered(); h == nil || h.ID != 2 {
		t.Errorf("Hovered() = %v, want node 2", h)
	}

	c.PointerMove(At(300, 250))
	if c.Hovered() != nil {
		t.Error("hover should clear over empty space")
	}

	c.PointerMove(PointerEvent{X: 200, Y: 100, Type: Touch})
	if c.Hovered() != nil {
		t.Error("touch moves outside a drag should not hover")
	}
}

func TestHoverDuringDragIsIndependent(t *testing.T) {
	c, _, _ := newTestController(t)

	// Drag node 1 with a touch pointer; hover follows the pointer, not the drag target
	c.PointerDown(PointerEvent{X: 100, Y: 100, Type: Touch})
	c.PointerMove(PointerEvent{X: 100, Y: 200, Type: Touch})
	if h := c.Hovered(); h == nil || h.ID != 1 {
		t.Errorf("Hovered() = %v, want dragged node under pointer", h)
	}
	if c.Dragged().ID != 1 {
		t.Errorf("Dragged() = %v, want node 1", c.Dragged())
	}
}

func TestDragClampedToBounds(t *testing.T) {
	c, g, _ := newTestController(t)
	n, _ := g.Node(1)
	r := c.Config().NodeRadius

	c.PointerDown(At(100, 100))
	c.PointerMove(At(-50, 1000))

	if n.X != r || n.Y != testBounds.Height-r {
		t.Errorf("node at (%v, %v), want (%v, %v)", n.X, n.Y, r, testBounds.Height-r)
	}
}

func TestDraggedNodeNotMovedByEngine(t *testing.T) {
	c, g, _ := newTestController(t)
	n, _ := g.Node(1)

	e := visualization.NewEngine(visualization.DefaultForceConfig())
	e.SetBounds(testBounds)

	c.PointerDown(At(100, 100))
	for i := 0; i < 20; i++ {
		x, y := 120+float64(i), 130+float64(i)
		c.PointerMove(At(x, y))
		e.Tick(g)
		if n.X != x || n.Y != y {
			t.Fatalf("tick %d: node at (%v, %v), want (%v, %v)", i, n.X, n.Y, x, y)
		}
	}

	c.PointerUp(At(139, 149))
	e.Tick(g)
	if n.X == 139 && n.Y == 149 {
		t.Error("released node should rejoin the simulation")
	}
}

func TestSetGraphResetsState(t *testing.T) {
	c, g, _ := newTestController(t)
	n, _ := g.Node(1)

	c.PointerDown(At(100, 100))
	c.PointerUp(At(100, 100))
	c.PointerDown(At(200, 100))

	c.SetGraph(g)

	if c.Phase() != Idle || c.Selected() != nil || c.Hovered() != nil {
		t.Error("SetGraph should reset gesture, selection and hover")
	}
	if n.Dragged {
		t.Error("SetGraph should release held nodes")
	}
}

func TestSecondPressAbandonsGesture(t *testing.T) {
	c, g, selects := newTestController(t)
	first, _ := g.Node(1)

	c.PointerDown(At(100, 100))
	c.PointerDown(At(200, 100))

	if first.Dragged {
		t.Error("first node should be released")
	}
	if c.Dragged().ID != 2 {
		t.Errorf("Dragged() = %v, want node 2", c.Dragged())
	}
	if len(*selects) != 0 {
		t.Errorf("selects = %v, want none", *selects)
	}
}

func TestObserverAndSelect(t *testing.T) {
	var gestures []Gesture
	c, _, selects := newTestController(t, WithObserver(ObserverFunc(func(g Gesture) {
		gestures = append(gestures, g)
	})))

	c.PointerDown(At(100, 100))
	c.PointerUp(At(100, 100))
	c.PointerDown(At(200, 100))
	c.PointerUp(At(260, 100))

	if len(gestures) != 2 || gestures[0].Kind != GestureClick || gestures[1].Kind != GestureDrag {
		t.Errorf("gestures = %+v", gestures)
	}

	if !c.Select(3) || c.Selected().ID != 3 {
		t.Error("Select(3) should select node 3")
	}
	if c.Select(99) {
		t.Error("Select of an unknown id should fail")
	}
	if len(*selects) != 2 {
		t.Errorf("selects = %v, want [1 3]", *selects)
	}

	c.ClearSelection()
	if c.Selected() != nil {
		t.Error("ClearSelection should drop the selection")
	}
}
