package interaction

import (
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Phase is the gesture state of the controller
type Phase int

const (
	// Idle means no node is held
	Idle Phase = iota
	// Dragging means a node was hit on pointer-down and is following the pointer
	Dragging
)

// String returns the name of a phase
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// PointerType distinguishes mouse input from touch and pen input
type PointerType int

const (
	Mouse PointerType = iota
	Touch
	Pen
)

// PointerEvent is a pointer position in logical pixels
type PointerEvent struct {
	X, Y float64
	Type PointerType
}

// At is shorthand for a mouse event at (x, y)
func At(x, y float64) PointerEvent {
	return PointerEvent{X: x, Y: y, Type: Mouse}
}

// GestureKind is the outcome of a completed gesture
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureClick
	GestureDrag
	GestureCancel
)

// String returns the name of a gesture kind
func (k GestureKind) String() string {
	switch k {
	case GestureClick:
		return "click"
	case GestureDrag:
		return "drag"
	case GestureCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Gesture describes how a pointer-up or cancel resolved
type Gesture struct {
	Kind     GestureKind
	NodeID   int64
	Distance float64
}

// Config holds the hit-test and click thresholds in logical pixels
type Config struct {
	// HitRadius is slightly larger than the drawn radius to ease targeting
	HitRadius float64 `yaml:"hit_radius" toml:"hit_radius" validate:"gt=0"`
	// ClickThreshold is the largest start-to-end movement still treated as a click
	ClickThreshold float64 `yaml:"click_threshold" toml:"click_threshold" validate:"gte=0"`
	// NodeRadius keeps dragged nodes inside the bounds like the engine does
	NodeRadius float64 `yaml:"node_radius" toml:"node_radius" validate:"gte=0"`
}

// DefaultConfig returns the default interaction thresholds
func DefaultConfig() Config {
	return Config{
		HitRadius:      12,
		ClickThreshold: 3,
		NodeRadius:     8,
	}
}

// Observer receives gesture outcomes, typically for metrics
type Observer interface {
	ObserveGesture(g Gesture)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(g Gesture)

// ObserveGesture calls f(g)
func (f ObserverFunc) ObserveGesture(g Gesture) { f(g) }

// grab is the state of an active drag
type grab struct {
	node           *visualization.SimNode
	startX, startY float64 // pointer position at pointer-down
	offX, offY     float64 // node centre minus pointer at pointer-down
}
