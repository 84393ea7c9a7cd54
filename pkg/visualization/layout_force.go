package visualization

import (
	"math"
)

// ForceConfig holds the tuning constants of the force simulation
type ForceConfig struct {
	Repulsion      float64 `yaml:"repulsion" toml:"repulsion" validate:"gte=0"`
	SpringLength   float64 `yaml:"spring_length" toml:"spring_length" validate:"gt=0"`
	SpringStrength float64 `yaml:"spring_strength" toml:"spring_strength" validate:"gte=0"`
	Gravity        float64 `yaml:"gravity" toml:"gravity" validate:"gte=0"`
	Damping        float64 `yaml:"damping" toml:"damping" validate:"gt=0,lt=1"`
	AlphaInitial   float64 `yaml:"alpha_initial" toml:"alpha_initial" validate:"gt=0"`
	AlphaDecay     float64 `yaml:"alpha_decay" toml:"alpha_decay" validate:"gt=0,lte=1"`
	AlphaMin       float64 `yaml:"alpha_min" toml:"alpha_min" validate:"gte=0"`
	NodeRadius     float64 `yaml:"node_radius" toml:"node_radius" validate:"gte=0"`
	MinDistance    float64 `yaml:"min_distance" toml:"min_distance" validate:"gt=0"`
}

// DefaultForceConfig returns the interactive defaults. The layout is visually
// stable after a few hundred ticks and keeps settling at AlphaMin afterwards.
//
// SpringLength is nominal here: repulsion outweighs the springs, so a lone
// connected pair settles where Repulsion/d = SpringStrength*(d-L) + Gravity*d/2,
// about 174 px apart. Use TestForceConfig when edges should sit near L.
func DefaultForceConfig() ForceConfig {
	return ForceConfig{
		Repulsion:      800,
		SpringLength:   100,
		SpringStrength: 0.05,
		Gravity:        0.01,
		Damping:        0.85,
		AlphaInitial:   1,
		AlphaDecay:     0.99,
		AlphaMin:       0.02,
		NodeRadius:     8,
		MinDistance:    1,
	}
}

// TestForceConfig returns a parameter set that converges quickly: weak
// repulsion relative to the springs and a high alpha floor.
func TestForceConfig() ForceConfig {
	return ForceConfig{
		Repulsion:      50,
		SpringLength:   100,
		SpringStrength: 0.2,
		Gravity:        0.01,
		Damping:        0.8,
		AlphaInitial:   1,
		AlphaDecay:     0.98,
		AlphaMin:       0.3,
		NodeRadius:     8,
		MinDistance:    1,
	}
}

// Alpha returns the temperature for a tick index
func (c ForceConfig) Alpha(tick int) float64 {
	if tick < 0 {
		tick = 0
	}
	a := c.AlphaInitial * math.Pow(c.AlphaDecay, float64(tick))
	if a < c.AlphaMin {
		return c.AlphaMin
	}
	return a
}

// StepStats describes one simulation tick
type StepStats struct {
	Tick         int
	Alpha        float64
	Displacement float64 // summed movement of all free nodes
	Moving       int     // free nodes that moved at all
}

// Engine advances node positions. It owns the frame state: the tick counter
// and the current viewport bounds.
type Engine struct {
	config ForceConfig
	tick   int
	bounds Bounds

	fx, fy []float64
}

// NewEngine creates a new force simulation engine
func NewEngine(config ForceConfig) *Engine {
	if config.MinDistance <= 0 {
		config.MinDistance = 1
	}
	return &Engine{config: config}
}

// Config returns the engine's tuning constants
func (e *Engine) Config() ForceConfig {
	return e.config
}

// Ticks returns the number of ticks run since the last Reset
func (e *Engine) Ticks() int {
	return e.tick
}

// Alpha returns the temperature the next tick will use
func (e *Engine) Alpha() float64 {
	return e.config.Alpha(e.tick)
}

// Bounds returns the viewport bounds used by Tick
func (e *Engine) Bounds() Bounds {
	return e.bounds
}

// SetBounds replaces the viewport bounds. Positions are left untouched; gravity
// pulls the layout towards the new centre over the following ticks.
func (e *Engine) SetBounds(b Bounds) {
	e.bounds = b
}

// Reset restarts the temperature schedule
func (e *Engine) Reset() {
	e.tick = 0
}

// Tick runs one step against the current bounds and advances the counter
func (e *Engine) Tick(g *Graph) StepStats {
	stats := e.Step(g, e.bounds, e.tick)
	e.tick++
	return stats
}

// Step applies repulsion, springs and gravity for one tick, then integrates
// every node that is not being dragged. Dragged nodes still push and pull the others.
// Step is a no-op for an empty graph or empty bounds.
func (e *Engine) Step(g *Graph, bounds Bounds, tick int) StepStats {
	cfg := e.config
	alpha := cfg.Alpha(tick)
	stats := StepStats{Tick: tick, Alpha: alpha}

	nodes := g.Nodes()
	n := len(nodes)
	// Nothing to do without nodes or before the host has reported a size
	if n == 0 || bounds.Empty() {
		return stats
	}

	if cap(e.fx) < n {
		e.fx = make([]float64, n)
		e.fy = make([]float64, n)
	}
	fx, fy := e.fx[:n], e.fy[:n]
	for i := range fx {
		fx[i], fy[i] = 0, 0
	}

	// Repulsion between all pairs
	if cfg.Repulsion > 0 {
		for i := 0; i < n; i++ {
			a := nodes[i]
			for j := i + 1; j < n; j++ {
				b := nodes[j]
				dx := a.X - b.X
				dy := a.Y - b.Y
				dist := math.Sqrt(dx*dx + dy*dy)

				var ux, uy float64
				if dist == 0 {
					ux, uy = separation(i, j)
				} else {
					ux, uy = dx/dist, dy/dist
				}
				if dist < cfg.MinDistance {
					dist = cfg.MinDistance
				}

				force := cfg.Repulsion * alpha / dist
				fx[i] += ux * force
				fy[i] += uy * force
				fx[j] -= ux * force
				fy[j] -= uy * force
			}
		}
	}

	// Springs along edges
	for _, ed := range g.edges {
		a, b := nodes[ed.a], nodes[ed.b]
		dx := b.X - a.X
		dy := b.Y - a.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist == 0 {
			continue
		}

		force := cfg.SpringStrength * alpha * (dist - cfg.SpringLength)
		ux, uy := dx/dist, dy/dist
		fx[ed.a] += ux * force
		fy[ed.a] += uy * force
		fx[ed.b] -= ux * force
		fy[ed.b] -= uy * force
	}

	// Gravity towards the viewport centre
	c := bounds.Center()
	for i, node := range nodes {
		fx[i] -= cfg.Gravity * alpha * (node.X - c.X)
		fy[i] -= cfg.Gravity * alpha * (node.Y - c.Y)
	}

	// Integrate free nodes
	r := cfg.NodeRadius
	for i, node := range nodes {
		if node.Dragged {
			node.VX, node.VY = 0, 0
			continue
		}

		node.VX = (node.VX + fx[i]) * cfg.Damping
		node.VY = (node.VY + fy[i]) * cfg.Damping

		oldX, oldY := node.X, node.Y
		x := node.X + node.VX
		y := node.Y + node.VY

		if !finite(x) || !finite(y) || !finite(node.VX) || !finite(node.VY) {
			x, y = c.X, c.Y
			node.VX, node.VY = 0, 0
		}

		cx, cy := ClampToBounds(x, y, r, bounds)
		if cx != x {
			node.VX = 0
		}
		if cy != y {
			node.VY = 0
		}
		node.X, node.Y = cx, cy

		moved := math.Hypot(node.X-oldX, node.Y-oldY)
		if moved > 0 {
			stats.Displacement += moved
			stats.Moving++
		}
	}

	return stats
}
