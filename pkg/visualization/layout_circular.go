package visualization

import (
	"math"
)

// CircularSeeder arranges nodes evenly on a ring around the viewport centre
type CircularSeeder struct {
	Padding float64
}

// Seed places nodes on the ring in load order
func (cs *CircularSeeder) Seed(g *Graph, bounds Bounds) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}

	padding := cs.Padding
	if padding == 0 {
		padding = 50
	}

	c := bounds.Center()
	radius := math.Min(c.X, c.Y) - padding
	if radius < 0 {
		radius = math.Min(c.X, c.Y) / 2
	}

	angleStep := 2 * math.Pi / float64(len(nodes))

	for i, n := range nodes {
		angle := float64(i) * angleStep
		n.X = c.X + radius*math.Cos(angle)
		n.Y = c.Y + radius*math.Sin(angle)
		n.VX, n.VY = 0, 0
	}
}
