package visualization

import (
	"math"
	"math/rand"
)

// DefaultDiscFraction is the disc radius as a fraction of the smaller viewport side
const DefaultDiscFraction = 0.3

// DiscSeeder scatters nodes uniformly inside a disc around the viewport centre
// so that no two nodes start at the same point.
type DiscSeeder struct {
	RadiusFraction float64
	Rand           *rand.Rand
}

// Seed places every node and zeroes its velocity
func (s *DiscSeeder) Seed(g *Graph, bounds Bounds) {
	frac := s.RadiusFraction
	if frac <= 0 {
		frac = DefaultDiscFraction
	}
	r := s.Rand
	if r == nil {
		r = rand.New(rand.NewSource(1))
	}

	c := bounds.Center()
	radius := math.Min(bounds.Width, bounds.Height) * frac

	for _, n := range g.Nodes() {
		// sqrt keeps the density uniform over the disc area
		dist := radius * math.Sqrt(r.Float64())
		angle := r.Float64() * 2 * math.Pi
		n.X = c.X + dist*math.Cos(angle)
		n.Y = c.Y + dist*math.Sin(angle)
		n.VX, n.VY = 0, 0
	}
}
