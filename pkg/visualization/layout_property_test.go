package visualization

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomSnapshot builds a graph of n nodes with roughly edgeFactor*n random edges
func randomSnapshot(r *rand.Rand, n int, edgeFactor float64) Snapshot {
	kinds := []string{"note", "link", "highlight", "person", "company", "unrecognized"}
	snap := Snapshot{Nodes: make([]EntityNode, n)}
	for i := 0; i < n; i++ {
		snap.Nodes[i] = EntityNode{ID: int64(i + 1), Kind: kinds[r.Intn(len(kinds))]}
	}
	if n < 2 {
		return snap
	}
	for i := 0; i < int(edgeFactor*float64(n)); i++ {
		snap.Edges = append(snap.Edges, Connection{
			FromID: int64(r.Intn(n) + 1),
			ToID:   int64(r.Intn(n) + 1),
		})
	}
	return snap
}

// TestSimulationInvariants checks properties that must hold for any graph and viewport
func TestSimulationInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30

	properties := gopter.NewProperties(parameters)

	// Property 1: every node stays inside the viewport minus its radius
	properties.Property("positions stay within bounds", prop.ForAll(
		func(seed int64, n int, width, height float64) bool {
			r := rand.New(rand.NewSource(seed))
			bounds := Bounds{Width: width, Height: height}

			g, err := Load(randomSnapshot(r, n, 1.5), bounds, WithRand(r))
			if err != nil {
				return false
			}

			e := NewEngine(DefaultForceConfig())
			e.SetBounds(bounds)
			radius := e.Config().NodeRadius

			for tick := 0; tick < 60; tick++ {
				e.Tick(g)
				for _, node := range g.Nodes() {
					if node.X < radius || node.X > width-radius ||
						node.Y < radius || node.Y > height-radius {
						return false
					}
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 25),
		gen.Float64Range(50, 1600),
		gen.Float64Range(50, 1200),
	))

	// Property 2: the engine never writes the position of a dragged node
	properties.Property("dragged node is not moved by the engine", prop.ForAll(
		func(seed int64, n int, x, y float64) bool {
			r := rand.New(rand.NewSource(seed))
			g, err := Load(randomSnapshot(r, n, 2), testBounds, WithRand(r))
			if err != nil {
				return false
			}

			held := g.Nodes()[r.Intn(g.Len())]
			held.Dragged = true
			held.X, held.Y = x, y

			e := NewEngine(DefaultForceConfig())
			e.SetBounds(testBounds)
			for tick := 0; tick < 40; tick++ {
				e.Tick(g)
				if held.X != x || held.Y != y {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 20),
		gen.Float64Range(8, 792),
		gen.Float64Range(8, 592),
	))

	// Property 3: the same seed reproduces the same layout
	properties.Property("layout is reproducible from the seed", prop.ForAll(
		func(seed int64, n int) bool {
			build := func() map[int64]Position {
				r := rand.New(rand.NewSource(seed))
				g, err := Load(randomSnapshot(r, n, 1), testBounds, WithRand(r))
				if err != nil {
					return nil
				}
				e := NewEngine(DefaultForceConfig())
				e.SetBounds(testBounds)
				runTicks(e, g, 50)
				return g.Positions()
			}

			a, b := build(), build()
			if len(a) != len(b) {
				return false
			}
			for id, p := range a {
				if b[id] != p {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 15),
	))

	properties.TestingRun(t)
}
