package visualization

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

type edge struct {
	a, b int // node indices, a < b
}

// Graph is the simulation's view of one snapshot: an arena of node records
// addressed by id, the undirected edge list and an adjacency index.
type Graph struct {
	nodes     []*SimNode
	index     map[int64]int
	edges     []edge
	adjacency []map[int]struct{}
	directed  []Connection
	dropped   int
}

// LoadOptions controls how a snapshot becomes a Graph
type LoadOptions struct {
	Seeder Seeder
	Rand   *rand.Rand
}

// LoadOption mutates LoadOptions
type LoadOption func(*LoadOptions)

// WithSeeder overrides the initial placement strategy
func WithSeeder(s Seeder) LoadOption {
	return func(o *LoadOptions) { o.Seeder = s }
}

// WithRand sets the random source used by the default disc seeder
func WithRand(r *rand.Rand) LoadOption {
	return func(o *LoadOptions) { o.Rand = r }
}

// WithSeed is shorthand for WithRand(rand.New(rand.NewSource(seed)))
func WithSeed(seed int64) LoadOption {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// Load converts a snapshot into a fresh Graph. Duplicate node ids are rejected;
// edges with a missing endpoint, self-loops and repeated pairs are dropped.
// The snapshot's slices are not modified.
func Load(snap Snapshot, bounds Bounds, opts ...LoadOption) (*Graph, error) {
	o := LoadOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Seeder == nil {
		r := o.Rand
		if r == nil {
			r = rand.New(rand.NewSource(1))
		}
		o.Seeder = &DiscSeeder{RadiusFraction: DefaultDiscFraction, Rand: r}
	}

	g := &Graph{
		nodes:     make([]*SimNode, 0, len(snap.Nodes)),
		index:     make(map[int64]int, len(snap.Nodes)),
		adjacency: make([]map[int]struct{}, 0, len(snap.Nodes)),
	}

	for _, en := range snap.Nodes {
		if _, exists := g.index[en.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateNode, en.ID)
		}
		n := &SimNode{
			ID:      en.ID,
			Kind:    ParseKind(en.Kind),
			RawKind: en.Kind,
			Label:   en.Label,
			index:   len(g.nodes),
		}
		g.index[en.ID] = n.index
		g.nodes = append(g.nodes, n)
		g.adjacency = append(g.adjacency, make(map[int]struct{}))
	}

	for _, c := range snap.Edges {
		a, okA := g.index[c.FromID]
		b, okB := g.index[c.ToID]
		if !okA || !okB || a == b {
			g.dropped++
			continue
		}
		if _, seen := g.adjacency[a][b]; seen {
			g.dropped++
			continue
		}
		g.adjacency[a][b] = struct{}{}
		g.adjacency[b][a] = struct{}{}
		if a > b {
			a, b = b, a
		}
		g.edges = append(g.edges, edge{a: a, b: b})
		g.directed = append(g.directed, c)
	}

	o.Seeder.Seed(g, bounds)
	return g, nil
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// EdgeCount returns the number of distinct undirected edges
func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.edges)
}

// DroppedEdges returns how many input connections were discarded at load
func (g *Graph) DroppedEdges() int {
	if g == nil {
		return 0
	}
	return g.dropped
}

// Nodes returns the node records in load order
func (g *Graph) Nodes() []*SimNode {
	if g == nil {
		return nil
	}
	return g.nodes
}

// Node looks up a node record by id
func (g *Graph) Node(id int64) (*SimNode, bool) {
	if g == nil {
		return nil, false
	}
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// EachEdge calls fn with both endpoints of every edge
func (g *Graph) EachEdge(fn func(a, b *SimNode)) {
	if g == nil {
		return
	}
	for _, e := range g.edges {
		fn(g.nodes[e.a], g.nodes[e.b])
	}
}

// Connections returns the accepted connections in their original direction
func (g *Graph) Connections() []Connection {
	if g == nil {
		return nil
	}
	out := make([]Connection, len(g.directed))
	copy(out, g.directed)
	return out
}

// Neighbors returns the ids directly connected to id, sorted ascending
func (g *Graph) Neighbors(id int64) []int64 {
	if g == nil {
		return nil
	}
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(g.adjacency[i]))
	for j := range g.adjacency[i] {
		out = append(out, g.nodes[j].ID)
	}
	sort.Slice(out, func(x, y int) bool { return out[x] < out[y] })
	return out
}

// Adjacent reports whether a and b share an edge
func (g *Graph) Adjacent(a, b int64) bool {
	if g == nil {
		return false
	}
	i, okA := g.index[a]
	j, okB := g.index[b]
	if !okA || !okB {
		return false
	}
	_, ok := g.adjacency[i][j]
	return ok
}

// NodeAt returns the node nearest to (x, y) whose centre lies within radius
func (g *Graph) NodeAt(x, y, radius float64) *SimNode {
	if g == nil {
		return nil
	}
	var best *SimNode
	bestDist := radius * radius
	for _, n := range g.nodes {
		dx := n.X - x
		dy := n.Y - y
		d := dx*dx + dy*dy
		if d <= bestDist {
			best = n
			bestDist = d
		}
	}
	return best
}

// Positions returns the current position of every node keyed by id
func (g *Graph) Positions() map[int64]Position {
	out := make(map[int64]Position, g.Len())
	for _, n := range g.Nodes() {
		out[n.ID] = n.Position()
	}
	return out
}

// TotalDisplacement sums the distance between prev and the current positions
func (g *Graph) TotalDisplacement(prev map[int64]Position) float64 {
	total := 0.0
	for _, n := range g.Nodes() {
		p, ok := prev[n.ID]
		if !ok {
			continue
		}
		total += math.Hypot(n.X-p.X, n.Y-p.Y)
	}
	return total
}
