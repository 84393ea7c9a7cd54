package visualization

// HierarchicalSeeder lays nodes out in rows by BFS depth, following connection
// direction from nodes that have no incoming connection.
type HierarchicalSeeder struct {
	Padding float64
}

// Seed arranges nodes hierarchically
func (hs *HierarchicalSeeder) Seed(g *Graph, bounds Bounds) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}

	padding := hs.Padding
	if padding == 0 {
		padding = 50
	}

	outgoing := make(map[int64][]int64)
	hasIncoming := make(map[int64]bool)
	for _, c := range g.Connections() {
		outgoing[c.FromID] = append(outgoing[c.FromID], c.ToID)
		hasIncoming[c.ToID] = true
	}

	// Find root nodes (nodes with no incoming edges)
	roots := make([]int64, 0)
	for _, n := range nodes {
		if !hasIncoming[n.ID] {
			roots = append(roots, n.ID)
		}
	}
	if len(roots) == 0 {
		// Every node sits on a cycle, start from the first one
		roots = []int64{nodes[0].ID}
	}

	// Build levels using BFS
	levels := make([][]int64, 0)
	visited := make(map[int64]bool)
	for _, id := range roots {
		visited[id] = true
	}
	currentLevel := roots

	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		nextLevel := make([]int64, 0)

		for _, id := range currentLevel {
			for _, to := range outgoing[id] {
				if !visited[to] {
					nextLevel = append(nextLevel, to)
					visited[to] = true
				}
			}
		}

		currentLevel = nextLevel
	}

	// Nodes only reachable through a cycle go on the last level
	for _, n := range nodes {
		if !visited[n.ID] {
			levels[len(levels)-1] = append(levels[len(levels)-1], n.ID)
		}
	}

	levelHeight := (bounds.Height - 2*padding) / float64(len(levels))
	levelWidth := bounds.Width - 2*padding

	for levelIdx, level := range levels {
		y := padding + float64(levelIdx)*levelHeight + levelHeight/2
		spacing := levelWidth / float64(len(level)+1)

		for nodeIdx, id := range level {
			n, _ := g.Node(id)
			n.X = padding + spacing*float64(nodeIdx+1)
			n.Y = y
			n.VX, n.VY = 0, 0
		}
	}
}
