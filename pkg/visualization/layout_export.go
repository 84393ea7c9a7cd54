package visualization

import (
	"encoding/json"
	"sort"
)

// Visualization is a point-in-time dump of a laid out graph
type Visualization struct {
	Graph  *Graph
	Bounds Bounds
	Tick   int
}

// ExportJSON exports the current layout to JSON
func (v *Visualization) ExportJSON() ([]byte, error) {
	type NodeViz struct {
		ID    int64   `json:"id"`
		Kind  string  `json:"kind"`
		Label string  `json:"label"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
	}

	type EdgeViz struct {
		FromNodeID int64 `json:"from"`
		ToNodeID   int64 `json:"to"`
	}

	type VizData struct {
		Bounds Bounds    `json:"bounds"`
		Tick   int       `json:"tick"`
		Nodes  []NodeViz `json:"nodes"`
		Edges  []EdgeViz `json:"edges"`
	}

	data := VizData{
		Bounds: v.Bounds,
		Tick:   v.Tick,
		Nodes:  make([]NodeViz, 0, v.Graph.Len()),
		Edges:  make([]EdgeViz, 0, v.Graph.EdgeCount()),
	}

	for _, n := range v.Graph.Nodes() {
		kind := n.Kind.String()
		if n.Kind == KindUnknown && n.RawKind != "" {
			kind = n.RawKind
		}
		data.Nodes = append(data.Nodes, NodeViz{
			ID:    n.ID,
			Kind:  kind,
			Label: n.Label,
			X:     n.X,
			Y:     n.Y,
		})
	}
	sort.Slice(data.Nodes, func(i, j int) bool { return data.Nodes[i].ID < data.Nodes[j].ID })

	v.Graph.EachEdge(func(a, b *SimNode) {
		data.Edges = append(data.Edges, EdgeViz{FromNodeID: a.ID, ToNodeID: b.ID})
	})

	return json.MarshalIndent(data, "", "  ")
}
