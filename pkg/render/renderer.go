package render

import (
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Config holds the drawing constants
type Config struct {
	NodeRadius    float64 `yaml:"node_radius" toml:"node_radius" validate:"gt=0"`
	EmphasisScale float64 `yaml:"emphasis_scale" toml:"emphasis_scale" validate:"gte=1"`
	GlowScale     float64 `yaml:"glow_scale" toml:"glow_scale" validate:"gte=1"`
	EdgeWidth     float64 `yaml:"edge_width" toml:"edge_width" validate:"gt=0"`
	MaxLabelRunes int     `yaml:"max_label_runes" toml:"max_label_runes" validate:"gt=1"`
	LabelPadding  float64 `yaml:"label_padding" toml:"label_padding" validate:"gte=0"`
	LabelHeight   float64 `yaml:"label_height" toml:"label_height" validate:"gt=0"`
	LabelGap      float64 `yaml:"label_gap" toml:"label_gap" validate:"gte=0"`
}

// DefaultConfig returns the default drawing constants
func DefaultConfig() Config {
	return Config{
		NodeRadius:    8,
		EmphasisScale: 1.4,
		GlowScale:     2,
		EdgeWidth:     1,
		MaxLabelRunes: 24,
		LabelPadding:  4,
		LabelHeight:   12,
		LabelGap:      4,
	}
}

// Stats counts what one frame drew
type Stats struct {
	Edges  int
	Nodes  int
	Labels int
}

// Renderer paints a graph onto a Surface. It holds no per-frame state.
type Renderer struct {
	config Config
	theme  Theme
}

// NewRenderer creates a renderer with the default theme
func NewRenderer(config Config) *Renderer {
	return NewRendererWithTheme(config, DefaultTheme())
}

// NewRendererWithTheme creates a renderer with a custom theme
func NewRendererWithTheme(config Config, theme Theme) *Renderer {
	def := DefaultConfig()
	if config.NodeRadius <= 0 {
		config.NodeRadius = def.NodeRadius
	}
	if config.EmphasisScale < 1 {
		config.EmphasisScale = def.EmphasisScale
	}
	if config.GlowScale < 1 {
		config.GlowScale = def.GlowScale
	}
	if config.EdgeWidth <= 0 {
		config.EdgeWidth = def.EdgeWidth
	}
	if config.MaxLabelRunes < 2 {
		config.MaxLabelRunes = def.MaxLabelRunes
	}
	if config.LabelHeight <= 0 {
		config.LabelHeight = def.LabelHeight
	}
	return &Renderer{config: config, theme: theme}
}

// Config returns the drawing constants in use
func (r *Renderer) Config() Config {
	return r.config
}

// Theme returns the palette in use
func (r *Renderer) Theme() Theme {
	return r.theme
}

// Render draws one complete frame: clear, edges, nodes, then hover labels.
// hovered and selected may be nil. Neither affects layout.
func (r *Renderer) Render(s Surface, g *visualization.Graph, hovered, selected *visualization.SimNode) Stats {
	var stats Stats
	s.Clear()

	edgeStroke := Stroke{Color: r.theme.Edge, Width: r.config.EdgeWidth}
	g.EachEdge(func(a, b *visualization.SimNode) {
		s.Line(a.X, a.Y, b.X, b.Y, edgeStroke)
		stats.Edges++
	})

	for _, n := range g.Nodes() {
		r.drawNode(s, n, n == hovered, n == selected)
		stats.Nodes++
	}

	if hovered != nil {
		if _, ok := g.Node(hovered.ID); ok {
			stats.Labels = r.drawHoverLabels(s, g, hovered)
		}
	}

	return stats
}

func (r *Renderer) drawNode(s Surface, n *visualization.SimNode, hovered, selected bool) {
	style := r.theme.Style(n.Kind)
	radius := r.config.NodeRadius
	x, y := n.X, n.Y
	if hovered || selected {
		radius *= r.config.EmphasisScale
		// The simulation clamps by the plain radius; pull the enlarged disc off the wall
		w, h := s.Size()
		x, y = visualization.ClampToBounds(x, y, radius, visualization.Bounds{Width: w, Height: h})
		s.Glow(x, y, radius*r.config.GlowScale, style.Fill)
	}

	s.FillCircle(x, y, radius, style.Fill)
	if selected {
		s.StrokeCircle(x, y, radius, Stroke{Color: r.theme.SelectedStroke, Width: 3})
	} else {
		s.StrokeCircle(x, y, radius, Stroke{Color: r.theme.NodeStroke, Width: 1.5})
	}
	s.Glyph(x, y, style.Glyph, r.theme.NodeStroke)
}

// drawHoverLabels labels the hovered node and each of its neighbours. The
// hovered node's label is drawn last so it sits on top.
func (r *Renderer) drawHoverLabels(s Surface, g *visualization.Graph, hovered *visualization.SimNode) int {
	count := 0
	for _, id := range g.Neighbors(hovered.ID) {
		if n, ok := g.Node(id); ok && r.drawLabel(s, n, r.config.NodeRadius) {
			count++
		}
	}
	if r.drawLabel(s, hovered, r.config.NodeRadius*r.config.EmphasisScale) {
		count++
	}
	return count
}

func (r *Renderer) drawLabel(s Surface, n *visualization.SimNode, nodeRadius float64) bool {
	text := Truncate(n.Label, r.config.MaxLabelRunes)
	if text == "" {
		return false
	}

	pad := r.config.LabelPadding
	w := s.MeasureText(text) + 2*pad
	h := r.config.LabelHeight + pad
	x := n.X - w/2
	y := n.Y - nodeRadius - r.config.LabelGap - h

	// Keep the chip on screen; it flips below the node at the top edge
	sw, _ := s.Size()
	x = visualization.Clamp(x, 0, sw-w)
	if y < 0 {
		y = n.Y + nodeRadius + r.config.LabelGap
	}

	s.FillRoundedRect(x, y, w, h, h/2, r.theme.LabelChip)
	s.Text(x+pad, y+h/2, text, r.theme.LabelText)
	return true
}
