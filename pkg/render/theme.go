package render

import (
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Theme holds the colours and glyphs used by the renderer
type Theme struct {
	Kinds map[visualization.Kind]KindStyle

	Fallback KindStyle

	Edge           Color
	NodeStroke     Color
	SelectedStroke Color
	LabelChip      Color
	LabelText      Color
}

// KindStyle is the fill colour and icon for one entity kind
type KindStyle struct {
	Fill  Color
	Glyph rune
}

// DefaultTheme returns the fixed palette keyed by entity kind
func DefaultTheme() Theme {
	return Theme{
		Kinds: map[visualization.Kind]KindStyle{
			visualization.KindNote:      {Fill: "#6366F1", Glyph: '¶'},
			visualization.KindLink:      {Fill: "#0EA5E9", Glyph: '@'},
			visualization.KindHighlight: {Fill: "#F59E0B", Glyph: '*'},
			visualization.KindPerson:    {Fill: "#10B981", Glyph: '☺'},
			visualization.KindCompany:   {Fill: "#EC4899", Glyph: '#'},
		},
		Fallback: KindStyle{Fill: "#9CA3AF", Glyph: '·'},

		Edge:           "#64748B",
		NodeStroke:     "#FFFFFF",
		SelectedStroke: "#1F2937",
		LabelChip:      "#111827",
		LabelText:      "#F9FAFB",
	}
}

// Style returns the style for a kind, falling back to the neutral style
func (t Theme) Style(k visualization.Kind) KindStyle {
	if s, ok := t.Kinds[k]; ok {
		return s
	}
	return t.Fallback
}
