package render

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// OpKind names a recorded drawing call
type OpKind string

const (
	OpClear           OpKind = "clear"
	OpLine            OpKind = "line"
	OpFillCircle      OpKind = "fill_circle"
	OpStrokeCircle    OpKind = "stroke_circle"
	OpGlow            OpKind = "glow"
	OpGlyph           OpKind = "glyph"
	OpFillRoundedRect OpKind = "fill_rounded_rect"
	OpText            OpKind = "text"
)

// Op is one recorded drawing call
type Op struct {
	Kind   OpKind
	X, Y   float64
	X2, Y2 float64
	R      float64
	W, H   float64
	Color  Color
	Width  float64
	Glyph  rune
	Text   string
}

// Recorder is a headless Surface that keeps every call it receives.
// Text is measured at a fixed advance per rune.
type Recorder struct {
	Width, Height float64
	CharWidth     float64

	ops []Op
}

// NewRecorder creates a recorder of the given logical size
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{Width: width, Height: height, CharWidth: 7}
}

// Resize follows the backing store like a real surface
func (r *Recorder) Resize(backingWidth, backingHeight int, pixelRatio float64) {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	r.Width = float64(backingWidth) / pixelRatio
	r.Height = float64(backingHeight) / pixelRatio
}

func (r *Recorder) Size() (float64, float64) { return r.Width, r.Height }

// Clear drops previously recorded ops and records the clear itself
func (r *Recorder) Clear() {
	r.ops = append(r.ops[:0], Op{Kind: OpClear})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64, s Stroke) {
	r.ops = append(r.ops, Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Color: s.Color, Width: s.Width})
}

func (r *Recorder) FillCircle(cx, cy, radius float64, fill Color) {
	r.ops = append(r.ops, Op{Kind: OpFillCircle, X: cx, Y: cy, R: radius, Color: fill})
}

func (r *Recorder) StrokeCircle(cx, cy, radius float64, s Stroke) {
	r.ops = append(r.ops, Op{Kind: OpStrokeCircle, X: cx, Y: cy, R: radius, Color: s.Color, Width: s.Width})
}

func (r *Recorder) Glow(cx, cy, radius float64, c Color) {
	r.ops = append(r.ops, Op{Kind: OpGlow, X: cx, Y: cy, R: radius, Color: c})
}

func (r *Recorder) Glyph(cx, cy float64, g rune, c Color) {
	r.ops = append(r.ops, Op{Kind: OpGlyph, X: cx, Y: cy, Glyph: g, Color: c})
}

func (r *Recorder) MeasureText(text string) float64 {
	return float64(utf8.RuneCountInString(text)) * r.CharWidth
}

func (r *Recorder) FillRoundedRect(x, y, w, h, radius float64, fill Color) {
	r.ops = append(r.ops, Op{Kind: OpFillRoundedRect, X: x, Y: y, W: w, H: h, R: radius, Color: fill})
}

func (r *Recorder) Text(x, y float64, text string, c Color) {
	r.ops = append(r.ops, Op{Kind: OpText, X: x, Y: y, Text: text, Color: c})
}

// Ops returns the calls recorded since the last Clear
func (r *Recorder) Ops() []Op {
	return r.ops
}

// Filter returns the recorded ops of one kind
func (r *Recorder) Filter(kind OpKind) []Op {
	var out []Op
	for _, op := range r.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Trace formats the recorded ops one per line
func (r *Recorder) Trace() string {
	var b strings.Builder
	for _, op := range r.ops {
		switch op.Kind {
		case OpClear:
			b.WriteString("clear\n")
		case OpLine:
			fmt.Fprintf(&b, "line %.1f,%.1f -> %.1f,%.1f %s\n", op.X, op.Y, op.X2, op.Y2, op.Color)
		case OpGlyph:
			fmt.Fprintf(&b, "glyph %.1f,%.1f %q %s\n", op.X, op.Y, op.Glyph, op.Color)
		case OpText:
			fmt.Fprintf(&b, "text %.1f,%.1f %q %s\n", op.X, op.Y, op.Text, op.Color)
		case OpFillRoundedRect:
			fmt.Fprintf(&b, "%s %.1f,%.1f %.1fx%.1f %s\n", op.Kind, op.X, op.Y, op.W, op.H, op.Color)
		default:
			fmt.Fprintf(&b, "%s %.1f,%.1f r=%.1f %s\n", op.Kind, op.X, op.Y, op.R, op.Color)
		}
	}
	return b.String()
}

var (
	_ Surface   = (*Recorder)(nil)
	_ Surface   = (*TermSurface)(nil)
	_ Resizable = (*Recorder)(nil)
	_ Resizable = (*TermSurface)(nil)
)
