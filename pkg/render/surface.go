package render

// Color is a hex colour string such as "#1F2937"
type Color string

// Stroke describes an outline or line
type Stroke struct {
	Color Color
	Width float64
}

// Surface is a 2D drawing target addressed in logical pixels. The renderer
// only ever talks to this interface; the backing resolution is the surface's concern.
type Surface interface {
	// Size returns the drawable area in logical pixels
	Size() (width, height float64)
	// Clear erases everything drawn so far
	Clear()
	Line(x1, y1, x2, y2 float64, s Stroke)
	FillCircle(cx, cy, r float64, fill Color)
	StrokeCircle(cx, cy, r float64, s Stroke)
	// Glow draws a soft halo of radius r around a point
	Glow(cx, cy, r float64, c Color)
	// Glyph draws a single icon rune centred on a point
	Glyph(cx, cy float64, g rune, c Color)
	// MeasureText returns the rendered width of text in logical pixels
	MeasureText(text string) float64
	FillRoundedRect(x, y, w, h, radius float64, fill Color)
	// Text draws text starting at x, vertically centred on y
	Text(x, y float64, text string, c Color)
}

// Resizable is implemented by surfaces with a backing store that follows the host size
type Resizable interface {
	Resize(backingWidth, backingHeight int, pixelRatio float64)
}
