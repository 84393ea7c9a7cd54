package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal cell geometry in logical pixels
const (
	CellWidth  = 8.0
	CellHeight = 16.0

	// TermPixelRatio maps a cell onto a 2x4 braille dot grid
	TermPixelRatio = 0.25
)

const brailleBase = 0x2800

// brailleBits indexes the dot bit by [column][row] inside one cell
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

type cell struct {
	dots     uint8
	dotColor Color
	glyph    rune
	glyphFg  Color
	text     rune
	textFg   Color
	bg       Color
}

// TermSurface rasterises drawing commands onto a braille canvas. Each terminal
// cell holds a 2x4 dot block; glyphs and text overwrite whole cells.
type TermSurface struct {
	width, height float64 // logical
	ratio         float64 // backing dots per logical pixel
	dotsW, dotsH  int
	cols, rows    int
	cells         []cell
}

// NewTermSurface creates an empty surface; call Resize before drawing
func NewTermSurface() *TermSurface {
	return &TermSurface{ratio: TermPixelRatio}
}

// Resize sets the backing store size in dots. The logical size is the backing size divided by the ratio.
func (t *TermSurface) Resize(backingWidth, backingHeight int, pixelRatio float64) {
	if backingWidth < 0 {
		backingWidth = 0
	}
	if backingHeight < 0 {
		backingHeight = 0
	}
	if pixelRatio <= 0 {
		pixelRatio = TermPixelRatio
	}
	t.ratio = pixelRatio
	t.dotsW, t.dotsH = backingWidth, backingHeight
	t.width = float64(backingWidth) / pixelRatio
	t.height = float64(backingHeight) / pixelRatio
	t.cols = (backingWidth + 1) / 2
	t.rows = (backingHeight + 3) / 4
	t.cells = make([]cell, t.cols*t.rows)
}

// Cells returns the grid size in terminal cells
func (t *TermSurface) Cells() (cols, rows int) {
	return t.cols, t.rows
}

// Size returns the drawable area in logical pixels
func (t *TermSurface) Size() (float64, float64) {
	return t.width, t.height
}

// Clear erases the canvas
func (t *TermSurface) Clear() {
	for i := range t.cells {
		t.cells[i] = cell{}
	}
}

func (t *TermSurface) toDot(x, y float64) (int, int) {
	return int(math.Floor(x * t.ratio)), int(math.Floor(y * t.ratio))
}

func (t *TermSurface) cellAt(x, y float64) *cell {
	col := int(math.Floor(x * t.ratio / 2))
	row := int(math.Floor(y * t.ratio / 4))
	if col < 0 || row < 0 || col >= t.cols || row >= t.rows {
		return nil
	}
	return &t.cells[row*t.cols+col]
}

func (t *TermSurface) setDot(dx, dy int, c Color) {
	if dx < 0 || dy < 0 || dx >= t.dotsW || dy >= t.dotsH {
		return
	}
	ce := &t.cells[(dy/4)*t.cols+dx/2]
	ce.dots |= brailleBits[dx%2][dy%4]
	ce.dotColor = c
}

// Line draws a one dot wide line
func (t *TermSurface) Line(x1, y1, x2, y2 float64, s Stroke) {
	ax, ay := x1*t.ratio, y1*t.ratio
	bx, by := x2*t.ratio, y2*t.ratio
	steps := int(math.Ceil(math.Max(math.Abs(bx-ax), math.Abs(by-ay))))
	if steps == 0 {
		t.setDot(int(math.Floor(ax)), int(math.Floor(ay)), s.Color)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		t.setDot(int(math.Floor(ax+(bx-ax)*f)), int(math.Floor(ay+(by-ay)*f)), s.Color)
	}
}

// FillCircle sets every dot inside the circle, and always the centre dot
func (t *TermSurface) FillCircle(cx, cy, r float64, fill Color) {
	t.eachDotNear(cx, cy, r, func(dx, dy int, dist float64) {
		if dist <= r*t.ratio {
			t.setDot(dx, dy, fill)
		}
	})
	px, py := t.toDot(cx, cy)
	t.setDot(px, py, fill)
}

// StrokeCircle sets the dots on the circle's outline
func (t *TermSurface) StrokeCircle(cx, cy, r float64, s Stroke) {
	half := math.Max(0.5, s.Width*t.ratio/2)
	t.eachDotNear(cx, cy, r+s.Width, func(dx, dy int, dist float64) {
		if math.Abs(dist-r*t.ratio) <= half {
			t.setDot(dx, dy, s.Color)
		}
	})
}

// Glow draws a sparse ring of dots
func (t *TermSurface) Glow(cx, cy, r float64, c Color) {
	t.eachDotNear(cx, cy, r, func(dx, dy int, dist float64) {
		if (dx+dy)%2 == 0 && math.Abs(dist-r*t.ratio) <= 0.5 {
			t.setDot(dx, dy, c)
		}
	})
}

func (t *TermSurface) eachDotNear(cx, cy, r float64, fn func(dx, dy int, dist float64)) {
	rr := r * t.ratio
	px, py := cx*t.ratio, cy*t.ratio
	minX, maxX := int(math.Floor(px-rr-1)), int(math.Ceil(px+rr+1))
	minY, maxY := int(math.Floor(py-rr-1)), int(math.Ceil(py+rr+1))
	for dy := minY; dy <= maxY; dy++ {
		for dx := minX; dx <= maxX; dx++ {
			// Distance from the dot's centre
			fn(dx, dy, math.Hypot(float64(dx)+0.5-px, float64(dy)+0.5-py))
		}
	}
}

// Glyph places an icon in the cell containing the point
func (t *TermSurface) Glyph(cx, cy float64, g rune, c Color) {
	if ce := t.cellAt(cx, cy); ce != nil {
		ce.glyph = g
		ce.glyphFg = c
	}
}

// MeasureText returns the text width in logical pixels
func (t *TermSurface) MeasureText(text string) float64 {
	return float64(lipgloss.Width(text)) * t.cellWidth()
}

func (t *TermSurface) cellWidth() float64 {
	return 2 / t.ratio
}

func (t *TermSurface) cellHeight() float64 {
	return 4 / t.ratio
}

// FillRoundedRect paints the background of every cell the rectangle overlaps.
// Cells have square corners, so the radius is ignored.
func (t *TermSurface) FillRoundedRect(x, y, w, h, _ float64, fill Color) {
	cw, ch := t.cellWidth(), t.cellHeight()
	c0, c1 := int(math.Floor(x/cw)), int(math.Ceil((x+w)/cw))
	r0, r1 := int(math.Floor(y/ch)), int(math.Ceil((y+h)/ch))
	if r1 == r0 {
		r1++
	}
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			if col < 0 || row < 0 || col >= t.cols || row >= t.rows {
				continue
			}
			t.cells[row*t.cols+col].bg = fill
		}
	}
}

// Text writes one rune per cell starting at the cell containing (x, y)
func (t *TermSurface) Text(x, y float64, text string, c Color) {
	col := int(math.Floor(x / t.cellWidth()))
	row := int(math.Floor(y / t.cellHeight()))
	if row < 0 || row >= t.rows {
		return
	}
	for _, r := range text {
		if col >= 0 && col < t.cols {
			ce := &t.cells[row*t.cols+col]
			ce.text = r
			ce.textFg = c
		}
		col++
	}
}

// Rune returns the character shown at a cell
func (t *TermSurface) Rune(col, row int) rune {
	if col < 0 || row < 0 || col >= t.cols || row >= t.rows {
		return 0
	}
	ch, _, _ := t.cells[row*t.cols+col].face()
	return ch
}

// face resolves what a cell shows: text over glyph over dots
func (c cell) face() (rune, Color, Color) {
	switch {
	case c.text != 0:
		return c.text, c.textFg, c.bg
	case c.glyph != 0:
		return c.glyph, c.glyphFg, c.bg
	case c.dots != 0:
		return rune(brailleBase + int(c.dots)), c.dotColor, c.bg
	default:
		return ' ', "", c.bg
	}
}

// PlainString returns the canvas without colour codes
func (t *TermSurface) PlainString() string {
	var b strings.Builder
	for row := 0; row < t.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < t.cols; col++ {
			ch, _, _ := t.cells[row*t.cols+col].face()
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// String renders the canvas with lipgloss styles, one line per row
func (t *TermSurface) String() string {
	var b strings.Builder
	for row := 0; row < t.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}

		var run strings.Builder
		var runFg, runBg Color
		flush := func() {
			if run.Len() == 0 {
				return
			}
			style := lipgloss.NewStyle()
			if runFg != "" {
				style = style.Foreground(lipgloss.Color(runFg))
			}
			if runBg != "" {
				style = style.Background(lipgloss.Color(runBg))
			}
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}

		for col := 0; col < t.cols; col++ {
			ch, fg, bg := t.cells[row*t.cols+col].face()
			if fg != runFg || bg != runBg {
				flush()
				runFg, runBg = fg, bg
			}
			run.WriteRune(ch)
		}
		flush()
	}
	return b.String()
}
