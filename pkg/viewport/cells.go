package viewport

import (
	"github.com/dd0wney/cluso-graphview/pkg/render"
)

// CellHost describes a terminal content box in character cells
type CellHost struct {
	Cols, Rows int
}

// Logical returns the host size in logical pixels
func (h CellHost) Logical() (width, height float64) {
	return float64(h.Cols) * render.CellWidth, float64(h.Rows) * render.CellHeight
}

// PixelRatio yields a 2x4 braille dot grid per cell
func (h CellHost) PixelRatio() float64 {
	return render.TermPixelRatio
}

// Observe reports the cell box to a manager
func (h CellHost) Observe(m *Manager) bool {
	w, ht := h.Logical()
	return m.Observe(w, ht, h.PixelRatio())
}

// Pointer converts a mouse cell coordinate into the logical pixel at the cell centre
func (h CellHost) Pointer(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * render.CellWidth, (float64(row) + 0.5) * render.CellHeight
}

// Contains reports whether a cell coordinate lies inside the box
func (h CellHost) Contains(col, row int) bool {
	return col >= 0 && row >= 0 && col < h.Cols && row < h.Rows
}
