package main

import (
	"context"

	"github.com/dd0wney/cluso-graphview/pkg/config"
	"github.com/dd0wney/cluso-graphview/pkg/graphview"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/render"
	"github.com/dd0wney/cluso-graphview/pkg/source"
	"github.com/dd0wney/cluso-graphview/pkg/viewport"
)

// headless is a graph session without a terminal program
type headless struct {
	view   *graphview.View
	source source.Source
	term   *render.TermSurface
	rec    *render.Recorder
}

// openHeadless opens the configured source, sizes the view to a grid of
// cols x rows terminal cells and loads the first snapshot. With record set
// the frames are captured as draw operations instead of terminal cells.
func openHeadless(ctx context.Context, cfg *config.Config, cols, rows int, record bool, logger logging.Logger) (*headless, error) {
	src, err := source.Open(ctx, cfg.Source, logger)
	if err != nil {
		return nil, err
	}

	h := &headless{source: src}
	host := viewport.CellHost{Cols: cols, Rows: rows}
	width, height := host.Logical()
	ratio := host.PixelRatio()

	var surface graphview.Surface
	if record {
		h.rec = render.NewRecorder(width, height)
		surface = h.rec
		ratio = 1
	} else {
		h.term = render.NewTermSurface()
		surface = h.term
	}

	h.view = graphview.New(src, cfg.View(),
		graphview.WithLogger(logger),
		graphview.WithSurface(surface),
	)
	h.view.Resize(width, height, ratio)

	if err := h.view.LoadFrom(ctx, src); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func (h *headless) Close() {
	h.view.Close()
	_ = h.source.Close()
}
