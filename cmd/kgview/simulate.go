package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphview/pkg/frameloop"
	"github.com/dd0wney/cluso-graphview/pkg/graphview"
)

func simulateCmd() *cobra.Command {
	var (
		ticks      int
		fps        float64
		cols, rows int
		settle     float64
		patience   int
		showFrame  bool
		showTrace  bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the force simulation headless and report how it settles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := stderrLogger(cfg)

			h, err := openHeadless(cmd.Context(), cfg, cols, rows, showTrace, logger)
			if err != nil {
				return err
			}
			defer h.Close()

			loop := frameloop.Loop{
				Interval:  frameloop.Interval(fps),
				MaxFrames: ticks,
				Logger:    logger,
			}
			settler := frameloop.Settler{Threshold: settle, Patience: patience}

			var (
				last        graphview.FrameStats
				settled     bool
				tickTotal   time.Duration
				renderTotal time.Duration
			)
			start := time.Now()
			n, err := loop.Run(cmd.Context(), func(n int) bool {
				last = h.view.Frame()
				tickTotal += last.TickTime
				renderTotal += last.RenderTime
				if settle > 0 && settler.Observe(last.Step.Displacement) {
					settled = true
					return true
				}
				return false
			})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			if showFrame && h.term != nil {
				fmt.Println(h.term.String())
				fmt.Println()
			}
			if showTrace && h.rec != nil {
				fmt.Print(h.rec.Trace())
				fmt.Println()
			}

			g := h.view.Graph()
			banner("simulation")
			stat("Nodes", g.Len())
			stat("Edges", g.EdgeCount())
			if d := g.DroppedEdges(); d > 0 {
				stat("Dropped edges", Warn.Sprint(d))
			}
			stat("Frames", n)
			stat("Alpha", fmt.Sprintf("%.4f", last.Step.Alpha))
			stat("Displacement", fmt.Sprintf("%.3f", last.Step.Displacement))
			stat("Moving nodes", last.Step.Moving)
			if n > 0 {
				stat("Avg tick", tickTotal/time.Duration(n))
				stat("Avg render", renderTotal/time.Duration(n))
			}
			stat("Elapsed", elapsed.Round(time.Millisecond))
			fmt.Println()

			switch {
			case settled:
				Good.Printf("  settled after %d ticks\n", last.Step.Tick+1)
			case settle > 0:
				Warn.Printf("  still moving after %d ticks\n", n)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "n", 300, "number of ticks to run (0 runs until settled or interrupted)")
	cmd.Flags().Float64Var(&fps, "fps", 0, "frame rate; 0 runs unthrottled")
	cmd.Flags().IntVar(&cols, "cols", 100, "canvas width in terminal cells")
	cmd.Flags().IntVar(&rows, "rows", 36, "canvas height in terminal cells")
	cmd.Flags().Float64Var(&settle, "settle", 0.5, "stop once the per-tick displacement stays below this; 0 disables")
	cmd.Flags().IntVar(&patience, "patience", 10, "consecutive quiet ticks required to settle")
	cmd.Flags().BoolVar(&showFrame, "frame", false, "print the final frame")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "print the draw operations of the final frame")
	return cmd
}
