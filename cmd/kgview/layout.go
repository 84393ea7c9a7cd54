package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func layoutCmd() *cobra.Command {
	var (
		ticks      int
		cols, rows int
		out        string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute a layout and export the node positions as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := stderrLogger(cfg)

			h, err := openHeadless(cmd.Context(), cfg, cols, rows, true, logger)
			if err != nil {
				return err
			}
			defer h.Close()

			for i := 0; i < ticks; i++ {
				h.view.Frame()
			}

			data, err := h.view.Layout().ExportJSON()
			if err != nil {
				return fmt.Errorf("failed to export layout: %w", err)
			}

			if out == "" || out == "-" {
				_, err = os.Stdout.Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("failed to write layout: %w", err)
			}
			Good.Printf("  wrote %d nodes to %s\n", h.view.Graph().Len(), out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&ticks, "ticks", "n", 300, "number of ticks to run before exporting")
	cmd.Flags().IntVar(&cols, "cols", 100, "canvas width in terminal cells")
	cmd.Flags().IntVar(&rows, "rows", 36, "canvas height in terminal cells")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; stdout when empty")
	return cmd
}
