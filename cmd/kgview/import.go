package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/source"
)

func importCmd() *cobra.Command {
	var (
		target string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <fixture>",
		Short: "Load a fixture file into PostgreSQL or Neo4j",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := stderrLogger(cfg)

			f, err := source.LoadFixture(args[0])
			if err != nil {
				return err
			}

			banner("import")
			stat("Fixture", args[0])
			stat("Entities", len(f.Entities))
			stat("Connections", len(f.Connections))
			fmt.Println()

			if dryRun {
				rows := make([][]string, 0, len(f.Entities))
				for _, e := range f.Entities {
					rows = append(rows, []string{strconv.FormatInt(e.ID, 10), e.Kind, e.Label, strings.Join(e.Tags, ", ")})
				}
				table([]string{"ID", "KIND", "LABEL", "TAGS"}, rows)
				return nil
			}

			srcCfg := cfg.Source
			srcCfg.Kind = source.Kind(target)

			start := time.Now()
			if err := importFixture(cmd.Context(), srcCfg, f, logger); err != nil {
				return err
			}
			Good.Printf("  imported into %s in %s\n", target, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", string(source.KindPostgres), "target store: postgres or neo4j")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the entities without writing them")
	return cmd
}

func importFixture(ctx context.Context, cfg source.Config, f *source.Fixture, logger logging.Logger) error {
	switch cfg.Kind {
	case source.KindPostgres:
		p, err := source.NewPostgres(ctx, cfg.DatabaseURL, 0)
		if err != nil {
			return err
		}
		defer p.Close()
		if err := p.EnsureSchema(ctx); err != nil {
			return err
		}
		logger.Info("schema ready")
		return p.Import(ctx, f)

	case source.KindNeo4j:
		n, err := source.NewNeo4j(ctx, cfg.Neo4j, 0)
		if err != nil {
			return err
		}
		defer n.Close()
		return n.Import(ctx, f)

	default:
		return fmt.Errorf("%w: cannot import into %q", source.ErrUnknownSource, cfg.Kind)
	}
}
