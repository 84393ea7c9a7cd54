package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphview/pkg/config"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
)

var (
	version = "0.3.0"

	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "kgview",
	Short: "Force-directed explorer for a personal knowledge graph",
	Long: `kgview lays out notes, links, highlights, people and companies as a
force-directed graph. Drag nodes around, click one to see its detail, or run
the simulation headless to export a layout.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s %s\n", Brand.Sprint("kgview"), version))

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(
		tuiCmd(),
		simulateCmd(),
		layoutCmd(),
		importCmd(),
		versionCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		Bad.Fprintf(os.Stderr, "  %v\n", err)
	}
	return err
}

// loadConfig reads the configuration named by --config and applies --log-level
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// stderrLogger logs to stderr for the headless commands
func stderrLogger(cfg *config.Config) logging.Logger {
	logger := logging.NewZapLogger(os.Stderr, cfg.LogLevel(), cfg.LogFormat())
	logging.SetDefaultLogger(logger)
	return logger
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", Brand.Sprint("kgview"), version)
		},
	}
}
