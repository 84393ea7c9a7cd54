// Package config loads kgview settings from a YAML or TOML file, a .env file
// and KGVIEW_* environment variables, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/graphview"
	"github.com/dd0wney/cluso-graphview/pkg/interaction"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/render"
	"github.com/dd0wney/cluso-graphview/pkg/source"
	"github.com/dd0wney/cluso-graphview/pkg/validation"
	"github.com/dd0wney/cluso-graphview/pkg/viewport"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Config holds all application configuration
type Config struct {
	Simulation  visualization.ForceConfig `yaml:"simulation" toml:"simulation"`
	Render      render.Config             `yaml:"render" toml:"render"`
	Interaction interaction.Config        `yaml:"interaction" toml:"interaction"`
	Viewport    viewport.Config           `yaml:"viewport" toml:"viewport"`
	Detail      detail.Config             `yaml:"detail" toml:"detail"`
	Frame       FrameConfig               `yaml:"frame" toml:"frame"`
	Seed        int64                     `yaml:"seed" toml:"seed"`
	Layout      string                    `yaml:"layout" toml:"layout" validate:"oneof=disc circular hierarchical"`
	Source      source.Config             `yaml:"source" toml:"source"`
	Logging     LoggingConfig             `yaml:"logging" toml:"logging"`
	Metrics     MetricsConfig             `yaml:"metrics" toml:"metrics"`
}

// FrameConfig controls the frame scheduler
type FrameConfig struct {
	FPS float64 `yaml:"fps" toml:"fps" validate:"gt=0,lte=240"`
	// MaxFrames stops headless runs; zero means no limit
	MaxFrames int `yaml:"max_frames" toml:"max_frames" validate:"gte=0"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=json console"`
	// File receives logs in the terminal UI, where stderr belongs to the screen
	File string `yaml:"file" toml:"file"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" toml:"enabled"`
	Addr     string        `yaml:"addr" toml:"addr"`
	Interval time.Duration `yaml:"interval" toml:"interval"`
}

// ErrUnsupportedFormat is returned by Load for unknown file extensions
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Default returns the default configuration.
func Default() *Config {
	view := graphview.DefaultConfig()
	return &Config{
		Simulation:  view.Simulation,
		Render:      view.Render,
		Interaction: view.Interaction,
		Viewport:    view.Viewport,
		Detail:      view.Detail,
		Frame:       FrameConfig{FPS: 30},
		Seed:        view.Seed,
		Layout:      view.Layout,
		Source:      source.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   "kgview.log",
		},
		Metrics: MetricsConfig{
			Addr:     ":9464",
			Interval: 10 * time.Second,
		},
	}
}

// Load reads the config file at path over the defaults, then applies .env and
// environment overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// applyEnv overlays KGVIEW_* variables. LOG_LEVEL is honoured like the
// default logger does.
func (c *Config) applyEnv() error {
	c.Source.Kind = source.Kind(getEnv("KGVIEW_SOURCE", string(c.Source.Kind)))
	c.Source.Path = getEnv("KGVIEW_SOURCE_PATH", c.Source.Path)
	c.Source.DatabaseURL = getEnv("KGVIEW_DATABASE_URL", getEnv("DATABASE_URL", c.Source.DatabaseURL))
	c.Source.Neo4j.URI = getEnv("KGVIEW_NEO4J_URI", getEnv("NEO4J_URI", c.Source.Neo4j.URI))
	c.Source.Neo4j.Username = getEnv("KGVIEW_NEO4J_USER", getEnv("NEO4J_USER", c.Source.Neo4j.Username))
	c.Source.Neo4j.Password = getEnv("KGVIEW_NEO4J_PASSWORD", getEnv("NEO4J_PASSWORD", c.Source.Neo4j.Password))
	c.Source.Neo4j.Database = getEnv("KGVIEW_NEO4J_DATABASE", c.Source.Neo4j.Database)

	c.Logging.Level = strings.ToLower(getEnv("KGVIEW_LOG_LEVEL", getEnv("LOG_LEVEL", c.Logging.Level)))
	c.Logging.Format = getEnv("KGVIEW_LOG_FORMAT", c.Logging.Format)
	c.Logging.File = getEnv("KGVIEW_LOG_FILE", c.Logging.File)
	c.Metrics.Addr = getEnv("KGVIEW_METRICS_ADDR", c.Metrics.Addr)

	var err error
	if c.Seed, err = getEnvInt64("KGVIEW_SEED", c.Seed); err != nil {
		return err
	}
	if c.Frame.FPS, err = getEnvFloat("KGVIEW_FPS", c.Frame.FPS); err != nil {
		return err
	}
	if c.Metrics.Enabled, err = getEnvBool("KGVIEW_METRICS", c.Metrics.Enabled); err != nil {
		return err
	}
	return nil
}

// Validate checks struct tags and the rules that span sections
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}

	cv := validation.NewConfigValidator("config")
	cv.Greater("interaction.hit_radius", c.Interaction.HitRadius, "render.node_radius", c.Render.NodeRadius)
	// Nodes are clamped by the simulation radius; a larger drawn disc would cross the wall
	cv.AtMost("render.node_radius", c.Render.NodeRadius, "simulation.node_radius", c.Simulation.NodeRadius)
	cv.When(c.Source.Kind == source.KindFixture, func(v *validation.ConfigValidator) {
		v.Required("source.path", c.Source.Path)
	})
	cv.When(c.Source.Kind == source.KindPostgres, func(v *validation.ConfigValidator) {
		v.Required("source.database_url", c.Source.DatabaseURL)
	})
	cv.When(c.Source.Kind == source.KindNeo4j, func(v *validation.ConfigValidator) {
		v.Required("source.neo4j.uri", c.Source.Neo4j.URI)
	})
	cv.When(c.Metrics.Enabled, func(v *validation.ConfigValidator) {
		v.Required("metrics.addr", c.Metrics.Addr)
		v.MinDuration("metrics.interval", c.Metrics.Interval, time.Second)
	})
	cv.When(c.Detail.Breaker.Enabled, func(v *validation.ConfigValidator) {
		v.Positive("detail.breaker.min_requests", int(c.Detail.Breaker.MinRequests))
	})
	return cv.Validate()
}

// View returns the settings of one graph session
func (c *Config) View() graphview.Config {
	// Dragged nodes are clamped exactly like simulated ones
	inter := c.Interaction
	inter.NodeRadius = c.Simulation.NodeRadius
	return graphview.Config{
		Simulation:  c.Simulation,
		Render:      c.Render,
		Interaction: inter,
		Viewport:    c.Viewport,
		Detail:      c.Detail,
		Seed:        c.Seed,
		Layout:      c.Layout,
	}
}

// LogLevel returns the parsed logging level
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// LogFormat returns the parsed logging format
func (c *Config) LogFormat() logging.Format {
	return logging.ParseFormat(c.Logging.Format)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
