package graphview

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/interaction"
	"github.com/dd0wney/cluso-graphview/pkg/render"
	"github.com/dd0wney/cluso-graphview/pkg/viewport"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Seeder names accepted by Config.Layout
const (
	LayoutDisc         = "disc"
	LayoutCircular     = "circular"
	LayoutHierarchical = "hierarchical"
)

// Config gathers the settings of every component a View owns
type Config struct {
	Simulation  visualization.ForceConfig `yaml:"simulation" toml:"simulation"`
	Render      render.Config             `yaml:"render" toml:"render"`
	Interaction interaction.Config        `yaml:"interaction" toml:"interaction"`
	Viewport    viewport.Config           `yaml:"viewport" toml:"viewport"`
	Detail      detail.Config             `yaml:"detail" toml:"detail"`
	// Seed drives the initial placement; the same seed gives the same layout
	Seed   int64  `yaml:"seed" toml:"seed"`
	Layout string `yaml:"layout" toml:"layout" validate:"omitempty,oneof=disc circular hierarchical"`
}

// DefaultConfig returns the interactive defaults
func DefaultConfig() Config {
	return Config{
		Simulation:  visualization.DefaultForceConfig(),
		Render:      render.DefaultConfig(),
		Interaction: interaction.DefaultConfig(),
		Viewport:    viewport.DefaultConfig(),
		Detail:      detail.DefaultConfig(),
		Seed:        1,
		Layout:      LayoutDisc,
	}
}

// seeder builds a fresh placement strategy for one load
func (c Config) seeder() visualization.Seeder {
	switch c.Layout {
	case LayoutCircular:
		return &visualization.CircularSeeder{}
	case LayoutHierarchical:
		return &visualization.HierarchicalSeeder{}
	default:
		return &visualization.DiscSeeder{
			RadiusFraction: visualization.DefaultDiscFraction,
			Rand:           rand.New(rand.NewSource(c.Seed)),
		}
	}
}

// FrameStats describes one Frame call
type FrameStats struct {
	Frame      int
	Step       visualization.StepStats
	Render     render.Stats
	TickTime   time.Duration
	RenderTime time.Duration
}

// Surface is a drawing target that follows the viewport's backing size
type Surface interface {
	render.Surface
	render.Resizable
}

// Metrics receives the session's measurements. *metrics.Registry implements it.
type Metrics interface {
	interaction.Observer
	detail.Observer
	RecordFrame(tick, render time.Duration, alpha, displacement float64)
	RecordGraphLoad(err error, duration time.Duration, nodes, edges, dropped int)
	RecordResize(width, height float64)
}

// SnapshotSource supplies the node and edge set for a load
type SnapshotSource interface {
	Snapshot(ctx context.Context) (visualization.Snapshot, error)
}

var (
	// ErrNoGraph is reported by Healthy before the first successful load
	ErrNoGraph = errors.New("no graph loaded")
)
