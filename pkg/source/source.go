// Package source loads graph snapshots and entity details from the
// external data layer: a fixture file, PostgreSQL or Neo4j.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Source supplies one snapshot per graph load and the detail of single entities
type Source interface {
	Snapshot(ctx context.Context) (visualization.Snapshot, error)
	detail.Fetcher
	Close() error
}

// Kind names a source implementation
type Kind string

const (
	KindFixture  Kind = "fixture"
	KindPostgres Kind = "postgres"
	KindNeo4j    Kind = "neo4j"
)

// Config selects and configures the source
type Config struct {
	Kind        Kind        `yaml:"kind" toml:"kind" validate:"oneof=fixture postgres neo4j"`
	Path        string      `yaml:"path" toml:"path"`
	DatabaseURL string      `yaml:"database_url" toml:"database_url"`
	Neo4j       Neo4jConfig `yaml:"neo4j" toml:"neo4j"`
	// Limit caps the number of entities per snapshot; 0 means no limit
	Limit int  `yaml:"limit" toml:"limit" validate:"gte=0"`
	Watch bool `yaml:"watch" toml:"watch"`
}

// DefaultConfig reads the bundled sample fixture
func DefaultConfig() Config {
	return Config{
		Kind: KindFixture,
		Path: "examples/sample-graph.yaml",
	}
}

var (
	// ErrUnknownSource is returned by Open for an unsupported kind
	ErrUnknownSource = errors.New("unknown source kind")
	// ErrNotFound is returned by FetchDetail for unknown entity ids
	ErrNotFound = detail.ErrNotFound
)

// Open creates the source named by cfg.Kind
func Open(ctx context.Context, cfg Config, logger logging.Logger) (Source, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("source"), logging.String("kind", string(cfg.Kind)))

	switch cfg.Kind {
	case KindFixture, "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("fixture source requires a path")
		}
		f, err := LoadFixture(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("fixture loaded",
			logging.Path(cfg.Path),
			logging.Count(len(f.Entities)),
		)
		return f, nil

	case KindPostgres:
		p, err := NewPostgres(ctx, cfg.DatabaseURL, cfg.Limit)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to postgres")
		return p, nil

	case KindNeo4j:
		n, err := NewNeo4j(ctx, cfg.Neo4j, cfg.Limit)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to neo4j", logging.String("uri", cfg.Neo4j.URI))
		return n, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Kind)
	}
}
