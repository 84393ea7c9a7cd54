package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Postgres reads entities and connections from PostgreSQL
type Postgres struct {
	pool  *pgxpool.Pool
	limit int
}

// NewPostgres connects to databaseURL and verifies the connection
func NewPostgres(ctx context.Context, databaseURL string, limit int) (*Postgres, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("postgres source requires a database URL")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 8
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Postgres{pool: pool, limit: limit}, nil
}

// EnsureSchema creates the entity and connection tables if they don't exist
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS graph_entities (
		id BIGINT PRIMARY KEY,
		kind TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		title TEXT,
		url TEXT,
		source TEXT,
		content TEXT,
		tags TEXT[] NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS graph_connections (
		from_id BIGINT NOT NULL,
		to_id BIGINT NOT NULL,
		PRIMARY KEY (from_id, to_id)
	);

	CREATE INDEX IF NOT EXISTS idx_graph_connections_to_id ON graph_connections(to_id);
	`

	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Snapshot reads all entities (up to the limit) and the connections between them
func (p *Postgres) Snapshot(ctx context.Context) (visualization.Snapshot, error) {
	query := `
		SELECT id, kind, label
		FROM graph_entities
		ORDER BY id
	`
	args := []any{}
	if p.limit > 0 {
		query += " LIMIT $1"
		args = append(args, p.limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return visualization.Snapshot{}, fmt.Errorf("failed to list entities: %w", err)
	}
	nodes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (visualization.EntityNode, error) {
		var n visualization.EntityNode
		err := row.Scan(&n.ID, &n.Kind, &n.Label)
		return n, err
	})
	if err != nil {
		return visualization.Snapshot{}, fmt.Errorf("failed to scan entity: %w", err)
	}

	// Edges to entities beyond the limit are dropped by the graph loader
	rows, err = p.pool.Query(ctx, `SELECT from_id, to_id FROM graph_connections ORDER BY from_id, to_id`)
	if err != nil {
		return visualization.Snapshot{}, fmt.Errorf("failed to list connections: %w", err)
	}
	edges, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (visualization.Connection, error) {
		var c visualization.Connection
		err := row.Scan(&c.FromID, &c.ToID)
		return c, err
	})
	if err != nil {
		return visualization.Snapshot{}, fmt.Errorf("failed to scan connection: %w", err)
	}

	return visualization.Snapshot{Nodes: nodes, Edges: edges}, nil
}

// FetchDetail reads one entity and its direct connections
func (p *Postgres) FetchDetail(ctx context.Context, id int64) (*detail.EntityDetail, error) {
	query := `
		SELECT id, kind, label, title, url, source, content, tags
		FROM graph_entities
		WHERE id = $1
	`

	d := &detail.EntityDetail{Connections: []detail.Summary{}}
	var label string
	var title, url, src, content *string

	err := p.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.Kind,
		&label,
		&title,
		&url,
		&src,
		&content,
		&d.Tags,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	d.Title = deref(title, label)
	d.URL = deref(url, "")
	d.Source = deref(src, "")
	d.Content = deref(content, "")

	rows, err := p.pool.Query(ctx, `
		SELECT DISTINCT e.id, e.kind, e.label
		FROM graph_connections c
		JOIN graph_entities e
			ON e.id = CASE WHEN c.from_id = $1 THEN c.to_id ELSE c.from_id END
		WHERE (c.from_id = $1 OR c.to_id = $1) AND c.from_id <> c.to_id
		ORDER BY e.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s detail.Summary
		if err := rows.Scan(&s.ID, &s.Kind, &s.Label); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		d.Connections = append(d.Connections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}

	return d, nil
}

// Import upserts every fixture record in a single transaction
func (p *Postgres) Import(ctx context.Context, f *Fixture) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range f.Entities {
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO graph_entities (id, kind, label, title, url, source, content, tags)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
			ON CONFLICT (id) DO UPDATE SET
				kind = EXCLUDED.kind,
				label = EXCLUDED.label,
				title = EXCLUDED.title,
				url = EXCLUDED.url,
				source = EXCLUDED.source,
				content = EXCLUDED.content,
				tags = EXCLUDED.tags
		`, e.ID, e.Kind, e.Label, e.Title, e.URL, e.Source, e.Content, tags)
		if err != nil {
			return fmt.Errorf("failed to upsert entity %d: %w", e.ID, err)
		}
	}

	for _, c := range f.Connections {
		_, err := tx.Exec(ctx, `
			INSERT INTO graph_connections (from_id, to_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, c.FromID, c.ToID)
		if err != nil {
			return fmt.Errorf("failed to insert connection %d->%d: %w", c.FromID, c.ToID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
