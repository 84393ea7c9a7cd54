package source

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Neo4jConfig holds the Bolt connection settings
type Neo4jConfig struct {
	URI      string `yaml:"uri" toml:"uri"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	Database string `yaml:"database" toml:"database"`
}

// Neo4j reads (:Entity) nodes and the relationships between them
type Neo4j struct {
	driver   neo4j.DriverWithContext
	database string
	limit    int
}

// NewNeo4j connects to the Bolt endpoint in cfg and verifies connectivity
func NewNeo4j(ctx context.Context, cfg Neo4jConfig, limit int) (*Neo4j, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j source requires a URI")
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("neo4j unreachable: %w", err)
	}

	return &Neo4j{driver: driver, database: cfg.Database, limit: limit}, nil
}

func (n *Neo4j) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return n.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: n.database})
}

// Snapshot reads entities (up to the limit) and every relationship between two entities
func (n *Neo4j) Snapshot(ctx context.Context) (visualization.Snapshot, error) {
	session := n.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (e:Entity)
		RETURN e.id AS id, e.kind AS kind, coalesce(e.label, e.title, '') AS label
		ORDER BY id
	`
	params := map[string]any{}
	if n.limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = n.limit
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return visualization.Snapshot{}, fmt.Errorf("failed to list entities: %w", err)
	}

	var snap visualization.Snapshot
	for result.Next(ctx) {
		record := result.Record()
		snap.Nodes = append(snap.Nodes, visualization.EntityNode{
			ID:    getInt64FromRecord(record, "id"),
			Kind:  getStringFromRecord(record, "kind"),
			Label: getStringFromRecord(record, "label"),
		})
	}
	if err := result.Err(); err != nil {
		return visualization.Snapshot{}, fmt.Errorf("error iterating entities: %w", err)
	}

	result, err = session.Run(ctx, `
		MATCH (a:Entity)-[]->(b:Entity)
		RETURN a.id AS from_id, b.id AS to_id
	`, nil)
	if err != nil {
		return visualization.Snapshot{}, fmt.Errorf("failed to list connections: %w", err)
	}
	for result.Next(ctx) {
		record := result.Record()
		snap.Edges = append(snap.Edges, visualization.Connection{
			FromID: getInt64FromRecord(record, "from_id"),
			ToID:   getInt64FromRecord(record, "to_id"),
		})
	}
	if err := result.Err(); err != nil {
		return visualization.Snapshot{}, fmt.Errorf("error iterating connections: %w", err)
	}

	return snap, nil
}

// FetchDetail reads one entity and its neighbours in either direction
func (n *Neo4j) FetchDetail(ctx context.Context, id int64) (*detail.EntityDetail, error) {
	session := n.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	query := `
		MATCH (e:Entity {id: $id})
		OPTIONAL MATCH (e)--(c:Entity)
		WHERE c <> e
		RETURN
			e.id AS id,
			e.kind AS kind,
			coalesce(e.title, e.label, '') AS title,
			e.url AS url,
			e.source AS source,
			e.content AS content,
			e.tags AS tags,
			collect(DISTINCT {id: c.id, kind: c.kind, label: c.label}) AS connections
	`

	result, err := session.Run(ctx, query, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch record: %w", err)
		}
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	record := result.Record()
	d := &detail.EntityDetail{
		ID:          getInt64FromRecord(record, "id"),
		Kind:        getStringFromRecord(record, "kind"),
		Title:       getStringFromRecord(record, "title"),
		URL:         getStringFromRecord(record, "url"),
		Source:      getStringFromRecord(record, "source"),
		Content:     getStringFromRecord(record, "content"),
		Tags:        getStringSliceFromRecord(record, "tags"),
		Connections: summariesFromRecord(record, "connections"),
	}
	return d, nil
}

// Import merges every fixture record into the graph
func (n *Neo4j) Import(ctx context.Context, f *Fixture) error {
	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, e := range f.Entities {
			_, err := tx.Run(ctx, `
				MERGE (e:Entity {id: $id})
				SET e.kind = $kind, e.label = $label, e.title = $title,
					e.url = $url, e.source = $source, e.content = $content, e.tags = $tags
			`, map[string]any{
				"id":      e.ID,
				"kind":    e.Kind,
				"label":   e.Label,
				"title":   nullable(e.Title),
				"url":     nullable(e.URL),
				"source":  nullable(e.Source),
				"content": nullable(e.Content),
				"tags":    e.Tags,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to merge entity %d: %w", e.ID, err)
			}
		}
		for _, c := range f.Connections {
			_, err := tx.Run(ctx, `
				MATCH (a:Entity {id: $from}), (b:Entity {id: $to})
				MERGE (a)-[:CONNECTED_TO]->(b)
			`, map[string]any{"from": c.FromID, "to": c.ToID})
			if err != nil {
				return nil, fmt.Errorf("failed to merge connection %d->%d: %w", c.FromID, c.ToID, err)
			}
		}
		return nil, nil
	})
	return err
}

// Ping verifies the Bolt endpoint is reachable
func (n *Neo4j) Ping(ctx context.Context) error {
	return n.driver.VerifyConnectivity(ctx)
}

// Close closes the driver
func (n *Neo4j) Close() error {
	return n.driver.Close(context.Background())
}
