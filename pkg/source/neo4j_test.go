package source

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a disposable Neo4j: KGVIEW_TEST_NEO4J_URI, _USER and _PASSWORD
func newTestNeo4j(t *testing.T) *Neo4j {
	t.Helper()
	uri := os.Getenv("KGVIEW_TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("KGVIEW_TEST_NEO4J_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := NewNeo4j(ctx, Neo4jConfig{
		URI:      uri,
		Username: os.Getenv("KGVIEW_TEST_NEO4J_USER"),
		Password: os.Getenv("KGVIEW_TEST_NEO4J_PASSWORD"),
	}, 0)
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })

	session := n.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	_, err = session.Run(ctx, `MATCH (e:Entity) DETACH DELETE e`, nil)
	require.NoError(t, err)
	return n
}

func TestNeo4jRoundTrip(t *testing.T) {
	n := newTestNeo4j(t)
	ctx := context.Background()

	f, err := LoadFixture("testdata/graph.yaml")
	require.NoError(t, err)
	require.NoError(t, n.Import(ctx, f))

	snap, err := n.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 4)
	// The dangling connection has no target node to attach to
	assert.Len(t, snap.Edges, 3)

	d, err := n.FetchDetail(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Reading list", d.Title)
	require.Len(t, d.Connections, 2)
	assert.Equal(t, int64(2), d.Connections[0].ID)
	assert.Equal(t, int64(3), d.Connections[1].ID)

	d, err = n.FetchDetail(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, d.Connections)

	_, err = n.FetchDetail(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
