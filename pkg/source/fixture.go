package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Entity is one fixture record: the node fields plus its detail fields
type Entity struct {
	ID      int64    `json:"id" yaml:"id"`
	Kind    string   `json:"kind" yaml:"kind"`
	Label   string   `json:"label" yaml:"label"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	URL     string   `json:"url,omitempty" yaml:"url,omitempty"`
	Source  string   `json:"source,omitempty" yaml:"source,omitempty"`
	Content string   `json:"content,omitempty" yaml:"content,omitempty"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Fixture is an in-memory source read from a YAML or JSON file. A fixture
// loaded from a file re-reads it on every Snapshot.
type Fixture struct {
	Entities    []Entity                   `json:"entities" yaml:"entities"`
	Connections []visualization.Connection `json:"connections" yaml:"connections"`

	path string
	mu   sync.RWMutex
	byID map[int64]int
}

// LoadFixture reads a fixture file; the extension selects JSON or YAML
func LoadFixture(path string) (*Fixture, error) {
	f, err := readFixture(path)
	if err != nil {
		return nil, err
	}
	f.path = path
	return f, nil
}

func readFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	f, err := ParseFixture(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Reload re-reads the backing file. On error the current records are kept.
// Fixtures built in memory have nothing to reload.
func (f *Fixture) Reload() error {
	if f.path == "" {
		return nil
	}
	next, err := readFixture(f.path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.Entities = next.Entities
	f.Connections = next.Connections
	f.byID = next.byID
	f.mu.Unlock()
	return nil
}

// ParseFixture decodes fixture data. ext is ".json" for JSON; anything else is YAML.
func ParseFixture(data []byte, ext string) (*Fixture, error) {
	f := &Fixture{}
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, f)
	} else {
		err = yaml.Unmarshal(data, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	f.index()
	return f, nil
}

// NewFixture builds a fixture from records
func NewFixture(entities []Entity, connections []visualization.Connection) *Fixture {
	f := &Fixture{Entities: entities, Connections: connections}
	f.index()
	return f
}

// index maps ids to records. The first record wins; duplicates still reach
// Snapshot so the graph loader can reject them.
func (f *Fixture) index() {
	f.byID = make(map[int64]int, len(f.Entities))
	for i, e := range f.Entities {
		if _, ok := f.byID[e.ID]; !ok {
			f.byID[e.ID] = i
		}
	}
}

// Snapshot re-reads the backing file and returns the node and edge lists
func (f *Fixture) Snapshot(ctx context.Context) (visualization.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return visualization.Snapshot{}, err
	}
	if err := f.Reload(); err != nil {
		return visualization.Snapshot{}, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	snap := visualization.Snapshot{
		Nodes: make([]visualization.EntityNode, len(f.Entities)),
		Edges: make([]visualization.Connection, len(f.Connections)),
	}
	for i, e := range f.Entities {
		snap.Nodes[i] = visualization.EntityNode{ID: e.ID, Kind: e.Kind, Label: e.Label}
	}
	copy(snap.Edges, f.Connections)
	return snap, nil
}

// FetchDetail returns the entity and its direct connections in either direction
func (f *Fixture) FetchDetail(ctx context.Context, id int64) (*detail.EntityDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	i, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	e := f.Entities[i]

	d := &detail.EntityDetail{
		ID:          e.ID,
		Kind:        e.Kind,
		Title:       e.Title,
		URL:         e.URL,
		Source:      e.Source,
		Content:     e.Content,
		Tags:        append([]string(nil), e.Tags...),
		Connections: []detail.Summary{},
	}
	if d.Title == "" {
		d.Title = e.Label
	}

	seen := map[int64]bool{id: true}
	for _, c := range f.Connections {
		var other int64
		switch id {
		case c.FromID:
			other = c.ToID
		case c.ToID:
			other = c.FromID
		default:
			continue
		}
		if seen[other] {
			continue
		}
		j, ok := f.byID[other]
		if !ok {
			continue
		}
		seen[other] = true
		n := f.Entities[j]
		d.Connections = append(d.Connections, detail.Summary{ID: n.ID, Kind: n.Kind, Label: n.Label})
	}
	sort.Slice(d.Connections, func(a, b int) bool { return d.Connections[a].ID < d.Connections[b].ID })

	return d, nil
}

// Close releases nothing
func (f *Fixture) Close() error {
	return nil
}
