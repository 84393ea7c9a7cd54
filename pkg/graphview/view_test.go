package graphview

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/interaction"
	"github.com/dd0wney/cluso-graphview/pkg/metrics"
	"github.com/dd0wney/cluso-graphview/pkg/render"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

var sample = visualization.Snapshot{
	Nodes: []visualization.EntityNode{
		{ID: 1, Kind: "note", Label: "Reading list"},
		{ID: 2, Kind: "link", Label: "go.dev"},
		{ID: 3, Kind: "person", Label: "Grace"},
		{ID: 4, Kind: "company", Label: "Initech"},
	},
	Edges: []visualization.Connection{
		{FromID: 1, ToID: 2},
		{FromID: 1, ToID: 3},
		{FromID: 3, ToID: 4},
		{FromID: 4, ToID: 99},
	},
}

func detailFetcher() detail.Fetcher {
	return detail.FetcherFunc(func(_ context.Context, id int64) (*detail.EntityDetail, error) {
		for _, n := range sample.Nodes {
			if n.ID == id {
				return &detail.EntityDetail{ID: id, Kind: n.Kind, Title: n.Label}, nil
			}
		}
		return nil, detail.ErrNotFound
	})
}

func newView(t *testing.T, opts ...Option) (*View, *render.Recorder) {
	t.Helper()
	rec := render.NewRecorder(0, 0)
	v := New(detailFetcher(), DefaultConfig(), append([]Option{WithSurface(rec)}, opts...)...)
	t.Cleanup(v.Close)
	return v, rec
}

func TestLoadAndFrame(t *testing.T) {
	v, rec := newView(t)
	require.True(t, v.Resize(800, 600, 1))
	require.NoError(t, v.Load(sample))

	assert.Equal(t, 4, v.Graph().Len())
	assert.Equal(t, 3, v.Graph().EdgeCount())
	assert.Equal(t, 1, v.Graph().DroppedEdges())

	stats := v.Frame()
	assert.Equal(t, 1, stats.Frame)
	assert.Equal(t, 0, stats.Step.Tick)
	assert.Equal(t, render.Stats{Edges: 3, Nodes: 4}, stats.Render)
	assert.Equal(t, render.OpClear, rec.Ops()[0].Kind)

	w, h := rec.Size()
	assert.Equal(t, 800.0, w)
	assert.Equal(t, 600.0, h)
}

func TestFramesKeepNodesInBounds(t *testing.T) {
	v, _ := newView(t)
	v.Resize(300, 200, 1)
	require.NoError(t, v.Load(sample))

	r := v.Engine().Config().NodeRadius
	for i := 0; i < 200; i++ {
		v.Frame()
		for _, n := range v.Graph().Nodes() {
			require.GreaterOrEqual(t, n.X, r)
			require.LessOrEqual(t, n.X, 300-r)
			require.GreaterOrEqual(t, n.Y, r)
			require.LessOrEqual(t, n.Y, 200-r)
		}
	}
}

func TestLoadBeforeResizeSeedsOnFirstSize(t *testing.T) {
	v, _ := newView(t)
	require.NoError(t, v.Load(sample))

	// Nothing moves while the host has no size
	v.Frame()
	v.Resize(800, 600, 1)

	radius := visualization.DefaultDiscFraction * 600
	for _, n := range v.Graph().Nodes() {
		d := math.Hypot(n.X-400, n.Y-300)
		assert.LessOrEqual(t, d, radius+1e-9, "node %d", n.ID)
	}
}

func TestSameSeedSameLayout(t *testing.T) {
	run := func() map[int64]visualization.Position {
		v, _ := newView(t)
		v.Resize(800, 600, 1)
		require.NoError(t, v.Load(sample))
		for i := 0; i < 120; i++ {
			v.Frame()
		}
		return v.Graph().Positions()
	}
	assert.Equal(t, run(), run())
}

func TestReseedChangesLayout(t *testing.T) {
	v, _ := newView(t)
	v.Resize(800, 600, 1)
	require.NoError(t, v.Load(sample))
	before := v.Graph().Positions()

	require.NoError(t, v.Reseed(v.Seed()+1))
	assert.NotEqual(t, before, v.Graph().Positions())
	assert.Equal(t, 0, v.Engine().Ticks())
}

func TestDuplicateIDKeepsPreviousGraph(t *testing.T) {
	v, _ := newView(t)
	v.Resize(800, 600, 1)
	require.NoError(t, v.Load(sample))
	g := v.Graph()

	bad := visualization.Snapshot{Nodes: []visualization.EntityNode{{ID: 7}, {ID: 7}}}
	err := v.Load(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, visualization.ErrDuplicateNode))
	assert.Same(t, g, v.Graph())
}

func TestClickSelectsAndLoadsDetail(t *testing.T) {
	v, _ := newView(t)
	v.Resize(800, 600, 1)
	require.NoError(t, v.Load(sample))

	n, ok := v.Graph().Node(3)
	require.True(t, ok)

	v.PointerDown(interaction.At(n.X, n.Y))
	g := v.PointerUp(interaction.At(n.X+1, n.Y))
	assert.Equal(t, interaction.GestureClick, g.Kind)
	assert.Same(t, n, v.Selected())

	v.WaitDetail()
	st := v.Detail()
	assert.True(t, st.HasSelection)
	assert.Equal(t, int64(3), st.SelectedID)
	assert.False(t, st.Loading)
	require.NotNil(t, st.Detail)
	assert.Equal(t, "Grace", st.Detail.Title)
}

func TestDragHoldsNodeAgainstEngine(t *testing.T) {
	v, _ := newView(t)
	v.Resize(800, 600, 1)
	require.NoError(t, v.Load(sample))

	n, _ := v.Graph().Node(1)
	startX, startY := n.X, n.Y
	v.PointerDown(interaction.At(startX, startY))
	assert.Equal(t, interaction.Dragging, v.Phase())

	v.PointerMove(interaction.At(100, 100))
	for i := 0; i < 10; i++ {
		v.Frame()
		assert.Equal(t, 100.0, n.X)
		assert.Equal(t, 100.0, n.Y)
	}

	g := v.PointerUp(interaction.At(100, 100))
	assert.Equal(t, interaction.GestureDrag, g.Kind)
	assert.Nil(t, v.Selected())
	assert.False(t, v.Detail().HasSelection)
	assert.False(t, n.Dragged)
}

func TestReloadResetsSelectionAndTicks(t *testing.T) {
	v, _ := newView(t)
	v.Resize(800, 600, 1)
	require.NoError(t, v.Load(sample))
	require.True(t, v.Select(2))
	v.WaitDetail()
	v.Frame()
	v.Frame()

	require.NoError(t, v.Load(sample))
	assert.Nil(t, v.Selected())
	assert.Nil(t, v.Hovered())
	assert.False(t, v.Detail().HasSelection)
	assert.Equal(t, 0, v.Engine().Ticks())
}

func TestClearSelection(t *testing.T) {
	v, _ := newView(t)
	v.Resize(800, 600, 1)
	require.NoError(t, v.Load(sample))
	require.True(t, v.Select(1))
	v.WaitDetail()

	v.ClearSelection()
	assert.Nil(t, v.Selected())
	assert.False(t, v.Detail().HasSelection)
}

func TestResizeUpdatesBounds(t *testing.T) {
	v, _ := newView(t)
	assert.False(t, v.Resize(0, 600, 1))
	assert.True(t, v.Resize(640, 480, 2))
	assert.False(t, v.Resize(640, 480, 2))

	want := visualization.Bounds{Width: 640, Height: 480}
	assert.Equal(t, want, v.Bounds())
	assert.Equal(t, want, v.Engine().Bounds())
}

func TestHealthy(t *testing.T) {
	v, _ := newView(t)
	assert.ErrorIs(t, v.Healthy(), ErrNoGraph)
	require.NoError(t, v.Load(sample))
	assert.NoError(t, v.Healthy())
}

type staticSource visualization.Snapshot

func (s staticSource) Snapshot(context.Context) (visualization.Snapshot, error) {
	return visualization.Snapshot(s), nil
}

type failingSource struct{}

func (failingSource) Snapshot(context.Context) (visualization.Snapshot, error) {
	return visualization.Snapshot{}, errors.New("connection refused")
}

func TestLoadFrom(t *testing.T) {
	v, _ := newView(t)
	v.Resize(800, 600, 1)

	require.NoError(t, v.LoadFrom(context.Background(), staticSource(sample)))
	assert.Equal(t, 4, v.Graph().Len())

	err := v.LoadFrom(context.Background(), failingSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 4, v.Graph().Len())
}

func TestLayoutExport(t *testing.T) {
	v, _ := newView(t)
	v.Resize(800, 600, 1)
	require.NoError(t, v.Load(sample))
	v.Frame()

	data, err := v.Layout().ExportJSON()
	require.NoError(t, err)

	var out struct {
		Tick  int `json:"tick"`
		Nodes []struct {
			ID int64 `json:"id"`
		} `json:"nodes"`
		Edges []struct{} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 1, out.Tick)
	assert.Len(t, out.Nodes, 4)
	assert.Len(t, out.Edges, 3)
}

func TestMetricsWired(t *testing.T) {
	reg := metrics.NewRegistry()
	v, _ := newView(t, WithMetrics(reg))
	v.Resize(800, 600, 1)
	require.NoError(t, v.Load(sample))

	n, _ := v.Graph().Node(4)
	v.PointerDown(interaction.At(n.X, n.Y))
	v.PointerUp(interaction.At(n.X, n.Y))
	v.WaitDetail()
	v.Frame()
	v.Frame()

	value := func(c interface{ Write(*dto.Metric) error }) float64 {
		var m dto.Metric
		require.NoError(t, c.Write(&m))
		if m.Counter != nil {
			return m.Counter.GetValue()
		}
		return m.Gauge.GetValue()
	}

	assert.Equal(t, 2.0, value(reg.FramesTotal))
	assert.Equal(t, 1.0, value(reg.ClicksTotal))
	assert.Equal(t, 1.0, value(reg.ResizesTotal))
	assert.Equal(t, 4.0, value(reg.GraphNodes))
	assert.Equal(t, 1.0, value(reg.DroppedEdgesTotal))
	assert.Equal(t, 1.0, value(reg.DetailRequestsTotal.WithLabelValues(string(detail.StatusOK))))
}
