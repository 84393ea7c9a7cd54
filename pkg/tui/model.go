// Package tui hosts a graph session in a bubbletea program: frame ticks drive
// the simulation, mouse events drive the pointer controller and a side panel
// shows the selected entity.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-graphview/pkg/detail"
	"github.com/dd0wney/cluso-graphview/pkg/frameloop"
	"github.com/dd0wney/cluso-graphview/pkg/graphview"
	"github.com/dd0wney/cluso-graphview/pkg/interaction"
	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/render"
	"github.com/dd0wney/cluso-graphview/pkg/viewport"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

const (
	// canvasTop is the header height in rows
	canvasTop = 1
	// panelWidth is the detail panel width including its border
	panelWidth = 38
	// minPanelTerm is the narrowest terminal that still gets a panel
	minPanelTerm = 80
)

// ReloadRecorder counts source reloads
type ReloadRecorder interface {
	RecordSourceReload(err error)
}

type frameMsg time.Time

// detailMsg wakes the program after the bridge state changed
type detailMsg struct{}

type sourceChangedMsg struct{}

type snapshotMsg struct {
	snap visualization.Snapshot
	err  error
}

// Model is the bubbletea model of the graph explorer
type Model struct {
	view     *graphview.View
	term     *render.TermSurface
	source   graphview.SnapshotSource
	changes  <-chan struct{}
	detailCh chan struct{}
	reloads  ReloadRecorder
	logger   logging.Logger

	host     viewport.CellHost
	interval time.Duration
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	panel    *detailPanel

	width, height int
	last          graphview.FrameStats
	paused        bool
	message       string
	messageErr    bool
}

// Option configures a Model
type Option func(*Model)

// WithSource enables reloading from src
func WithSource(src graphview.SnapshotSource) Option {
	return func(m *Model) { m.source = src }
}

// WithChanges reloads the source whenever ch receives
func WithChanges(ch <-chan struct{}) Option {
	return func(m *Model) { m.changes = ch }
}

// WithFPS sets the frame rate
func WithFPS(fps float64) Option {
	return func(m *Model) { m.interval = frameloop.Interval(fps) }
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithReloadRecorder records source reloads
func WithReloadRecorder(r ReloadRecorder) Option {
	return func(m *Model) { m.reloads = r }
}

// New creates a model around a session drawing onto term
func New(view *graphview.View, term *render.TermSurface, opts ...Option) Model {
	m := Model{
		view:     view,
		term:     term,
		detailCh: make(chan struct{}, 1),
		logger:   logging.NewNopLogger(),
		interval: frameloop.Interval(30),
		keys:     keys,
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		panel:    newDetailPanel(panelWidth - 4),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.logger = m.logger.With(logging.Component("tui"))

	// Coalesce bursts of detail updates into one wake-up
	ch := m.detailCh
	view.SubscribeDetail(func(detail.State) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return m
}

func (m Model) tickCmd() tea.Cmd {
	interval := m.interval
	if interval <= 0 {
		interval = time.Millisecond
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func waitFor[T any](ch <-chan struct{}, msg T) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return msg
	}
}

func (m Model) reloadCmd() tea.Cmd {
	src := m.source
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		snap, err := src.Snapshot(ctx)
		return snapshotMsg{snap: snap, err: err}
	}
}

// Init starts the frame ticks and the background listeners
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		waitFor(m.detailCh, detailMsg{}),
		waitFor(m.changes, sourceChangedMsg{}),
	)
}

// Update handles one message
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case frameMsg:
		if !m.paused {
			m.last = m.view.Frame()
		}
		return m, m.tickCmd()

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case detailMsg:
		cmds := []tea.Cmd{waitFor(m.detailCh, detailMsg{})}
		if m.view.Detail().Loading {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.view.Detail().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sourceChangedMsg:
		m.logger.Info("source changed, reloading")
		return m, tea.Batch(m.reloadCmd(), waitFor(m.changes, sourceChangedMsg{}))

	case snapshotMsg:
		m.applySnapshot(msg)
		return m, nil
	}

	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width

	cols := width
	if width >= minPanelTerm {
		cols = width - panelWidth
	}
	rows := height - canvasTop - 1
	if cols < 1 || rows < 1 {
		return
	}

	m.host = viewport.CellHost{Cols: cols, Rows: rows}
	w, h := m.host.Logical()
	m.view.Resize(w, h, m.host.PixelRatio())
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X, msg.Y-canvasTop
	inside := m.host.Contains(col, row)
	x, y := m.host.Pointer(col, row)
	ev := interaction.PointerEvent{X: x, Y: y, Type: interaction.Mouse}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return
		}
		m.view.PointerDown(ev)

	case tea.MouseActionMotion:
		if !inside {
			// Leaving the canvas ends the gesture without a click
			if m.view.Phase() == interaction.Dragging || m.view.Hovered() != nil {
				m.view.PointerCancel()
			}
			return
		}
		m.view.PointerMove(ev)

	case tea.MouseActionRelease:
		if !inside {
			m.view.PointerCancel()
			return
		}
		m.view.PointerUp(ev)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Next):
		m.step(1)

	case key.Matches(msg, m.keys.Prev):
		m.step(-1)

	case key.Matches(msg, m.keys.Clear):
		m.view.ClearSelection()

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused

	case key.Matches(msg, m.keys.Reseed):
		if err := m.view.Reseed(m.view.Seed() + 1); err != nil {
			m.setMessage(err.Error(), true)
		} else {
			m.setMessage(fmt.Sprintf("Layout reseeded (seed %d)", m.view.Seed()), false)
		}

	case key.Matches(msg, m.keys.Reload):
		if m.source == nil {
			m.setMessage("No source to reload from", true)
			return m, nil
		}
		m.setMessage("Reloading…", false)
		return m, m.reloadCmd()
	}
	return m, nil
}

// step selects the node dir places after the current selection in id order
func (m *Model) step(dir int) {
	nodes := m.view.Graph().Nodes()
	if len(nodes) == 0 {
		return
	}
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	next := 0
	if dir < 0 {
		next = len(ids) - 1
	}
	if sel := m.view.Selected(); sel != nil {
		i := sort.Search(len(ids), func(i int) bool { return ids[i] >= sel.ID })
		next = (i + dir + len(ids)) % len(ids)
	}
	m.view.Select(ids[next])
}

func (m *Model) applySnapshot(msg snapshotMsg) {
	err := msg.err
	if err == nil {
		err = m.view.Load(msg.snap)
	}
	if m.reloads != nil {
		m.reloads.RecordSourceReload(err)
	}
	if err != nil {
		m.logger.Warn("reload failed", logging.Error(err))
		m.setMessage("Reload failed: "+err.Error(), true)
		return
	}
	g := m.view.Graph()
	m.setMessage(fmt.Sprintf("Loaded %d nodes, %d edges", g.Len(), g.EdgeCount()), false)
}

func (m *Model) setMessage(s string, isErr bool) {
	m.message = s
	m.messageErr = isErr
}

// View renders the header, canvas, detail panel and help line
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(m.header())
	s.WriteString("\n")

	body := m.term.String()
	if m.width >= minPanelTerm {
		panel := panelStyle.
			Width(panelWidth - 2).
			Height(m.host.Rows - 2).
			Render(m.panel.Render(m.view.Detail(), m.spinner.View()))
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}
	s.WriteString(body)
	s.WriteString("\n")
	s.WriteString(m.footer())
	return s.String()
}

func (m Model) header() string {
	g := m.view.Graph()
	title := titleStyle.Render("kgview")
	stats := statStyle.Render(fmt.Sprintf(" %d nodes · %d edges · tick %d · α %.3f",
		g.Len(), g.EdgeCount(), m.view.Engine().Ticks(), m.last.Step.Alpha))
	if m.paused {
		stats += mutedStyle.Render(" · paused")
	}
	if n := m.view.Hovered(); n != nil {
		stats += mutedStyle.Render(" · " + render.Truncate(n.Label, 24))
	}
	return title + stats
}

func (m Model) footer() string {
	if m.message != "" && !m.help.ShowAll {
		if m.messageErr {
			return errorStyle.Render("✗ " + m.message)
		}
		return successStyle.Render("✓ " + m.message)
	}
	return helpStyle.Render(m.help.View(m.keys))
}
