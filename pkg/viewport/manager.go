package viewport

import (
	"math"
	"sync"

	"github.com/dd0wney/cluso-graphview/pkg/logging"
	"github.com/dd0wney/cluso-graphview/pkg/render"
	"github.com/dd0wney/cluso-graphview/pkg/visualization"
)

// Config holds the viewport defaults
type Config struct {
	// PixelRatio is used when the host does not report one
	PixelRatio float64 `yaml:"pixel_ratio" toml:"pixel_ratio" validate:"gt=0"`
}

// DefaultConfig returns the terminal pixel ratio
func DefaultConfig() Config {
	return Config{PixelRatio: render.TermPixelRatio}
}

// State is the last observed host size
type State struct {
	Width, Height float64 // logical pixels
	PixelRatio    float64
	BackingWidth  int
	BackingHeight int
}

// Bounds returns the logical drawable area
func (s State) Bounds() visualization.Bounds {
	return visualization.Bounds{Width: s.Width, Height: s.Height}
}

// Manager tracks the host content box and keeps the backing surface and the
// bounds subscribers in step with it. Node positions are never rescaled.
type Manager struct {
	mu          sync.Mutex
	config      Config
	state       State
	surface     render.Resizable
	subscribers []func(visualization.Bounds)
	resizes     int
	logger      logging.Logger
}

// NewManager creates a manager that resizes surface on every size change.
// surface may be nil.
func NewManager(config Config, surface render.Resizable, logger logging.Logger) *Manager {
	if config.PixelRatio <= 0 {
		config.PixelRatio = DefaultConfig().PixelRatio
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Manager{
		config:  config,
		surface: surface,
		logger:  logger.With(logging.Component("viewport")),
	}
}

// Subscribe registers fn to receive the new bounds after every change
func (m *Manager) Subscribe(fn func(visualization.Bounds)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Observe reports the host content box in logical pixels. A ratio of zero or
// less uses the configured default. Collapsed hosts (non-positive sizes) are
// ignored. Observe returns true when the size changed.
func (m *Manager) Observe(width, height, pixelRatio float64) bool {
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return false
	}
	if pixelRatio <= 0 {
		pixelRatio = m.config.PixelRatio
	}

	m.mu.Lock()
	if m.state.Width == width && m.state.Height == height && m.state.PixelRatio == pixelRatio {
		m.mu.Unlock()
		return false
	}

	m.state = State{
		Width:         width,
		Height:        height,
		PixelRatio:    pixelRatio,
		BackingWidth:  int(math.Ceil(width * pixelRatio)),
		BackingHeight: int(math.Ceil(height * pixelRatio)),
	}
	m.resizes++
	state := m.state
	subs := make([]func(visualization.Bounds), len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	if m.surface != nil {
		m.surface.Resize(state.BackingWidth, state.BackingHeight, state.PixelRatio)
	}

	bounds := state.Bounds()
	for _, fn := range subs {
		fn(bounds)
	}

	m.logger.Debug("viewport resized",
		logging.Float64("width", width),
		logging.Float64("height", height),
		logging.Float64("pixel_ratio", pixelRatio),
	)
	return true
}

// State returns the last observed size
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Bounds returns the current logical bounds
func (m *Manager) Bounds() visualization.Bounds {
	return m.State().Bounds()
}

// Resizes returns how many size changes have been applied
func (m *Manager) Resizes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resizes
}
