package visualization

import (
	"errors"
	"strings"
)

// Kind identifies the entity type of a node. It selects colour and glyph.
type Kind int

const (
	// KindUnknown is used for any kind string outside the closed set
	KindUnknown Kind = iota
	KindNote
	KindLink
	KindHighlight
	KindPerson
	KindCompany
)

// String returns the wire name of a kind
func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindLink:
		return "link"
	case KindHighlight:
		return "highlight"
	case KindPerson:
		return "person"
	case KindCompany:
		return "company"
	default:
		return "unknown"
	}
}

// ParseKind maps a kind string to a Kind. Unrecognised strings map to KindUnknown.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "note", "notes":
		return KindNote
	case "link", "links":
		return KindLink
	case "highlight", "highlights":
		return KindHighlight
	case "person", "people":
		return KindPerson
	case "company", "companies":
		return KindCompany
	default:
		return KindUnknown
	}
}

// EntityNode is one node as supplied by the external data layer
type EntityNode struct {
	ID    int64  `json:"id" yaml:"id"`
	Kind  string `json:"kind" yaml:"kind"`
	Label string `json:"label" yaml:"label"`
}

// Connection relates two entities. Direction is only used by the hierarchical seeder.
type Connection struct {
	FromID int64 `json:"fromId" yaml:"from_id"`
	ToID   int64 `json:"toId" yaml:"to_id"`
}

// Snapshot is the node/edge set for one graph load
type Snapshot struct {
	Nodes []EntityNode `json:"nodes" yaml:"nodes"`
	Edges []Connection `json:"edges" yaml:"edges"`
}

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the drawable area in logical pixels
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the bounds
func (b Bounds) Center() Position {
	return Position{X: b.Width / 2, Y: b.Height / 2}
}

// Empty reports whether the bounds have no drawable area
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// SimNode is the simulation's mutable record for one entity.
// Position and velocity are written by the engine unless Dragged is set,
// in which case the interaction controller owns the position.
type SimNode struct {
	ID      int64
	Kind    Kind
	RawKind string
	Label   string
	X, Y    float64
	VX, VY  float64
	Dragged bool
	index   int
}

// Position returns the node's current position
func (n *SimNode) Position() Position {
	return Position{X: n.X, Y: n.Y}
}

// Seeder assigns initial positions to freshly loaded nodes
type Seeder interface {
	Seed(g *Graph, bounds Bounds)
}

var (
	// ErrDuplicateNode is returned by Load when two nodes share an id
	ErrDuplicateNode = errors.New("duplicate node id")
)
