package detail

import (
	"context"
	"errors"
	"time"
)

// Summary is a directly connected entity shown in the detail panel
type Summary struct {
	ID    int64  `json:"id" yaml:"id"`
	Kind  string `json:"kind" yaml:"kind"`
	Label string `json:"label" yaml:"label"`
}

// EntityDetail is the full record of one entity and its connections
type EntityDetail struct {
	ID          int64     `json:"id" yaml:"id"`
	Kind        string    `json:"kind" yaml:"kind"`
	Title       string    `json:"title" yaml:"title"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	Content     string    `json:"content,omitempty" yaml:"content,omitempty"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Connections []Summary `json:"connections" yaml:"connections"`
}

// Fetcher loads the detail of one entity
type Fetcher interface {
	FetchDetail(ctx context.Context, id int64) (*EntityDetail, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, id int64) (*EntityDetail, error)

// FetchDetail calls f(ctx, id)
func (f FetcherFunc) FetchDetail(ctx context.Context, id int64) (*EntityDetail, error) {
	return f(ctx, id)
}

// ErrNotFound is returned by fetchers for unknown entity ids
var ErrNotFound = errors.New("entity not found")

// Status classifies how a detail request ended
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
	// StatusStale marks a result dropped because the selection moved on
	StatusStale Status = "stale"
)

// Observer receives the outcome of every detail request, typically for metrics
type Observer interface {
	ObserveDetail(status Status, latency time.Duration)
}

// State is a snapshot of the selection as the host should display it
type State struct {
	SelectedID   int64
	HasSelection bool
	Loading      bool
	Detail       *EntityDetail
	Err          error
	RequestID    string
}
