// Package progress tracks optimization runs that execute in the background.
// Each run gets a RunHandle; its events and state go to a Store that other
// processes can read.
package progress

import (
	"context"
	"time"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Finished reports whether the run has ended.
func (s Status) Finished() bool {
	return s != StatusRunning
}

// Event is one progress message of a run.
type Event struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Summary string    `json:"summary,omitempty"` // snapshot summary, when one was available
	At      time.Time `json:"at"`
}

// State is the latest known state of a run.
type State struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	Status    Status    `json:"status"`
	Stage     string    `json:"stage,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists run state and events. Implementations must be safe for
// concurrent use. State returns a RUN_NOT_FOUND error for unknown runs.
type Store interface {
	SetState(ctx context.Context, st State) error
	State(ctx context.Context, id string) (State, error)
	Append(ctx context.Context, id string, ev Event) error
	Events(ctx context.Context, id string) ([]Event, error)
	List(ctx context.Context) ([]State, error)
	Close() error
}
