// Package store persists compiled OpenFGA authorization models so the
// compile API can hand back a stable model ID instead of requiring callers
// to resubmit JSON on every authorization check.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a model ID or name has no matching record.
var ErrNotFound = errors.New("store: model not found")

// Model is a persisted, compiled authorization model.
type Model struct {
	ID        string
	Name      string
	Source    string // original .fga source, kept for round-tripping
	JSON      []byte // the serialized OpenFGA authorization-model JSON
	CreatedAt time.Time
}

// Store persists and retrieves compiled models.
type Store interface {
	// Put saves a model and returns its assigned ID.
	Put(ctx context.Context, m *Model) (string, error)
	// Get retrieves a model by ID.
	Get(ctx context.Context, id string) (*Model, error)
	// GetByName retrieves the most recently stored model with the given name.
	GetByName(ctx context.Context, name string) (*Model, error)
	// List returns up to limit models ordered by most recently created,
	// skipping offset rows, along with the total number of stored models.
	List(ctx context.Context, limit, offset int) ([]*Model, int, error)
	// Close releases any underlying connection.
	Close() error
}
