// Package store holds live interview sessions between requests.
//
// Implementations serialize Update calls per session id, which is the locking the
// planner core expects its callers to provide.
package store

import (
	"context"
	"errors"

	"github.com/jonathan/interview-planner/internal/planner"
)

// ErrNotFound is returned for ids that were never created, were deleted, or expired
var ErrNotFound = errors.New("session not found")

// ErrExists is returned by Create when the id is already taken
var ErrExists = errors.New("session already exists")

// Store is a keyed registry of live sessions
type Store interface {
	// Create stores a new session under its ID.
	Create(ctx context.Context, s *planner.Session) error
	// Get returns a copy of the session.
	Get(ctx context.Context, id string) (*planner.Session, error)
	// Update runs fn against the session while holding that session's lock and saves
	// the result. If fn returns an error nothing is saved.
	Update(ctx context.Context, id string, fn func(*planner.Session) error) error
	// Take runs fn against the session while holding that session's lock and removes
	// the session when fn succeeds. If fn returns an error the session is kept unchanged.
	// Operations queued behind Take see ErrNotFound once it removes the session.
	Take(ctx context.Context, id string, fn func(*planner.Session) error) error
	// Len reports how many sessions are live.
	Len(ctx context.Context) (int, error)
	// Close releases resources held by the store.
	Close() error
}
