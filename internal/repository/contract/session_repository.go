package contract

import (
	"context"
	"errors"

	"github.com/tigernone/corpusqa/pkg/store"
)

// ErrSessionNotFound is returned when the session id is unknown or the
// session has expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExists is returned by Create when the id is already in use.
var ErrSessionExists = errors.New("session already exists")

// AdvanceFunc receives a private copy of the current session state and
// returns the state to commit. Returning an error aborts the advance and
// leaves the stored state untouched.
type AdvanceFunc func(state *store.SessionState) (*store.SessionState, error)

// SessionRepository stores per-question retrieval sessions. Implementations
// serialize operations on the same session id; operations on distinct
// sessions may run concurrently.
type SessionRepository interface {
	// Create registers a new session. The id must not already exist.
	Create(ctx context.Context, state *store.SessionState) error

	// Get returns a copy of the session state and refreshes its activity
	// timestamp. Expired sessions are treated as not found.
	Get(ctx context.Context, id string) (*store.SessionState, error)

	// Advance runs fn under the session's lock and commits the state fn
	// returns. All-or-nothing: on error nothing is committed.
	Advance(ctx context.Context, id string, fn AdvanceFunc) (*store.SessionState, error)

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// EvictExpired removes every session idle longer than the configured
	// timeout and reports how many were removed.
	EvictExpired(ctx context.Context) (int, error)

	// ClearAll drops every session, typically on corpus replacement.
	ClearAll(ctx context.Context) error

	// List returns copies of all live sessions.
	List(ctx context.Context) ([]*store.SessionState, error)

	// ActiveCount reports the number of live sessions.
	ActiveCount(ctx context.Context) (int, error)
}
