package session

import (
	"context"
	"time"
)

// Session is the persisted record of one client connection.
type Session struct {
	ID        string    `json:"id"`
	Transport string    `json:"transport"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// Store persists sessions.
// Implementations must be safe for concurrent use.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, s Session) error

	// Get returns a session.
	// Returns domain.ErrSessionNotFound if it does not exist or has expired.
	Get(ctx context.Context, id string) (Session, error)

	// Touch refreshes LastSeen and the expiry of a session.
	// Returns domain.ErrSessionNotFound if it does not exist or has expired.
	Touch(ctx context.Context, id string, at time.Time) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of live sessions.
	List(ctx context.Context) ([]string, error)
}
