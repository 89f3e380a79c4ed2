package session

import (
	"context"
	"time"
)

// Session represents an authenticated user session.
// It stores only identity pointers, not provider profiles.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`  // references users.id
	Provider  string    `json:"provider"` // strategy that authenticated the user
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"` // absolute expiry time
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) when the session does not exist.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
