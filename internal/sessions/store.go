package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("session not found")
	// ErrMissingID is returned when a session without an id is stored.
	ErrMissingID = errors.New("session id is required")
)

// Session is a stored questionnaire result keyed by session id.
type Session struct {
	ID        string
	Payload   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt *time.Time
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Set(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
}

func expired(s Session, now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
