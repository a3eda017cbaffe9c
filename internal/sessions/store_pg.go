package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGStore implements Store using the questionnaire_sessions table.
type PGStore struct {
	DB  *sql.DB
	TTL time.Duration
	Now func() time.Time
}

func (p *PGStore) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *PGStore) Get(ctx context.Context, id string) (Session, error) {
	const query = `
SELECT session_id, payload, created_at, updated_at, expires_at
FROM questionnaire_sessions
WHERE session_id = $1 AND (expires_at IS NULL OR expires_at > $2)`
	var s Session
	var payload []byte
	var expiresAt sql.NullTime
	err := p.DB.QueryRowContext(ctx, query, id, p.now()).Scan(&s.ID, &payload, &s.CreatedAt, &s.UpdatedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	s.Payload = payload
	if expiresAt.Valid {
		s.ExpiresAt = &expiresAt.Time
	}
	return s, nil
}

func (p *PGStore) Set(ctx context.Context, s Session) error {
	const query = `
INSERT INTO questionnaire_sessions (session_id, payload, created_at, updated_at, expires_at)
VALUES ($1, $2, $3, $3, $4)
ON CONFLICT (session_id) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`
	if s.ID == "" {
		return ErrMissingID
	}
	now := p.now()
	var expiresAt sql.NullTime
	switch {
	case s.ExpiresAt != nil:
		expiresAt = sql.NullTime{Time: *s.ExpiresAt, Valid: true}
	case p.TTL > 0:
		expiresAt = sql.NullTime{Time: now.Add(p.TTL), Valid: true}
	}
	_, err := p.DB.ExecContext(ctx, query, s.ID, []byte(s.Payload), now, expiresAt)
	return err
}

func (p *PGStore) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM questionnaire_sessions WHERE session_id = $1`
	res, err := p.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
