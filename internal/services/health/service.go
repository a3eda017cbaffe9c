package health

import (
	"context"
	"database/sql"
	"time"

	"governance-backend/internal/shared/storage/db"
)

// Service reports liveness and database reachability.
type Service struct {
	DB      *sql.DB
	Timeout time.Duration
}

// NewService constructs a health service. A nil database reports as disabled.
func NewService(database *sql.DB) *Service {
	return &Service{DB: database, Timeout: 2 * time.Second}
}

// Status returns the health payload and whether every dependency is up.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	payload := map[string]any{"ok": true, "database": "disabled"}
	if s == nil || s.DB == nil {
		return payload, true
	}
	if err := db.Ping(ctx, s.DB, s.Timeout); err != nil {
		payload["ok"] = false
		payload["database"] = "down"
		return payload, false
	}
	payload["database"] = "ok"
	return payload, true
}
