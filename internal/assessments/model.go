package assessments

import (
	"errors"
	"time"

	"governance-backend/internal/governance"
)

var (
	// ErrNotFound is returned when a project has no stored scores.
	ErrNotFound = errors.New("scores not found")
	// ErrInvalidInput marks a request the caller must fix.
	ErrInvalidInput = errors.New("invalid input")
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// ScoreRecord is one stored assessment outcome for a project.
type ScoreRecord struct {
	ID                  string                           `json:"id"`
	ProjectID           string                           `json:"projectId"`
	UserID              string                           `json:"-"`
	Scores              map[governance.Framework]float64 `json:"scores"`
	Overall             float64                          `json:"overall"`
	ImplementedControls int                              `json:"implementedControls"`
	TotalControls       int                              `json:"totalControls"`
	AssessedAt          time.Time                        `json:"assessedAt"`
}
