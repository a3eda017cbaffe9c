package events

import "time"

// AssessmentCompleted is published after a governance assessment succeeds.
type AssessmentCompleted struct {
	AssessmentID        string             `json:"assessment_id"`
	ProjectID           string             `json:"project_id,omitempty"`
	User                string             `json:"user,omitempty"`
	Scores              map[string]float64 `json:"scores"`
	Overall             float64            `json:"overall"`
	ImplementedControls int                `json:"implemented_controls"`
	TotalControls       int                `json:"total_controls"`
	Recommendations     int                `json:"recommendations"`
	AssessedAt          time.Time          `json:"assessed_at"`
}

// QuestionnaireProcessed is published after a questionnaire session is stored.
type QuestionnaireProcessed struct {
	SessionID        string    `json:"session_id"`
	RiskAssessmentID string    `json:"risk_assessment_id"`
	ProjectID        string    `json:"project_id,omitempty"`
	Family           string    `json:"family"`
	RisksCount       int       `json:"risks_count"`
	ControlsCount    int       `json:"controls_count"`
	Governance       bool      `json:"governance"`
	ProcessedAt      time.Time `json:"processed_at"`
}
