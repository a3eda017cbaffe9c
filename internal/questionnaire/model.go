package questionnaire

import (
	"encoding/json"
	"errors"
	"time"

	"governance-backend/internal/catalog"
	"governance-backend/internal/governance"
	"governance-backend/internal/riskmatrix"
)

var (
	// ErrInvalidInput marks a submission the caller must fix.
	ErrInvalidInput = errors.New("invalid questionnaire")
	// ErrNotFound is returned for unknown or expired sessions.
	ErrNotFound = errors.New("questionnaire session not found")
)

// GovernanceFailure is reported in place of a governance report the pipeline could not produce.
const GovernanceFailure = "Failed to generate governance report."

// ProcessRequest is one questionnaire submission.
type ProcessRequest struct {
	QuestionnaireResponses json.RawMessage       `json:"questionnaireResponses"`
	UseCaseType            string                `json:"useCaseType"`
	ProjectID              string                `json:"projectId,omitempty"`
	Questions              []governance.Question `json:"questions,omitempty"`
}

// GovernanceResult carries the assessment run for a submission, or why it failed.
type GovernanceResult struct {
	AssessmentID string             `json:"assessmentId,omitempty"`
	Report       *governance.Report `json:"report,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// Result is the processed questionnaire, stored as the session payload.
type Result struct {
	SessionID        string                   `json:"sessionId"`
	RiskAssessmentID string                   `json:"riskAssessmentId"`
	ProjectID        string                   `json:"projectId,omitempty"`
	Family           catalog.Family           `json:"family"`
	Summary          string                   `json:"summary"`
	RisksCount       int                      `json:"risksCount"`
	Risks            []riskmatrix.RiskItem    `json:"risks"`
	ControlsCount    int                      `json:"controlsCount"`
	Controls         []riskmatrix.ControlItem `json:"controls"`
	Governance       *GovernanceResult        `json:"governance,omitempty"`
	ProcessedAt      time.Time                `json:"processedAt"`
}
