package riskmatrix

import "errors"

// ErrInvalidInput marks a request the caller must fix.
var ErrInvalidInput = errors.New("invalid input")

const (
	defaultRiskOwner     = "Owner"
	defaultControlStatus = "Not Implemented"
	defaultTickets       = "None"
)

// RiskRequest asks for the risks relevant to a summary.
type RiskRequest struct {
	SessionID string `json:"session_id"`
	ProjectID string `json:"project_id,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// RiskItem is one risk row of an assessment.
type RiskItem struct {
	RiskID           string `json:"risk_id"`
	RiskAssessmentID string `json:"risk_assessment_id"`
	RiskName         string `json:"risk_name"`
	RiskOwner        string `json:"risk_owner"`
	Severity         int    `json:"severity"`
	Justification    string `json:"justification"`
	Mitigation       string `json:"mitigation"`
	TargetDate       string `json:"target_date"`
}

// RiskResponse is the risk table for one session.
type RiskResponse struct {
	SessionID        string     `json:"session_id"`
	ProjectID        string     `json:"project_id,omitempty"`
	RiskAssessmentID string     `json:"risk_assessment_id"`
	ParsedRisks      []RiskItem `json:"parsed_risks"`
}

// ControlsRequest asks for the controls mitigating an assessment's risks.
type ControlsRequest struct {
	SessionID        string   `json:"session_id"`
	ProjectID        string   `json:"project_id,omitempty"`
	RiskAssessmentID string   `json:"risk_assessment_id"`
	RiskIDs          []string `json:"risk_ids,omitempty"`
}

// ControlItem is one control row of an assessment.
type ControlItem struct {
	ControlID    string   `json:"control_id"`
	Code         string   `json:"code"`
	Section      string   `json:"section"`
	Control      string   `json:"control"`
	Requirements string   `json:"requirements"`
	Status       string   `json:"status"`
	Tickets      string   `json:"tickets"`
	RelatedRisks []string `json:"relatedRisks"`
}

// ControlsResponse is the control table for one session.
type ControlsResponse struct {
	SessionID        string        `json:"session_id"`
	ProjectID        string        `json:"project_id,omitempty"`
	RiskAssessmentID string        `json:"risk_assessment_id"`
	ParsedControls   []ControlItem `json:"parsed_controls"`
}

// RiskIDs returns the ids of the parsed risks in order.
func (r RiskResponse) RiskIDs() []string {
	ids := make([]string, 0, len(r.ParsedRisks))
	for _, item := range r.ParsedRisks {
		ids = append(ids, item.RiskID)
	}
	return ids
}
