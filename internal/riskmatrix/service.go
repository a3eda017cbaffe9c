package riskmatrix

import (
	"fmt"
	"strings"

	"governance-backend/internal/catalog"
)

// Service builds risk and control tables from the reference catalog.
type Service struct {
	Catalog *catalog.Catalog
}

// NewService constructs a Service.
func NewService(c *catalog.Catalog) *Service {
	return &Service{Catalog: c}
}

func (s *Service) tables(family catalog.Family) (catalog.Tables, error) {
	t, ok := s.Catalog.Tables(family)
	if !ok {
		return catalog.Tables{}, fmt.Errorf("%w: unknown family %q", ErrInvalidInput, family)
	}
	return t, nil
}

// Risks selects the catalog risks relevant to the request summary.
func (s *Service) Risks(family catalog.Family, req RiskRequest) (RiskResponse, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		return RiskResponse{}, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	if req.Limit < 0 {
		return RiskResponse{}, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	}
	t, err := s.tables(family)
	if err != nil {
		return RiskResponse{}, err
	}

	raid := catalog.AssessmentID(req.SessionID)
	selected := catalog.SelectRelevant(t, req.Summary, req.Limit)
	items := make([]RiskItem, 0, len(selected))
	for _, r := range selected {
		if r.ID == "" {
			continue
		}
		items = append(items, RiskItem{
			RiskID:           r.ID,
			RiskAssessmentID: raid,
			RiskName:         r.Name,
			RiskOwner:        defaultRiskOwner,
			Severity:         catalog.SeverityLevel(r.Severity),
			Mitigation:       r.Mitigation,
		})
	}
	return RiskResponse{
		SessionID:        req.SessionID,
		ProjectID:        req.ProjectID,
		RiskAssessmentID: raid,
		ParsedRisks:      items,
	}, nil
}

// Controls lists every catalog control, each linked to one of the request's risks.
func (s *Service) Controls(family catalog.Family, req ControlsRequest) (ControlsResponse, error) {
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.RiskAssessmentID = strings.TrimSpace(req.RiskAssessmentID)
	if req.SessionID == "" {
		return ControlsResponse{}, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	if req.RiskAssessmentID == "" {
		return ControlsResponse{}, fmt.Errorf("%w: risk_assessment_id is required", ErrInvalidInput)
	}
	t, err := s.tables(family)
	if err != nil {
		return ControlsResponse{}, err
	}

	templates := make([]catalog.ControlTemplate, 0, len(t.Controls))
	for _, ct := range t.Controls {
		if ct.Code != "" {
			templates = append(templates, ct)
		}
	}
	related := catalog.AssignRelated(len(templates), req.RiskIDs, req.RiskAssessmentID)
	items := make([]ControlItem, 0, len(templates))
	for i, ct := range templates {
		items = append(items, ControlItem{
			ControlID:    fmt.Sprintf("CTRL-%s-%03d", req.RiskAssessmentID, ct.Row),
			Code:         ct.Code,
			Section:      ct.Section,
			Control:      ct.Title,
			Requirements: ct.Requirements,
			Status:       defaultControlStatus,
			Tickets:      defaultTickets,
			RelatedRisks: related[i],
		})
	}
	return ControlsResponse{
		SessionID:        req.SessionID,
		ProjectID:        req.ProjectID,
		RiskAssessmentID: req.RiskAssessmentID,
		ParsedControls:   items,
	}, nil
}
