package questionnaire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"governance-backend/internal/assessments"
	"governance-backend/internal/catalog"
	"governance-backend/internal/events"
	"governance-backend/internal/governance"
	"governance-backend/internal/riskmatrix"
	"governance-backend/internal/sessions"
	"governance-backend/internal/shared/metrics"
	"governance-backend/internal/shared/telemetry"
)

// Service turns questionnaire submissions into risk, control and governance results.
type Service struct {
	Matrix      *riskmatrix.Service
	Assessments *assessments.Service
	Sessions    sessions.Store
	Events      events.Publisher
	Labels      Labels
	NewID       func() string
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Process runs one submission end to end and stores the result under a new session id.
func (s *Service) Process(ctx context.Context, userID string, req ProcessRequest) (Result, error) {
	res, err := s.process(ctx, userID, req)
	switch {
	case err == nil:
		metrics.IncQuestionnaire("success")
	case errors.Is(err, ErrInvalidInput):
		metrics.IncQuestionnaire("invalid")
	default:
		metrics.IncQuestionnaire("error")
	}
	return res, err
}

func (s *Service) process(ctx context.Context, userID string, req ProcessRequest) (Result, error) {
	responses, err := ParseResponses(req.QuestionnaireResponses)
	if err != nil {
		return Result{}, err
	}
	labels := s.Labels
	if labels == nil {
		labels = BaselineLabels()
	}

	sessionID := s.newID()
	projectID := strings.TrimSpace(req.ProjectID)
	family := catalog.ParseFamily(req.UseCaseType)
	summary := responses.Summary(labels)

	risks, err := s.Matrix.Risks(family, riskmatrix.RiskRequest{
		SessionID: sessionID,
		ProjectID: projectID,
		Summary:   summary,
	})
	if err != nil {
		return Result{}, fmt.Errorf("risk matrix: %w", err)
	}
	controls, err := s.Matrix.Controls(family, riskmatrix.ControlsRequest{
		SessionID:        sessionID,
		ProjectID:        projectID,
		RiskAssessmentID: risks.RiskAssessmentID,
		RiskIDs:          risks.RiskIDs(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("control matrix: %w", err)
	}

	res := Result{
		SessionID:        sessionID,
		RiskAssessmentID: risks.RiskAssessmentID,
		ProjectID:        projectID,
		Family:           family,
		Summary:          summary,
		RisksCount:       len(risks.ParsedRisks),
		Risks:            risks.ParsedRisks,
		ControlsCount:    len(controls.ParsedControls),
		Controls:         controls.ParsedControls,
		ProcessedAt:      s.now(),
	}

	if len(req.Questions) > 0 && s.Assessments != nil {
		gov, err := s.assess(ctx, userID, projectID, req.Questions, responses, controls.ParsedControls)
		if err != nil {
			return Result{}, err
		}
		res.Governance = gov
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return Result{}, fmt.Errorf("encode session: %w", err)
	}
	if err := s.Sessions.Set(ctx, sessions.Session{ID: sessionID, Payload: payload}); err != nil {
		return Result{}, fmt.Errorf("store session: %w", err)
	}

	events.Emit(s.Events, events.SubjectQuestionnaireProcessed, events.QuestionnaireProcessed{
		SessionID:        sessionID,
		RiskAssessmentID: res.RiskAssessmentID,
		ProjectID:        projectID,
		Family:           string(family),
		RisksCount:       res.RisksCount,
		ControlsCount:    res.ControlsCount,
		Governance:       res.Governance != nil && res.Governance.Error == "",
		ProcessedAt:      res.ProcessedAt,
	})
	telemetry.Info("questionnaire.processed", map[string]any{
		"session_id":         sessionID,
		"risk_assessment_id": res.RiskAssessmentID,
		"project_id":         projectID,
		"family":             string(family),
		"risks":              res.RisksCount,
		"controls":           res.ControlsCount,
	})
	return res, nil
}

// assess runs the governance pipeline. Invalid questions fail the submission; any
// other failure is reported inside the result.
func (s *Service) assess(ctx context.Context, userID, projectID string, questions []governance.Question, responses Responses, items []riskmatrix.ControlItem) (*GovernanceResult, error) {
	out, err := s.Assessments.Assess(ctx, userID, projectID, governance.Request{
		Questions: withDefaultWeights(questions),
		Answers:   responses.Answers(),
		Controls:  GovernanceControls(items),
	})
	if err != nil {
		if errors.Is(err, governance.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		telemetry.Error("questionnaire.governance_failed", map[string]any{
			"project_id": projectID,
			"error":      err.Error(),
		})
		return &GovernanceResult{Error: GovernanceFailure}, nil
	}
	report := out.Report
	return &GovernanceResult{AssessmentID: out.ID, Report: &report}, nil
}

// Status returns the stored result for a session.
func (s *Service) Status(ctx context.Context, sessionID string) (json.RawMessage, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidInput)
	}
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess.Payload, nil
}

// Delete removes a stored session.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: sessionId is required", ErrInvalidInput)
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// uniformWeights is applied to questions and controls that carry no weights.
func uniformWeights() governance.Weights {
	w := make(governance.Weights, len(governance.DefaultFrameworks))
	for _, f := range governance.DefaultFrameworks {
		w[f] = 1.0
	}
	return w
}

func withDefaultWeights(questions []governance.Question) []governance.Question {
	out := make([]governance.Question, len(questions))
	for i, q := range questions {
		if len(q.Weights) == 0 {
			q.Weights = uniformWeights()
		}
		out[i] = q
	}
	return out
}

// GovernanceControls converts matrix controls into a control set keyed by code.
// A repeated code replaces the earlier entry in place.
func GovernanceControls(items []riskmatrix.ControlItem) governance.ControlSet {
	index := map[string]int{}
	out := governance.ControlSet{}
	for _, item := range items {
		if item.Code == "" {
			continue
		}
		desc := item.Requirements
		if desc == "" {
			desc = item.Control
		}
		if desc == "" {
			desc = "N/A"
		}
		ctrl := governance.Control{
			Key:         item.Code,
			Description: desc,
			Weights:     uniformWeights(),
			Evidence:    implementedStatus(item.Status),
		}
		if i, ok := index[item.Code]; ok {
			out[i] = ctrl
			continue
		}
		index[item.Code] = len(out)
		out = append(out, ctrl)
	}
	return out
}

func implementedStatus(status string) bool {
	switch status {
	case "Compliant", "Implemented", "In Progress":
		return true
	}
	return false
}
