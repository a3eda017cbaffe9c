package assessments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"governance-backend/internal/events"
	"governance-backend/internal/governance"
	"governance-backend/internal/shared/metrics"
	"governance-backend/internal/shared/telemetry"
	"governance-backend/internal/shared/util"
)

// Service runs assessments and keeps per-project score history.
type Service struct {
	Assessor *governance.Assessor
	Repo     Repo
	Events   events.Publisher
	Now      func() time.Time
}

// Outcome is the result of one assessment run.
type Outcome struct {
	ID     string
	Report governance.Report
	Record *ScoreRecord
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Assess scores the request. When projectID is set the rounded scores are stored;
// a storage failure is logged and does not fail the assessment.
func (s *Service) Assess(ctx context.Context, userID, projectID string, req governance.Request) (Outcome, error) {
	report, err := s.Assessor.Assess(ctx, req)
	if err != nil {
		if errors.Is(err, governance.ErrInvalidInput) {
			metrics.IncAssessment("invalid")
		} else {
			metrics.IncAssessment("error")
		}
		return Outcome{}, err
	}
	metrics.IncAssessment("success")

	out := Outcome{ID: uuid.NewString(), Report: report}
	assessedAt := s.now()
	projectID = strings.TrimSpace(projectID)
	if projectID != "" && s.Repo != nil {
		rec := ScoreRecord{
			ID:                  out.ID,
			ProjectID:           projectID,
			UserID:              userID,
			Scores:              copyScores(report.Scores),
			Overall:             report.Overall,
			ImplementedControls: report.ImplementedControls,
			TotalControls:       report.TotalControls,
			AssessedAt:          assessedAt,
		}
		if err := s.Repo.Create(ctx, rec); err != nil {
			telemetry.Error("assessment.store_failed", map[string]any{
				"assessment_id": out.ID,
				"project_id":    projectID,
				"error":         err.Error(),
			})
		} else {
			out.Record = &rec
		}
	}

	events.Emit(s.Events, events.SubjectAssessmentCompleted, events.AssessmentCompleted{
		AssessmentID:        out.ID,
		ProjectID:           projectID,
		User:                util.Pseudonym(userID),
		Scores:              frameworkKeys(report.Scores),
		Overall:             report.Overall,
		ImplementedControls: report.ImplementedControls,
		TotalControls:       report.TotalControls,
		Recommendations:     len(report.Recommendations),
		AssessedAt:          assessedAt,
	})
	telemetry.Info("assessment.completed", map[string]any{
		"assessment_id": out.ID,
		"project_id":    projectID,
		"questions":     len(req.Questions),
		"controls":      len(req.Controls),
		"overall":       report.Overall,
	})
	return out, nil
}

// Latest returns the newest score record for a project.
func (s *Service) Latest(ctx context.Context, projectID string) (ScoreRecord, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return ScoreRecord{}, fmt.Errorf("%w: projectId is required", ErrInvalidInput)
	}
	return s.Repo.Latest(ctx, projectID)
}

// History returns up to limit records for a project, newest first.
func (s *Service) History(ctx context.Context, projectID string, limit int) ([]ScoreRecord, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("%w: projectId is required", ErrInvalidInput)
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return s.Repo.History(ctx, projectID, limit)
}

func copyScores(in map[governance.Framework]float64) map[governance.Framework]float64 {
	out := make(map[governance.Framework]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func frameworkKeys(in map[governance.Framework]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}
