package assessments

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"governance-backend/internal/events"
	"governance-backend/internal/governance"
	"governance-backend/internal/shared/telemetry"
)

type recordedEvent struct {
	subject string
	data    any
}

type recordingPublisher struct {
	events []recordedEvent
}

func (r *recordingPublisher) Publish(subject string, data any) error {
	r.events = append(r.events, recordedEvent{subject: subject, data: data})
	return nil
}

func (r *recordingPublisher) Close() {}

type failingRepo struct{ *MemoryRepo }

func (failingRepo) Create(ctx context.Context, rec ScoreRecord) error {
	return errors.New("db down")
}

func constantAssessor(maturity int) *governance.Assessor {
	src := governance.RatingSourceFunc(func(ctx context.Context, in governance.RateInput) ([]governance.AnswerRating, error) {
		return []governance.AnswerRating{{Maturity: maturity, Rationale: "fixed"}}, nil
	})
	return governance.NewAssessor(governance.NewScorer(src, time.Second), nil, governance.DefaultCitations())
}

func workedRequest() governance.Request {
	return governance.Request{
		Questions: []governance.Question{{ID: "Q1", Text: "First", Weights: governance.Weights{
			governance.FrameworkEU: 1, governance.FrameworkNIST: 1,
		}}},
		Answers:  governance.Answers{"Q1": "Partly."},
		Controls: governance.ControlSet{{Key: "C1", Description: "Control one", Weights: governance.Weights{governance.FrameworkEU: 1}}},
	}
}

func TestServiceAssessStoresAndPublishes(t *testing.T) {
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	now := time.Date(2026, time.May, 4, 9, 0, 0, 0, time.UTC)
	pub := &recordingPublisher{}
	repo := NewMemoryRepo()
	svc := &Service{Assessor: constantAssessor(2), Repo: repo, Events: pub, Now: func() time.Time { return now }}

	out, err := svc.Assess(context.Background(), "guest:g1", "proj-1", workedRequest())
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if out.Record == nil || out.Record.Overall != 33.33 || out.Record.TotalControls != 1 {
		t.Fatalf("unexpected record %+v", out.Record)
	}
	latest, err := svc.Latest(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != out.ID || latest.Scores[governance.FrameworkEU] != 50 || !latest.AssessedAt.Equal(now) {
		t.Fatalf("unexpected latest %+v", latest)
	}
	if len(pub.events) != 1 || pub.events[0].subject != events.SubjectAssessmentCompleted {
		t.Fatalf("expected one completion event, got %+v", pub.events)
	}
	evt := pub.events[0].data.(events.AssessmentCompleted)
	if evt.User == "guest:g1" || evt.User == "" {
		t.Fatalf("expected pseudonymised user, got %q", evt.User)
	}
}

func TestServiceAssessWithoutProjectSkipsStorage(t *testing.T) {
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	repo := NewMemoryRepo()
	svc := &Service{Assessor: constantAssessor(4), Repo: repo}
	out, err := svc.Assess(context.Background(), "u", "  ", workedRequest())
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if out.Record != nil {
		t.Fatalf("expected no record without project id")
	}
}

func TestServiceStorageFailureDoesNotFailAssessment(t *testing.T) {
	restore := telemetry.SetOutput(io.Discard)
	defer restore()

	svc := &Service{Assessor: constantAssessor(1), Repo: failingRepo{NewMemoryRepo()}}
	out, err := svc.Assess(context.Background(), "u", "proj", workedRequest())
	if err != nil {
		t.Fatalf("expected success despite storage failure, got %v", err)
	}
	if out.Record != nil {
		t.Fatalf("expected record to be absent after storage failure")
	}
}

func TestServiceAssessInvalidInput(t *testing.T) {
	svc := &Service{Assessor: constantAssessor(1), Repo: NewMemoryRepo()}
	_, err := svc.Assess(context.Background(), "u", "p", governance.Request{Questions: []governance.Question{{ID: ""}}})
	if !errors.Is(err, governance.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestServiceHistoryLimits(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		_ = repo.Create(context.Background(), ScoreRecord{
			ID:         string(rune('a' + i)),
			ProjectID:  "p",
			AssessedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	svc := &Service{Repo: repo}

	items, err := svc.History(context.Background(), "p", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("expected default limit 10, got %d", len(items))
	}
	if items[0].ID != string(rune('a'+14)) {
		t.Fatalf("expected newest first, got %q", items[0].ID)
	}
	if _, err := svc.Latest(context.Background(), "none"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.History(context.Background(), "", 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
