package events

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"governance-backend/internal/shared/telemetry"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(subject string, data any) error {
	f.calls++
	return errors.New("bus down")
}

func (f *failingPublisher) Close() {}

func TestEmitLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	p := &failingPublisher{}
	Emit(p, SubjectAssessmentCompleted, AssessmentCompleted{AssessmentID: "a1"})

	if p.calls != 1 {
		t.Fatalf("expected one publish attempt, got %d", p.calls)
	}
	if !strings.Contains(buf.String(), "events.publish_failed") || !strings.Contains(buf.String(), SubjectAssessmentCompleted) {
		t.Fatalf("expected failure log, got %q", buf.String())
	}
}

func TestEmitNilAndNoop(t *testing.T) {
	Emit(nil, SubjectQuestionnaireProcessed, nil)
	Emit(Noop{}, SubjectQuestionnaireProcessed, QuestionnaireProcessed{SessionID: "s"})
	Noop{}.Close()
}

func TestNATSPublisherRejectsUnencodableData(t *testing.T) {
	p := &NATSPublisher{}
	if err := p.Publish("x", make(chan int)); err == nil {
		t.Fatalf("expected marshal error")
	}
	p.Close()
}
