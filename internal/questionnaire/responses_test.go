package questionnaire

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"governance-backend/internal/riskmatrix"
)

func TestParseResponsesKeepsOrderAndAcceptsString(t *testing.T) {
	obj := `{"projectName":"Fraud scoring","requestOwner":{"name":"Ana","country":"Spain"},"region":["EU","UK"],"custom_q":"yes","empty":""}`
	encoded, _ := json.Marshal(obj)

	for name, raw := range map[string]string{"object": obj, "string": string(encoded)} {
		t.Run(name, func(t *testing.T) {
			rs, err := ParseResponses(json.RawMessage(raw))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			got := rs.Summary(BaselineLabels())
			want := "Project Name: Fraud scoring\n" +
				"Name and country: Ana from Spain\n" +
				"Geographic regions: EU, UK\n" +
				"Question (custom_q): yes\n"
			if got != want {
				t.Fatalf("expected summary %q, got %q", want, got)
			}
		})
	}
}

func TestParseResponsesRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{``, `null`, `[1,2]`, `"not json"`, `42`, `{"a":`} {
		if _, err := ParseResponses(json.RawMessage(raw)); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%q: expected ErrInvalidInput, got %v", raw, err)
		}
	}
}

func TestResponsesAnswersFlatten(t *testing.T) {
	rs, err := ParseResponses(json.RawMessage(`{"q1":["a","b"],"q2":3,"q3":true}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	answers := rs.Answers()
	if answers["q1"] != "a, b" || answers["q2"] != "3" || answers["q3"] != "true" {
		t.Fatalf("unexpected answers %v", answers)
	}
	out, err := json.Marshal(rs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"q1":["a","b"],"q2":3,"q3":true}` {
		t.Fatalf("expected order-preserving encode, got %s", out)
	}
}

func TestLoadLabelsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	if err := os.WriteFile(path, []byte("purpose: Business goal\ndataSources: Data sources\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	labels, err := LoadLabels(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if labels.For("purpose") != "Business goal" || labels.For("dataSources") != "Data sources" {
		t.Fatalf("expected overlay labels, got %v", labels)
	}
	if labels.For("region") != "Geographic regions" {
		t.Fatalf("expected baseline label kept")
	}
	if _, err := LoadLabels(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestGovernanceControlsKeyedByCode(t *testing.T) {
	items := []riskmatrix.ControlItem{
		{Code: "AC-1", Requirements: "first", Status: "Not Implemented"},
		{Code: "", Requirements: "skipped"},
		{Code: "AU-6", Control: "Audit review", Status: "In Progress"},
		{Code: "AC-1", Requirements: "replaced", Status: "Compliant"},
	}
	cs := GovernanceControls(items)
	if len(cs) != 2 {
		t.Fatalf("expected 2 controls, got %d", len(cs))
	}
	if cs[0].Key != "AC-1" || cs[0].Description != "replaced" || !cs[0].Evidence {
		t.Fatalf("unexpected first control %+v", cs[0])
	}
	if cs[1].Description != "Audit review" || !cs[1].Evidence || cs[1].Weights["ISO"] != 1 {
		t.Fatalf("unexpected second control %+v", cs[1])
	}
}
