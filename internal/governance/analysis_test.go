package governance

import (
	"reflect"
	"strings"
	"testing"
)

func TestAnalyzeClassifiesQuestionsAndControls(t *testing.T) {
	questions := []Question{
		{ID: "risk_classification", Text: "Is the system risk-classified?", Weights: Weights{FrameworkEU: 1, FrameworkNIST: 0.6}},
		{ID: "q_docs", Text: "Are docs maintained?", Tags: []string{"docs_traceability"}, Weights: Weights{FrameworkEU: 0.8, FrameworkISO: 0.6}},
		{ID: "q_mid", Text: "Mid weight", Weights: Weights{FrameworkEU: 0.6}},
	}
	controls := ControlSet{
		{Key: "incident_response", Description: "Incident runbook", Weights: Weights{FrameworkEU: 0.9, FrameworkNIST: 0.5}},
		{Key: "human_oversight_design", Description: "HITL design", Weights: Weights{FrameworkISO: 0.6}, Evidence: true},
	}
	perQuestion := map[string]int{"risk_classification": 3, "q_docs": 1, "q_mid": 0}

	got := Analyze(DefaultFrameworks, questions, controls, perQuestion, DefaultCitations())

	eu := got[FrameworkEU]
	wantEUContrib := []string{"Addressed: 'Is the system risk-classified?' (Maturity: 3/4)"}
	wantEUMissing := []string{
		"Gap: 'Are docs maintained?' (Maturity: 1/4) (Ref: EU Art. 11)",
		"Missing Control: 'Incident runbook' (Ref: EU Art. 62)",
	}
	if !reflect.DeepEqual(eu.Contributing, wantEUContrib) {
		t.Fatalf("EU contributing: expected %q, got %q", wantEUContrib, eu.Contributing)
	}
	if !reflect.DeepEqual(eu.Missing, wantEUMissing) {
		t.Fatalf("EU missing: expected %q, got %q", wantEUMissing, eu.Missing)
	}

	nist := got[FrameworkNIST]
	if len(nist.Missing) != 0 {
		t.Fatalf("NIST: weight 0.5 control must not be listed, got %q", nist.Missing)
	}
	if len(nist.Contributing) != 1 {
		t.Fatalf("NIST: expected one contributing entry, got %q", nist.Contributing)
	}

	iso := got[FrameworkISO]
	if !reflect.DeepEqual(iso.Contributing, []string{"Implemented Control: 'HITL design'"}) {
		t.Fatalf("ISO contributing: got %q", iso.Contributing)
	}
	if len(iso.Missing) != 0 {
		t.Fatalf("ISO: weight 0.6 gap is below the 0.7 threshold, got %q", iso.Missing)
	}
}

func TestAnalyzeSortedAndEveryFrameworkPresent(t *testing.T) {
	controls := ControlSet{
		{Key: "z", Description: "Zeta", Weights: Weights{FrameworkNIST: 1}},
		{Key: "a", Description: "Alpha", Weights: Weights{FrameworkNIST: 1}},
	}
	got := Analyze(DefaultFrameworks, nil, controls, nil, Citations{})
	if len(got) != 3 {
		t.Fatalf("expected all frameworks present, got %d", len(got))
	}
	want := []string{"Missing Control: 'Alpha'", "Missing Control: 'Zeta'"}
	if !reflect.DeepEqual(got[FrameworkNIST].Missing, want) {
		t.Fatalf("expected sorted %q, got %q", want, got[FrameworkNIST].Missing)
	}
	if got[FrameworkEU].Missing == nil || got[FrameworkEU].Contributing == nil {
		t.Fatalf("expected empty lists rather than nil")
	}
}

func TestCitationLookupIgnoresQuestionText(t *testing.T) {
	c := DefaultCitations()
	q := Question{ID: "custom", Text: "leadership", Tags: []string{"none", "leadership"}}
	if got := c.ForQuestion(q, FrameworkISO); got != "Cl. 5.1" {
		t.Fatalf("expected tag lookup, got %q", got)
	}
	q = Question{ID: "custom", Text: "risk_classification"}
	if got := c.ForQuestion(q, FrameworkEU); got != "" {
		t.Fatalf("expected text not to be used as a key, got %q", got)
	}
}

func TestParseCitationsOverlay(t *testing.T) {
	doc := `
questions:
  leadership:
    EU: "Art. 4"
controls:
  data_governance:
    ISO: "Cl. 7.1"
`
	overlay, err := ParseCitations(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	merged := DefaultCitations().Merge(overlay)
	if got := merged.ForQuestion(Question{ID: "leadership"}, FrameworkEU); got != "Art. 4" {
		t.Fatalf("expected overlay EU ref, got %q", got)
	}
	if got := merged.ForQuestion(Question{ID: "leadership"}, FrameworkISO); got != "Cl. 5.1" {
		t.Fatalf("expected default ISO ref kept, got %q", got)
	}
	if got := merged.ForControl("data_governance", FrameworkISO); got != "Cl. 7.1" {
		t.Fatalf("expected new control ref, got %q", got)
	}
	if got := DefaultCitations().ForQuestion(Question{ID: "leadership"}, FrameworkEU); got != "" {
		t.Fatalf("expected defaults untouched, got %q", got)
	}
}
