package governance

import (
	"fmt"
	"reflect"
	"testing"
)

func TestRecommendFrameworkOrderThenControls(t *testing.T) {
	scores := map[Framework]float64{FrameworkEU: 69.99, FrameworkNIST: 70, FrameworkISO: 10}
	controls := ControlSet{
		{Key: "b", Description: "Bias monitoring"},
		{Key: "a", Description: "Audit trail", Evidence: true},
		{Key: "c", Description: "Change board"},
	}
	got := Recommend(DefaultFrameworks, scores, controls)
	want := []string{
		RemediationFor(FrameworkEU),
		RemediationFor(FrameworkISO),
		"Implement control: Bias monitoring",
		"Implement control: Change board",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRecommendCapsAtEight(t *testing.T) {
	controls := make(ControlSet, 0, 20)
	for i := 0; i < 20; i++ {
		controls = append(controls, Control{Key: fmt.Sprintf("c%d", i), Description: fmt.Sprintf("Control %d", i)})
	}
	got := Recommend(DefaultFrameworks, map[Framework]float64{}, controls)
	if len(got) != MaxRecommendations {
		t.Fatalf("expected %d recommendations, got %d", MaxRecommendations, len(got))
	}
	if got[3] != "Implement control: Control 0" {
		t.Fatalf("expected control recommendations after the three framework ones, got %q", got[3])
	}
}

func TestRecommendKeepsDuplicateControlsButAnalysisDedupes(t *testing.T) {
	controls := make(ControlSet, 0, 9)
	for i := 0; i < 9; i++ {
		controls = append(controls, Control{
			Key:         fmt.Sprintf("dup_%d", i),
			Description: "Same control",
			Weights:     Weights{FrameworkEU: 1},
		})
	}
	scores := map[Framework]float64{FrameworkEU: 100, FrameworkNIST: 100, FrameworkISO: 100}

	recs := Recommend(DefaultFrameworks, scores, controls)
	if len(recs) != 8 {
		t.Fatalf("expected 8 recommendations, got %d", len(recs))
	}
	for _, r := range recs {
		if r != "Implement control: Same control" {
			t.Fatalf("unexpected recommendation %q", r)
		}
	}

	analysis := Analyze(DefaultFrameworks, nil, controls, map[string]int{}, Citations{})
	if got := analysis[FrameworkEU].Missing; len(got) != 1 || got[0] != "Missing Control: 'Same control'" {
		t.Fatalf("expected a single deduplicated missing entry, got %q", got)
	}
}

func TestRemediationForUnknownFramework(t *testing.T) {
	if got := RemediationFor(Framework("SOC2")); got != "Close compliance gaps for SOC2." {
		t.Fatalf("unexpected remediation %q", got)
	}
}
