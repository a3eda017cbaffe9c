package governance

import "fmt"

const (
	// LowScoreThreshold marks a framework as needing a program-level recommendation.
	LowScoreThreshold = 70.0
	// MaxRecommendations caps the recommendation list.
	MaxRecommendations = 8
)

var frameworkRemediation = map[Framework]string{
	FrameworkEU:   "Establish EU AI Act risk classification and technical documentation (model/data lineage, decision logs); perform DPIA if applicable.",
	FrameworkNIST: "Operationalize NIST AI RMF Govern/Map/Measure/Manage with metrics for bias, robustness, and incident response.",
	FrameworkISO:  "Stand up an AI Management System (AIMS) per ISO/IEC 42001 with leadership commitment, policies, audits, and continual improvement.",
}

// RemediationFor returns the program-level sentence for a low-scoring framework.
func RemediationFor(f Framework) string {
	if s, ok := frameworkRemediation[f]; ok {
		return s
	}
	return fmt.Sprintf("Close compliance gaps for %s.", f)
}

// Recommend lists framework remediations (in framework order) followed by one entry
// per unimplemented control (in control order), truncated to MaxRecommendations.
func Recommend(frameworks []Framework, scores map[Framework]float64, controls ControlSet) []string {
	recs := make([]string, 0, MaxRecommendations)
	for _, f := range frameworks {
		if scores[f] < LowScoreThreshold {
			recs = append(recs, RemediationFor(f))
		}
	}
	for _, ctrl := range controls {
		if !ctrl.Evidence {
			recs = append(recs, "Implement control: "+ctrl.Description)
		}
	}
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs
}
