package governance

import (
	"fmt"
	"sort"
)

const (
	contributingWeight = 0.5
	gapWeight          = 0.7
	addressedMaturity  = 2
)

// Analyze builds the per-framework contributing and missing lists. Each list is
// deduplicated and sorted.
func Analyze(frameworks []Framework, questions []Question, controls ControlSet, perQuestion map[string]int, citations Citations) map[Framework]FrameworkAnalysis {
	contributing := make(map[Framework][]string, len(frameworks))
	missing := make(map[Framework][]string, len(frameworks))

	for _, q := range questions {
		m, rated := perQuestion[q.ID]
		if !rated {
			continue
		}
		m = ClampMaturity(m)
		for _, f := range frameworks {
			w := q.Weights.Of(f)
			switch {
			case m >= addressedMaturity && w > contributingWeight:
				contributing[f] = append(contributing[f], fmt.Sprintf("Addressed: '%s' (Maturity: %d/4)", q.Text, m))
			case m < addressedMaturity && w > gapWeight:
				missing[f] = append(missing[f], fmt.Sprintf("Gap: '%s' (Maturity: %d/4)%s", q.Text, m, refSuffix(f, citations.ForQuestion(q, f))))
			}
		}
	}

	for _, ctrl := range controls {
		for _, f := range frameworks {
			if ctrl.Weights.Of(f) <= contributingWeight {
				continue
			}
			if ctrl.Evidence {
				contributing[f] = append(contributing[f], fmt.Sprintf("Implemented Control: '%s'", ctrl.Description))
			} else {
				missing[f] = append(missing[f], fmt.Sprintf("Missing Control: '%s'%s", ctrl.Description, refSuffix(f, citations.ForControl(ctrl.Key, f))))
			}
		}
	}

	out := make(map[Framework]FrameworkAnalysis, len(frameworks))
	for _, f := range frameworks {
		out[f] = FrameworkAnalysis{
			Contributing: dedupeSorted(contributing[f]),
			Missing:      dedupeSorted(missing[f]),
		}
	}
	return out
}

func dedupeSorted(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
