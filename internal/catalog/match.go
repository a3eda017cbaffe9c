package catalog

import (
	"strconv"
	"strings"
)

// KeywordScore counts the words of text longer than three characters that
// appear anywhere in hay, case-insensitively.
func KeywordScore(text, hay string) int {
	if text == "" || hay == "" {
		return 0
	}
	h := strings.ToLower(hay)
	score := 0
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if len(w) > 3 && strings.Contains(h, w) {
			score++
		}
	}
	return score
}

// SelectRelevant keeps the risks whose haystack matches summary, in catalog
// order. With no summary, or no match at all, every risk is kept. A positive
// limit truncates the result.
func SelectRelevant(t Tables, summary string, limit int) []Risk {
	out := t.Risks
	if summary != "" {
		var keep []Risk
		for _, r := range t.Risks {
			if KeywordScore(summary, t.Haystack(r)) > 0 {
				keep = append(keep, r)
			}
		}
		if len(keep) > 0 {
			out = keep
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return append([]Risk(nil), out...)
}

var severityWords = map[string]int{
	"very high": 5, "critical": 5, "vh": 5,
	"high": 4, "h": 4,
	"medium": 3, "med": 3, "m": 3,
	"low": 2, "l": 2,
	"very low": 1, "vl": 1,
}

// SeverityLevel maps a severity label or number onto 1..5. Unknown labels are 3.
func SeverityLevel(raw string) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s != "" && strings.Trim(s, "0123456789") == "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 3
		}
		return min(5, max(1, n))
	}
	if v, ok := severityWords[s]; ok {
		return v
	}
	return 3
}

// AssessmentID derives the risk assessment id from a session id.
func AssessmentID(sessionID string) string {
	prefix := []rune(sessionID)
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "RC-" + strings.ToUpper(string(prefix))
}

// AssignRelated hands out one related risk per control, cycling through the
// non-empty ids. With no ids every control relates to fallback.
func AssignRelated(n int, riskIDs []string, fallback string) [][]string {
	ids := make([]string, 0, len(riskIDs))
	for _, id := range riskIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	out := make([][]string, n)
	for i := range out {
		if len(ids) == 0 {
			out[i] = []string{fallback}
			continue
		}
		out[i] = []string{ids[i%len(ids)]}
	}
	return out
}
