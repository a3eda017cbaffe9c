package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"governance-backend/internal/governance"
)

// ErrUnparsable marks provider output that is not a rating payload.
var ErrUnparsable = errors.New("unparsable rating response")

const defaultRationale = "No rationale provided."

// ParseRatings decodes provider text into ratings. It accepts a bare object, a list,
// or {"ratings": [...]}, optionally wrapped in a ```json fence.
func ParseRatings(text string) ([]governance.AnswerRating, error) {
	cleaned := stripFences(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty", ErrUnparsable)
	}
	var data any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	var items []any
	switch v := data.(type) {
	case []any:
		items = v
	case map[string]any:
		if inner, ok := v["ratings"].([]any); ok {
			items = inner
		} else {
			items = []any{v}
		}
	default:
		return nil, fmt.Errorf("%w: unexpected %T", ErrUnparsable, data)
	}

	out := make([]governance.AnswerRating, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			out = append(out, governance.AnswerRating{
				Maturity:  0,
				Rationale: fmt.Sprintf("Malformed response item: %v", item),
			})
			continue
		}
		rationale, _ := obj["rationale"].(string)
		if strings.TrimSpace(rationale) == "" {
			rationale = defaultRationale
		}
		out = append(out, governance.AnswerRating{
			Maturity:  governance.ClampMaturity(maturityOf(obj["maturity"])),
			Rationale: rationale,
		})
	}
	if len(out) == 0 {
		return nil, governance.ErrNoRatings
	}
	return out, nil
}

func maturityOf(v any) int {
	switch n := v.(type) {
	case float64:
		switch {
		case math.IsNaN(n) || n < 0:
			return 0
		case n > 4:
			return 4
		}
		return int(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return maturityOf(parsed)
	default:
		return 0
	}
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
