package governance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Answers maps question ids to free-text answers. Decoding accepts any JSON
// value per question and flattens it to text.
type Answers map[string]string

func (a *Answers) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("answers must be an object: %w", err)
	}
	out := make(Answers, len(raw))
	for k, v := range raw {
		out[k] = AnswerText(v)
	}
	*a = out
	return nil
}

// AnswerText renders a decoded JSON answer as text. Lists are joined with
// commas and {name, country} objects read as "name from country".
func AnswerText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := AnswerText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		name, nameOK := t["name"].(string)
		country, countryOK := t["country"].(string)
		if nameOK && countryOK && name != "" && country != "" {
			return name + " from " + country
		}
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
