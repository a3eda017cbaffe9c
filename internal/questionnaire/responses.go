package questionnaire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"governance-backend/internal/governance"
)

// Response is one questionnaire answer, keyed by question id.
type Response struct {
	Key   string
	Value any
}

// Responses keeps answers in the order they were submitted.
type Responses []Response

// ParseResponses decodes questionnaireResponses. The value may be an object or a
// JSON string holding an object.
func ParseResponses(raw json.RawMessage) (Responses, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: questionnaireResponses is required", ErrInvalidInput)
	}
	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("%w: questionnaireResponses is not valid JSON", ErrInvalidInput)
		}
		trimmed = bytes.TrimSpace([]byte(inner))
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: questionnaireResponses must be an object", ErrInvalidInput)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: questionnaireResponses is not valid JSON", ErrInvalidInput)
	}
	index := map[string]int{}
	var out Responses
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: questionnaireResponses is not valid JSON", ErrInvalidInput)
		}
		key, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: questionnaireResponses[%s] is not valid JSON", ErrInvalidInput, key)
		}
		if i, ok := index[key]; ok {
			out[i].Value = v
			continue
		}
		index[key] = len(out)
		out = append(out, Response{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: questionnaireResponses is not valid JSON", ErrInvalidInput)
	}
	return out, nil
}

// Get returns the raw value for key.
func (rs Responses) Get(key string) (any, bool) {
	for _, r := range rs {
		if r.Key == key {
			return r.Value, true
		}
	}
	return nil, false
}

// Answers flattens the responses for the governance assessor.
func (rs Responses) Answers() governance.Answers {
	out := make(governance.Answers, len(rs))
	for _, r := range rs {
		out[r.Key] = governance.AnswerText(r.Value)
	}
	return out
}

// Summary renders one "label: value" line per non-empty answer.
func (rs Responses) Summary(labels Labels) string {
	var b strings.Builder
	for _, r := range rs {
		if empty(r.Value) {
			continue
		}
		text := governance.AnswerText(r.Value)
		if text == "" {
			continue
		}
		b.WriteString(labels.For(r.Key))
		b.WriteString(": ")
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String()
}

// MarshalJSON encodes the responses as an object in submission order.
func (rs Responses) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range rs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		return t.String() == "0"
	}
	return false
}
