package governance

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Framework identifies a regulatory framework a score is computed for.
type Framework string

const (
	FrameworkEU   Framework = "EU"
	FrameworkNIST Framework = "NIST"
	FrameworkISO  Framework = "ISO"
)

// DefaultFrameworks is the fixed evaluation order used when a caller does not supply one.
var DefaultFrameworks = []Framework{FrameworkEU, FrameworkNIST, FrameworkISO}

// Weights maps a framework to a non-negative weight. Missing frameworks weigh 0.
type Weights map[Framework]float64

// Of returns the weight for f, or 0.
func (w Weights) Of(f Framework) float64 {
	if w == nil {
		return 0
	}
	return w[f]
}

// Question is one weighted questionnaire item.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Tags    []string `json:"tags,omitempty"`
	Weights Weights  `json:"weights"`
}

// Control is one weighted control with an implementation flag.
type Control struct {
	Key         string  `json:"-"`
	Description string  `json:"desc"`
	Weights     Weights `json:"weights"`
	Evidence    bool    `json:"evidence"`
}

// ControlSet is an ordered list of controls. On the wire it is a JSON object keyed by
// control key; decoding keeps the order in which keys appear.
type ControlSet []Control

// UnmarshalJSON decodes a JSON object of controls in document order.
func (cs *ControlSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*cs = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("controls: expected object")
	}
	out := ControlSet{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("controls: expected string key")
		}
		var ctrl Control
		if err := dec.Decode(&ctrl); err != nil {
			return fmt.Errorf("controls[%s]: %w", key, err)
		}
		ctrl.Key = key
		out = append(out, ctrl)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*cs = out
	return nil
}

// MarshalJSON encodes the set as a JSON object, keeping order.
func (cs ControlSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ctrl := range cs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ctrl.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ctrl)
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

// ImplementedCount returns how many controls carry evidence.
func (cs ControlSet) ImplementedCount() int {
	n := 0
	for _, ctrl := range cs {
		if ctrl.Evidence {
			n++
		}
	}
	return n
}

// AnswerRating is the maturity assigned to one question.
type AnswerRating struct {
	QuestionID string `json:"questionId,omitempty"`
	Maturity   int    `json:"maturity"`
	Rationale  string `json:"rationale"`
}

// FrameworkAnalysis lists what helps and what hurts a framework score.
type FrameworkAnalysis struct {
	Contributing []string `json:"contributing"`
	Missing      []string `json:"missing"`
}

// AssessmentResult is the unrounded outcome of one assessment.
type AssessmentResult struct {
	FrameworkScores   map[Framework]float64           `json:"frameworkScores"`
	OverallScore      float64                         `json:"overallScore"`
	PerQuestionScores map[string]int                  `json:"perQuestionScores"`
	Rationales        map[string]string               `json:"rationales"`
	Recommendations   []string                        `json:"recommendations"`
	DetailedAnalysis  map[Framework]FrameworkAnalysis `json:"detailedAnalysis"`
}

// ClampMaturity keeps a maturity inside 0..4.
func ClampMaturity(m int) int {
	if m < 0 {
		return 0
	}
	if m > 4 {
		return 4
	}
	return m
}
