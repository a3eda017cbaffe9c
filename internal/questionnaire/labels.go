package questionnaire

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Labels maps response keys to the human labels used in risk summaries.
type Labels map[string]string

// BaselineLabels covers the fixed intake questions.
func BaselineLabels() Labels {
	return Labels{
		"requestOwner":  "Name and country",
		"projectType":   "Project type (in-house vs third-party)",
		"projectName":   "Project Name",
		"region":        "Geographic regions",
		"purpose":       "AI system objective",
		"dateRange":     "Project timeline",
		"delayFactors":  "Potential delays",
		"subSystemType": "Learning model",
	}
}

// For returns the label for key, or "Question (key)".
func (l Labels) For(key string) string {
	if label := strings.TrimSpace(l[key]); label != "" {
		return label
	}
	return fmt.Sprintf("Question (%s)", key)
}

// Merge returns l overlaid with other.
func (l Labels) Merge(other Labels) Labels {
	out := make(Labels, len(l)+len(other))
	for k, v := range l {
		out[k] = v
	}
	for k, v := range other {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}

// LoadLabels reads a YAML mapping of key to label and overlays it on the baseline.
// An empty path returns the baseline.
func LoadLabels(path string) (Labels, error) {
	base := BaselineLabels()
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	var overlay Labels
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse labels %s: %w", path, err)
	}
	return base.Merge(overlay), nil
}
