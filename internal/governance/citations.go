package governance

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Citations maps stable question and control identifiers to per-framework clause references.
type Citations struct {
	Questions map[string]map[Framework]string `yaml:"questions"`
	Controls  map[string]map[Framework]string `yaml:"controls"`
}

// DefaultCitations returns the built-in regulation mapping.
func DefaultCitations() Citations {
	return Citations{
		Controls: map[string]map[Framework]string{
			"human_oversight_design": {FrameworkEU: "Art. 14", FrameworkNIST: "Gov-4.2", FrameworkISO: "Cl. 9.3"},
			"incident_response":      {FrameworkEU: "Art. 62", FrameworkNIST: "Mng-5", FrameworkISO: "Cl. 10.1"},
			"monitoring_bias_drift":  {FrameworkEU: "Art. 15", FrameworkNIST: "Msr-2.4", FrameworkISO: "Cl. 9.1"},
			"third_party_validation": {FrameworkEU: "Art. 17", FrameworkNIST: "Gov-5.3", FrameworkISO: "Cl. 9.2"},
		},
		Questions: map[string]map[Framework]string{
			"risk_classification":    {FrameworkEU: "Art. 6", FrameworkNIST: "Map-1", FrameworkISO: "Cl. 8.2"},
			"docs_traceability":      {FrameworkEU: "Art. 11", FrameworkNIST: "Gov-2", FrameworkISO: "Cl. 7.5"},
			"independent_validation": {FrameworkEU: "Art. 17", FrameworkNIST: "Gov-5", FrameworkISO: "Cl. 9.2"},
			"monitoring_metrics":     {FrameworkEU: "Art. 15", FrameworkNIST: "Msr-2", FrameworkISO: "Cl. 9.1.1"},
			"leadership":             {FrameworkISO: "Cl. 5.1"},
			"gov_policies":           {FrameworkISO: "Cl. 5.2"},
		},
	}
}

// ForQuestion resolves a reference by question id, then by each tag in order.
func (c Citations) ForQuestion(q Question, f Framework) string {
	if ref := c.Questions[q.ID][f]; ref != "" {
		return ref
	}
	for _, tag := range q.Tags {
		if ref := c.Questions[tag][f]; ref != "" {
			return ref
		}
	}
	return ""
}

// ForControl resolves a reference by control key.
func (c Citations) ForControl(key string, f Framework) string {
	return c.Controls[key][f]
}

// Merge overlays other on top of c and returns the result. c is not modified.
func (c Citations) Merge(other Citations) Citations {
	out := Citations{
		Questions: mergeRefs(c.Questions, other.Questions),
		Controls:  mergeRefs(c.Controls, other.Controls),
	}
	return out
}

func mergeRefs(base, overlay map[string]map[Framework]string) map[string]map[Framework]string {
	out := make(map[string]map[Framework]string, len(base)+len(overlay))
	for id, refs := range base {
		cp := make(map[Framework]string, len(refs))
		for f, r := range refs {
			cp[f] = r
		}
		out[id] = cp
	}
	for id, refs := range overlay {
		if out[id] == nil {
			out[id] = make(map[Framework]string, len(refs))
		}
		for f, r := range refs {
			out[id][f] = r
		}
	}
	return out
}

// ParseCitations reads a YAML citation table.
func ParseCitations(r io.Reader) (Citations, error) {
	var c Citations
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Citations{}, fmt.Errorf("parse citations: %w", err)
	}
	return c, nil
}

// LoadCitations returns the defaults overlaid with the YAML file at path. An empty path
// yields the defaults.
func LoadCitations(path string) (Citations, error) {
	base := DefaultCitations()
	if path == "" {
		return base, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("open citations: %w", err)
	}
	defer f.Close()
	overlay, err := ParseCitations(f)
	if err != nil {
		return base, err
	}
	return base.Merge(overlay), nil
}

func refSuffix(f Framework, ref string) string {
	if ref == "" {
		return ""
	}
	return fmt.Sprintf(" (Ref: %s %s)", f, ref)
}
