package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema is returned when a reference table lacks a required column.
var ErrSchema = errors.New("catalog schema mismatch")

type column struct {
	field    string
	aliases  []string
	required bool
}

type tableSchema struct {
	name    string
	columns []column
}

var (
	aiRiskSchema = tableSchema{
		name: "predefined_risks",
		columns: []column{
			{field: "id", aliases: []string{"risk id", "id"}, required: true},
			{field: "name", aliases: []string{"risk name", "risk", "name"}, required: true},
			{field: "description", aliases: []string{"risk description", "description"}},
			{field: "category", aliases: []string{"category"}},
			{field: "likelihood", aliases: []string{"base likelihood", "likelihood"}},
			{field: "impact", aliases: []string{"impact"}},
			{field: "severity", aliases: []string{"base severity", "severity"}},
			{field: "mitigation", aliases: []string{"mitigation"}},
		},
	}
	cyberRiskSchema = tableSchema{
		name: "stride_risks",
		columns: []column{
			{field: "id", aliases: []string{"risk id", "id"}, required: true},
			{field: "description", aliases: []string{"risk description", "description"}, required: true},
			{field: "severity", aliases: []string{"severity", "base severity"}, required: true},
			{field: "category", aliases: []string{"category", "stride category"}},
			{field: "likelihood", aliases: []string{"likelihood", "base likelihood"}},
			{field: "impact", aliases: []string{"impact"}},
			{field: "mitigation", aliases: []string{"mitigation"}},
		},
	}
	aiControlSchema = tableSchema{
		name: "predefined_controls",
		columns: []column{
			{field: "code", aliases: []string{"code", "control code"}, required: true},
			{field: "section", aliases: []string{"section"}, required: true},
			{field: "title", aliases: []string{"control", "control name"}, required: true},
			{field: "requirements", aliases: []string{"requirements", "requirement"}, required: true},
		},
	}
	nistControlSchema = tableSchema{
		name: "nist_controls",
		columns: []column{
			{field: "code", aliases: []string{"control id", "id"}, required: true},
			{field: "section", aliases: []string{"family"}, required: true},
			{field: "title", aliases: []string{"control name", "name"}, required: true},
			{field: "requirements", aliases: []string{"control description", "description"}, required: true},
		},
	}
)

// normalizeHeader lowercases a header and folds '_' and '-' into single spaces.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

// resolve maps each schema field to a column index. Optional fields that are
// absent map to -1.
func (s tableSchema) resolve(headers []string) (map[string]int, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		n := normalizeHeader(h)
		if _, seen := index[n]; !seen {
			index[n] = i
		}
	}
	out := make(map[string]int, len(s.columns))
	for _, col := range s.columns {
		pos := -1
		for _, alias := range col.aliases {
			if i, ok := index[alias]; ok {
				pos = i
				break
			}
		}
		if pos < 0 && col.required {
			return nil, fmt.Errorf("%w: %s missing %q (accepted %q, saw %q)", ErrSchema, s.name, col.field, col.aliases, headers)
		}
		out[col.field] = pos
	}
	return out, nil
}

func cell(record []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
