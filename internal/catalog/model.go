package catalog

import "strings"

// Family selects which pair of reference tables a request draws from.
type Family string

const (
	FamilyAI    Family = "ai"
	FamilyCyber Family = "cyber"
)

// ParseFamily maps a use-case label to a family. Anything mentioning cyber is cyber.
func ParseFamily(raw string) Family {
	if strings.Contains(strings.ToLower(raw), "cyber") {
		return FamilyCyber
	}
	return FamilyAI
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	return f == FamilyAI || f == FamilyCyber
}

// Risk is one row of a risk reference table.
type Risk struct {
	Row         int
	ID          string
	Name        string
	Description string
	Category    string
	Likelihood  string
	Impact      string
	Severity    string
	Mitigation  string
}

// ControlTemplate is one row of a control reference table.
type ControlTemplate struct {
	Row          int
	Code         string
	Section      string
	Title        string
	Requirements string
}

// Tables holds the risks and controls for one family.
type Tables struct {
	Family   Family
	Risks    []Risk
	Controls []ControlTemplate
}

// Haystack is the text a summary is matched against when ranking risks.
func (t Tables) Haystack(r Risk) string {
	if t.Family == FamilyCyber {
		return r.Description + " " + r.Category + " " + r.Mitigation
	}
	return r.Name + " " + r.Mitigation
}

// Catalog holds the loaded reference tables for every family.
type Catalog struct {
	families map[Family]Tables
}

// Tables returns the tables for f.
func (c *Catalog) Tables(f Family) (Tables, bool) {
	if c == nil {
		return Tables{}, false
	}
	t, ok := c.families[f]
	return t, ok
}
