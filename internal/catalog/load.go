package catalog

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"governance-backend/internal/shared/telemetry"
)

//go:embed defaults/*.csv
var defaultTables embed.FS

const (
	fileAIRisks     = "predefined_risks.csv"
	fileAIControls  = "predefined_controls.csv"
	fileCyberRisks  = "stride_risks.csv"
	fileNISTControl = "nist_controls.csv"
)

// Load reads the reference tables. Files present in dir replace the embedded
// defaults one table at a time; an empty dir uses only the defaults.
func Load(dir string) (*Catalog, error) {
	aiRisks, err := loadRisks(dir, fileAIRisks, aiRiskSchema)
	if err != nil {
		return nil, err
	}
	aiControls, err := loadControls(dir, fileAIControls, aiControlSchema)
	if err != nil {
		return nil, err
	}
	cyberRisks, err := loadRisks(dir, fileCyberRisks, cyberRiskSchema)
	if err != nil {
		return nil, err
	}
	cyberControls, err := loadControls(dir, fileNISTControl, nistControlSchema)
	if err != nil {
		return nil, err
	}

	c := &Catalog{families: map[Family]Tables{
		FamilyAI:    {Family: FamilyAI, Risks: aiRisks, Controls: aiControls},
		FamilyCyber: {Family: FamilyCyber, Risks: withCyberNames(cyberRisks), Controls: cyberControls},
	}}
	telemetry.Info("catalog.loaded", map[string]any{
		"dir":            dir,
		"ai_risks":       len(aiRisks),
		"ai_controls":    len(aiControls),
		"cyber_risks":    len(cyberRisks),
		"cyber_controls": len(cyberControls),
	})
	return c, nil
}

// MustDefault loads the embedded tables and panics if they are malformed.
func MustDefault() *Catalog {
	c, err := Load("")
	if err != nil {
		panic(err)
	}
	return c
}

// STRIDE rows carry no separate name; the description doubles as one.
func withCyberNames(risks []Risk) []Risk {
	for i := range risks {
		if risks[i].Name == "" {
			risks[i].Name = risks[i].Description
		}
	}
	return risks
}

func openTable(dir, name string) (io.ReadCloser, string, error) {
	if strings.TrimSpace(dir) != "" {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("open %s: %w", path, err)
		}
	}
	f, err := defaultTables.Open("defaults/" + name)
	if err != nil {
		return nil, "", fmt.Errorf("open embedded %s: %w", name, err)
	}
	return f, "embedded:" + name, nil
}

func readTable(dir, name string, schema tableSchema, row func(pos int, record []string, cols map[string]int)) error {
	rc, source, err := openTable(dir, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		return fmt.Errorf("%w: %s has no header row: %v", ErrSchema, source, err)
	}
	cols, err := schema.resolve(headers)
	if err != nil {
		return err
	}
	pos := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", source, err)
		}
		if blank(record) {
			continue
		}
		pos++
		row(pos, record, cols)
	}
	return nil
}

func loadRisks(dir, name string, schema tableSchema) ([]Risk, error) {
	var out []Risk
	err := readTable(dir, name, schema, func(pos int, record []string, cols map[string]int) {
		out = append(out, Risk{
			Row:         pos,
			ID:          cell(record, cols, "id"),
			Name:        cell(record, cols, "name"),
			Description: cell(record, cols, "description"),
			Category:    cell(record, cols, "category"),
			Likelihood:  cell(record, cols, "likelihood"),
			Impact:      cell(record, cols, "impact"),
			Severity:    cell(record, cols, "severity"),
			Mitigation:  cell(record, cols, "mitigation"),
		})
	})
	return out, err
}

func loadControls(dir, name string, schema tableSchema) ([]ControlTemplate, error) {
	var out []ControlTemplate
	err := readTable(dir, name, schema, func(pos int, record []string, cols map[string]int) {
		out = append(out, ControlTemplate{
			Row:          pos,
			Code:         cell(record, cols, "code"),
			Section:      cell(record, cols, "section"),
			Title:        cell(record, cols, "title"),
			Requirements: cell(record, cols, "requirements"),
		})
	})
	return out, err
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
