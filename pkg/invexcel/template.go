package invexcel

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// template.go - declarative report definitions loaded from YAML

// ReportDefinition describes a workbook as data: a list of sheets with
// optional inline rows, database-backed queries, sort keys, formatting rules
// and a freeze column.
type ReportDefinition struct {
	Version string            `yaml:"version"`
	Sheets  []SheetDefinition `yaml:"sheets"`
}

// SheetDefinition describes one sheet. Rows may come inline, from a query,
// or be added programmatically after the definition is applied.
type SheetDefinition struct {
	Name        string            `yaml:"name"`
	Headers     []string          `yaml:"headers"`
	Rows        [][]interface{}   `yaml:"rows"`
	Query       string            `yaml:"query"`
	SortBy      []string          `yaml:"sort_by"`
	FreezeAfter string            `yaml:"freeze_after"`
	HeaderRules []HeaderRule      `yaml:"header_rules"`
	TableRules  []ConditionalRule `yaml:"table_rules"`
}

// HeaderRule scopes a formatting rule to a single header's column.
type HeaderRule struct {
	Header  string `yaml:"header"`
	Formula string `yaml:"formula"`
	BGColor string `yaml:"bg_color"`
}

// LoadDefinition loads a report definition from a YAML file.
func LoadDefinition(path string) (*ReportDefinition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening definition file: %w", err)
	}
	defer file.Close()

	return LoadDefinitionFromReader(file)
}

// LoadDefinitionFromReader loads a definition from an io.Reader.
func LoadDefinitionFromReader(r io.Reader) (*ReportDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading definition: %w", err)
	}

	var def ReportDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing YAML definition: %w", err)
	}

	if err := ValidateDefinition(&def); err != nil {
		return nil, fmt.Errorf("validating definition: %w", err)
	}

	return &def, nil
}

// LoadDefinitionFromString loads a definition from a YAML string.
func LoadDefinitionFromString(yamlContent string) (*ReportDefinition, error) {
	return LoadDefinitionFromReader(strings.NewReader(yamlContent))
}

// ValidateDefinition validates the definition structure.
func ValidateDefinition(d *ReportDefinition) error {
	if d == nil {
		return fmt.Errorf("definition is nil")
	}

	if len(d.Sheets) == 0 {
		return fmt.Errorf("definition must have at least one sheet")
	}

	names := make(map[string]bool)
	for i, sheet := range d.Sheets {
		if err := validateSheetDefinition(&sheet, i); err != nil {
			return err
		}
		if names[sheet.Name] {
			return fmt.Errorf("duplicate sheet name '%s'", sheet.Name)
		}
		names[sheet.Name] = true
	}

	return nil
}

func validateSheetDefinition(s *SheetDefinition, index int) error {
	if s.Name == "" {
		return fmt.Errorf("sheet[%d]: name is required", index)
	}

	if len(s.Rows) > 0 && s.Query != "" {
		return fmt.Errorf("sheet[%d] '%s': cannot specify both rows and query", index, s.Name)
	}

	headerSet := make(map[string]bool)
	for j, h := range s.Headers {
		if h == "" {
			return fmt.Errorf("sheet[%d] '%s' header[%d]: name is required", index, s.Name, j)
		}
		if headerSet[h] {
			return fmt.Errorf("sheet[%d] '%s': duplicate header '%s'", index, s.Name, h)
		}
		headerSet[h] = true
	}

	for j, row := range s.Rows {
		if len(s.Headers) > 0 && len(row) != len(s.Headers) {
			return fmt.Errorf("sheet[%d] '%s' row[%d]: %d values for %d headers",
				index, s.Name, j, len(row), len(s.Headers))
		}
	}

	for j, rule := range s.HeaderRules {
		if rule.Header == "" || rule.Formula == "" || rule.BGColor == "" {
			return fmt.Errorf("sheet[%d] '%s' header_rule[%d]: header, formula and bg_color are required",
				index, s.Name, j)
		}
		if len(s.Headers) > 0 && !headerSet[rule.Header] {
			return fmt.Errorf("sheet[%d] '%s' header_rule[%d]: unknown header '%s'",
				index, s.Name, j, rule.Header)
		}
	}

	if s.FreezeAfter != "" && len(s.Headers) > 0 && !headerSet[s.FreezeAfter] {
		return fmt.Errorf("sheet[%d] '%s': freeze_after header '%s' not in headers",
			index, s.Name, s.FreezeAfter)
	}

	return nil
}

// ApplyDefinition feeds every sheet of the definition into the builder.
// Query-backed sheets only get their presentation settings here; their rows
// are expected to be added by the caller after fetching.
func (b *WorkbookBuilder) ApplyDefinition(def *ReportDefinition) error {
	for i := range def.Sheets {
		if err := b.ApplySheetDefinition(&def.Sheets[i]); err != nil {
			return fmt.Errorf("sheet '%s': %w", def.Sheets[i].Name, err)
		}
	}
	return nil
}

// ApplySheetDefinition feeds a single sheet definition into the builder.
func (b *WorkbookBuilder) ApplySheetDefinition(def *SheetDefinition) error {
	if len(def.Headers) > 0 {
		if err := b.AddHeaders(def.Name, def.Headers); err != nil {
			return err
		}
	}
	if len(def.Rows) > 0 {
		if err := b.AddRows(def.Name, def.Rows); err != nil {
			return err
		}
	}
	for _, rule := range def.HeaderRules {
		b.AddHeaderFormatRule(def.Name, rule.Header, rule.Formula, rule.BGColor)
	}
	if len(def.TableRules) > 0 {
		b.AddTableFormatRules(def.Name, def.TableRules)
	}
	if def.FreezeAfter != "" {
		b.SetFreezeAfter(def.Name, def.FreezeAfter)
	}
	if len(def.SortBy) > 0 {
		if err := b.SetSortKeys(def.Name, def.SortBy...); err != nil {
			return err
		}
	}
	return nil
}
