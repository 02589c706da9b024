package invexcel

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// WorkbookBuilder accumulates tabular data under named sheets and renders it
// into a styled multi-sheet workbook: header row, typed data rows, natural
// multi-key sorting, banded tables, conditional formatting, autosized columns
// and frozen header panes. It is a build-then-export batch type: populate it
// from any number of sources, then call Export once. It is not safe for
// concurrent use.
type WorkbookBuilder struct {
	tableStyle string
	logger     zerolog.Logger
	now        func() time.Time

	// sheets keeps creation order for export; byName is the lookup index.
	sheets []*sheet
	byName map[string]*sheet
}

// sheet is the per-name table state. Rows are validated against the header
// count on insertion, and again when merged for export, because headers may
// legally be replaced after data has been added.
type sheet struct {
	name        string
	headers     []string
	rows        [][]interface{}
	sortKeys    []int
	headerRules map[string][]ConditionalRule
	tableRules  []ConditionalRule
	freezeAfter string
}

// ConditionalRule recolors cells in a range whenever its formula evaluates
// true. Colors are accepted with or without a leading '#'.
type ConditionalRule struct {
	Formula string `yaml:"formula"`
	BGColor string `yaml:"bg_color"`
}

// NewWorkbookBuilder creates an empty builder. All sheet state is owned by
// the returned instance; independent builders share nothing.
func NewWorkbookBuilder(opts ...Option) *WorkbookBuilder {
	b := &WorkbookBuilder{
		tableStyle: DefaultTableStyle,
		logger:     zerolog.Nop(),
		now:        time.Now,
		byName:     make(map[string]*sheet),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// sheetFor returns the sheet registered under name, creating it on first
// reference. Sheets live for the builder's lifetime; there is no deletion.
func (b *WorkbookBuilder) sheetFor(name string) *sheet {
	if sh, ok := b.byName[name]; ok {
		return sh
	}
	sh := &sheet{
		name:        name,
		headerRules: make(map[string][]ConditionalRule),
	}
	b.byName[name] = sh
	b.sheets = append(b.sheets, sh)
	return sh
}

// AddHeaders sets the header row for a sheet, creating the sheet if needed.
// Headers must be pairwise distinct; on a duplicate the sheet's existing
// headers are left untouched. Calling it again replaces the header list;
// rows added earlier are only re-validated against the new width at export
// time.
func (b *WorkbookBuilder) AddHeaders(sheetName string, headers []string) error {
	sh := b.sheetFor(sheetName)

	seen := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if _, ok := seen[h]; ok {
			return fmt.Errorf("%w: %q in sheet %q", ErrDuplicateHeader, h, sheetName)
		}
		seen[h] = struct{}{}
	}

	sh.headers = append([]string(nil), headers...)
	return nil
}

// AddRow appends one row to a sheet, creating the sheet if needed. The row
// width must match the sheet's current header count. Nil values are stored as
// empty strings.
func (b *WorkbookBuilder) AddRow(sheetName string, row []interface{}) error {
	return b.sheetFor(sheetName).appendRow(row)
}

// AddRows appends a batch of rows. The first row that fails the width check
// aborts the call; rows appended before it remain in the sheet.
func (b *WorkbookBuilder) AddRows(sheetName string, rows [][]interface{}) error {
	sh := b.sheetFor(sheetName)
	for _, row := range rows {
		if err := sh.appendRow(row); err != nil {
			return err
		}
	}
	return nil
}

// AddData accepts either a single row or a batch of rows: when the first
// element is itself a sequence the whole input is treated as a batch,
// otherwise as one row.
func (b *WorkbookBuilder) AddData(sheetName string, data []interface{}) error {
	if len(data) > 0 && isSequence(data[0]) {
		sh := b.sheetFor(sheetName)
		for _, item := range data {
			row, ok := toRow(item)
			if !ok {
				return fmt.Errorf("%w: batch for sheet %q mixes rows and scalars", ErrColumnCountMismatch, sheetName)
			}
			if err := sh.appendRow(row); err != nil {
				return err
			}
		}
		return nil
	}
	return b.AddRow(sheetName, data)
}

// SetSortKeys resolves header names into column indices and stores them as
// the sheet's multi-column sort priority, most significant first.
func (b *WorkbookBuilder) SetSortKeys(sheetName string, headers ...string) error {
	sh, ok := b.byName[sheetName]
	if !ok {
		return fmt.Errorf("%w: cannot sort sheet %q, no headers have been set", ErrUnknownHeader, sheetName)
	}

	keys := make([]int, 0, len(headers))
	for _, h := range headers {
		idx := indexOf(sh.headers, h)
		if idx < 0 {
			return fmt.Errorf("%w: invalid sort header %q in sheet %q", ErrUnknownHeader, h, sheetName)
		}
		keys = append(keys, idx)
	}
	sh.sortKeys = keys
	return nil
}

// AddHeaderFormatRule appends a conditional-formatting rule scoped to one
// header's column. Rules accumulate; each produces an independent
// conditional-format entry over rows 2..N of that column at export time. A
// rule for a header that does not exist at export is skipped with a warning.
func (b *WorkbookBuilder) AddHeaderFormatRule(sheetName, header, formula, color string) {
	sh := b.sheetFor(sheetName)
	sh.headerRules[header] = append(sh.headerRules[header], ConditionalRule{Formula: formula, BGColor: color})
}

// AddTableFormatRules appends conditional-formatting rules applied over the
// full data range (rows 2..N, all columns). Rules missing a formula or a
// background color are skipped with a warning; well-formed siblings in the
// same batch are still recorded.
func (b *WorkbookBuilder) AddTableFormatRules(sheetName string, rules []ConditionalRule) {
	sh := b.sheetFor(sheetName)
	for _, rule := range rules {
		if rule.Formula == "" || rule.BGColor == "" {
			b.logger.Warn().
				Str("sheet", sheetName).
				Msg("skipping table format rule, missing formula and/or bg_color")
			continue
		}
		sh.tableRules = append(sh.tableRules, rule)
	}
}

// SetFreezeAfter freezes panes immediately after the named header's column
// (and below the header row) when the sheet is exported. The header is
// resolved against the rendered header row at export time.
func (b *WorkbookBuilder) SetFreezeAfter(sheetName, header string) {
	b.sheetFor(sheetName).freezeAfter = header
}

func (sh *sheet) appendRow(row []interface{}) error {
	if len(row) != len(sh.headers) {
		return fmt.Errorf("%w: sheet %q expects %d columns, row has %d",
			ErrColumnCountMismatch, sh.name, len(sh.headers), len(row))
	}
	normalized := make([]interface{}, len(row))
	for i, v := range row {
		if v == nil {
			normalized[i] = ""
			continue
		}
		normalized[i] = v
	}
	sh.rows = append(sh.rows, normalized)
	return nil
}

// mergeForExport returns the header row concatenated with all data rows,
// verifying that headers exist and that every row still matches the header
// width. The width check runs here, not at insertion, so header replacements
// made after data was added surface at export.
func (sh *sheet) mergeForExport() ([][]interface{}, error) {
	if len(sh.headers) == 0 {
		return nil, fmt.Errorf("%w: sheet %q", ErrNoHeaders, sh.name)
	}

	merged := make([][]interface{}, 0, len(sh.rows)+1)
	headerRow := make([]interface{}, len(sh.headers))
	for i, h := range sh.headers {
		headerRow[i] = h
	}
	merged = append(merged, headerRow)

	for _, row := range sh.rows {
		if len(row) != len(sh.headers) {
			return nil, fmt.Errorf("%w: sheet %q expects %d columns, row has %d",
				ErrColumnCountMismatch, sh.name, len(sh.headers), len(row))
		}
		merged = append(merged, row)
	}
	return merged, nil
}

// tableIdentifier is the sheet name with spaces stripped, used as the named
// table's display name.
func (sh *sheet) tableIdentifier() string {
	return strings.ReplaceAll(sh.name, " ", "")
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

// isSequence reports whether v is a slice or array other than []byte, the
// batch-detection rule for AddData.
func isSequence(v interface{}) bool {
	if v == nil {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func toRow(v interface{}) ([]interface{}, bool) {
	if row, ok := v.([]interface{}); ok {
		return row, true
	}
	if !isSequence(v) {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	row := make([]interface{}, rv.Len())
	for i := range row {
		row[i] = rv.Index(i).Interface()
	}
	return row, true
}
