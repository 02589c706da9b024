package invexcel

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	// columnPadding and columnAdjustment size a column as
	// (longest cell + padding) * adjustment.
	columnPadding    = 2
	columnAdjustment = 1.12

	// dateCellWidth is the effective width of a date cell once the fixed
	// datetime display format is applied.
	dateCellWidth  = 16
	dateCellFormat = "yyyy-mm-dd hh:mm:ss"
)

// Export renders every non-empty sheet and saves the workbook to the path
// template. A "{}" placeholder in the template is replaced with the current
// date as YYYYMMDD, and a leading "~" is expanded to the user home directory.
// When no sheet contains data the export is a no-op: it logs and returns nil
// without creating a file.
func (b *WorkbookBuilder) Export(pathTemplate string) error {
	outputPath, err := b.resolveOutputPath(pathTemplate)
	if err != nil {
		return err
	}

	f, sheetCount, err := b.build()
	if err != nil {
		return err
	}
	defer f.Close()

	if sheetCount == 0 {
		b.logger.Info().Msg("no sheets containing data, no workbook generated")
		return nil
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	b.logger.Info().Str("path", outputPath).Int("sheets", sheetCount).Msg("workbook generated")
	return nil
}

// ExportToWriter renders the workbook and streams it to w. Unlike Export it
// returns ErrNoSheetData when every sheet was empty, so callers serving the
// bytes can react.
func (b *WorkbookBuilder) ExportToWriter(w io.Writer) error {
	f, sheetCount, err := b.build()
	if err != nil {
		return err
	}
	defer f.Close()

	if sheetCount == 0 {
		return ErrNoSheetData
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// ToBytes renders the workbook into an in-memory byte slice.
func (b *WorkbookBuilder) ToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := b.ExportToWriter(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// build assembles the workbook. Any validation failure aborts the whole
// export, not just the offending sheet, and the file handle is released
// before returning.
func (b *WorkbookBuilder) build() (*excelize.File, int, error) {
	f := excelize.NewFile()

	count := 0
	for _, sh := range b.sheets {
		if len(sh.rows) == 0 {
			b.logger.Info().Str("sheet", sh.name).Msg("no data found, sheet skipped")
			continue
		}
		if err := b.renderSheet(f, sh); err != nil {
			f.Close()
			return nil, 0, err
		}
		count++
	}

	if count > 0 {
		// Drop excelize's default sheet unless a rendered sheet claimed the
		// name. A skipped "Sheet1" must not survive as a blank physical sheet.
		if sh, ok := b.byName["Sheet1"]; !ok || len(sh.rows) == 0 {
			if err := f.DeleteSheet("Sheet1"); err != nil {
				f.Close()
				return nil, 0, fmt.Errorf("removing default sheet: %w", err)
			}
		}
		f.SetActiveSheet(0)
	}
	return f, count, nil
}

// renderSheet runs the fixed per-sheet pipeline: sort, merge and validate,
// emit rows, register the banded table, apply conditional formats, autosize
// columns and freeze panes. The order matters: each step consumes the
// previous step's output.
func (b *WorkbookBuilder) renderSheet(f *excelize.File, sh *sheet) error {
	if len(sh.sortKeys) > 0 {
		sortRowsNatural(sh.rows, sh.sortKeys)
	}

	matrix, err := sh.mergeForExport()
	if err != nil {
		return err
	}

	if _, err := f.NewSheet(sh.name); err != nil {
		return fmt.Errorf("creating sheet %q: %w", sh.name, err)
	}

	colCount := len(sh.headers)
	colWidths := make([]int, colCount)
	dateStyleID := -1

	for r, row := range matrix {
		for c, value := range row {
			cell := ColumnNumberToName(c+1) + fmt.Sprint(r+1)

			if t, ok := value.(time.Time); ok {
				// Dates get the timezone stripped, a fixed display format
				// and a constant effective width.
				if err := f.SetCellValue(sh.name, cell, stripTimezone(t)); err != nil {
					return fmt.Errorf("setting cell %s on sheet %q: %w", cell, sh.name, err)
				}
				if dateStyleID < 0 {
					if dateStyleID, err = newDateStyle(f); err != nil {
						return err
					}
				}
				if err := f.SetCellStyle(sh.name, cell, cell, dateStyleID); err != nil {
					return fmt.Errorf("styling cell %s on sheet %q: %w", cell, sh.name, err)
				}
				if colWidths[c] < dateCellWidth {
					colWidths[c] = dateCellWidth
				}
				continue
			}

			if err := f.SetCellValue(sh.name, cell, value); err != nil {
				return fmt.Errorf("setting cell %s on sheet %q: %w", cell, sh.name, err)
			}
			if l := len([]rune(fmt.Sprint(value))); l > colWidths[c] {
				colWidths[c] = l
			}
		}
	}

	lastCol := ColumnNumberToName(colCount)
	lastRow := len(matrix)

	rowStripes := true
	if err := f.AddTable(sh.name, &excelize.Table{
		Range:             fmt.Sprintf("A1:%s%d", lastCol, lastRow),
		Name:              sh.tableIdentifier(),
		StyleName:         b.tableStyle,
		ShowFirstColumn:   false,
		ShowLastColumn:    false,
		ShowRowStripes:    &rowStripes,
		ShowColumnStripes: false,
	}); err != nil {
		return fmt.Errorf("adding table on sheet %q: %w", sh.name, err)
	}

	if err := b.applyHeaderRules(f, sh, lastRow); err != nil {
		return err
	}
	if err := b.applyTableRules(f, sh, lastCol, lastRow); err != nil {
		return err
	}

	for c, width := range colWidths {
		col := ColumnNumberToName(c + 1)
		adjusted := float64(width+columnPadding) * columnAdjustment
		if err := f.SetColWidth(sh.name, col, col, adjusted); err != nil {
			return fmt.Errorf("sizing column %s on sheet %q: %w", col, sh.name, err)
		}
	}

	return b.applyFreeze(f, sh, matrix[0])
}

// applyHeaderRules registers one conditional-format entry per accumulated
// header rule, scoped to that header's column over the data rows. Rules whose
// header is not in the current header list are skipped with a warning.
func (b *WorkbookBuilder) applyHeaderRules(f *excelize.File, sh *sheet, lastRow int) error {
	for header := range sh.headerRules {
		if indexOf(sh.headers, header) < 0 {
			b.logger.Warn().
				Str("sheet", sh.name).
				Str("header", header).
				Msg("skipping format rules for unknown header")
		}
	}

	for idx, header := range sh.headers {
		rules := sh.headerRules[header]
		if len(rules) == 0 {
			continue
		}
		col := ColumnNumberToName(idx + 1)
		rangeRef := fmt.Sprintf("%s2:%s%d", col, col, lastRow)
		for _, rule := range rules {
			if err := applyConditionalRule(f, sh.name, rangeRef, rule); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *WorkbookBuilder) applyTableRules(f *excelize.File, sh *sheet, lastCol string, lastRow int) error {
	rangeRef := fmt.Sprintf("A2:%s%d", lastCol, lastRow)
	for _, rule := range sh.tableRules {
		if err := applyConditionalRule(f, sh.name, rangeRef, rule); err != nil {
			return err
		}
	}
	return nil
}

// applyConditionalRule registers an expression rule with a solid background
// fill over rangeRef. The engine expects bare hex triplets, so a leading '#'
// is stripped.
func applyConditionalRule(f *excelize.File, sheetName, rangeRef string, rule ConditionalRule) error {
	styleID, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(rule.BGColor, "#")},
			Pattern: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("creating conditional style: %w", err)
	}

	if err := f.SetConditionalFormat(sheetName, rangeRef, []excelize.ConditionalFormatOptions{{
		Type:       "formula",
		Criteria:   rule.Formula,
		Format:     styleID,
		StopIfTrue: false,
	}}); err != nil {
		return fmt.Errorf("setting conditional format on %s: %w", rangeRef, err)
	}
	return nil
}

// applyFreeze freezes panes directly below and one column right of the
// configured header, so the header row and every column up to and including
// it stay visible while scrolling.
func (b *WorkbookBuilder) applyFreeze(f *excelize.File, sh *sheet, headerRow []interface{}) error {
	if sh.freezeAfter == "" {
		return nil
	}

	col := 0
	for i, v := range headerRow {
		if fmt.Sprint(v) == sh.freezeAfter {
			col = i + 1
			break
		}
	}
	if col == 0 {
		return fmt.Errorf("%w: %q not present in sheet %q", ErrInvalidFreezeHeader, sh.freezeAfter, sh.name)
	}

	if err := f.SetPanes(sh.name, &excelize.Panes{
		Freeze:      true,
		XSplit:      col,
		YSplit:      1,
		TopLeftCell: ColumnNumberToName(col+1) + "2",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("freezing panes on sheet %q: %w", sh.name, err)
	}
	return nil
}

func newDateStyle(f *excelize.File) (int, error) {
	format := dateCellFormat
	id, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return 0, fmt.Errorf("creating date style: %w", err)
	}
	return id, nil
}

func stripTimezone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func (b *WorkbookBuilder) resolveOutputPath(pathTemplate string) (string, error) {
	p := strings.ReplaceAll(pathTemplate, "{}", b.now().Format("20060102"))
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p, nil
}
