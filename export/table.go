// Package export writes feature tables and run summaries.
package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/radiomix/aggregate"
	"github.com/carbocation/radiomix/features"
	"github.com/xuri/excelize/v2"
)

// WriteTable writes the table to path in the format implied by its
// extension: .xlsx, .csv or .tsv. Parent directories are created. Cells
// a row has no value for, and non-finite numbers, are left empty.
func WriteTable(path string, table *aggregate.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pfx.Err(err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return writeXLSX(path, table)
	case ".csv":
		return writeDelimited(path, ',', table)
	case ".tsv", ".txt":
		return writeDelimited(path, '\t', table)
	default:
		return pfx.Err(fmt.Errorf("%s: unsupported output format %q", path, ext))
	}
}

// cell returns the value to write for a row and column, and false when the
// cell should stay empty.
func cell(table *aggregate.Table, row int, column string) (interface{}, bool) {
	v, ok := table.Value(row, column)
	if !ok || v == nil {
		return nil, false
	}
	if f, isFloat := v.(float64); isFloat && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, false
	}
	return v, true
}

func writeXLSX(path string, table *aggregate.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return pfx.Err(err)
	}

	for r := range table.Rows {
		for c, column := range table.Columns {
			v, ok := cell(table, r, column)
			if !ok {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return pfx.Err(err)
			}
			if err := f.SetCellValue(sheet, name, v); err != nil {
				return pfx.Err(err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func writeDelimited(path string, comma rune, table *aggregate.Table) error {
	out, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	w.Comma = comma

	if err := w.Write(table.Columns); err != nil {
		return pfx.Err(err)
	}

	line := make([]string, len(table.Columns))
	for r := range table.Rows {
		for c, column := range table.Columns {
			line[c] = ""
			if v, ok := cell(table, r, column); ok {
				line[c] = features.FormatValue(v)
			}
		}
		if err := w.Write(line); err != nil {
			return pfx.Err(err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return pfx.Err(err)
	}

	if err := out.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}
