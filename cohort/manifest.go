package cohort

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/radiomix"
	"github.com/extrame/xls"
)

// patientID matches identifiers that carry the numeric part the output table
// is sorted by. Header cells such as "Patient" do not.
var patientID = regexp.MustCompile(`^` + PatientPrefix + `\d`)

// ReadManifest returns the patient identifiers listed in the first column of
// a manifest. Excel 97-2003 workbooks (.xls) are read from their first sheet;
// anything else is treated as delimited text with the delimiter detected from
// its contents. Cells that do not look like patient identifiers, such as a
// header, are ignored.
func ReadManifest(path string) ([]string, error) {
	var column []string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		column, err = firstColumnXLS(path)
	} else {
		column, err = firstColumnDelimited(path)
	}
	if err != nil {
		return nil, err
	}

	var out []string
	seen := map[string]struct{}{}
	for _, cell := range column {
		id := strings.TrimSpace(cell)
		if !patientID.MatchString(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	if len(out) == 0 {
		return nil, pfx.Err(fmt.Errorf("%s: no patient identifiers found", path))
	}

	return out, nil
}

func firstColumnDelimited(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	cr := csv.NewReader(bytes.NewReader(b))
	cr.Comma = radiomix.DetermineDelimiter(bytes.NewReader(b))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var out []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}
		if len(row) > 0 {
			out = append(out, row[0])
		}
	}

	return out, nil
}

func firstColumnXLS(path string) ([]string, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, pfx.Err(err)
	}

	if workbook.NumSheets() < 1 {
		return nil, pfx.Err(fmt.Errorf("%s: workbook has no sheets", path))
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, pfx.Err(fmt.Errorf("%s: first sheet was nil", path))
	}

	var out []string
	for rowID := 0; rowID <= int(sheet.MaxRow); rowID++ {
		row := sheet.Row(rowID)
		if row == nil {
			continue
		}
		out = append(out, row.Col(0))
	}

	return out, nil
}

// Filter keeps the patients whose identifier is in ids, in their original
// order, and reports the listed identifiers that have no directory.
func Filter(patients []Patient, ids []string) (kept []Patient, unmatched []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	found := map[string]bool{}
	for _, p := range patients {
		if want[p.ID] {
			kept = append(kept, p)
			found[p.ID] = true
		}
	}

	for _, id := range ids {
		if !found[id] {
			unmatched = append(unmatched, id)
		}
	}

	return kept, unmatched
}
