package aggregate

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// ErrNoData means no patient produced any feature, so there is nothing to
// export.
var ErrNoData = errors.New("no features extracted")

// FormatError is returned when a patient identifier carries no number to sort
// by.
type FormatError struct {
	Patient string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("patient identifier %q has no numeric part", e.Patient)
}

var patientNumber = regexp.MustCompile(`\d+`)

// PatientNumber returns the first run of digits in a patient identifier.
func PatientNumber(patient string) (int, error) {
	digits := patientNumber.FindString(patient)
	if digits == "" {
		return 0, &FormatError{Patient: patient}
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, &FormatError{Patient: patient}
	}

	return n, nil
}

// Table is a finalized, export-ready set of patient records.
type Table struct {
	Columns []string
	Rows    []*PatientRecord
}

// Value returns the cell for row i and the given column.
func (t *Table) Value(i int, column string) (interface{}, bool) {
	return t.Rows[i].Get(column)
}

// Finalize sorts records by patient number and fixes the column order:
// Patient first, then every other column in the order it was first seen.
// ErrNoData is returned when no record has a column besides Patient.
func Finalize(records []*PatientRecord) (*Table, error) {
	if len(records) == 0 {
		return &Table{}, ErrNoData
	}

	hasFeatures := false
	for _, rec := range records {
		if rec.FeatureCount() > 0 {
			hasFeatures = true
			break
		}
	}
	if !hasFeatures {
		return &Table{}, ErrNoData
	}

	type keyed struct {
		n   int
		rec *PatientRecord
	}
	rows := make([]keyed, 0, len(records))
	for _, rec := range records {
		n, err := PatientNumber(rec.Patient())
		if err != nil {
			return nil, err
		}
		rows = append(rows, keyed{n: n, rec: rec})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].n < rows[j].n
	})

	out := &Table{
		Columns: columnOrder(records),
		Rows:    make([]*PatientRecord, 0, len(rows)),
	}
	for _, row := range rows {
		out.Rows = append(out.Rows, row.rec)
	}

	return out, nil
}

// columnOrder lists Patient and then each other column in the order it first
// appears across records, as given (not as sorted).
func columnOrder(records []*PatientRecord) []string {
	columns := []string{PatientColumn}
	seen := map[string]struct{}{PatientColumn: {}}
	for _, rec := range records {
		for _, key := range rec.Keys() {
			if _, exists := seen[key]; exists {
				continue
			}
			seen[key] = struct{}{}
			columns = append(columns, key)
		}
	}
	return columns
}
