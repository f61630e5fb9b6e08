package aggregate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(patient string, kv ...interface{}) *PatientRecord {
	r := NewPatientRecord()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	r.Set(PatientColumn, patient)
	return r
}

func TestFinalizeSortsNumerically(t *testing.T) {
	table, err := Finalize([]*PatientRecord{
		record("P10", "a_1", 1.0),
		record("P1", "a_1", 2.0, "b_1", 3.0),
		record("P2", "c_1", 4.0),
	})
	require.NoError(t, err)

	var order []string
	for _, r := range table.Rows {
		order = append(order, r.Patient())
	}
	assert.Equal(t, []string{"P1", "P2", "P10"}, order)
	assert.Equal(t, []string{"Patient", "a_1", "b_1", "c_1"}, table.Columns)

	v, ok := table.Value(2, "a_1")
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
	_, ok = table.Value(2, "b_1")
	assert.False(t, ok)
}

func TestFinalizeStableForEqualNumbers(t *testing.T) {
	table, err := Finalize([]*PatientRecord{
		record("P01", "x", 1.0),
		record("P1", "x", 2.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "P01", table.Rows[0].Patient())
	assert.Equal(t, "P1", table.Rows[1].Patient())
}

func TestFinalizeFormatError(t *testing.T) {
	_, err := Finalize([]*PatientRecord{
		record("P1", "x", 1.0),
		record("Pabc", "x", 2.0),
	})
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "Pabc", fe.Patient)
}

func TestFinalizeNoData(t *testing.T) {
	_, err := Finalize(nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Finalize([]*PatientRecord{record("P1"), record("P2")})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFinalizeKeepsSparseRows(t *testing.T) {
	table, err := Finalize([]*PatientRecord{
		record("P3"),
		record("P2", "x_1", 1.0),
	})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "P2", table.Rows[0].Patient())
	assert.Equal(t, []string{"Patient", "x_1"}, table.Columns)
}

func TestPatientNumber(t *testing.T) {
	for id, want := range map[string]int{"P1": 1, "P010": 10, "P12b7": 12} {
		n, err := PatientNumber(id)
		require.NoError(t, err)
		assert.Equal(t, want, n, id)
	}
}
