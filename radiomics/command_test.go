package radiomics

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pyradiomicsCSV = `Image,Mask,diagnostics_Versions_PyRadiomics,original_shape_VoxelVolume,original_firstorder_Mean
/data/P1/P1_1.nii,/data/P1/P1_mask.nii,v3.1.0,123.5,0.75
`

func TestParseCSVOutput(t *testing.T) {
	rec, err := ParseCSVOutput(strings.NewReader(pyradiomicsCSV))
	require.NoError(t, err)
	require.Len(t, rec, 3)

	assert.Equal(t, "diagnostics_Versions_PyRadiomics", rec[0].Name)
	assert.Equal(t, "v3.1.0", rec[0].Value)
	assert.Equal(t, "original_shape_VoxelVolume", rec[1].Name)
	assert.Equal(t, 123.5, rec[1].Value)
	assert.Equal(t, 0.75, rec[2].Value)
}

func TestParseCSVOutputErrors(t *testing.T) {
	_, err := ParseCSVOutput(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ParseCSVOutput(strings.NewReader("a,b\n"))
	assert.Error(t, err)

	_, err = ParseCSVOutput(strings.NewReader("a,b\n1\n"))
	assert.Error(t, err)
}

// fakePyradiomics writes a shell script that checks it was handed a params
// file and prints a fixed result.
func fakePyradiomics(t *testing.T, body string) string {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "pyradiomics")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestCommandExtractor(t *testing.T) {
	bin := fakePyradiomics(t, `test "$3" = "--param" || exit 2
grep -q binWidth "$4" || exit 3
cat <<'CSV'
`+pyradiomicsCSV+`CSV
`)

	c, err := NewCommandExtractor(bin, DefaultSettings(), nil)
	require.NoError(t, err)

	rec, err := c.Extract(context.Background(), "/data/P1/P1_1.nii", "/data/P1/P1_mask.nii")
	require.NoError(t, err)
	v, ok := rec.Lookup("original_firstorder_Mean")
	require.True(t, ok)
	assert.Equal(t, 0.75, v)
}

func TestCommandExtractorFailure(t *testing.T) {
	bin := fakePyradiomics(t, "echo 'mask has no label' >&2\nexit 1\n")

	c, err := NewCommandExtractor(bin, DefaultSettings(), nil)
	require.NoError(t, err)

	_, err = c.Extract(context.Background(), "a.nii", "b.nii")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mask has no label")
}
