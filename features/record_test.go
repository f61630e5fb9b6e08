package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeaturesSkipsLeadingEntries(t *testing.T) {
	var r Record
	r.Add("diagnostics_Versions_PyRadiomics", "v3.1.0")
	r.Add("diagnostics_Versions_Numpy", "1.26")
	r.Add("original_shape_VoxelVolume", 12.0)
	r.Add("diagnostics_Image-interpolated_Mean", 3.0)
	r.Add("original_firstorder_Mean", 1.5)

	got := r.Features(2)
	require.Len(t, got, 3)
	assert.Equal(t, "original_shape_VoxelVolume", got[0].Name)
	assert.Equal(t, "diagnostics_Image-interpolated_Mean", got[1].Name)
	assert.Equal(t, "original_firstorder_Mean", got[2].Name)

	assert.Empty(t, r.Features(10))
	assert.Len(t, r.Features(-1), 5)
}

func TestIsShape(t *testing.T) {
	for name, want := range map[string]bool{
		"original_shape_VoxelVolume":         true,
		"original_shape2D_Perimeter":         false,
		"log-sigma-3-0-mm-3D_shape_Volume":   false,
		"original_firstorder_Mean":           false,
		"log-sigma-3-0-mm-3D_glcm_Contrast":  false,
		"gradient_firstorder_10Percentile":   false,
		"Patient":                            false,
		"diagnostics_Mask-original_VoxelNum": false,
	} {
		assert.Equal(t, want, IsShape(name), name)
	}
}

func TestParseAndFormatValue(t *testing.T) {
	assert.Equal(t, 0.25, ParseValue(" 0.25"))
	assert.Equal(t, "(1, 2, 3)", ParseValue("(1, 2, 3)"))
	assert.Equal(t, "0.25", FormatValue(0.25))
	assert.Equal(t, "7", FormatValue(7))
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "x", FormatValue("x"))
}

func TestLookup(t *testing.T) {
	r := Record{{Name: "a", Value: 1.0}, {Name: "b", Value: "two"}}
	v, ok := r.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "two", v)
	_, ok = r.Lookup("c")
	assert.False(t, ok)
}
