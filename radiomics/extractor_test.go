package radiomics

import (
	"context"
	"strings"
	"testing"

	"github.com/carbocation/radiomix/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampImage(n int) *Volume {
	v := NewVolume([3]int{n, n, n}, [3]float64{1, 1, 1})
	for i := range v.Data {
		x, y, z := v.Coords(i)
		v.Data[i] = float64(x+y+z) / 4
	}
	return v
}

func TestNativeComputeLayout(t *testing.T) {
	e, err := NewNativeExtractor(DefaultSettings(), nil)
	require.NoError(t, err)

	mask, err := NewMask(cube(6, 3, 1, 1), 1)
	require.NoError(t, err)

	rec, err := e.Compute(context.Background(), rampImage(6), mask)
	require.NoError(t, err)

	for i := 0; i < features.DiagnosticsEntries; i++ {
		assert.True(t, strings.HasPrefix(rec[i].Name, "diagnostics_"), rec[i].Name)
	}
	assert.False(t, strings.HasPrefix(rec[features.DiagnosticsEntries].Name, "diagnostics_"))
	assert.Equal(t, "original_shape_Elongation", rec[features.DiagnosticsEntries].Name)

	glcm := len(DefaultGLCMFeatures)
	want := features.DiagnosticsEntries + len(ShapeFeatures) + 3*(len(FirstOrderFeatures)+glcm)
	assert.Len(t, rec, want)

	for _, name := range []string{
		"original_firstorder_Mean",
		"original_glcm_Contrast",
		"log-sigma-3-0-mm-3D_firstorder_Median",
		"log-sigma-3-0-mm-3D_glcm_Idmn",
		"gradient_firstorder_Variance",
		"gradient_glcm_MCC",
	} {
		_, ok := rec.Lookup(name)
		assert.True(t, ok, name)
	}
	_, ok := rec.Lookup("original_glcm_SumAverage")
	assert.False(t, ok)

	voxels, _ := rec.Lookup("diagnostics_Mask-original_VoxelNum")
	assert.Equal(t, 27, voxels)
	bbox, _ := rec.Lookup("diagnostics_Mask-original_BoundingBox")
	assert.Equal(t, "(1, 1, 1, 3, 3, 3)", bbox)

	// Shape comes only from the original image.
	for _, e := range rec.Features(features.DiagnosticsEntries) {
		if features.IsShape(e.Name) {
			assert.True(t, strings.HasPrefix(e.Name, "original_"), e.Name)
		}
	}
}

func TestNativeExtractorValidation(t *testing.T) {
	s := DefaultSettings()
	s.Setting.ResampledPixelSpacing = []float64{1, 1, 1}
	_, err := NewNativeExtractor(s, nil)
	assert.Error(t, err)

	s = DefaultSettings()
	s.ImageType["Wavelet"] = ImageTypeOptions{}
	_, err = NewNativeExtractor(s, nil)
	assert.Error(t, err)

	s = DefaultSettings()
	s.FeatureClass[ClassGLCM] = []string{"Contrast", "NotAFeature"}
	_, err = NewNativeExtractor(s, nil)
	assert.Error(t, err)

	s = DefaultSettings()
	s.FeatureClass = map[string][]string{ClassGLSZM: nil}
	_, err = NewNativeExtractor(s, nil)
	assert.Error(t, err)
}

func TestNativeCancelled(t *testing.T) {
	e, err := NewNativeExtractor(DefaultSettings(), nil)
	require.NoError(t, err)
	mask, err := NewMask(cube(4, 2, 1, 1), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Compute(ctx, rampImage(4), mask)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNativeExtractMissingImage(t *testing.T) {
	e, err := NewNativeExtractor(DefaultSettings(), nil)
	require.NoError(t, err)
	dir := t.TempDir()
	_, err = e.Extract(context.Background(), dir+"/P1_1.nii", dir+"/P1_mask.nii")
	assert.Error(t, err)
}

func TestSelectFeaturesOrder(t *testing.T) {
	names, err := selectFeatures(ClassGLCM, GLCMFeatures, []string{"SumSquares", "Contrast"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Contrast", "SumSquares"}, names)

	names, err = selectFeatures(ClassFirstOrder, FirstOrderFeatures, nil)
	require.NoError(t, err)
	assert.Equal(t, FirstOrderFeatures, names)
}
