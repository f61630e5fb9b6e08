package aggregate

import (
	"fmt"
	"testing"

	"github.com/carbocation/radiomix/features"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecord mimics an extractor result: DiagnosticsEntries metadata entries
// followed by two shape and two intensity features whose values encode the
// channel they came from.
func fakeRecord(channel string, scale float64) features.Record {
	var r features.Record
	for i := 0; i < features.DiagnosticsEntries; i++ {
		r.Add(fmt.Sprintf("diagnostics_Fake_%02d", i), "meta")
	}
	r.Add("original_shape_VoxelVolume", 100.0)
	r.Add("original_shape_Sphericity", 0.5)
	r.Add("original_firstorder_Mean", scale)
	r.Add("log-sigma-3-0-mm-3D_glcm_Contrast", scale*2)
	r.Add("Channel", channel)
	return r
}

func TestMergeNamesColumns(t *testing.T) {
	m := NewMerger("1")
	rec := m.Merge("P7", []ChannelResult{
		{Channel: "1", Record: fakeRecord("1", 1)},
		{Channel: "2", Record: fakeRecord("2", 2)},
		{Channel: "PGSE", Record: fakeRecord("PGSE", 3)},
	})

	assert.Equal(t, []string{
		"original_shape_VoxelVolume",
		"original_shape_Sphericity",
		"original_firstorder_Mean_1",
		"log-sigma-3-0-mm-3D_glcm_Contrast_1",
		"Channel_1",
		"original_firstorder_Mean_2",
		"log-sigma-3-0-mm-3D_glcm_Contrast_2",
		"Channel_2",
		"original_firstorder_Mean_PGSE",
		"log-sigma-3-0-mm-3D_glcm_Contrast_PGSE",
		"Channel_PGSE",
		"Patient",
	}, rec.Keys())

	v, _ := rec.Get("original_firstorder_Mean_PGSE")
	assert.Equal(t, 3.0, v)
	assert.Equal(t, "P7", rec.Patient())
	assert.Equal(t, rec.Len()-1, rec.FeatureCount())
}

func TestMergeShapeOnlyFromReference(t *testing.T) {
	m := NewMerger("1")

	ref := fakeRecord("1", 1)
	other := fakeRecord("2", 2)
	other[features.DiagnosticsEntries].Value = 999.0 // a differing shape value must be ignored

	rec := m.Merge("P1", []ChannelResult{
		{Channel: "2", Record: other},
		{Channel: "1", Record: ref},
	})

	v, ok := rec.Get("original_shape_VoxelVolume")
	require.True(t, ok)
	assert.Equal(t, 100.0, v)

	shapeColumns := 0
	for _, k := range rec.Keys() {
		if features.IsShape(k) {
			shapeColumns++
		}
	}
	assert.Equal(t, 2, shapeColumns)
}

func TestMergeWithoutReferenceChannelHasNoShape(t *testing.T) {
	rec := NewMerger("1").Merge("P3", []ChannelResult{
		{Channel: "2", Record: fakeRecord("2", 2)},
	})
	_, ok := rec.Get("original_shape_VoxelVolume")
	assert.False(t, ok)
	_, ok = rec.Get("original_firstorder_Mean_2")
	assert.True(t, ok)
}

func TestMergeChannelIndependence(t *testing.T) {
	m := NewMerger("")
	all := m.Merge("P1", []ChannelResult{
		{Channel: "1", Record: fakeRecord("1", 1)},
		{Channel: "2", Record: fakeRecord("2", 2)},
		{Channel: "PGSE", Record: fakeRecord("PGSE", 3)},
	})
	without2 := m.Merge("P1", []ChannelResult{
		{Channel: "1", Record: fakeRecord("1", 1)},
		{Channel: "PGSE", Record: fakeRecord("PGSE", 3)},
	})

	for _, k := range without2.Keys() {
		want, ok := all.Get(k)
		require.True(t, ok, k)
		got, _ := without2.Get(k)
		assert.Equal(t, want, got, k)
	}
	for _, k := range all.Keys() {
		if _, ok := without2.Get(k); !ok {
			assert.Regexp(t, `_2$`, k)
		}
	}
}

func TestMergeDiagnosticsOnly(t *testing.T) {
	var r features.Record
	for i := 0; i < features.DiagnosticsEntries; i++ {
		r.Add(fmt.Sprintf("diagnostics_%d", i), i)
	}
	rec := NewMerger("1").Merge("P9", []ChannelResult{{Channel: "1", Record: r}})
	assert.Equal(t, []string{"Patient"}, rec.Keys())
	assert.Equal(t, 0, rec.FeatureCount())
}

func TestMergeEmpty(t *testing.T) {
	rec := NewMerger("1").Merge("P4", nil)
	assert.Equal(t, []string{"Patient"}, rec.Keys())
	assert.Equal(t, "P4", rec.Patient())
}

func TestMergeOnlySkipsLeadingMetadata(t *testing.T) {
	r := fakeRecord("2", 2)[:features.DiagnosticsEntries]
	r.Add("diagnostics_Image-interpolated_Spacing", "(1.0, 1.0, 1.0)")
	r.Add("original_shape2D_Perimeter", 12.0)
	r.Add("original_shape_VoxelVolume", 100.0)
	r.Add("original_firstorder_Mean", 2.0)

	rec := NewMerger("1").Merge("P3", []ChannelResult{{Channel: "2", Record: r}})
	assert.Equal(t, []string{
		"diagnostics_Image-interpolated_Spacing_2",
		"original_shape2D_Perimeter_2",
		"original_firstorder_Mean_2",
		"Patient",
	}, rec.Keys())
}
