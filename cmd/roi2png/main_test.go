package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carbocation/radiomix/radiomics"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyWindowScaling(t *testing.T) {
	assert.Equal(t, uint8(0), applyWindowScaling(-5, 0, 10))
	assert.Equal(t, uint8(255), applyWindowScaling(20, 0, 10))
	assert.Equal(t, uint8(128), applyWindowScaling(5, 0, 10))
	assert.Equal(t, uint8(128), applyWindowScaling(3, 3, 3))
}

func TestROI2PNG(t *testing.T) {
	img := radiomics.NewVolume([3]int{3, 2, 3}, [3]float64{1, 1, 2})
	labels := radiomics.NewVolume(img.Size, img.Spacing)
	for i := range img.Data {
		img.Data[i] = float64(i)
	}
	labels.Set(1, 1, 1, 1)
	labels.Set(2, 0, 1, 1)
	mask, err := radiomics.NewMask(labels, 1)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, roi2png(img, mask, "P1_1", dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "P1_1.z000001.png", entries[0].Name())

	out, err := imaging.Open(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, 6, out.Bounds().Dx())
	assert.Equal(t, 4, out.Bounds().Dy())
}
