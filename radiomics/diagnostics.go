package radiomics

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/carbocation/radiomix/compileinfo"
	"github.com/carbocation/radiomix/features"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// diagnostics returns the metadata block that precedes the features: five
// version entries, two configuration entries, seven image entries and eight
// mask entries, features.DiagnosticsEntries in total.
func diagnostics(s Settings, img *Volume, mask *Mask) features.Record {
	info := compileinfo.Get()

	var r features.Record
	r.Add("diagnostics_Versions_Radiomix", info.Revision())
	r.Add("diagnostics_Versions_Go", runtime.Version())
	r.Add("diagnostics_Versions_Nifti", info.Dependency("github.com/henghuang/nifti"))
	r.Add("diagnostics_Versions_Gonum", info.Dependency("gonum.org/v1/gonum"))
	r.Add("diagnostics_Versions_Stats", info.Dependency("github.com/montanaflynn/stats"))

	r.Add("diagnostics_Configuration_Settings", s.String())
	r.Add("diagnostics_Configuration_EnabledImageTypes", describeImageTypes(s))

	minimum, _ := stats.Min(img.Data)
	maximum, _ := stats.Max(img.Data)
	r.Add("diagnostics_Image-original_Hash", hashVolume(img))
	r.Add("diagnostics_Image-original_Dimensionality", fmt.Sprintf("%dD", dimensionality(img)))
	r.Add("diagnostics_Image-original_Spacing", tupleFloat(img.Spacing[:]))
	r.Add("diagnostics_Image-original_Size", tupleInt(img.Size[:]))
	r.Add("diagnostics_Image-original_Mean", stat.Mean(img.Data, nil))
	r.Add("diagnostics_Image-original_Minimum", minimum)
	r.Add("diagnostics_Image-original_Maximum", maximum)

	lo, size := mask.BoundingBox()
	com, comIndex := centerOfMass(mask)
	r.Add("diagnostics_Mask-original_Hash", hashVolume(mask.Geometry))
	r.Add("diagnostics_Mask-original_Spacing", tupleFloat(mask.Geometry.Spacing[:]))
	r.Add("diagnostics_Mask-original_Size", tupleInt(mask.Geometry.Size[:]))
	r.Add("diagnostics_Mask-original_BoundingBox", tupleInt(append(lo[:], size[:]...)))
	r.Add("diagnostics_Mask-original_VoxelNum", len(mask.Voxels))
	r.Add("diagnostics_Mask-original_VolumeNum", mask.Components())
	r.Add("diagnostics_Mask-original_CenterOfMassIndex", tupleFloat(comIndex[:]))
	r.Add("diagnostics_Mask-original_CenterOfMass", tupleFloat(com[:]))

	return r
}

func describeImageTypes(s Settings) string {
	var parts []string
	for _, name := range s.EnabledImageTypes() {
		opts := s.ImageType[name]
		if len(opts.Sigma) == 0 {
			parts = append(parts, name+": {}")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: {sigma: %s}", name, tupleFloat(opts.Sigma)))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func dimensionality(v *Volume) int {
	d := 0
	for _, s := range v.Size {
		if s > 1 {
			d++
		}
	}
	return d
}

// hashVolume is the SHA-1 of the voxel values as little-endian float64.
func hashVolume(v *Volume) string {
	h := sha1.New()
	buf := make([]byte, 8)
	for _, x := range v.Data {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(x))
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// centerOfMass returns the mask centroid in physical units (origin at voxel
// 0) and in voxel indices.
func centerOfMass(m *Mask) (physical, index [3]float64) {
	for _, idx := range m.Voxels {
		x, y, z := m.Geometry.Coords(idx)
		index[0] += float64(x)
		index[1] += float64(y)
		index[2] += float64(z)
	}
	n := float64(len(m.Voxels))
	for a := range index {
		index[a] /= n
		physical[a] = index[a] * m.Geometry.Spacing[a]
	}
	return
}

func tupleFloat(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = pyFloat(x)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func tupleInt(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
