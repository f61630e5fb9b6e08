package radiomics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ShapeFeatures lists the shape features in emission order. Volume and
// surface are measured on the voxel representation of the mask.
var ShapeFeatures = []string{
	"Elongation", "Flatness", "LeastAxisLength", "MajorAxisLength",
	"Maximum2DDiameterColumn", "Maximum2DDiameterRow", "Maximum2DDiameterSlice",
	"Maximum3DDiameter", "MinorAxisLength", "Sphericity", "SurfaceArea",
	"SurfaceVolumeRatio", "VoxelVolume",
}

// Shape describes the size and form of a mask.
func Shape(m *Mask) map[string]float64 {
	g := m.Geometry
	sp := g.Spacing
	faceArea := [3]float64{sp[1] * sp[2], sp[0] * sp[2], sp[0] * sp[1]}

	volume := float64(len(m.Voxels)) * g.VoxelVolume()

	area := 0.0
	var border [][3]int
	for _, idx := range m.Voxels {
		x, y, z := g.Coords(idx)
		exposed := false
		for _, d := range faceNeighbors {
			if m.Contains(x+d[0], y+d[1], z+d[2]) {
				continue
			}
			exposed = true
			for axis := range d {
				if d[axis] != 0 {
					area += faceArea[axis]
				}
			}
		}
		if exposed {
			border = append(border, [3]int{x, y, z})
		}
	}

	d3, dSlice, dColumn, dRow := diameters(border, sp)

	major, minor, least := principalAxes(m)

	out := map[string]float64{
		"LeastAxisLength":         4 * math.Sqrt(least),
		"MajorAxisLength":         4 * math.Sqrt(major),
		"MinorAxisLength":         4 * math.Sqrt(minor),
		"Maximum2DDiameterColumn": dColumn,
		"Maximum2DDiameterRow":    dRow,
		"Maximum2DDiameterSlice":  dSlice,
		"Maximum3DDiameter":       d3,
		"SurfaceArea":             area,
		"SurfaceVolumeRatio":      area / volume,
		"Sphericity":              math.Cbrt(36*math.Pi*volume*volume) / area,
		"VoxelVolume":             volume,
	}
	if major > 0 {
		out["Elongation"] = math.Sqrt(minor / major)
		out["Flatness"] = math.Sqrt(least / major)
	}

	return out
}

// diameters returns the largest distance between border voxel centres overall
// and within an axial slice (same z), a column plane (same x) and a row plane
// (same y).
func diameters(points [][3]int, sp [3]float64) (d3, slice, column, row float64) {
	for i := 0; i < len(points); i++ {
		a := points[i]
		for j := i + 1; j < len(points); j++ {
			b := points[j]
			dx := float64(a[0]-b[0]) * sp[0]
			dy := float64(a[1]-b[1]) * sp[1]
			dz := float64(a[2]-b[2]) * sp[2]
			d := dx*dx + dy*dy + dz*dz
			if d > d3 {
				d3 = d
			}
			if a[2] == b[2] && d > slice {
				slice = d
			}
			if a[0] == b[0] && d > column {
				column = d
			}
			if a[1] == b[1] && d > row {
				row = d
			}
		}
	}
	return math.Sqrt(d3), math.Sqrt(slice), math.Sqrt(column), math.Sqrt(row)
}

// principalAxes returns the eigenvalues of the covariance of the physical
// voxel coordinates, largest first.
func principalAxes(m *Mask) (major, minor, least float64) {
	if len(m.Voxels) < 2 {
		return 0, 0, 0
	}

	g := m.Geometry
	coords := mat.NewDense(len(m.Voxels), 3, nil)
	for i, idx := range m.Voxels {
		x, y, z := g.Coords(idx)
		coords.Set(i, 0, float64(x)*g.Spacing[0])
		coords.Set(i, 1, float64(y)*g.Spacing[1])
		coords.Set(i, 2, float64(z)*g.Spacing[2])
	}

	cov := mat.NewSymDense(3, nil)
	stat.CovarianceMatrix(cov, coords, nil)

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, false); !ok {
		return 0, 0, 0
	}
	vals := eig.Values(nil) // ascending
	for i := range vals {
		if vals[i] < 0 {
			vals[i] = 0
		}
	}

	return vals[2], vals[1], vals[0]
}
