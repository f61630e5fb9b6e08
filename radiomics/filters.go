package radiomics

import (
	"math"
)

// clamp restricts i to [0, n).
func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// GradientMagnitude computes the central-difference gradient magnitude in
// physical units. Edges use one-sided differences.
func GradientMagnitude(v *Volume) *Volume {
	out := NewVolume(v.Size, v.Spacing)
	for z := 0; z < v.Size[2]; z++ {
		for y := 0; y < v.Size[1]; y++ {
			for x := 0; x < v.Size[0]; x++ {
				p := [3]int{x, y, z}
				sum := 0.0
				for axis := 0; axis < 3; axis++ {
					if v.Size[axis] < 2 {
						continue
					}
					hi, lo := p, p
					hi[axis] = clamp(p[axis]+1, v.Size[axis])
					lo[axis] = clamp(p[axis]-1, v.Size[axis])
					span := float64(hi[axis]-lo[axis]) * v.Spacing[axis]
					g := (v.At(hi[0], hi[1], hi[2]) - v.At(lo[0], lo[1], lo[2])) / span
					sum += g * g
				}
				out.Set(x, y, z, math.Sqrt(sum))
			}
		}
	}
	return out
}

// gaussianKernel returns a normalized kernel for a standard deviation given in
// voxels, truncated at four deviations.
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(4 * sigma))
	if radius < 1 {
		radius = 1
	}
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range k {
		d := float64(i - radius)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// smoothAxis convolves v with kernel along one axis, replicating edge voxels.
func smoothAxis(v *Volume, kernel []float64, axis int) *Volume {
	out := NewVolume(v.Size, v.Spacing)
	radius := len(kernel) / 2
	n := v.Size[axis]
	for z := 0; z < v.Size[2]; z++ {
		for y := 0; y < v.Size[1]; y++ {
			for x := 0; x < v.Size[0]; x++ {
				p := [3]int{x, y, z}
				sum := 0.0
				for k, w := range kernel {
					q := p
					q[axis] = clamp(p[axis]+k-radius, n)
					sum += w * v.At(q[0], q[1], q[2])
				}
				out.Set(x, y, z, sum)
			}
		}
	}
	return out
}

// LaplacianOfGaussian smooths v with an isotropic Gaussian of sigma mm and
// returns the discrete Laplacian of the result. Axes of length one are
// treated as flat.
func LaplacianOfGaussian(v *Volume, sigma float64) *Volume {
	smoothed := v
	for axis := 0; axis < 3; axis++ {
		if v.Size[axis] < 2 {
			continue
		}
		smoothed = smoothAxis(smoothed, gaussianKernel(sigma/v.Spacing[axis]), axis)
	}

	out := NewVolume(v.Size, v.Spacing)
	for z := 0; z < v.Size[2]; z++ {
		for y := 0; y < v.Size[1]; y++ {
			for x := 0; x < v.Size[0]; x++ {
				p := [3]int{x, y, z}
				center := smoothed.At(x, y, z)
				sum := 0.0
				for axis := 0; axis < 3; axis++ {
					if v.Size[axis] < 2 {
						continue
					}
					hi, lo := p, p
					hi[axis] = clamp(p[axis]+1, v.Size[axis])
					lo[axis] = clamp(p[axis]-1, v.Size[axis])
					h := v.Spacing[axis]
					sum += (smoothed.At(hi[0], hi[1], hi[2]) - 2*center + smoothed.At(lo[0], lo[1], lo[2])) / (h * h)
				}
				out.Set(x, y, z, sum)
			}
		}
	}
	return out
}
