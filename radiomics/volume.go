package radiomics

import (
	"fmt"
	"math"
	"os"

	"github.com/carbocation/pfx"
	"github.com/henghuang/nifti"
	"github.com/theodesp/unionfind"
)

// Volume is a 3-D scalar image with x varying fastest.
type Volume struct {
	Size    [3]int
	Spacing [3]float64
	Data    []float64
}

func NewVolume(size [3]int, spacing [3]float64) *Volume {
	return &Volume{
		Size:    size,
		Spacing: spacing,
		Data:    make([]float64, size[0]*size[1]*size[2]),
	}
}

func (v *Volume) Index(x, y, z int) int {
	return x + v.Size[0]*(y+v.Size[1]*z)
}

func (v *Volume) At(x, y, z int) float64 {
	return v.Data[v.Index(x, y, z)]
}

func (v *Volume) Set(x, y, z int, value float64) {
	v.Data[v.Index(x, y, z)] = value
}

// Coords inverts Index.
func (v *Volume) Coords(i int) (x, y, z int) {
	x = i % v.Size[0]
	y = (i / v.Size[0]) % v.Size[1]
	z = i / (v.Size[0] * v.Size[1])
	return
}

func (v *Volume) VoxelVolume() float64 {
	return v.Spacing[0] * v.Spacing[1] * v.Spacing[2]
}

// geometryTolerance bounds spacing differences between an image and its mask.
const geometryTolerance = 1e-5

// SameGeometry returns an error describing the first mismatch between v and
// other.
func (v *Volume) SameGeometry(other *Volume) error {
	if v.Size != other.Size {
		return fmt.Errorf("size mismatch: image %v, mask %v", v.Size, other.Size)
	}
	for i := range v.Spacing {
		if math.Abs(v.Spacing[i]-other.Spacing[i]) > geometryTolerance {
			return fmt.Errorf("spacing mismatch: image %v, mask %v", v.Spacing, other.Spacing)
		}
	}
	return nil
}

// LoadVolume reads the first timepoint of a NIfTI-1 file (.nii or .nii.gz).
func LoadVolume(path string) (*Volume, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, pfx.Err(err)
	}

	img, hdr, err := safelyLoadNifti(path)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}

	dims := img.GetDims()
	xm, ym, zm := dims[0], dims[1], dims[2]
	if xm < 1 || ym < 1 {
		return nil, pfx.Err(fmt.Errorf("%s: unusable dimensions %v", path, dims))
	}
	if zm < 1 {
		zm = 1
	}

	spacing := [3]float64{1, 1, 1}
	for i := 0; i < 3; i++ {
		if s := float64(hdr.Pixdim[i+1]); s > 0 {
			spacing[i] = s
		}
	}

	out := NewVolume([3]int{xm, ym, zm}, spacing)
	for z := 0; z < zm; z++ {
		for y := 0; y < ym; y++ {
			for x := 0; x < xm; x++ {
				out.Set(x, y, z, float64(img.GetAt(x, y, z, 0)))
			}
		}
	}

	return out, nil
}

// safelyLoadNifti turns the panics the nifti library raises on malformed
// input into errors.
func safelyLoadNifti(path string) (img nifti.Nifti1Image, hdr nifti.Nifti1Header, err error) {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			err = fmt.Errorf("%v", panicErr)
		}
	}()

	img.LoadImage(path, true)
	hdr.LoadHeader(path)

	return
}

// Mask is the set of voxels carrying a label, in index order.
type Mask struct {
	Geometry *Volume
	Voxels   []int
	inside   []bool
}

// NewMask selects the voxels of labels equal to label.
func NewMask(labels *Volume, label int) (*Mask, error) {
	m := &Mask{
		Geometry: labels,
		inside:   make([]bool, len(labels.Data)),
	}
	for i, v := range labels.Data {
		if int(math.Round(v)) == label {
			m.inside[i] = true
			m.Voxels = append(m.Voxels, i)
		}
	}
	if len(m.Voxels) == 0 {
		return nil, fmt.Errorf("label %d not present in mask", label)
	}
	return m, nil
}

// Contains reports whether (x, y, z) is inside the volume and the mask.
func (m *Mask) Contains(x, y, z int) bool {
	s := m.Geometry.Size
	if x < 0 || y < 0 || z < 0 || x >= s[0] || y >= s[1] || z >= s[2] {
		return false
	}
	return m.inside[m.Geometry.Index(x, y, z)]
}

// Values returns the image intensities under the mask.
func (m *Mask) Values(img *Volume) []float64 {
	out := make([]float64, len(m.Voxels))
	for i, idx := range m.Voxels {
		out[i] = img.Data[idx]
	}
	return out
}

// BoundingBox returns the lower corner and extent of the mask, in voxels.
func (m *Mask) BoundingBox() (lo, size [3]int) {
	hi := [3]int{-1, -1, -1}
	lo = m.Geometry.Size
	for _, idx := range m.Voxels {
		x, y, z := m.Geometry.Coords(idx)
		for a, c := range [3]int{x, y, z} {
			if c < lo[a] {
				lo[a] = c
			}
			if c > hi[a] {
				hi[a] = c
			}
		}
	}
	for a := range size {
		size[a] = hi[a] - lo[a] + 1
	}
	return
}

var faceNeighbors = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// Components counts face-connected regions of the mask.
func (m *Mask) Components() int {
	ordinal := make(map[int]int, len(m.Voxels))
	for i, idx := range m.Voxels {
		ordinal[idx] = i
	}

	uf := unionfind.NewThreadSafeUnionFind(len(m.Voxels))
	for i, idx := range m.Voxels {
		x, y, z := m.Geometry.Coords(idx)
		for _, d := range faceNeighbors {
			nx, ny, nz := x+d[0], y+d[1], z+d[2]
			if !m.Contains(nx, ny, nz) {
				continue
			}
			uf.Union(i, ordinal[m.Geometry.Index(nx, ny, nz)])
		}
	}

	roots := make(map[int]struct{})
	for i := range m.Voxels {
		roots[uf.Root(i)] = struct{}{}
	}
	return len(roots)
}
