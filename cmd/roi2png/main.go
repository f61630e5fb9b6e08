// roi2png renders every axial slice that intersects the region of interest as
// a PNG, with the image in grayscale and the masked voxels tinted red, for
// checking that masks line up with their channel images.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/carbocation/radiomix/radiomics"
	"github.com/disintegration/imaging"
)

func main() {
	var imagePath, maskPath, output string
	var label, scale int

	flag.StringVar(&imagePath, "image", "", "Channel image (.nii or .nii.gz).")
	flag.StringVar(&maskPath, "mask", "", "Mask with the same geometry as -image.")
	flag.StringVar(&output, "out", "", "Folder where the pngs will be emitted. Filenames will be {image_filename}.z{z depth}.png.")
	flag.IntVar(&label, "label", 1, "Mask label of the region of interest.")
	flag.IntVar(&scale, "scale", 4, "Integer upscaling factor applied to each slice.")
	flag.Parse()

	if imagePath == "" || maskPath == "" || output == "" || scale < 1 {
		flag.PrintDefaults()
		os.Exit(1)
	}

	prefix := filepath.Base(imagePath)
	prefix = strings.TrimSuffix(prefix, ".nii.gz")
	prefix = strings.TrimSuffix(prefix, ".nii")

	if err := os.MkdirAll(output, os.ModePerm); err != nil {
		log.Fatalln(err)
	}

	img, err := radiomics.LoadVolume(imagePath)
	if err != nil {
		log.Fatalln(err)
	}
	labels, err := radiomics.LoadVolume(maskPath)
	if err != nil {
		log.Fatalln(err)
	}
	if err := img.SameGeometry(labels); err != nil {
		log.Fatalln(err)
	}
	mask, err := radiomics.NewMask(labels, label)
	if err != nil {
		log.Fatalln(err)
	}

	if err := roi2png(img, mask, prefix, output, scale); err != nil {
		log.Fatalln(err)
	}
}

func roi2png(img *radiomics.Volume, mask *radiomics.Mask, prefix, output string, scale int) error {
	xm, ym, zm := img.Size[0], img.Size[1], img.Size[2]

	// Window on the ROI intensities so that the lesion keeps its contrast.
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range mask.Values(img) {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	roiSlices := map[int]bool{}
	for _, idx := range mask.Voxels {
		_, _, z := img.Coords(idx)
		roiSlices[z] = true
	}

	for z := 0; z < zm; z++ {
		if !roiSlices[z] {
			continue
		}

		colImg := image.NewNRGBA(image.Rect(0, 0, xm, ym))
		for x := 0; x < xm; x++ {
			for y := 0; y < ym; y++ {
				g := applyWindowScaling(img.At(x, y, z), lo, hi)
				col := color.NRGBA{R: g, G: g, B: g, A: 255}
				if mask.Contains(x, y, z) {
					col.R = uint8((uint16(g) + 255) / 2)
					col.G = g / 2
					col.B = g / 2
				}
				// Image rows run bottom-up in NIfTI.
				colImg.SetNRGBA(x, ym-1-y, col)
			}
		}

		out := imaging.Resize(colImg, xm*scale, ym*scale, imaging.NearestNeighbor)
		name := filepath.Join(output, fmt.Sprintf("%s.z%06d.png", prefix, z))
		if err := imaging.Save(out, name); err != nil {
			return err
		}

		// Emit metadata about each PNG
		fmt.Printf("%s\t%d\t%g\t%g\t%g\n", filepath.Base(name), z, img.Spacing[0], img.Spacing[1], img.Spacing[2])
	}

	return nil
}

func applyWindowScaling(intensity, lo, hi float64) uint8 {
	if hi <= lo {
		return 128
	}
	if intensity < lo {
		intensity = lo
	}
	if intensity > hi {
		intensity = hi
	}

	return uint8(math.Round(255 * (intensity - lo) / (hi - lo)))
}
