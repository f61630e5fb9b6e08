// Package radiomics computes radiomic features for an (image, mask) pair,
// either natively from NIfTI volumes or by running the pyradiomics command
// line tool.
package radiomics

import (
	"context"
	"fmt"

	"github.com/carbocation/pfx"
	"github.com/carbocation/radiomix/features"
	"github.com/inconshreveable/log15"
)

// Extractor computes one feature record per (image, mask) pair. The record
// starts with features.DiagnosticsEntries metadata entries.
type Extractor interface {
	Extract(ctx context.Context, imagePath, maskPath string) (features.Record, error)
}

// nativeClasses maps the classes NativeExtractor computes to their catalogs.
var nativeClasses = map[string][]string{
	ClassFirstOrder: FirstOrderFeatures,
	ClassGLCM:       GLCMFeatures,
	ClassShape:      ShapeFeatures,
}

// NativeExtractor computes shape, first-order and GLCM features in Go.
type NativeExtractor struct {
	settings Settings
	enabled  map[string][]string
	log      log15.Logger
}

// NewNativeExtractor validates settings against what can be computed
// natively. Feature classes without a native implementation are reported
// once through log and skipped.
func NewNativeExtractor(s Settings, log log15.Logger) (*NativeExtractor, error) {
	if log == nil {
		log = log15.New()
		log.SetHandler(log15.DiscardHandler())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(s.Setting.ResampledPixelSpacing) > 0 {
		return nil, pfx.Err(fmt.Errorf("resampledPixelSpacing is not supported by the native extractor"))
	}
	for _, name := range s.EnabledImageTypes() {
		switch name {
		case ImageOriginal, ImageLoG, ImageGradient:
		default:
			return nil, pfx.Err(fmt.Errorf("image type %q is not supported by the native extractor", name))
		}
	}

	e := &NativeExtractor{settings: s, enabled: map[string][]string{}, log: log}
	for class, requested := range s.FeatureClass {
		catalog, ok := nativeClasses[class]
		if !ok {
			log.Warn("feature class not computed by the native extractor; skipping", "class", class)
			continue
		}
		names, err := selectFeatures(class, catalog, requested)
		if err != nil {
			return nil, err
		}
		e.enabled[class] = names
	}
	if len(e.enabled) == 0 {
		return nil, pfx.Err(fmt.Errorf("none of the enabled feature classes can be computed natively"))
	}

	log.Debug("native extractor ready", "settings", s.String(), "imageTypes", describeImageTypes(s))

	return e, nil
}

// selectFeatures returns the requested features in catalog order; an empty
// request selects the whole class.
func selectFeatures(class string, catalog, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return catalog, nil
	}

	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}

	var out []string
	for _, name := range catalog {
		if want[name] {
			out = append(out, name)
			delete(want, name)
		}
	}
	for name := range want {
		return nil, pfx.Err(fmt.Errorf("unknown %s feature %q", class, name))
	}
	return out, nil
}

// Extract loads the image and mask and computes the enabled features.
func (e *NativeExtractor) Extract(ctx context.Context, imagePath, maskPath string) (features.Record, error) {
	img, err := LoadVolume(imagePath)
	if err != nil {
		return nil, err
	}
	labels, err := LoadVolume(maskPath)
	if err != nil {
		return nil, err
	}
	if err := img.SameGeometry(labels); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s vs %s: %w", imagePath, maskPath, err))
	}
	mask, err := NewMask(labels, e.settings.Setting.Label)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", maskPath, err))
	}

	e.log.Debug("computing features", "image", imagePath, "mask", maskPath, "voxels", len(mask.Voxels))

	return e.Compute(ctx, img, mask)
}

// Compute runs the extraction on volumes already in memory.
func (e *NativeExtractor) Compute(ctx context.Context, img *Volume, mask *Mask) (features.Record, error) {
	out := diagnostics(e.settings, img, mask)

	if names, ok := e.enabled[ClassShape]; ok {
		emit(&out, ImageTypeName(ImageOriginal, 0), ClassShape, names, Shape(mask))
	}

	for _, view := range e.views(img) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		values := mask.Values(view.volume)
		roiLevels := Discretize(values, e.settings.Setting.BinWidth)

		for _, class := range e.settings.EnabledClasses() {
			names, ok := e.enabled[class]
			if !ok {
				continue
			}

			switch class {
			case ClassFirstOrder:
				fo, err := FirstOrder(values, roiLevels, img.VoxelVolume())
				if err != nil {
					return nil, pfx.Err(err)
				}
				emit(&out, view.name, class, names, fo)
			case ClassGLCM:
				levels := make([]int, len(view.volume.Data))
				for i, idx := range mask.Voxels {
					levels[idx] = roiLevels[i]
				}
				emit(&out, view.name, class, names, GLCM(mask, levels))
			}
		}
	}

	return out, nil
}

type view struct {
	name   string
	volume *Volume
}

// views derives the filtered images in emission order.
func (e *NativeExtractor) views(img *Volume) []view {
	var out []view
	for _, imageType := range e.settings.EnabledImageTypes() {
		switch imageType {
		case ImageOriginal:
			out = append(out, view{name: ImageTypeName(ImageOriginal, 0), volume: img})
		case ImageLoG:
			for _, sigma := range e.settings.ImageType[ImageLoG].Sigma {
				out = append(out, view{name: ImageTypeName(ImageLoG, sigma), volume: LaplacianOfGaussian(img, sigma)})
			}
		case ImageGradient:
			out = append(out, view{name: ImageTypeName(ImageGradient, 0), volume: GradientMagnitude(img)})
		}
	}
	return out
}

func emit(r *features.Record, imageType, class string, names []string, values map[string]float64) {
	for _, name := range names {
		r.Add(imageType+"_"+class+"_"+name, values[name])
	}
}
