package radiomics

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Image type names as they appear in a params file.
const (
	ImageOriginal = "Original"
	ImageLoG      = "LoG"
	ImageGradient = "Gradient"
)

// Feature class names as they appear in a params file and in feature names.
const (
	ClassFirstOrder = "firstorder"
	ClassShape      = "shape"
	ClassGLCM       = "glcm"
	ClassGLDM       = "gldm"
	ClassGLRLM      = "glrlm"
	ClassGLSZM      = "glszm"
	ClassNGTDM      = "ngtdm"
)

// imageTypeOrder and classOrder fix the emission order, since the params file
// is decoded through maps.
var (
	imageTypeOrder = []string{ImageOriginal, ImageLoG, ImageGradient}
	classOrder     = []string{ClassFirstOrder, ClassGLCM, ClassGLDM, ClassGLRLM, ClassGLSZM, ClassNGTDM}
)

// Settings mirrors the layout of a pyradiomics parameter file.
type Settings struct {
	Setting      Setting                     `mapstructure:"setting" yaml:"setting"`
	ImageType    map[string]ImageTypeOptions `mapstructure:"imageType" yaml:"imageType"`
	FeatureClass map[string][]string         `mapstructure:"featureClass" yaml:"featureClass"`
}

type Setting struct {
	BinWidth              float64   `mapstructure:"binWidth" yaml:"binWidth"`
	Interpolator          string    `mapstructure:"interpolator" yaml:"interpolator"`
	Label                 int       `mapstructure:"label" yaml:"label"`
	ResampledPixelSpacing []float64 `mapstructure:"resampledPixelSpacing" yaml:"resampledPixelSpacing,omitempty"`
}

type ImageTypeOptions struct {
	Sigma []float64 `mapstructure:"sigma" yaml:"sigma,omitempty"`
}

// DefaultGLCMFeatures are the GLCM features enabled by default; SumAverage is
// left out as it is correlated with JointAverage.
var DefaultGLCMFeatures = []string{
	"Autocorrelation", "ClusterProminence", "ClusterShade", "ClusterTendency",
	"Contrast", "Correlation", "DifferenceAverage", "DifferenceEntropy",
	"DifferenceVariance", "JointEnergy", "JointEntropy", "Imc1", "Imc2", "Idm",
	"MCC", "Idmn", "Id", "Idn", "InverseVariance", "MaximumProbability",
	"JointAverage", "SumEntropy", "SumSquares",
}

// DefaultSettings is the configuration used for the diffusion datasets: fixed
// bin width 0.1, BSpline interpolation, LoG (sigma 3 mm) and gradient views on
// top of the original image.
func DefaultSettings() Settings {
	glcm := make([]string, len(DefaultGLCMFeatures))
	copy(glcm, DefaultGLCMFeatures)

	return Settings{
		Setting: Setting{
			BinWidth:     0.1,
			Interpolator: "sitkBSpline",
			Label:        1,
		},
		ImageType: map[string]ImageTypeOptions{
			ImageOriginal: {},
			ImageLoG:      {Sigma: []float64{3.0}},
			ImageGradient: {},
		},
		FeatureClass: map[string][]string{
			ClassFirstOrder: nil,
			ClassShape:      nil,
			ClassGLSZM:      nil,
			ClassGLRLM:      nil,
			ClassNGTDM:      nil,
			ClassGLDM:       nil,
			ClassGLCM:       glcm,
		},
	}
}

// LoadSettings reads a YAML parameter file. Keys that radiomix does not
// interpret are returned so that the caller can report them.
func LoadSettings(path string) (Settings, []string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, nil, pfx.Err(err)
	}

	return ParseSettings(b)
}

// ParseSettings decodes YAML parameter file contents. Unset values keep their
// defaults from DefaultSettings().Setting; image types and feature classes are
// taken as given.
func ParseSettings(b []byte) (Settings, []string, error) {
	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Settings{}, nil, pfx.Err(err)
	}

	out := Settings{Setting: DefaultSettings().Setting}
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return Settings{}, nil, pfx.Err(err)
	}
	if err := dec.Decode(raw); err != nil {
		return Settings{}, nil, pfx.Err(err)
	}

	if err := out.Validate(); err != nil {
		return Settings{}, nil, err
	}

	sort.Strings(md.Unused)

	return out, md.Unused, nil
}

// Validate checks values that would make extraction meaningless.
func (s Settings) Validate() error {
	if s.Setting.BinWidth <= 0 {
		return pfx.Err(fmt.Errorf("binWidth must be positive, got %v", s.Setting.BinWidth))
	}
	if len(s.ImageType) == 0 {
		return pfx.Err(fmt.Errorf("no image types enabled"))
	}
	if len(s.FeatureClass) == 0 {
		return pfx.Err(fmt.Errorf("no feature classes enabled"))
	}
	if opts, ok := s.ImageType[ImageLoG]; ok {
		if len(opts.Sigma) == 0 {
			return pfx.Err(fmt.Errorf("LoG image type enabled without sigma values"))
		}
		for _, sigma := range opts.Sigma {
			if sigma <= 0 {
				return pfx.Err(fmt.Errorf("LoG sigma must be positive, got %v", sigma))
			}
		}
	}
	return nil
}

// Marshal renders the settings as a pyradiomics parameter file.
func (s Settings) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return b, nil
}

// EnabledImageTypes lists enabled image type names in emission order,
// followed by any unrecognized ones in lexical order.
func (s Settings) EnabledImageTypes() []string {
	return ordered(keys(s.ImageType), imageTypeOrder)
}

// EnabledClasses lists enabled texture/intensity classes (not shape) in
// emission order.
func (s Settings) EnabledClasses() []string {
	var names []string
	for k := range s.FeatureClass {
		if strings.HasPrefix(k, ClassShape) {
			continue
		}
		names = append(names, k)
	}
	return ordered(names, classOrder)
}

// String is a compact single-line description used in diagnostics.
func (s Settings) String() string {
	parts := []string{
		"binWidth: " + strconv.FormatFloat(s.Setting.BinWidth, 'g', -1, 64),
		"interpolator: " + s.Setting.Interpolator,
		"label: " + strconv.Itoa(s.Setting.Label),
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ImageTypeName is the feature-name prefix for an image type view.
func ImageTypeName(imageType string, sigma float64) string {
	switch imageType {
	case ImageLoG:
		return "log-sigma-" + strings.ReplaceAll(pyFloat(sigma), ".", "-") + "-mm-3D"
	default:
		return strings.ToLower(imageType)
	}
}

// pyFloat formats like Python's str(float): integral values keep a ".0".
func pyFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func ordered(names, canonical []string) []string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	out := make([]string, 0, len(names))
	for _, c := range canonical {
		if present[c] {
			out = append(out, c)
			delete(present, c)
		}
	}

	var rest []string
	for n := range present {
		rest = append(rest, n)
	}
	sort.Strings(rest)

	return append(out, rest...)
}
