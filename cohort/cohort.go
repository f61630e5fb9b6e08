// Package cohort locates patients, masks and channel images on disk.
//
// The expected layout is
//
//	<base>/<patient>/<patient>_mask.nii
//	<base>/<patient>/<patient>_<channel>.nii
//
// where every patient directory name starts with "P".
package cohort

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
)

// PatientPrefix starts every patient directory name.
const PatientPrefix = "P"

// DefaultExtension is the image file extension.
const DefaultExtension = ".nii"

// Dataset is one input directory and the channels expected for each patient.
type Dataset struct {
	Name      string
	BasePath  string
	Channels  []string
	Extension string
	Output    string
}

// ADCDataset holds apparent diffusion coefficient maps: two oscillating
// gradient frequencies and the pulsed gradient spin echo.
func ADCDataset(basePath, output string) Dataset {
	return Dataset{
		Name:      "ADC",
		BasePath:  basePath,
		Channels:  []string{"1", "2", "PGSE"},
		Extension: DefaultExtension,
		Output:    output,
	}
}

// MicroDataset holds microstructural parameter maps fitted from the
// diffusion data: cell diameter, intracellular fraction, cellularity and
// extracellular diffusivity.
func MicroDataset(basePath, output string) Dataset {
	return Dataset{
		Name:      "micro",
		BasePath:  basePath,
		Channels:  []string{"1", "2", "3", "4"},
		Extension: DefaultExtension,
		Output:    output,
	}
}

// ChannelFile is one expected channel image.
type ChannelFile struct {
	Channel string
	Path    string
	Present bool
}

// Patient is one patient directory.
type Patient struct {
	ID       string
	Dir      string
	MaskPath string
	HasMask  bool
	Channels []ChannelFile
}

// MaskFileName returns the mask file name for a patient.
func MaskFileName(patientID, ext string) string {
	return patientID + "_mask" + ext
}

// ChannelFileName returns the image file name for a patient's channel.
func ChannelFileName(patientID, channel, ext string) string {
	return patientID + "_" + channel + ext
}

// ChannelFromFileName recovers the channel from an image file name: the text
// after the last underscore, without extension.
func ChannelFromFileName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.LastIndex(base, "_"); i >= 0 {
		return base[i+1:]
	}
	return base
}

// Discover lists the patient directories of a dataset in name order, with
// the presence of each mask and channel file resolved.
func Discover(ds Dataset) ([]Patient, error) {
	ext := ds.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	entries, err := os.ReadDir(ds.BasePath)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var out []Patient
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), PatientPrefix) {
			continue
		}

		id := entry.Name()
		dir := filepath.Join(ds.BasePath, id)
		p := Patient{
			ID:       id,
			Dir:      dir,
			MaskPath: filepath.Join(dir, MaskFileName(id, ext)),
		}
		p.HasMask = exists(p.MaskPath)

		for _, channel := range ds.Channels {
			path := filepath.Join(dir, ChannelFileName(id, channel, ext))
			p.Channels = append(p.Channels, ChannelFile{
				Channel: channel,
				Path:    path,
				Present: exists(path),
			})
		}

		out = append(out, p)
	}

	return out, nil
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
