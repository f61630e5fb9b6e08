// extract-radiomics computes radiomic features for every patient of the ADC
// and microstructure datasets and writes one spreadsheet per dataset, with one
// row per patient. Run without flags it uses the layout of the 50 Hz study.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/carbocation/radiomix"
	"github.com/carbocation/radiomix/aggregate"
	"github.com/carbocation/radiomix/cohort"
	"github.com/carbocation/radiomix/compileinfo"
	"github.com/carbocation/radiomix/export"
	"github.com/carbocation/radiomix/pipeline"
	"github.com/carbocation/radiomix/radiomics"
	"github.com/inconshreveable/log15"
)

func main() {
	compileinfo.PrintToStdErr()

	start := time.Now()
	log.Println("extract-radiomics start")
	defer func() {
		log.Printf("extract-radiomics end. Took %.2f seconds\n", time.Since(start).Seconds())
	}()

	var cfg config
	flag.StringVar(&cfg.ADCPath, "adc", "../nii/50Hz/ADC", "Folder with one P<n> subfolder per patient holding P<n>_mask.nii and P<n>_{1,2,PGSE}.nii ADC maps. Empty to skip.")
	flag.StringVar(&cfg.MicroPath, "micro", "../nii/50Hz/micro", "Folder with one P<n> subfolder per patient holding P<n>_mask.nii and P<n>_{1,2,3,4}.nii parameter maps. Empty to skip.")
	flag.StringVar(&cfg.OutDir, "out", "../radiomics_feature/", "Folder where the spreadsheets are written. Created if needed.")
	flag.StringVar(&cfg.ADCOutput, "adc-output", "ADC_50Hz.xlsx", "File name of the ADC spreadsheet. The extension (.xlsx, .csv, .tsv) picks the format.")
	flag.StringVar(&cfg.MicroOutput, "micro-output", "micro_50Hz.xlsx", "File name of the microstructure spreadsheet.")
	flag.StringVar(&cfg.LogPath, "log", "../log/IMPLUSED_50hz_log.txt", "Diagnostic log file. Truncated at start.")
	flag.StringVar(&cfg.Params, "params", "", "(Optional) pyradiomics-style YAML parameter file. Defaults to binWidth 0.1 with Original, LoG (sigma 3) and Gradient images.")
	flag.StringVar(&cfg.Reference, "reference", aggregate.DefaultReferenceChannel, "Channel whose shape features are kept.")
	flag.StringVar(&cfg.Extractor, "extractor", "native", "Feature extractor: 'native' or 'pyradiomics'.")
	flag.StringVar(&cfg.Pyradiomics, "pyradiomics", radiomics.DefaultPyradiomicsBinary, "pyradiomics executable, used with -extractor=pyradiomics.")
	flag.StringVar(&cfg.Extension, "ext", cohort.DefaultExtension, "Image file extension, e.g. .nii or .nii.gz.")
	flag.StringVar(&cfg.Manifest, "manifest", "", "(Optional) .txt/.csv/.tsv/.xls file whose first column lists the patients to process.")
	flag.StringVar(&cfg.Summary, "summary", "", "(Optional) Path of a CSV file recording the outcome for every patient.")
	flag.Parse()

	if err := run(cfg); err != nil {
		log.Fatalln(err)
	}
}

type config struct {
	ADCPath, MicroPath     string
	OutDir                 string
	ADCOutput, MicroOutput string
	LogPath                string
	Params                 string
	Reference              string
	Extractor              string
	Pyradiomics            string
	Extension              string
	Manifest               string
	Summary                string
}

func run(cfg config) error {
	logger, logFile, err := newLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer logFile.Close()

	outDir, err := radiomix.ExpandHome(cfg.OutDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	settings, err := loadSettings(cfg.Params, logger)
	if err != nil {
		return err
	}

	extractor, err := newExtractor(cfg, settings, logger)
	if err != nil {
		return err
	}

	runner := pipeline.New(extractor, aggregate.NewMerger(cfg.Reference), logger)
	if cfg.Manifest != "" {
		runner.Manifest, err = cohort.ReadManifest(cfg.Manifest)
		if err != nil {
			return err
		}
		logger.Info("restricting to manifest", "path", cfg.Manifest, "patients", len(runner.Manifest))
	}

	var datasets []cohort.Dataset
	if cfg.ADCPath != "" {
		datasets = append(datasets, cohort.ADCDataset(cfg.ADCPath, cfg.ADCOutput))
	}
	if cfg.MicroPath != "" {
		datasets = append(datasets, cohort.MicroDataset(cfg.MicroPath, cfg.MicroOutput))
	}

	for i := range datasets {
		datasets[i].Extension = cfg.Extension
		if datasets[i].BasePath, err = radiomix.ExpandHome(datasets[i].BasePath); err != nil {
			return err
		}
	}

	summary, err := runner.RunAll(context.Background(), datasets, outDir)
	if err != nil {
		return err
	}

	export.PrintSummary(os.Stdout, summary)

	if cfg.Summary != "" {
		if err := export.WriteSummary(cfg.Summary, summary); err != nil {
			return err
		}
		logger.Info("saved summary", "path", cfg.Summary)
	}

	return nil
}

func loadSettings(path string, logger log15.Logger) (radiomics.Settings, error) {
	if path == "" {
		return radiomics.DefaultSettings(), nil
	}

	settings, unused, err := radiomics.LoadSettings(path)
	if err != nil {
		return settings, err
	}
	for _, key := range unused {
		logger.Warn("ignoring parameter", "file", path, "key", key)
	}

	return settings, nil
}

func newExtractor(cfg config, settings radiomics.Settings, logger log15.Logger) (radiomics.Extractor, error) {
	switch cfg.Extractor {
	case "native":
		return radiomics.NewNativeExtractor(settings, logger)
	case "pyradiomics":
		return radiomics.NewCommandExtractor(cfg.Pyradiomics, settings, logger)
	default:
		return nil, errors.New("-extractor must be 'native' or 'pyradiomics'")
	}
}
