// Package pipeline walks a dataset patient by patient, extracts features for
// every channel image and assembles the per-patient feature table.
package pipeline

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/carbocation/radiomix/aggregate"
	"github.com/carbocation/radiomix/cohort"
	"github.com/carbocation/radiomix/export"
	"github.com/carbocation/radiomix/radiomics"
	"github.com/inconshreveable/log15"
)

// Runner processes datasets sequentially.
type Runner struct {
	Extractor radiomics.Extractor
	Merger    aggregate.Merger
	Log       log15.Logger

	// Manifest, when non-empty, restricts processing to these patients.
	Manifest []string
}

// Result is the outcome of one dataset. Table is nil when nothing was
// extracted.
type Result struct {
	Dataset cohort.Dataset
	Table   *aggregate.Table
	Summary []export.SummaryRow
}

func New(extractor radiomics.Extractor, merger aggregate.Merger, log log15.Logger) *Runner {
	if log == nil {
		log = log15.New()
		log.SetHandler(log15.DiscardHandler())
	}
	return &Runner{Extractor: extractor, Merger: merger, Log: log}
}

// Run extracts and merges features for every patient of ds. Per-patient and
// per-channel problems are logged and recorded in the summary. The returned
// error is aggregate.ErrNoData when no patient yielded features, and any
// error that makes the whole dataset unusable otherwise.
func (r *Runner) Run(ctx context.Context, ds cohort.Dataset) (*Result, error) {
	log := r.Log.New("dataset", ds.Name)
	res := &Result{Dataset: ds}

	patients, err := cohort.Discover(ds)
	if err != nil {
		return res, err
	}
	if len(r.Manifest) > 0 {
		var unmatched []string
		patients, unmatched = cohort.Filter(patients, r.Manifest)
		for _, id := range unmatched {
			log.Warn("patient listed in manifest has no directory", "patient", id)
		}
	}
	log.Info("starting dataset", "path", ds.BasePath, "patients", len(patients))

	var records []*aggregate.PatientRecord
	for _, p := range patients {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		row := export.SummaryRow{Dataset: ds.Name, Patient: p.ID}

		if !p.HasMask {
			log.Warn("mask does not exist, skipping patient", "patient", p.ID, "mask", p.MaskPath)
			row.Status = export.StatusNoMask
			res.Summary = append(res.Summary, row)
			continue
		}

		record := r.processPatient(ctx, log, p, &row)
		records = append(records, record)
		res.Summary = append(res.Summary, row)
	}

	table, err := aggregate.Finalize(records)
	if errors.Is(err, aggregate.ErrNoData) {
		log.Warn("no features extracted")
		return res, err
	} else if err != nil {
		return res, err
	}
	res.Table = table

	log.Info("finished dataset", "rows", len(table.Rows), "columns", len(table.Columns))

	return res, nil
}

// RunAll runs every dataset in turn and writes each table to
// outDir/<Dataset.Output>. A dataset without any extracted features writes no
// file and does not stop the others. The summary covers every dataset that
// was run.
func (r *Runner) RunAll(ctx context.Context, datasets []cohort.Dataset, outDir string) ([]export.SummaryRow, error) {
	var summary []export.SummaryRow
	for _, ds := range datasets {
		res, err := r.Run(ctx, ds)
		summary = append(summary, res.Summary...)
		if errors.Is(err, aggregate.ErrNoData) {
			continue
		} else if err != nil {
			return summary, err
		}

		output := filepath.Join(outDir, ds.Output)
		if err := export.WriteTable(output, res.Table); err != nil {
			return summary, err
		}
		r.Log.Info("saved features", "dataset", ds.Name, "path", output)
	}

	return summary, nil
}

// processPatient extracts every present channel of p, one at a time, and
// merges the successful ones. row is filled in with the outcome.
func (r *Runner) processPatient(ctx context.Context, log log15.Logger, p cohort.Patient, row *export.SummaryRow) *aggregate.PatientRecord {
	log = log.New("patient", p.ID)

	var results []aggregate.ChannelResult
	for _, ch := range p.Channels {
		if !ch.Present {
			log.Warn("channel image does not exist, skipping", "channel", ch.Channel, "image", ch.Path)
			row.Missing++
			continue
		}

		rec, err := r.Extractor.Extract(ctx, ch.Path, p.MaskPath)
		if err != nil {
			log.Warn("feature extraction failed", "channel", ch.Channel, "image", ch.Path, "err", err)
			row.Failed++
			continue
		}
		voxels, _ := rec.Lookup("diagnostics_Mask-original_VoxelNum")
		log.Debug("extracted channel", "channel", ch.Channel, "entries", len(rec), "voxels", voxels)

		// Columns are suffixed with the channel as it appears in the file name.
		channel := cohort.ChannelFromFileName(ch.Path)
		results = append(results, aggregate.ChannelResult{Channel: channel, Record: rec})
		row.Extracted++
	}

	record := r.Merger.Merge(p.ID, results)
	row.Features = record.FeatureCount()

	switch {
	case row.Features == 0:
		row.Status = export.StatusEmpty
		log.Warn("no features extracted for patient; keeping an empty row")
	case row.Failed > 0 || row.Missing > 0:
		row.Status = export.StatusPartial
		log.Info("extracted features", "channels", row.Extracted, "failed", row.Failed, "missing", row.Missing)
	default:
		row.Status = export.StatusOK
		log.Info("extracted features", "channels", row.Extracted)
	}

	return record
}
