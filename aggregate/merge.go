// Package aggregate merges per-channel feature records into one record per
// patient and assembles those records into a sorted table.
package aggregate

import (
	"github.com/carbocation/radiomix/features"
)

// DefaultReferenceChannel is the channel whose shape features are kept.
const DefaultReferenceChannel = "1"

// ChannelResult is the extractor output for one channel image of a patient.
type ChannelResult struct {
	Channel string
	Record  features.Record
}

// Merger applies the column naming policy. Shape features are computed from
// the mask alone, so they are identical across channels and are only taken
// from ReferenceChannel, under their bare names. All other features get a
// "_<channel>" suffix.
type Merger struct {
	ReferenceChannel string

	// MetadataEntries is the number of leading entries of each record that
	// are dropped before merging.
	MetadataEntries int
}

func NewMerger(referenceChannel string) Merger {
	if referenceChannel == "" {
		referenceChannel = DefaultReferenceChannel
	}
	return Merger{
		ReferenceChannel: referenceChannel,
		MetadataEntries:  features.DiagnosticsEntries,
	}
}

// ColumnName returns the output column for a feature extracted from channel,
// and false if the feature is dropped.
func (m Merger) ColumnName(channel, feature string) (string, bool) {
	if features.IsShape(feature) {
		if channel != m.ReferenceChannel {
			return "", false
		}
		return feature, true
	}
	return feature + "_" + channel, true
}

// Merge builds the record for one patient from its channel results, in order.
func (m Merger) Merge(patientID string, results []ChannelResult) *PatientRecord {
	out := NewPatientRecord()

	for _, res := range results {
		for _, entry := range res.Record.Features(m.MetadataEntries) {
			column, keep := m.ColumnName(res.Channel, entry.Name)
			if !keep {
				continue
			}
			out.Set(column, entry.Value)
		}
	}

	out.Set(PatientColumn, patientID)

	return out
}
