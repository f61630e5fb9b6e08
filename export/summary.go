package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
)

// Patient outcomes recorded in a summary.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusEmpty   = "empty"
	StatusNoMask  = "no-mask"
)

// SummaryRow records what happened to one patient during a run.
type SummaryRow struct {
	Dataset   string `csv:"dataset"`
	Patient   string `csv:"patient"`
	Status    string `csv:"status"`
	Extracted int    `csv:"channels_extracted"`
	Failed    int    `csv:"channels_failed"`
	Missing   int    `csv:"channels_missing"`
	Features  int    `csv:"features"`
}

// WriteSummary writes rows as CSV.
func WriteSummary(path string, rows []SummaryRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pfx.Err(err)
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	if err := gocsv.Marshal(&rows, f); err != nil {
		return pfx.Err(err)
	}

	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// PrintSummary renders per-status patient counts for each dataset.
func PrintSummary(w io.Writer, rows []SummaryRow) {
	type counts struct {
		byStatus map[string]int
		failed   int
	}
	var order []string
	perDataset := map[string]*counts{}
	for _, r := range rows {
		c, ok := perDataset[r.Dataset]
		if !ok {
			c = &counts{byStatus: map[string]int{}}
			perDataset[r.Dataset] = c
			order = append(order, r.Dataset)
		}
		c.byStatus[r.Status]++
		c.failed += r.Failed
	}

	if len(order) == 0 {
		fmt.Fprintln(w, "no patients processed")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Dataset", "Patients", "OK", "Partial", "Empty", "No mask", "Failed channels"})
	for _, ds := range order {
		c := perDataset[ds]
		total := 0
		for _, n := range c.byStatus {
			total += n
		}
		table.Append([]string{
			ds,
			strconv.Itoa(total),
			strconv.Itoa(c.byStatus[StatusOK]),
			strconv.Itoa(c.byStatus[StatusPartial]),
			strconv.Itoa(c.byStatus[StatusEmpty]),
			strconv.Itoa(c.byStatus[StatusNoMask]),
			strconv.Itoa(c.failed),
		})
	}
	table.Render()
}
