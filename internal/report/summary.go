// Package report renders sync results for the console.
package report

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"marketetl/internal/etl"
)

// WriteSummary renders one line per sync result.
func WriteSummary(w io.Writer, results []*etl.SyncResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Source", "Table", "Status", "Read", "Written", "Duration", "Note"})
	for _, r := range results {
		note := r.Reason
		if r.Error != "" {
			note = r.Error
		}
		t.AppendRow(table.Row{
			r.RunID,
			r.Source,
			r.Target,
			r.Status,
			r.RowsRead,
			r.RowsWritten,
			r.Duration.Round(time.Millisecond),
			note,
		})
	}
	t.Render()
}
