package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketetl/internal/etl"
)

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, []*etl.SyncResult{
		{RunID: "3f1c9a52-run", Source: "listing", Target: "yelp_businesses", Status: etl.StatusEmpty,
			Reason: "Failed to retrieve data from Yelp (HTTP 403)", Duration: 12 * time.Millisecond},
		{RunID: "3f1c9a52-run", Source: "indicator", Target: "world_bank_gdp", Status: etl.StatusSuccess,
			RowsRead: 1, RowsWritten: 1, Duration: 40 * time.Millisecond},
	})

	out := buf.String()
	for _, header := range []string{"RUN", "SOURCE", "TABLE", "STATUS", "NOTE"} {
		assert.Contains(t, strings.ToUpper(out), header)
	}
	for _, want := range []string{"3f1c9a52-run", "yelp_businesses", "world_bank_gdp", "empty", "success", "HTTP 403", "40ms"} {
		assert.Contains(t, out, want)
	}
}

func TestWriteSummary_ErrorWinsOverReason(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, []*etl.SyncResult{
		{Source: "indicator", Target: "world_bank_gdp", Status: etl.StatusError,
			Error: "fetch indicator: unexpected response shape: data array is empty"},
	})
	assert.Contains(t, buf.String(), "data array is empty")
}
