package etl

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ── SyncJob ────────────────────────────────────────────────
// Orchestrates: source.Fetch → Clean → destination.Write.

// SyncJob pairs a source with the table it is loaded into.
type SyncJob struct {
	Source Source
	Target string
}

// Sync statuses.
const (
	StatusSuccess = "success" // rows fetched and loaded
	StatusEmpty   = "empty"   // source failed softly; an empty table was loaded
	StatusError   = "error"   // hard failure; the run stops here
)

// SyncResult is the outcome of running a sync job.
type SyncResult struct {
	RunID       string        `json:"runId"`
	Source      string        `json:"source"`
	Target      string        `json:"target"`
	Status      string        `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	RowsRead    int           `json:"rowsRead"`
	RowsWritten int           `json:"rowsWritten"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
}

// ── Engine ─────────────────────────────────────────────────

// Engine runs sync jobs against a destination.
type Engine struct {
	Dest    Destination
	Logger  *log.Logger // defaults to the standard logger
	Verbose bool
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// RunSync executes a sync job end-to-end. Soft source failures are logged
// and still load an empty table; anything else is returned as an error.
func (e *Engine) RunSync(ctx context.Context, runID string, job *SyncJob) (*SyncResult, error) {
	start := time.Now()
	result := &SyncResult{RunID: runID, Source: job.Source.Name(), Target: job.Target}

	fail := func(stage string, err error) (*SyncResult, error) {
		err = fmt.Errorf("%s %s: %w", stage, job.Source.Name(), err)
		result.Status = StatusError
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result, err
	}

	// 1. Fetch.
	fetched, err := job.Source.Fetch(ctx)
	if err != nil {
		return fail("fetch", err)
	}
	if got, want := fetched.Table.Columns(), job.Source.Columns(); !slices.Equal(got, want) {
		return fail("fetch", fmt.Errorf("%w: columns %q, want %q", ErrUnexpectedShape, got, want))
	}
	result.RowsRead = fetched.Table.Len()
	if fetched.Status == FetchEmpty {
		result.Reason = fetched.Reason
		e.logf("etl: %s", fetched.Reason)
	}
	if e.Verbose {
		e.logf("etl: run %s: %s returned %d row(s)", runID, job.Source.Name(), result.RowsRead)
	}

	// 2. Clean.
	cleaned := Clean(fetched.Table)
	if e.Verbose && cleaned.Len() != result.RowsRead {
		e.logf("etl: run %s: dropped %d incomplete row(s)", runID, result.RowsRead-cleaned.Len())
	}

	// 3. Load.
	written, err := e.Dest.Write(ctx, job.Target, cleaned)
	if err != nil {
		return fail("load", err)
	}
	e.logf("Data successfully loaded into %s table.", job.Target)

	result.Status = StatusSuccess
	if fetched.Status == FetchEmpty {
		result.Status = StatusEmpty
	}
	result.RowsWritten = written
	result.Duration = time.Since(start)
	return result, nil
}

// RunAll runs jobs in order under one run ID. The first hard failure
// aborts the remaining jobs; results gathered so far are returned with it.
func (e *Engine) RunAll(ctx context.Context, jobs []*SyncJob) ([]*SyncResult, error) {
	runID := uuid.NewString()
	results := make([]*SyncResult, 0, len(jobs))
	for _, job := range jobs {
		res, err := e.RunSync(ctx, runID, job)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
