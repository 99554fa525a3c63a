package etl

import (
	"context"
	"errors"
)

// ── Source ──────────────────────────────────────────────────
// A Source extracts one table from an external system.
// Implementations live in etl/sources/, one file per source.

// ErrUnexpectedShape is returned when a response parses but does not have
// the structure the source expects. It is a hard failure.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// FetchStatus tells a usable result apart from a soft failure.
type FetchStatus string

const (
	FetchOK    FetchStatus = "ok"    // table holds whatever the source returned, possibly zero rows
	FetchEmpty FetchStatus = "empty" // source refused; table is empty and Reason says why
)

// FetchResult is the outcome of a successful or softly failed fetch.
// Hard failures are reported as errors instead.
type FetchResult struct {
	Table  *Table
	Status FetchStatus
	Reason string
}

// Fetched wraps a table read from the source.
func Fetched(t *Table) *FetchResult {
	return &FetchResult{Table: t, Status: FetchOK}
}

// SoftFailure builds an empty result carrying the source's columns.
func SoftFailure(columns []string, reason string) (*FetchResult, error) {
	t, err := EmptyTable(columns)
	if err != nil {
		return nil, err
	}
	return &FetchResult{Table: t, Status: FetchEmpty, Reason: reason}, nil
}

// Source is the interface every data source must implement.
type Source interface {
	// Name identifies the source in logs and summaries.
	Name() string

	// Columns returns the column set the source produces.
	Columns() []string

	// Fetch issues a single request and returns the parsed table.
	Fetch(ctx context.Context) (*FetchResult, error)
}
