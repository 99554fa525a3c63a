package etl

import (
	"context"
	"errors"
	"fmt"
)

// ── Destination ────────────────────────────────────────────
// A Destination writes a table into a target system, replacing any
// table of the same name. The relational store is the only destination.

// ErrNoColumns is returned when asked to write a table without columns.
var ErrNoColumns = errors.New("table has no columns")

// Destination writes tables to a target system.
type Destination interface {
	Write(ctx context.Context, target string, t *Table) (int, error)
}

// ColumnType is the storage type chosen for a column at write time.
type ColumnType string

const (
	ColumnText    ColumnType = "text"
	ColumnInteger ColumnType = "integer"
	ColumnReal    ColumnType = "real"
)

// Column describes one column of a table being written.
type Column struct {
	Name string
	Type ColumnType
}

// TableStore is a relational store that can replace a whole table.
type TableStore interface {
	// ReplaceTable drops any table called name, recreates it with columns
	// and inserts rows. Row cells are nil, string, int64 or float64.
	ReplaceTable(ctx context.Context, name string, columns []Column, rows [][]any) error
	Close() error
}

// StoreOpener opens the store named by identifier.
type StoreOpener func(ctx context.Context, identifier string) (TableStore, error)

// ── SQL Destination ────────────────────────────────────────

// SQLWriter implements Destination over a TableStore. Every Write opens
// the store, writes and closes it again.
type SQLWriter struct {
	Open  StoreOpener
	Store string // store identifier, e.g. "market_expansion.db"
}

func (w *SQLWriter) Write(ctx context.Context, target string, t *Table) (int, error) {
	if len(t.columns) == 0 {
		return 0, fmt.Errorf("write %s: %w", target, ErrNoColumns)
	}

	store, err := w.Open(ctx, w.Store)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	columns := InferColumns(t)
	rows := make([][]any, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rows = append(rows, rowArgs(t.Row(i), columns))
	}

	if err := store.ReplaceTable(ctx, target, columns, rows); err != nil {
		return 0, fmt.Errorf("replace table %s: %w", target, err)
	}
	if err := store.Close(); err != nil {
		return 0, fmt.Errorf("close store: %w", err)
	}
	return len(rows), nil
}

// InferColumns picks a storage type per column from the values present:
// numbers only → integer when every value is integral, else real;
// anything holding text, or nothing but nulls → text.
func InferColumns(t *Table) []Column {
	cols := make([]Column, len(t.columns))
	for c, name := range t.columns {
		var hasText, hasNumber, fractional bool
		for _, r := range t.rows {
			switch v := r[c]; v.Kind() {
			case KindText:
				hasText = true
			case KindNumber:
				hasNumber = true
				if !v.IsIntegral() {
					fractional = true
				}
			}
		}

		typ := ColumnText
		switch {
		case hasText || !hasNumber:
		case fractional:
			typ = ColumnReal
		default:
			typ = ColumnInteger
		}
		cols[c] = Column{Name: name, Type: typ}
	}
	return cols
}

// rowArgs converts a row into driver arguments matching the column types.
func rowArgs(r Row, columns []Column) []any {
	args := make([]any, len(r))
	for i, v := range r {
		switch v.Kind() {
		case KindNull:
			args[i] = nil
		case KindText:
			args[i] = v.String()
		case KindNumber:
			switch columns[i].Type {
			case ColumnInteger:
				args[i] = int64(v.Float())
			case ColumnText:
				args[i] = v.String()
			default:
				args[i] = v.Float()
			}
		}
	}
	return args
}
