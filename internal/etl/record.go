package etl

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ── Value ──────────────────────────────────────────────────
// A single cell. Sources only ever produce text, numbers or null,
// so the sum type stays that small.

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "null"
	}
}

// Value is a text | number | null cell.
type Value struct {
	kind Kind
	text string
	num  float64
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Text wraps a string.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number wraps a float. NaN is treated as missing.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Null()
	}
	return Value{kind: KindNumber, num: f}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric payload, zero for text and null.
func (v Value) Float() float64 { return v.num }

// String renders the value for display. Null renders as an empty string.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// IsIntegral reports whether the value is a number without a fractional part
// that fits into an int64.
func (v Value) IsIntegral() bool {
	if v.kind != KindNumber {
		return false
	}
	return v.num == math.Trunc(v.num) && v.num >= math.MinInt64 && v.num < math.MaxInt64
}

// ── Table ──────────────────────────────────────────────────
// The common in-memory shape handed from one stage to the next.
// Columns are fixed at construction; every row has one cell per column.

var (
	ErrEmptyColumnName = errors.New("empty column name")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrRowWidth        = errors.New("row width does not match columns")
)

// Row is one record, cells ordered like the table's columns.
type Row []Value

// Table is an ordered sequence of rows sharing one column list.
// A row's index is its position in the table.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// NewTable validates the column list and every row once.
func NewTable(columns []string, rows ...Row) (*Table, error) {
	t, err := EmptyTable(columns)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d: %w: got %d cells, want %d", i, ErrRowWidth, len(r), len(columns))
		}
	}
	t.rows = append(t.rows, rows...)
	return t, nil
}

// EmptyTable returns a zero-row table with the given columns.
func EmptyTable(columns []string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("column %d: %w", i, ErrEmptyColumnName)
		}
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		index[c] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, index: index}, nil
}

// Columns returns a copy of the column list.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the i-th row.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Get returns the cell of row i under column. Unknown columns read as null.
func (t *Table) Get(i int, column string) Value {
	c, ok := t.index[column]
	if !ok {
		return Null()
	}
	return t.rows[i][c]
}

// withRows returns a table sharing t's columns with a new row set.
func (t *Table) withRows(rows []Row) *Table {
	return &Table{columns: t.columns, index: t.index, rows: rows}
}
