package etl

// ── Transformer ────────────────────────────────────────────
// Transformers modify rows between source and destination.
// Each takes a row and returns a (possibly modified) row and
// whether to keep it.

// Transformer processes a single row.
// Returns (transformed row, keep). If keep is false, the row is dropped.
type Transformer interface {
	Transform(Row) (Row, bool)
}

// DropMissingTransform drops rows holding a null in any column.
type DropMissingTransform struct{}

func (DropMissingTransform) Transform(r Row) (Row, bool) {
	for _, v := range r {
		if v.IsNull() {
			return r, false
		}
	}
	return r, true
}

// ApplyTransformers runs a chain of transformers on a row.
func ApplyTransformers(r Row, ts []Transformer) (Row, bool) {
	for _, t := range ts {
		var keep bool
		r, keep = t.Transform(r)
		if !keep {
			return r, false
		}
	}
	return r, true
}

// ApplyTable runs the chain over every row of t and returns a new table.
// Kept rows retain their relative order and are renumbered from zero.
func ApplyTable(t *Table, ts []Transformer) *Table {
	rows := make([]Row, 0, t.Len())
	for _, r := range t.rows {
		if out, keep := ApplyTransformers(r, ts); keep {
			rows = append(rows, out)
		}
	}
	return t.withRows(rows)
}

// Clean removes every row with a missing value. It never fails and
// Clean(Clean(t)) equals Clean(t).
func Clean(t *Table) *Table {
	return ApplyTable(t, []Transformer{DropMissingTransform{}})
}
