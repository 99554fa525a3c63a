package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"marketetl/internal/etl"
)

// DB wraps one connection to the relational store.
type DB struct {
	conn    *sql.DB
	dialect dialect
	closed  bool
}

// Open opens (or, for sqlite, creates) the store named by identifier.
func Open(ctx context.Context, identifier string) (*DB, error) {
	t, err := parseIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	if t.path != "" {
		if dir := filepath.Dir(t.path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
	}

	conn, err := sql.Open(string(t.dialect.driver), t.dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.dialect.driver, err)
	}
	// One writer, one connection; nothing is shared across loads.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect %s: %w", t.dialect.driver, err)
	}
	return &DB{conn: conn, dialect: t.dialect}, nil
}

// OpenTableStore adapts Open to etl.StoreOpener.
func OpenTableStore(ctx context.Context, identifier string) (etl.TableStore, error) {
	return Open(ctx, identifier)
}

// Driver reports which engine the store runs on.
func (db *DB) Driver() Driver { return db.dialect.driver }

// Close closes the connection. Closing twice is a no-op.
func (db *DB) Close() error {
	if db.closed {
		return nil
	}
	db.closed = true
	return db.conn.Close()
}

// ReplaceTable drops name if it exists, creates it from columns and inserts
// rows. Statements run in one transaction where the engine allows it.
func (db *DB) ReplaceTable(ctx context.Context, name string, columns []etl.Column, rows [][]any) error {
	if len(columns) == 0 {
		return etl.ErrNoColumns
	}
	q := db.dialect.quote

	defs := make([]string, len(columns))
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		typ, ok := db.dialect.types[c.Type]
		if !ok {
			typ = db.dialect.types[etl.ColumnText]
		}
		defs[i] = q(c.Name) + " " + typ
		names[i] = q(c.Name)
		marks[i] = db.dialect.placeholder(i + 1)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+q(name)); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", q(name), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			q(name), strings.Join(names, ", "), strings.Join(marks, ", ")))
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range rows {
			if len(r) != len(columns) {
				return fmt.Errorf("row %d: %w", i, etl.ErrRowWidth)
			}
			if _, err := stmt.ExecContext(ctx, r...); err != nil {
				return fmt.Errorf("insert row %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadTable returns the column names and all rows of a table. Text comes
// back as string, numbers as int64 or float64. On sqlite rows are in
// insertion order.
func (db *DB) ReadTable(ctx context.Context, name string) ([]string, [][]any, error) {
	query := "SELECT * FROM " + db.dialect.quote(name)
	if db.Driver() == DriverSQLite {
		query += " ORDER BY rowid"
	}
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		out = append(out, vals)
	}
	return cols, out, rows.Err()
}
