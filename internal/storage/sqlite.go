package storage

import (
	"strings"

	"marketetl/internal/etl"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	driver:      DriverSQLite,
	quote:       quoteDouble,
	placeholder: questionMark,
	types: map[etl.ColumnType]string{
		etl.ColumnText:    "TEXT",
		etl.ColumnInteger: "INTEGER",
		etl.ColumnReal:    "REAL",
	},
}

// uriEscaper escapes the characters sqlite reads as URI syntax in a
// file: name. It runs in one pass, so "%" is never escaped twice.
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

// buildSQLiteDSN adds a busy timeout so a briefly locked file is waited on
// instead of failing immediately.
func buildSQLiteDSN(path string) string {
	return "file:" + uriEscaper.Replace(path) + "?_pragma=busy_timeout(5000)"
}

// quoteDouble quotes an identifier with double quotes, as sqlite and the
// SQL standard do.
func quoteDouble(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
