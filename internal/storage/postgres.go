package storage

import (
	"strconv"

	"marketetl/internal/etl"

	"github.com/lib/pq"
)

var postgresDialect = dialect{
	driver:      DriverPostgres,
	quote:       pq.QuoteIdentifier,
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	types: map[etl.ColumnType]string{
		etl.ColumnText:    "TEXT",
		etl.ColumnInteger: "BIGINT",
		etl.ColumnReal:    "DOUBLE PRECISION",
	},
}
