package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMongoDB  = "mongodb"
)

// Dialect captures what differs between the SQL backends: column types,
// placeholder syntax and DSN normalization.
type Dialect struct {
	Name   string
	driver string

	key       string // primary-key text column
	text      string // unbounded text column
	real      string
	timestamp string

	numbered bool // $1, $2 placeholders
	dsn      func(string) (string, error)
}

func dialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite, "":
		return Dialect{
			Name: DriverSQLite, driver: "sqlite",
			key: "TEXT", text: "TEXT", real: "REAL", timestamp: "DATETIME",
			dsn: func(path string) (string, error) {
				if strings.Contains(path, "?") {
					return path, nil
				}
				return path + "?_journal_mode=WAL&_busy_timeout=5000", nil
			},
		}, nil
	case DriverPostgres:
		return Dialect{
			Name: DriverPostgres, driver: "postgres",
			key: "TEXT", text: "TEXT", real: "DOUBLE PRECISION", timestamp: "TIMESTAMPTZ",
			numbered: true,
			dsn: func(dsn string) (string, error) {
				if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
					return pq.ParseURL(dsn)
				}
				return dsn, nil
			},
		}, nil
	case DriverMySQL:
		return Dialect{
			Name: DriverMySQL, driver: "mysql",
			key: "VARCHAR(191)", text: "MEDIUMTEXT", real: "DOUBLE", timestamp: "DATETIME(6)",
			dsn: func(dsn string) (string, error) {
				cfg, err := mysql.ParseDSN(dsn)
				if err != nil {
					return "", err
				}
				cfg.ParseTime = true
				// report matched rather than changed rows so no-op updates are not "not found"
				cfg.ClientFoundRows = true
				return cfg.FormatDSN(), nil
			},
		}, nil
	}
	return Dialect{}, fmt.Errorf("unsupported storage driver: %s", driver)
}

// Rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) Rebind(q string) string {
	if !d.numbered {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
