package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an artboard or block does not exist.
var ErrNotFound = errors.New("storage: not found")

// DB wraps a SQL database connection and the dialect it speaks.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// New opens (or creates) the SQLite file at dbPath.
func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return Open(DriverSQLite, dbPath)
}

// Open connects to dsn with the given driver and applies migrations.
func Open(driver, dsn string) (*DB, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	dsn, err = d.dsn(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse %s dsn: %w", driver, err)
	}

	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite only supports one writer
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(5)
		conn.SetMaxIdleConns(2)
	}

	db := &DB{conn: conn, dialect: d}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) exec(q string, args ...any) (sql.Result, error) {
	return db.conn.Exec(db.dialect.Rebind(q), args...)
}

func (db *DB) query(q string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(db.dialect.Rebind(q), args...)
}

func (db *DB) queryRow(q string, args ...any) *sql.Row {
	return db.conn.QueryRow(db.dialect.Rebind(q), args...)
}

func (db *DB) migrate() error {
	d := db.dialect
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS artboards (
			id %[1]s PRIMARY KEY,
			name %[2]s NOT NULL,
			unit %[1]s NOT NULL,
			width %[3]s NOT NULL,
			height %[3]s NOT NULL,
			created_at %[4]s NOT NULL,
			updated_at %[4]s NOT NULL
		)`, d.key, d.text, d.real, d.timestamp),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS blocks (
			artboard_id %[1]s NOT NULL,
			reference %[1]s NOT NULL,
			layer INTEGER,
			type %[1]s NOT NULL,
			width %[3]s NOT NULL,
			height %[3]s NOT NULL,
			pos_top %[3]s NOT NULL,
			pos_left %[3]s NOT NULL,
			rotate %[3]s NOT NULL,
			style_json %[2]s NOT NULL,
			image_url %[2]s NOT NULL,
			clip_path %[2]s NOT NULL,
			content %[2]s NOT NULL,
			extra_json %[2]s NOT NULL,
			created_at %[4]s NOT NULL,
			updated_at %[4]s NOT NULL,
			PRIMARY KEY (artboard_id, reference)
		)`, d.key, d.text, d.real, d.timestamp),
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}
	return nil
}
