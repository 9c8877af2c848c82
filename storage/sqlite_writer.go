package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name:        "sqlite",
	placeholder: func(int) string { return "?" },
	schema: `
		CREATE TABLE IF NOT EXISTS restaurant_inspections (
			business_name TEXT    PRIMARY KEY,
			address       TEXT    NOT NULL DEFAULT '',
			average_score REAL,
			high_score    INTEGER,
			inspections   INTEGER NOT NULL DEFAULT 0,
			metadata      TEXT    NOT NULL DEFAULT '{}',
			created_at    TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_inspections_average ON restaurant_inspections(average_score);
	`,
}

// SQLiteWriter persists records to a local SQLite file.
type SQLiteWriter struct {
	sqlStore
}

// NewSQLiteWriter opens (or creates) the database at path and runs schema
// migrations.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	sw := &SQLiteWriter{sqlStore{db: db, dialect: sqliteDialect}}
	if err := sw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return sw, nil
}
