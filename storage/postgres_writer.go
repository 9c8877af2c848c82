package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	schema: `
		CREATE TABLE IF NOT EXISTS restaurant_inspections (
			business_name TEXT          PRIMARY KEY,
			address       TEXT          NOT NULL DEFAULT '',
			average_score DOUBLE PRECISION,
			high_score    INTEGER,
			inspections   INTEGER       NOT NULL DEFAULT 0,
			metadata      TEXT          NOT NULL DEFAULT '{}',
			created_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_inspections_average ON restaurant_inspections(average_score);
		CREATE INDEX IF NOT EXISTS idx_inspections_high    ON restaurant_inspections(high_score);
	`,
}

// PostgresWriter persists records to PostgreSQL.
type PostgresWriter struct {
	sqlStore
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{sqlStore{db: db, dialect: postgresDialect}}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}
