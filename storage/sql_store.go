package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"inspection-scraper/models"
)

// dialect captures the few SQL differences between the backends.
type dialect struct {
	name        string
	placeholder func(n int) string
	schema      string
}

// sqlStore persists records through database/sql. A business name is
// unique, so writing a name again replaces the stored row, matching the
// overwrite rule of the result set.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

func (s *sqlStore) migrate() error {
	_, err := s.db.Exec(s.dialect.schema)
	return err
}

// Clear deletes all stored records.
func (s *sqlStore) Clear() error {
	if _, err := s.db.Exec("DELETE FROM restaurant_inspections"); err != nil {
		return fmt.Errorf("%s: clear: %w", s.dialect.name, err)
	}
	return nil
}

// Write batch-upserts every record of rs.
func (s *sqlStore) Write(rs *models.ResultSet) error {
	records := rs.Records()
	if len(records) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.insertBatch(records[i:end]); err != nil {
			return fmt.Errorf("%s: insert batch: %w", s.dialect.name, err)
		}
	}
	return nil
}

const columnsPerRow = 6

func (s *sqlStore) insertBatch(batch []models.Record) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*columnsPerRow)

	for idx, r := range batch {
		base := idx * columnsPerRow
		ph := make([]string, columnsPerRow)
		for j := range ph {
			ph[j] = s.dialect.placeholder(base + j + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		name, _ := r.BusinessName()

		var avg, high interface{}
		if r.Score.HasData() {
			avg, high = r.Score.Average, r.Score.High
		}
		valueArgs = append(valueArgs,
			name, r.Metadata[models.FieldAddress], avg, high, r.Score.Count, string(meta))
	}

	query := fmt.Sprintf(`
		INSERT INTO restaurant_inspections
			(business_name, address, average_score, high_score, inspections, metadata)
		VALUES %s
		ON CONFLICT (business_name) DO UPDATE SET
			address       = excluded.address,
			average_score = excluded.average_score,
			high_score    = excluded.high_score,
			inspections   = excluded.inspections,
			metadata      = excluded.metadata
	`, strings.Join(valueStrings, ","))

	_, err := s.db.Exec(query, valueArgs...)
	return err
}

// FetchAll retrieves all stored records ordered by business name.
func (s *sqlStore) FetchAll() ([]models.Record, error) {
	rows, err := s.db.Query(`
		SELECT average_score, high_score, inspections, metadata
		FROM restaurant_inspections
		ORDER BY business_name
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch all: %w", s.dialect.name, err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var (
			avg   sql.NullFloat64
			high  sql.NullInt64
			count int
			meta  string
		)
		if err := rows.Scan(&avg, &high, &count, &meta); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", s.dialect.name, err)
		}

		r := models.Record{Metadata: map[string]string{}}
		if err := json.Unmarshal([]byte(meta), &r.Metadata); err != nil {
			return nil, fmt.Errorf("%s: decode metadata: %w", s.dialect.name, err)
		}
		if avg.Valid && count > 0 {
			r.Score = models.ScoreSummary{Average: avg.Float64, High: int(high.Int64), Count: count}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
