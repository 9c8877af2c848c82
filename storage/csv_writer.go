package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"inspection-scraper/models"
)

var csvHeader = []string{
	"business_name", "address", "average_score", "high_score", "inspections", "metadata",
}

// CSVWriter writes one row per record to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends every record of rs in result set order. Score columns of a
// record without inspections hold "No Data".
func (c *CSVWriter) Write(rs *models.ResultSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range rs.Records() {
		row, err := csvRow(r)
		if err != nil {
			return err
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func csvRow(r models.Record) ([]string, error) {
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("csv: encode metadata: %w", err)
	}

	name, _ := r.BusinessName()
	avg, high, count := models.NoData, models.NoData, models.NoData
	if r.Score.HasData() {
		avg = strconv.FormatFloat(r.Score.Average, 'f', -1, 64)
		high = strconv.Itoa(r.Score.High)
		count = strconv.Itoa(r.Score.Count)
	}
	return []string{name, r.Metadata[models.FieldAddress], avg, high, count, string(meta)}, nil
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
