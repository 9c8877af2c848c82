package storage

import "inspection-scraper/models"

// RecordWriter is the interface any storage backend must satisfy.
type RecordWriter interface {
	Write(rs *models.ResultSet) error
	Close() error
}

// RecordReader reads stored records back, used for reporting.
type RecordReader interface {
	FetchAll() ([]models.Record, error)
}
