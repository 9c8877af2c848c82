package services

import "errors"

var (
	// ErrMissingMetadataTable means a listing has no metadata table.
	ErrMissingMetadataTable = errors.New("listing has no metadata table")
	// ErrInvalidScoreFormat means an inspection row's score cell is not an integer.
	ErrInvalidScoreFormat = errors.New("inspection score is not an integer")
	// ErrMissingBusinessName means the metadata lacks the record key.
	ErrMissingBusinessName = errors.New("listing metadata has no Business Name")
)

// ListingError records why one listing was left out of the result set.
type ListingError struct {
	Index int
	ID    string
	Err   error
}

func (e ListingError) Error() string {
	return "listing " + e.ID + ": " + e.Err.Error()
}

func (e ListingError) Unwrap() error {
	return e.Err
}
