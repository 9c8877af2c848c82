package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"inspection-scraper/models"
	"inspection-scraper/utils"
)

// exportFields are the record fields copied into each feature.
var exportFields = []string{
	models.FieldBusinessName,
	models.FieldAverageScore,
	models.FieldHighScore,
	models.FieldInspections,
	models.FieldAddress,
}

// Geocoder resolves one address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Feature, error)
}

// Exporter geocodes a result set into a feature collection.
type Exporter struct {
	geocoder    Geocoder
	suffix      string
	rateLimitMs int
	retry       *utils.RetryConfig
	logger      *utils.Logger
}

// NewExporter creates an Exporter. suffix is appended to every address,
// and requests are paced at one per rateLimitMs.
func NewExporter(geocoder Geocoder, suffix string, rateLimitMs int, retry *utils.RetryConfig, logger *utils.Logger) *Exporter {
	return &Exporter{
		geocoder:    geocoder,
		suffix:      suffix,
		rateLimitMs: rateLimitMs,
		retry:       retry,
		logger:      logger,
	}
}

// Export geocodes every record with an address. Records that cannot be
// resolved are skipped and logged. Feature order follows the result set.
func (e *Exporter) Export(ctx context.Context, rs *models.ResultSet) FeatureCollection {
	records := rs.Records()
	features := make([]*Feature, len(records))

	pool := utils.NewWorkerPool(1, e.rateLimitMs)
	for i, r := range records {
		i, r := i, r
		name, _ := r.BusinessName()
		address := r.Metadata[models.FieldAddress]
		if address == "" {
			e.logger.Warn("[geocode] %s has no address, skipping", name)
			continue
		}

		pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			query := address + e.suffix
			var f Feature
			var noMatch bool
			err := e.retry.DoContext(ctx, "geocode "+name, func() error {
				var err error
				f, err = e.geocoder.Geocode(ctx, query)
				if errors.Is(err, ErrNoMatch) {
					noMatch = true
					return nil
				}
				return err
			})
			if noMatch {
				e.logger.Warn("[geocode] %s (%s): no match", name, query)
				return
			}
			if err != nil {
				e.logger.Warn("[geocode] %s (%s): %v", name, query, err)
				return
			}
			f.Type = "Feature"
			f.Properties = r.Subset(exportFields...)
			features[i] = &f
			e.logger.Debug("[geocode] Resolved %s", name)
		})
	}
	pool.Wait()

	out := make([]Feature, 0, len(features))
	for _, f := range features {
		if f != nil {
			out = append(out, *f)
		}
	}
	e.logger.Info("[geocode] Geocoded %d of %d records", len(out), len(records))
	return NewFeatureCollection(out)
}

// WriteFile serializes fc as indented JSON to path.
func WriteFile(path string, fc FeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("geocode: create output dir: %w", err)
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("geocode: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("geocode: write %q: %w", path, err)
	}
	return nil
}
