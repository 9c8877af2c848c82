package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"inspection-scraper/config"
	"inspection-scraper/dom"
	"inspection-scraper/geocode"
	"inspection-scraper/models"
	"inspection-scraper/output"
	"inspection-scraper/scraper/kingcounty"
	"inspection-scraper/services"
	"inspection-scraper/storage"
	"inspection-scraper/utils"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Extract inspection records from a results page",
	RunE:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	f := scrapeCmd.Flags()
	f.String("mode", string(kingcounty.ModeCached), "page source: cached or fetch")
	f.Int("limit", 0, "process at most this many listings (0 = all, default from LISTING_LIMIT)")
	f.Bool("browser", false, "fetch with headless Chrome instead of plain HTTP")
	f.String("zip", "", "zip code to search")
	f.String("name", "", "business name filter")
	f.String("start", "", "inspection start date (M/D/YYYY)")
	f.String("end", "", "inspection end date (M/D/YYYY)")
	f.StringP("format", "f", string(output.FormatJSON), "output format: json, jsonl, yaml")
	f.StringP("out", "o", "", "write results to this file instead of stdout")
	f.String("geojson", "", "geocode records and write a GeoJSON FeatureCollection to this path")
	f.String("store", "none", "record store: none, csv, postgres, sqlite")
	f.Bool("insights", true, "print the insight report to stderr")

	for _, name := range []string{"mode", "limit", "browser", "zip", "name", "start", "end",
		"format", "out", "geojson", "store", "insights"} {
		_ = viper.BindPFlag(name, f.Lookup(name))
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := utils.NewLogger()
	cfg := config.Load()
	applyOverrides(cfg)
	logger.SetDebug(cfg.Debug)

	if err := cfg.Validate(); err != nil {
		logger.Error("%v", err)
		return err
	}

	mode, err := kingcounty.ParseMode(viper.GetString("mode"))
	if err != nil {
		logger.Error("%v", err)
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Info("=== Inspection scraper starting ===")
	logger.Info("Config: mode %s | limit %d | concurrency %d", mode, cfg.ListingLimit, cfg.MaxConcurrency)

	page, err := newSource(cfg, logger).Page(ctx, mode, searchFromFlags())
	if err != nil {
		logger.Error("Could not load inspection page: %v", err)
		return err
	}

	root, err := dom.Parse(bytes.NewReader(page))
	if err != nil {
		logger.Error("Could not parse inspection page: %v", err)
		return err
	}

	extractor := services.NewExtractor(
		services.NewCleaner(logger, services.StaticLabel(cfg.FallbackLabel)),
		logger,
		services.ExtractorOptions{
			ListingTag:  cfg.ListingTag,
			MaxListings: cfg.ListingLimit,
			Workers:     cfg.MaxConcurrency,
		},
	)
	rs, failures := extractor.Assemble(root)

	if err := writeResults(rs, output.Format(viper.GetString("format")), viper.GetString("out")); err != nil {
		logger.Error("Output failed: %v", err)
		return err
	}

	reportSource, err := storeResults(cfg, logger, rs, viper.GetString("store"))
	if err != nil {
		logger.Error("Store failed: %v", err)
		return err
	}

	if path := viper.GetString("geojson"); path != "" {
		if err := exportGeoJSON(ctx, cfg, logger, rs, path); err != nil {
			logger.Error("GeoJSON export failed: %v", err)
			return err
		}
	}

	if viper.GetBool("insights") {
		insightSvc := services.NewInsightService(logger)
		insightSvc.Print(os.Stderr, insightSvc.Generate(reportSource, len(failures)))
	}
	return nil
}

// applyOverrides lays flag and config-file values over the env config.
func applyOverrides(cfg *config.Config) {
	if viper.IsSet("limit") && viper.GetInt("limit") > 0 {
		cfg.ListingLimit = viper.GetInt("limit")
	}
	if viper.GetBool("debug") {
		cfg.Debug = true
	}
	if path := viper.GetString("geojson"); path != "" {
		cfg.GeoJSONOutputPath = path
	}
}

func searchFromFlags() kingcounty.Search {
	search := kingcounty.Search{}
	for flag, param := range map[string]string{
		"zip":   "Zip_Code",
		"name":  "Business_Name",
		"start": "Inspection_Start",
		"end":   "Inspection_End",
	} {
		if v := viper.GetString(flag); v != "" {
			search[param] = v
		}
	}
	return search
}

func newSource(cfg *config.Config, logger *utils.Logger) *kingcounty.Source {
	var fetcher kingcounty.Fetcher
	if viper.GetBool("browser") {
		fetcher = kingcounty.NewBrowserFetcher(cfg.ChromeBin, cfg.UserAgent, logger)
	} else {
		fetcher = kingcounty.NewStaticFetcher(cfg.UserAgent, 60*time.Second, logger)
	}

	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}
	return kingcounty.NewSource(cfg.InspectionURL, fetcher, kingcounty.NewPageCache(cfg.CachePath), retry, logger)
}

// createOutput opens the results file; replaced in tests.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func writeResults(rs *models.ResultSet, format output.Format, path string) (err error) {
	var w io.Writer = os.Stdout
	if path != "" {
		f, createErr := createOutput(path)
		if createErr != nil {
			return fmt.Errorf("create %q: %w", path, createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close %q: %w", path, closeErr)
			}
		}()
		w = f
	}

	writer, err := output.NewWriter(w, format)
	if err != nil {
		return err
	}
	return writer.WriteResultSet(rs)
}

// storeResults persists rs and returns the set the insight report should
// read: the stored rows for database backends, rs otherwise.
func storeResults(cfg *config.Config, logger *utils.Logger, rs *models.ResultSet, backend string) (*models.ResultSet, error) {
	var writer storage.RecordWriter
	var err error

	switch backend {
	case "", "none":
		return rs, nil
	case "csv":
		writer, err = storage.NewCSVWriter(cfg.CSVOutputPath)
	case "postgres":
		writer, err = storage.NewPostgresWriter(cfg.DSN())
	case "sqlite":
		writer, err = storage.NewSQLiteWriter(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store %q", backend)
	}
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	if err := writer.Write(rs); err != nil {
		return nil, err
	}
	logger.Info("Stored %d records (%s)", rs.Len(), backend)

	reader, ok := writer.(storage.RecordReader)
	if !ok {
		return rs, nil
	}
	stored, err := reader.FetchAll()
	if err != nil {
		logger.Warn("Failed to read records back for insights: %v", err)
		return rs, nil
	}
	return models.NewResultSet(stored), nil
}

func exportGeoJSON(ctx context.Context, cfg *config.Config, logger *utils.Logger, rs *models.ResultSet, path string) error {
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   time.Duration(cfg.GeocodeRateLimitMs) * time.Millisecond,
		Logger:      logger,
	}
	exporter := geocode.NewExporter(
		geocode.NewClient(cfg.GeocodeURL, cfg.UserAgent),
		cfg.AddressSuffix,
		cfg.GeocodeRateLimitMs,
		retry,
		logger,
	)

	fc := exporter.Export(ctx, rs)
	if err := geocode.WriteFile(path, fc); err != nil {
		return err
	}
	logger.Info("GeoJSON with %d features written to %s", len(fc.Features), path)
	return nil
}
