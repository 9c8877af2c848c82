package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string

	MaxConcurrency int `validate:"min=1"`
	RateLimitMs    int `validate:"min=0"`
	MaxRetries     int `validate:"min=1"`
	ListingLimit   int `validate:"min=0"`

	InspectionURL string `validate:"required,url"`
	ListingTag    string `validate:"required"`
	FallbackLabel string
	CachePath     string `validate:"required"`

	GeocodeURL         string `validate:"required,url"`
	GeocodeRateLimitMs int    `validate:"min=0"`
	AddressSuffix      string
	UserAgent          string `validate:"required"`

	CSVOutputPath     string
	GeoJSONOutputPath string
	ChromeBin         string
	Debug             bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "inspections_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./output/inspections.db"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 4),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 0),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		ListingLimit:   getEnvInt("LISTING_LIMIT", 0),

		InspectionURL: getEnv("INSPECTION_URL", "http://info.kingcounty.gov/health/ehs/foodsafety/inspections/Results.aspx"),
		ListingTag:    getEnv("LISTING_TAG", "div"),
		FallbackLabel: getEnv("FALLBACK_LABEL", "Address 2:"),
		CachePath:     getEnv("CACHE_PATH", "inspection_page.html"),

		GeocodeURL:         getEnv("GEOCODE_URL", "https://nominatim.openstreetmap.org/search"),
		GeocodeRateLimitMs: getEnvInt("GEOCODE_RATE_LIMIT_MS", 1000),
		AddressSuffix:      getEnv("ADDRESS_SUFFIX", ", Seattle, WA"),
		UserAgent:          getEnv("USER_AGENT", "inspection-scraper/1.0"),

		CSVOutputPath:     getEnv("CSV_OUTPUT_PATH", "./output/inspections.csv"),
		GeoJSONOutputPath: getEnv("GEOJSON_OUTPUT_PATH", "./output/inspections.geojson"),
		ChromeBin:         getEnv("CHROME_BIN", ""),
		Debug:             getEnvBool("DEBUG", false),
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err == nil {
			return b
		}
	}
	return fallback
}
