package kingcounty

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"inspection-scraper/utils"
)

// Mode selects where a page comes from.
type Mode string

const (
	ModeCached Mode = "cached"
	ModeFetch  Mode = "fetch"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCached, ModeFetch:
		return Mode(s), nil
	}
	return "", fmt.Errorf("kingcounty: unknown mode %q (want %q or %q)", s, ModeCached, ModeFetch)
}

// PageCache keeps the last fetched page in a single file.
type PageCache struct {
	path string
}

// NewPageCache creates a cache backed by path.
func NewPageCache(path string) *PageCache {
	return &PageCache{path: path}
}

// Path returns the cache file location.
func (c *PageCache) Path() string {
	return c.path
}

// Load reads the cached page.
func (c *PageCache) Load() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("kingcounty: read cache %q: %w", c.path, err)
	}
	return data, nil
}

// Save replaces the cached page. Intermediate directories are created.
func (c *PageCache) Save(data []byte) error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("kingcounty: create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("kingcounty: write cache %q: %w", c.path, err)
	}
	return nil
}

// Source hands out page bytes according to the selected mode.
type Source struct {
	endpoint string
	fetcher  Fetcher
	cache    *PageCache
	retry    *utils.RetryConfig
	logger   *utils.Logger
}

// NewSource creates a Source.
func NewSource(endpoint string, fetcher Fetcher, cache *PageCache, retry *utils.RetryConfig, logger *utils.Logger) *Source {
	return &Source{endpoint: endpoint, fetcher: fetcher, cache: cache, retry: retry, logger: logger}
}

// Page returns the results page. In fetch mode the page is downloaded,
// retried on failure, and written through to the cache.
func (s *Source) Page(ctx context.Context, mode Mode, search Search) ([]byte, error) {
	if mode == ModeCached {
		s.logger.Info("[kingcounty] Loading cached page %s", s.cache.Path())
		return s.cache.Load()
	}

	if unknown := search.Unknown(); len(unknown) > 0 {
		s.logger.Warn("[kingcounty] Ignoring unknown search parameters: %v", unknown)
	}
	pageURL, err := search.URL(s.endpoint)
	if err != nil {
		return nil, err
	}

	s.logger.Info("[kingcounty] Fetching %s", pageURL)
	var body []byte
	err = s.retry.DoContext(ctx, "fetch-inspection-page", func() error {
		b, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Save(body); err != nil {
		s.logger.Warn("[kingcounty] Could not cache page: %v", err)
	} else {
		s.logger.Debug("[kingcounty] Cached %d bytes at %s", len(body), s.cache.Path())
	}
	return body, nil
}
