package kingcounty

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"inspection-scraper/utils"
)

// StaticFetcher downloads the page with a plain HTTP collector.
type StaticFetcher struct {
	userAgent string
	timeout   time.Duration
	logger    *utils.Logger
}

// NewStaticFetcher creates a StaticFetcher.
func NewStaticFetcher(userAgent string, timeout time.Duration, logger *utils.Logger) *StaticFetcher {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &StaticFetcher{userAgent: userAgent, timeout: timeout, logger: logger}
}

// Fetch visits pageURL and returns the response body. Non-2xx responses
// are errors.
func (f *StaticFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	collector := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.StdlibContext(ctx),
	)
	collector.SetRequestTimeout(f.timeout)

	var body []byte
	var fetchErr error

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
		f.logger.Debug("[kingcounty] %d response, %d bytes", r.StatusCode, len(r.Body))
	})
	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("kingcounty: fetch %d: %w", status, err)
	})

	if err := collector.Visit(pageURL); err != nil && fetchErr == nil {
		return nil, fmt.Errorf("kingcounty: visit: %w", err)
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}
