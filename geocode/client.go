package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNoMatch means the service returned no feature for an address.
var ErrNoMatch = errors.New("geocode: no match")

// Client queries a Nominatim-compatible search endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a Client for endpoint.
func NewClient(endpoint, userAgent string) *Client {
	return &Client{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Geocode resolves address to its best matching feature.
func (c *Client) Geocode(ctx context.Context, address string) (Feature, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return Feature{}, fmt.Errorf("geocode: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", address)
	q.Set("format", "geojson")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Feature{}, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Feature{}, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Feature{}, fmt.Errorf("geocode: status %d: %s", resp.StatusCode, body)
	}

	var fc FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return Feature{}, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(fc.Features) == 0 {
		return Feature{}, fmt.Errorf("%w for %q", ErrNoMatch, address)
	}
	return fc.Features[0], nil
}
