// Package kingcounty retrieves King County food safety inspection result
// pages, either over the network or from a local cache file.
package kingcounty

import (
	"context"
	"fmt"
	"net/url"
	"sort"
)

// defaultSearch mirrors the query the public search form sends for one
// downtown Seattle zip code over a year of inspections.
var defaultSearch = map[string]string{
	"Output":                     "W",
	"Business_Name":              "",
	"Business_Address":           "",
	"Longitude":                  "",
	"Latitude":                   "",
	"City":                       "",
	"Zip_Code":                   "98101",
	"Inspection_Type":            "All",
	"Inspection_Start":           "3/23/2015",
	"Inspection_End":             "3/23/2016",
	"Inspection_Closed_Business": "A",
	"Violation_Points":           "",
	"Violation_Red_Points":       "",
	"Violation_Descr":            "",
	"Fuzzy_Search":               "N",
	"Sort":                       "B",
}

// Search holds overrides for the default query. Keys the search form does
// not know are dropped.
type Search map[string]string

// Params returns the full query with overrides applied.
func (s Search) Params() url.Values {
	v := make(url.Values, len(defaultSearch))
	for k, def := range defaultSearch {
		v.Set(k, def)
	}
	for k, val := range s {
		if _, known := defaultSearch[k]; known {
			v.Set(k, val)
		}
	}
	return v
}

// Unknown returns the override keys Params ignores, sorted.
func (s Search) Unknown() []string {
	var out []string
	for k := range s {
		if _, known := defaultSearch[k]; !known {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// URL joins the endpoint with the encoded query.
func (s Search) URL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("kingcounty: parse endpoint: %w", err)
	}
	u.RawQuery = s.Params().Encode()
	return u.String(), nil
}

// Fetcher retrieves the raw bytes of a results page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}
