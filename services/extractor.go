package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"inspection-scraper/dom"
	"inspection-scraper/models"
	"inspection-scraper/utils"
)

// listingIDRegexp matches the id attribute of a restaurant listing container.
var listingIDRegexp = regexp.MustCompile(`PR[0-9]+~`)

const inspectionKeyword = "inspection"

// ExtractorOptions tunes an Extractor.
type ExtractorOptions struct {
	// ListingTag is the container tag of a listing. Defaults to "div".
	ListingTag string
	// MaxListings caps how many listings are assembled. 0 means no cap.
	MaxListings int
	// Workers is the number of listings processed concurrently.
	Workers int
}

// Extractor pulls restaurant records out of a parsed inspection page.
// It only reads the tree and holds no per-run state, so one Extractor can
// serve many pages.
type Extractor struct {
	cleaner *Cleaner
	logger  *utils.Logger
	opts    ExtractorOptions
}

// NewExtractor creates an Extractor.
func NewExtractor(cleaner *Cleaner, logger *utils.Logger, opts ExtractorOptions) *Extractor {
	if opts.ListingTag == "" {
		opts.ListingTag = "div"
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Extractor{cleaner: cleaner, logger: logger, opts: opts}
}

// Locate returns the listing containers under root in document order.
func (e *Extractor) Locate(root *dom.Node) []*dom.Node {
	return dom.FindAll(root, e.isListing)
}

func (e *Extractor) isListing(n *dom.Node) bool {
	if !n.IsElement(e.opts.ListingTag) {
		return false
	}
	id, ok := n.Attr("id")
	return ok && listingIDRegexp.MatchString(id)
}

// ExtractMetadata reads the two-column rows of the listing's first table.
// Later duplicate keys overwrite earlier ones.
func (e *Extractor) ExtractMetadata(listing *dom.Node) (map[string]string, error) {
	table := dom.FindFirst(listing, dom.HasTag("table"))
	if table == nil {
		return nil, ErrMissingMetadataTable
	}

	metadata := make(map[string]string)
	for _, row := range tableRows(table) {
		cells := cellsOf(row)
		if len(cells) != 2 {
			continue
		}
		metadata[e.cleaner.CleanCell(cells[0])] = e.cleaner.CleanCell(cells[1])
	}
	return metadata, nil
}

// IsInspectionRow reports whether row is a scored inspection event: four
// cells, and a first cell mentioning "inspection" anywhere but at the start.
func (e *Extractor) IsInspectionRow(row *dom.Node) bool {
	cells := cellsOf(row)
	if len(cells) == 0 {
		return false
	}
	if !row.IsElement("tr") || len(cells) != 4 {
		return false
	}

	label := strings.ToLower(e.cleaner.CleanCell(cells[0]))
	return strings.Contains(label, inspectionKeyword) &&
		!strings.HasPrefix(label, inspectionKeyword)
}

// Scores aggregates the listing's inspection rows. A listing without any
// yields models.NoScoreData. The average is the exact mean.
func (e *Extractor) Scores(listing *dom.Node) (models.ScoreSummary, error) {
	rows := dom.FindAll(listing, e.IsInspectionRow)
	if len(rows) == 0 {
		return models.NoScoreData, nil
	}

	var sum int
	summary := models.ScoreSummary{}
	for _, row := range rows {
		raw := strings.TrimSpace(cellsOf(row)[2].InnerText())
		score, err := strconv.Atoi(raw)
		if err != nil {
			return models.NoScoreData, fmt.Errorf("%w: %q", ErrInvalidScoreFormat, raw)
		}

		summary.Count++
		sum += score
		if summary.Count == 1 || score > summary.High {
			summary.High = score
		}
	}
	summary.Average = float64(sum) / float64(summary.Count)
	return summary, nil
}

// Record builds the merged record for one listing.
func (e *Extractor) Record(listing *dom.Node) (models.Record, error) {
	metadata, err := e.ExtractMetadata(listing)
	if err != nil {
		return models.Record{}, err
	}
	if _, ok := metadata[models.FieldBusinessName]; !ok {
		return models.Record{}, ErrMissingBusinessName
	}

	score, err := e.Scores(listing)
	if err != nil {
		return models.Record{}, err
	}
	return models.Record{Metadata: metadata, Score: score}, nil
}

// Assemble builds the result set for a page. Listings that fail are
// skipped and reported; a repeated business name replaces the earlier record.
func (e *Extractor) Assemble(root *dom.Node) (*models.ResultSet, []ListingError) {
	listings := e.Locate(root)
	if len(listings) == 0 {
		e.logger.Warn("[extractor] No listings found on page")
		return models.NewResultSet(nil), nil
	}
	if e.opts.MaxListings > 0 && len(listings) > e.opts.MaxListings {
		e.logger.Info("[extractor] Capping %d listings to %d", len(listings), e.opts.MaxListings)
		listings = listings[:e.opts.MaxListings]
	}

	type outcome struct {
		record models.Record
		err    error
	}
	outcomes := make([]outcome, len(listings))

	pool := utils.NewWorkerPool(e.opts.Workers, 0)
	for i, listing := range listings {
		i, listing := i, listing
		pool.Submit(func() {
			rec, err := e.Record(listing)
			outcomes[i] = outcome{record: rec, err: err}
		})
	}
	pool.Wait()

	records := make([]models.Record, 0, len(listings))
	names := utils.NewKeySet()
	var failures []ListingError
	for i, o := range outcomes {
		id, _ := listings[i].Attr("id")
		if o.err != nil {
			e.logger.Warn("[extractor] Skipping listing %s: %v", id, o.err)
			failures = append(failures, ListingError{Index: i, ID: id, Err: o.err})
			continue
		}
		name, _ := o.record.BusinessName()
		if !names.Add(name) {
			e.logger.Debug("[extractor] Duplicate business name %q, later listing %s wins", name, id)
		}
		records = append(records, o.record)
	}

	rs := models.NewResultSet(records)
	e.logger.Info("[extractor] Assembled %d records from %d listings (skipped %d)",
		rs.Len(), len(listings), len(failures))
	return rs, failures
}

// tableRows returns the rows belonging directly to table, looking through
// its own row-group sections but never into nested tables.
func tableRows(table *dom.Node) []*dom.Node {
	var rows []*dom.Node
	for _, c := range table.Children {
		switch {
		case c.IsElement("tr"):
			rows = append(rows, c)
		case c.IsElement("thead"), c.IsElement("tbody"), c.IsElement("tfoot"):
			rows = append(rows, dom.Children(c, dom.HasTag("tr"))...)
		}
	}
	return rows
}

func cellsOf(row *dom.Node) []*dom.Node {
	return dom.Children(row, dom.HasTag("td"))
}
