package services

import (
	"strings"

	"inspection-scraper/dom"
	"inspection-scraper/utils"
)

// DefaultFallbackLabel stands in for cells without a text payload. The
// King County pages leave the second address line empty or wrap it in
// markup, and keeping a stable key for it is what the metadata merge needs.
const DefaultFallbackLabel = "Address 2:"

// FallbackLabel yields the text used for a cell with no string payload.
type FallbackLabel func(cell *dom.Node) string

// StaticLabel returns a FallbackLabel that always yields label.
func StaticLabel(label string) FallbackLabel {
	return func(*dom.Node) string { return label }
}

// Cleaner turns raw table cells into canonical label/value strings.
type Cleaner struct {
	logger   *utils.Logger
	fallback FallbackLabel
}

// NewCleaner creates a Cleaner. A nil fallback uses DefaultFallbackLabel.
func NewCleaner(logger *utils.Logger, fallback FallbackLabel) *Cleaner {
	if fallback == nil {
		fallback = StaticLabel(DefaultFallbackLabel)
	}
	return &Cleaner{logger: logger, fallback: fallback}
}

// CleanCell returns the normalized text of cell: surrounding whitespace,
// then dashes and spaces, then trailing colons are removed.
func (c *Cleaner) CleanCell(cell *dom.Node) string {
	raw, ok := cell.StringContent()
	if !ok {
		c.logger.Debug("[cleaner] cell has no text payload, using fallback label")
		return c.fallback(cell)
	}
	return normaliseText(raw)
}

func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "- ")
	return strings.TrimRight(s, ":")
}
