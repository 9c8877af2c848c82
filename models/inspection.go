package models

import (
	"encoding/json"
	"sort"
)

// Field names shared by records, exports and storage.
const (
	FieldBusinessName = "Business Name"
	FieldAddress      = "Address"
	FieldAverageScore = "Average Score"
	FieldHighScore    = "High Score"
	FieldInspections  = "Inspections"
	FieldCategory     = "Business Category"

	// NoData is rendered in place of every score field when a restaurant
	// has no inspection history.
	NoData = "No Data"
)

// ScoreSummary aggregates the inspection scores of one listing.
// The zero value is the "no data" sentinel.
type ScoreSummary struct {
	Average float64
	High    int
	Count   int
}

// NoScoreData is the sentinel for a listing without inspection rows.
var NoScoreData = ScoreSummary{}

// HasData reports whether the summary holds at least one inspection.
func (s ScoreSummary) HasData() bool {
	return s.Count > 0
}

// Record merges one listing's metadata with its score summary.
type Record struct {
	Metadata map[string]string
	Score    ScoreSummary
}

// BusinessName returns the record key.
func (r Record) BusinessName() (string, bool) {
	name, ok := r.Metadata[FieldBusinessName]
	return name, ok
}

// Fields renders the merged field map. Score fields overwrite metadata keys
// of the same name.
func (r Record) Fields() map[string]any {
	out := make(map[string]any, len(r.Metadata)+3)
	for k, v := range r.Metadata {
		out[k] = v
	}
	if r.Score.HasData() {
		out[FieldAverageScore] = r.Score.Average
		out[FieldHighScore] = r.Score.High
		out[FieldInspections] = r.Score.Count
	} else {
		out[FieldAverageScore] = NoData
		out[FieldHighScore] = NoData
		out[FieldInspections] = NoData
	}
	return out
}

// Subset returns only the named fields that are present.
func (r Record) Subset(keys ...string) map[string]any {
	all := r.Fields()
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out
}

// MarshalJSON encodes the record as its merged field map.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}

// MarshalYAML encodes the record as its merged field map.
func (r Record) MarshalYAML() (any, error) {
	return r.Fields(), nil
}

// ResultSet maps business name to Record. It is filled once by
// NewResultSet and only read afterwards.
type ResultSet struct {
	byName map[string]Record
	order  []string
}

// NewResultSet builds a ResultSet from records in document order. A record
// whose name was already seen replaces the earlier one and keeps its
// position. Records without a business name are ignored.
func NewResultSet(records []Record) *ResultSet {
	rs := &ResultSet{byName: make(map[string]Record, len(records))}
	for _, r := range records {
		name, ok := r.BusinessName()
		if !ok {
			continue
		}
		if _, seen := rs.byName[name]; !seen {
			rs.order = append(rs.order, name)
		}
		rs.byName[name] = r
	}
	return rs
}

// Get returns the record stored under name.
func (rs *ResultSet) Get(name string) (Record, bool) {
	r, ok := rs.byName[name]
	return r, ok
}

// Len returns the number of records.
func (rs *ResultSet) Len() int {
	return len(rs.order)
}

// Names returns the business names in first-seen order.
func (rs *ResultSet) Names() []string {
	out := make([]string, len(rs.order))
	copy(out, rs.order)
	return out
}

// SortedNames returns the business names in lexical order.
func (rs *ResultSet) SortedNames() []string {
	out := rs.Names()
	sort.Strings(out)
	return out
}

// Records returns the records in first-seen order.
func (rs *ResultSet) Records() []Record {
	out := make([]Record, 0, len(rs.order))
	for _, name := range rs.order {
		out = append(out, rs.byName[name])
	}
	return out
}

// MarshalJSON encodes the set as an object keyed by business name.
func (rs *ResultSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(rs.byName)
}
