package services

import (
	"errors"
	"strings"
	"testing"

	"inspection-scraper/dom"
	"inspection-scraper/models"
)

func td(text string) *dom.Node {
	return dom.Element("td", nil, dom.Text(text))
}

func tr(cells ...*dom.Node) *dom.Node {
	return dom.Element("tr", nil, cells...)
}

func table(rows ...*dom.Node) *dom.Node {
	return dom.Element("table", nil, rows...)
}

func listing(id string, children ...*dom.Node) *dom.Node {
	return dom.Element("div", []dom.Attr{{Name: "id", Value: id}}, children...)
}

func inspectionRow(label, score string) *dom.Node {
	return tr(td(label), td("01/02/2016"), td(score), td("Satisfactory"))
}

func metaTable(name, address string) *dom.Node {
	return table(
		tr(td("Business Name:"), td(name)),
		tr(td("Address:"), td(address)),
	)
}

func newTestExtractor(opts ExtractorOptions) *Extractor {
	return NewExtractor(NewCleaner(newTestLogger(), nil), newTestLogger(), opts)
}

func TestLocateListings(t *testing.T) {
	root := dom.Document(
		listing("PR100~"),
		dom.Element("section", nil, listing("FOO~")),
		dom.Element("section", nil, listing("PR7~")),
		dom.Element("span", []dom.Attr{{Name: "id", Value: "PR8~"}}),
	)

	got := newTestExtractor(ExtractorOptions{}).Locate(root)
	if len(got) != 2 {
		t.Fatalf("listings: got %d, want 2", len(got))
	}
	for i, want := range []string{"PR100~", "PR7~"} {
		if id, _ := got[i].Attr("id"); id != want {
			t.Errorf("listing %d: got %q, want %q", i, id, want)
		}
	}
}

func TestLocateNoMatches(t *testing.T) {
	root := dom.Document(listing("FOO~"), listing("PR~"))
	if got := newTestExtractor(ExtractorOptions{}).Locate(root); len(got) != 0 {
		t.Errorf("expected no listings, got %d", len(got))
	}
}

func TestExtractMetadata(t *testing.T) {
	l := listing("PR1~", table(
		tr(td("Business Name:"), td("VEGGIE GRILL")),
		tr(td("Address:"), td("1230 PINE ST")),
		tr(dom.Element("td", nil), td("")),
		tr(td("Phone:"), td("(206) 555-0100"), td("extra")),
		dom.Element("tbody", nil, tr(td("City:"), td("SEATTLE"))),
		tr(td("Nested:"), dom.Element("td", nil, table(tr(td("Inner:"), td("x"))))),
		tr(td("Address:"), td("1234 PINE ST")),
	))

	got, err := newTestExtractor(ExtractorOptions{}).ExtractMetadata(l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"Business Name": "VEGGIE GRILL",
		"Address":       "1234 PINE ST",
		"Address 2:":    "",
		"City":          "SEATTLE",
		"Nested":        "Address 2:",
	}
	if len(got) != len(want) {
		t.Errorf("metadata size: got %d (%v), want %d", len(got), got, len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("metadata[%q]: got %q, want %q", k, got[k], v)
		}
	}
	if _, ok := got["Inner"]; ok {
		t.Error("rows of nested tables must not be read")
	}
}

func TestExtractMetadataMissingTable(t *testing.T) {
	_, err := newTestExtractor(ExtractorOptions{}).ExtractMetadata(listing("PR1~", dom.Element("p", nil)))
	if !errors.Is(err, ErrMissingMetadataTable) {
		t.Errorf("got %v, want ErrMissingMetadataTable", err)
	}
}

func TestIsInspectionRow(t *testing.T) {
	e := newTestExtractor(ExtractorOptions{})

	tests := []struct {
		name string
		row  *dom.Node
		want bool
	}{
		{"data row", inspectionRow("3rd Routine Inspection", "10"), true},
		{"header row", inspectionRow("Inspection Type", "Score"), false},
		{"case insensitive", inspectionRow("Return INSPECTION", "5"), true},
		{"no keyword", inspectionRow("Consultation/Education", "0"), false},
		{"three cells", tr(td("Routine Inspection"), td("x"), td("5")), false},
		{"no cells", tr(), false},
		{"not a row", dom.Element("div", nil, td("Routine Inspection"), td(""), td("5"), td("")), false},
		{"leading dashes", inspectionRow(" - Inspection summary", "5"), false},
	}

	for _, tt := range tests {
		if got := e.IsInspectionRow(tt.row); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestScoresNoData(t *testing.T) {
	l := listing("PR1~", metaTable("CAFE", "1 MAIN ST"),
		table(inspectionRow("Inspection Type", "Score")))

	got, err := newTestExtractor(ExtractorOptions{}).Scores(l)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != models.NoScoreData || got.HasData() {
		t.Errorf("got %+v, want no data sentinel", got)
	}
}

func TestScoresAggregate(t *testing.T) {
	tests := []struct {
		scores  []string
		average float64
		high    int
	}{
		{[]string{"80", "90", "100"}, 90, 100},
		// exact division, not truncated to 80
		{[]string{"80", "81"}, 80.5, 81},
		{[]string{" 0 "}, 0, 0},
	}

	e := newTestExtractor(ExtractorOptions{})
	for _, tt := range tests {
		rows := make([]*dom.Node, 0, len(tt.scores))
		for _, s := range tt.scores {
			rows = append(rows, inspectionRow("Routine Inspection", s))
		}
		got, err := e.Scores(listing("PR1~", table(rows...)))
		if err != nil {
			t.Fatalf("scores %v: unexpected error: %v", tt.scores, err)
		}
		if got.Count != len(tt.scores) || got.High != tt.high || got.Average != tt.average {
			t.Errorf("scores %v: got %+v, want avg %.2f high %d count %d",
				tt.scores, got, tt.average, tt.high, len(tt.scores))
		}
	}
}

func TestScoresInvalidFormat(t *testing.T) {
	l := listing("PR1~", table(
		inspectionRow("Routine Inspection", "90"),
		inspectionRow("Return Inspection", "n/a"),
	))
	_, err := newTestExtractor(ExtractorOptions{}).Scores(l)
	if !errors.Is(err, ErrInvalidScoreFormat) {
		t.Fatalf("got %v, want ErrInvalidScoreFormat", err)
	}
	if !strings.Contains(err.Error(), "n/a") {
		t.Errorf("error should quote the raw score: %v", err)
	}
}

func TestAssembleIsolatesFailures(t *testing.T) {
	root := dom.Document(
		listing("PR1~", metaTable("A", "1 FIRST AVE"), table(inspectionRow("Routine Inspection", "10"))),
		listing("PR2~", dom.Element("p", nil)),
		listing("PR3~", table(tr(td("Address:"), td("nowhere")))),
		listing("PR4~", metaTable("B", "2 SECOND AVE"), table(inspectionRow("Routine Inspection", "bad"))),
		listing("PR5~", metaTable("C", "3 THIRD AVE")),
	)

	rs, failures := newTestExtractor(ExtractorOptions{Workers: 3}).Assemble(root)
	if rs.Len() != 2 {
		t.Errorf("records: got %d, want 2 (%v)", rs.Len(), rs.Names())
	}
	if len(failures) != 3 {
		t.Fatalf("failures: got %d, want 3", len(failures))
	}

	wantErrs := []struct {
		id  string
		err error
	}{
		{"PR2~", ErrMissingMetadataTable},
		{"PR3~", ErrMissingBusinessName},
		{"PR4~", ErrInvalidScoreFormat},
	}
	for i, w := range wantErrs {
		if failures[i].ID != w.id || !errors.Is(failures[i], w.err) {
			t.Errorf("failure %d: got %s (%v), want %s (%v)", i, failures[i].ID, failures[i].Err, w.id, w.err)
		}
	}

	c, ok := rs.Get("C")
	if !ok {
		t.Fatal("missing record C")
	}
	if c.Fields()[models.FieldInspections] != models.NoData {
		t.Errorf("C inspections: got %v, want %q", c.Fields()[models.FieldInspections], models.NoData)
	}
}

func TestAssembleDuplicateNameOverwrites(t *testing.T) {
	root := dom.Document(
		listing("PR1~", metaTable("SUBWAY", "1 FIRST AVE"), table(inspectionRow("Routine Inspection", "10"))),
		listing("PR2~", metaTable("SUBWAY", "2 SECOND AVE"), table(inspectionRow("Routine Inspection", "20"))),
	)

	rs, failures := newTestExtractor(ExtractorOptions{Workers: 2}).Assemble(root)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if rs.Len() != 1 {
		t.Fatalf("records: got %d, want 1", rs.Len())
	}
	got, _ := rs.Get("SUBWAY")
	if got.Metadata["Address"] != "2 SECOND AVE" || got.Score.High != 20 {
		t.Errorf("later listing should win: got %+v", got)
	}
}

func TestAssembleMaxListings(t *testing.T) {
	root := dom.Document(
		listing("PR1~", metaTable("A", "1")),
		listing("PR2~", metaTable("B", "2")),
		listing("PR3~", metaTable("C", "3")),
	)

	rs, _ := newTestExtractor(ExtractorOptions{MaxListings: 2}).Assemble(root)
	if got := rs.Names(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("names: got %v, want [A B]", got)
	}
}

func TestAssembleEmptyPage(t *testing.T) {
	rs, failures := newTestExtractor(ExtractorOptions{}).Assemble(dom.Document())
	if rs.Len() != 0 || failures != nil {
		t.Errorf("got %d records and %v failures, want empty", rs.Len(), failures)
	}
}

const veggieGrillPage = `<html><body>
<div id="PR0084952~" class="listing">
  <table>
    <tr><td>Business Name:</td><td>VEGGIE GRILL</td></tr>
    <tr><td>Business Category:</td><td>Seating 0-12 - Risk Category III</td></tr>
    <tr><td>Address:</td><td>1230 PINE ST</td></tr>
    <tr><td><span></span></td><td></td></tr>
  </table>
  <table>
    <tr><td>Inspection Type</td><td>Date</td><td>Score</td><td>Result</td></tr>
    <tr><td>Routine Inspection/Field Review</td><td>01/05/2016</td><td>95</td><td>Unsatisfactory</td></tr>
    <tr><td>Return Inspection</td><td>01/19/2016</td><td> 85 </td><td>Satisfactory</td></tr>
  </table>
</div>
</body></html>`

func TestAssembleEndToEnd(t *testing.T) {
	root, err := dom.Parse(strings.NewReader(veggieGrillPage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	rs, failures := newTestExtractor(ExtractorOptions{}).Assemble(root)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	if rs.Len() != 1 {
		t.Fatalf("records: got %d, want 1", rs.Len())
	}

	rec, ok := rs.Get("VEGGIE GRILL")
	if !ok {
		t.Fatal("missing VEGGIE GRILL")
	}
	fields := rec.Fields()
	if fields[models.FieldAverageScore] != float64(90) {
		t.Errorf("Average Score: got %v, want 90", fields[models.FieldAverageScore])
	}
	if fields[models.FieldHighScore] != 95 {
		t.Errorf("High Score: got %v, want 95", fields[models.FieldHighScore])
	}
	if fields[models.FieldInspections] != 2 {
		t.Errorf("Inspections: got %v, want 2", fields[models.FieldInspections])
	}
	if fields[models.FieldAddress] != "1230 PINE ST" {
		t.Errorf("Address: got %v", fields[models.FieldAddress])
	}
	if _, ok := rec.Metadata["Address 2:"]; !ok {
		t.Error("empty address line should be keyed by the fallback label")
	}
}
