package dom

import (
	"strings"
	"testing"
)

func TestStringContent(t *testing.T) {
	tests := []struct {
		name   string
		node   *Node
		want   string
		wantOK bool
	}{
		{"text node", Text("hello"), "hello", true},
		{"single text child", Element("td", nil, Text(" Name: ")), " Name: ", true},
		{"single element child", Element("td", nil, Element("b", nil, Text("bold"))), "bold", true},
		{"empty element", Element("td", nil), "", false},
		{"mixed content", Element("td", nil, Text("a"), Element("br", nil), Text("b")), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		got, ok := tt.node.StringContent()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestInnerText(t *testing.T) {
	n := Element("td", nil, Text(" 9"), Element("span", nil, Text("5 ")))
	if got := n.InnerText(); got != " 95 " {
		t.Errorf("InnerText: got %q, want %q", got, " 95 ")
	}
}

func TestFindAllDocumentOrder(t *testing.T) {
	root := Document(
		Element("div", []Attr{{"id", "a"}},
			Element("div", []Attr{{"id", "b"}}),
		),
		Element("div", []Attr{{"id", "c"}}),
	)

	got := FindAll(root, HasTag("div"))
	if len(got) != 3 {
		t.Fatalf("len: got %d, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if id, _ := got[i].Attr("id"); id != want {
			t.Errorf("node %d: got id %q, want %q", i, id, want)
		}
	}
}

func TestChildrenIsNotRecursive(t *testing.T) {
	row := Element("tr", nil,
		Element("td", nil, Element("table", nil, Element("tr", nil, Element("td", nil)))),
		Element("td", nil),
	)
	if got := len(Children(row, HasTag("td"))); got != 2 {
		t.Errorf("direct td count: got %d, want 2", got)
	}
	if got := len(FindAll(row, HasTag("td"))); got != 3 {
		t.Errorf("recursive td count: got %d, want 3", got)
	}
}

func TestFindFirst(t *testing.T) {
	root := Element("div", nil,
		Element("p", nil, Element("table", []Attr{{"id", "inner"}})),
		Element("table", []Attr{{"id", "outer"}}),
	)
	got := FindFirst(root, HasTag("table"))
	if got == nil {
		t.Fatal("expected a table")
	}
	if id, _ := got.Attr("id"); id != "inner" {
		t.Errorf("first table: got %q, want %q", id, "inner")
	}
	if FindFirst(root, HasTag("ul")) != nil {
		t.Error("expected nil for missing tag")
	}
}

func TestParse(t *testing.T) {
	page := `<!DOCTYPE html><html><body><!-- note -->
<div id="PR1~"><table><tr><td>Business Name:</td><td>VEGGIE GRILL</td></tr></table></div>
</body></html>`

	root, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Kind != DocumentNode {
		t.Errorf("root kind: got %v, want DocumentNode", root.Kind)
	}

	divs := FindAll(root, HasTag("div"))
	if len(divs) != 1 {
		t.Fatalf("divs: got %d, want 1", len(divs))
	}
	if id, _ := divs[0].Attr("id"); id != "PR1~" {
		t.Errorf("id: got %q, want %q", id, "PR1~")
	}

	cells := FindAll(divs[0], HasTag("td"))
	if len(cells) != 2 {
		t.Fatalf("cells: got %d, want 2", len(cells))
	}
	if s, ok := cells[1].StringContent(); !ok || s != "VEGGIE GRILL" {
		t.Errorf("cell text: got (%q, %v)", s, ok)
	}
}

func TestParseKeepsStructure(t *testing.T) {
	page := `<!DOCTYPE html><html><body><!-- skipped --><p class="lead" id="x">Seating <b>0-12</b></p></body></html>`

	root, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children) != 1 || !root.Children[0].IsElement("html") {
		t.Fatalf("root children: got %d, want only <html>", len(root.Children))
	}

	body := FindFirst(root, HasTag("body"))
	if body == nil {
		t.Fatal("body: not found")
	}
	if len(body.Children) != 1 || !body.Children[0].IsElement("p") {
		t.Fatalf("body children: got %d, want only <p> (comment dropped)", len(body.Children))
	}

	p := body.Children[0]
	if len(p.Attrs) != 2 || p.Attrs[0] != (Attr{Name: "class", Value: "lead"}) {
		t.Errorf("attrs: got %+v, want class then id", p.Attrs)
	}
	if len(p.Children) != 2 || p.Children[0].Kind != TextNode || p.Children[0].Data != "Seating " {
		t.Fatalf("p children: got %+v, want text then <b>", p.Children)
	}
	if got := p.InnerText(); got != "Seating 0-12" {
		t.Errorf("InnerText: got %q, want %q", got, "Seating 0-12")
	}
	if _, ok := p.StringContent(); ok {
		t.Error("StringContent: mixed children should have no string")
	}
}
