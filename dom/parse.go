package dom

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// Parse reads an HTML document and converts it into a Node tree.
// Comments and doctype nodes are dropped.
func Parse(r io.Reader) (*Node, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return Document(convertContents(doc.Selection)...), nil
}

// convertContents converts the child nodes of sel, text nodes included.
func convertContents(sel *goquery.Selection) []*Node {
	var out []*Node
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		switch name := goquery.NodeName(s); name {
		case "#text":
			out = append(out, Text(s.Text()))
		case "", "#comment", "#doctype", "#document":
		default:
			out = append(out, Element(name, attrsOf(s), convertContents(s)...))
		}
	})
	return out
}

func attrsOf(s *goquery.Selection) []Attr {
	node := s.Get(0)
	attrs := make([]Attr, 0, len(node.Attr))
	for _, a := range node.Attr {
		attrs = append(attrs, Attr{Name: a.Key, Value: a.Val})
	}
	return attrs
}
