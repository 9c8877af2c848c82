// Package dom models a parsed markup tree as plain Go values so extraction
// predicates can run over synthetic trees as well as parsed pages.
package dom

import "strings"

// NodeKind distinguishes the variants a Node can take.
type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
	DocumentNode
)

// Attr is a single name/value attribute, kept in source order.
type Attr struct {
	Name  string
	Value string
}

// Node is one node of the tree. Elements use Tag, Attrs and Children;
// text nodes only use Data.
type Node struct {
	Kind     NodeKind
	Tag      string
	Attrs    []Attr
	Children []*Node
	Data     string
}

// Element builds an element node.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{Kind: ElementNode, Tag: strings.ToLower(tag), Attrs: attrs, Children: children}
}

// Text builds a text node.
func Text(data string) *Node {
	return &Node{Kind: TextNode, Data: data}
}

// Document builds a document root.
func Document(children ...*Node) *Node {
	return &Node{Kind: DocumentNode, Children: children}
}

// IsElement reports whether n is an element with the given tag.
// An empty tag matches any element.
func (n *Node) IsElement(tag string) bool {
	if n == nil || n.Kind != ElementNode {
		return false
	}
	return tag == "" || n.Tag == tag
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// StringContent returns the single string payload of n. A text node is its
// own payload; an element with exactly one child has that child's payload.
// Anything else (empty elements, mixed content) has none.
func (n *Node) StringContent() (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Kind {
	case TextNode:
		return n.Data, true
	case ElementNode:
		if len(n.Children) != 1 {
			return "", false
		}
		return n.Children[0].StringContent()
	}
	return "", false
}

// InnerText concatenates every descendant text node in document order.
func (n *Node) InnerText() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *Node) writeText(sb *strings.Builder) {
	if n == nil {
		return
	}
	if n.Kind == TextNode {
		sb.WriteString(n.Data)
		return
	}
	for _, c := range n.Children {
		c.writeText(sb)
	}
}
