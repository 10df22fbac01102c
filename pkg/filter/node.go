package filter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is one node of a decoded Filter Encoding document.
// Text nodes are kept between elements; use Elements to skip them.
type Node struct {
	Type     NodeType
	Name     string
	Space    string
	Attr     map[string]string
	Children []*Node
	Data     string
	// Quoted marks a Literal that is always a string. Decoded documents
	// never set it.
	Quoted   bool
}

// NewElement builds an element node. Attribute keys are local names.
func NewElement(name string, attr map[string]string, children ...*Node) *Node {
	if attr == nil {
		attr = map[string]string{}
	}
	return &Node{Type: ElementNode, Name: name, Attr: attr, Children: children}
}

// NewStringLiteral builds a Literal rendered as a quoted string whatever
// its text looks like.
func NewStringLiteral(text string) *Node {
	n := NewElement("Literal", nil, NewText(text))
	n.Quoted = true
	return n
}

// NewText builds a text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// Elements returns the element children of n in document order.
func (n *Node) Elements() []*Node {
	elements := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Type == ElementNode {
			elements = append(elements, c)
		}
	}
	return elements
}

// Child returns the first element child with the given local name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Type == ElementNode && c.Name == name {
			return c
		}
	}
	return nil
}

// Attribute returns the value of the attribute with the given local name.
func (n *Node) Attribute(name string) (string, bool) {
	v, ok := n.Attr[name]
	return v, ok
}

// Content returns the concatenated text of n and all its descendants.
func (n *Node) Content() string {
	if n.Type == TextNode {
		return n.Data
	}
	var b strings.Builder
	n.appendContent(&b)
	return b.String()
}

func (n *Node) appendContent(b *strings.Builder) {
	for _, c := range n.Children {
		if c.Type == TextNode {
			b.WriteString(c.Data)
			continue
		}
		c.appendContent(b)
	}
}

// Decode reads one XML document and returns its root element.
// Comments, processing instructions and directives are dropped.
func Decode(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)

	var (
		root  *Node
		stack []*Node
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapError(InvalidFilter, err, "malformed filter document")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Type:  ElementNode,
				Name:  t.Name.Local,
				Space: t.Name.Space,
				Attr:  make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				node.Attr[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, newError(InvalidFilter, "filter document has more than one root element")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, NewText(string(t)))
		}
	}

	if root == nil {
		return nil, newError(InvalidFilter, "empty filter document")
	}

	return root, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(src []byte) (*Node, error) {
	return Decode(bytes.NewReader(src))
}
