// Package anchor works out how a documentation page highlights the anchor
// it was opened at.
package anchor

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ziadkadry99/doxnav/internal/location"
)

var ErrAnchorNotFound = errors.New("anchor not found in document")

// Kind is the shape of element an anchor points into.
type Kind string

const (
	KindMember    Kind = "member"    // member declaration without details
	KindEnumValue Kind = "enumvalue" // enum value inside a member table
	KindField     Kind = "field"     // struct field
	KindHeader    Kind = "header"    // section header
	KindNormal    Kind = "normal"    // documented member
	KindLine      Kind = "line"      // source line
)

// Highlight describes the glow applied when a page is opened at an anchor.
type Highlight struct {
	Anchor   string        `json:"anchor"`
	Kind     Kind          `json:"kind"`
	Duration time.Duration `json:"duration"`
	Element  string        `json:"element"` // tag.class of the glowing element
	Count    int           `json:"count"`   // number of glowing elements
}

// Classify parses an HTML page and classifies the element named by anchor,
// with or without its leading '#'.
func Classify(r io.Reader, anchor string) (Highlight, error) {
	name := strings.TrimPrefix(anchor, "#")
	if name == "" {
		return Highlight{}, fmt.Errorf("%w: empty anchor", ErrAnchorNotFound)
	}
	doc, err := html.Parse(r)
	if err != nil {
		return Highlight{}, fmt.Errorf("parsing document: %w", err)
	}

	a := find(doc, func(n *html.Node) bool {
		return attr(n, "id") == name || (n.DataAtom == atom.A && attr(n, "name") == name)
	})
	if a == nil {
		return Highlight{}, fmt.Errorf("%w: #%s", ErrAnchorNotFound, name)
	}

	h := Highlight{Anchor: "#" + name, Duration: time.Second, Count: 1}
	parent := a.Parent

	switch {
	case location.IsLineAnchor("#" + name):
		h.Kind = KindLine
		h.Element = describe(parent)
	case parent != nil && attr(parent, "class") == "memItemLeft":
		h.Kind = KindMember
		h.Duration = 300 * time.Millisecond
		rows := findAll(doc, func(n *html.Node) bool {
			return n.DataAtom == atom.Tr && strings.HasSuffix(attr(n, "class"), name) && inMemberDecls(n)
		})
		h.Count = 0
		for _, tr := range rows {
			h.Count += countElements(tr)
		}
		h.Element = "tr." + attr(parent.Parent, "class")
	case ancestor(a, 3) != nil && ancestor(a, 3).DataAtom == atom.Tr:
		h.Kind = KindEnumValue
		h.Element = "div.memitem"
		h.Count = 0
		for p := a.Parent; p != nil; p = p.Parent {
			if p.DataAtom == atom.Div && hasClass(p, "memitem") {
				h.Count++
			}
		}
	case parent != nil && attr(parent, "class") == "fieldtype":
		h.Kind = KindField
		h.Element = describe(parent.Parent)
	case parent != nil && isHeader(parent):
		h.Kind = KindHeader
		h.Element = describe(parent)
	default:
		h.Kind = KindNormal
		next := nextElement(a)
		h.Element = describe(next)
		if next == nil {
			h.Count = 0
		}
	}
	return h, nil
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// ancestor returns the level-th element above n (1 is the parent).
func ancestor(n *html.Node, level int) *html.Node {
	for i := 0; i < level && n != nil; i++ {
		n = n.Parent
	}
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return n
}

func isHeader(n *html.Node) bool {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func inMemberDecls(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.DataAtom == atom.Table && hasClass(p, "memberdecls") {
			return true
		}
	}
	return false
}

func countElements(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func describe(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	if class := attr(n, "class"); class != "" {
		return n.Data + "." + strings.Fields(class)[0]
	}
	return n.Data
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
