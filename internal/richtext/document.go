// Package richtext holds the HTML content of a text block together with
// the user's selection inside it.
package richtext

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Range selects top-level content blocks [Start, End).
type Range struct {
	Start int
	End   int
}

// Document is a parsed HTML fragment. Top-level element nodes and
// non-blank text runs are its blocks.
type Document struct {
	nodes []*html.Node
	raw   string
	sel   *Range
}

func NewDocument(content string) *Document {
	d := &Document{}
	d.SetContent(content)
	return d
}

// SetContent replaces the content and drops the selection.
func (d *Document) SetContent(content string) {
	d.raw = content
	d.sel = nil
	nodes, err := html.ParseFragment(strings.NewReader(content), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		d.nodes = nil
		return
	}
	d.nodes = nodes
}

// Content renders the document back to HTML.
func (d *Document) Content() string {
	if d.nodes == nil {
		return d.raw
	}
	var buf bytes.Buffer
	for _, n := range d.nodes {
		if err := html.Render(&buf, n); err != nil {
			return d.raw
		}
	}
	return buf.String()
}

// Text returns the document's text without markup.
func (d *Document) Text() string {
	var sb strings.Builder
	for i, n := range d.blocks() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text(n))
	}
	return sb.String()
}

func (d *Document) Len() int { return len(d.blocks()) }

func (d *Document) SelectAll() {
	d.sel = &Range{Start: 0, End: d.Len()}
}

// Select selects blocks [start, end).
func (d *Document) Select(start, end int) error {
	if start < 0 || end > d.Len() || start > end {
		return fmt.Errorf("select [%d, %d): out of range for %d blocks", start, end, d.Len())
	}
	d.sel = &Range{Start: start, End: end}
	return nil
}

func (d *Document) ClearSelection() { d.sel = nil }

func (d *Document) HasSelection() bool { return d.sel != nil }

func (d *Document) Selection() (Range, bool) {
	if d.sel == nil {
		return Range{}, false
	}
	return *d.sel, true
}

// SelectionBlocks returns the text of every block inside the selection.
func (d *Document) SelectionBlocks() []string {
	if d.sel == nil {
		return nil
	}
	blocks := d.blocks()
	out := make([]string, 0, d.sel.End-d.sel.Start)
	for _, n := range blocks[d.sel.Start:min(d.sel.End, len(blocks))] {
		out = append(out, text(n))
	}
	return out
}

func (d *Document) blocks() []*html.Node {
	var out []*html.Node
	for _, n := range d.nodes {
		switch n.Type {
		case html.ElementNode:
			out = append(out, n)
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				out = append(out, n)
			}
		}
	}
	return out
}

func text(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Br {
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
