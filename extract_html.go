package ratefeed

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// This file holds the strategies for the semi-structured (markup table)
// source shape. The markup of these pages shifts over time, so value
// location goes through an ordered fallback chain: a table located by
// candidate class names, then a full-text search across the document.

// TableByClass returns a Strategy that locates a table by trying the given
// class names in priority order and taking the first table found. Within it,
// the header row is skipped and the first data row whose first cell contains
// the series label (case-insensitive) provides the value: cell valueCol, or
// cell altCol when valueCol is empty.
func TableByClass(classes []string, valueCol, altCol int) Strategy {
	return func(resp *Response, series string) (string, bool) {
		doc, err := html.Parse(bytes.NewReader(resp.Body))
		if err != nil {
			return "", false
		}
		var table *html.Node
		for _, class := range classes {
			if table = findTable(doc, class); table != nil {
				break
			}
		}
		if table == nil {
			return "", false
		}
		rows := findAll(table, atom.Tr)
		for i, row := range rows {
			if i == 0 {
				continue // header row
			}
			cells := findAll(row, atom.Td)
			if len(cells) == 0 {
				continue
			}
			if !matchSeries(collectText(cells[0]), series) {
				continue
			}
			return rowValue(cells, valueCol, altCol)
		}
		return "", false
	}
}

// TextSearch returns the last-resort Strategy: scan every text node in the
// document for the series label and walk up to its enclosing table row to
// recover the value, using the same column designation as TableByClass.
func TextSearch(valueCol, altCol int) Strategy {
	return func(resp *Response, series string) (string, bool) {
		doc, err := html.Parse(bytes.NewReader(resp.Body))
		if err != nil {
			return "", false
		}
		var raw string
		var found bool
		walk(doc, func(n *html.Node) bool {
			if n.Type != html.TextNode || !matchSeries(n.Data, series) {
				return true
			}
			row := ancestor(n, atom.Tr)
			if row == nil {
				return true
			}
			raw, found = rowValue(findAll(row, atom.Td), valueCol, altCol)
			return !found
		})
		return raw, found
	}
}

// rowValue picks the designated value cell, with the secondary column as
// fallback when the primary one is empty.
func rowValue(cells []*html.Node, valueCol, altCol int) (string, bool) {
	if v := cellText(cells, valueCol); v != "" {
		return v, true
	}
	if v := cellText(cells, altCol); v != "" {
		return v, true
	}
	return "", false
}

func cellText(cells []*html.Node, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(collectText(cells[i]))
}

// walk visits n and its descendants depth-first until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// findTable returns the first table whose class attribute carries the given
// class token.
func findTable(doc *html.Node, class string) *html.Node {
	var table *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table && hasClass(n, class) {
			table = n
			return false
		}
		return true
	})
	return table
}

// findAll collects all descendant elements of the given kind, in document
// order.
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type == html.ElementNode && c.DataAtom == a {
			out = append(out, c)
		}
		return true
	})
	return out
}

// ancestor returns the nearest ancestor element of the given kind, or nil.
func ancestor(n *html.Node, a atom.Atom) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.DataAtom == a {
			return p
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, token := range strings.Fields(attr.Val) {
			if token == class {
				return true
			}
		}
	}
	return false
}

// collectText concatenates all text nodes under n.
func collectText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}
