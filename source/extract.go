package source

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipped elements never contribute readable text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
	atom.Aside:    true,
	atom.Noscript: true,
	atom.Template: true,
}

// ExtractText returns the visible text of an HTML document with runs of
// whitespace collapsed to single spaces. Only the body is considered when the
// document has one.
func ExtractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	root := doc
	if body := findElement(doc, atom.Body); body != nil {
		root = body
	}

	var sb strings.Builder
	collectText(root, &sb)
	return collapseWhitespace(sb.String()), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
	case html.TextNode:
		sb.WriteString(n.Data)
		// Adjacent elements must not glue words together
		sb.WriteByte(' ')
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// collapseWhitespace trims s and replaces every whitespace run with one space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
