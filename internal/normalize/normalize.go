// Package normalize converts raw markup into a canonical textual form: a
// parsed, re-indented rendering of the document tree. Normalization is
// total; malformed markup still yields some canonical string, because the
// parser repairs rather than rejects.
package normalize

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Func is the signature of a markup normalizer.
type Func func(raw []byte) string

const indent = " "

// voidElements have no closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// HTML parses raw markup and renders it with one level of indentation per
// tree depth, one node per line. Two lexically different documents with the
// same parse tree normalize to the same string.
func HTML(raw []byte) string {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		// html.Parse only fails on reader errors, which cannot happen
		// with a bytes.Reader, but fall back to the raw text anyway.
		return string(raw)
	}

	var b strings.Builder
	writeNode(&b, doc, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n *html.Node, depth int) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(b, c, depth)
		}
		return
	case html.DoctypeNode:
		writeLine(b, depth, "<!DOCTYPE "+n.Data+">")
		return
	case html.CommentNode:
		writeLine(b, depth, "<!--"+n.Data+"-->")
		return
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			writeLine(b, depth, text)
		}
		return
	case html.ElementNode:
		writeLine(b, depth, openTag(n))
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(b, c, depth+1)
		}
		if !voidElements[n.Data] {
			writeLine(b, depth, "</"+n.Data+">")
		}
	}
}

func openTag(n *html.Node) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Data)
	for _, attr := range n.Attr {
		b.WriteString(" ")
		b.WriteString(attr.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(attr.Val))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}

func writeLine(b *strings.Builder, depth int, line string) {
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
	b.WriteString(line)
	b.WriteString("\n")
}
