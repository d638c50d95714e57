package clean

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// skipTags lists elements whose text content is discarded.
var skipTags = map[string]bool{
	"script": true,
	"style":  true,
}

// stripHTML removes markup and decodes entities. Element boundaries become
// spaces so adjacent blocks do not run together. Text without markup
// characters is returned as is.
//
// Parsing decodes one level of escaping, so the text is parsed again for as
// long as that keeps shortening it. "&amp;amp;lt;b&amp;amp;gt;" ends up with
// no tag at all rather than one level less escaped.
func stripHTML(s string) string {
	size := visibleLen(s)
	for strings.ContainsAny(s, "<&") {
		next := stripMarkup(s)
		n := visibleLen(next)
		if n >= size {
			return next
		}
		s, size = next, n
	}
	return s
}

func stripMarkup(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s))
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipTags[n.Data] {
				return
			}
			buf.WriteByte(' ')
			defer buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return buf.String()
}

// visibleLen counts the non-space runes of s.
func visibleLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
