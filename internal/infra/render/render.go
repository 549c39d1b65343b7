// Package render derives plain-text projections from stored HTML bodies:
// full text, trimmed excerpts, and word counts. Nothing here is persisted;
// readers compute these at response time.
package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultExcerptWords matches the stock trim length for generated excerpts.
const DefaultExcerptWords = 55

const ellipsis = "…"

// Text strips markup from an HTML fragment and normalizes whitespace.
// Script, style, and other non-content subtrees are dropped wholesale.
func Text(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style, noscript, iframe, svg, template").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Excerpt trims an HTML fragment to at most maxWords words of plain text,
// appending an ellipsis when content was cut. Non-positive maxWords means
// the default trim length.
func Excerpt(html string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultExcerptWords
	}
	words := strings.Fields(Text(html))
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + ellipsis
}

// WordCount counts plain-text words in an HTML fragment.
func WordCount(html string) int {
	return len(strings.Fields(Text(html)))
}
