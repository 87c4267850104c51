// Package document turns raw SEC filing HTML into bounded plain text
// suitable for pattern search and for inclusion in a generation prompt.
package document

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize strips markup from a raw filing document. Script and style
// blocks are removed wholesale, remaining tags are dropped, consecutive
// whitespace collapses to single spaces and the result is trimmed.
// Empty input yields empty output; it never fails.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		// html.Parse is extremely forgiving, so this path is rare.
		// Fall back to a tag strip so a mangled document still flows
		// through the extractors instead of aborting the filing.
		return collapse(tagPattern.ReplaceAllString(raw, " "))
	}

	doc.Find("script, style").Remove()

	// Inline XBRL wrappers carry the values we want as text.
	doc.Find("ix\\:nonFraction, ix\\:nonNumeric, ix\\:fraction").Each(func(i int, sel *goquery.Selection) {
		sel.ReplaceWithHtml(sel.Text())
	})

	return collapse(doc.Text())
}

func collapse(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
