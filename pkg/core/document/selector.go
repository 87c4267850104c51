package document

import (
	"regexp"
	"strings"
)

const (
	// maxExcerptLen caps each topical excerpt so the downstream prompt
	// stays constant-cost regardless of filing size.
	maxExcerptLen = 4000
	// excerptLeadIn is how far before a topical match the excerpt starts,
	// so the sentence containing the match survives intact.
	excerptLeadIn = 200
	// fallbackLen bounds the excerpt when no topical pattern matches.
	fallbackLen = 15000
)

// sectionRule is one topical search. Rules are applied in order and each
// category contributes at most one excerpt.
type sectionRule struct {
	category string
	pattern  *regexp.Regexp
}

var sectionRules = []sectionRule{
	{"share_counts", regexp.MustCompile(`(?i)shares?\s+(?:of\s+(?:the\s+registrant'?s\s+|our\s+)?common\s+stock\s+)?outstanding|outstanding\s+shares`)},
	{"public_float", regexp.MustCompile(`(?i)public\s+float|aggregate\s+market\s+value`)},
	{"capital_stock", regexp.MustCompile(`(?i)capital\s+stock|description\s+of\s+(?:the\s+registrant'?s\s+)?securities|authorized\s+shares`)},
	{"splits", regexp.MustCompile(`(?i)reverse\s+(?:stock\s+)?split|stock\s+split|\d+[-\s]for[-\s]\d+`)},
	{"offerings", regexp.MustCompile(`(?i)public\s+offering|registered\s+direct\s+offering|at[-\s]the[-\s]market|securities\s+purchase\s+agreement|share\s+repurchase|buyback`)},
}

// SelectSections scans normalized text for passages relevant to share
// structure and returns their ordered concatenation. Output length is
// bounded; when nothing topical matches, the first fallbackLen characters
// are returned instead.
func SelectSections(text string) string {
	if text == "" {
		return ""
	}

	var excerpts []string
	for _, rule := range sectionRules {
		loc := rule.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		start := loc[0] - excerptLeadIn
		if start < 0 {
			start = 0
		}
		end := start + maxExcerptLen
		if end > len(text) {
			end = len(text)
		}
		excerpts = append(excerpts, text[start:end])
	}

	if len(excerpts) == 0 {
		if len(text) > fallbackLen {
			return text[:fallbackLen]
		}
		return text
	}

	return strings.Join(excerpts, "\n\n")
}
