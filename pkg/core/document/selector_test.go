package document

import (
	"strings"
	"testing"
)

func TestSelectSectionsFindsTopicalPassages(t *testing.T) {
	text := strings.Repeat("filler text ", 2000) +
		"as of March 1, 2024 there were 48,000,000 shares of common stock outstanding " +
		strings.Repeat("more filler ", 2000) +
		"the board approved a 2-for-1 stock split effective April 1 " +
		strings.Repeat("tail filler ", 500)

	got := SelectSections(text)

	if !strings.Contains(got, "48,000,000 shares of common stock outstanding") {
		t.Errorf("share-count passage not selected")
	}
	if !strings.Contains(got, "2-for-1 stock split") {
		t.Errorf("split passage not selected")
	}
}

func TestSelectSectionsFallback(t *testing.T) {
	text := strings.Repeat("nothing topical here ", 2000)

	got := SelectSections(text)
	if len(got) != fallbackLen {
		t.Errorf("expected fallback length %d, got %d", fallbackLen, len(got))
	}
	if !strings.HasPrefix(text, got) {
		t.Errorf("fallback should be a prefix of the input")
	}
}

func TestSelectSectionsShortInputFallback(t *testing.T) {
	text := "short irrelevant document"
	if got := SelectSections(text); got != text {
		t.Errorf("short input should pass through, got %q", got)
	}
}

func TestSelectSectionsBounded(t *testing.T) {
	// Every category matching on a huge document must still produce
	// bounded output.
	text := "shares outstanding public float capital stock reverse split public offering " +
		strings.Repeat("x", 500000)

	got := SelectSections(text)
	maxTotal := len(sectionRules)*maxExcerptLen + (len(sectionRules)-1)*2
	if len(got) > maxTotal {
		t.Errorf("output length %d exceeds bound %d", len(got), maxTotal)
	}
}

func TestSelectSectionsEmptyInput(t *testing.T) {
	if got := SelectSections(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
