package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// HeuristicExtractor applies a fixed, ordered set of pattern rules to the
// full normalized filing text. Rules are independent: one failing to match
// leaves its field nil and never blocks the others. It emits no corporate
// actions, only a split detection signal.
type HeuristicExtractor struct{}

// HeuristicResult carries the pattern-rule record plus the coarse split
// signal, which is detection-only and never synthesizes an action row.
type HeuristicResult struct {
	Record        Record
	SplitDetected bool
	SplitRatio    string // "X-for-Y" when detected
}

// Outstanding-share phrasings, tried in order. SEC cover pages vary
// between "X shares ... outstanding" and "shares outstanding: X".
var outstandingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:there\s+were\s+)?([0-9][0-9,]{2,})\s+shares\s+of\s+(?:the\s+registrant'?s\s+|our\s+|its\s+)?(?:common\s+stock|common\s+shares)[^.]{0,120}?\boutstanding\b`),
	regexp.MustCompile(`(?i)shares\s+(?:issued\s+and\s+)?outstanding[^0-9%]{0,40}?([0-9][0-9,]{2,})`),
	regexp.MustCompile(`(?i)([0-9][0-9,]{2,})\s+shares\s+(?:issued\s+and\s+)?outstanding`),
}

/// Public-float phrasings: the cover-page "aggregate market value held by
// non-affiliates" wording and the shorter "public float" form.
var floatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)aggregate\s+market\s+value[^$]{0,200}?non[-\s]affiliates[^$]{0,160}?\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(thousand|million|billion)?`),
	regexp.MustCompile(`(?i)public\s+float[^$]{0,100}?\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)\s*(thousand|million|billion)?`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+([0-9]{1,2}),\s+([0-9]{4})`),
	regexp.MustCompile(`([0-9]{4})-([0-9]{2})-([0-9]{2})`),
}

var splitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([0-9]+)[-\s]for[-\s]([0-9]+)\s+(?:reverse\s+)?(?:stock\s+|share\s+)?split`),
	regexp.MustCompile(`(?i)reverse\s+(?:stock\s+|share\s+)?split[^.]{0,60}?([0-9]+)[-\s]for[-\s]([0-9]+)`),
}

var scaleFactors = map[string]float64{
	"thousand": 1e3,
	"million":  1e6,
	"billion":  1e9,
}

// floatDateWindow bounds how far around the float figure a calendar date
// is still considered its as-of date.
const floatDateWindow = 400

// Extract runs every rule over the normalized text. Empty input yields an
// all-nil result; no rule ever errors.
func (e *HeuristicExtractor) Extract(text string) HeuristicResult {
	var res HeuristicResult
	if text == "" {
		return res
	}

	for _, p := range outstandingPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if n, ok := parseShareCount(m[1]); ok {
				res.Record.OutstandingShares = &n
				break
			}
		}
	}

	for _, p := range floatPatterns {
		loc := p.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		m := p.FindStringSubmatch(text)
		usd, ok := parseDollarAmount(m[1], m[2])
		if !ok {
			continue
		}
		res.Record.PublicFloatUSD = &usd
		if d, ok := nearbyDate(text, loc[0], loc[1]); ok {
			iso := d.Format("2006-01-02")
			res.Record.PublicFloatDate = &iso
		}
		break
	}

	for _, p := range splitPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			res.SplitDetected = true
			res.SplitRatio = m[1] + "-for-" + m[2]
			break
		}
	}

	return res
}

// nearbyDate finds the calendar-date mention closest to the float figure,
// scanning a bounded window around the match.
func nearbyDate(text string, start, end int) (time.Time, bool) {
	lo := start - floatDateWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + floatDateWindow
	if hi > len(text) {
		hi = len(text)
	}
	window := text[lo:hi]

	for _, p := range datePatterns {
		m := p.FindStringSubmatch(window)
		if m == nil {
			continue
		}
		if d, err := parseDateMatch(m); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseDateMatch(m []string) (time.Time, error) {
	if _, err := strconv.Atoi(m[1]); err == nil {
		// ISO form: YYYY-MM-DD
		return time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	}
	return time.Parse("January 2, 2006", m[1]+" "+m[2]+", "+m[3])
}

// parseShareCount strips thousands separators and parses a share count.
func parseShareCount(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseDollarAmount parses the figure and applies the scale suffix
// multiplier when present.
func parseDollarAmount(figure, scale string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(figure, ",", ""), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	if f, ok := scaleFactors[strings.ToLower(scale)]; ok {
		v *= f
	}
	return v, true
}
