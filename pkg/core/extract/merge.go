package extract

import "sort"

// Extractor precedence ranks. Higher wins per field when present.
const (
	PrecedenceHeuristic = 10
	PrecedenceAI        = 20
)

// Sourced is one extractor's output tagged with its origin and rank.
// A nil Record means that strategy produced nothing at all (e.g. the
// completion call failed).
type Sourced struct {
	Source     string
	Precedence int
	Record     *Record
}

// Merge combines extractor outputs into one canonical record. For each
// scalar field the highest-precedence present value wins; zero is a
// legitimate present value, only nil falls through. The corporate-action
// list is taken verbatim from the highest-precedence record with a
// non-nil list; when no record carries one the merged list is empty.
func Merge(records []Sourced) Record {
	ordered := make([]Sourced, 0, len(records))
	for _, r := range records {
		if r.Record != nil {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Precedence > ordered[j].Precedence
	})

	merged := Record{CorporateActions: []CorporateAction{}}
	for _, r := range ordered {
		if merged.OutstandingShares == nil && r.Record.OutstandingShares != nil {
			merged.OutstandingShares = r.Record.OutstandingShares
		}
		if merged.FloatShares == nil && r.Record.FloatShares != nil {
			merged.FloatShares = r.Record.FloatShares
		}
		if merged.PublicFloatUSD == nil && r.Record.PublicFloatUSD != nil {
			merged.PublicFloatUSD = r.Record.PublicFloatUSD
		}
		if merged.PublicFloatDate == nil && r.Record.PublicFloatDate != nil {
			merged.PublicFloatDate = r.Record.PublicFloatDate
		}
	}

	for _, r := range ordered {
		if r.Record.CorporateActions != nil {
			merged.CorporateActions = r.Record.CorporateActions
			break
		}
	}

	return merged
}
