// Package extract recovers structured share-count facts from SEC filing
// text. Two independent strategies (pattern rules and a completion model)
// produce the same Record shape and a precedence merge picks per field.
package extract

import "time"

// Corporate action types. Free text from the model is normalized onto
// this set; anything unrecognized becomes ActionOther.
const (
	ActionSplit           = "split"
	ActionReverseSplit    = "reverse_split"
	ActionOffering        = "offering"
	ActionBuyback         = "buyback"
	ActionWarrantExercise = "warrant_exercise"
	ActionDilution        = "dilution"
	ActionOther           = "other"
)

// Record is the canonical per-filing extraction result. Every field is
// independently optional; nil means the strategy could not recover it.
// A nil CorporateActions slice means "unknown", while an empty non-nil
// slice is an affirmative "none reported".
type Record struct {
	OutstandingShares *int64            `json:"outstanding_shares"`
	FloatShares       *int64            `json:"float_shares"`
	PublicFloatUSD    *float64          `json:"public_float_usd"`
	PublicFloatDate   *string           `json:"public_float_date"` // ISO 2006-01-02
	CorporateActions  []CorporateAction `json:"corporate_actions"`
}

// CorporateAction is one detected share-structure event.
type CorporateAction struct {
	ActionType        string  `json:"action_type"`
	ActionDate        string  `json:"action_date"` // ISO 2006-01-02
	Description       string  `json:"description"`
	SharesBefore      *int64  `json:"shares_before"`
	SharesAfter       *int64  `json:"shares_after"`
	SplitRatio        *string `json:"split_ratio"` // "X-for-Y"
	ImpactDescription string  `json:"impact_description"`
}

// FloatDate returns the record's public-float as-of date if present and
// parseable, else the zero time.
func (r *Record) FloatDate() time.Time {
	if r.PublicFloatDate == nil {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", *r.PublicFloatDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Empty reports whether the record carries no share data at all.
func (r *Record) Empty() bool {
	return r.OutstandingShares == nil && r.FloatShares == nil &&
		r.PublicFloatUSD == nil && len(r.CorporateActions) == 0
}
