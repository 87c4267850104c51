package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"floattrack/pkg/core/jsonx"
	"floattrack/pkg/core/llm"
)

// ServiceError means the completion capability itself failed (non-success
// response). Confined to the current filing.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string { return fmt.Sprintf("completion service error: %v", e.Err) }
func (e *ServiceError) Unwrap() error { return e.Err }

// ParseError means the completion response contained no usable JSON after
// delimiter stripping and repair. Treated identically to ServiceError.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("unparseable completion response: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

const systemPrompt = `You are a financial data extraction expert analyzing SEC filings. Always return valid JSON only, no markdown or explanation.`

const promptTemplate = `Analyze this SEC %s filing excerpt and extract:

1. Outstanding shares count (total shares issued)
2. Float shares (shares available for public trading, excluding restricted/insider shares)
3. Public float expressed as a dollar amount, and its as-of date
4. Any corporate actions (stock splits, reverse splits, offerings, buybacks, warrant exercises, dilution)

Filing excerpt:
%s

Return ONLY valid JSON in this exact format:
{
  "outstanding_shares": number or null,
  "float_shares": number or null,
  "public_float_usd": number or null,
  "public_float_date": "YYYY-MM-DD" or null,
  "corporate_actions": [
    {
      "action_type": "split|reverse_split|offering|buyback|warrant_exercise|dilution|other",
      "action_date": "YYYY-MM-DD",
      "description": "brief description",
      "shares_before": number or null,
      "shares_after": number or null,
      "split_ratio": "e.g., 2-for-1" or null,
      "impact_description": "how this affects float/shares"
    }
  ]
}`

// AIExtractor sends a bounded filing excerpt to the completion capability
// and validates the response into a Record. The model's output is
// untrusted input: wrong-typed fields are nulled and malformed action
// entries dropped before anything reaches the merge step.
type AIExtractor struct {
	provider llm.Provider
	options  map[string]interface{}
}

// NewAIExtractor wires a completion provider. A nil provider is allowed
// and behaves as a permanently failing service.
func NewAIExtractor(provider llm.Provider) *AIExtractor {
	return &AIExtractor{provider: provider, options: map[string]interface{}{}}
}

// Extract prompts the model with the filing type and excerpt. It returns
// a *ServiceError when the capability fails and a *ParseError when the
// response yields no JSON object; both are non-fatal to the filing.
func (e *AIExtractor) Extract(ctx context.Context, filingType, excerpt string) (*Record, error) {
	if e.provider == nil {
		return nil, &ServiceError{Err: fmt.Errorf("no completion provider configured")}
	}

	prompt := fmt.Sprintf(promptTemplate, filingType, excerpt)
	resp, err := e.provider.GenerateResponse(ctx, prompt, systemPrompt, e.options)
	if err != nil {
		return nil, &ServiceError{Err: err}
	}

	obj, err := jsonx.ParseObject(resp)
	if err != nil {
		return nil, &ParseError{Raw: resp, Err: err}
	}

	rec := coerceRecord(obj)
	return &rec, nil
}

// coerceRecord validates the decoded object field by field. Anything with
// the wrong type is treated as absent rather than failing the extraction.
func coerceRecord(obj map[string]interface{}) Record {
	var rec Record
	rec.OutstandingShares = coerceShares(obj["outstanding_shares"])
	rec.FloatShares = coerceShares(obj["float_shares"])
	rec.PublicFloatUSD = coerceNumber(obj["public_float_usd"])
	rec.PublicFloatDate = coerceDate(obj["public_float_date"])

	if raw, ok := obj["corporate_actions"].([]interface{}); ok {
		// Non-nil even when empty: the model affirmatively reported
		// the action list, and empty suppresses weaker signals.
		actions := make([]CorporateAction, 0, len(raw))
		for _, entry := range raw {
			if a, ok := coerceAction(entry); ok {
				actions = append(actions, a)
			}
		}
		rec.CorporateActions = actions
	}

	return rec
}

func coerceAction(entry interface{}) (CorporateAction, bool) {
	m, ok := entry.(map[string]interface{})
	if !ok {
		return CorporateAction{}, false
	}

	date := coerceDate(m["action_date"])
	if date == nil {
		// An action without a usable date cannot key an event row.
		return CorporateAction{}, false
	}

	a := CorporateAction{
		ActionType:        normalizeActionType(coerceString(m["action_type"])),
		ActionDate:        *date,
		Description:       coerceString(m["description"]),
		SharesBefore:      coerceShares(m["shares_before"]),
		SharesAfter:       coerceShares(m["shares_after"]),
		ImpactDescription: coerceString(m["impact_description"]),
	}
	if ratio := coerceString(m["split_ratio"]); ratio != "" {
		a.SplitRatio = &ratio
	}
	return a, true
}

func normalizeActionType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case ActionSplit, "stock_split", "forward_split":
		return ActionSplit
	case ActionReverseSplit, "reverse split", "reverse_stock_split":
		return ActionReverseSplit
	case ActionOffering, "public_offering", "secondary_offering":
		return ActionOffering
	case ActionBuyback, "repurchase", "share_repurchase":
		return ActionBuyback
	case ActionWarrantExercise, "warrant exercise":
		return ActionWarrantExercise
	case ActionDilution:
		return ActionDilution
	default:
		return ActionOther
	}
}

func coerceNumber(v interface{}) *float64 {
	// encoding/json and hjson both decode numbers as float64.
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

func coerceShares(v interface{}) *int64 {
	f := coerceNumber(v)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

func coerceString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func coerceDate(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return nil
	}
	return &s
}
