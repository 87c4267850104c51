package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeProvider returns a canned response or error.
type fakeProvider struct {
	response string
	err      error
	prompt   string
}

func (p *fakeProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	p.prompt = prompt
	return p.response, p.err
}

func TestAIExtractorParsesFencedJSON(t *testing.T) {
	provider := &fakeProvider{response: "```json\n" + `{
		"outstanding_shares": 48000000,
		"float_shares": null,
		"public_float_usd": 6000000,
		"public_float_date": "2023-06-30",
		"corporate_actions": [
			{"action_type": "split", "action_date": "2024-04-01", "description": "2-for-1 split", "split_ratio": "2-for-1"}
		]
	}` + "\n```"}

	rec, err := NewAIExtractor(provider).Extract(context.Background(), "10-K", "excerpt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.OutstandingShares == nil || *rec.OutstandingShares != 48000000 {
		t.Errorf("outstanding shares: %v", rec.OutstandingShares)
	}
	if rec.FloatShares != nil {
		t.Errorf("null float shares should stay nil, got %v", *rec.FloatShares)
	}
	if rec.PublicFloatDate == nil || *rec.PublicFloatDate != "2023-06-30" {
		t.Errorf("float date: %v", rec.PublicFloatDate)
	}
	if len(rec.CorporateActions) != 1 {
		t.Fatalf("expected 1 action, got %d", len(rec.CorporateActions))
	}
	if rec.CorporateActions[0].ActionType != ActionSplit {
		t.Errorf("action type: %s", rec.CorporateActions[0].ActionType)
	}
}

func TestAIExtractorPromptShape(t *testing.T) {
	provider := &fakeProvider{response: "{}"}
	_, err := NewAIExtractor(provider).Extract(context.Background(), "10-Q", "SOME EXCERPT TEXT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(provider.prompt, "10-Q") {
		t.Error("prompt missing filing type")
	}
	if !strings.Contains(provider.prompt, "SOME EXCERPT TEXT") {
		t.Error("prompt missing excerpt")
	}
	if !strings.Contains(provider.prompt, "outstanding_shares") {
		t.Error("prompt missing required JSON keys")
	}
}

func TestAIExtractorServiceError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("status 429")}

	rec, err := NewAIExtractor(provider).Extract(context.Background(), "10-K", "excerpt")
	if rec != nil {
		t.Errorf("expected nil record on service failure, got %+v", rec)
	}
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Errorf("expected *ServiceError, got %T", err)
	}
}

func TestAIExtractorParseError(t *testing.T) {
	provider := &fakeProvider{response: "I could not find any share data in this filing."}

	rec, err := NewAIExtractor(provider).Extract(context.Background(), "10-K", "excerpt")
	if rec != nil {
		t.Errorf("expected nil record on parse failure, got %+v", rec)
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T", err)
	}
}

func TestAIExtractorNilProvider(t *testing.T) {
	_, err := NewAIExtractor(nil).Extract(context.Background(), "10-K", "excerpt")
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Errorf("nil provider must behave as a failing service, got %T", err)
	}
}

func TestAIExtractorNullsWrongTypes(t *testing.T) {
	// Untrusted output: wrong-typed fields are dropped, not propagated.
	provider := &fakeProvider{response: `{
		"outstanding_shares": "lots",
		"float_shares": 100,
		"public_float_usd": true,
		"public_float_date": "soon",
		"corporate_actions": [
			{"action_type": "split", "action_date": "not a date"},
			{"action_type": "offering", "action_date": "2024-05-01"},
			"garbage entry"
		]
	}`}

	rec, err := NewAIExtractor(provider).Extract(context.Background(), "10-K", "excerpt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.OutstandingShares != nil {
		t.Errorf("string share count must be nulled, got %v", *rec.OutstandingShares)
	}
	if rec.FloatShares == nil || *rec.FloatShares != 100 {
		t.Errorf("valid field lost: %v", rec.FloatShares)
	}
	if rec.PublicFloatUSD != nil {
		t.Error("bool float USD must be nulled")
	}
	if rec.PublicFloatDate != nil {
		t.Errorf("non-ISO date must be nulled, got %v", *rec.PublicFloatDate)
	}
	if len(rec.CorporateActions) != 1 {
		t.Fatalf("expected only the valid action, got %d", len(rec.CorporateActions))
	}
	if rec.CorporateActions[0].ActionType != ActionOffering {
		t.Errorf("wrong surviving action: %s", rec.CorporateActions[0].ActionType)
	}
}

func TestAIExtractorEmptyActionListStaysNonNil(t *testing.T) {
	provider := &fakeProvider{response: `{"outstanding_shares": 5, "corporate_actions": []}`}

	rec, err := NewAIExtractor(provider).Extract(context.Background(), "8-K", "excerpt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.CorporateActions == nil {
		t.Error("affirmative empty list must stay non-nil")
	}
}

func TestNormalizeActionType(t *testing.T) {
	cases := map[string]string{
		"split":               ActionSplit,
		"Reverse Split":       ActionReverseSplit,
		"reverse_stock_split": ActionReverseSplit,
		"secondary_offering":  ActionOffering,
		"share_repurchase":    ActionBuyback,
		"warrant_exercise":    ActionWarrantExercise,
		"dilution":            ActionDilution,
		"spinoff":             ActionOther,
		"":                    ActionOther,
	}
	for in, want := range cases {
		if got := normalizeActionType(in); got != want {
			t.Errorf("normalizeActionType(%q) = %q, want %q", in, got, want)
		}
	}
}
