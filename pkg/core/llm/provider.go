// Package llm abstracts the completion capability used for filing
// extraction. Providers give no structural guarantee on output; callers
// must defensively parse whatever text comes back.
package llm

import "context"

// Provider is the interface for all completion providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}
