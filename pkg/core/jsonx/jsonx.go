// Package jsonx parses JSON produced by language models, which carries no
// structural guarantee: code fences, single quotes, trailing commas and
// unquoted keys are all common. Callers must still validate field types.
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripFences removes surrounding markdown code-fence delimiters, with or
// without a language tag, and trims whitespace.
func StripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// ParseObject extracts a JSON object from model output. Strategies in
// order: strict parse, json-repair, hjson. Returns an error only when all
// three fail.
func ParseObject(raw string) (map[string]interface{}, error) {
	cleaned := StripFences(raw)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj, nil
	}

	if repaired, err := jsonrepair.RepairJSON(cleaned); err == nil {
		if err := json.Unmarshal([]byte(repaired), &obj); err == nil {
			return obj, nil
		}
	}

	// Hjson tolerates comments, unquoted keys and missing commas.
	if err := hjson.Unmarshal([]byte(cleaned), &obj); err == nil && obj != nil {
		return obj, nil
	}

	return nil, fmt.Errorf("no JSON object recoverable from response (%d bytes)", len(raw))
}
