package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recallkit/recall/pkg/types"
)

// factExtractionResponse is the expected shape of a fact extraction reply.
type factExtractionResponse struct {
	Facts []string `json:"facts"`
}

// relationExtractionResponse is the expected shape of a relation extraction reply.
type relationExtractionResponse struct {
	Relations []types.Relation `json:"relations"`
}

// ParseFactResponse parses an LLM fact extraction reply into a list of facts.
// Blank facts are dropped; an empty list is a valid result.
func ParseFactResponse(text string) ([]string, error) {
	raw := extractJSON(text)

	var resp factExtractionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse fact response: %w", err)
	}

	facts := make([]string, 0, len(resp.Facts))
	for _, f := range resp.Facts {
		f = strings.TrimSpace(f)
		if f != "" {
			facts = append(facts, f)
		}
	}

	return facts, nil
}

// ParseRelationResponse parses an LLM relation extraction reply.
// Relations with a missing source, target, or relationship name are dropped.
func ParseRelationResponse(text string) ([]types.Relation, error) {
	raw := extractJSON(text)

	var resp relationExtractionResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse relation response: %w", err)
	}

	relations := make([]types.Relation, 0, len(resp.Relations))
	for _, r := range resp.Relations {
		if r.Source == "" || r.Target == "" || r.Relationship == "" {
			continue
		}
		relations = append(relations, r)
	}

	return relations, nil
}

// extractJSON extracts the first valid JSON object from a string that may
// contain extra text. This handles cases where the model adds explanations
// before/after the JSON despite instructions.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text // No JSON found, return as-is and let the parser fail
	}

	// Find the matching closing brace, skipping braces inside strings.
	braceCount := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return text[start:]
}
