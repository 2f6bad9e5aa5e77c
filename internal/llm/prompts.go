// Package llm provides OpenAI integration for fact extraction, relation
// extraction and embedding generation. Prompt templates are strict JSON-only;
// the parsers tolerate the markdown fences and prose models add anyway.
package llm

import "fmt"

// FactExtractionPrompt generates a strict JSON-only prompt that distills a
// conversation or statement into discrete, self-contained facts.
func FactExtractionPrompt(content string) string {
	return fmt.Sprintf(`TASK: Extract discrete facts worth remembering from the input.
OUTPUT: ONLY valid JSON. NO markdown. NO code blocks. NO backticks.

RULES:
1. Each fact is one short, self-contained statement about the user or subject.
2. Keep preferences, plans, attributes, and decisions. Drop greetings and filler.
3. Preserve the input's language.
4. If nothing is worth remembering, return an empty array.

REQUIRED JSON STRUCTURE:
Your response MUST start with { and end with }
{"facts": ["fact one", "fact two"]}

INPUT:
%s

JSON RESPONSE:`, content)
}

// RelationExtractionPrompt generates a strict JSON-only prompt that extracts
// entities and the relationships between them from the given facts.
func RelationExtractionPrompt(content string) string {
	return fmt.Sprintf(`TASK: Extract entities and relationships between them from the input.
OUTPUT: ONLY valid JSON. NO markdown. NO code blocks. NO backticks.

RULES:
1. Entities are people, places, organizations, products, or concepts named in the input.
2. Each relation links two entities with a short lowercase_snake_case relationship name.
3. Skip relations where either end is not an entity named in the input.
4. If no relations exist, return an empty array.

REQUIRED JSON STRUCTURE:
Your response MUST start with { and end with }
{"relations": [{"source":"alice","relationship":"works_at","target":"acme"}]}

INPUT:
%s

JSON RESPONSE:`, content)
}
