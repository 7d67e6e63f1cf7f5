// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package postprocess

import (
	"encoding/json"
	"fmt"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// enhancedPaper is one scored paper in the model's response.
type enhancedPaper struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Summary              string `json:"summary"`
	IntentRelevanceScore int    `json:"intent_relevance_score"`
}

// llmResponse is the full response schema described in the system prompt.
type llmResponse struct {
	EnhancedPapers []enhancedPaper       `json:"enhanced_papers"`
	IntentAnalysis *types.IntentAnalysis `json:"intent_analysis"`
}

// parseResponse extracts and decodes the JSON object embedded in raw model
// output. Models occasionally wrap the object in prose or markdown fences.
func parseResponse(raw string) (*llmResponse, error) {
	obj := extractJSONObject(raw)
	if obj == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var resp llmResponse
	if err := json.Unmarshal([]byte(obj), &resp); err != nil {
		return nil, fmt.Errorf("decoding response object: %w", err)
	}
	if resp.EnhancedPapers == nil {
		return nil, fmt.Errorf("response missing enhanced_papers")
	}
	if resp.IntentAnalysis == nil {
		return nil, fmt.Errorf("response missing intent_analysis")
	}
	return &resp, nil
}

// extractJSONObject returns the first balanced {...} substring of s, or ""
// if none exists. Brace counting ignores braces inside JSON strings.
func extractJSONObject(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}
