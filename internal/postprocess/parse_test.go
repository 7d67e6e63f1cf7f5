// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package postprocess

import "testing"

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bare object",
			in:   `{"a":1}`,
			want: `{"a":1}`,
		},
		{
			name: "prose wrapped",
			in:   `Sure! Here is the analysis: {"a":1} Hope that helps.`,
			want: `{"a":1}`,
		},
		{
			name: "markdown fenced",
			in:   "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "nested objects",
			in:   `text {"a":{"b":{"c":1}},"d":2} trailing`,
			want: `{"a":{"b":{"c":1}},"d":2}`,
		},
		{
			name: "braces inside strings",
			in:   `{"note":"uses {curly} braces and a \" quote","n":1}`,
			want: `{"note":"uses {curly} braces and a \" quote","n":1}`,
		},
		{
			name: "first object wins",
			in:   `{"first":1} {"second":2}`,
			want: `{"first":1}`,
		},
		{
			name: "no object",
			in:   `no json here`,
			want: "",
		},
		{
			name: "unbalanced",
			in:   `{"a":1`,
			want: "",
		},
	}
	for _, tt := range tests {
		if got := extractJSONObject(tt.in); got != tt.want {
			t.Errorf("%s: extractJSONObject(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestParseResponse(t *testing.T) {
	raw := `Sure! {"enhanced_papers":[{"id":"1","title":"T","summary":"S","intent_relevance_score":8}],"intent_analysis":{"user_intent_identified":"survey","total_papers_analyzed":1,"intent_matched_papers":1}}`

	resp, err := parseResponse(raw)
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if len(resp.EnhancedPapers) != 1 || resp.EnhancedPapers[0].IntentRelevanceScore != 8 {
		t.Errorf("EnhancedPapers = %+v", resp.EnhancedPapers)
	}
	if resp.IntentAnalysis == nil || resp.IntentAnalysis.UserIntentIdentified != "survey" {
		t.Errorf("IntentAnalysis = %+v", resp.IntentAnalysis)
	}
}

func TestParseResponseFailures(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no object", "the model rambled with no JSON"},
		{"invalid json", `{"enhanced_papers": [}`},
		{"missing enhanced_papers", `{"intent_analysis":{}}`},
		{"missing intent_analysis", `{"enhanced_papers":[]}`},
	}
	for _, tt := range tests {
		if _, err := parseResponse(tt.in); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
