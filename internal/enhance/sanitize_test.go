// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enhance

import "testing"

func TestSanitizeStripsLeadingExplanation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"here is prefix",
			`Here is the enhanced query: all:"machine learning"`,
			`all:"machine learning"`,
		},
		{
			"enhanced query prefix",
			`Enhanced query: (ti:"BERT" OR abs:"transformers") AND cat:cs.CL`,
			`(ti:"BERT" OR abs:"transformers") AND cat:cs.CL`,
		},
		{
			"bare query prefix",
			`Query: all:"quantum computing"`,
			`all:"quantum computing"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeTruncatesTrailingProse(t *testing.T) {
	input := `all:"diffusion models" AND cat:cs.LG This query targets the mathematical foundations.`
	want := `all:"diffusion models" AND cat:cs.LG`
	if got := Sanitize(input); got != want {
		t.Errorf("Sanitize() = %q, want %q", got, want)
	}
}

func TestSanitizeUpcasesOperators(t *testing.T) {
	input := `all:"GNN" and all:"drug discovery" or cat:q-bio.BM andnot ti:"survey"`
	want := `all:"GNN" AND all:"drug discovery" OR cat:q-bio.BM ANDNOT ti:"survey"`
	if got := Sanitize(input); got != want {
		t.Errorf("Sanitize() = %q, want %q", got, want)
	}
}

func TestSanitizeNormalizesFieldPrefixes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"title", `title:"attention"`, `ti:"attention"`},
		{"author", `author:"Vaswani"`, `au:"Vaswani"`},
		{"abstract", `abstract:"self-attention"`, `abs:"self-attention"`},
		{"category", `category:cs.CL`, `cat:cs.CL`},
		{"mixed case", `TITLE:"attention" AND Category:cs.CL`, `ti:"attention" AND cat:cs.CL`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeWrapsBareQueryInAll(t *testing.T) {
	if got := Sanitize("transformer architectures"); got != `all:transformer architectures` {
		t.Errorf("Sanitize() = %q, want all: wrapping", got)
	}
}

func TestSanitizeEmptyInput(t *testing.T) {
	if got := Sanitize("   "); got != "" {
		t.Errorf("Sanitize(whitespace) = %q, want empty", got)
	}
}

// Sanitizing an already-clean structured query must be a no-op.
func TestSanitizeIdempotent(t *testing.T) {
	clean := []string{
		`all:"machine learning"`,
		`(ti:"state-of-the-art" OR ti:"advances") AND (all:"RAG" OR all:"retrieval augmented generation") AND (cat:cs.CL OR cat:cs.IR)`,
		`au:"Hinton" ANDNOT ti:"survey"`,
		`all:transformer`,
	}
	for _, q := range clean {
		once := Sanitize(q)
		if once != q {
			t.Errorf("Sanitize(%q) = %q, want unchanged", q, once)
		}
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize(Sanitize(%q)) = %q, want %q", q, twice, once)
		}
	}
}
