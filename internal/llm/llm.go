// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the language-model text-generation collaborator.
// The pipeline treats model output as untrusted text; every call site
// validates the response against its own schema.
package llm

import "context"

// Generator produces text from a system instruction and a user turn.
// Implementations must keep the two roles distinct; no streaming is
// required. Tests supply a mock.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
