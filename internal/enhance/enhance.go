// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enhance rewrites free-text research requests into structured
// arXiv boolean queries and degrades over-specified queries back into
// simpler ones.
package enhance

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/llm"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// Enhancer turns a free-text research request into a structured boolean
// query using the language-model collaborator, then sanitizes the output
// against the arXiv query grammar.
type Enhancer struct {
	gen    llm.Generator
	logger *zap.Logger
}

// Option configures an Enhancer.
type Option func(*Enhancer)

// WithLogger sets a custom logger. Default is zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(e *Enhancer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEnhancer builds an Enhancer on top of a Generator.
func NewEnhancer(gen llm.Generator, opts ...Option) *Enhancer {
	e := &Enhancer{gen: gen, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enhance rewrites userQuery into a structured boolean query. Empty or
// whitespace-only input fails fast without a collaborator call. Any
// collaborator error yields Succeeded=false with the message preserved
// for logging; Enhance never returns an error to the caller.
func (e *Enhancer) Enhance(ctx context.Context, userQuery string) types.EnhancedQuery {
	trimmed := strings.TrimSpace(userQuery)
	if trimmed == "" {
		return types.EnhancedQuery{
			OriginalQuery: userQuery,
			Err:           "empty query provided",
		}
	}

	raw, err := e.gen.Generate(ctx, enhanceSystemPrompt, strings.ToLower(trimmed))
	if err != nil {
		e.logger.Warn("query enhancement failed", zap.String("query", trimmed), zap.Error(err))
		return types.EnhancedQuery{
			OriginalQuery: userQuery,
			Err:           err.Error(),
		}
	}

	cleaned := Sanitize(raw)
	if cleaned == "" {
		e.logger.Warn("query enhancement returned no usable query", zap.String("query", trimmed))
		return types.EnhancedQuery{
			OriginalQuery: userQuery,
			Err:           "enhanced query was empty after sanitization",
		}
	}

	e.logger.Debug("query enhanced",
		zap.String("original", trimmed),
		zap.String("enhanced", cleaned))

	return types.EnhancedQuery{
		OriginalQuery: userQuery,
		EnhancedQuery: cleaned,
		Succeeded:     true,
	}
}
