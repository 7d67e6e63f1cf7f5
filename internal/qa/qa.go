// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qa answers questions over the papers already held in the
// semantic store. Relevant chunks from a store search become the model's
// only context; the answer cites them as [Document N] and ships with the
// source list so callers can resolve each citation.
package qa

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/llm"
	"github.com/pdiddy/paper-scout/internal/memory"
)

const (
	defaultSearchLimit = 8
	maxChunksPerDoc    = 3
)

// noMatchAnswer is returned without a model call when both store searches
// come back empty.
const noMatchAnswer = "I couldn't find any relevant information in the " +
	"stored papers to answer this question. The papers may still be " +
	"indexing, or the question may not match their content."

// store is the slice of memory.Store question answering needs.
type store interface {
	Search(ctx context.Context, query string, limit int, rerank bool) ([]memory.ScoredDocument, error)
	SearchAll(ctx context.Context, query string, limit int) ([]memory.ScoredDocument, error)
}

// Source identifies one stored document backing an answer. CitationNumber
// matches the [Document N] markers in the answer text.
type Source struct {
	ID             string  `json:"id" yaml:"id"`
	Title          string  `json:"title" yaml:"title"`
	RelevantChunks int     `json:"relevantChunks" yaml:"relevant_chunks"`
	Score          float64 `json:"score" yaml:"score"`
	CitationNumber int     `json:"citationNumber" yaml:"citation_number"`
}

// Answer is a synthesized, cited response.
type Answer struct {
	Text        string   `json:"answer" yaml:"answer"`
	Sources     []Source `json:"sources" yaml:"sources"`
	Confidence  int      `json:"confidence" yaml:"confidence"`
	ResultCount int      `json:"searchResultsCount" yaml:"search_results_count"`
}

// Answerer turns store search hits into a grounded, cited answer.
type Answerer struct {
	store  store
	gen    llm.Generator
	tag    string
	limit  int
	logger *zap.Logger
}

// Option configures an Answerer.
type Option func(*Answerer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Answerer) { a.logger = l }
}

// WithSearchLimit caps how many documents feed the answer context.
func WithSearchLimit(n int) Option {
	return func(a *Answerer) {
		if n > 0 {
			a.limit = n
		}
	}
}

// NewAnswerer builds an Answerer. tag is the store container the scoped
// search targets; it also widens the fallback query when that search
// finds nothing.
func NewAnswerer(st store, gen llm.Generator, tag string, opts ...Option) *Answerer {
	a := &Answerer{
		store:  st,
		gen:    gen,
		tag:    tag,
		limit:  defaultSearchLimit,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers question from stored paper content only. An empty store
// yields the no-match answer with zero sources, not an error; store or
// model failures are errors because there is no batch to fall back to.
func (a *Answerer) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, errors.New("question must not be empty")
	}

	docs, err := a.store.Search(ctx, question, a.limit, false)
	if err != nil {
		return Answer{}, fmt.Errorf("searching store: %w", err)
	}
	if len(docs) == 0 {
		// Tag-scoped search missed; retry across all containers with
		// the tag folded into the query.
		a.logger.Debug("widening store search", zap.String("question", question))
		docs, err = a.store.SearchAll(ctx, question+" "+a.tag, a.limit)
		if err != nil {
			return Answer{}, fmt.Errorf("searching store: %w", err)
		}
	}
	if len(docs) == 0 {
		return Answer{Text: noMatchAnswer, Sources: []Source{}}, nil
	}

	text, err := a.gen.Generate(ctx, fmt.Sprintf(qaSystemPrompt, buildContext(docs)), question)
	if err != nil {
		return Answer{}, fmt.Errorf("synthesizing answer: %w", err)
	}

	return Answer{
		Text:        strings.TrimSpace(text),
		Sources:     sourcesFor(docs),
		Confidence:  confidence(docs),
		ResultCount: len(docs),
	}, nil
}

// buildContext renders the documents into the numbered blocks the system
// prompt's citation format refers to.
func buildContext(docs []memory.ScoredDocument) string {
	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "Document"
		}
		var chunks []string
		for _, ch := range doc.Chunks {
			if !ch.IsRelevant {
				continue
			}
			chunks = append(chunks, ch.Content)
			if len(chunks) == maxChunksPerDoc {
				break
			}
		}
		block := fmt.Sprintf("[Document %d: %q]", i+1, title)
		if len(chunks) > 0 {
			block += "\n" + strings.Join(chunks, "\n\n")
		} else {
			block += "\nNo content available"
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

func sourcesFor(docs []memory.ScoredDocument) []Source {
	sources := make([]Source, 0, len(docs))
	for i, doc := range docs {
		title := doc.Title
		if title == "" {
			title = "Untitled Document"
		}
		relevant := 0
		for _, ch := range doc.Chunks {
			if ch.IsRelevant {
				relevant++
			}
		}
		sources = append(sources, Source{
			ID:             doc.DocumentID,
			Title:          title,
			RelevantChunks: relevant,
			Score:          doc.Score,
			CitationNumber: i + 1,
		})
	}
	return sources
}

// confidence is the mean document score as a percentage.
func confidence(docs []memory.ScoredDocument) int {
	sum := 0.0
	for _, doc := range docs {
		sum += doc.Score
	}
	return int(math.Round(sum / float64(len(docs)) * 100))
}

// reCitation matches both marker spellings; models occasionally emit
// [Source N] despite the prompt.
var reCitation = regexp.MustCompile(`\[(?:Document|Source) (\d+)\]`)

// CitedDocuments returns the distinct citation numbers referenced in
// answer, in first-mention order.
func CitedDocuments(answer string) []int {
	seen := make(map[int]bool)
	var cited []int
	for _, m := range reCitation.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		cited = append(cited, n)
	}
	return cited
}
