// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package postprocess re-ranks a retrieved paper batch against the user's
// inferred research intent. Every failure path degrades to returning the
// capped original batch; this stage never raises to its caller.
package postprocess

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/llm"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// minIntentScore is the lowest intent-alignment score a paper must reach
// to survive filtering.
const minIntentScore = 7

const defaultMaxPapers = 25

// Processor asks the model to score each paper against the user's intent,
// keeps the qualifying ones, and caps the result set.
type Processor struct {
	gen       llm.Generator
	maxPapers int
	logger    *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// NewProcessor builds a Processor from configuration.
func NewProcessor(cfg types.PostProcessConfig, gen llm.Generator, opts ...Option) *Processor {
	p := &Processor{
		gen:       gen,
		maxPapers: cfg.MaxPapers,
		logger:    zap.NewNop(),
	}
	if p.maxPapers <= 0 {
		p.maxPapers = defaultMaxPapers
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// promptPaper is the per-paper shape serialized into the user prompt.
type promptPaper struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	Year          int      `json:"year,omitempty"`
}

// Process scores and filters batch.Papers against userQuery. Failed or
// empty batches pass through untouched; any model or parse failure falls
// back to the original batch capped to the configured maximum.
func (p *Processor) Process(ctx context.Context, batch types.SearchResultBatch, userQuery string) types.SearchResultBatch {
	if !batch.Success || len(batch.Papers) == 0 {
		return batch
	}

	prompt, err := p.buildPrompt(batch.Papers, userQuery)
	if err != nil {
		p.logger.Warn("post-processing prompt build failed", zap.Error(err))
		return p.fallback(batch)
	}

	raw, err := p.gen.Generate(ctx, intentSystemPrompt, prompt)
	if err != nil {
		p.logger.Warn("post-processing generation failed", zap.Error(err))
		return p.fallback(batch)
	}

	resp, err := parseResponse(raw)
	if err != nil {
		p.logger.Warn("post-processing response unusable", zap.Error(err))
		return p.fallback(batch)
	}

	ranked := p.merge(batch.Papers, resp.EnhancedPapers)

	batch.Papers = ranked
	batch.Count = len(ranked)
	batch.PostProcessed = true
	batch.Intent = resp.IntentAnalysis
	return batch
}

func (p *Processor) buildPrompt(papers []types.PaperRecord, userQuery string) (string, error) {
	serialized := make([]promptPaper, 0, len(papers))
	for _, r := range papers {
		serialized = append(serialized, promptPaper{
			ID:            r.ID,
			Title:         r.Title,
			Summary:       r.Summary,
			Authors:       r.Authors,
			PublishedDate: r.PublishedDate,
			Venue:         r.Venue,
			Year:          r.Year,
		})
	}
	body, err := json.Marshal(serialized)
	if err != nil {
		return "", fmt.Errorf("serializing papers: %w", err)
	}
	return fmt.Sprintf("User research query: %s\n\nPapers:\n%s", userQuery, body), nil
}

// merge joins the model's scored papers back to the originals. Papers the
// model invented (unknown id) and papers below the score threshold are
// dropped. Passthrough fields always come from the original record; only
// title and summary take the model's rewrite.
func (p *Processor) merge(originals []types.PaperRecord, scored []enhancedPaper) []types.PaperRecord {
	index := make(map[string]int, len(originals))
	for i, r := range originals {
		index[r.ID] = i
	}

	type rankedPaper struct {
		record types.PaperRecord
		score  int
		pos    int
	}

	var retained []rankedPaper
	for _, ep := range scored {
		if ep.IntentRelevanceScore < minIntentScore {
			continue
		}
		i, ok := index[ep.ID]
		if !ok {
			p.logger.Debug("dropping paper absent from original batch",
				zap.String("id", ep.ID))
			continue
		}

		record := originals[i]
		if ep.Title != "" {
			record.Title = ep.Title
		}
		if ep.Summary != "" {
			record.Summary = ep.Summary
		}
		retained = append(retained, rankedPaper{record: record, score: ep.IntentRelevanceScore, pos: i})
	}

	// Tied scores keep original retrieval order.
	sort.SliceStable(retained, func(a, b int) bool {
		if retained[a].score != retained[b].score {
			return retained[a].score > retained[b].score
		}
		return retained[a].pos < retained[b].pos
	})

	if len(retained) > p.maxPapers {
		retained = retained[:p.maxPapers]
	}

	out := make([]types.PaperRecord, len(retained))
	for i, rp := range retained {
		out[i] = rp.record
	}
	return out
}

// fallback returns the original batch capped to the configured maximum,
// explicitly marked as not post-processed.
func (p *Processor) fallback(batch types.SearchResultBatch) types.SearchResultBatch {
	if len(batch.Papers) > p.maxPapers {
		batch.Papers = batch.Papers[:p.maxPapers]
	}
	batch.Count = len(batch.Papers)
	batch.PostProcessed = false
	return batch
}
