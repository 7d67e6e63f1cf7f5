// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hybrid orchestrates search across the semantic store and live
// retrieval. Per request it walks a three-state flow: semantic-first,
// live retrieval on insufficient coverage, then ingest-and-re-search so
// the store absorbs every fresh result. Orchestrator methods never
// return an error; Success and Error on the batch are the only failure
// channel.
package hybrid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/memory"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// Enhancer rewrites a natural-language query into a structured one.
type Enhancer interface {
	Enhance(ctx context.Context, query string) types.EnhancedQuery
}

// Retriever runs the live retrieval strategy chain.
type Retriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) types.SearchResultBatch
}

// PostProcessor re-ranks a freshly retrieved batch against user intent.
type PostProcessor interface {
	Process(ctx context.Context, batch types.SearchResultBatch, userQuery string) types.SearchResultBatch
}

// semanticStore is the slice of memory.Store the orchestrator needs.
type semanticStore interface {
	Search(ctx context.Context, query string, limit int, rerank bool) ([]memory.ScoredDocument, error)
	IngestPaper(ctx context.Context, paper types.PaperRecord) (memory.IngestReceipt, error)
}

const (
	defaultIngestDelay   = 1 * time.Second
	defaultSettleDelay   = 2 * time.Second
	defaultIngestWorkers = 2
)

// Orchestrator composes the pipeline stages behind the two search
// entry points.
type Orchestrator struct {
	enhancer    Enhancer
	retriever   Retriever
	post        PostProcessor
	store       semanticStore
	ingestDelay time.Duration
	settleDelay time.Duration
	logger      *zap.Logger
	pool        *ants.Pool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator wires the pipeline stages together. The worker pool
// bounds background ingestion from the forced-live path.
func NewOrchestrator(cfg types.HybridConfig, enhancer Enhancer, retriever Retriever, post PostProcessor, store semanticStore, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		enhancer:    enhancer,
		retriever:   retriever,
		post:        post,
		store:       store,
		ingestDelay: cfg.IngestDelay,
		settleDelay: cfg.SettleDelay,
		logger:      zap.NewNop(),
	}
	if o.ingestDelay <= 0 {
		o.ingestDelay = defaultIngestDelay
	}
	if o.settleDelay <= 0 {
		o.settleDelay = defaultSettleDelay
	}
	for _, opt := range opts {
		opt(o)
	}

	workers := cfg.IngestWorkers
	if workers <= 0 {
		workers = defaultIngestWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("creating ingest pool: %w", err)
	}
	o.pool = pool
	return o, nil
}

// Close releases the background ingestion pool.
func (o *Orchestrator) Close() {
	o.pool.Release()
}

// Search serves one query. Unless forceLive is set it tries the semantic
// store first, falls back to live retrieval when coverage is thin, and
// folds fresh results back into the store before answering.
func (o *Orchestrator) Search(ctx context.Context, query string, maxResults int, forceLive bool) types.SearchResultBatch {
	batch := types.SearchResultBatch{Query: query}

	query = strings.TrimSpace(query)
	if query == "" {
		batch.Error = "empty query provided"
		return batch
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	if forceLive {
		return o.forcedLive(ctx, query, maxResults)
	}

	// State A: semantic-first.
	semantic := o.searchStore(ctx, query, maxResults)
	if len(semantic) >= maxResults {
		batch.Success = true
		batch.Papers = semantic[:maxResults]
		batch.Count = maxResults
		batch.Source = types.SourceSemanticStore
		batch.FromCache = true
		return batch
	}

	// State B: live retrieval.
	live := o.retrieve(ctx, query, maxResults)
	if !live.Success || len(live.Papers) == 0 {
		if len(semantic) == 0 {
			batch.Error = live.Error
			if batch.Error == "" {
				batch.Error = "no results from semantic store or live retrieval"
			}
			return batch
		}
		batch.Success = true
		batch.Papers = semantic
		batch.Count = len(semantic)
		batch.Source = types.SourceSemanticStore
		batch.FromCache = true
		return batch
	}

	// State C: ingest fresh papers and re-search the warmed store.
	return o.ingestAndReSearch(ctx, query, maxResults, semantic, live.Papers)
}

// forcedLive retrieves live and hands fresh papers to the store as a
// fire-and-forget background task.
func (o *Orchestrator) forcedLive(ctx context.Context, query string, maxResults int) types.SearchResultBatch {
	live := o.retrieve(ctx, query, maxResults)
	if !live.Success {
		return live
	}

	papers := live.Papers
	if err := o.pool.Submit(func() { o.ingestBackground(papers) }); err != nil {
		o.logger.Warn("background ingestion not scheduled", zap.Error(err))
	}
	return live
}

// ingestBackground runs outside the request path; its outcome is only
// logged. It carries its own timeout since the request context is gone
// by the time it runs.
func (o *Orchestrator) ingestBackground(papers []types.PaperRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ingested, failures := o.ingestAll(ctx, papers)
	o.logger.Info("background ingestion finished",
		zap.Int("ingested", ingested),
		zap.Int("failed", len(failures)))
}

// ingestAndReSearch is State C: feed every fresh paper to the store,
// wait for it to index, then answer from a second store search. The
// final batch never reports fewer papers than the store already had.
func (o *Orchestrator) ingestAndReSearch(ctx context.Context, query string, maxResults int, semantic, fresh []types.PaperRecord) types.SearchResultBatch {
	batch := types.SearchResultBatch{Query: query, Success: true}

	ingested, failures := o.ingestAll(ctx, fresh)
	for _, f := range failures {
		o.logger.Warn("paper ingestion failed", zap.String("id", f.id), zap.Error(f.err))
	}

	o.sleep(ctx, o.settleDelay)

	reSearched := o.searchStore(ctx, query, maxResults)

	// The store may not have indexed everything yet. Union the re-search
	// hits with what was already known, keyed by paper ID, so the answer
	// never regresses below the pre-ingestion result.
	papers := mergeByID(reSearched, semantic, fresh)
	if len(papers) > maxResults {
		papers = papers[:maxResults]
	}

	batch.Papers = papers
	batch.Count = len(papers)
	batch.IngestedCount = ingested
	batch.FromCache = false
	if len(semantic) > 0 {
		batch.Source = types.SourceHybrid
	} else {
		batch.Source = types.SourceSemanticStore
	}
	return batch
}

type ingestFailure struct {
	id  string
	err error
}

// ingestAll submits papers sequentially with a fixed inter-request delay.
// Per-paper failures are collected, never fatal.
func (o *Orchestrator) ingestAll(ctx context.Context, papers []types.PaperRecord) (int, []ingestFailure) {
	var ingested int
	var failures []ingestFailure
	for i, paper := range papers {
		if i > 0 {
			if !o.sleep(ctx, o.ingestDelay) {
				failures = append(failures, ingestFailure{id: paper.ID, err: ctx.Err()})
				break
			}
		}
		if _, err := o.store.IngestPaper(ctx, paper); err != nil {
			failures = append(failures, ingestFailure{id: paper.ID, err: err})
			continue
		}
		ingested++
	}
	return ingested, failures
}

// searchStore queries the semantic store and converts hits to paper
// records. Store errors degrade to an empty result.
func (o *Orchestrator) searchStore(ctx context.Context, query string, limit int) []types.PaperRecord {
	docs, err := o.store.Search(ctx, query, limit, true)
	if err != nil {
		o.logger.Warn("semantic store search failed", zap.Error(err))
		return nil
	}
	return memory.PapersFromDocuments(docs)
}

// retrieve shields the orchestrator from a panicking retrieval stack.
func (o *Orchestrator) retrieve(ctx context.Context, query string, maxResults int) (batch types.SearchResultBatch) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("live retrieval panicked", zap.Any("panic", r))
			batch = types.SearchResultBatch{
				Query: query,
				Error: fmt.Sprintf("live retrieval failed: %v", r),
			}
		}
	}()
	return o.retriever.Retrieve(ctx, query, maxResults)
}

// sleep waits for d or until ctx is done; reports whether the full wait
// elapsed.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// mergeByID unions paper lists in priority order, keeping the first
// record seen for each ID.
func mergeByID(lists ...[]types.PaperRecord) []types.PaperRecord {
	seen := make(map[string]bool)
	var out []types.PaperRecord
	for _, list := range lists {
		for _, p := range list {
			if p.ID == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}
