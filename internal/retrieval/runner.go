// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/enhance"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// Runner tries an ordered list of retrieval strategies until one yields
// non-empty results: each configured source with the query as given, then
// the first source again with a simplified query when simplification
// changes anything.
type Runner struct {
	sources []Source
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets a custom logger. Default is zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner builds a Runner over the given sources, tried in order.
func NewRunner(cfg types.RetrievalConfig, sources []Source, opts ...Option) *Runner {
	timeout := cfg.StrategyTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	r := &Runner{sources: sources, timeout: timeout, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// strategy is one attempt in the fallback chain.
type strategy struct {
	name   string
	query  string
	source Source
}

// Retrieve runs the strategy chain for query. Each strategy is
// independently time-bounded; a timeout or error is strategy failure, not
// fatal. maxResults is a hint — sources may return fewer and the runner
// never pads. When every strategy exhausts, the batch reports
// Success=false with an aggregated error naming the last failure.
func (r *Runner) Retrieve(ctx context.Context, query string, maxResults int) types.SearchResultBatch {
	batch := types.SearchResultBatch{Query: query, Source: types.SourceLiveRetrieval}

	if len(r.sources) == 0 {
		batch.Error = "no retrieval sources configured"
		return batch
	}

	strategies := make([]strategy, 0, len(r.sources)+1)
	for _, src := range r.sources {
		strategies = append(strategies, strategy{name: src.Name(), query: query, source: src})
	}
	if simplified := enhance.Simplify(query); simplified != query && simplified != "" {
		strategies = append(strategies, strategy{
			name:   r.sources[0].Name() + " (simplified)",
			query:  simplified,
			source: r.sources[0],
		})
	}

	var attempts []string
	for _, st := range strategies {
		papers, err := r.tryStrategy(ctx, st, maxResults)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", st.name, err))
			r.logger.Warn("retrieval strategy failed",
				zap.String("strategy", st.name), zap.Error(err))
			continue
		}
		if len(papers) == 0 {
			attempts = append(attempts, fmt.Sprintf("%s: no results", st.name))
			r.logger.Debug("retrieval strategy returned nothing",
				zap.String("strategy", st.name))
			continue
		}

		batch.Success = true
		batch.Papers = papers
		batch.Count = len(papers)
		return batch
	}

	batch.Error = fmt.Sprintf("all %d retrieval strategies failed: %s",
		len(strategies), strings.Join(attempts, "; "))
	return batch
}

// tryStrategy runs one strategy under its own timeout.
func (r *Runner) tryStrategy(ctx context.Context, st strategy, maxResults int) ([]types.PaperRecord, error) {
	sctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return st.source.Fetch(sctx, st.query, maxResults)
}
