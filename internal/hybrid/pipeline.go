// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hybrid

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// EnhanceAndRetrieve runs the live pipeline end to end: enhance the
// query, retrieve with strategy fallback, then re-rank the batch against
// the user's intent. Enhancement failure is not fatal; retrieval falls
// back to the raw query.
func (o *Orchestrator) EnhanceAndRetrieve(ctx context.Context, query string, maxResults int) (batch types.SearchResultBatch) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline panicked", zap.Any("panic", r))
			batch = types.SearchResultBatch{
				Query: query,
				Error: fmt.Sprintf("search failed: %v", r),
			}
		}
	}()

	batch = types.SearchResultBatch{Query: query}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		batch.Error = "empty query provided"
		return batch
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	enhanced := o.enhancer.Enhance(ctx, trimmed)
	if !enhanced.Succeeded {
		o.logger.Warn("query enhancement failed, using raw query",
			zap.String("query", trimmed), zap.String("error", enhanced.Err))
	}

	live := o.retrieve(ctx, enhanced.QueryForRetrieval(), maxResults)
	live.Query = query
	if enhanced.Succeeded {
		live.EnhancedQuery = enhanced.EnhancedQuery
	}
	if !live.Success {
		return live
	}

	return o.post.Process(ctx, live, trimmed)
}

// BatchSearch runs EnhanceAndRetrieve for each query. Failures are
// isolated per item: one query's collaborator blowing up yields a failed
// batch at that index and leaves its siblings untouched.
func (o *Orchestrator) BatchSearch(ctx context.Context, queries []string, maxResultsEach int) []types.SearchResultBatch {
	results := make([]types.SearchResultBatch, len(queries))
	for i, q := range queries {
		results[i] = o.EnhanceAndRetrieve(ctx, q, maxResultsEach)
	}
	return results
}
