// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-scout pipeline.
package types

// ResultSource identifies where a result batch was assembled from.
type ResultSource string

const (
	// SourceSemanticStore marks batches served entirely from the semantic store.
	SourceSemanticStore ResultSource = "semantic-store"

	// SourceLiveRetrieval marks batches served from a live retrieval source.
	SourceLiveRetrieval ResultSource = "live-retrieval"

	// SourceHybrid marks batches assembled from both the semantic store and
	// freshly retrieved, newly ingested papers.
	SourceHybrid ResultSource = "hybrid"
)

// EnhancedQuery is the output of query enhancement.
type EnhancedQuery struct {
	// OriginalQuery is the verbatim user input.
	OriginalQuery string `json:"original_query" yaml:"original_query"`

	// EnhancedQuery is the structured boolean query string, or empty if
	// enhancement failed. Callers fall back to OriginalQuery before
	// handing the query to retrieval.
	EnhancedQuery string `json:"enhanced_query" yaml:"enhanced_query"`

	// Succeeded reports whether enhancement produced a usable query.
	Succeeded bool `json:"succeeded" yaml:"succeeded"`

	// Err preserves the collaborator error message for logging. Enhancement
	// never raises to the caller.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// QueryForRetrieval returns the query string retrieval should use: the
// enhanced query when enhancement succeeded, the original otherwise.
func (q EnhancedQuery) QueryForRetrieval() string {
	if q.Succeeded && q.EnhancedQuery != "" {
		return q.EnhancedQuery
	}
	return q.OriginalQuery
}

// IntentAnalysis describes the inferred user intent attached to a
// post-processed result batch.
type IntentAnalysis struct {
	UserIntentIdentified string `json:"user_intent_identified" yaml:"user_intent_identified"`
	IntentSpecificity    string `json:"intent_specificity" yaml:"intent_specificity"`
	IntentClassification string `json:"intent_classification" yaml:"intent_classification"`

	// TotalPapersAnalyzed and IntentMatchedPapers count the batch before
	// and after intent filtering; matched never exceeds analyzed.
	TotalPapersAnalyzed int `json:"total_papers_analyzed" yaml:"total_papers_analyzed"`
	IntentMatchedPapers int `json:"intent_matched_papers" yaml:"intent_matched_papers"`

	IntentCoverage        string   `json:"intent_coverage" yaml:"intent_coverage"`
	IntentGaps            []string `json:"intent_gaps,omitempty" yaml:"intent_gaps,omitempty"`
	IntentRecommendations []string `json:"intent_recommendations,omitempty" yaml:"intent_recommendations,omitempty"`
}

// SearchResultBatch is the unit returned to callers. Boundary methods never
// raise; Success and Error are the sole failure-reporting channel, so callers
// can distinguish "zero relevant papers" (Success=true, Count=0) from
// "search failed" (Success=false).
type SearchResultBatch struct {
	Success bool `json:"success" yaml:"success"`

	// Papers is ordered by ranked relevance (highest first) after
	// post-processing, reverse-chronological by source before it.
	Papers []PaperRecord `json:"papers" yaml:"papers"`

	Source ResultSource `json:"source,omitempty" yaml:"source,omitempty"`

	// Query is the user's query as submitted.
	Query string `json:"query" yaml:"query"`

	// EnhancedQuery is the structured query retrieval actually used, when
	// query enhancement was part of the flow.
	EnhancedQuery string `json:"enhanced_query,omitempty" yaml:"enhanced_query,omitempty"`

	Count int    `json:"count" yaml:"count"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// FromCache reports whether the batch was served from the semantic
	// store without a live retrieval round trip.
	FromCache bool `json:"from_cache,omitempty" yaml:"from_cache,omitempty"`

	// IngestedCount is the number of freshly retrieved papers handed to
	// the semantic store during this request.
	IngestedCount int `json:"ingested_count,omitempty" yaml:"ingested_count,omitempty"`

	// PostProcessed reports whether intent-based re-ranking was applied.
	PostProcessed bool `json:"post_processed,omitempty" yaml:"post_processed,omitempty"`

	// Intent carries the intent analysis when post-processing was applied.
	Intent *IntentAnalysis `json:"intent_analysis,omitempty" yaml:"intent_analysis,omitempty"`
}
