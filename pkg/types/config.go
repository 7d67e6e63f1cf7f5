// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single generation call. LLM calls run longer than
	// retrieval fetches; the default is 120s.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// RetrievalConfig holds settings for the retrieval strategy runner.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the default maximum number of papers per fetch. It is
	// a hint: sources may return fewer and the runner never pads.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// StrategyTimeout bounds each individual retrieval strategy attempt
	// (default 10s). A timed-out strategy is a failed strategy, not a
	// fatal error.
	StrategyTimeout time.Duration `json:"strategy_timeout" yaml:"strategy_timeout"`
}

// PostProcessConfig holds settings for intent-based result post-processing.
type PostProcessConfig struct {
	AIConfig `yaml:",inline"`

	// MaxPapers caps the post-processed result set (default 25). This is
	// product policy, not a structural constant.
	MaxPapers int `json:"max_papers" yaml:"max_papers"`
}

// MemoryConfig holds settings for the semantic store collaborator.
type MemoryConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the semantic store.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// ContainerTag scopes every search and ingestion to one collection
	// (default "arxiv-papers").
	ContainerTag string `json:"container_tag" yaml:"container_tag"`

	// DocumentThreshold and ChunkThreshold are the store's own relevance
	// cutoffs applied during search.
	DocumentThreshold float64 `json:"document_threshold" yaml:"document_threshold"`
	ChunkThreshold    float64 `json:"chunk_threshold" yaml:"chunk_threshold"`
}

// HybridConfig holds settings for the hybrid search orchestrator.
type HybridConfig struct {
	// IngestDelay is the pause between consecutive per-paper ingestion
	// requests, respecting store rate limits (default 1s).
	IngestDelay time.Duration `json:"ingest_delay" yaml:"ingest_delay"`

	// SettleDelay is the wait after ingestion before re-searching the
	// store, giving it time to index (default 2s).
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay"`

	// IngestWorkers bounds the background ingestion worker pool used by
	// the forced-live path (default 2).
	IngestWorkers int `json:"ingest_workers" yaml:"ingest_workers"`
}

// HistoryConfig holds settings for the local search-history store.
type HistoryConfig struct {
	// Dir is the directory holding the history SQLite database.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of history query results
	// (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServerConfig holds settings for the HTTP API surface.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Enhancer    AIConfig          `json:"enhancer" yaml:"enhancer"`
	Retrieval   RetrievalConfig   `json:"retrieval" yaml:"retrieval"`
	PostProcess PostProcessConfig `json:"post_process" yaml:"post_process"`
	Memory      MemoryConfig      `json:"memory" yaml:"memory"`
	Hybrid      HybridConfig      `json:"hybrid" yaml:"hybrid"`
	History     HistoryConfig     `json:"history" yaml:"history"`
	Server      ServerConfig      `json:"server" yaml:"server"`
}
