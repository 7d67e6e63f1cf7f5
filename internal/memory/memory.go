// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package memory talks to the remote semantic store. The store indexes
// ingested paper abstracts and serves ranked similarity search over them;
// it is a shared external resource, never assumed exclusive.
package memory

import (
	"context"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// Store is the semantic-store surface the rest of the pipeline consumes.
// Client implements it against the hosted REST API.
type Store interface {
	// Search returns ranked documents for query, scoped to the
	// configured container tag.
	Search(ctx context.Context, query string, limit int, rerank bool) ([]ScoredDocument, error)

	// SearchAll returns ranked documents for query across all
	// containers, without relevance thresholds.
	SearchAll(ctx context.Context, query string, limit int) ([]ScoredDocument, error)

	// IngestPaper submits one paper for indexing. Submitting the same
	// paper twice is the store's problem, not the caller's.
	IngestPaper(ctx context.Context, paper types.PaperRecord) (IngestReceipt, error)

	List(ctx context.Context) ([]DocumentInfo, error)
	Get(ctx context.Context, id string) (*DocumentInfo, error)
	Delete(ctx context.Context, id string) error
}

// ScoredDocument is one ranked search hit.
type ScoredDocument struct {
	DocumentID string         `json:"documentId" yaml:"document_id"`
	Title      string         `json:"title" yaml:"title"`
	Score      float64        `json:"score" yaml:"score"`
	Metadata   map[string]any `json:"metadata" yaml:"metadata"`
	Chunks     []Chunk        `json:"chunks,omitempty" yaml:"chunks,omitempty"`
}

// Chunk is a scored fragment of a document's content. IsRelevant is the
// store's own verdict against the chunk threshold.
type Chunk struct {
	Content    string  `json:"content" yaml:"content"`
	Score      float64 `json:"score" yaml:"score"`
	IsRelevant bool    `json:"isRelevant" yaml:"is_relevant"`
}

// IngestReceipt acknowledges an ingestion request. Status reflects the
// store's indexing pipeline, not final availability.
type IngestReceipt struct {
	ID     string `json:"id" yaml:"id"`
	Status string `json:"status" yaml:"status"`
}

// DocumentInfo describes one stored document.
type DocumentInfo struct {
	ID       string         `json:"id" yaml:"id"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty"`
	Status   string         `json:"status,omitempty" yaml:"status,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}
