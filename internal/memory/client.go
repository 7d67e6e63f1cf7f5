// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// memoryAPIBase is the semantic store's REST root. Package-level var for
// test substitution.
var memoryAPIBase = "https://api.supermemory.ai/v3"

const (
	defaultContainerTag      = "arxiv-papers"
	defaultDocumentThreshold = 0.6
	defaultChunkThreshold    = 0.7
)

// Client is the hosted semantic-store implementation of Store.
type Client struct {
	APIKey            string
	ContainerTag      string
	DocumentThreshold float64
	ChunkThreshold    float64
	HTTPClient        *http.Client
}

// NewClient builds a client from MemoryConfig, applying defaults.
func NewClient(cfg types.MemoryConfig) *Client {
	tag := cfg.ContainerTag
	if tag == "" {
		tag = defaultContainerTag
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	docThreshold := cfg.DocumentThreshold
	if docThreshold <= 0 {
		docThreshold = defaultDocumentThreshold
	}
	chunkThreshold := cfg.ChunkThreshold
	if chunkThreshold <= 0 {
		chunkThreshold = defaultChunkThreshold
	}
	return &Client{
		APIKey:            cfg.APIKey,
		ContainerTag:      tag,
		DocumentThreshold: docThreshold,
		ChunkThreshold:    chunkThreshold,
		HTTPClient:        &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Query             string   `json:"q"`
	ContainerTags     []string `json:"containerTags"`
	Limit             int      `json:"limit"`
	Rerank            bool     `json:"rerank"`
	DocumentThreshold float64  `json:"documentThreshold,omitempty"`
	ChunkThreshold    float64  `json:"chunkThreshold,omitempty"`
}

type searchResponse struct {
	Results []ScoredDocument `json:"results"`
}

// Search queries the store, scoped to the container tag. The store ranks
// and thresholds results itself.
func (c *Client) Search(ctx context.Context, query string, limit int, rerank bool) ([]ScoredDocument, error) {
	if limit <= 0 {
		limit = 10
	}
	reqBody := searchRequest{
		Query:             query,
		ContainerTags:     []string{c.ContainerTag},
		Limit:             limit,
		Rerank:            rerank,
		DocumentThreshold: c.DocumentThreshold,
		ChunkThreshold:    c.ChunkThreshold,
	}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/search", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return resp.Results, nil
}

type broadSearchRequest struct {
	Query string `json:"q"`
	Limit int    `json:"limit"`
}

// SearchAll queries the store across every container. Used as a fallback
// when the tag-scoped search comes back empty; no relevance thresholds so
// marginal matches still surface.
func (c *Client) SearchAll(ctx context.Context, query string, limit int) ([]ScoredDocument, error) {
	if limit <= 0 {
		limit = 10
	}
	reqBody := broadSearchRequest{Query: query, Limit: limit}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/search", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return resp.Results, nil
}

type ingestRequest struct {
	Content      string         `json:"content"`
	ContainerTag string         `json:"containerTag"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// IngestPaper submits one paper for indexing. The abstract page URL is
// the ingested content; the paper's fields ride along as metadata so
// search hits can be rebuilt into records without refetching.
func (c *Client) IngestPaper(ctx context.Context, paper types.PaperRecord) (IngestReceipt, error) {
	if !paper.Valid() {
		return IngestReceipt{}, fmt.Errorf("refusing to ingest incomplete paper %q", paper.ID)
	}
	reqBody := ingestRequest{
		Content:      fmt.Sprintf("https://arxiv.org/abs/%s", paper.ID),
		ContainerTag: c.ContainerTag,
		Metadata:     paperMetadata(paper),
	}

	var receipt IngestReceipt
	if err := c.do(ctx, http.MethodPost, "/documents", reqBody, &receipt); err != nil {
		return IngestReceipt{}, fmt.Errorf("ingesting %s: %w", paper.ID, err)
	}
	return receipt, nil
}

type listRequest struct {
	ContainerTags []string `json:"containerTags"`
	Limit         int      `json:"limit,omitempty"`
}

type listResponse struct {
	Documents []DocumentInfo `json:"documents"`
}

// List returns the documents stored under the container tag.
func (c *Client) List(ctx context.Context) ([]DocumentInfo, error) {
	reqBody := listRequest{ContainerTags: []string{c.ContainerTag}}

	var resp listResponse
	if err := c.do(ctx, http.MethodPost, "/documents/list", reqBody, &resp); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return resp.Documents, nil
}

// Get fetches one document by store ID.
func (c *Client) Get(ctx context.Context, id string) (*DocumentInfo, error) {
	var doc DocumentInfo
	if err := c.do(ctx, http.MethodGet, "/documents/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, fmt.Errorf("fetching document %s: %w", id, err)
	}
	return &doc, nil
}

// Delete removes one document by store ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return nil
}

// do issues one authenticated request and decodes the response into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, memoryAPIBase+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store returned HTTP %d: %s", resp.StatusCode, string(payload))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
