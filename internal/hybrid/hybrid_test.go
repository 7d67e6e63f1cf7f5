// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hybrid

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/paper-scout/internal/memory"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// mockStore is a scriptable semantic store.
type mockStore struct {
	mu            sync.Mutex
	searchResults [][]memory.ScoredDocument // consumed in order; last repeats
	searchErr     error
	searchCalls   int
	ingestErr     map[string]error
	ingested      []string
	ingestedCh    chan string
}

func (m *mockStore) Search(_ context.Context, _ string, _ int, _ bool) ([]memory.ScoredDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.searchResults) == 0 {
		return nil, nil
	}
	docs := m.searchResults[0]
	if len(m.searchResults) > 1 {
		m.searchResults = m.searchResults[1:]
	}
	return docs, nil
}

func (m *mockStore) IngestPaper(_ context.Context, paper types.PaperRecord) (memory.IngestReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ingestErr[paper.ID]; err != nil {
		return memory.IngestReceipt{}, err
	}
	m.ingested = append(m.ingested, paper.ID)
	if m.ingestedCh != nil {
		m.ingestedCh <- paper.ID
	}
	return memory.IngestReceipt{ID: "doc-" + paper.ID, Status: "queued"}, nil
}

// mockRetriever scripts the live retrieval stage.
type mockRetriever struct {
	batch     types.SearchResultBatch
	panicWith any
	calls     int
	lastQuery string
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, _ int) types.SearchResultBatch {
	m.calls++
	m.lastQuery = query
	if m.panicWith != nil {
		panic(m.panicWith)
	}
	b := m.batch
	b.Query = query
	return b
}

// mockEnhancer scripts query enhancement.
type mockEnhancer struct {
	result types.EnhancedQuery
	calls  int
}

func (m *mockEnhancer) Enhance(_ context.Context, query string) types.EnhancedQuery {
	m.calls++
	r := m.result
	r.OriginalQuery = query
	return r
}

// passthroughPost marks batches as processed without reordering.
type passthroughPost struct {
	calls int
}

func (p *passthroughPost) Process(_ context.Context, batch types.SearchResultBatch, _ string) types.SearchResultBatch {
	p.calls++
	batch.PostProcessed = true
	return batch
}

func paper(id string) types.PaperRecord {
	return types.PaperRecord{ID: id, Title: "Paper " + id, Authors: []string{"Doe"}}
}

func doc(id string) memory.ScoredDocument {
	return memory.ScoredDocument{
		DocumentID: "doc-" + id,
		Score:      0.9,
		Metadata:   map[string]any{"paperId": id, "title": "Paper " + id, "authors": "Doe"},
	}
}

func docs(ids ...string) []memory.ScoredDocument {
	out := make([]memory.ScoredDocument, len(ids))
	for i, id := range ids {
		out[i] = doc(id)
	}
	return out
}

func liveBatch(ids ...string) types.SearchResultBatch {
	b := types.SearchResultBatch{Success: true, Source: types.SourceLiveRetrieval}
	for _, id := range ids {
		b.Papers = append(b.Papers, paper(id))
	}
	b.Count = len(b.Papers)
	return b
}

func testCfg() types.HybridConfig {
	return types.HybridConfig{
		IngestDelay: time.Millisecond,
		SettleDelay: time.Millisecond,
	}
}

func newTestOrchestrator(t *testing.T, enh Enhancer, ret Retriever, post PostProcessor, store semanticStore) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(testCfg(), enh, ret, post, store)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	t.Cleanup(o.Close)
	return o
}

func TestSearchSemanticStoreSufficient(t *testing.T) {
	store := &mockStore{searchResults: [][]memory.ScoredDocument{docs("1", "2", "3")}}
	ret := &mockRetriever{}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 2, false)
	if !got.Success || !got.FromCache {
		t.Fatalf("batch = %+v", got)
	}
	if got.Source != types.SourceSemanticStore {
		t.Errorf("Source = %q", got.Source)
	}
	if got.Count != 2 {
		t.Errorf("Count = %d, want capped at maxResults", got.Count)
	}
	if ret.calls != 0 {
		t.Errorf("retriever calls = %d, want 0", ret.calls)
	}
}

func TestSearchFallsBackToLiveAndIngests(t *testing.T) {
	store := &mockStore{searchResults: [][]memory.ScoredDocument{
		docs("s1"),             // State A: one hit, below maxResults
		docs("s1", "f1", "f2"), // State C re-search: store has indexed the fresh papers
	}}
	ret := &mockRetriever{batch: liveBatch("f1", "f2")}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 5, false)
	if !got.Success {
		t.Fatalf("batch = %+v", got)
	}
	if got.Source != types.SourceHybrid {
		t.Errorf("Source = %q, want hybrid (store had prior hits)", got.Source)
	}
	if got.FromCache {
		t.Error("FromCache = true after live retrieval")
	}
	if got.IngestedCount != 2 {
		t.Errorf("IngestedCount = %d, want 2", got.IngestedCount)
	}
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.ingested) != 2 || store.ingested[0] != "f1" || store.ingested[1] != "f2" {
		t.Errorf("ingested = %v, want fresh papers in order", store.ingested)
	}
	if store.searchCalls != 2 {
		t.Errorf("store search calls = %d, want 2 (initial + re-search)", store.searchCalls)
	}
}

func TestSearchNeverRegressesBelowStoreHits(t *testing.T) {
	// Re-search returns nothing (store slow to index); the answer must
	// still include the prior store hits and the fresh papers.
	store := &mockStore{searchResults: [][]memory.ScoredDocument{
		docs("s1", "s2"),
		nil,
	}}
	ret := &mockRetriever{batch: liveBatch("f1")}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 5, false)
	if !got.Success || got.Count < 2 {
		t.Fatalf("Count = %d, want >= prior store hit count 2", got.Count)
	}
	seen := make(map[string]bool)
	for _, p := range got.Papers {
		seen[p.ID] = true
	}
	if !seen["s1"] || !seen["s2"] || !seen["f1"] {
		t.Errorf("papers = %v, want union of store and fresh", got.Papers)
	}
}

func TestSearchSourceSemanticStoreWhenNoPriorHits(t *testing.T) {
	store := &mockStore{searchResults: [][]memory.ScoredDocument{
		nil,
		docs("f1"),
	}}
	ret := &mockRetriever{batch: liveBatch("f1")}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 5, false)
	if got.Source != types.SourceSemanticStore {
		t.Errorf("Source = %q, want semantic-store when store had no prior hits", got.Source)
	}
}

func TestSearchRetrievalFailureReturnsStoreHits(t *testing.T) {
	store := &mockStore{searchResults: [][]memory.ScoredDocument{docs("s1")}}
	ret := &mockRetriever{batch: types.SearchResultBatch{Error: "all strategies failed"}}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 5, false)
	if !got.Success || got.Count != 1 || got.Papers[0].ID != "s1" {
		t.Fatalf("batch = %+v, want the store's single hit", got)
	}
	if !got.FromCache || got.Source != types.SourceSemanticStore {
		t.Errorf("FromCache = %v, Source = %q", got.FromCache, got.Source)
	}
}

func TestSearchTerminalFailure(t *testing.T) {
	store := &mockStore{}
	ret := &mockRetriever{batch: types.SearchResultBatch{Error: "all strategies failed"}}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 5, false)
	if got.Success {
		t.Error("Success = true with empty store and failed retrieval")
	}
	if got.Error == "" {
		t.Error("Error is empty on terminal failure")
	}
	if len(got.Papers) != 0 {
		t.Errorf("papers = %v, want empty", got.Papers)
	}
}

func TestSearchStoreErrorDegradesToLive(t *testing.T) {
	store := &mockStore{searchErr: fmt.Errorf("store unreachable")}
	ret := &mockRetriever{batch: liveBatch("f1")}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 5, false)
	if !got.Success || got.Count != 1 {
		t.Fatalf("batch = %+v, want live result despite store error", got)
	}
	if ret.calls != 1 {
		t.Errorf("retriever calls = %d, want 1", ret.calls)
	}
}

func TestSearchPartialIngestFailure(t *testing.T) {
	store := &mockStore{
		searchResults: [][]memory.ScoredDocument{nil, nil},
		ingestErr:     map[string]error{"f2": fmt.Errorf("HTTP 429")},
	}
	ret := &mockRetriever{batch: liveBatch("f1", "f2", "f3")}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 5, false)
	if !got.Success {
		t.Fatalf("batch = %+v", got)
	}
	if got.IngestedCount != 2 {
		t.Errorf("IngestedCount = %d, want 2 (f2 failed)", got.IngestedCount)
	}
	// All three fresh papers still appear in the answer.
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}
}

func TestSearchForcedLive(t *testing.T) {
	store := &mockStore{ingestedCh: make(chan string, 4)}
	ret := &mockRetriever{batch: liveBatch("f1", "f2")}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 5, true)
	if !got.Success || got.Count != 2 {
		t.Fatalf("batch = %+v", got)
	}
	if got.Source != types.SourceLiveRetrieval {
		t.Errorf("Source = %q", got.Source)
	}

	store.mu.Lock()
	searches := store.searchCalls
	store.mu.Unlock()
	if searches != 0 {
		t.Errorf("store search calls = %d, want 0 on forced-live", searches)
	}

	// Background ingestion runs after the response is already returned.
	for i := 0; i < 2; i++ {
		select {
		case <-store.ingestedCh:
		case <-time.After(2 * time.Second):
			t.Fatal("background ingestion never ran")
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	store := &mockStore{}
	ret := &mockRetriever{}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "   ", 5, false)
	if got.Success || got.Error == "" {
		t.Errorf("batch = %+v, want input rejection", got)
	}
	if ret.calls != 0 {
		t.Errorf("retriever calls = %d, want 0", ret.calls)
	}
}

func TestSearchRetrieverPanicContained(t *testing.T) {
	store := &mockStore{}
	ret := &mockRetriever{panicWith: "nil pointer somewhere deep"}
	o := newTestOrchestrator(t, nil, ret, nil, store)

	got := o.Search(context.Background(), "transformers", 5, false)
	if got.Success {
		t.Error("Success = true after retriever panic")
	}
	if got.Error == "" {
		t.Error("Error is empty after retriever panic")
	}
}
