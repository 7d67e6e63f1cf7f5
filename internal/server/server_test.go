// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-scout/internal/history"
	"github.com/pdiddy/paper-scout/internal/memory"
	"github.com/pdiddy/paper-scout/internal/qa"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// mockService records calls and returns scripted batches.
type mockService struct {
	searchCalls    int
	lastQuery      string
	lastMax        int
	lastForceLive  bool
	batch          types.SearchResultBatch
	batchedQueries []string
}

func (m *mockService) Search(_ context.Context, query string, maxResults int, forceLive bool) types.SearchResultBatch {
	m.searchCalls++
	m.lastQuery = query
	m.lastMax = maxResults
	m.lastForceLive = forceLive
	b := m.batch
	b.Query = query
	return b
}

func (m *mockService) EnhanceAndRetrieve(_ context.Context, query string, _ int) types.SearchResultBatch {
	b := m.batch
	b.Query = query
	return b
}

func (m *mockService) BatchSearch(_ context.Context, queries []string, _ int) []types.SearchResultBatch {
	m.batchedQueries = queries
	out := make([]types.SearchResultBatch, len(queries))
	for i, q := range queries {
		out[i] = m.batch
		out[i].Query = q
	}
	return out
}

type mockServerRetriever struct {
	calls int
	batch types.SearchResultBatch
}

func (m *mockServerRetriever) Retrieve(_ context.Context, query string, _ int) types.SearchResultBatch {
	m.calls++
	b := m.batch
	b.Query = query
	return b
}

type mockDocs struct {
	docs      []memory.DocumentInfo
	deleted   []string
	getErr    error
	deleteErr error
}

func (m *mockDocs) List(_ context.Context) ([]memory.DocumentInfo, error) {
	return m.docs, nil
}

func (m *mockDocs) Get(_ context.Context, id string) (*memory.DocumentInfo, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &memory.DocumentInfo{ID: id, Status: "done"}, nil
}

func (m *mockDocs) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockAnswerer struct {
	answer       qa.Answer
	err          error
	calls        int
	lastQuestion string
}

func (m *mockAnswerer) Ask(_ context.Context, question string) (qa.Answer, error) {
	m.calls++
	m.lastQuestion = question
	return m.answer, m.err
}

func okBatch() types.SearchResultBatch {
	return types.SearchResultBatch{
		Success: true,
		Papers:  []types.PaperRecord{{ID: "1", Title: "T", Authors: []string{"A"}}},
		Count:   1,
		Source:  types.SourceLiveRetrieval,
	}
}

func newTestServer(svc *mockService, ret *mockServerRetriever, docs *mockDocs, opts ...Option) http.Handler {
	return New(types.ServerConfig{}, svc, ret, docs, opts...).Handler()
}

func TestHandleSearch(t *testing.T) {
	svc := &mockService{batch: okBatch()}
	h := newTestServer(svc, &mockServerRetriever{}, &mockDocs{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=transformers&max_results=5&force_live=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var got types.SearchResultBatch
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 1, got.Count)

	assert.Equal(t, "transformers", svc.lastQuery)
	assert.Equal(t, 5, svc.lastMax)
	assert.True(t, svc.lastForceLive)
}

func TestHandleSearchValidation(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing q", "/api/search"},
		{"blank q", "/api/search?q=%20%20"},
		{"bad max_results", "/api/search?q=x&max_results=abc"},
		{"zero max_results", "/api/search?q=x&max_results=0"},
		{"huge max_results", "/api/search?q=x&max_results=500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{batch: okBatch()}
			h := newTestServer(svc, &mockServerRetriever{}, &mockDocs{})

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 0, svc.searchCalls, "invalid input must not reach the pipeline")

			var er errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &er))
			assert.NotEmpty(t, er.Error)
		})
	}
}

func TestHandleBatchSearch(t *testing.T) {
	svc := &mockService{batch: okBatch()}
	h := newTestServer(svc, &mockServerRetriever{}, &mockDocs{})

	body := `{"queries":["a","b"],"max_results_each":5}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search/batch", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var got batchSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Results, 2)
	assert.Equal(t, "a", got.Results[0].Query)
	assert.Equal(t, []string{"a", "b"}, svc.batchedQueries)
}

func TestHandleBatchSearchValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"no queries", `{"queries":[]}`},
		{"too many queries", `{"queries":["a","b","c","d","e","f","g","h","i","j","k"]}`},
		{"bad max", `{"queries":["a"],"max_results_each":1000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&mockService{}, &mockServerRetriever{}, &mockDocs{})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/search/batch", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleArxiv(t *testing.T) {
	ret := &mockServerRetriever{batch: okBatch()}
	h := newTestServer(&mockService{}, ret, &mockDocs{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/arxiv?q=all%3Atest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ret.calls)
}

func TestHandleQA(t *testing.T) {
	ask := &mockAnswerer{answer: qa.Answer{
		Text:        "Self-attention replaces recurrence [Document 1].",
		Sources:     []qa.Source{{ID: "doc-1", Title: "Attention Is All You Need", CitationNumber: 1}},
		Confidence:  80,
		ResultCount: 1,
	}}
	h := newTestServer(&mockService{}, &mockServerRetriever{}, &mockDocs{}, WithAnswerer(ask))

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"question": "how do transformers work?"}`)
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/qa", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var got qa.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got.Text, "[Document 1]")
	assert.Equal(t, 80, got.Confidence)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "doc-1", got.Sources[0].ID)

	assert.Equal(t, "how do transformers work?", ask.lastQuestion)
}

func TestHandleQAValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed json", "{"},
		{"blank question", `{"question": "  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ask := &mockAnswerer{}
			h := newTestServer(&mockService{}, &mockServerRetriever{}, &mockDocs{}, WithAnswerer(ask))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/qa", strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Zero(t, ask.calls, "invalid input must not reach the pipeline")
		})
	}
}

func TestHandleQAUpstreamError(t *testing.T) {
	ask := &mockAnswerer{err: fmt.Errorf("store down")}
	h := newTestServer(&mockService{}, &mockServerRetriever{}, &mockDocs{}, WithAnswerer(ask))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/qa", strings.NewReader(`{"question": "q"}`)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleQADisabled(t *testing.T) {
	h := newTestServer(&mockService{}, &mockServerRetriever{}, &mockDocs{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/qa", strings.NewReader(`{"question": "q"}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemoryRoutes(t *testing.T) {
	docs := &mockDocs{docs: []memory.DocumentInfo{{ID: "doc-1"}, {ID: "doc-2"}}}
	h := newTestServer(&mockService{}, &mockServerRetriever{}, docs)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/memory", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "doc-1")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/memory/status/doc-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"done"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/memory/doc-2", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"doc-2"}, docs.deleted)
}

func TestMemoryRouteUpstreamError(t *testing.T) {
	docs := &mockDocs{getErr: fmt.Errorf("store unreachable")}
	h := newTestServer(&mockService{}, &mockServerRetriever{}, docs)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/memory/status/doc-1", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSearchRecordsHistory(t *testing.T) {
	hist, err := history.NewStore(types.HistoryConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	defer hist.Close()

	svc := &mockService{batch: okBatch()}
	h := newTestServer(svc, &mockServerRetriever{}, &mockDocs{}, WithHistory(hist))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=transformers", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	records, err := hist.ListSearches(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "transformers", records[0].Query)

	// And the history route serves it back.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "transformers")
}

func TestHistoryRouteDisabled(t *testing.T) {
	h := newTestServer(&mockService{}, &mockServerRetriever{}, &mockDocs{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(&mockService{}, &mockServerRetriever{}, &mockDocs{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
