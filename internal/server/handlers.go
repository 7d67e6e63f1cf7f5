// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/pkg/types"
)

const maxBatchQueries = 10

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("writing response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, format string, args ...any) {
	s.writeJSON(w, status, errorResponse{Error: fmt.Sprintf(format, args...)})
}

// searchParams validates the common query/max_results pair. Input errors
// are rejected here and never reach the pipeline.
func (s *Server) searchParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "missing required query parameter q")
		return "", 0, false
	}

	maxResults := 10
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			s.writeError(w, http.StatusBadRequest, "max_results must be an integer between 1 and 100")
			return "", 0, false
		}
		maxResults = n
	}
	return query, maxResults, true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, maxResults, ok := s.searchParams(w, r)
	if !ok {
		return
	}
	forceLive := r.URL.Query().Get("force_live") == "true"

	batch := s.svc.Search(r.Context(), query, maxResults, forceLive)
	s.recordSearch(r, batch)
	s.writeJSON(w, http.StatusOK, batch)
}

type batchSearchRequest struct {
	Queries        []string `json:"queries"`
	MaxResultsEach int      `json:"max_results_each"`
}

type batchSearchResponse struct {
	Results []types.SearchResultBatch `json:"results"`
}

func (s *Server) handleBatchSearch(w http.ResponseWriter, r *http.Request) {
	var req batchSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if len(req.Queries) == 0 {
		s.writeError(w, http.StatusBadRequest, "queries must not be empty")
		return
	}
	if len(req.Queries) > maxBatchQueries {
		s.writeError(w, http.StatusBadRequest, "at most %d queries per batch", maxBatchQueries)
		return
	}
	if req.MaxResultsEach < 0 || req.MaxResultsEach > 100 {
		s.writeError(w, http.StatusBadRequest, "max_results_each must be between 0 and 100")
		return
	}

	results := s.svc.BatchSearch(r.Context(), req.Queries, req.MaxResultsEach)
	for _, batch := range results {
		s.recordSearch(r, batch)
	}
	s.writeJSON(w, http.StatusOK, batchSearchResponse{Results: results})
}

// handleArxiv hits the retrieval strategy chain directly, bypassing
// enhancement and the semantic store.
func (s *Server) handleArxiv(w http.ResponseWriter, r *http.Request) {
	query, maxResults, ok := s.searchParams(w, r)
	if !ok {
		return
	}
	batch := s.retriever.Retrieve(r.Context(), query, maxResults)
	s.writeJSON(w, http.StatusOK, batch)
}

type qaRequest struct {
	Question string `json:"question"`
}

// handleQA answers a question from stored paper content.
func (s *Server) handleQA(w http.ResponseWriter, r *http.Request) {
	if s.ask == nil {
		s.writeError(w, http.StatusNotFound, "question answering is not enabled")
		return
	}
	var req qaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	answer, err := s.ask.Ask(r.Context(), req.Question)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "answering question: %v", err)
		return
	}
	s.writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleMemoryList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "listing documents: %v", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleMemoryStatus(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadGateway, "fetching document: %v", err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleMemoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.docs.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusBadGateway, "deleting document: %v", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	if s.hist == nil {
		s.writeError(w, http.StatusNotFound, "history is not enabled")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	records, err := s.hist.ListSearches(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "listing history: %v", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"searches": records})
}

// recordSearch logs the batch to history when enabled. History failures
// never affect the response.
func (s *Server) recordSearch(r *http.Request, batch types.SearchResultBatch) {
	if s.hist == nil {
		return
	}
	if _, err := s.hist.RecordSearch(r.Context(), batch); err != nil {
		s.logger.Warn("recording search failed", zap.Error(err))
	}
}
