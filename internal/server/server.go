// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the search pipeline over HTTP. It is a thin
// boundary: input validation and JSON envelopes here, all semantics in
// the pipeline packages.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/history"
	"github.com/pdiddy/paper-scout/internal/memory"
	"github.com/pdiddy/paper-scout/internal/qa"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// SearchService is the pipeline surface the API serves.
type SearchService interface {
	Search(ctx context.Context, query string, maxResults int, forceLive bool) types.SearchResultBatch
	EnhanceAndRetrieve(ctx context.Context, query string, maxResults int) types.SearchResultBatch
	BatchSearch(ctx context.Context, queries []string, maxResultsEach int) []types.SearchResultBatch
}

// Retriever serves the raw retrieval endpoint, no enhancement involved.
type Retriever interface {
	Retrieve(ctx context.Context, query string, maxResults int) types.SearchResultBatch
}

// DocumentStore is the slice of memory.Store the document routes need.
type DocumentStore interface {
	List(ctx context.Context) ([]memory.DocumentInfo, error)
	Get(ctx context.Context, id string) (*memory.DocumentInfo, error)
	Delete(ctx context.Context, id string) error
}

// Answerer serves the question-answering route.
type Answerer interface {
	Ask(ctx context.Context, question string) (qa.Answer, error)
}

// Server is the HTTP API.
type Server struct {
	svc       SearchService
	retriever Retriever
	docs      DocumentStore
	ask       Answerer
	hist      *history.Store
	addr      string
	logger    *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithHistory enables search logging to the local history store.
func WithHistory(h *history.Store) Option {
	return func(s *Server) { s.hist = h }
}

// WithAnswerer enables the question-answering route.
func WithAnswerer(a Answerer) Option {
	return func(s *Server) { s.ask = a }
}

// New builds a Server.
func New(cfg types.ServerConfig, svc SearchService, retriever Retriever, docs DocumentStore, opts ...Option) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	s := &Server{
		svc:       svc,
		retriever: retriever,
		docs:      docs,
		addr:      addr,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler with logging middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/search/batch", s.handleBatchSearch)
	mux.HandleFunc("GET /api/arxiv", s.handleArxiv)
	mux.HandleFunc("POST /api/qa", s.handleQA)
	mux.HandleFunc("GET /api/memory", s.handleMemoryList)
	mux.HandleFunc("GET /api/memory/status/{id}", s.handleMemoryStatus)
	mux.HandleFunc("DELETE /api/memory/{id}", s.handleMemoryDelete)
	mux.HandleFunc("GET /api/history", s.handleHistoryList)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusWriter captures the response code for the access log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)

		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)))
	})
}
