// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists past searches and favorite papers in a local
// SQLite database. It is purely local state; nothing here touches the
// network.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-scout/pkg/types"
)

const dbFile = "paper-scout.db"

// timeFormat is RFC 3339 with fixed-width nanoseconds so stored
// timestamps sort correctly as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the history SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the history database at cfg.Dir/paper-scout.db,
// creating the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			enhanced_query TEXT,
			source TEXT,
			result_count INTEGER,
			success INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`,
		`CREATE TABLE IF NOT EXISTS favorites (
			paper_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			summary TEXT,
			authors TEXT,
			published_date TEXT,
			pdf_url TEXT,
			venue TEXT,
			year INTEGER,
			added_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='favorites_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE favorites_fts USING fts5(title, summary, content=favorites, content_rowid=rowid)`,
			`CREATE TRIGGER favorites_ai AFTER INSERT ON favorites BEGIN
				INSERT INTO favorites_fts(rowid, title, summary) VALUES (new.rowid, new.title, new.summary);
			END`,
			`CREATE TRIGGER favorites_ad AFTER DELETE ON favorites BEGIN
				INSERT INTO favorites_fts(favorites_fts, rowid, title, summary) VALUES('delete', old.rowid, old.title, old.summary);
			END`,
			`CREATE TRIGGER favorites_au AFTER UPDATE ON favorites BEGIN
				INSERT INTO favorites_fts(favorites_fts, rowid, title, summary) VALUES('delete', old.rowid, old.title, old.summary);
				INSERT INTO favorites_fts(rowid, title, summary) VALUES (new.rowid, new.title, new.summary);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SearchRecord is one logged search.
type SearchRecord struct {
	ID            string    `json:"id" yaml:"id"`
	Query         string    `json:"query" yaml:"query"`
	EnhancedQuery string    `json:"enhanced_query,omitempty" yaml:"enhanced_query,omitempty"`
	Source        string    `json:"source,omitempty" yaml:"source,omitempty"`
	ResultCount   int       `json:"result_count" yaml:"result_count"`
	Success       bool      `json:"success" yaml:"success"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// RecordSearch logs one completed search batch and returns the record ID.
func (s *Store) RecordSearch(ctx context.Context, batch types.SearchResultBatch) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (id, query, enhanced_query, source, result_count, success, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, batch.Query, batch.EnhancedQuery, string(batch.Source),
		batch.Count, boolToInt(batch.Success),
		time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return "", fmt.Errorf("recording search: %w", err)
	}
	return id, nil
}

// ListSearches returns the most recent searches, newest first. A
// non-positive limit uses the store default.
func (s *Store) ListSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, enhanced_query, source, result_count, success, created_at
		 FROM searches ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var (
			r         SearchRecord
			enhanced  sql.NullString
			source    sql.NullString
			success   int
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.Query, &enhanced, &source, &r.ResultCount, &success, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		r.EnhancedQuery = enhanced.String
		r.Source = source.String
		r.Success = success != 0
		if t, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			r.CreatedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ClearSearches deletes all logged searches and reports how many were
// removed.
func (s *Store) ClearSearches(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM searches`)
	if err != nil {
		return 0, fmt.Errorf("clearing searches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared searches: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
