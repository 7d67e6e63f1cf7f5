// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// AddFavorite saves a paper to the favorites list. Re-adding a paper
// refreshes its stored fields.
func (s *Store) AddFavorite(ctx context.Context, paper types.PaperRecord) error {
	if !paper.Valid() {
		return fmt.Errorf("refusing to save incomplete paper %q", paper.ID)
	}

	authorsJSON, _ := json.Marshal(paper.Authors)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (paper_id, title, summary, authors, published_date, pdf_url, venue, year, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET
			title=excluded.title, summary=excluded.summary, authors=excluded.authors,
			published_date=excluded.published_date, pdf_url=excluded.pdf_url,
			venue=excluded.venue, year=excluded.year`,
		paper.ID, paper.Title, paper.Summary, string(authorsJSON),
		paper.PublishedDate, paper.PDFURL, paper.Venue, paper.Year,
		time.Now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("saving favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a favorite by paper ID.
func (s *Store) RemoveFavorite(ctx context.Context, paperID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE paper_id = ?`, paperID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no favorite with id %s", paperID)
	}
	return nil
}

// ListFavorites returns all favorites, most recently added first.
func (s *Store) ListFavorites(ctx context.Context) ([]types.PaperRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, title, summary, authors, published_date, pdf_url, venue, year
		 FROM favorites ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()
	return scanFavorites(rows)
}

// SearchFavorites runs a full-text search over favorite titles and
// summaries, ranked by relevance.
func (s *Store) SearchFavorites(ctx context.Context, query string, limit int) ([]types.PaperRecord, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT f.paper_id, f.title, f.summary, f.authors, f.published_date, f.pdf_url, f.venue, f.year
		 FROM favorites_fts
		 JOIN favorites f ON f.rowid = favorites_fts.rowid
		 WHERE favorites_fts MATCH ?
		 ORDER BY favorites_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching favorites: %w", err)
	}
	defer rows.Close()
	return scanFavorites(rows)
}

func scanFavorites(rows *sql.Rows) ([]types.PaperRecord, error) {
	var papers []types.PaperRecord
	for rows.Next() {
		var (
			p           types.PaperRecord
			summary     sql.NullString
			authorsJSON sql.NullString
			published   sql.NullString
			pdfURL      sql.NullString
			venue       sql.NullString
			year        sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Title, &summary, &authorsJSON, &published, &pdfURL, &venue, &year); err != nil {
			return nil, fmt.Errorf("scanning favorite row: %w", err)
		}
		p.Summary = summary.String
		p.PublishedDate = published.String
		p.PDFURL = pdfURL.String
		p.Venue = venue.String
		p.Year = int(year.Int64)
		if authorsJSON.Valid {
			if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
				return nil, fmt.Errorf("decoding authors for %s: %w", p.ID, err)
			}
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// ExportYAML writes all favorites to w as a YAML document.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	papers, err := s.ListFavorites(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(papers)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
