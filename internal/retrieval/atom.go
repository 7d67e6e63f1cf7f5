// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// atomAPIBase is the arXiv Atom API endpoint. Declared as a var so tests
// can substitute an httptest server.
var atomAPIBase = "https://export.arxiv.org/api/query"

// AtomSource queries the arXiv Atom API. It is the API-style fallback
// behind the listing scrape.
type AtomSource struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the source identifier.
func (s *AtomSource) Name() string { return "arxiv-api" }

// Fetch queries the Atom API and returns parsed paper records. Records
// missing an ID, title, or authors are dropped.
func (s *AtomSource) Fetch(ctx context.Context, query string, maxResults int) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	params := url.Values{
		"search_query": {query},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}
	reqURL := atomAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var records []types.PaperRecord
	for _, entry := range feed.Entries {
		id := extractArxivID(entry.ID)
		if id == "" {
			continue
		}

		r := types.PaperRecord{
			ID:      id,
			Title:   collapseSpaces(entry.Title),
			Summary: collapseSpaces(entry.Summary),
			Venue:   "arXiv",
		}

		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				r.Authors = append(r.Authors, name)
			}
		}

		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			r.PublishedDate = t.Format("2006-01-02")
			r.Year = t.Year()
		}

		for _, link := range entry.Links {
			if link.Title == "pdf" && link.Href != "" {
				r.PDFURL = link.Href
			}
		}
		if r.PDFURL == "" {
			r.PDFURL = fmt.Sprintf("https://arxiv.org/pdf/%s.pdf", id)
		}

		records = append(records, r)
	}
	return keepValid(records), nil
}

// arXiv Atom feed XML structures.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

// collapseSpaces trims a string and folds internal whitespace runs into
// single spaces. Atom feeds wrap titles and abstracts across lines.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
