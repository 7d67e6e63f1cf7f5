// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PaperRecord represents a retrieved academic paper. Records are created
// by a retrieval source per request and live only for the duration of a
// request/response cycle; durable storage is the semantic store's job.
type PaperRecord struct {
	// ID is the canonical source identifier (e.g. arXiv ID). It is the
	// dedup and merge key within a retrieval batch.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Summary is the paper abstract, or a rewritten intent-focused summary
	// after post-processing.
	Summary string `json:"summary" yaml:"summary"`

	// Authors lists the paper authors in byline order.
	Authors []string `json:"authors" yaml:"authors"`

	// PublishedDate is the publication date as an ISO date string (YYYY-MM-DD).
	PublishedDate string `json:"published_date" yaml:"published_date"`

	// PDFURL is a fetchable document location.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Venue is the publication venue, defaulting to the source name.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// Year is the publication year, derived from PublishedDate when the
	// source does not report it.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`
}

// Valid reports whether the record carries the minimum fields the pipeline
// requires: a non-empty ID and title and at least one author. Invalid
// records are dropped silently where they enter the pipeline, never
// surfaced as user-facing errors.
func (p PaperRecord) Valid() bool {
	return p.ID != "" && p.Title != "" && len(p.Authors) > 0
}
