// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"strings"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// Metadata keys under which paper fields ride along with each ingested
// document. The store echoes metadata back verbatim on search hits.
const (
	metaPaperID       = "paperId"
	metaTitle         = "title"
	metaSummary       = "summary"
	metaAuthors       = "authors"
	metaPublishedDate = "publishedDate"
	metaPDFURL        = "pdfUrl"
	metaVenue         = "venue"
	metaYear          = "year"
)

// paperMetadata flattens a paper into store metadata. Authors are joined
// because the store only accepts scalar metadata values.
func paperMetadata(p types.PaperRecord) map[string]any {
	m := map[string]any{
		metaPaperID: p.ID,
		metaTitle:   p.Title,
		metaAuthors: strings.Join(p.Authors, ", "),
	}
	if p.Summary != "" {
		m[metaSummary] = p.Summary
	}
	if p.PublishedDate != "" {
		m[metaPublishedDate] = p.PublishedDate
	}
	if p.PDFURL != "" {
		m[metaPDFURL] = p.PDFURL
	}
	if p.Venue != "" {
		m[metaVenue] = p.Venue
	}
	if p.Year != 0 {
		m[metaYear] = p.Year
	}
	return m
}

// PaperFromDocument rebuilds a paper record from a search hit's metadata.
// It returns false when the hit lacks the minimum paper fields; such hits
// are non-paper documents sharing the container and are skipped.
func PaperFromDocument(doc ScoredDocument) (types.PaperRecord, bool) {
	p := types.PaperRecord{
		ID:            metaString(doc.Metadata, metaPaperID),
		Title:         metaString(doc.Metadata, metaTitle),
		Summary:       metaString(doc.Metadata, metaSummary),
		PublishedDate: metaString(doc.Metadata, metaPublishedDate),
		PDFURL:        metaString(doc.Metadata, metaPDFURL),
		Venue:         metaString(doc.Metadata, metaVenue),
		Year:          metaInt(doc.Metadata, metaYear),
	}
	if p.Title == "" {
		p.Title = doc.Title
	}
	if authors := metaString(doc.Metadata, metaAuthors); authors != "" {
		for _, name := range strings.Split(authors, ",") {
			if name = strings.TrimSpace(name); name != "" {
				p.Authors = append(p.Authors, name)
			}
		}
	}
	// Fall back to chunk text when the summary did not ride along.
	if p.Summary == "" && len(doc.Chunks) > 0 {
		p.Summary = doc.Chunks[0].Content
	}
	return p, p.Valid()
}

// PapersFromDocuments converts a ranked hit list, dropping non-paper hits.
func PapersFromDocuments(docs []ScoredDocument) []types.PaperRecord {
	var papers []types.PaperRecord
	for _, doc := range docs {
		if p, ok := PaperFromDocument(doc); ok {
			papers = append(papers, p)
		}
	}
	return papers
}

func metaString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func metaInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64: // JSON numbers decode as float64
		return int(v)
	}
	return 0
}
