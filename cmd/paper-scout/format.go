// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-scout/internal/qa"
	"github.com/pdiddy/paper-scout/pkg/types"
)

var (
	titleColor  = color.New(color.Bold)
	metaColor   = color.New(color.FgCyan)
	scoreColor  = color.New(color.FgGreen)
	failedColor = color.New(color.FgRed)
)

// formatBatch renders one result batch in the requested format.
func formatBatch(w io.Writer, batch types.SearchResultBatch, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	case "yaml":
		data, err := yaml.Marshal(batch)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "table":
		printBatchTable(w, batch)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", format)
	}
}

// formatBatches renders a batch-search result list.
func formatBatches(w io.Writer, batches []types.SearchResultBatch, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(batches)
	case "yaml":
		data, err := yaml.Marshal(batches)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "table":
		for i, batch := range batches {
			if i > 0 {
				fmt.Fprintln(w)
			}
			metaColor.Fprintf(w, "=== %s\n", batch.Query)
			printBatchTable(w, batch)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", format)
	}
}

func printBatchTable(w io.Writer, batch types.SearchResultBatch) {
	if !batch.Success {
		failedColor.Fprintf(w, "search failed: %s\n", batch.Error)
		return
	}

	if batch.EnhancedQuery != "" {
		metaColor.Fprintf(w, "query: %s\n", batch.EnhancedQuery)
	}
	if batch.Source != "" {
		cached := ""
		if batch.FromCache {
			cached = " (cached)"
		}
		metaColor.Fprintf(w, "source: %s%s\n", batch.Source, cached)
	}
	if batch.Intent != nil && batch.Intent.UserIntentIdentified != "" {
		metaColor.Fprintf(w, "intent: %s\n", batch.Intent.UserIntentIdentified)
	}

	if len(batch.Papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintln(w)
	printPapers(w, batch.Papers)

	summary := fmt.Sprintf("%d papers", batch.Count)
	if batch.IngestedCount > 0 {
		summary += fmt.Sprintf(", %d newly remembered", batch.IngestedCount)
	}
	if batch.PostProcessed {
		summary += ", intent-ranked"
	}
	scoreColor.Fprintf(w, "%s\n", summary)
}

// formatAnswer renders a question-answering result.
func formatAnswer(w io.Writer, answer qa.Answer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	case "yaml":
		data, err := yaml.Marshal(answer)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "table":
		printAnswer(w, answer)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", format)
	}
}

// printAnswer prints the answer text and its sources, starring the
// documents the answer actually cites.
func printAnswer(w io.Writer, answer qa.Answer) {
	fmt.Fprintln(w, answer.Text)
	if len(answer.Sources) == 0 {
		return
	}

	cited := make(map[int]bool)
	for _, n := range qa.CitedDocuments(answer.Text) {
		cited[n] = true
	}

	fmt.Fprintln(w)
	titleColor.Fprintln(w, "Sources")
	for _, src := range answer.Sources {
		marker := " "
		if cited[src.CitationNumber] {
			marker = "*"
		}
		fmt.Fprintf(w, "%s [%d] %s\n", marker, src.CitationNumber, src.Title)
		metaColor.Fprintf(w, "      %s  score %.2f  %d relevant chunks\n",
			src.ID, src.Score, src.RelevantChunks)
	}
	scoreColor.Fprintf(w, "\nconfidence %d%% across %d documents\n",
		answer.Confidence, answer.ResultCount)
}

// truncate shortens s to at most max runes, ellipsized. Counting runes
// keeps multibyte abstracts intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// printPapers renders a numbered paper list.
func printPapers(w io.Writer, papers []types.PaperRecord) {
	for i, p := range papers {
		titleColor.Fprintf(w, "%2d. %s\n", i+1, p.Title)

		line := strings.Join(p.Authors, ", ")
		if p.PublishedDate != "" {
			line += " · " + p.PublishedDate
		}
		if p.Venue != "" {
			line += " · " + p.Venue
		}
		fmt.Fprintf(w, "    %s\n", line)
		fmt.Fprintf(w, "    arXiv:%s  %s\n", p.ID, p.PDFURL)

		if p.Summary != "" {
			fmt.Fprintf(w, "    %s\n", truncate(p.Summary, 280))
		}
		fmt.Fprintln(w)
	}
}
