// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-scout/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for research papers",
	Long: `Search runs the full discovery pipeline for a natural-language research
question. By default the semantic memory store is consulted first and live
arXiv retrieval fills the gaps; fresh results are ingested back into the
store.

With --live the store is skipped entirely: the query is enhanced, papers
are retrieved from arXiv, and results are re-ranked against your intent.
With --batch every argument is treated as a separate query.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", 10, "maximum number of results to return")
	searchCmd.Flags().Bool("force-live", false, "bypass the semantic store and retrieve live (results still ingested in the background)")
	searchCmd.Flags().Bool("live", false, "run the enhance-retrieve-rerank pipeline without the semantic store")
	searchCmd.Flags().Bool("no-enhance", false, "send the query to retrieval verbatim, skipping the LLM rewrite")
	searchCmd.Flags().Bool("batch", false, "treat each argument as a separate query")
	searchCmd.Flags().String("output", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	forceLive, _ := cmd.Flags().GetBool("force-live")
	live, _ := cmd.Flags().GetBool("live")
	noEnhance, _ := cmd.Flags().GetBool("no-enhance")
	batchMode, _ := cmd.Flags().GetBool("batch")
	output, _ := cmd.Flags().GetString("output")

	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.close()

	ctx := context.Background()

	if batchMode {
		results := p.orchestrator.BatchSearch(ctx, args, maxResults)
		recordSearches(results)
		return formatBatches(os.Stdout, results, output)
	}

	query := strings.Join(args, " ")

	var batch types.SearchResultBatch
	switch {
	case noEnhance:
		batch = p.runner.Retrieve(ctx, query, maxResults)
	case live:
		batch = p.orchestrator.EnhanceAndRetrieve(ctx, query, maxResults)
	default:
		batch = p.orchestrator.Search(ctx, query, maxResults, forceLive)
	}

	recordSearches([]types.SearchResultBatch{batch})

	if err := formatBatch(os.Stdout, batch, output); err != nil {
		return err
	}
	if !batch.Success {
		return fmt.Errorf("search failed: %s", batch.Error)
	}
	return nil
}

// recordSearches logs batches to local history. History failures are
// reported but never fail the search.
func recordSearches(batches []types.SearchResultBatch) {
	hist, err := openHistory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		return
	}
	defer hist.Close()

	for _, b := range batches {
		if _, err := hist.RecordSearch(context.Background(), b); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording search failed: %v\n", err)
		}
	}
}
