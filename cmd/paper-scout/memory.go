// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-scout/internal/memory"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect the semantic memory store",
	Long: `Memory manages the remote semantic store that search consults and feeds.
Use subcommands to list stored documents, check indexing status, search
the store directly, or delete documents.`,
}

var memoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := memoryClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		docs, err := store.List(context.Background())
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Println("No documents stored.")
			return nil
		}
		for _, d := range docs {
			fmt.Printf("%-30s  %-10s  %s\n", d.ID, d.Status, d.Title)
		}
		fmt.Printf("\n%d documents\n", len(docs))
		return nil
	},
}

var memorySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the store directly",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := memoryClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		limit, _ := cmd.Flags().GetInt("limit")
		docs, err := store.Search(context.Background(), args[0], limit, true)
		if err != nil {
			return err
		}

		papers := memory.PapersFromDocuments(docs)
		if len(papers) == 0 {
			fmt.Println("No papers found.")
			return nil
		}
		printPapers(os.Stdout, papers)
		return nil
	},
}

var memoryStatusCmd = &cobra.Command{
	Use:   "status [document-id]",
	Short: "Show a document's indexing status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := memoryClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		doc, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

var memoryDeleteCmd = &cobra.Command{
	Use:   "delete [document-id]",
	Short: "Delete a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := memoryClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func memoryClient(cmd *cobra.Command) (*memory.Client, func(), error) {
	p, err := buildPipeline(cmd)
	if err != nil {
		return nil, nil, err
	}
	if p.cfg.Memory.APIKey == "" {
		p.close()
		return nil, nil, fmt.Errorf("no semantic store API key configured (add supermemory-api-key to .secrets/)")
	}
	return p.store, p.close, nil
}

func init() {
	memorySearchCmd.Flags().Int("limit", 10, "maximum number of results")

	memoryCmd.AddCommand(memoryListCmd)
	memoryCmd.AddCommand(memorySearchCmd)
	memoryCmd.AddCommand(memoryStatusCmd)
	memoryCmd.AddCommand(memoryDeleteCmd)
	rootCmd.AddCommand(memoryCmd)
}
