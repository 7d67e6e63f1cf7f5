// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage saved papers",
	Long: `Favorites keeps a local list of papers worth returning to. Papers are
stored in the history database and are full-text searchable by title
and abstract.`,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add [arxiv-id]",
	Short: "Save a paper by arXiv ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesAdd,
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	id := args[0]

	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.close()

	ctx := context.Background()

	// The Atom API is the cheapest way to resolve one known ID.
	batch := p.runner.Retrieve(ctx, id, 5)
	if !batch.Success {
		return fmt.Errorf("looking up %s: %s", id, batch.Error)
	}

	for _, paper := range batch.Papers {
		if paper.ID != id {
			continue
		}
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		if err := hist.AddFavorite(ctx, paper); err != nil {
			return err
		}
		fmt.Printf("saved %s: %s\n", paper.ID, paper.Title)
		return nil
	}
	return fmt.Errorf("no paper with id %s found", id)
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved papers",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		papers, err := hist.ListFavorites(context.Background())
		if err != nil {
			return err
		}
		if len(papers) == 0 {
			fmt.Println("No favorites saved.")
			return nil
		}
		printPapers(os.Stdout, papers)
		return nil
	},
}

var favoritesSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search saved papers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		papers, err := hist.SearchFavorites(context.Background(), args[0], limit)
		if err != nil {
			return err
		}
		if len(papers) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		printPapers(os.Stdout, papers)
		return nil
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove [arxiv-id]",
	Short: "Remove a saved paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		if err := hist.RemoveFavorite(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

var favoritesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved papers as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		return hist.ExportYAML(context.Background(), os.Stdout)
	},
}

func init() {
	favoritesSearchCmd.Flags().Int("limit", 0, "maximum matches to show (0 = store default)")

	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesSearchCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	favoritesCmd.AddCommand(favoritesExportCmd)
	rootCmd.AddCommand(favoritesCmd)
}
