// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View or clear local search history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := hist.ListSearches(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No searches recorded.")
			return nil
		}

		for _, r := range records {
			status := "ok"
			if !r.Success {
				status = "failed"
			}
			fmt.Printf("%s  %-6s  %3d results  %s\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"), status, r.ResultCount, r.Query)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := openHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		n, err := hist.ClearSearches(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("cleared %d searches\n", n)
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum entries to show (0 = store default)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
