// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [query]",
	Short: "Preview the structured query rewrite",
	Long: `Enhance sends a natural-language research question through the query
rewriter and prints the resulting structured arXiv query without running
any retrieval. Useful for inspecting what search actually executes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEnhance,
}

func init() {
	enhanceCmd.Flags().Bool("json", false, "output the full enhancement result as JSON")

	rootCmd.AddCommand(enhanceCmd)
}

func runEnhance(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.close()

	result := p.enhancer.Enhance(context.Background(), strings.Join(args, " "))

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if !result.Succeeded {
		return fmt.Errorf("enhancement failed: %s", result.Err)
	}
	fmt.Println(result.EnhancedQuery)
	return nil
}
