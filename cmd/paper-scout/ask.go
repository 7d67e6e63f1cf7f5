// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-scout/internal/qa"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the stored papers",
	Long: `Ask answers a question using only papers already held in the semantic
store. Relevant passages are retrieved, the answer cites them as
[Document N], and the source list maps each citation back to a stored
document. Papers land in the store as search ingests them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Int("limit", 0, "maximum number of documents to consult")
	askCmd.Flags().String("output", "table", "output format: table, json, or yaml")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.close()

	if p.cfg.Memory.APIKey == "" {
		return fmt.Errorf("no semantic store API key configured (add supermemory-api-key to .secrets/)")
	}

	answerer := p.answerer
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		answerer = qa.NewAnswerer(p.store, p.gen, p.store.ContainerTag,
			qa.WithSearchLimit(limit), qa.WithLogger(p.logger))
	}

	answer, err := answerer.Ask(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output")
	return formatAnswer(os.Stdout, answer, format)
}
