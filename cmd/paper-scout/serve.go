// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search pipeline over HTTP",
	Long: `Serve exposes the pipeline as a JSON API: /api/search for hybrid search,
/api/search/batch for multiple queries, /api/arxiv for raw retrieval,
/api/qa for question answering over stored papers, and /api/memory
routes for the semantic store. Shuts down gracefully on SIGINT or
SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080, or server.addr from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	p, err := buildPipeline(cmd)
	if err != nil {
		return err
	}
	defer p.close()

	cfg := p.cfg.Server
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}

	opts := []server.Option{server.WithLogger(logger)}
	if p.cfg.Memory.APIKey != "" {
		opts = append(opts, server.WithAnswerer(p.answerer))
	}
	if hist, err := openHistory(); err == nil {
		defer hist.Close()
		opts = append(opts, server.WithHistory(hist))
	} else {
		logger.Warn("history disabled", zap.Error(err))
	}

	srv := server.New(cfg, p.orchestrator, p.runner, p.store, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
