// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-scout CLI.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/enhance"
	"github.com/pdiddy/paper-scout/internal/history"
	"github.com/pdiddy/paper-scout/internal/hybrid"
	"github.com/pdiddy/paper-scout/internal/llm"
	"github.com/pdiddy/paper-scout/internal/memory"
	"github.com/pdiddy/paper-scout/internal/postprocess"
	"github.com/pdiddy/paper-scout/internal/qa"
	"github.com/pdiddy/paper-scout/internal/retrieval"
	"github.com/pdiddy/paper-scout/internal/secrets"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the paper-scout CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-scout",
	Short: "Research-paper discovery with query enhancement and semantic memory",
	Long: `paper-scout finds research papers for natural-language questions. It
rewrites the question into a structured arXiv query, retrieves candidates
with strategy fallback, folds in a semantic memory store, and re-ranks
results against the inferred research intent.

Use search for the full pipeline, enhance to preview the query rewrite,
ask to question the stored papers, memory to inspect the semantic store,
and serve to expose the pipeline over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-scout.yaml or ~/.config/paper-scout/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log pipeline internals to stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-scout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-scout"))
		}
	}

	viper.SetEnvPrefix("PAPER_SCOUT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig assembles the full configuration from the config file,
// environment, and loaded secrets.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		Enhancer: types.AIConfig{
			Model:   viper.GetString("enhancer.model"),
			APIKey:  secretDefault("gemini-api-key", viper.GetString("enhancer.api_key")),
			Timeout: viper.GetDuration("enhancer.timeout"),
		},
		Retrieval: types.RetrievalConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("retrieval.timeout"),
				UserAgent: viper.GetString("retrieval.user_agent"),
			},
			MaxResults:      viper.GetInt("retrieval.max_results"),
			StrategyTimeout: viper.GetDuration("retrieval.strategy_timeout"),
		},
		PostProcess: types.PostProcessConfig{
			AIConfig: types.AIConfig{
				Model:   viper.GetString("post_process.model"),
				APIKey:  secretDefault("gemini-api-key", viper.GetString("post_process.api_key")),
				Timeout: viper.GetDuration("post_process.timeout"),
			},
			MaxPapers: viper.GetInt("post_process.max_papers"),
		},
		Memory: types.MemoryConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout: viper.GetDuration("memory.timeout"),
			},
			APIKey:            secretDefault("supermemory-api-key", viper.GetString("memory.api_key")),
			ContainerTag:      viper.GetString("memory.container_tag"),
			DocumentThreshold: viper.GetFloat64("memory.document_threshold"),
			ChunkThreshold:    viper.GetFloat64("memory.chunk_threshold"),
		},
		Hybrid: types.HybridConfig{
			IngestDelay:   viper.GetDuration("hybrid.ingest_delay"),
			SettleDelay:   viper.GetDuration("hybrid.settle_delay"),
			IngestWorkers: viper.GetInt("hybrid.ingest_workers"),
		},
		History: types.HistoryConfig{
			Dir:        viper.GetString("history.dir"),
			MaxResults: viper.GetInt("history.max_results"),
		},
		Server: types.ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
	}

	if cfg.Retrieval.UserAgent == "" {
		cfg.Retrieval.UserAgent = "paper-scout/" + version
	}
	if cfg.Retrieval.Timeout <= 0 {
		cfg.Retrieval.Timeout = 30 * time.Second
	}
	if cfg.Retrieval.StrategyTimeout <= 0 {
		cfg.Retrieval.StrategyTimeout = 10 * time.Second
	}
	if cfg.History.Dir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.History.Dir = filepath.Join(home, ".local", "share", "paper-scout")
		} else {
			cfg.History.Dir = ".paper-scout"
		}
	}
	return cfg
}

// pipeline bundles the wired components behind the CLI commands.
type pipeline struct {
	cfg          types.PipelineConfig
	enhancer     *enhance.Enhancer
	runner       *retrieval.Runner
	store        *memory.Client
	orchestrator *hybrid.Orchestrator
	answerer     *qa.Answerer
	gen          llm.Generator
	logger       *zap.Logger
}

func (p *pipeline) close() {
	p.orchestrator.Close()
	_ = p.logger.Sync()
}

// buildPipeline wires every stage from configuration.
func buildPipeline(cmd *cobra.Command) (*pipeline, error) {
	cfg := pipelineConfig()

	logger := zap.NewNop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
		logger = dev
	}

	gen := llm.NewGeminiClient(cfg.Enhancer)
	enhancer := enhance.NewEnhancer(gen, enhance.WithLogger(logger))

	httpClient := &http.Client{Timeout: cfg.Retrieval.Timeout}
	sources := []retrieval.Source{
		&retrieval.ListingSource{Client: httpClient, UserAgent: cfg.Retrieval.UserAgent},
		&retrieval.AtomSource{Client: httpClient, UserAgent: cfg.Retrieval.UserAgent},
	}
	runner := retrieval.NewRunner(cfg.Retrieval, sources, retrieval.WithLogger(logger))

	processor := postprocess.NewProcessor(cfg.PostProcess, llm.NewGeminiClient(cfg.PostProcess.AIConfig),
		postprocess.WithLogger(logger))

	store := memory.NewClient(cfg.Memory)

	orchestrator, err := hybrid.NewOrchestrator(cfg.Hybrid, enhancer, runner, processor, store,
		hybrid.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	answerer := qa.NewAnswerer(store, gen, store.ContainerTag, qa.WithLogger(logger))

	return &pipeline{
		cfg:          cfg,
		enhancer:     enhancer,
		runner:       runner,
		store:        store,
		orchestrator: orchestrator,
		answerer:     answerer,
		gen:          gen,
		logger:       logger,
	}, nil
}

// openHistory opens the local history store.
func openHistory() (*history.Store, error) {
	return history.NewStore(pipelineConfig().History)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
