package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jonathan/recruit-pilot/internal/config"
	"github.com/jonathan/recruit-pilot/internal/contacts"
	"github.com/jonathan/recruit-pilot/internal/db"
	"github.com/jonathan/recruit-pilot/internal/generate"
	"github.com/jonathan/recruit-pilot/internal/ingest"
	"github.com/jonathan/recruit-pilot/internal/llm"
	"github.com/jonathan/recruit-pilot/internal/pipeline"
)

// defaultBaseResume is used when no base resume file is configured so the
// generation phase still produces a structurally valid document.
const defaultBaseResume = "Experienced software engineer with a track record of building and operating production systems."

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
}

// loadConfig builds the effective configuration: file values, then
// built-in defaults for anything unset, then environment overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Config{DemoFallback: true}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	cfg = cfg.MergeWithDefaults(config.DefaultConfig())
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildOrchestrator wires the pipeline components from configuration.
// The returned cleanup releases the LLM client and must run after the
// last Execute call.
func buildOrchestrator(ctx context.Context, cfg config.Config, database *db.DB, useBrowser, verbose bool) (*pipeline.Orchestrator, func(), error) {
	sources := []ingest.Source{
		ingest.NewIndeedSource(useBrowser),
		ingest.NewRemotiveSource(),
		ingest.NewDemoSource(),
	}
	ingestor := ingest.NewIngestor(database, sources, cfg.DemoFallback)

	finder := contacts.NewSearchClient(cfg.ApolloAPIKey)
	if cfg.ApolloAPIKey == "" {
		log.Println("APOLLO_API_KEY not set; contact enrichment disabled")
	}

	var llmClient llm.Client
	cleanup := func() {}
	if cfg.GeminiAPIKey != "" {
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		llmClient = client
		cleanup = func() {
			if err := client.Close(); err != nil {
				log.Printf("Error closing LLM client: %v", err)
			}
		}
	} else {
		log.Println("GEMINI_API_KEY not set; using template document generation")
	}

	var writer *generate.DocumentWriter
	if cfg.OutputDir != "" {
		writer = generate.NewDocumentWriter(cfg.OutputDir)
	}
	generator := generate.New(llmClient, writer)

	baseResume, err := loadBaseResume(cfg.BaseResume)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	orch := pipeline.New(database, ingestor, finder, generator, baseResume, verbose)
	return orch, cleanup, nil
}

// loadBaseResume reads the configured resume file, falling back to a
// minimal placeholder when none is configured.
func loadBaseResume(path string) (string, error) {
	if path == "" {
		return defaultBaseResume, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read base resume %s: %w", path, err)
	}
	return string(data), nil
}
