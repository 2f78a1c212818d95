package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/recruit-pilot/internal/db"
	"github.com/jonathan/recruit-pilot/internal/server"
)

var (
	servePort       int
	serveUseBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for launching and polling recruitment pipeline runs.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveUseBrowser, "use-browser", false, "Use a headless browser for SPA job boards")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	orch, cleanup, err := buildOrchestrator(ctx, cfg, database, serveUseBrowser, cfg.Verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(server.Config{
		Port:           cfg.Port,
		JWTSecret:      cfg.JWTSecret,
		DefaultSources: cfg.Sources,
	}, database, orch)

	return srv.Start()
}
