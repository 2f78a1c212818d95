// Package main provides the entry point for the recruitment pipeline agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "recruit_agent",
	Short: "Recruitment pipeline agent",
	Long:  "Recruit agent discovers job postings, enriches them with recruiting contacts, and generates tailored resumes and cover letters, exposed via CLI and REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
