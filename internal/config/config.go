// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the agent configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults, CLI flags or
// environment variables.
type Config struct {
	// Credentials
	DatabaseURL  string `json:"database_url,omitempty"`   // PostgreSQL connection URL
	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // Gemini API key for document generation
	ApolloAPIKey string `json:"apollo_api_key,omitempty"` // People-search API key for contact enrichment
	JWTSecret    string `json:"jwt_secret,omitempty"`     // HTTP API bearer token secret; empty disables auth

	// Pipeline
	Sources      []string `json:"sources,omitempty"`       // Default job board sources
	BaseResume   string   `json:"base_resume,omitempty"`   // Path to the base resume text file
	OutputDir    string   `json:"output_dir,omitempty"`    // Directory for generated document files
	DemoFallback bool     `json:"demo_fallback,omitempty"` // Insert placeholder postings when sources come up empty

	// Behavior
	Port       int  `json:"port,omitempty"`        // HTTP server port
	UseBrowser bool `json:"use_browser,omitempty"` // Use headless browser for SPA job boards
	Verbose    bool `json:"verbose,omitempty"`     // Print detailed debug information
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Sources:      []string{"indeed", "remotive"},
		OutputDir:    "out",
		DemoFallback: true,
		Port:         8080,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables onto the config. Environment
// values win over file values so deployments can override without editing
// files.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("APOLLO_API_KEY"); v != "" {
		c.ApolloAPIKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("DEMO_FALLBACK"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.DemoFallback = enabled
		}
	}
}

// Validate checks that the configuration has valid values.
// Required fields are enforced later by the commands that need them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.BaseResume != "" {
		if _, err := os.Stat(c.BaseResume); os.IsNotExist(err) {
			return fmt.Errorf("config error: base resume file not found: %s", c.BaseResume)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. CLI flags should be applied on top of the result.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.ApolloAPIKey == "" {
		result.ApolloAPIKey = defaults.ApolloAPIKey
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}
	if len(result.Sources) == 0 {
		result.Sources = defaults.Sources
	}
	if result.BaseResume == "" {
		result.BaseResume = defaults.BaseResume
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
