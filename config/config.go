// Package config handles loading and parsing the analyzer configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default path for the config file.
const DefaultConfigPath = "fixscout.yml"

// ParseError indicates a configuration file exists but contains invalid
// content. This is distinct from "file not found", which uses defaults.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid config at %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Config is the analyzer configuration.
type Config struct {
	// Model selects the Claude model used by both agents.
	Model ModelConfig `yaml:"model"`
	// Extract controls how the inspiration repository is mined.
	Extract ExtractConfig `yaml:"extract"`
	// Reports controls rendered report output.
	Reports ReportsConfig `yaml:"reports"`
	// Storage configures optional run-history persistence.
	Storage StorageConfig `yaml:"storage"`
}

// ModelConfig selects the model and its output budget.
type ModelConfig struct {
	Name      string `yaml:"name"`
	MaxTokens int64  `yaml:"max_tokens"`
}

// ExtractConfig bounds the inspiration analysis.
type ExtractConfig struct {
	// SinceDays is the history window for commits, issues and PRs.
	SinceDays int `yaml:"since_days"`
	// MaxCommits caps the commit listing.
	MaxCommits int `yaml:"max_commits"`
	// MaxPatchLines caps each commit patch.
	MaxPatchLines int `yaml:"max_patch_lines"`
	// IncludeGitHub enables the hosted issue/PR tools.
	IncludeGitHub bool `yaml:"include_github"`
	// MaxIssues caps issue listings.
	MaxIssues int `yaml:"max_issues"`
	// MaxPRs caps PR listings.
	MaxPRs int `yaml:"max_prs"`
}

// ReportsConfig controls rendered report output.
type ReportsConfig struct {
	// HTML enables HTML reports next to the JSON outputs.
	HTML bool `yaml:"html"`
}

// StorageConfig configures run-history persistence. An empty DSN disables it.
type StorageConfig struct {
	DSN string `yaml:"dsn"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:      "claude-sonnet-4-20250514",
			MaxTokens: 8192,
		},
		Extract: ExtractConfig{
			SinceDays:     30,
			MaxCommits:    50,
			MaxPatchLines: 400,
			IncludeGitHub: true,
			MaxIssues:     50,
			MaxPRs:        50,
		},
		Reports: ReportsConfig{
			HTML: true,
		},
	}
}

// Load reads and parses the config file at path. A missing file yields the
// default config; an unreadable or invalid file is an error.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config, err := Parse(content)
	if err != nil {
		// Wrap parse errors so callers can distinguish them from read errors
		return nil, &ParseError{Path: path, Err: err}
	}
	return config, nil
}

// Parse parses a config from YAML content over the defaults.
func Parse(content []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(content, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return fmt.Errorf("model.name must not be empty")
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("model.max_tokens must be > 0")
	}
	if c.Extract.SinceDays <= 0 {
		return fmt.Errorf("extract.since_days must be > 0")
	}
	if c.Extract.MaxCommits <= 0 {
		return fmt.Errorf("extract.max_commits must be > 0")
	}
	if c.Extract.MaxPatchLines <= 0 {
		return fmt.Errorf("extract.max_patch_lines must be > 0")
	}
	if c.Extract.MaxIssues <= 0 {
		return fmt.Errorf("extract.max_issues must be > 0")
	}
	if c.Extract.MaxPRs <= 0 {
		return fmt.Errorf("extract.max_prs must be > 0")
	}
	return nil
}
