// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied wherever the config file and flags are silent.
const (
	DefaultRunsDir         = "runs"
	DefaultMaxRefinements  = 1
	DefaultMaxRetries      = 3
	DefaultCallTimeoutSecs = 90
	DefaultRateIntervalMS  = 1500
	DefaultMaxParallelJobs = 1
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags or environment variables.
type Config struct {
	// Paths
	Profile string `json:"profile,omitempty"`  // Path to candidate profile JSON
	Jobs    string `json:"jobs,omitempty"`     // Path to job postings CSV
	RunsDir string `json:"runs_dir,omitempty"` // Base directory for run output

	// Credentials
	GeminiAPIKey string `json:"gemini_api_key,omitempty"` // Drafting and refinement
	JudgeAPIKey  string `json:"judge_api_key,omitempty"`  // Evaluation provider key
	DatabaseURL  string `json:"database_url,omitempty"`   // Optional PostgreSQL artifact store

	// Models
	DraftModel   string `json:"draft_model,omitempty"`    // Overrides the standard-tier model
	RefineModel  string `json:"refine_model,omitempty"`   // Overrides the advanced-tier model
	JudgeModel   string `json:"judge_model,omitempty"`    // Evaluation model name
	JudgeBaseURL string `json:"judge_base_url,omitempty"` // OpenAI-compatible endpoint

	// Behavior
	MaxRefinements  int  `json:"max_refinements,omitempty"`   // Refinement attempts per job
	MaxRetries      int  `json:"max_retries,omitempty"`       // Retries per provider call
	CallTimeoutSecs int  `json:"call_timeout_secs,omitempty"` // Per-call deadline in seconds
	RateIntervalMS  int  `json:"rate_interval_ms,omitempty"`  // Minimum gap between calls per provider
	MaxParallelJobs int  `json:"max_parallel_jobs,omitempty"` // Concurrent jobs in one run
	MaxJobs         int  `json:"max_jobs,omitempty"`          // Cap on jobs taken from the input
	Verbose         bool `json:"verbose,omitempty"`           // Print detailed progress
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

// Validate checks that the configuration has valid values.
// Required fields are enforced by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.MaxRefinements < 0 {
		return fmt.Errorf("config error: 'max_refinements' must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config error: 'max_retries' must be non-negative")
	}
	if c.CallTimeoutSecs < 0 {
		return fmt.Errorf("config error: 'call_timeout_secs' must be non-negative")
	}
	if c.RateIntervalMS < 0 {
		return fmt.Errorf("config error: 'rate_interval_ms' must be non-negative")
	}
	if c.MaxParallelJobs < 0 {
		return fmt.Errorf("config error: 'max_parallel_jobs' must be non-negative")
	}
	if c.MaxJobs < 0 {
		return fmt.Errorf("config error: 'max_jobs' must be non-negative")
	}

	if c.Profile != "" {
		if _, err := os.Stat(c.Profile); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile file not found: %s", c.Profile)
		}
	}
	if c.Jobs != "" {
		if _, err := os.Stat(c.Jobs); os.IsNotExist(err) {
			return fmt.Errorf("config error: jobs file not found: %s", c.Jobs)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Profile == "" {
		result.Profile = defaults.Profile
	}
	if result.Jobs == "" {
		result.Jobs = defaults.Jobs
	}
	if result.RunsDir == "" {
		result.RunsDir = defaults.RunsDir
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.JudgeAPIKey == "" {
		result.JudgeAPIKey = defaults.JudgeAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.DraftModel == "" {
		result.DraftModel = defaults.DraftModel
	}
	if result.RefineModel == "" {
		result.RefineModel = defaults.RefineModel
	}
	if result.JudgeModel == "" {
		result.JudgeModel = defaults.JudgeModel
	}
	if result.JudgeBaseURL == "" {
		result.JudgeBaseURL = defaults.JudgeBaseURL
	}

	if result.MaxRefinements == 0 {
		result.MaxRefinements = defaults.MaxRefinements
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.CallTimeoutSecs == 0 {
		result.CallTimeoutSecs = defaults.CallTimeoutSecs
	}
	if result.RateIntervalMS == 0 {
		result.RateIntervalMS = defaults.RateIntervalMS
	}
	if result.MaxParallelJobs == 0 {
		result.MaxParallelJobs = defaults.MaxParallelJobs
	}
	if result.MaxJobs == 0 {
		result.MaxJobs = defaults.MaxJobs
	}

	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}

// Defaults returns the baseline configuration applied beneath config files
// and flags via MergeWithDefaults.
func Defaults() Config {
	return Config{
		RunsDir:         DefaultRunsDir,
		MaxRefinements:  DefaultMaxRefinements,
		MaxRetries:      DefaultMaxRetries,
		CallTimeoutSecs: DefaultCallTimeoutSecs,
		RateIntervalMS:  DefaultRateIntervalMS,
		MaxParallelJobs: DefaultMaxParallelJobs,
	}
}

// CallTimeout returns the per-call deadline as a duration.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSecs) * time.Second
}

// RateInterval returns the minimum spacing between provider calls.
func (c *Config) RateInterval() time.Duration {
	return time.Duration(c.RateIntervalMS) * time.Millisecond
}
