// Package config loads stride settings from file and environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the settings the CLI wires into the engine. It is loaded once
// per invocation and passed down explicitly.
type Config struct {
	// AgentCommand is the coding-agent binary to shell out to.
	AgentCommand string

	// MaxFixRetries bounds the review-fix cycle per task.
	MaxFixRetries int

	// StateDir is the repository-relative directory for persisted state.
	StateDir string

	// JSONL switches progress output to JSON Lines.
	JSONL bool
}

// Defaults.
const (
	DefaultAgentCommand  = "claude"
	DefaultMaxFixRetries = 5
	DefaultStateDir      = ".stride"
)

// Load reads .stride.yaml from the given directory (if present) and STRIDE_*
// environment variables, falling back to defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".stride")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("STRIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("agent.command", DefaultAgentCommand)
	v.SetDefault("review.max_fix_retries", DefaultMaxFixRetries)
	v.SetDefault("state.dir", DefaultStateDir)
	v.SetDefault("output.jsonl", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		AgentCommand:  v.GetString("agent.command"),
		MaxFixRetries: v.GetInt("review.max_fix_retries"),
		StateDir:      v.GetString("state.dir"),
		JSONL:         v.GetBool("output.jsonl"),
	}

	if cfg.MaxFixRetries < 1 {
		return nil, fmt.Errorf("review.max_fix_retries must be at least 1, got %d", cfg.MaxFixRetries)
	}
	return cfg, nil
}
