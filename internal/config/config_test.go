package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultAgentCommand, cfg.AgentCommand)
	assert.Equal(t, DefaultMaxFixRetries, cfg.MaxFixRetries)
	assert.Equal(t, DefaultStateDir, cfg.StateDir)
	assert.False(t, cfg.JSONL)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `agent:
  command: my-agent
review:
  max_fix_retries: 3
state:
  dir: .custom
output:
  jsonl: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".stride.yaml"), []byte(yaml), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "my-agent", cfg.AgentCommand)
	assert.Equal(t, 3, cfg.MaxFixRetries)
	assert.Equal(t, ".custom", cfg.StateDir)
	assert.True(t, cfg.JSONL)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("STRIDE_AGENT_COMMAND", "env-agent")
	t.Setenv("STRIDE_REVIEW_MAX_FIX_RETRIES", "2")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "env-agent", cfg.AgentCommand)
	assert.Equal(t, 2, cfg.MaxFixRetries)
}

func TestLoad_InvalidRetries(t *testing.T) {
	dir := t.TempDir()
	yaml := "review:\n  max_fix_retries: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".stride.yaml"), []byte(yaml), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_fix_retries")
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".stride.yaml"), []byte("agent: [unclosed"), 0644))

	_, err := Load(dir)
	require.Error(t, err)
}
