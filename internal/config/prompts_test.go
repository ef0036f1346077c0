package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPrompts(t *testing.T) {
	cfg, err := LoadPrompts(writePrompts(t, `
system_prompt: "Answer carefully and cite sources."
version: v3
`))
	require.NoError(t, err)
	assert.Equal(t, "Answer carefully and cite sources.", cfg.SystemPrompt)
	assert.Equal(t, "v3", cfg.Version)
}

func TestLoadPromptsDefaults(t *testing.T) {
	cfg, err := LoadPrompts(writePrompts(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.SystemPrompt)
	assert.Equal(t, "unknown", cfg.Version)
}

func TestLoadPromptsErrors(t *testing.T) {
	_, err := LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadPrompts(writePrompts(t, "::: not yaml"))
	assert.Error(t, err)
}
