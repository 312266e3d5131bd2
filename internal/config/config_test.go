package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "docs/wiki", cfg.Wiki.OutputDir)
	assert.Equal(t, "raw-md", cfg.Wiki.Format)
	assert.Equal(t, "mermaid", cfg.Wiki.DiagramFmt)
	assert.Equal(t, "medium", cfg.Security.MinHotspotSeverity)
	assert.True(t, cfg.Security.EnableTraceAnalysis)
	assert.True(t, cfg.Security.EnableHotspotVisualization)
	assert.False(t, cfg.AI.Enabled)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[wiki]
output_dir = "site"
format = "hugo"
concurrency = 8

[security]
min_hotspot_severity = "high"
enable_trace_analysis = false

[ai]
enabled = true
requests_per_second = 1.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "site", cfg.Wiki.OutputDir)
	assert.Equal(t, "hugo", cfg.Wiki.Format)
	assert.Equal(t, 8, cfg.Wiki.Concurrency)
	assert.Equal(t, "high", cfg.Security.MinHotspotSeverity)
	assert.False(t, cfg.Security.EnableTraceAnalysis)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, 1.5, cfg.AI.RequestsPerSecond)
	// Untouched fields keep their defaults.
	assert.Equal(t, "mermaid", cfg.Wiki.DiagramFmt)
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("wiki = {"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
