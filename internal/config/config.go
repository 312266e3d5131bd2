// Package config loads the TOML configuration controlling wiki generation
// and the security engines.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	Wiki     WikiConfig     `toml:"wiki"`
	Security SecurityConfig `toml:"security"`
	AI       AIConfig       `toml:"ai"`
}

// WikiConfig holds settings for the wiki site pipeline.
type WikiConfig struct {
	OutputDir   string `toml:"output_dir"`
	Format      string `toml:"format"`       // raw-md, hugo, docusaurus
	DiagramFmt  string `toml:"diagram_fmt"`  // mermaid
	Concurrency int    `toml:"concurrency"`  // parallel per-file workers
	CachePath   string `toml:"cache_path"`   // analysis cache database; empty disables caching
}

// SecurityConfig gates the security engines independently.
type SecurityConfig struct {
	MinHotspotSeverity         string `toml:"min_hotspot_severity"`
	EnableTraceAnalysis        bool   `toml:"enable_trace_analysis"`
	EnablePropagationDiagrams  bool   `toml:"enable_propagation_diagrams"`
	EnableOWASPRecommendations bool   `toml:"enable_owasp_recommendations"`
	EnableHotspotVisualization bool   `toml:"enable_hotspot_visualization"`
}

// AIConfig holds settings for AI insight generation.
type AIConfig struct {
	Enabled           bool    `toml:"enabled"`
	UseMock           bool    `toml:"use_mock"` // canned responses instead of a live provider
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Wiki: WikiConfig{
			OutputDir:   "docs/wiki",
			Format:      "raw-md",
			DiagramFmt:  "mermaid",
			Concurrency: 4,
		},
		Security: SecurityConfig{
			MinHotspotSeverity:         "medium",
			EnableTraceAnalysis:        true,
			EnablePropagationDiagrams:  true,
			EnableOWASPRecommendations: true,
			EnableHotspotVisualization: true,
		},
		AI: AIConfig{
			Enabled:           false,
			RequestsPerSecond: 2,
			Burst:             4,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file yields
// the defaults without error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
