package wiki

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RendererConfig controls how the site renderer writes output files.
type RendererConfig struct {
	Format    string // "raw-md", "hugo", or "docusaurus"
	OutputDir string // root output directory
}

// DefaultRendererConfig returns a RendererConfig with sensible defaults.
func DefaultRendererConfig() RendererConfig {
	return RendererConfig{
		Format:    "raw-md",
		OutputDir: "docs/wiki",
	}
}

// NewRenderer validates the configuration once at construction. An unknown
// format is a terminal configuration error.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	switch cfg.Format {
	case "raw-md", "hugo", "docusaurus":
	default:
		return nil, fmt.Errorf("unsupported render format: %s", cfg.Format)
	}
	return &Renderer{cfg: cfg}, nil
}

// Renderer writes documents to disk in one of the supported site formats.
type Renderer struct {
	cfg RendererConfig
}

// Render writes the given documents to disk in the configured format.
func (r *Renderer) Render(documents []Document) error {
	switch r.cfg.Format {
	case "hugo":
		return r.renderHugo(documents)
	case "docusaurus":
		return r.renderDocusaurus(documents)
	default:
		return r.renderRawMarkdown(documents)
	}
}

// renderRawMarkdown writes each document as-is under OutputDir.
func (r *Renderer) renderRawMarkdown(documents []Document) error {
	for _, doc := range documents {
		path := filepath.Join(r.cfg.OutputDir, doc.Path)
		if err := writeDoc(path, doc.Content); err != nil {
			return err
		}
	}
	return nil
}

// frontMatter marshals the given fields into a YAML front matter block.
func frontMatter(fields map[string]any) (string, error) {
	data, err := yaml.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshalling front matter: %w", err)
	}
	return "---\n" + string(data) + "---\n\n", nil
}

// renderHugo writes documents with YAML front matter under OutputDir/content/
// and generates a config.toml at OutputDir/config.toml.
func (r *Renderer) renderHugo(documents []Document) error {
	for i, doc := range documents {
		fm, err := frontMatter(map[string]any{
			"title":  doc.Title,
			"weight": i + 1,
		})
		if err != nil {
			return err
		}
		path := filepath.Join(r.cfg.OutputDir, "content", doc.Path)
		if err := writeDoc(path, fm+doc.Content); err != nil {
			return err
		}
	}

	configContent := `baseURL = "/"
languageCode = "en-us"
title = "Code Wiki"
theme = "hugo-book"
`
	return writeDoc(filepath.Join(r.cfg.OutputDir, "config.toml"), configContent)
}

// renderDocusaurus writes documents with YAML front matter under
// OutputDir/docs/ and generates a docusaurus.config.js.
func (r *Renderer) renderDocusaurus(documents []Document) error {
	for i, doc := range documents {
		fm, err := frontMatter(map[string]any{
			"sidebar_position": i + 1,
			"sidebar_label":    doc.Title,
		})
		if err != nil {
			return err
		}
		path := filepath.Join(r.cfg.OutputDir, "docs", doc.Path)
		if err := writeDoc(path, fm+doc.Content); err != nil {
			return err
		}
	}

	configContent := `// @ts-check

/** @type {import('@docusaurus/types').Config} */
const config = {
  title: 'Code Wiki',
  url: 'https://your-project-url.example.com',
  baseUrl: '/',
  themes: ['@docusaurus/theme-mermaid'],
  markdown: {
    mermaid: true,
  },
  presets: [
    [
      'classic',
      /** @type {import('@docusaurus/preset-classic').Options} */
      ({
        docs: {
          routeBasePath: '/',
        },
      }),
    ],
  ],
};

module.exports = config;
`
	return writeDoc(filepath.Join(r.cfg.OutputDir, "docusaurus.config.js"), configContent)
}

// writeDoc creates parent directories and writes content to the given path.
func writeDoc(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
