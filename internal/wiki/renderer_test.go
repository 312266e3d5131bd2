package wiki

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readDoc(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewRendererRejectsUnknownFormat(t *testing.T) {
	_, err := NewRenderer(RendererConfig{Format: "pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported render format")
}

func TestRenderRawMarkdown(t *testing.T) {
	out := t.TempDir()
	r, err := NewRenderer(RendererConfig{Format: "raw-md", OutputDir: out})
	require.NoError(t, err)

	docs := []Document{
		{Path: "_index.md", Title: "Overview", Content: "# Overview\n"},
		{Path: "files/main_go.md", Title: "main.go", Content: "# main.go\n"},
	}
	require.NoError(t, r.Render(docs))

	assert.Equal(t, "# Overview\n", readDoc(t, filepath.Join(out, "_index.md")))
	assert.Equal(t, "# main.go\n", readDoc(t, filepath.Join(out, "files", "main_go.md")))
}

func TestRenderHugo(t *testing.T) {
	out := t.TempDir()
	r, err := NewRenderer(RendererConfig{Format: "hugo", OutputDir: out})
	require.NoError(t, err)

	require.NoError(t, r.Render([]Document{{Path: "_index.md", Title: "Overview", Content: "body\n"}}))

	page := readDoc(t, filepath.Join(out, "content", "_index.md"))
	assert.True(t, strings.HasPrefix(page, "---\n"))
	assert.Contains(t, page, "title: Overview\n")
	assert.Contains(t, page, "weight: 1\n")
	assert.True(t, strings.HasSuffix(page, "body\n"))

	conf := readDoc(t, filepath.Join(out, "config.toml"))
	assert.Contains(t, conf, `title = "Code Wiki"`)
}

func TestRenderDocusaurus(t *testing.T) {
	out := t.TempDir()
	r, err := NewRenderer(RendererConfig{Format: "docusaurus", OutputDir: out})
	require.NoError(t, err)

	require.NoError(t, r.Render([]Document{{Path: "intro.md", Title: "Intro", Content: "body\n"}}))

	page := readDoc(t, filepath.Join(out, "docs", "intro.md"))
	assert.Contains(t, page, "sidebar_position: 1\n")
	assert.Contains(t, page, "sidebar_label: Intro\n")

	conf := readDoc(t, filepath.Join(out, "docusaurus.config.js"))
	assert.Contains(t, conf, "@docusaurus/theme-mermaid")
}
