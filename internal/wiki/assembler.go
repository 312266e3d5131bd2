package wiki

import (
	"fmt"
	"strings"

	"github.com/codewiki-dev/codewiki/internal/security"
)

// FilePage pairs a scanned file with its rendered diagrams and AI insight.
type FilePage struct {
	File     ScannedFile
	Diagrams []Diagram
	Insights string
}

// AssembleOptions gates the optional security sections of the site.
type AssembleOptions struct {
	EnablePropagationDiagrams  bool
	EnableOWASPRecommendations bool
	EnableHotspotVisualization bool
}

// Assemble combines file pages and the security report into a set of wiki
// documents. It always produces at least the _index.md page.
func Assemble(pages []FilePage, depDiagram Diagram, report *security.Report, classifier security.CategoryClassifier, opts AssembleOptions) []Document {
	var docs []Document

	docs = append(docs, buildIndexPage(pages, depDiagram))
	for _, page := range pages {
		docs = append(docs, buildFilePage(page, classifier, opts))
	}
	docs = append(docs, buildSecurityPage(report, opts))

	return docs
}

// buildIndexPage creates _index.md with project totals, the dependency
// diagram and a file listing.
func buildIndexPage(pages []FilePage, depDiagram Diagram) Document {
	var b strings.Builder
	b.WriteString("# Project Overview\n\n")

	totalLines := 0
	for _, p := range pages {
		totalLines += p.File.Lines
	}
	fmt.Fprintf(&b, "Total files: %d, Lines: %d\n\n", len(pages), totalLines)

	if depDiagram.Content != "" {
		writeMermaidBlock(&b, depDiagram)
	}

	if len(pages) > 0 {
		b.WriteString("## Files\n\n")
		for _, p := range pages {
			slug := sanitizeID(p.File.Path)
			fmt.Fprintf(&b, "- [%s](files/%s.md) (%s, %d symbols)\n",
				p.File.Path, slug, p.File.Language, len(p.File.Symbols))
		}
		b.WriteString("\n")
	}

	return Document{
		Path:    "_index.md",
		Title:   "Project Overview",
		Content: b.String(),
	}
}

// buildFilePage creates files/<slug>.md with the selected diagrams, the
// symbol listing, optional OWASP recommendations and AI insights.
func buildFilePage(page FilePage, classifier security.CategoryClassifier, opts AssembleOptions) Document {
	f := page.File
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", sanitizeMarkdown(f.Path))
	fmt.Fprintf(&b, "Language: %s, Lines: %d\n\n", f.Language, f.Lines)

	for _, d := range page.Diagrams {
		writeMermaidBlock(&b, d)
	}

	if len(f.Symbols) > 0 {
		b.WriteString("## Symbols\n\n")
		for _, s := range f.Symbols {
			fmt.Fprintf(&b, "- `%s` (%s)\n", s.Name, s.Kind)
		}
		b.WriteString("\n")
	}

	if opts.EnableOWASPRecommendations && classifier != nil {
		writeOWASPSection(&b, f.Path, classifier)
	}

	if page.Insights != "" {
		b.WriteString("## AI Insights\n\n")
		b.WriteString(sanitizeMarkdown(page.Insights))
		b.WriteString("\n\n")
	}

	return Document{
		Path:    "files/" + sanitizeID(f.Path) + ".md",
		Title:   f.Path,
		Content: b.String(),
	}
}

// writeOWASPSection appends detected OWASP categories with hardening
// guidance for one file. No detected categories means no section.
func writeOWASPSection(b *strings.Builder, path string, classifier security.CategoryClassifier) {
	categories := classifier.Categories(path)
	if len(categories) == 0 {
		return
	}

	b.WriteString("## OWASP Recommendations\n\n")
	for _, c := range categories {
		fmt.Fprintf(b, "### %s\n\n", c.Label())
		for _, rec := range security.CategoryRecommendations(c) {
			fmt.Fprintf(b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}
}

// buildSecurityPage creates security/overview.md. With a report it renders a
// severity summary table, per-vulnerability details, propagation trace
// diagrams, and the hotspot ranking. Otherwise it shows placeholder text.
func buildSecurityPage(report *security.Report, opts AssembleOptions) Document {
	if report == nil || len(report.Vulnerabilities) == 0 {
		return Document{
			Path:    "security/overview.md",
			Title:   "Security",
			Content: "# Security\n\nNo security findings.\n",
		}
	}

	var b strings.Builder
	b.WriteString("# Security\n\n")

	counts := map[security.Severity]int{}
	for _, v := range report.Vulnerabilities {
		counts[v.Severity]++
	}

	b.WriteString("## Summary\n\n")
	b.WriteString("| Severity | Count |\n")
	b.WriteString("|----------|-------|\n")
	for _, sev := range []security.Severity{
		security.SeverityCritical,
		security.SeverityHigh,
		security.SeverityMedium,
		security.SeverityLow,
		security.SeverityInfo,
	} {
		if c := counts[sev]; c > 0 {
			fmt.Fprintf(&b, "| %s | %d |\n", sev, c)
		}
	}
	fmt.Fprintf(&b, "| **Total** | **%d** |\n\n", len(report.Vulnerabilities))

	b.WriteString("## Findings\n\n")
	for _, v := range report.Vulnerabilities {
		fmt.Fprintf(&b, "### %s\n\n", sanitizeMarkdown(v.Title))
		fmt.Fprintf(&b, "- **Severity**: %s\n", v.Severity)
		fmt.Fprintf(&b, "- **Category**: %s\n", sanitizeMarkdown(v.Category.Label()))
		if v.Location.File != "" {
			if v.Location.StartLine > 0 {
				fmt.Fprintf(&b, "- **Location**: `%s:%d`\n", sanitizeMarkdown(v.Location.File), v.Location.StartLine)
			} else {
				fmt.Fprintf(&b, "- **Location**: `%s`\n", sanitizeMarkdown(v.Location.File))
			}
		}
		if v.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", sanitizeMarkdown(v.Description))
		}
		b.WriteString("\n")
	}

	if opts.EnablePropagationDiagrams && len(report.Traces) > 0 {
		b.WriteString("## Propagation Traces\n\n")
		for _, trace := range report.Traces {
			writeMermaidBlock(&b, TraceDiagram(trace))
			if len(trace.Mitigations) > 0 {
				b.WriteString("Mitigations:\n\n")
				for _, m := range trace.Mitigations {
					fmt.Fprintf(&b, "- %s\n", m)
				}
				b.WriteString("\n")
			}
		}
	}

	if opts.EnableHotspotVisualization && len(report.Hotspots) > 0 {
		b.WriteString("## Hotspots\n\n")
		writeMermaidBlock(&b, HotspotDiagram(report.Hotspots))
		b.WriteString("| File | Risk Score | Vulnerabilities | Severity |\n")
		b.WriteString("|------|-----------|-----------------|----------|\n")
		for _, h := range report.Hotspots {
			fmt.Fprintf(&b, "| `%s` | %.1f | %d | %s |\n",
				sanitizeMarkdown(h.Location.File), h.RiskScore, h.VulnerabilityCount, h.Severity)
		}
		b.WriteString("\n")
	}

	return Document{
		Path:    "security/overview.md",
		Title:   "Security",
		Content: b.String(),
	}
}

// writeMermaidBlock appends a fenced mermaid code block for a diagram.
func writeMermaidBlock(b *strings.Builder, d Diagram) {
	if d.Title != "" {
		fmt.Fprintf(b, "### %s\n\n", d.Title)
	}
	b.WriteString("```mermaid\n")
	b.WriteString(d.Content)
	if !strings.HasSuffix(d.Content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")
}

// sanitizeMarkdown escapes HTML-significant characters from untrusted text to
// prevent XSS when the generated Markdown is rendered to HTML.
func sanitizeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
