package wiki

import (
	"fmt"
	"strings"

	"github.com/codewiki-dev/codewiki/internal/security"
)

// DiagramConfig controls diagram rendering behavior.
type DiagramConfig struct {
	Format string // diagram format (only "mermaid" supported)
}

// DefaultDiagramConfig returns sensible defaults for diagram rendering.
func DefaultDiagramConfig() DiagramConfig {
	return DiagramConfig{
		Format: "mermaid",
	}
}

// RenderFileDiagrams renders the selected descriptors of one file into
// Mermaid diagrams. The format check surfaces misconfiguration once; every
// other path is infallible.
func RenderFileDiagrams(d FileDiagrams, cfg DiagramConfig) ([]Diagram, error) {
	if cfg.Format != "mermaid" {
		return nil, fmt.Errorf("unsupported diagram format: %s", cfg.Format)
	}

	var diagrams []Diagram
	if d.Summary != nil {
		diagrams = append(diagrams, renderSummary(*d.Summary))
	}
	if d.Flowchart != nil {
		diagrams = append(diagrams, renderFlowchart(*d.Flowchart))
	}
	if d.Sequence != nil {
		diagrams = append(diagrams, renderSequence(*d.Sequence))
	}
	if d.ClassDiagram != nil {
		diagrams = append(diagrams, renderClassDiagram(*d.ClassDiagram))
	}
	return diagrams, nil
}

// renderFlowchart emits a flowchart TB block. Loop self-edges and the
// true/false conditional labels carry over from the descriptor.
func renderFlowchart(f Flowchart) Diagram {
	var b strings.Builder
	b.WriteString("flowchart TB\n")

	for _, n := range f.Nodes {
		fmt.Fprintf(&b, "  %s([\"%s\"])\n", n.ID, escapeMermaid(n.Label))
	}
	for _, e := range f.Edges {
		if e.Label != "" {
			fmt.Fprintf(&b, "  %s -->|%s| %s\n", e.From, e.Label, e.To)
		} else {
			fmt.Fprintf(&b, "  %s --> %s\n", e.From, e.To)
		}
	}

	return Diagram{
		Title:   "Control Flow",
		Type:    "flowchart",
		Content: b.String(),
	}
}

// renderSequence emits a sequenceDiagram block with one participant line per
// function and "caller->>callee: call" messages.
func renderSequence(s Sequence) Diagram {
	var b strings.Builder
	b.WriteString("sequenceDiagram\n")

	for _, p := range s.Participants {
		fmt.Fprintf(&b, "  participant %s\n", p)
	}
	for _, m := range s.Messages {
		fmt.Fprintf(&b, "  %s->>%s: call\n", m.Caller, m.Callee)
	}

	return Diagram{
		Title:   "Call Sequence",
		Type:    "sequence",
		Content: b.String(),
	}
}

// renderClassDiagram emits a classDiagram block with one empty class stub per
// declared symbol.
func renderClassDiagram(c ClassDiagram) Diagram {
	var b strings.Builder
	b.WriteString("classDiagram\n")

	for _, name := range c.Classes {
		fmt.Fprintf(&b, "  class %s {}\n", strings.ReplaceAll(name, ":", "_"))
	}

	return Diagram{
		Title:   "Class/Module Diagram",
		Type:    "class",
		Content: b.String(),
	}
}

// renderSummary emits a graph TD listing the shown function names under a
// total-count header node.
func renderSummary(s Summary) Diagram {
	var b strings.Builder
	b.WriteString("graph TD\n")
	fmt.Fprintf(&b, "  total[\"%d functions\"]\n", s.TotalCount)

	for i, name := range s.Shown {
		fmt.Fprintf(&b, "  s%d[\"%s\"]\n", i, escapeMermaid(name))
		fmt.Fprintf(&b, "  total --> s%d\n", i)
	}

	return Diagram{
		Title:   "Function Summary",
		Type:    "summary",
		Content: b.String(),
	}
}

// TraceDiagram renders a propagation trace as graph TD: the source node, the
// initial impact, then call sites interleaved with the decaying impact
// scores.
func TraceDiagram(trace security.Trace) Diagram {
	var b strings.Builder
	b.WriteString("graph TD\n")
	fmt.Fprintf(&b, "  A[\"%s\"]\n", escapeMermaid(trace.Source.Title))
	fmt.Fprintf(&b, "  A --> B[\"Impact: %.1f\"]\n", trace.ImpactChain[0].Score)

	for i, site := range trace.PropagationPath {
		nodeID := fmt.Sprintf("C%d", i)
		fmt.Fprintf(&b, "  %s([\"%s\"])\n", nodeID, escapeMermaid(site.FunctionName))

		if i == 0 {
			fmt.Fprintf(&b, "  B --> %s\n", nodeID)
		} else {
			fmt.Fprintf(&b, "  C%d --> %s\n", i-1, nodeID)
		}

		if i < len(trace.ImpactChain)-1 {
			fmt.Fprintf(&b, "  D%d[\"Impact: %.1f\"]\n", i, trace.ImpactChain[i+1].Score)
			fmt.Fprintf(&b, "  %s --> D%d\n", nodeID, i)
		}
	}

	return Diagram{
		Title:   "Propagation Trace: " + trace.Source.Title,
		Type:    "trace",
		Content: b.String(),
	}
}

// severityFill maps hotspot severities to Mermaid fill colors.
func severityFill(sev security.Severity) string {
	switch sev {
	case security.SeverityCritical:
		return "red"
	case security.SeverityHigh:
		return "orange"
	case security.SeverityMedium:
		return "yellow"
	default:
		return "green"
	}
}

// HotspotDiagram renders ranked hotspots as graph TD nodes colored by
// severity.
func HotspotDiagram(hotspots []security.Hotspot) Diagram {
	var b strings.Builder
	b.WriteString("graph TD\n")

	for i, h := range hotspots {
		fmt.Fprintf(&b, "  H%d[\"%s\\nRisk: %.1f\\nVulnerabilities: %d\"]\n",
			i, escapeMermaid(h.Location.File), h.RiskScore, h.VulnerabilityCount)
		fmt.Fprintf(&b, "  style H%d fill:%s;\n", i, severityFill(h.Severity))
	}

	return Diagram{
		Title:   "Security Hotspots",
		Type:    "hotspot",
		Content: b.String(),
	}
}

// DependencyDiagram creates a graph LR of import relationships between the
// scanned modules.
func DependencyDiagram(files []ScannedFile) Diagram {
	knownModules := make(map[string]bool)
	for _, f := range files {
		knownModules[f.Module] = true
	}

	var b strings.Builder
	b.WriteString("graph LR\n")

	seen := make(map[string]bool)
	for _, f := range files {
		for _, imp := range f.Imports {
			for mod := range knownModules {
				if mod == f.Module || !strings.Contains(imp, mod) {
					continue
				}
				edge := f.Module + " -> " + mod
				if !seen[edge] {
					seen[edge] = true
					fmt.Fprintf(&b, "  %s --> %s\n", sanitizeID(f.Module), sanitizeID(mod))
				}
			}
		}
	}

	return Diagram{
		Title:   "Module Dependencies",
		Type:    "dependency",
		Content: b.String(),
	}
}

// truncateUTF8 truncates s to at most maxRunes Unicode code points, avoiding
// corruption of multi-byte characters.
func truncateUTF8(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return s
}

// escapeMermaid replaces characters that would break Mermaid label syntax.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	return s
}

// sanitizeID converts a string into a safe Mermaid node identifier.
func sanitizeID(s string) string {
	r := strings.NewReplacer("/", "_", ".", "_", "-", "_", " ", "_")
	return r.Replace(s)
}
