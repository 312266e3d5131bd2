// Package output serializes security reports for machine consumption. The
// human-readable rendering lives in the wiki assembler; this package covers
// the CI-facing formats.
package output

import (
	"encoding/json"
	"io"

	"github.com/codewiki-dev/codewiki/internal/security"
)

// jsonReport is the top-level JSON output structure.
type jsonReport struct {
	RunID           string              `json:"run_id"`
	Vulnerabilities []jsonVulnerability `json:"vulnerabilities"`
	Traces          []jsonTrace         `json:"traces"`
	Hotspots        []jsonHotspot       `json:"hotspots"`
	Summary         jsonSummary         `json:"summary"`
	Stats           jsonStats           `json:"stats"`
}

// jsonVulnerability mirrors security.Vulnerability with JSON-friendly
// serialization.
type jsonVulnerability struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Severity    string       `json:"severity"`
	Category    string       `json:"category"`
	OWASP       string       `json:"owasp"`
	Location    jsonLocation `json:"location"`
	Evidence    string       `json:"evidence,omitempty"`
}

// jsonLocation mirrors security.Location with JSON-friendly serialization.
type jsonLocation struct {
	File      string `json:"file"`
	Function  string `json:"function,omitempty"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

type jsonCallSite struct {
	Function      string       `json:"function"`
	Location      jsonLocation `json:"location"`
	HasUserInput  bool         `json:"has_user_input"`
	RequiresAuth  bool         `json:"requires_auth"`
	IsSanitized   bool         `json:"is_sanitized"`
	TrustBoundary string       `json:"trust_boundary"`
}

type jsonImpact struct {
	Confidentiality string  `json:"confidentiality"`
	Integrity       string  `json:"integrity"`
	Availability    string  `json:"availability"`
	Score           float64 `json:"score"`
}

type jsonTrace struct {
	ID              string         `json:"id"`
	Source          string         `json:"source"`
	PropagationPath []jsonCallSite `json:"propagation_path"`
	ImpactChain     []jsonImpact   `json:"impact_chain"`
	Confidence      string         `json:"confidence"`
	Mitigations     []string       `json:"mitigations"`
}

type jsonHotspot struct {
	File               string  `json:"file"`
	Severity           string  `json:"severity"`
	VulnerabilityCount int     `json:"vulnerability_count"`
	RiskScore          float64 `json:"risk_score"`
	Description        string  `json:"description"`
}

// jsonSummary holds aggregate counts by severity.
type jsonSummary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
	Total    int `json:"total"`
}

// jsonStats holds scan timing and count metrics.
type jsonStats struct {
	DurationMS   int64 `json:"duration_ms"`
	FilesScanned int   `json:"files_scanned"`
	Traces       int   `json:"traces"`
	Hotspots     int   `json:"hotspots"`
}

// WriteJSON renders the report as indented JSON to w.
func WriteJSON(w io.Writer, report *security.Report) error {
	jr := jsonReport{
		RunID:           report.RunID,
		Vulnerabilities: convertVulnerabilities(report.Vulnerabilities),
		Traces:          convertTraces(report.Traces),
		Hotspots:        convertHotspots(report.Hotspots),
		Summary:         summarize(report.Vulnerabilities),
		Stats: jsonStats{
			DurationMS:   report.Stats.Duration.Milliseconds(),
			FilesScanned: report.Stats.FilesScanned,
			Traces:       report.Stats.TraceCount,
			Hotspots:     report.Stats.HotspotCount,
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jr)
}

func convertVulnerabilities(vulns []security.Vulnerability) []jsonVulnerability {
	result := make([]jsonVulnerability, len(vulns))
	for i, v := range vulns {
		result[i] = jsonVulnerability{
			ID:          v.ID,
			Title:       v.Title,
			Description: v.Description,
			Severity:    string(v.Severity),
			Category:    string(v.Category),
			OWASP:       v.Category.Label(),
			Location:    convertLocation(v.Location),
			Evidence:    v.Evidence,
		}
	}
	return result
}

func convertLocation(l security.Location) jsonLocation {
	return jsonLocation{
		File:      l.File,
		Function:  l.Function,
		StartLine: l.StartLine,
		EndLine:   l.EndLine,
	}
}

func convertTraces(traces []security.Trace) []jsonTrace {
	result := make([]jsonTrace, len(traces))
	for i, t := range traces {
		path := make([]jsonCallSite, len(t.PropagationPath))
		for j, s := range t.PropagationPath {
			path[j] = jsonCallSite{
				Function:      s.FunctionName,
				Location:      convertLocation(s.Location),
				HasUserInput:  s.Context.HasUserInput,
				RequiresAuth:  s.Context.RequiresAuth,
				IsSanitized:   s.Context.IsSanitized,
				TrustBoundary: s.Context.TrustBoundary.String(),
			}
		}
		chain := make([]jsonImpact, len(t.ImpactChain))
		for j, im := range t.ImpactChain {
			chain[j] = jsonImpact{
				Confidentiality: im.Confidentiality.String(),
				Integrity:       im.Integrity.String(),
				Availability:    im.Availability.String(),
				Score:           im.Score,
			}
		}
		mitigations := t.Mitigations
		if mitigations == nil {
			mitigations = []string{}
		}
		result[i] = jsonTrace{
			ID:              t.ID,
			Source:          t.Source.ID,
			PropagationPath: path,
			ImpactChain:     chain,
			Confidence:      string(t.Confidence),
			Mitigations:     mitigations,
		}
	}
	return result
}

func convertHotspots(hotspots []security.Hotspot) []jsonHotspot {
	result := make([]jsonHotspot, len(hotspots))
	for i, h := range hotspots {
		result[i] = jsonHotspot{
			File:               h.Location.File,
			Severity:           string(h.Severity),
			VulnerabilityCount: h.VulnerabilityCount,
			RiskScore:          h.RiskScore,
			Description:        h.Description,
		}
	}
	return result
}

func summarize(vulns []security.Vulnerability) jsonSummary {
	var s jsonSummary
	for _, v := range vulns {
		switch v.Severity {
		case security.SeverityCritical:
			s.Critical++
		case security.SeverityHigh:
			s.High++
		case security.SeverityMedium:
			s.Medium++
		case security.SeverityLow:
			s.Low++
		default:
			s.Info++
		}
	}
	s.Total = len(vulns)
	return s
}
