package output

import (
	"encoding/json"
	"io"

	"github.com/codewiki-dev/codewiki/internal/security"
)

// SARIF v2.1.0 structures.

type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string          `json:"id"`
	ShortDescription sarifMessageStr `json:"shortDescription"`
}

type sarifMessageStr struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessageStr `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

const sarifSchemaURL = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"

// WriteSARIF renders the report as SARIF v2.1.0 JSON to w. Rules are keyed
// by OWASP category so downstream viewers group related findings together.
func WriteSARIF(w io.Writer, report *security.Report) error {
	doc := sarifDocument{
		Schema:  sarifSchemaURL,
		Version: "2.1.0",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "codewiki",
						Version: "0.1.0",
						Rules:   buildRules(report.Vulnerabilities),
					},
				},
				Results: buildResults(report.Vulnerabilities),
			},
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// severityToLevel maps security severity to SARIF level.
func severityToLevel(s security.Severity) string {
	switch s {
	case security.SeverityCritical, security.SeverityHigh:
		return "error"
	case security.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// buildRules creates one SARIF rule per OWASP category present in the
// vulnerability list.
func buildRules(vulns []security.Vulnerability) []sarifRule {
	seen := make(map[security.Category]bool)
	rules := []sarifRule{}

	for _, v := range vulns {
		if v.Category == "" || seen[v.Category] {
			continue
		}
		seen[v.Category] = true
		rules = append(rules, sarifRule{
			ID:               string(v.Category),
			ShortDescription: sarifMessageStr{Text: v.Category.Label()},
		})
	}

	return rules
}

// buildResults creates SARIF results from vulnerabilities.
func buildResults(vulns []security.Vulnerability) []sarifResult {
	results := make([]sarifResult, 0, len(vulns))

	for _, v := range vulns {
		msg := v.Title
		if v.Description != "" {
			msg = v.Title + ": " + v.Description
		}
		results = append(results, sarifResult{
			RuleID:  string(v.Category),
			Level:   severityToLevel(v.Severity),
			Message: sarifMessageStr{Text: msg},
			Locations: []sarifLocation{
				{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{URI: v.Location.File},
						Region: sarifRegion{
							StartLine: v.Location.StartLine,
							EndLine:   v.Location.EndLine,
						},
					},
				},
			},
		})
	}

	return results
}
