package security

import (
	"sort"
	"strings"
)

// hotspotDescription is the fixed description attached to every hotspot.
const hotspotDescription = "Security hotspot with multiple vulnerabilities"

// Aggregator groups vulnerabilities into per-file hotspots with accumulated
// risk scores. It is stateless; each Aggregate call is independent.
type Aggregator struct{}

// NewAggregator creates an Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate groups qualifying vulnerabilities (severity >= minSeverity) by
// file and returns hotspots sorted by descending risk score. Files with no
// qualifying vulnerabilities never produce a hotspot. Ties keep insertion
// order.
func (a *Aggregator) Aggregate(vulns []Vulnerability, minSeverity Severity) []Hotspot {
	byFile := make(map[string]*Hotspot)
	var order []string

	for _, v := range vulns {
		if !SeverityAtLeast(v.Severity, minSeverity) {
			continue
		}

		key := v.Location.File
		h, ok := byFile[key]
		if !ok {
			h = &Hotspot{
				Location:    v.Location, // first-seen location for the file
				Severity:    SeverityInfo,
				Description: hotspotDescription,
			}
			byFile[key] = h
			order = append(order, key)
		}

		h.VulnerabilityCount++
		h.RiskScore += SeverityWeight(v.Severity)
		h.Severity = MaxSeverity(h.Severity, v.Severity)
	}

	hotspots := make([]Hotspot, 0, len(order))
	for _, key := range order {
		hotspots = append(hotspots, *byFile[key])
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].RiskScore > hotspots[j].RiskScore
	})

	return hotspots
}

// keywordGroup associates content keywords with the OWASP category they
// suggest.
type keywordGroup struct {
	category Category
	keywords []string
}

// classifierGroups defines the keyword heuristics for per-file OWASP
// category detection. The scan is heuristic and may both over- and
// under-report.
var classifierGroups = []keywordGroup{
	{CategoryBrokenAccessControl, []string{"admin", "access", "auth", "authorize"}},
	{CategoryCryptographicFailures, []string{"encrypt", "decrypt", "password", "secret"}},
	{CategoryInjection, []string{"select", "insert", "update", "delete", "exec", "system"}},
	{CategoryInsecureDesign, []string{"random", "token", "session"}},
	{CategoryMisconfiguration, []string{"debug", "config", "environment"}},
}

// KeywordClassifier detects OWASP categories by scanning file content for
// category-indicative keywords. Read failures yield no categories.
type KeywordClassifier struct {
	reader SourceReader
}

// NewKeywordClassifier creates a KeywordClassifier backed by the given reader.
func NewKeywordClassifier(reader SourceReader) *KeywordClassifier {
	return &KeywordClassifier{reader: reader}
}

// Categories returns the OWASP categories the file's content suggests, in
// the fixed A01..A05 group order.
func (c *KeywordClassifier) Categories(path string) []Category {
	data, err := c.reader.ReadFile(path)
	if err != nil {
		return nil
	}
	content := strings.ToLower(string(data))

	var out []Category
	for _, group := range classifierGroups {
		for _, kw := range group.keywords {
			if strings.Contains(content, kw) {
				out = append(out, group.category)
				break
			}
		}
	}
	return out
}

// CategoryRecommendations returns hardening guidance for an OWASP category,
// used on per-file recommendation sections.
func CategoryRecommendations(c Category) []string {
	switch c {
	case CategoryBrokenAccessControl:
		return []string{
			"Implement proper authorization checks before sensitive operations",
			"Use role-based access control (RBAC)",
			"Apply the principle of least privilege",
			"Implement proper session management",
		}
	case CategoryCryptographicFailures:
		return []string{
			"Use strong encryption algorithms and key sizes",
			"Store encryption keys securely",
			"Implement proper key management and rotation",
			"Use secure random number generators",
		}
	case CategoryInjection:
		return []string{
			"Use parameterized queries or prepared statements",
			"Validate and sanitize all user inputs",
			"Use an ORM with built-in injection protection",
			"Implement content security policies",
		}
	case CategoryInsecureDesign:
		return []string{
			"Follow secure design principles from the start",
			"Implement threat modeling",
			"Use secure defaults and fail-safe behavior",
			"Regular security reviews of design decisions",
		}
	case CategoryMisconfiguration:
		return []string{
			"Secure default configurations",
			"Regular configuration reviews",
			"Environment-specific configurations",
			"Automated configuration validation",
		}
	default:
		return []string{"Review and apply security best practices"}
	}
}
