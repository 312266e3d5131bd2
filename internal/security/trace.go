package security

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// categoryMitigations holds the mitigation guidance keyed by OWASP category.
// Categories without an entry fall back to genericMitigations.
var categoryMitigations = map[Category][]string{
	CategoryInjection: {
		"Use parameterized queries or stored procedures",
		"Validate and sanitize all user inputs",
		"Use an ORM or query builder with built-in protection",
	},
	CategoryBrokenAccessControl: {
		"Implement proper authorization checks",
		"Use role-based access control (RBAC)",
		"Follow principle of least privilege",
	},
	CategoryCryptographicFailures: {
		"Use strong encryption algorithms (AES-256)",
		"Store encryption keys securely",
		"Implement key rotation policies",
	},
}

// genericMitigations applies to categories without specific guidance.
var genericMitigations = []string{
	"Review and fix security weakness",
	"Follow secure coding best practices",
}

// highSeverityMitigations are appended for High and Critical vulnerabilities
// regardless of category.
var highSeverityMitigations = []string{
	"Conduct thorough security testing",
	"Implement monitoring and alerting",
}

// impactChainLength is the fixed impact-chain length: the vulnerability's own
// impact plus three propagation estimates. The chain is synthetic and is not
// derived from the propagation path length.
const impactChainLength = 4

// impactDecayRate is the per-step geometric decay applied to the impact score.
const impactDecayRate = 0.7

// TraceBuilder reconstructs propagation traces for qualifying
// vulnerabilities. It is stateless and safe for concurrent use.
type TraceBuilder struct{}

// NewTraceBuilder creates a TraceBuilder.
func NewTraceBuilder() *TraceBuilder {
	return &TraceBuilder{}
}

// Build constructs a trace for the vulnerability. Vulnerabilities below
// Medium severity are not traced; Build returns false for them, which is not
// an error.
func (b *TraceBuilder) Build(vuln Vulnerability) (Trace, bool) {
	if !SeverityAtLeast(vuln.Severity, SeverityMedium) {
		return Trace{}, false
	}

	return Trace{
		ID:              fmt.Sprintf("trace-%s-%s", vuln.ID, uuid.NewString()[:8]),
		Source:          vuln,
		PropagationPath: b.propagationPath(vuln.Location),
		ImpactChain:     b.impactChain(vuln.Severity),
		Confidence:      ConfidenceMedium,
		Mitigations:     b.mitigations(vuln),
	}, true
}

// propagationPath models the call sites a vulnerability's effect passes
// through. The vulnerable function itself is always the first site; a
// handler-named function gets one synthetic downstream site standing in for
// real call-graph tracing.
func (b *TraceBuilder) propagationPath(loc Location) []CallSite {
	if loc.Function == "" {
		return nil
	}

	lower := strings.ToLower(loc.Function)
	path := []CallSite{{
		FunctionName: loc.Function,
		Location:     loc,
		Context: Context{
			HasUserInput: true,
			RequiresAuth: strings.Contains(lower, "admin") || strings.Contains(lower, "auth"),
			IsSanitized:  strings.Contains(lower, "sanitize") || strings.Contains(lower, "escape"),
			// Entry points are treated as external until proven otherwise.
			TrustBoundary: BoundaryExternal,
		},
	}}

	if strings.Contains(lower, "handler") {
		path = append(path, CallSite{
			FunctionName: "process_data",
			Location: Location{
				File:      loc.File,
				Function:  "process_data",
				StartLine: loc.StartLine + 10,
				EndLine:   loc.EndLine + 15,
			},
			Context: Context{
				TrustBoundary: BoundaryInternal,
			},
		})
	}

	return path
}

// impactChain produces the fixed-length impact estimate sequence. The first
// entry scores the vulnerability itself; each further entry decays
// geometrically.
func (b *TraceBuilder) impactChain(sev Severity) []Impact {
	initial := SeverityWeight(sev)

	chain := make([]Impact, 0, impactChainLength)
	chain = append(chain, Impact{
		Confidentiality: initialConfidentiality(sev),
		Integrity:       ImpactMedium,
		Availability:    ImpactLow,
		Score:           initial,
	})

	score := initial
	for i := 1; i < impactChainLength; i++ {
		score *= impactDecayRate
		chain = append(chain, Impact{
			Confidentiality: propagatedConfidentiality(sev),
			Integrity:       ImpactLow,
			Availability:    ImpactLow,
			Score:           score,
		})
	}

	return chain
}

// initialConfidentiality grades the direct confidentiality impact.
func initialConfidentiality(sev Severity) ImpactLevel {
	switch sev {
	case SeverityCritical:
		return ImpactCritical
	case SeverityHigh:
		return ImpactHigh
	case SeverityMedium:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// propagatedConfidentiality grades confidentiality one step removed from the
// vulnerable site.
func propagatedConfidentiality(sev Severity) ImpactLevel {
	switch sev {
	case SeverityCritical:
		return ImpactHigh
	case SeverityHigh:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

// mitigations assembles recommendation text for the vulnerability: the
// category table entry (or generic fallback), plus extra entries for High
// and Critical severities.
func (b *TraceBuilder) mitigations(vuln Vulnerability) []string {
	var out []string

	if specific, ok := categoryMitigations[vuln.Category]; ok {
		out = append(out, specific...)
	} else {
		out = append(out, genericMitigations...)
	}

	if SeverityAtLeast(vuln.Severity, SeverityHigh) {
		out = append(out, highSeverityMitigations...)
	}

	return out
}
