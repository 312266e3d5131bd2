// Package security reconstructs vulnerability propagation traces and
// aggregates per-file security hotspots from an externally supplied
// vulnerability list. It does not decide whether code is vulnerable; pattern
// detection lives behind the Detector interface.
package security

import (
	"context"
	"fmt"
	"time"
)

// Severity represents the severity level of a vulnerability.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Category represents an OWASP Top 10 (2021) category.
type Category string

const (
	CategoryBrokenAccessControl     Category = "broken-access-control"
	CategoryCryptographicFailures   Category = "cryptographic-failures"
	CategoryInjection               Category = "injection"
	CategoryInsecureDesign          Category = "insecure-design"
	CategoryMisconfiguration        Category = "security-misconfiguration"
	CategoryVulnerableComponents    Category = "vulnerable-components"
	CategoryAuthenticationFailures  Category = "authentication-failures"
	CategoryIntegrityFailures       Category = "integrity-failures"
	CategoryLoggingFailures         Category = "logging-failures"
	CategorySSRF                    Category = "ssrf"
)

// Label returns the official OWASP designation for the category.
func (c Category) Label() string {
	switch c {
	case CategoryBrokenAccessControl:
		return "A01:2021 - Broken Access Control"
	case CategoryCryptographicFailures:
		return "A02:2021 - Cryptographic Failures"
	case CategoryInjection:
		return "A03:2021 - Injection"
	case CategoryInsecureDesign:
		return "A04:2021 - Insecure Design"
	case CategoryMisconfiguration:
		return "A05:2021 - Security Misconfiguration"
	case CategoryVulnerableComponents:
		return "A06:2021 - Vulnerable and Outdated Components"
	case CategoryAuthenticationFailures:
		return "A07:2021 - Identification and Authentication Failures"
	case CategoryIntegrityFailures:
		return "A08:2021 - Software and Data Integrity Failures"
	case CategoryLoggingFailures:
		return "A09:2021 - Security Logging and Monitoring Failures"
	case CategorySSRF:
		return "A10:2021 - Server-Side Request Forgery"
	default:
		return string(c)
	}
}

// Confidence represents the confidence level of a trace or finding.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// TrustBoundary classifies a call site with respect to data origin trust.
type TrustBoundary int

const (
	BoundaryExternal TrustBoundary = iota
	BoundaryInternal
	BoundaryTrusted
)

// String returns the boundary name.
func (b TrustBoundary) String() string {
	switch b {
	case BoundaryExternal:
		return "external"
	case BoundaryInternal:
		return "internal"
	case BoundaryTrusted:
		return "trusted"
	default:
		return "unknown"
	}
}

// ImpactLevel grades confidentiality/integrity/availability impact.
type ImpactLevel int

const (
	ImpactNone ImpactLevel = iota
	ImpactLow
	ImpactMedium
	ImpactHigh
	ImpactCritical
)

// String returns the impact level name.
func (l ImpactLevel) String() string {
	switch l {
	case ImpactLow:
		return "low"
	case ImpactMedium:
		return "medium"
	case ImpactHigh:
		return "high"
	case ImpactCritical:
		return "critical"
	default:
		return "none"
	}
}

// Location identifies a specific position in source code.
type Location struct {
	File      string
	Function  string
	StartLine int
	EndLine   int
	Column    int
}

// Vulnerability is a single detected weakness, supplied by a Detector.
type Vulnerability struct {
	ID          string
	Title       string
	Description string
	Severity    Severity
	Category    Category
	Location    Location
	Evidence    string
}

// Context captures the security-relevant properties of a call site.
type Context struct {
	HasUserInput  bool
	RequiresAuth  bool
	IsSanitized   bool
	TrustBoundary TrustBoundary
}

// CallSite is one step of a vulnerability propagation path.
type CallSite struct {
	FunctionName string
	Location     Location
	Context      Context
}

// Impact estimates the damage at one point of a propagation chain.
type Impact struct {
	Confidentiality ImpactLevel
	Integrity       ImpactLevel
	Availability    ImpactLevel
	Score           float64
}

// Trace models how a vulnerability's effect propagates through call sites.
// The impact chain always has one more entry than the propagation path has
// steps: the first impact belongs to the vulnerability itself.
type Trace struct {
	ID              string
	Source          Vulnerability
	PropagationPath []CallSite
	ImpactChain     []Impact
	Confidence      Confidence
	Mitigations     []string
}

// Hotspot is a file accumulating qualifying vulnerabilities, ranked by
// aggregate risk.
type Hotspot struct {
	Location           Location
	Severity           Severity
	VulnerabilityCount int
	RiskScore          float64
	Description        string
}

// ScanTarget describes what should be scanned.
type ScanTarget struct {
	RootDir         string
	Files           []string
	ExcludePatterns []string
}

// ScanError records an error encountered during detection.
type ScanError struct {
	Detector string
	Err      error
	Fatal    bool
}

// Error implements the error interface for ScanError.
func (e ScanError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("fatal error in %s: %s", e.Detector, e.Err)
	}
	return fmt.Sprintf("error in %s: %s", e.Detector, e.Err)
}

// ScanStats holds timing and count metrics for a completed analysis run.
type ScanStats struct {
	Duration           time.Duration
	FilesScanned       int
	VulnerabilityCount int
	TraceCount         int
	HotspotCount       int
}

// Report is the top-level result of the security analysis run.
type Report struct {
	RunID           string
	Vulnerabilities []Vulnerability
	Traces          []Trace
	Hotspots        []Hotspot
	Stats           ScanStats
	Errors          []ScanError
}

// Detector is the interface for vulnerability detection collaborators. The
// trace and hotspot engines consume their output and never decide
// vulnerability themselves.
type Detector interface {
	Name() string
	Detect(ctx context.Context, target ScanTarget) ([]Vulnerability, error)
}

// SourceReader reads raw file text for heuristic scans. Read failures must
// degrade gracefully in callers, never propagate as hard errors.
type SourceReader interface {
	ReadFile(path string) ([]byte, error)
}

// CategoryClassifier maps a file to the OWASP categories its content
// suggests. Implementations are heuristic and may both over- and
// under-report.
type CategoryClassifier interface {
	Categories(path string) []Category
}
