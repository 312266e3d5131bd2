package scanner

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/codewiki-dev/codewiki/internal/security"
)

// secretRule defines a single regex-based secret detection rule.
type secretRule struct {
	name       string
	pattern    *regexp.Regexp
	severity   security.Severity
	title      string
	matchGroup int // submatch group used for evidence masking (0 = full match)
}

// SecretScanner detects hard-coded secrets, API keys and high-entropy
// strings using regex rules and Shannon entropy analysis.
type SecretScanner struct {
	rules         []secretRule
	entropyVarPat *regexp.Regexp
	examplePat    *regexp.Regexp
	vulnCounter   int
	mu            sync.Mutex
}

// NewSecretScanner creates a SecretScanner with the standard rule set.
func NewSecretScanner() *SecretScanner {
	return &SecretScanner{
		rules: []secretRule{
			{
				name:     "aws-key",
				pattern:  regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
				severity: security.SeverityHigh,
				title:    "AWS access key detected",
			},
			{
				name:     "github-token",
				pattern:  regexp.MustCompile(`ghp_[a-zA-Z0-9]{36}`),
				severity: security.SeverityHigh,
				title:    "GitHub token detected",
			},
			{
				name:     "slack-token",
				pattern:  regexp.MustCompile(`xox[bprs]-[a-zA-Z0-9-]+`),
				severity: security.SeverityHigh,
				title:    "Slack token detected",
			},
			{
				name:     "private-key",
				pattern:  regexp.MustCompile(`-----BEGIN .* PRIVATE KEY-----`),
				severity: security.SeverityCritical,
				title:    "Private key detected",
			},
			{
				name:       "generic-api-key",
				pattern:    regexp.MustCompile(`(?i)(api[_-]?key|apikey|secret[_-]?key|password|token)\s*[:=]\s*["']([^"'\s]{20,})["']`),
				severity:   security.SeverityHigh,
				title:      "Generic API key/secret assignment detected",
				matchGroup: 2,
			},
			{
				name:     "db-connection-string",
				pattern:  regexp.MustCompile(`(?i)(mysql|postgres|postgresql|mongodb|redis)://[^\s"']+`),
				severity: security.SeverityHigh,
				title:    "Database connection string detected",
			},
		},
		entropyVarPat: regexp.MustCompile(`(?i)(key|secret|token|password|credential|apikey)\s*[:=]\s*["']([^"']+)["']`),
		examplePat:    regexp.MustCompile(`(?i)(example|placeholder|your[-_]|sample|dummy|test[-_]|changeme|replace[-_]|insert[-_]|xxx|todo)`),
	}
}

// Name returns the detector name.
func (s *SecretScanner) Name() string {
	return "secrets"
}

// Detect walks the target files and returns vulnerabilities for detected
// secrets. Unreadable and binary files are skipped.
func (s *SecretScanner) Detect(ctx context.Context, target security.ScanTarget) ([]security.Vulnerability, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("secret scanner cancelled: %w", err)
	}

	files, err := security.CollectFiles(target, nil)
	if err != nil {
		return nil, fmt.Errorf("collecting files: %w", err)
	}

	var vulns []security.Vulnerability
	for _, relPath := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("secret scanner cancelled: %w", err)
		}

		absPath := filepath.Join(target.RootDir, relPath)
		fileVulns, err := s.scanFile(absPath, relPath)
		if err != nil {
			continue
		}
		vulns = append(vulns, fileVulns...)
	}

	return vulns, nil
}

// isBinary returns true if the data appears to be binary (null bytes within
// the first 512 bytes).
func isBinary(data []byte) bool {
	limit := 512
	if len(data) < limit {
		limit = len(data)
	}
	return bytes.ContainsRune(data[:limit], 0)
}

// isExampleValue returns true if the matched string looks like a placeholder.
func (s *SecretScanner) isExampleValue(value string) bool {
	return s.examplePat.MatchString(value)
}

func (s *SecretScanner) scanFile(absPath, relPath string) ([]security.Vulnerability, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	if isBinary(data) {
		return nil, nil
	}

	var vulns []security.Vulnerability
	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0

	for sc.Scan() {
		lineNum++
		line := sc.Text()

		for _, rule := range s.rules {
			matches := rule.pattern.FindStringSubmatch(line)
			if matches == nil {
				continue
			}

			matchedValue := matches[0]
			if rule.matchGroup > 0 && rule.matchGroup < len(matches) {
				matchedValue = matches[rule.matchGroup]
			}

			if s.isExampleValue(matchedValue) {
				continue
			}

			vulns = append(vulns, s.newVulnerability(
				rule.title, rule.severity, relPath, lineNum,
				maskSecret(matchedValue, rule.name),
			))
		}

		// Entropy check for sensitive variable assignments not already
		// caught by a regex rule.
		if entropyMatches := s.entropyVarPat.FindStringSubmatch(line); entropyMatches != nil {
			value := entropyMatches[2]
			if len(value) >= 20 && shannonEntropy(value) > 4.0 && !s.isExampleValue(value) {
				if !alreadyDetected(vulns, relPath, lineNum) {
					vulns = append(vulns, s.newVulnerability(
						"High entropy string detected in sensitive variable",
						security.SeverityMedium,
						relPath, lineNum,
						fmt.Sprintf("High entropy value in variable (entropy: %.2f)", shannonEntropy(value)),
					))
				}
			}
		}
	}

	return vulns, sc.Err()
}

// alreadyDetected returns true if a vulnerability exists for the file and line.
func alreadyDetected(vulns []security.Vulnerability, file string, line int) bool {
	for _, v := range vulns {
		if v.Location.File == file && v.Location.StartLine == line {
			return true
		}
	}
	return false
}

func (s *SecretScanner) newVulnerability(title string, severity security.Severity, file string, line int, evidence string) security.Vulnerability {
	s.mu.Lock()
	s.vulnCounter++
	id := fmt.Sprintf("SEC-%04d", s.vulnCounter)
	s.mu.Unlock()

	return security.Vulnerability{
		ID:          id,
		Title:       title,
		Description: fmt.Sprintf("%s found at %s:%d", title, file, line),
		Severity:    severity,
		Category:    security.CategoryCryptographicFailures,
		Location: security.Location{
			File:      file,
			StartLine: line,
			EndLine:   line,
		},
		Evidence: evidence,
	}
}

// maskSecret masks a secret value for evidence, keeping at most the first
// four characters.
func maskSecret(value, ruleName string) string {
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return fmt.Sprintf("Matched %s pattern: %s%s", ruleName, value[:4], strings.Repeat("*", len(value)-4))
}

// shannonEntropy calculates the Shannon entropy of a string.
func shannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	freq := make(map[rune]float64)
	for _, c := range s {
		freq[c]++
	}

	length := float64(len([]rune(s)))
	entropy := 0.0
	for _, count := range freq {
		p := count / length
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}
