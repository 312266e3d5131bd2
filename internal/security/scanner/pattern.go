// Package scanner provides the built-in vulnerability detectors. Each
// detector implements security.Detector and produces plain vulnerability
// records; trace and hotspot analysis happens downstream in the security
// engine.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/codewiki-dev/codewiki/internal/parser"
	"github.com/codewiki-dev/codewiki/internal/security"
)

// pattern defines a single regex detection rule for a specific language.
type pattern struct {
	name       string
	language   string
	regex      *regexp.Regexp
	severity   security.Severity
	category   security.Category
	title      string
	importOnly bool
}

// PatternScanner detects common weaknesses in source code using tree-sitter
// parsing combined with regex matching on function bodies and imports.
type PatternScanner struct {
	parser      *parser.Parser
	patterns    []pattern
	vulnCounter int
	mu          sync.Mutex
}

// NewPatternScanner creates a PatternScanner with the standard rule set.
func NewPatternScanner() *PatternScanner {
	return &PatternScanner{
		parser:   parser.NewParser(),
		patterns: defaultPatterns(),
	}
}

// Name returns the detector name.
func (s *PatternScanner) Name() string {
	return "pattern"
}

// patternExtensions maps supported file extensions to pattern languages.
var patternExtensions = map[string]string{
	".go":  "go",
	".py":  "python",
	".js":  "javascript",
	".ts":  "typescript",
	".tsx": "typescript",
	".jsx": "javascript",
	".rs":  "rust",
}

// Detect walks the target files, parses supported sources and applies the
// rule set per function body. Unparseable files are skipped silently.
func (s *PatternScanner) Detect(ctx context.Context, target security.ScanTarget) ([]security.Vulnerability, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pattern scanner cancelled: %w", err)
	}

	exts := make([]string, 0, len(patternExtensions))
	for ext := range patternExtensions {
		exts = append(exts, ext)
	}
	files, err := security.CollectFiles(target, exts)
	if err != nil {
		return nil, fmt.Errorf("collecting files: %w", err)
	}

	var vulns []security.Vulnerability
	for _, relPath := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pattern scanner cancelled: %w", err)
		}
		absPath := filepath.Join(target.RootDir, relPath)
		vulns = append(vulns, s.scanFile(absPath, relPath)...)
	}

	return vulns, nil
}

// scanFile parses one source file and applies the rules to its function
// bodies and imports.
func (s *PatternScanner) scanFile(absPath, relPath string) []security.Vulnerability {
	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil
	}

	lang, ok := patternExtensions[filepath.Ext(relPath)]
	if !ok {
		return nil
	}

	tree, err := s.parser.Parse(relPath, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	lines := strings.Split(string(source), "\n")

	var vulns []security.Vulnerability
	vulns = append(vulns, s.checkImports(tree, lines, relPath, lang)...)

	for _, fn := range tree.Functions() {
		startIdx := fn.StartLine - 1
		endIdx := fn.EndLine
		if startIdx < 0 {
			startIdx = 0
		}
		if endIdx > len(lines) {
			endIdx = len(lines)
		}
		body := strings.Join(lines[startIdx:endIdx], "\n")

		for _, pat := range s.patterns {
			if pat.language != lang || pat.importOnly {
				continue
			}
			if pat.regex.MatchString(body) {
				line := matchLine(lines, startIdx, endIdx, pat.regex)
				vulns = append(vulns, s.newVulnerability(pat, relPath, line, fn.Name))
			}
		}
	}

	return vulns
}

// checkImports applies import-only rules such as weak crypto imports.
func (s *PatternScanner) checkImports(tree *parser.Tree, lines []string, relPath, lang string) []security.Vulnerability {
	var vulns []security.Vulnerability
	for _, imp := range tree.Imports() {
		for _, pat := range s.patterns {
			if pat.language != lang || !pat.importOnly {
				continue
			}
			if pat.regex.MatchString(imp) {
				lineNum := 1
				for i, line := range lines {
					if strings.Contains(line, imp) {
						lineNum = i + 1
						break
					}
				}
				vulns = append(vulns, s.newVulnerability(pat, relPath, lineNum, ""))
			}
		}
	}
	return vulns
}

// matchLine locates the first line within a range matching the pattern.
func matchLine(lines []string, startIdx, endIdx int, regex *regexp.Regexp) int {
	for i := startIdx; i < endIdx && i < len(lines); i++ {
		if regex.MatchString(lines[i]) {
			return i + 1
		}
	}
	return startIdx + 1
}

// newVulnerability creates a record from a matched rule.
func (s *PatternScanner) newVulnerability(pat pattern, file string, line int, funcName string) security.Vulnerability {
	s.mu.Lock()
	s.vulnCounter++
	id := fmt.Sprintf("PAT-%04d", s.vulnCounter)
	s.mu.Unlock()

	return security.Vulnerability{
		ID:          id,
		Title:       pat.title,
		Description: fmt.Sprintf("%s found at %s:%d", pat.title, file, line),
		Severity:    pat.severity,
		Category:    pat.category,
		Location: security.Location{
			File:      file,
			Function:  funcName,
			StartLine: line,
			EndLine:   line,
		},
	}
}

// defaultPatterns returns the standard detection rule set.
func defaultPatterns() []pattern {
	return []pattern{
		{
			name:     "go-sql-injection",
			language: "go",
			regex:    regexp.MustCompile(`db\.(Query|Exec|QueryRow)\s*\([^)]*\+`),
			severity: security.SeverityHigh,
			category: security.CategoryInjection,
			title:    "Potential SQL injection via string concatenation",
		},
		{
			name:     "go-command-injection",
			language: "go",
			regex:    regexp.MustCompile(`exec\.Command\s*\(\s*"sh"\s*,\s*"-c"\s*,`),
			severity: security.SeverityHigh,
			category: security.CategoryInjection,
			title:    "Potential command injection via exec.Command with shell",
		},
		{
			name:       "go-weak-crypto",
			language:   "go",
			regex:      regexp.MustCompile(`crypto/(md5|sha1|des|rc4)`),
			severity:   security.SeverityMedium,
			category:   security.CategoryCryptographicFailures,
			title:      "Use of weak cryptographic algorithm",
			importOnly: true,
		},
		{
			name:     "go-path-traversal",
			language: "go",
			regex:    regexp.MustCompile(`os\.(Open|ReadFile)\s*\(\s*[a-z]`),
			severity: security.SeverityMedium,
			category: security.CategoryInsecureDesign,
			title:    "Potential path traversal via user-controlled file path",
		},
		{
			name:     "python-sql-injection",
			language: "python",
			regex:    regexp.MustCompile(`\.execute\s*\([^)]*\+`),
			severity: security.SeverityHigh,
			category: security.CategoryInjection,
			title:    "Potential SQL injection via string concatenation",
		},
		{
			name:     "python-command-injection",
			language: "python",
			regex:    regexp.MustCompile(`(os\.system\s*\(\s*[a-z]|subprocess\.\w+\s*\([^)]*shell\s*=\s*True)`),
			severity: security.SeverityHigh,
			category: security.CategoryInjection,
			title:    "Potential command injection via shell execution",
		},
		{
			name:     "js-xss",
			language: "javascript",
			regex:    regexp.MustCompile(`(\.innerHTML\s*=\s*[a-z]|document\.write\s*\(\s*[a-z])`),
			severity: security.SeverityHigh,
			category: security.CategoryInjection,
			title:    "Potential XSS via unsafe DOM manipulation",
		},
		{
			name:     "ts-xss",
			language: "typescript",
			regex:    regexp.MustCompile(`(\.innerHTML\s*=\s*[a-z]|document\.write\s*\(\s*[a-z])`),
			severity: security.SeverityHigh,
			category: security.CategoryInjection,
			title:    "Potential XSS via unsafe DOM manipulation",
		},
		{
			name:     "js-sql-injection",
			language: "javascript",
			regex:    regexp.MustCompile(`\.query\s*\([^)]*\+`),
			severity: security.SeverityHigh,
			category: security.CategoryInjection,
			title:    "Potential SQL injection via string concatenation",
		},
		{
			name:     "ts-sql-injection",
			language: "typescript",
			regex:    regexp.MustCompile(`\.query\s*\([^)]*\+`),
			severity: security.SeverityHigh,
			category: security.CategoryInjection,
			title:    "Potential SQL injection via string concatenation",
		},
		{
			name:     "rust-unwrap-on-input",
			language: "rust",
			regex:    regexp.MustCompile(`env::var\s*\([^)]*\)\s*\.unwrap\s*\(`),
			severity: security.SeverityLow,
			category: security.CategoryMisconfiguration,
			title:    "Environment lookup unwrapped without fallback",
		},
		{
			name:     "rust-command-injection",
			language: "rust",
			regex:    regexp.MustCompile(`Command::new\s*\(\s*"(sh|bash)"\s*\)`),
			severity: security.SeverityHigh,
			category: security.CategoryInjection,
			title:    "Potential command injection via shell invocation",
		},
	}
}
