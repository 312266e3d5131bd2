package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/codewiki-dev/codewiki/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *security.Report {
	return &security.Report{
		RunID: "run-1",
		Vulnerabilities: []security.Vulnerability{
			{
				ID:          "PAT-0001",
				Title:       "SQL Injection Risk",
				Description: "User input concatenated into a SQL query",
				Severity:    security.SeverityHigh,
				Category:    security.CategoryInjection,
				Location:    security.Location{File: "db.go", Function: "Query", StartLine: 10, EndLine: 12},
				Evidence:    `db.Query("SELECT * FROM users WHERE id=" + id)`,
			},
			{
				ID:       "SEC-0001",
				Title:    "Hardcoded Secret",
				Severity: security.SeverityCritical,
				Category: security.CategoryCryptographicFailures,
				Location: security.Location{File: "config.go", StartLine: 3, EndLine: 3},
			},
		},
		Traces: []security.Trace{
			{
				ID:     "trace-1",
				Source: security.Vulnerability{ID: "PAT-0001"},
				PropagationPath: []security.CallSite{
					{
						FunctionName: "handleRequest",
						Location:     security.Location{File: "db.go", StartLine: 5},
						Context:      security.Context{HasUserInput: true, TrustBoundary: security.BoundaryExternal},
					},
				},
				ImpactChain: []security.Impact{
					{Confidentiality: security.ImpactHigh, Integrity: security.ImpactHigh, Availability: security.ImpactMedium, Score: 7.0},
					{Confidentiality: security.ImpactMedium, Integrity: security.ImpactMedium, Availability: security.ImpactLow, Score: 4.9},
				},
				Confidence:  security.ConfidenceMedium,
				Mitigations: []string{"Use parameterized queries or prepared statements"},
			},
		},
		Hotspots: []security.Hotspot{
			{
				Location:           security.Location{File: "db.go"},
				Severity:           security.SeverityHigh,
				VulnerabilityCount: 1,
				RiskScore:          7.0,
				Description:        "1 finding",
			},
		},
		Stats: security.ScanStats{
			Duration:     500 * time.Millisecond,
			FilesScanned: 42,
			TraceCount:   1,
			HotspotCount: 1,
		},
	}
}

func TestWriteJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	assert.Equal(t, "run-1", parsed["run_id"])

	vulns := parsed["vulnerabilities"].([]any)
	require.Len(t, vulns, 2)
	first := vulns[0].(map[string]any)
	assert.Equal(t, "PAT-0001", first["id"])
	assert.Equal(t, "high", first["severity"])
	assert.Equal(t, "A03:2021 - Injection", first["owasp"])

	loc := first["location"].(map[string]any)
	assert.Equal(t, "db.go", loc["file"])
	assert.Equal(t, float64(10), loc["start_line"])

	summary := parsed["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["critical"])
	assert.Equal(t, float64(1), summary["high"])
	assert.Equal(t, float64(2), summary["total"])

	stats := parsed["stats"].(map[string]any)
	assert.Equal(t, float64(500), stats["duration_ms"])
	assert.Equal(t, float64(42), stats["files_scanned"])
}

func TestWriteJSONTraces(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	traces := parsed["traces"].([]any)
	require.Len(t, traces, 1)
	tr := traces[0].(map[string]any)
	assert.Equal(t, "trace-1", tr["id"])
	assert.Equal(t, "PAT-0001", tr["source"])

	path := tr["propagation_path"].([]any)
	require.Len(t, path, 1)
	step := path[0].(map[string]any)
	assert.Equal(t, "handleRequest", step["function"])
	assert.Equal(t, true, step["has_user_input"])
	assert.Equal(t, "external", step["trust_boundary"])

	chain := tr["impact_chain"].([]any)
	require.Len(t, chain, 2)
	assert.Equal(t, "high", chain[0].(map[string]any)["confidentiality"])
}

func TestWriteJSONEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, &security.Report{RunID: "empty"}))

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))

	// Empty slices serialize as [], not null.
	assert.NotNil(t, parsed["vulnerabilities"])
	assert.NotNil(t, parsed["traces"])
	assert.NotNil(t, parsed["hotspots"])
	assert.Equal(t, float64(0), parsed["summary"].(map[string]any)["total"])
}
