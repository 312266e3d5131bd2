package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/codewiki-dev/codewiki/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSARIFStructure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, sampleReport()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2.1.0", doc["version"])
	assert.Contains(t, doc["$schema"], "sarif-schema-2.1.0")

	runs := doc["runs"].([]any)
	require.Len(t, runs, 1)
	run := runs[0].(map[string]any)

	driver := run["tool"].(map[string]any)["driver"].(map[string]any)
	assert.Equal(t, "codewiki", driver["name"])

	rules := driver["rules"].([]any)
	require.Len(t, rules, 2)
	assert.Equal(t, "injection", rules[0].(map[string]any)["id"])

	results := run["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.Equal(t, "injection", first["ruleId"])
	assert.Equal(t, "error", first["level"])
	assert.Contains(t, first["message"].(map[string]any)["text"], "SQL Injection Risk")

	locs := first["locations"].([]any)
	require.Len(t, locs, 1)
	phys := locs[0].(map[string]any)["physicalLocation"].(map[string]any)
	assert.Equal(t, "db.go", phys["artifactLocation"].(map[string]any)["uri"])
	assert.Equal(t, float64(10), phys["region"].(map[string]any)["startLine"])
}

func TestSeverityToLevel(t *testing.T) {
	assert.Equal(t, "error", severityToLevel(security.SeverityCritical))
	assert.Equal(t, "error", severityToLevel(security.SeverityHigh))
	assert.Equal(t, "warning", severityToLevel(security.SeverityMedium))
	assert.Equal(t, "note", severityToLevel(security.SeverityLow))
	assert.Equal(t, "note", severityToLevel(security.SeverityInfo))
}

func TestBuildRulesDedupes(t *testing.T) {
	vulns := []security.Vulnerability{
		{Category: security.CategoryInjection},
		{Category: security.CategoryInjection},
		{Category: security.CategorySSRF},
	}
	rules := buildRules(vulns)
	require.Len(t, rules, 2)
	assert.Equal(t, "A10:2021 - Server-Side Request Forgery", rules[1].ShortDescription.Text)
}

func TestWriteSARIFEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, &security.Report{}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	run := doc["runs"].([]any)[0].(map[string]any)
	assert.Empty(t, run["results"])
}
