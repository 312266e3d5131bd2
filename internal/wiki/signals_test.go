package wiki

import (
	"testing"

	"github.com/codewiki-dev/codewiki/internal/cfg"
	"github.com/codewiki-dev/codewiki/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexCallStrategyAttributesCallers(t *testing.T) {
	content := []byte(`func outer() {
	inner()
	fmt.Println("hi")
}

func inner() {
}`)
	funcs := []parser.Symbol{fn("outer", 1, 4), fn("inner", 6, 7)}

	pairs := RegexCallStrategy{}.ExtractCalls(content, funcs)

	assert.Contains(t, pairs, CallPair{Caller: "outer", Callee: "inner"})
	assert.Contains(t, pairs, CallPair{Caller: "outer", Callee: "Println"})
}

func TestRegexCallStrategySkipsOutsideFunctions(t *testing.T) {
	content := []byte(`import load()
func a() {
	b()
}`)
	funcs := []parser.Symbol{fn("a", 2, 4)}

	pairs := RegexCallStrategy{}.ExtractCalls(content, funcs)

	require.Len(t, pairs, 1)
	assert.Equal(t, CallPair{Caller: "a", Callee: "b"}, pairs[0])
}

func TestRegexCallStrategyChainedQualifiers(t *testing.T) {
	content := []byte(`func outer() {
	app::db::query()
	deep.chain.send()
}`)
	funcs := []parser.Symbol{fn("outer", 1, 4)}

	pairs := RegexCallStrategy{}.ExtractCalls(content, funcs)

	require.Len(t, pairs, 2)
	assert.Equal(t, "query", pairs[0].Callee)
	assert.Equal(t, "send", pairs[1].Callee)
}

func TestRegexCallStrategyDropsSelfCalls(t *testing.T) {
	content := []byte(`func recurse() {
	recurse()
	other()
}`)
	funcs := []parser.Symbol{fn("recurse", 1, 4)}

	pairs := RegexCallStrategy{}.ExtractCalls(content, funcs)

	require.Len(t, pairs, 1)
	assert.Equal(t, "other", pairs[0].Callee)
}

func TestSignalExtractorUsesGraph(t *testing.T) {
	graph := cfg.NewGraph([]cfg.Node{
		{Kind: cfg.KindBranch, NodeType: "if_statement", Line: 2},
		{Kind: cfg.KindCall, Callee: "helper", Line: 3},
	})
	e := NewSignalExtractor(nil, nil)

	signals := e.Extract(ScannedFile{Path: "a.go"}, graph)

	assert.True(t, signals.FromCFG)
	assert.True(t, signals.HasDecisionPoint)
	assert.Equal(t, []string{"helper"}, signals.CallSequence)
}

func TestSignalExtractorCallFreeGraphFallsToHeuristics(t *testing.T) {
	source := `func a() {
	c()
}

func b() {
}

func c() {
}
`
	file := ScannedFile{
		Path:    "a.go",
		Symbols: []parser.Symbol{fn("a", 1, 3), fn("b", 5, 6), fn("c", 8, 9)},
	}
	graph := cfg.NewGraph([]cfg.Node{
		{Kind: cfg.KindBranch, NodeType: "if_statement", Line: 2},
	})
	e := NewSignalExtractor(mapReader{"a.go": source}, nil)

	signals := e.Extract(file, graph)

	// A graph without call nodes settles the decision signal but hands call
	// extraction to the textual tier, not declaration adjacency.
	assert.True(t, signals.HasDecisionPoint)
	assert.False(t, signals.FromCFG)
	require.Len(t, signals.CallPairs, 1)
	assert.Equal(t, CallPair{Caller: "a", Callee: "c"}, signals.CallPairs[0])
	assert.Equal(t, []string{"c"}, signals.CallSequence)
}

func TestSignalExtractorHeuristicTier(t *testing.T) {
	source := `def run():
    if ready:
        helper()

def helper():
    pass
`
	file := ScannedFile{
		Path:    "job.py",
		Symbols: []parser.Symbol{fn("run", 1, 3), fn("helper", 5, 6)},
	}
	e := NewSignalExtractor(mapReader{"job.py": source}, nil)

	signals := e.Extract(file, nil)

	assert.False(t, signals.FromCFG)
	assert.True(t, signals.HasDecisionPoint)
	require.Len(t, signals.CallPairs, 1)
	assert.Equal(t, CallPair{Caller: "run", Callee: "helper"}, signals.CallPairs[0])
	assert.Equal(t, []string{"helper"}, signals.CallSequence)
}

func TestSignalExtractorValidatesPairs(t *testing.T) {
	source := `func a() {
	undeclared()
}
`
	file := ScannedFile{Path: "a.go", Symbols: []parser.Symbol{fn("a", 1, 3), fn("z", 5, 6)}}
	e := NewSignalExtractor(mapReader{"a.go": source}, nil)

	signals := e.Extract(file, nil)

	// Pairs with an undeclared callee are dropped; the sequence degrades to
	// declaration adjacency.
	assert.Empty(t, signals.CallPairs)
	assert.Equal(t, []string{"z"}, signals.CallSequence)
}

func TestSignalExtractorReadFailureDegrades(t *testing.T) {
	file := ScannedFile{
		Path:    "missing.go",
		Symbols: []parser.Symbol{fn("a", 1, 5), fn("b", 7, 12), fn("c", 14, 20)},
	}
	e := NewSignalExtractor(mapReader{}, nil)

	signals := e.Extract(file, nil)

	assert.False(t, signals.HasDecisionPoint)
	assert.Empty(t, signals.CallPairs)
	assert.Equal(t, []string{"b", "c"}, signals.CallSequence)
}

func TestSignalExtractorNilReader(t *testing.T) {
	file := ScannedFile{Path: "a.go", Symbols: []parser.Symbol{fn("a", 1, 5), fn("b", 7, 12)}}
	e := NewSignalExtractor(nil, nil)

	signals := e.Extract(file, nil)

	assert.Equal(t, []string{"b"}, signals.CallSequence)
}

func TestBranchKeywordRecognition(t *testing.T) {
	cases := map[string]bool{
		"\tif err != nil {":     true,
		"    elif x:":           true,
		"  match value {":       true,
		"while true; do":        true,
		"x := gift // no block": false,
		"// for reference":      false,
	}
	for line, want := range cases {
		assert.Equal(t, want, branchKeywordRe.MatchString(line), "line %q", line)
	}
}
