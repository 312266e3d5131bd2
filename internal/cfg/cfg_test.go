package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewiki-dev/codewiki/internal/parser"
)

func buildGraph(t *testing.T, filename, source string) *Graph {
	t.Helper()
	p := parser.NewParser()
	tree, err := p.Parse(filename, []byte(source))
	require.NoError(t, err)
	defer tree.Close()

	lang := parser.LanguageForExt("." + filename[len(filename)-2:])
	return NewBuilder(lang).Build(tree)
}

func TestDecisionPointsForIfElse(t *testing.T) {
	g := buildGraph(t, "main.go", `package main

func demo(x int) int {
	if x > 1 {
		return x + 1
	}
	return x - 1
}
`)
	points := g.DecisionPoints()
	require.NotEmpty(t, points)
	assert.Equal(t, "if_statement", points[0].NodeType)
	assert.False(t, points[0].IsLoop)
}

func TestLoopNodeMarked(t *testing.T) {
	g := buildGraph(t, "main.go", `package main

func sum(n int) int {
	s := 0
	for i := 0; i < n; i++ {
		s += i
	}
	return s
}
`)
	points := g.DecisionPoints()
	require.NotEmpty(t, points)
	assert.Equal(t, "for_statement", points[0].NodeType)
	assert.True(t, points[0].IsLoop)
}

func TestCallSequenceOrdered(t *testing.T) {
	g := buildGraph(t, "main.go", `package main

func a() {
	b()
	c()
}

func b() {}
func c() {}
`)
	calls := g.CallSequence()
	assert.Equal(t, []string{"b", "c"}, calls)
}

func TestCalleeQualifierStripping(t *testing.T) {
	assert.Equal(t, "helper", stripQualifiers("util::helper"))
	assert.Equal(t, "m", stripQualifiers("s.m"))
	assert.Equal(t, "f", stripQualifiers("f"))
	assert.Equal(t, "println", stripQualifiers("println!"))
}

func TestRustBranchAndCalls(t *testing.T) {
	g := buildGraph(t, "lib.rs", `pub fn pick(x: i32) -> i32 {
    if x > 0 { go_up(x) } else { go_down(x) }
}
fn go_up(x: i32) -> i32 { x + 1 }
fn go_down(x: i32) -> i32 { x - 1 }
`)
	points := g.DecisionPoints()
	require.NotEmpty(t, points)
	assert.Equal(t, "if_expression", points[0].NodeType)

	calls := g.CallSequence()
	assert.Contains(t, calls, "go_up")
	assert.Contains(t, calls, "go_down")
}

func TestLinearFileHasNoDecisionPoints(t *testing.T) {
	g := buildGraph(t, "main.go", `package main

func a() int { return 42 }
func b() int { return a() }
`)
	assert.Empty(t, g.DecisionPoints())
	assert.Equal(t, []string{"a"}, g.CallSequence())
}

func TestKeywordTokensNotCountedAsBranches(t *testing.T) {
	g := buildGraph(t, "main.go", `package main

func classify(n int) string {
	if n > 0 {
		return "positive"
	}
	for i := 0; i < n; i++ {
		n--
	}
	switch n {
	case 0:
		return "zero"
	}
	return "negative"
}
`)
	// One branch node per construct; the keyword tokens inside each
	// statement must not produce duplicates.
	points := g.DecisionPoints()
	require.Len(t, points, 3)
	assert.Equal(t, "if_statement", points[0].NodeType)
	assert.Equal(t, "for_statement", points[1].NodeType)
	assert.Equal(t, "expression_switch_statement", points[2].NodeType)
}

func TestNodesPreserveSourceOrder(t *testing.T) {
	g := buildGraph(t, "main.go", `package main

func work(n int) {
	prepare()
	if n > 0 {
		run()
	}
}

func prepare() {}
func run()     {}
`)
	nodes := g.Nodes()
	require.GreaterOrEqual(t, len(nodes), 3)

	var order []string
	for _, n := range nodes {
		switch n.Kind {
		case KindBranch:
			order = append(order, "branch")
		case KindCall:
			order = append(order, n.Callee)
		}
	}
	assert.Equal(t, []string{"prepare", "branch", "run"}, order)
}
