package wiki

import (
	"fmt"
	"testing"

	"github.com/codewiki-dev/codewiki/internal/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFlowchartBranchAndCall(t *testing.T) {
	graph := cfg.NewGraph([]cfg.Node{
		{Kind: cfg.KindBranch, NodeType: "if_statement", Line: 2},
		{Kind: cfg.KindCall, Callee: "process", Line: 3},
	})

	flow := BuildFlowchart(graph, ScannedFile{Path: "a.go"})

	require.Len(t, flow.Nodes, 4)
	assert.Equal(t, "start", flow.Nodes[0].ID)
	assert.Equal(t, "if_statement", flow.Nodes[1].Label)
	assert.True(t, flow.Nodes[1].IsBranch)
	assert.Equal(t, "call:process", flow.Nodes[2].Label)
	assert.Equal(t, "end", flow.Nodes[3].ID)

	// start -> N0, N0 -> N1, N1 -> end.
	assert.Contains(t, flow.Edges, FlowEdge{From: "start", To: "N0"})
	assert.Contains(t, flow.Edges, FlowEdge{From: "N0", To: "N1"})
	assert.Contains(t, flow.Edges, FlowEdge{From: "N1", To: "end"})
}

func TestBuildFlowchartLoopSelfEdge(t *testing.T) {
	graph := cfg.NewGraph([]cfg.Node{
		{Kind: cfg.KindBranch, NodeType: "for_statement", IsLoop: true, Line: 4},
	})

	flow := BuildFlowchart(graph, ScannedFile{})

	require.Len(t, flow.Nodes, 3)
	assert.True(t, flow.Nodes[1].IsLoop)
	assert.Contains(t, flow.Edges, FlowEdge{From: "N0", To: "N0", Label: "repeat"})
}

func TestBuildFlowchartConditionalEdges(t *testing.T) {
	graph := cfg.NewGraph([]cfg.Node{
		{Kind: cfg.KindCall, Callee: "read", Line: 1},
		{Kind: cfg.KindBranch, NodeType: "if_statement", Line: 2},
	})

	flow := BuildFlowchart(graph, ScannedFile{})

	assert.Contains(t, flow.Edges, FlowEdge{From: "N0", To: "N1", Label: "true"})
	assert.Contains(t, flow.Edges, FlowEdge{From: "N0", To: "N1", Label: "false"})
}

func TestBuildFlowchartNodeCap(t *testing.T) {
	var nodes []cfg.Node
	for i := 0; i < 40; i++ {
		nodes = append(nodes, cfg.Node{Kind: cfg.KindCall, Callee: fmt.Sprintf("step%d", i), Line: i + 1})
	}

	flow := BuildFlowchart(cfg.NewGraph(nodes), ScannedFile{})

	assert.LessOrEqual(t, len(flow.Nodes), 15)
	assert.Equal(t, "start", flow.Nodes[0].ID)
	assert.Equal(t, "end", flow.Nodes[len(flow.Nodes)-1].ID)
}

func TestBuildFlowchartTruncatesLongCallee(t *testing.T) {
	graph := cfg.NewGraph([]cfg.Node{
		{Kind: cfg.KindCall, Callee: "a_very_long_function_name_that_keeps_going", Line: 1},
	})

	flow := BuildFlowchart(graph, ScannedFile{})

	label := flow.Nodes[1].Label
	assert.Equal(t, "call:a_very_long_function_nam", label)
}

func TestBuildFlowchartSymbolFallback(t *testing.T) {
	file := ScannedFile{Symbols: manyFuncs(3)}

	flow := BuildFlowchart(nil, file)

	require.Len(t, flow.Nodes, 5)
	assert.Equal(t, "F0", flow.Nodes[1].ID)
	assert.Equal(t, "func00", flow.Nodes[1].Label)
	assert.Contains(t, flow.Edges, FlowEdge{From: "start", To: "F0"})
	assert.Contains(t, flow.Edges, FlowEdge{From: "F2", To: "end"})
}

func TestBuildFlowchartSymbolFallbackCap(t *testing.T) {
	file := ScannedFile{Symbols: manyFuncs(30)}

	flow := BuildFlowchart(nil, file)

	assert.LessOrEqual(t, len(flow.Nodes), 15)
}

func TestBuildFlowchartEmptyEverything(t *testing.T) {
	flow := BuildFlowchart(nil, ScannedFile{})

	// Degenerate fallback still yields a start-to-end walk.
	require.Len(t, flow.Nodes, 2)
	assert.Equal(t, []FlowEdge{{From: "start", To: "end"}}, flow.Edges)
}
