package wiki

import (
	"fmt"
	"strings"

	"github.com/codewiki-dev/codewiki/internal/cfg"
)

const (
	// flowchartNodeCap bounds the number of CFG-derived nodes in a
	// flowchart descriptor, keeping large files legible.
	flowchartNodeCap = 15
	// callLabelWidth bounds the display width of callee labels.
	callLabelWidth = 24
)

// conditionalKind reports whether a branch node type is a conditional rather
// than a loop head.
func conditionalKind(nodeType string) bool {
	return strings.Contains(nodeType, "if") ||
		strings.Contains(nodeType, "match") ||
		strings.Contains(nodeType, "switch") ||
		strings.Contains(nodeType, "conditional")
}

// BuildFlowchart turns CFG branch and call nodes into a capped flowchart
// descriptor. Loop heads get a self-edge labeled "repeat". Conditionals get
// true/false labeled edges from the previous node; the labels are an
// approximation, they do not resolve the real branch targets. If the CFG
// yields no renderable nodes the flowchart falls back to a synthetic
// start-to-end walk over the file's symbols.
func BuildFlowchart(graph *cfg.Graph, file ScannedFile) Flowchart {
	var nodes []FlowNode
	var edges []FlowEdge

	// Start and end markers count against the cap.
	bodyCap := flowchartNodeCap - 2

	if graph != nil {
		for _, n := range graph.Nodes() {
			if len(nodes) == bodyCap {
				break
			}
			switch n.Kind {
			case cfg.KindBranch:
				id := fmt.Sprintf("N%d", len(nodes))
				nodes = append(nodes, FlowNode{
					ID:       id,
					Label:    n.NodeType,
					IsLoop:   n.IsLoop,
					IsBranch: true,
				})
				if n.IsLoop {
					edges = append(edges, FlowEdge{From: id, To: id, Label: "repeat"})
				}
				if prev := len(nodes) - 2; prev >= 0 {
					if conditionalKind(n.NodeType) {
						edges = append(edges,
							FlowEdge{From: nodes[prev].ID, To: id, Label: "true"},
							FlowEdge{From: nodes[prev].ID, To: id, Label: "false"},
						)
					} else {
						edges = append(edges, FlowEdge{From: nodes[prev].ID, To: id})
					}
				}
			case cfg.KindCall:
				id := fmt.Sprintf("N%d", len(nodes))
				nodes = append(nodes, FlowNode{
					ID:    id,
					Label: "call:" + truncateUTF8(n.Callee, callLabelWidth),
				})
				if prev := len(nodes) - 2; prev >= 0 {
					edges = append(edges, FlowEdge{From: nodes[prev].ID, To: id})
				}
			}
		}
	}

	if len(nodes) == 0 {
		return symbolFlowchart(file)
	}

	start := FlowNode{ID: "start", Label: "Start"}
	end := FlowNode{ID: "end", Label: "End"}
	all := make([]FlowNode, 0, len(nodes)+2)
	all = append(all, start)
	all = append(all, nodes...)
	all = append(all, end)

	edges = append([]FlowEdge{{From: "start", To: nodes[0].ID}}, edges...)
	edges = append(edges, FlowEdge{From: nodes[len(nodes)-1].ID, To: "end"})

	return Flowchart{Nodes: all, Edges: edges}
}

// symbolFlowchart builds the synthetic fallback flow: start, each symbol in
// declaration order, end.
func symbolFlowchart(file ScannedFile) Flowchart {
	nodes := []FlowNode{{ID: "start", Label: "Start"}}
	var edges []FlowEdge

	prev := "start"
	for i, s := range file.Symbols {
		if i == flowchartNodeCap-2 {
			break
		}
		id := fmt.Sprintf("F%d", i)
		nodes = append(nodes, FlowNode{ID: id, Label: s.Name})
		edges = append(edges, FlowEdge{From: prev, To: id})
		prev = id
	}

	nodes = append(nodes, FlowNode{ID: "end", Label: "End"})
	edges = append(edges, FlowEdge{From: prev, To: "end"})

	return Flowchart{Nodes: nodes, Edges: edges}
}
