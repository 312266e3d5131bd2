// Package cfg builds a per-file control-flow graph approximation from a
// parsed syntax tree. The graph is a flat, ordered list of typed nodes
// (branches, calls, other) rather than a full basic-block graph; it carries
// enough structure to answer the two questions the documentation pipeline
// asks: does this file branch, and what does it call, in what order.
package cfg

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codewiki-dev/codewiki/internal/parser"
)

// NodeKind tags a control-flow node variant.
type NodeKind int

const (
	// KindOther is a node that is neither a branch nor a call.
	KindOther NodeKind = iota
	// KindBranch is a decision point (if/match/switch/loop).
	KindBranch
	// KindCall is a function or method invocation.
	KindCall
)

// Node is one entry in the ordered control-flow node list.
type Node struct {
	Kind NodeKind
	// NodeType is the syntax node type for branch nodes (e.g. "if_statement").
	NodeType string
	// IsLoop marks branch nodes whose kind repeats (for/while/loop/do).
	IsLoop bool
	// Callee is the invoked function name for call nodes, already stripped
	// of receiver/module qualifiers.
	Callee string
	// Line is the 1-indexed source line the node starts on.
	Line int
}

// Graph is the ordered control-flow node list for a single file.
type Graph struct {
	nodes []Node
}

// NewGraph builds a graph from an already ordered node list.
func NewGraph(nodes []Node) *Graph {
	return &Graph{nodes: nodes}
}

// Nodes returns the graph's nodes in source order.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// DecisionPoints returns only the branch nodes. A non-empty result means the
// file contains branching control flow.
func (g *Graph) DecisionPoints() []Node {
	var out []Node
	for _, n := range g.nodes {
		if n.Kind == KindBranch {
			out = append(out, n)
		}
	}
	return out
}

// CallSequence returns the ordered callee names for all call nodes.
func (g *Graph) CallSequence() []string {
	var out []string
	for _, n := range g.nodes {
		if n.Kind == KindCall && n.Callee != "" {
			out = append(out, n.Callee)
		}
	}
	return out
}

// branchNodeTypes lists the syntax node types treated as decision points
// across the supported languages.
var branchNodeTypes = map[string]bool{
	// rust
	"if_expression":        true,
	"match_expression":     true,
	"while_expression":     true,
	"while_let_expression": true,
	"for_expression":       true,
	"loop_expression":      true,
	// go / js / ts / c / cpp / java / python / ruby
	"if_statement":           true,
	"switch_statement":       true,
	"expression_switch_statement": true,
	"type_switch_statement":  true,
	"select_statement":       true,
	"conditional_expression": true,
	"for_statement":          true,
	"while_statement":        true,
	"do_statement":           true,
	"match_statement":        true,
	"case":                   true,
	"if":                     true,
	"while":                  true,
	"for":                    true,
	"until":                  true,
}

// callNodeTypes lists the syntax node types treated as call sites.
var callNodeTypes = map[string]bool{
	"call_expression":   true, // go, rust, js, ts, c, cpp
	"call":              true, // python, ruby
	"method_invocation": true, // java
	"macro_invocation":  true, // rust
}

// loopKind reports whether a branch node type denotes a repeating construct.
func loopKind(nodeType string) bool {
	return strings.Contains(nodeType, "for") ||
		strings.Contains(nodeType, "while") ||
		strings.Contains(nodeType, "loop") ||
		strings.Contains(nodeType, "do_") ||
		nodeType == "until"
}

// Builder constructs control-flow graphs for a given language.
type Builder struct {
	language string
}

// NewBuilder creates a Builder for the given language name.
func NewBuilder(language string) *Builder {
	return &Builder{language: language}
}

// Build walks the syntax tree and produces the ordered node list. Nodes are
// emitted in depth-first source order, which matches execution order closely
// enough for rendering purposes.
func (b *Builder) Build(tree *parser.Tree) *Graph {
	g := &Graph{}
	source := tree.Source()

	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		if node == nil {
			return
		}
		nodeType := node.Type()
		line := int(node.StartPoint().Row) + 1

		// Anonymous keyword tokens (the "if" inside an if_statement) share
		// their type string with Ruby's named branch nodes; only named nodes
		// are control-flow constructs.
		if !node.IsNamed() {
			nodeType = ""
		}

		switch {
		case branchNodeTypes[nodeType]:
			g.nodes = append(g.nodes, Node{
				Kind:     KindBranch,
				NodeType: nodeType,
				IsLoop:   loopKind(nodeType),
				Line:     line,
			})
		case callNodeTypes[nodeType]:
			if callee := calleeName(node, source); callee != "" {
				g.nodes = append(g.nodes, Node{
					Kind:   KindCall,
					Callee: callee,
					Line:   line,
				})
			}
		}

		for i := 0; i < int(node.ChildCount()); i++ {
			visit(node.Child(i))
		}
	}
	visit(tree.RootNode())

	return g
}

// calleeName extracts the invoked function name from a call node, stripping
// receiver and module qualifiers (x.y() -> y, mod::fn() -> fn).
func calleeName(node *sitter.Node, source []byte) string {
	target := node.ChildByFieldName("function")
	if target == nil {
		// java method_invocation and ruby call use a "name"/"method" field
		target = node.ChildByFieldName("name")
	}
	if target == nil {
		target = node.ChildByFieldName("method")
	}
	if target == nil {
		return ""
	}

	text := target.Content(source)
	return stripQualifiers(text)
}

// stripQualifiers reduces a call target expression to its final identifier.
func stripQualifiers(text string) string {
	if idx := strings.LastIndex(text, "::"); idx >= 0 {
		text = text[idx+2:]
	}
	if idx := strings.LastIndex(text, "."); idx >= 0 {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(text, "!")
	return strings.TrimSpace(text)
}
