package wiki

import "github.com/codewiki-dev/codewiki/internal/parser"

// ScannedFile represents a source file discovered by the scanner stage.
type ScannedFile struct {
	Path     string
	Language string
	Symbols  []parser.Symbol
	Imports  []string
	Lines    int
	Size     int64
	Module   string
}

// Functions returns the file's callable symbols in declaration order.
func (f ScannedFile) Functions() []parser.Symbol {
	var funcs []parser.Symbol
	for _, s := range f.Symbols {
		if s.Kind.Callable() {
			funcs = append(funcs, s)
		}
	}
	return funcs
}

// ControlFlowSignals are the per-file facts the diagram selector keys on.
// Computed once per file, immutable afterwards. FromCFG records whether the
// signals came straight from a control-flow graph or from heuristic tiers;
// CallPairs carries caller-attributed pairs when the heuristic strategy
// produced them.
type ControlFlowSignals struct {
	HasDecisionPoint bool
	CallSequence     []string
	CallPairs        []CallPair
	FromCFG          bool
}

// FlowNode is one node of a flowchart descriptor.
type FlowNode struct {
	ID       string
	Label    string
	IsLoop   bool
	IsBranch bool
}

// FlowEdge connects two flowchart nodes, optionally labeled.
type FlowEdge struct {
	From  string
	To    string
	Label string
}

// Flowchart is a rendering-agnostic flowchart descriptor.
type Flowchart struct {
	Nodes []FlowNode
	Edges []FlowEdge
}

// Message is one caller to callee interaction in a sequence descriptor.
type Message struct {
	Caller string
	Callee string
}

// Sequence is a rendering-agnostic sequence diagram descriptor.
// Participants and messages keep their construction order.
type Sequence struct {
	Participants []string
	Messages     []Message
}

// ClassDiagram lists the declared symbols as relationship stubs.
type ClassDiagram struct {
	Classes []string
}

// Summary replaces structural diagrams for very large files.
type Summary struct {
	Shown      []string
	TotalCount int
}

// FileDiagrams holds the diagram descriptors selected for one file. Unset
// shapes are nil.
type FileDiagrams struct {
	Flowchart    *Flowchart
	Sequence     *Sequence
	ClassDiagram *ClassDiagram
	Summary      *Summary
}

// Diagram holds a rendered Mermaid diagram.
type Diagram struct {
	Title   string
	Type    string // "flowchart", "sequence", "class", "summary", "trace", "hotspot", "dependency"
	Content string // Mermaid source
}

// Document represents a single output page in the wiki.
type Document struct {
	Path    string
	Title   string
	Content string
}
