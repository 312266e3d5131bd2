package wiki

import "github.com/codewiki-dev/codewiki/internal/cfg"

const (
	// largeFileThreshold is the function count above which structural
	// diagrams are skipped in favor of a summary.
	largeFileThreshold = 20
	// summaryTopN bounds how many function names a summary shows.
	summaryTopN = 10
)

// SelectDiagrams picks the diagram shapes for one file from its symbols and
// control-flow signals. Exactly one of the four outcomes applies:
// branching and multiple functions select both a flowchart and a sequence,
// branching alone a flowchart, multiple functions alone a sequence, and
// neither a class diagram stub. Files with more than largeFileThreshold
// functions get a summary instead, regardless of signals. The selection is
// deterministic: identical inputs always yield an identical descriptor.
func SelectDiagrams(file ScannedFile, signals ControlFlowSignals, graph *cfg.Graph) FileDiagrams {
	funcs := file.Functions()

	if len(funcs) > largeFileThreshold {
		shown := make([]string, 0, summaryTopN)
		for _, f := range funcs {
			if len(shown) == summaryTopN {
				break
			}
			shown = append(shown, f.Name)
		}
		return FileDiagrams{Summary: &Summary{Shown: shown, TotalCount: len(funcs)}}
	}

	multiFunc := len(funcs) >= 2

	switch {
	case signals.HasDecisionPoint && multiFunc:
		flow := BuildFlowchart(graph, file)
		seq := BuildSequence(file, signals)
		return FileDiagrams{Flowchart: &flow, Sequence: &seq}
	case signals.HasDecisionPoint:
		flow := BuildFlowchart(graph, file)
		return FileDiagrams{Flowchart: &flow}
	case multiFunc:
		seq := BuildSequence(file, signals)
		return FileDiagrams{Sequence: &seq}
	default:
		classes := make([]string, 0, len(file.Symbols))
		for _, s := range file.Symbols {
			classes = append(classes, s.Name)
		}
		return FileDiagrams{ClassDiagram: &ClassDiagram{Classes: classes}}
	}
}
