package wiki

import (
	"errors"
	"regexp"
	"strings"

	"github.com/codewiki-dev/codewiki/internal/cfg"
	"github.com/codewiki-dev/codewiki/internal/parser"
)

var errNoReader = errors.New("no source reader configured")

// SourceReader supplies raw file content for heuristic fallbacks. Read
// failures degrade to the next fallback tier, never to an error.
type SourceReader interface {
	ReadFile(path string) ([]byte, error)
}

// CallPair is one extracted caller to callee relationship.
type CallPair struct {
	Caller string
	Callee string
}

// CallExtractionStrategy extracts call pairs from raw source. Implementations
// are heuristics; results are validated against the declared symbol set
// before use.
type CallExtractionStrategy interface {
	ExtractCalls(content []byte, funcs []parser.Symbol) []CallPair
}

// callShapeRe matches method, qualified and bare call shapes (x.y(, a::b(,
// f(), including chained qualifiers (a::b::c(), capturing only the final
// identifier.
var callShapeRe = regexp.MustCompile(`(?:\w+(?:\.|::))*(\w+)\s*\(`)

// RegexCallStrategy extracts call pairs by scanning source lines for call
// shapes and attributing each match to the declared function whose line
// range contains it.
type RegexCallStrategy struct{}

// ExtractCalls scans the content line by line. Matches outside any declared
// function body are dropped, as are self-calls.
func (RegexCallStrategy) ExtractCalls(content []byte, funcs []parser.Symbol) []CallPair {
	var pairs []CallPair
	lines := strings.Split(string(content), "\n")

	for i, line := range lines {
		lineNum := i + 1
		caller := enclosingFunction(funcs, lineNum)
		if caller == "" {
			continue
		}
		for _, m := range callShapeRe.FindAllStringSubmatch(line, -1) {
			callee := m[1]
			if callee == "" || callee == caller {
				continue
			}
			pairs = append(pairs, CallPair{Caller: caller, Callee: callee})
		}
	}
	return pairs
}

// enclosingFunction returns the name of the declared function containing the
// line, skipping the declaration line itself.
func enclosingFunction(funcs []parser.Symbol, line int) string {
	for _, f := range funcs {
		if line > f.StartLine && line <= f.EndLine {
			return f.Name
		}
	}
	return ""
}

// branchKeywordRe recognizes branch and loop constructs across the languages
// the scanner supports, used when no CFG is available.
var branchKeywordRe = regexp.MustCompile(`(?m)^\s*(?:if|else if|elif|match|switch|case|while|for|loop|until|unless)\b`)

// SignalExtractor derives ControlFlowSignals for a file, preferring the CFG
// and degrading through heuristic tiers. It never fails the caller.
type SignalExtractor struct {
	reader   SourceReader
	strategy CallExtractionStrategy
}

// NewSignalExtractor creates a SignalExtractor. A nil strategy defaults to
// the regex call strategy.
func NewSignalExtractor(reader SourceReader, strategy CallExtractionStrategy) *SignalExtractor {
	if strategy == nil {
		strategy = RegexCallStrategy{}
	}
	return &SignalExtractor{reader: reader, strategy: strategy}
}

// Extract computes the file's signals. With a usable CFG the signals come
// straight from it; a CFG without call nodes settles only the decision
// signal and drops to the textual call heuristics. Without a CFG the
// extractor scans raw text for branch keywords and call shapes, and finally
// falls back to adjacency of declared functions. Any read failure collapses
// to the weakest tier.
func (e *SignalExtractor) Extract(file ScannedFile, graph *cfg.Graph) ControlFlowSignals {
	if graph != nil && len(graph.Nodes()) > 0 {
		signals := ControlFlowSignals{
			HasDecisionPoint: len(graph.DecisionPoints()) > 0,
			CallSequence:     graph.CallSequence(),
			FromCFG:          true,
		}
		if len(signals.CallSequence) > 0 {
			return signals
		}
		return e.heuristicSignals(file, signals.HasDecisionPoint, true)
	}
	return e.heuristicSignals(file, false, false)
}

// heuristicSignals runs the textual tiers. When decisionKnown is true the
// decision signal was already settled by a CFG and the branch keyword scan
// is skipped.
func (e *SignalExtractor) heuristicSignals(file ScannedFile, hasDecision, decisionKnown bool) ControlFlowSignals {
	signals := ControlFlowSignals{HasDecisionPoint: hasDecision}
	funcs := file.Functions()

	content, err := e.readFile(file.Path)
	if err == nil {
		if !decisionKnown {
			signals.HasDecisionPoint = branchKeywordRe.Match(content)
		}
		signals.CallPairs = e.validatedPairs(content, funcs)
		for _, pair := range signals.CallPairs {
			signals.CallSequence = append(signals.CallSequence, pair.Callee)
		}
	}

	if len(signals.CallSequence) == 0 {
		signals.CallSequence = adjacencyCalls(funcs)
	}
	return signals
}

func (e *SignalExtractor) readFile(path string) ([]byte, error) {
	if e.reader == nil {
		return nil, errNoReader
	}
	return e.reader.ReadFile(path)
}

// validatedPairs keeps only pairs where both caller and callee are declared
// functions of the file.
func (e *SignalExtractor) validatedPairs(content []byte, funcs []parser.Symbol) []CallPair {
	known := make(map[string]bool, len(funcs))
	for _, f := range funcs {
		known[f.Name] = true
	}

	var pairs []CallPair
	for _, pair := range e.strategy.ExtractCalls(content, funcs) {
		if known[pair.Caller] && known[pair.Callee] {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// adjacencyCalls approximates a call sequence by connecting consecutive
// function declarations: the weakest fallback tier.
func adjacencyCalls(funcs []parser.Symbol) []string {
	if len(funcs) < 2 {
		return nil
	}
	seq := make([]string, 0, len(funcs)-1)
	for _, f := range funcs[1:] {
		seq = append(seq, f.Name)
	}
	return seq
}
