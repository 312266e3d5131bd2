package wiki

import (
	"testing"

	"github.com/codewiki-dev/codewiki/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSequenceFromCallSequence(t *testing.T) {
	file := ScannedFile{Symbols: []parser.Symbol{fn("Run", 1, 20), fn("step", 22, 30)}}
	signals := ControlFlowSignals{CallSequence: []string{"step", "log"}, FromCFG: true}

	seq := BuildSequence(file, signals)

	assert.Equal(t, []string{"run", "step"}, seq.Participants)
	require.Len(t, seq.Messages, 2)
	assert.Equal(t, Message{Caller: "run", Callee: "step"}, seq.Messages[0])
	assert.Equal(t, Message{Caller: "run", Callee: "log"}, seq.Messages[1])
}

func TestBuildSequenceFromCallPairs(t *testing.T) {
	file := ScannedFile{Symbols: []parser.Symbol{fn("a", 1, 5), fn("b", 7, 12), fn("c", 14, 20)}}
	signals := ControlFlowSignals{
		CallSequence: []string{"c"},
		CallPairs:    []CallPair{{Caller: "b", Callee: "c"}},
	}

	seq := BuildSequence(file, signals)

	// Heuristic pairs keep their real caller instead of crediting the first
	// declared function.
	require.Len(t, seq.Messages, 1)
	assert.Equal(t, Message{Caller: "b", Callee: "c"}, seq.Messages[0])
}

func TestBuildSequenceAdjacencyFallback(t *testing.T) {
	file := ScannedFile{Symbols: []parser.Symbol{fn("first", 1, 5), fn("second", 7, 12), fn("third", 14, 20)}}

	seq := BuildSequence(file, ControlFlowSignals{})

	assert.Equal(t, []string{"first", "second", "third"}, seq.Participants)
	require.Len(t, seq.Messages, 2)
	assert.Equal(t, Message{Caller: "first", Callee: "second"}, seq.Messages[0])
	assert.Equal(t, Message{Caller: "second", Callee: "third"}, seq.Messages[1])
}

func TestBuildSequenceSingleFunctionNoMessages(t *testing.T) {
	file := ScannedFile{Symbols: []parser.Symbol{fn("only", 1, 5)}}

	seq := BuildSequence(file, ControlFlowSignals{})

	assert.Equal(t, []string{"only"}, seq.Participants)
	assert.Empty(t, seq.Messages)
}

func TestBuildSequenceDedupesParticipants(t *testing.T) {
	file := ScannedFile{Symbols: []parser.Symbol{fn("Init", 1, 5), fn("init", 7, 12)}}

	seq := BuildSequence(file, ControlFlowSignals{})

	assert.Equal(t, []string{"init"}, seq.Participants)
}

func TestSafeIdent(t *testing.T) {
	assert.Equal(t, "my_method", safeIdent("My Method"))
	assert.Equal(t, "vec__new", safeIdent("Vec::new"))
	assert.Equal(t, safeIdent("Handler"), safeIdent("Handler"))
}
