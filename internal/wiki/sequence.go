package wiki

import "strings"

// safeIdent normalizes a symbol name into a legal diagram identifier:
// lowercased, with spaces and colons replaced by underscores. The mapping is
// referentially consistent, identical names always normalize identically.
func safeIdent(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

// BuildSequence produces a sequence descriptor from the file's declared
// functions and its call signals. Messages come from a 3-tier fallback,
// first non-empty tier wins: a CFG-derived call sequence attributed entirely
// to the first declared function, then strategy-extracted pairs where both
// ends are declared symbols, then pairwise adjacency of declared functions.
func BuildSequence(file ScannedFile, signals ControlFlowSignals) Sequence {
	funcs := file.Functions()

	participants := make([]string, 0, len(funcs))
	known := make(map[string]bool, len(funcs))
	for _, f := range funcs {
		id := safeIdent(f.Name)
		if !known[id] {
			known[id] = true
			participants = append(participants, id)
		}
	}

	var messages []Message

	switch {
	case signals.FromCFG && len(signals.CallSequence) > 0 && len(funcs) > 0:
		caller := safeIdent(funcs[0].Name)
		for _, callee := range signals.CallSequence {
			messages = append(messages, Message{Caller: caller, Callee: safeIdent(callee)})
		}
	case len(signals.CallPairs) > 0:
		for _, pair := range signals.CallPairs {
			messages = append(messages, Message{
				Caller: safeIdent(pair.Caller),
				Callee: safeIdent(pair.Callee),
			})
		}
	case len(funcs) >= 2:
		for i := 1; i < len(funcs); i++ {
			messages = append(messages, Message{
				Caller: safeIdent(funcs[i-1].Name),
				Callee: safeIdent(funcs[i].Name),
			})
		}
	}

	return Sequence{Participants: participants, Messages: messages}
}
