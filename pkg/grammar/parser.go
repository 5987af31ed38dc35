package grammar

import (
	"fmt"
	"strings"
)

// OOVError reports a word missing from the lexicon.
type OOVError struct {
	Word string
}

func (e *OOVError) Error() string {
	return fmt.Sprintf("unknown word %q", e.Word)
}

// Tokenize lowercases a sentence and splits it into word tokens,
// dropping punctuation-only tokens such as the trailing period.
func Tokenize(sentence string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(sentence)) {
		field = strings.Trim(field, ".,;:!?\"'")
		if field == "" {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

type openWire struct {
	index  int
	simple Simple
}

// Parse reduces a tokenized sentence to its diagram under the lexicon.
// It scans left to right, greedily cancelling each word's leading simple
// types against the tail of the open-wire stack; every cancellation
// becomes a cup. The sentence is well formed when exactly one plain
// sentence wire remains open.
func Parse(tokens []string, lex Lexicon) (*Diagram, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty sentence")
	}
	d := &Diagram{}
	var stack []openWire
	wire := 0
	for _, tok := range tokens {
		t, ok := lex[tok]
		if !ok {
			return nil, &OOVError{Word: tok}
		}
		d.Words = append(d.Words, Word{Text: tok, Type: t, FirstWire: wire})
		consumed := 0
		for consumed < len(t) && len(stack) > 0 && stack[len(stack)-1].simple.cancels(t[consumed]) {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			d.Cups = append(d.Cups, Cup{Left: top.index, Right: wire + consumed})
			consumed++
		}
		for i := consumed; i < len(t); i++ {
			stack = append(stack, openWire{index: wire + i, simple: t[i]})
		}
		wire += len(t)
	}

	for _, w := range stack {
		d.Open = append(d.Open, w.index)
	}
	if len(stack) != 1 || stack[0].simple != (Simple{Base: SentenceBase}) {
		return nil, fmt.Errorf("sentence %q does not reduce to %s: %s left open",
			strings.Join(tokens, " "), SentenceBase, describeWires(stack))
	}
	return d, nil
}

func describeWires(wires []openWire) string {
	parts := make([]string, len(wires))
	for i, w := range wires {
		parts[i] = w.simple.String()
	}
	return strings.Join(parts, "@")
}
