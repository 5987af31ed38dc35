package grammar

import (
	"fmt"
	"strings"
)

// Adjoint order of a simple type: -1 for a left adjoint (n.l), +1 for a
// right adjoint (n.r), 0 for the plain type.
const (
	LeftAdjoint  = -1
	Plain        = 0
	RightAdjoint = 1
)

// SentenceBase is the base type a well-formed sentence must reduce to.
const SentenceBase = "s"

// Simple is a single basic pregroup type together with its adjoint order.
type Simple struct {
	Base    string
	Adjoint int
}

func (s Simple) String() string {
	switch s.Adjoint {
	case LeftAdjoint:
		return s.Base + ".l"
	case RightAdjoint:
		return s.Base + ".r"
	}
	return s.Base
}

// cancels reports whether this simple type, at the tail of the open wires,
// cancels against the next simple type: x^z cancels x^(z+1).
func (s Simple) cancels(next Simple) bool {
	return s.Base == next.Base && next.Adjoint == s.Adjoint+1
}

// Type is the ordered sequence of simple types assigned to a word,
// e.g. n.r @ s @ n.l for a transitive verb.
type Type []Simple

func (t Type) String() string {
	parts := make([]string, len(t))
	for i, s := range t {
		parts[i] = s.String()
	}
	return strings.Join(parts, "@")
}

// ParseType parses a type string such as "n", "n @ n.l" or "n.r@s@n.l".
// Whitespace around the @ separators is ignored.
func ParseType(s string) (Type, error) {
	var result Type
	for _, part := range strings.Split(s, "@") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty simple type in %q", s)
		}
		simple := Simple{Base: part}
		switch {
		case strings.HasSuffix(part, ".l"):
			simple = Simple{Base: part[:len(part)-2], Adjoint: LeftAdjoint}
		case strings.HasSuffix(part, ".r"):
			simple = Simple{Base: part[:len(part)-2], Adjoint: RightAdjoint}
		}
		if simple.Base == "" || strings.ContainsAny(simple.Base, ". ") {
			return nil, fmt.Errorf("invalid simple type %q in %q", part, s)
		}
		result = append(result, simple)
	}
	return result, nil
}
