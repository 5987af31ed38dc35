// Package ansatz turns sentence diagrams into concrete tensor circuits by
// assigning a fixed dimension to every base grammatical type.
package ansatz

import (
	"fmt"

	"discat/pkg/circuit"
	"discat/pkg/grammar"
)

// Ansatz maps base types to tensor dimensions.
type Ansatz struct {
	Dims map[string]int
}

// New validates the dimension map. Every dimension must be at least 1.
func New(dims map[string]int) (*Ansatz, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("ansatz has no type dimensions")
	}
	for base, dim := range dims {
		if dim < 1 {
			return nil, fmt.Errorf("type %s has invalid dimension %d", base, dim)
		}
	}
	return &Ansatz{Dims: dims}, nil
}

// Symbol is the canonical name of a word's free parameter: the word text
// joined to its type, so the same word used with two types trains two
// distinct tensors.
func Symbol(word string, t grammar.Type) string {
	return word + "__" + t.String()
}

// Apply compiles a diagram into a circuit. Each word becomes a slot whose
// shape lists one dimension per simple type and whose Left/Right split is
// derived from the cups connecting it to earlier words.
func (a *Ansatz) Apply(d *grammar.Diagram) (*circuit.Circuit, error) {
	c := &circuit.Circuit{Sentence: sentenceOf(d)}
	for i, word := range d.Words {
		shape := make([]int, len(word.Type))
		for j, simple := range word.Type {
			dim, ok := a.Dims[simple.Base]
			if !ok {
				return nil, fmt.Errorf("word %q: no dimension for type %s", word.Text, simple.Base)
			}
			shape[j] = dim
		}
		consumed := d.ConsumedWires(i)
		left, right := 1, 1
		for j, dim := range shape {
			if j < consumed {
				left *= dim
			} else {
				right *= dim
			}
		}
		c.Slots = append(c.Slots, circuit.Slot{
			Symbol:   Symbol(word.Text, word.Type),
			Shape:    shape,
			Consumed: consumed,
			Left:     left,
			Right:    right,
		})
	}

	outputSize := 1
	for _, wire := range d.Open {
		simple, ok := d.WireType(wire)
		if !ok {
			return nil, fmt.Errorf("open wire %d has no type", wire)
		}
		outputSize *= a.Dims[simple.Base]
	}
	c.OutputSize = outputSize
	return c, nil
}

func sentenceOf(d *grammar.Diagram) string {
	sentence := ""
	for i, w := range d.Words {
		if i > 0 {
			sentence += " "
		}
		sentence += w.Text
	}
	return sentence
}
