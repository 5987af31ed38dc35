// Package circuit holds the parameterised tensor circuit compiled from a
// sentence diagram. A circuit is an ordered list of symbol slots; its
// evaluation contracts the symbol tensors along the diagram's cups by
// folding left to right on a spago graph, so gradients flow back into the
// symbol parameters.
package circuit

import (
	"fmt"

	"github.com/nlpodyssey/spago/pkg/ml/ag"
)

// Slot is one word tensor in the circuit. Left is the product of the
// dimensions consumed from the open wires on its left, Right the product
// of the dimensions it leaves open. Left*Right equals the tensor size.
type Slot struct {
	Symbol   string
	Shape    []int
	Consumed int
	Left     int
	Right    int
}

// Size returns the number of scalar entries in the slot tensor.
func (s Slot) Size() int {
	size := 1
	for _, d := range s.Shape {
		size *= d
	}
	return size
}

// Circuit is a compiled sentence: its slots in word order and the size of
// the open sentence wire it evaluates to.
type Circuit struct {
	Sentence   string
	Slots      []Slot
	OutputSize int
}

// Symbols returns the distinct free symbols of the circuit in first-use order.
func (c *Circuit) Symbols() []string {
	seen := make(map[string]bool, len(c.Slots))
	var result []string
	for _, slot := range c.Slots {
		if !seen[slot.Symbol] {
			seen[slot.Symbol] = true
			result = append(result, slot.Symbol)
		}
	}
	return result
}

// Eval contracts the circuit on the given graph. Every symbol is resolved
// through lookup, which must return a node holding the flat symbol tensor;
// a symbol without an assigned tensor is an evaluation error. The result
// is a column vector of OutputSize.
func (c *Circuit) Eval(g *ag.Graph, lookup func(symbol string) (ag.Node, error)) (ag.Node, error) {
	if len(c.Slots) == 0 {
		return nil, fmt.Errorf("empty circuit for sentence %q", c.Sentence)
	}
	var state ag.Node
	width := 1
	for i, slot := range c.Slots {
		node, err := lookup(slot.Symbol)
		if err != nil {
			return nil, err
		}
		value := node.Value()
		if value.Rows()*value.Columns() != slot.Size() {
			return nil, fmt.Errorf("symbol %s: tensor has %d entries, slot wants %d",
				slot.Symbol, value.Rows()*value.Columns(), slot.Size())
		}
		w := g.Reshape(node, slot.Left, slot.Right)
		if i == 0 {
			if slot.Left != 1 {
				return nil, fmt.Errorf("first word of %q consumes %d wires", c.Sentence, slot.Consumed)
			}
			state = w
			width = slot.Right
			continue
		}
		if slot.Left == 0 || width%slot.Left != 0 {
			return nil, fmt.Errorf("symbol %s: cannot contract %d wires out of state width %d",
				slot.Symbol, slot.Left, width)
		}
		rows := width / slot.Left
		state = g.Mul(g.Reshape(state, rows, slot.Left), w)
		width = rows * slot.Right
		state = g.Reshape(state, 1, width)
	}
	if width != c.OutputSize {
		return nil, fmt.Errorf("sentence %q evaluates to width %d, expected %d", c.Sentence, width, c.OutputSize)
	}
	return g.Reshape(state, width, 1), nil
}
