package grammar

// Word is a single word box in a diagram. Its simple types occupy the
// consecutive global wire indices starting at FirstWire.
type Word struct {
	Text      string
	Type      Type
	FirstWire int
}

// Cup connects two wires of opposite adjoint order. Left always refers to
// the wire introduced earlier in the sentence.
type Cup struct {
	Left  int
	Right int
}

// Diagram is the grammatical structure of a sentence: the word boxes in
// order, the cups produced by the pregroup reduction, and the wires left
// open (the sentence output).
type Diagram struct {
	Words []Word
	Cups  []Cup
	Open  []int
}

// WireType returns the simple type carried by a global wire index.
func (d *Diagram) WireType(wire int) (Simple, bool) {
	for _, w := range d.Words {
		if wire >= w.FirstWire && wire < w.FirstWire+len(w.Type) {
			return w.Type[wire-w.FirstWire], true
		}
	}
	return Simple{}, false
}

// cupsByRight indexes the cups by their right (later) endpoint.
func (d *Diagram) cupsByRight() map[int]int {
	m := make(map[int]int, len(d.Cups))
	for _, c := range d.Cups {
		m[c.Right] = c.Left
	}
	return m
}

// ConsumedWires returns, for the word at the given position, how many of
// its leading wires are cupped to earlier words.
func (d *Diagram) ConsumedWires(word int) int {
	w := d.Words[word]
	byRight := d.cupsByRight()
	consumed := 0
	for i := range w.Type {
		if _, ok := byRight[w.FirstWire+i]; !ok {
			break
		}
		consumed++
	}
	return consumed
}
