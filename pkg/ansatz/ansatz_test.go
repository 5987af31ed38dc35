package ansatz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"discat/pkg/circuit"
	"discat/pkg/grammar"
)

func testDiagram(t *testing.T, tokens ...string) *grammar.Diagram {
	t.Helper()
	lexicon, err := grammar.ParseLexicon(map[string]string{
		"man":      "n",
		"sauce":    "n",
		"skillful": "n @ n.l",
		"tasty":    "n @ n.l",
		"prepares": "n.r @ s @ n.l",
	})
	require.NoError(t, err)
	d, err := grammar.Parse(tokens, lexicon)
	require.NoError(t, err)
	return d
}

func TestNew(t *testing.T) {
	_, err := New(map[string]int{"n": 2, "s": 2})
	require.NoError(t, err)

	_, err = New(nil)
	require.Error(t, err)

	_, err = New(map[string]int{"n": 0})
	require.Error(t, err)
}

func TestApply(t *testing.T) {
	a, err := New(map[string]int{"n": 2, "s": 2})
	require.NoError(t, err)

	d := testDiagram(t, "skillful", "man", "prepares", "tasty", "sauce")
	c, err := a.Apply(d)
	require.NoError(t, err)

	require.Equal(t, "skillful man prepares tasty sauce", c.Sentence)
	require.Equal(t, 2, c.OutputSize)
	require.Equal(t, []circuit.Slot{
		{Symbol: "skillful__n@n.l", Shape: []int{2, 2}, Consumed: 0, Left: 1, Right: 4},
		{Symbol: "man__n", Shape: []int{2}, Consumed: 1, Left: 2, Right: 1},
		{Symbol: "prepares__n.r@s@n.l", Shape: []int{2, 2, 2}, Consumed: 1, Left: 2, Right: 4},
		{Symbol: "tasty__n@n.l", Shape: []int{2, 2}, Consumed: 1, Left: 2, Right: 2},
		{Symbol: "sauce__n", Shape: []int{2}, Consumed: 1, Left: 2, Right: 1},
	}, c.Slots)
}

func TestApplyMissingDimension(t *testing.T) {
	a, err := New(map[string]int{"n": 2})
	require.NoError(t, err)

	d := testDiagram(t, "man", "prepares", "sauce")
	_, err = a.Apply(d)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no dimension for type s")
}

func TestSymbolNaming(t *testing.T) {
	noun, err := grammar.ParseType("n")
	require.NoError(t, err)
	verb, err := grammar.ParseType("n.r @ s @ n.l")
	require.NoError(t, err)

	require.Equal(t, "man__n", Symbol("man", noun))
	require.Equal(t, "prepares__n.r@s@n.l", Symbol("prepares", verb))
}
