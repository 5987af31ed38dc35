package grammar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	parsed, err := ParseType("n.r @ s @ n.l")
	require.NoError(t, err)
	require.Equal(t, Type{
		{Base: "n", Adjoint: RightAdjoint},
		{Base: "s", Adjoint: Plain},
		{Base: "n", Adjoint: LeftAdjoint},
	}, parsed)
	require.Equal(t, "n.r@s@n.l", parsed.String())

	compact, err := ParseType("n@n.l")
	require.NoError(t, err)
	require.Equal(t, Type{
		{Base: "n", Adjoint: Plain},
		{Base: "n", Adjoint: LeftAdjoint},
	}, compact)

	single, err := ParseType("s")
	require.NoError(t, err)
	require.Equal(t, Type{{Base: "s", Adjoint: Plain}}, single)
}

func TestParseTypeErrors(t *testing.T) {
	for _, invalid := range []string{"", "n @@ s", "n. @ s", ".l", "n n"} {
		_, err := ParseType(invalid)
		require.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestSimpleCancels(t *testing.T) {
	n := Simple{Base: "n", Adjoint: Plain}
	nl := Simple{Base: "n", Adjoint: LeftAdjoint}
	nr := Simple{Base: "n", Adjoint: RightAdjoint}
	s := Simple{Base: "s", Adjoint: Plain}

	require.True(t, n.cancels(nr))
	require.True(t, nl.cancels(n))
	require.False(t, n.cancels(nl))
	require.False(t, nr.cancels(n))
	require.False(t, n.cancels(s))
}
