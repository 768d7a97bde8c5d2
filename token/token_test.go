package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupIdentifier(t *testing.T) {
	for key, val := range keywords {
		require.Equal(t, val, LookupIdentifier(key))
	}

	require.Equal(t, IDENT, LookupIdentifier("counter"))
	require.Equal(t, IDENT, LookupIdentifier("printf"))
}

func TestPosString(t *testing.T) {
	p := Pos{Line: 3, Col: 7}
	require.Equal(t, "line 3, col 7", p.String())
}
