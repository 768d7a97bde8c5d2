package symtable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlobalLookup(t *testing.T) {
	tab := New()
	tab.AddGlobal("g", false, 0)

	sym, ok := tab.Lookup("g")
	require.True(t, ok)
	require.Equal(t, Global, sym.Class)

	_, ok = tab.Lookup("missing")
	require.False(t, ok)
}

func TestParameterOffsets(t *testing.T) {
	tab := New()
	tab.AddParameter("a", 0)
	tab.AddParameter("b", 1)

	a, _ := tab.Lookup("a")
	require.Equal(t, 8, a.Offset)

	b, _ := tab.Lookup("b")
	require.Equal(t, 16, b.Offset)
}

func TestLocalsFollowParameters(t *testing.T) {
	tab := New()
	tab.AddParameter("a", 0)
	tab.AddParameter("b", 1)

	local := tab.AddLocal("x")
	require.Equal(t, 24, local.Offset) // 8*(2+1)
}

func TestLocalArrayAdvancesOffsetByElementCount(t *testing.T) {
	tab := New()
	before := tab.FrameSize()
	arr := tab.AddLocalArray("arr", 5)
	require.Equal(t, before+8+4*4, arr.Offset)
	require.True(t, arr.IsArray)
	require.EqualValues(t, 5, arr.Count)
}

func TestReverseLookupPrefersMostRecent(t *testing.T) {
	tab := New()
	first := tab.AddLocal("x")
	second := tab.AddLocal("x")

	got, ok := tab.Lookup("x")
	require.True(t, ok)
	require.Equal(t, second.Offset, got.Offset)
	require.NotEqual(t, first.Offset, got.Offset)
}

func TestMarkAndTruncate(t *testing.T) {
	tab := New()
	tab.AddGlobal("g", false, 0)
	mark := tab.Mark()

	tab.AddLocal("x")
	tab.AddLocal("y")
	require.Equal(t, mark+2, tab.Mark())

	tab.TruncateTo(mark)
	_, ok := tab.Lookup("x")
	require.False(t, ok)

	_, ok = tab.Lookup("g")
	require.True(t, ok)
}

func TestResetKeepsOnlyGlobals(t *testing.T) {
	tab := New()
	tab.AddGlobal("g", false, 0)
	tab.AddParameter("a", 0)
	tab.AddLocal("x")

	tab.Reset()

	_, ok := tab.Lookup("g")
	require.True(t, ok)
	_, ok = tab.Lookup("a")
	require.False(t, ok)
	_, ok = tab.Lookup("x")
	require.False(t, ok)
	require.Equal(t, 0, tab.FrameSize())
}

// Symbol-table state after generating a function equals its state before,
// for all well-formed functions - spec §8 invariant.
func TestStateRoundTripsAcrossFunctionGeneration(t *testing.T) {
	tab := New()
	tab.AddGlobal("g", false, 0)
	before := tab.Mark()

	mark := tab.Mark()
	tab.AddParameter("a", 0)
	tab.AddLocal("x")
	tab.TruncateTo(mark)
	tab.Reset()

	require.Equal(t, before, tab.Mark())
}
