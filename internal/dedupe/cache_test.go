package dedupe_test

import (
	"testing"

	"github.com/DeafMist/fed-landscape-radar/internal/dedupe"
	"github.com/stretchr/testify/require"
)

func TestOrderedFirstWins(t *testing.T) {
	o := dedupe.NewOrdered[int](2)
	require.False(t, o.IsSeen("alpha"))
	require.True(t, o.Add("alpha", 1))
	require.True(t, o.IsSeen("alpha"))
	require.False(t, o.Add("alpha", 2))
	require.Equal(t, []int{1}, o.Values(0))
}

func TestOrderedKeepsInsertionOrder(t *testing.T) {
	o := dedupe.NewOrdered[string](0)
	for _, k := range []string{"c", "a", "b", "a", "c"} {
		o.Add(k, k+"!")
	}
	require.Equal(t, 3, o.Len())
	require.Equal(t, []string{"c!", "a!", "b!"}, o.Values(0))
	require.Equal(t, []string{"c!", "a!"}, o.Values(2))
	require.Equal(t, []string{"c!", "a!", "b!"}, o.Values(10))
}
