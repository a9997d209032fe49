package types_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/types"
)

func TestBalance_MulPerMille_FloorsDust(t *testing.T) {
	cases := []struct {
		name     string
		amount   int64
		perMille uint32
		want     int64
	}{
		{"exact", 1000, 300, 300},
		{"floors remainder", 7, 300, 2},
		{"zero rate", 1000, 0, 0},
		{"full rate", 1000, 1000, 1000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := types.NewBalance(c.amount).MulPerMille(c.perMille)
			require.Equal(t, types.NewBalance(c.want).String(), got.String())
		})
	}
}

func TestBalance_MulDivFloor_NeverOverflows256Bits(t *testing.T) {
	// A pair of 2^250 values, whose product (2^500) lies far beyond 2^256,
	// still multiplies correctly, the motivating reason math/big replaces a
	// uint256-style fixed-width type for this Balance.
	huge := new(big.Int).Lsh(big.NewInt(1), 250)
	a := types.FromBigInt(huge)
	b := types.FromBigInt(huge)
	den := types.NewBalance(1)

	got := a.MulDivFloor(b, den)
	want := new(big.Int).Mul(huge, huge)
	require.Equal(t, want.String(), got.String())
}

func TestBalance_SafeSub(t *testing.T) {
	five := types.NewBalance(5)
	three := types.NewBalance(3)

	diff, ok := five.SafeSub(three)
	require.True(t, ok)
	require.Equal(t, "2", diff.String())

	_, ok = three.SafeSub(five)
	require.False(t, ok)
}

func TestParseBalance_RejectsNegative(t *testing.T) {
	_, err := types.ParseBalance("-1")
	require.Error(t, err)
}

func TestBalance_JSONRoundTrip(t *testing.T) {
	b := types.NewBalance(42)
	blob, err := b.MarshalJSON()
	require.NoError(t, err)

	var out types.Balance
	require.NoError(t, out.UnmarshalJSON(blob))
	require.Equal(t, b.String(), out.String())
}
