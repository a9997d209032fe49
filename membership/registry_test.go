package membership_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/membership"
	"daocore/types"
)

func testAddress(t *testing.T, b byte) types.Address {
	t.Helper()
	buf := make([]byte, 20)
	buf[0] = b
	return types.MustNewAddress(types.DAOPrefix, buf)
}

func TestRegistry_MintBurn(t *testing.T) {
	r := membership.NewRegistry()
	addr := testAddress(t, 1)

	require.False(t, r.IsMember(addr))
	require.NoError(t, r.Mint(addr))
	require.True(t, r.IsMember(addr))
	require.EqualValues(t, 1, r.TotalSupply())

	err := r.Mint(addr)
	require.Error(t, err, "cannot mint a second membership token to the same address")

	r.Burn(addr)
	require.False(t, r.IsMember(addr))
	require.EqualValues(t, 0, r.TotalSupply())
}

func TestRegistry_Burn_NonMemberIsNoop(t *testing.T) {
	r := membership.NewRegistry()
	r.Burn(testAddress(t, 2))
	require.EqualValues(t, 0, r.TotalSupply())
}
