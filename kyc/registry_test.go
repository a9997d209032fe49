package kyc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/kyc"
	"daocore/types"
)

func testAddress(t *testing.T, b byte) types.Address {
	t.Helper()
	buf := make([]byte, 20)
	buf[0] = b
	return types.MustNewAddress(types.DAOPrefix, buf)
}

func TestRegistry_MintBurn(t *testing.T) {
	r := kyc.NewRegistry()
	addr := testAddress(t, 1)

	require.False(t, r.IsKYCed(addr))
	require.NoError(t, r.Mint(addr))
	require.True(t, r.IsKYCed(addr))

	err := r.Mint(addr)
	require.Error(t, err)

	r.Burn(addr)
	require.False(t, r.IsKYCed(addr))
}
