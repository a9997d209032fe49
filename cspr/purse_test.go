package cspr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/cspr"
	"daocore/types"
)

func testAddress(t *testing.T, b byte) types.Address {
	t.Helper()
	buf := make([]byte, 20)
	buf[0] = b
	return types.MustNewAddress(types.DAOPrefix, buf)
}

func TestPurse_DepositWithdraw(t *testing.T) {
	p := cspr.NewPurse()
	addr := testAddress(t, 1)

	p.Deposit(addr, types.NewBalance(100))
	require.Equal(t, "100", p.BalanceOf(addr).String())

	require.NoError(t, p.Withdraw(addr, types.NewBalance(40)))
	require.Equal(t, "60", p.BalanceOf(addr).String())

	err := p.Withdraw(addr, types.NewBalance(1000))
	require.Error(t, err)
	require.Equal(t, "60", p.BalanceOf(addr).String(), "failed withdraw leaves balance untouched")
}

func TestPurse_Transfer(t *testing.T) {
	p := cspr.NewPurse()
	from := testAddress(t, 2)
	to := testAddress(t, 3)
	p.Deposit(from, types.NewBalance(50))

	require.NoError(t, p.Transfer(from, to, types.NewBalance(20)))
	require.Equal(t, "30", p.BalanceOf(from).String())
	require.Equal(t, "20", p.BalanceOf(to).String())

	err := p.Transfer(from, to, types.NewBalance(1000))
	require.Error(t, err)
}
