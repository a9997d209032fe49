package redistribution_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/config"
	"daocore/redistribution"
	"daocore/types"
)

func testAddress(t *testing.T, b byte) types.Address {
	t.Helper()
	buf := make([]byte, 20)
	buf[0] = b
	return types.MustNewAddress(types.DAOPrefix, buf)
}

func TestCompute_QuorumNotReached_ReleasesBoundOnly(t *testing.T) {
	winner := testAddress(t, 1)
	unbound := testAddress(t, 2)
	cfg := config.Configuration{}

	out := redistribution.Compute(types.VotingTypeFormal, types.VotingResultQuorumNotReached, cfg, []redistribution.Ballot{
		{Voter: winner, Choice: types.ChoiceInFavor, Stake: types.NewBalance(10)},
		{Voter: unbound, Choice: types.ChoiceAgainst, Stake: types.NewBalance(10), Unbound: true},
	})

	require.Len(t, out.Releases, 1)
	require.Equal(t, winner, out.Releases[0].Voter)
	require.Empty(t, out.Mints)
	require.Empty(t, out.Burns)
}

func TestCompute_InformalStage_NeverBurnsOrMints(t *testing.T) {
	a := testAddress(t, 1)
	b := testAddress(t, 2)
	cfg := config.Configuration{}

	out := redistribution.Compute(types.VotingTypeInformal, types.VotingResultInFavor, cfg, []redistribution.Ballot{
		{Voter: a, Choice: types.ChoiceInFavor, Stake: types.NewBalance(10)},
		{Voter: b, Choice: types.ChoiceAgainst, Stake: types.NewBalance(10)},
	})

	require.Len(t, out.Releases, 2)
	require.Empty(t, out.Mints)
	require.Empty(t, out.Burns)
}

func TestCompute_FormalInFavor_BurnsLosersAndMintsWinnersProportionally(t *testing.T) {
	winnerA := testAddress(t, 1)
	winnerB := testAddress(t, 2)
	loser := testAddress(t, 3)
	cfg := config.Configuration{GovernanceWallet: testAddress(t, 0xAA)}

	out := redistribution.Compute(types.VotingTypeFormal, types.VotingResultInFavor, cfg, []redistribution.Ballot{
		{Voter: winnerA, Choice: types.ChoiceInFavor, Stake: types.NewBalance(10)},
		{Voter: winnerB, Choice: types.ChoiceInFavor, Stake: types.NewBalance(30)},
		{Voter: loser, Choice: types.ChoiceAgainst, Stake: types.NewBalance(20)},
	})

	require.Len(t, out.Burns, 1)
	require.Equal(t, loser, out.Burns[0].Voter)
	require.Equal(t, "20", out.Burns[0].Amount.String())

	require.Len(t, out.Releases, 2)

	require.Len(t, out.Mints, 2, "both bound winners receive a proportional share of the loser's stake")
	shares := map[types.Address]string{}
	for _, m := range out.Mints {
		shares[m.Voter] = m.Amount.String()
	}
	require.Equal(t, "5", shares[winnerA], "winnerA holds 1/4 of the winning stake, so gets 1/4 of 20")
	require.Equal(t, "15", shares[winnerB], "winnerB holds 3/4 of the winning stake, so gets 3/4 of 20")
}

func TestCompute_FormalInFavor_UnboundWinnerReceivesPassiveMintOnly(t *testing.T) {
	unboundWinner := testAddress(t, 1)
	loser := testAddress(t, 2)
	cfg := config.Configuration{GovernanceWallet: testAddress(t, 0xAA)}

	out := redistribution.Compute(types.VotingTypeFormal, types.VotingResultInFavor, cfg, []redistribution.Ballot{
		{Voter: unboundWinner, Choice: types.ChoiceInFavor, Stake: types.NewBalance(10), Unbound: true},
		{Voter: loser, Choice: types.ChoiceAgainst, Stake: types.NewBalance(20)},
	})

	require.Empty(t, out.Releases, "an unbound ballot's stake was never locked, so there is nothing to release")
	require.Len(t, out.Mints, 1)
	require.True(t, out.Mints[0].Passive)
	require.Equal(t, "20", out.Mints[0].Amount.String())
}

func TestCompute_FormalAgainst_DustRoutesToGovernanceWallet(t *testing.T) {
	winnerA := testAddress(t, 1)
	winnerB := testAddress(t, 4)
	loserA := testAddress(t, 2)
	loserB := testAddress(t, 3)
	wallet := testAddress(t, 0xAA)
	cfg := config.Configuration{GovernanceWallet: wallet}

	out := redistribution.Compute(types.VotingTypeFormal, types.VotingResultAgainst, cfg, []redistribution.Ballot{
		{Voter: winnerA, Choice: types.ChoiceAgainst, Stake: types.NewBalance(10)},
		{Voter: winnerB, Choice: types.ChoiceAgainst, Stake: types.NewBalance(10)},
		{Voter: loserA, Choice: types.ChoiceInFavor, Stake: types.NewBalance(13)},
		{Voter: loserB, Choice: types.ChoiceInFavor, Stake: types.NewBalance(12)},
	})

	require.Len(t, out.Burns, 2)
	var dustMint *redistribution.Mint
	for i := range out.Mints {
		if out.Mints[i].Voter == wallet {
			dustMint = &out.Mints[i]
		}
	}
	require.NotNil(t, dustMint, "integer-division remainder must not vanish")
	require.Equal(t, redistribution.ReasonRedistributionDust, dustMint.Reason)
}
