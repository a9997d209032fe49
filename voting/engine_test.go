package voting_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/config"
	"daocore/idgen"
	"daocore/membership"
	"daocore/reputation"
	"daocore/types"
	"daocore/voting"
)

func testAddress(t *testing.T, b byte) types.Address {
	t.Helper()
	buf := make([]byte, 20)
	buf[0] = b
	return types.MustNewAddress(types.DAOPrefix, buf)
}

type testEngine struct {
	eng    *voting.Engine
	ledger *reputation.Ledger
	reg    *membership.Registry
	now    uint64
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	te := &testEngine{
		eng:    voting.NewEngine(),
		ledger: reputation.NewLedger(),
		reg:    membership.NewRegistry(),
	}
	te.eng.SetState(voting.NewMemoryState())
	te.eng.SetReputationLedger(te.ledger)
	te.eng.SetMembership(te.reg)
	te.eng.SetIdGenerator(&idgen.VotingIds{})
	te.eng.SetClock(func() uint64 { return te.now })
	return te
}

func baseConfig() config.Configuration {
	return config.Configuration{
		InformalQuorum:                1,
		FormalQuorum:                  1,
		InformalVotingTime:            100,
		FormalVotingTime:              100,
		TimeBetweenInformalAndFormalVoting: 50,
		DefaultPolicingRate:           300,
		VotingClearnessDelta:          types.NewBalance(5),
		GovernanceWallet:              types.MustNewAddress(types.DAOPrefix, make([]byte, 20)),
		InformalStakeReputation:       true,
	}
}

func TestEngine_FormalInFavor_BurnsLosersAndMintsWinners(t *testing.T) {
	te := newTestEngine(t)
	creator := testAddress(t, 1)
	loser := testAddress(t, 2)

	te.ledger.Mint(creator, types.NewBalance(100))
	te.ledger.Mint(loser, types.NewBalance(100))

	cfg := baseConfig()
	v, err := te.eng.CreateVoting(creator, types.NewBalance(20), false, cfg)
	require.NoError(t, err)

	require.NoError(t, te.eng.Vote(loser, v.Id, types.VotingTypeInformal, types.ChoiceAgainst, types.NewBalance(10)))

	te.now = cfg.InformalVotingTime + 1
	_, err = te.eng.FinishVoting(v.Id, types.VotingTypeInformal)
	require.NoError(t, err)

	te.now += cfg.TimeBetweenInformalAndFormalVoting + 1
	_, err = te.eng.FinishVoting(v.Id, types.VotingTypeFormal)
	require.Error(t, err, "finishing formal also starts it, so the window cannot have elapsed yet")

	require.NoError(t, te.eng.Vote(loser, v.Id, types.VotingTypeFormal, types.ChoiceAgainst, types.NewBalance(10)))
	require.Equal(t, "90", te.ledger.BalanceOf(loser).String(), "formal stake locked out of free balance")

	te.now += cfg.FormalVotingTime + 1
	summary, err := te.eng.FinishVoting(v.Id, types.VotingTypeFormal)
	require.NoError(t, err)
	require.Equal(t, types.VotingResultInFavor, summary.Result)

	require.Equal(t, "80", te.ledger.BalanceOf(loser).String(), "loser's locked formal stake is burned on top of the earlier lock")
	require.Equal(t, "110", te.ledger.BalanceOf(creator).String(), "winner's stake is released plus its proportional share of the burned loser stake")
}

func TestEngine_QuorumNotReached_ReleasesStakeWithoutRedistribution(t *testing.T) {
	te := newTestEngine(t)
	creator := testAddress(t, 3)
	te.ledger.Mint(creator, types.NewBalance(100))

	cfg := baseConfig()
	cfg.InformalQuorum = 5

	v, err := te.eng.CreateVoting(creator, types.NewBalance(10), false, cfg)
	require.NoError(t, err)

	te.now = cfg.InformalVotingTime + 1
	summary, err := te.eng.FinishVoting(v.Id, types.VotingTypeInformal)
	require.NoError(t, err)
	require.Equal(t, types.VotingResultQuorumNotReached, summary.Result)
	require.Equal(t, "100", te.ledger.BalanceOf(creator).String(), "stake is released in full, nothing burned or minted")
}

func TestEngine_Vote_RejectsDoubleVoting(t *testing.T) {
	te := newTestEngine(t)
	creator := testAddress(t, 4)
	voter := testAddress(t, 5)
	te.ledger.Mint(creator, types.NewBalance(100))
	te.ledger.Mint(voter, types.NewBalance(100))

	cfg := baseConfig()
	v, err := te.eng.CreateVoting(creator, types.NewBalance(10), false, cfg)
	require.NoError(t, err)

	require.NoError(t, te.eng.Vote(voter, v.Id, types.VotingTypeInformal, types.ChoiceInFavor, types.NewBalance(5)))
	err = te.eng.Vote(voter, v.Id, types.VotingTypeInformal, types.ChoiceInFavor, types.NewBalance(5))
	require.Error(t, err)
}

func TestEngine_SlashVoter_CancelsBallotAndReleasesStake(t *testing.T) {
	te := newTestEngine(t)
	creator := testAddress(t, 6)
	voter := testAddress(t, 7)
	te.ledger.Mint(creator, types.NewBalance(100))
	te.ledger.Mint(voter, types.NewBalance(100))

	cfg := baseConfig()
	v, err := te.eng.CreateVoting(creator, types.NewBalance(10), false, cfg)
	require.NoError(t, err)
	require.NoError(t, te.eng.Vote(voter, v.Id, types.VotingTypeInformal, types.ChoiceAgainst, types.NewBalance(30)))

	affected, err := te.eng.SlashVoter(voter)
	require.NoError(t, err)
	require.Len(t, affected, 1)
	require.Equal(t, "100", te.ledger.BalanceOf(voter).String(), "slashed voter's locked stake is released back")
}
