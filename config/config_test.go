package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/config"
	"daocore/types"
	"daocore/variables"
)

func testAddress(t *testing.T, b byte) types.Address {
	t.Helper()
	buf := make([]byte, 20)
	buf[0] = b
	return types.MustNewAddress(types.DAOPrefix, buf)
}

func seedRepository(t *testing.T) *variables.Repository {
	t.Helper()
	repo := variables.New(variables.NewMemoryState(), func() uint64 { return 1000 })

	set := func(key, value string) {
		require.NoError(t, repo.UpdateAt(key, []byte(value), nil))
	}
	set(config.KeyPostJobDosFee, "10")
	set(config.KeyDefaultPolicingRate, "300")
	set(config.KeyReputationConversionRate, "500")
	set(config.KeyBidEscrowPaymentRatio, "500")
	set(config.KeyDefaultReputationSlash, "500")
	set(config.KeyInternalAuctionTime, "3600")
	set(config.KeyPublicAuctionTime, "3600")
	set(config.KeyInformalVotingTime, "86400")
	set(config.KeyFormalVotingTime, "172800")
	set(config.KeyBidEscrowInformalVotingTime, "43200")
	set(config.KeyBidEscrowFormalVotingTime, "86400")
	set(config.KeyTimeBetweenInformalAndFormalVoting, "3600")
	set(config.KeyVaBidAcceptanceTimeout, "3600")
	set(config.KeyVotingDelayAfterJobWorkerSubmission, "3600")
	set(config.KeyCancelFinishedVotingTimeout, "604800")
	set(config.KeyInformalQuorumRatio, "500")
	set(config.KeyFormalQuorumRatio, "500")
	set(config.KeyBidEscrowInformalQuorumRatio, "500")
	set(config.KeyBidEscrowFormalQuorumRatio, "500")
	set(config.KeyInformalStakeReputation, "true")
	set(config.KeyVaCanBidOnPublicAuction, "true")
	set(config.KeyDistributePaymentToNonVoters, "true")
	set(config.KeyForumKycRequired, "false")
	set(config.KeyOnlyVaCanCreate, "false")
	set(config.KeyDoubleTimeBetweenVotings, "true")
	set(config.KeyVotingClearnessDelta, "50")
	set(config.KeyGovernanceWallet, testAddress(t, 0xAA).String())
	return repo
}

func TestResolver_Build_DerivesQuorumFromMemberCount(t *testing.T) {
	resolver := config.NewResolver(seedRepository(t), nil)

	cfg, err := resolver.Build(10)
	require.NoError(t, err)
	require.EqualValues(t, 5, cfg.InformalQuorum)
	require.EqualValues(t, 5, cfg.FormalQuorum)
	require.Equal(t, "10", cfg.PostJobDosFee.String())
}

func TestResolver_Build_MissingKeyFails(t *testing.T) {
	repo := variables.New(variables.NewMemoryState(), func() uint64 { return 1000 })
	resolver := config.NewResolver(repo, nil)

	_, err := resolver.Build(10)
	require.Error(t, err)
}

func TestResolver_Build_RejectsOutOfRangeRatio(t *testing.T) {
	repo := seedRepository(t)
	require.NoError(t, repo.UpdateAt(config.KeyFormalQuorumRatio, []byte("0"), nil))
	resolver := config.NewResolver(repo, nil)

	_, err := resolver.Build(10)
	require.Error(t, err)
}

type fixedRateOracle struct{ rate types.Balance }

func (f fixedRateOracle) Rate() (types.Balance, error) { return f.rate, nil }

func TestIsBidEscrowOverride_RequiresFiatRate(t *testing.T) {
	repo := seedRepository(t)
	resolver := config.NewResolver(repo, nil)

	_, err := resolver.Build(10, config.IsBidEscrowOverride(resolver, 43200, 86400, 500, 500))
	require.Error(t, err)

	resolverWithOracle := config.NewResolver(repo, fixedRateOracle{rate: types.NewBalance(2)})
	cfg, err := resolverWithOracle.Build(10, config.IsBidEscrowOverride(resolverWithOracle, 43200, 86400, 500, 500))
	require.NoError(t, err)
	require.True(t, cfg.IsBidEscrow)
	require.NotNil(t, cfg.FiatRate)
	require.EqualValues(t, 43200, cfg.InformalVotingTime)
}
