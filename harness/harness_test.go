package harness_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/harness"
	"daocore/types"
)

func newTestCore(t *testing.T) *harness.Core {
	t.Helper()
	cfg, err := harness.LoadConfig("")
	require.NoError(t, err)

	core, err := harness.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core
}

func testAddress(t *testing.T, b byte) types.Address {
	t.Helper()
	buf := make([]byte, 20)
	buf[0] = b
	return types.MustNewAddress(types.DAOPrefix, buf)
}

// TestCore_HealthEndpoint exercises the composition root built by Handler:
// the go-chi router wired straight from the harness's own engines.
func TestCore_HealthEndpoint(t *testing.T) {
	core := newTestCore(t)

	srv := httptest.NewServer(core.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestCore_OnboardingEndToEnd drives a full onboarding request through the
// harness-wired Onboarding and Voting engines: informal stage, the
// between-votings gap, and formal stage, ending in membership and
// reputation being granted from an empty registry (member count zero keeps
// every quorum at zero, matching spec §4.1's CeilRatio(_, 0) == 0).
func TestCore_OnboardingEndToEnd(t *testing.T) {
	core := newTestCore(t)
	requester := testAddress(t, 0x01)
	stake := types.NewBalance(100)

	v, err := core.Onboarding.CreateVoting(requester, "please let me join", stake)
	require.NoError(t, err)
	require.False(t, core.Membership.IsMember(requester))

	core.Tick(core.Config.Variables.InformalVotingTime + 1)
	_, err = core.Voting.FinishVoting(v.Id, types.VotingTypeFormal)
	require.Error(t, err, "formal stage cannot finish before the informal stage has")

	_, err = core.Voting.FinishVoting(v.Id, types.VotingTypeInformal)
	require.NoError(t, err)

	gap := core.Config.Variables.TimeBetweenInformalAndFormalVoting * 2
	core.Tick(gap + 1)

	_, err = core.Onboarding.FinishVoting(v.Id)
	require.Error(t, err, "starting the formal stage does not also satisfy its own voting window")

	core.Tick(core.Config.Variables.FormalVotingTime + 1)
	summary, err := core.Onboarding.FinishVoting(v.Id)
	require.NoError(t, err)
	require.Equal(t, types.VotingResultInFavor, summary.Result)

	require.True(t, core.Membership.IsMember(requester))
	require.True(t, core.Reputation.BalanceOf(requester).Sign() > 0)

	_, err = core.Onboarding.FinishVoting(v.Id)
	require.Error(t, err, "a resolved onboarding request cannot be finished twice")
}

// TestCore_BidEscrowRequiresFiatRate proves the bid-escrow configuration
// path genuinely depends on the oracle collaborator, rather than silently
// defaulting: PostJobOffer fails until SetRate has been called.
func TestCore_BidEscrowRequiresFiatRate(t *testing.T) {
	core := newTestCore(t)
	poster := testAddress(t, 0x02)
	require.NoError(t, core.Kyc.Mint(poster))
	core.Purse.Deposit(poster, types.NewBalance(1000))

	_, err := core.Bidescrow.PostJobOffer(poster, 3600, types.NewBalance(500), types.NewBalance(10))
	require.Error(t, err)

	core.Oracle.SetRate(types.NewBalance(1))
	offer, err := core.Bidescrow.PostJobOffer(poster, 3600, types.NewBalance(500), types.NewBalance(10))
	require.NoError(t, err)
	require.Equal(t, poster, offer.Poster)
}
