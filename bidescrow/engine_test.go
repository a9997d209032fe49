package bidescrow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/bidescrow"
	"daocore/config"
	"daocore/cspr"
	"daocore/idgen"
	"daocore/kyc"
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

type testHarness struct {
	engine *bidescrow.Engine
	state  *bidescrow.MemoryState
	vote   *voting.Engine
	purse  *cspr.Purse
	rep    *reputation.Ledger
	mem    *membership.Registry
	kycReg *kyc.Registry
	now    uint64
}

func newTestHarness(t *testing.T, cfg config.Configuration) *testHarness {
	t.Helper()
	h := &testHarness{
		vote:   voting.NewEngine(),
		purse:  cspr.NewPurse(),
		rep:    reputation.NewLedger(),
		mem:    membership.NewRegistry(),
		kycReg: kyc.NewRegistry(),
	}
	h.vote.SetState(voting.NewMemoryState())
	h.vote.SetReputationLedger(h.rep)
	h.vote.SetMembership(h.mem)
	h.vote.SetIdGenerator(&idgen.VotingIds{})
	h.vote.SetClock(func() uint64 { return h.now })

	h.state = bidescrow.NewMemoryState()
	h.engine = bidescrow.NewEngine()
	h.engine.SetState(h.state)
	h.engine.SetClock(func() uint64 { return h.now })
	h.engine.SetReputation(h.rep)
	h.engine.SetPurse(h.purse)
	h.engine.SetMembership(h.mem)
	h.engine.SetKyc(h.kycReg)
	h.engine.SetVotingEngine(h.vote)
	h.engine.SetConfigBuilder(func(uint64) (config.Configuration, error) { return cfg, nil })
	h.engine.SetIdGenerators(bidescrow.IdGenerators{
		Offers: &idgen.JobOfferIds{},
		Bids:   &idgen.BidIds{},
		Jobs:   &idgen.JobIds{},
	})
	h.engine.SetMemberCount(func() uint64 { return 0 })
	return h
}

func baseConfig(wallet types.Address) config.Configuration {
	return config.Configuration{
		PostJobDosFee:                       types.NewBalance(5),
		InternalAuctionTime:                 1000,
		PublicAuctionTime:                   1000,
		VaBidAcceptanceTimeout:              1000,
		VotingDelayAfterJobWorkerSubmission: 10,
		InformalVotingTime:                  100,
		FormalVotingTime:                    100,
		TimeBetweenInformalAndFormalVoting:  50,
		DefaultPolicingRate:                 300,
		BidEscrowPaymentRatio:               100,
		ReputationConversionRate:            500,
		GovernanceWallet:                    wallet,
	}
}

func TestPostJobOffer_RejectsUnkycedPoster(t *testing.T) {
	wallet := testAddress(t, 0xAA)
	h := newTestHarness(t, baseConfig(wallet))
	poster := testAddress(t, 1)

	_, err := h.engine.PostJobOffer(poster, 500, types.NewBalance(100), types.NewBalance(5))
	require.Error(t, err)
}

func TestPostJobOffer_RejectsInsufficientDosFee(t *testing.T) {
	wallet := testAddress(t, 0xAA)
	h := newTestHarness(t, baseConfig(wallet))
	poster := testAddress(t, 1)
	require.NoError(t, h.kycReg.Mint(poster))

	_, err := h.engine.PostJobOffer(poster, 500, types.NewBalance(100), types.NewBalance(1))
	require.Error(t, err)
}

func TestSubmitBid_NonMemberStakesCSPRNotReputation(t *testing.T) {
	wallet := testAddress(t, 0xAA)
	h := newTestHarness(t, baseConfig(wallet))
	poster := testAddress(t, 1)
	worker := testAddress(t, 2)
	require.NoError(t, h.kycReg.Mint(poster))

	offer, err := h.engine.PostJobOffer(poster, 500, types.NewBalance(100), types.NewBalance(5))
	require.NoError(t, err)

	// Non-members can only enter the public leg of the auction.
	h.now = baseConfig(wallet).InternalAuctionTime
	_, err = h.engine.SubmitBid(offer.Id, worker, 50, types.NewBalance(40), types.Zero, types.NewBalance(10), false)
	require.NoError(t, err)
	require.Equal(t, "10", h.purse.BalanceOf(worker).String(), "a non-member's CSPR stake is escrowed under their own address")
}

func TestSubmitBid_RejectsMixedStake(t *testing.T) {
	wallet := testAddress(t, 0xAA)
	h := newTestHarness(t, baseConfig(wallet))
	poster := testAddress(t, 1)
	worker := testAddress(t, 2)
	require.NoError(t, h.kycReg.Mint(poster))
	require.NoError(t, h.mem.Mint(worker))
	h.rep.Mint(worker, types.NewBalance(100))

	offer, err := h.engine.PostJobOffer(poster, 500, types.NewBalance(100), types.NewBalance(5))
	require.NoError(t, err)

	_, err = h.engine.SubmitBid(offer.Id, worker, 50, types.NewBalance(40), types.NewBalance(10), types.NewBalance(10), false)
	require.Error(t, err, "exactly one of reputation or CSPR stake must be positive")
}

func TestPickBid_RejectsSiblingBidsAndRefundsThem(t *testing.T) {
	wallet := testAddress(t, 0xAA)
	h := newTestHarness(t, baseConfig(wallet))
	poster := testAddress(t, 1)
	winner := testAddress(t, 2)
	loser := testAddress(t, 3)
	require.NoError(t, h.kycReg.Mint(poster))

	offer, err := h.engine.PostJobOffer(poster, 500, types.NewBalance(100), types.NewBalance(5))
	require.NoError(t, err)

	// Non-members can only enter the public leg of the auction.
	h.now = baseConfig(wallet).InternalAuctionTime
	winningBid, err := h.engine.SubmitBid(offer.Id, winner, 50, types.NewBalance(40), types.Zero, types.NewBalance(10), false)
	require.NoError(t, err)
	losingBid, err := h.engine.SubmitBid(offer.Id, loser, 60, types.NewBalance(50), types.Zero, types.NewBalance(20), false)
	require.NoError(t, err)

	job, err := h.engine.PickBid(offer.Id, winningBid.Id, poster, types.NewBalance(40))
	require.NoError(t, err)
	require.Equal(t, winner, job.Worker)

	require.True(t, h.purse.BalanceOf(loser).IsZero(), "the rejected sibling's CSPR stake is withdrawn back out on refund")
	_ = losingBid
}

func TestFinishJobVoting_QuorumNotReached_ReturnsEscrowedCSPR(t *testing.T) {
	wallet := testAddress(t, 0xAA)
	cfg := baseConfig(wallet)
	// A single unbound ballot (the worker's own) is cast automatically when
	// the voting is created; requiring two formal votes guarantees the
	// formal stage itself misses quorum even though the informal stage
	// (same single ballot, lower threshold) passes.
	cfg.FormalQuorum = 2
	h := newTestHarness(t, cfg)
	poster := testAddress(t, 1)
	worker := testAddress(t, 2)
	require.NoError(t, h.kycReg.Mint(poster))
	require.NoError(t, h.mem.Mint(worker))
	h.rep.Mint(worker, types.NewBalance(100))

	offer, err := h.engine.PostJobOffer(poster, 500, types.NewBalance(100), types.NewBalance(5))
	require.NoError(t, err)

	bid, err := h.engine.SubmitBid(offer.Id, worker, 50, types.NewBalance(40), types.NewBalance(10), types.Zero, false)
	require.NoError(t, err)

	job, err := h.engine.PickBid(offer.Id, bid.Id, poster, types.NewBalance(40))
	require.NoError(t, err)

	require.NoError(t, h.engine.SubmitJobProof(job.Id, worker, []byte("proof")))

	h.now = 11
	require.NoError(t, h.engine.CreatePendingVoting(job.Id))
	job, ok := h.state.GetJob(job.Id)
	require.True(t, ok)
	require.NotNil(t, job.VotingId)

	h.now = 11 + cfg.InformalVotingTime + 1
	_, err = h.vote.FinishVoting(*job.VotingId, types.VotingTypeInformal)
	require.NoError(t, err)

	h.now += cfg.TimeBetweenInformalAndFormalVoting*2 + 1
	_, err = h.engine.FinishJobVoting(job.Id)
	require.Error(t, err, "this call itself starts the formal stage, so its own window cannot have elapsed yet")

	h.now += cfg.FormalVotingTime + 1
	summary, err := h.engine.FinishJobVoting(job.Id)
	require.NoError(t, err)
	require.Equal(t, types.VotingResultQuorumNotReached, summary.Result)

	job, ok = h.state.GetJob(job.Id)
	require.True(t, ok)
	require.Equal(t, bidescrow.JobNotCompleted, job.Status)
	require.Equal(t, "5", h.purse.BalanceOf(poster).String(), "45 escrowed (5 DOS fee + 40 payment) minus the 40 payment withdrawn back out leaves the DOS fee behind")
}

func TestFinishJobVoting_InFavor_SettlesPaymentGovernanceCutAndRedistribution(t *testing.T) {
	wallet := testAddress(t, 0xAA)
	cfg := baseConfig(wallet)
	cfg.DistributePaymentToNonVoters = true
	h := newTestHarness(t, cfg)
	poster := testAddress(t, 1)
	worker := testAddress(t, 2)
	require.NoError(t, h.kycReg.Mint(poster))
	require.NoError(t, h.mem.Mint(worker))
	h.rep.Mint(worker, types.NewBalance(100))

	offer, err := h.engine.PostJobOffer(poster, 500, types.NewBalance(100), types.NewBalance(5))
	require.NoError(t, err)

	bid, err := h.engine.SubmitBid(offer.Id, worker, 50, types.NewBalance(40), types.NewBalance(10), types.Zero, false)
	require.NoError(t, err)

	job, err := h.engine.PickBid(offer.Id, bid.Id, poster, types.NewBalance(40))
	require.NoError(t, err)

	require.NoError(t, h.engine.SubmitJobProof(job.Id, worker, []byte("proof")))

	h.now = 11
	require.NoError(t, h.engine.CreatePendingVoting(job.Id))
	job, ok := h.state.GetJob(job.Id)
	require.True(t, ok)
	require.NotNil(t, job.VotingId)

	h.now = 11 + cfg.InformalVotingTime + 1
	_, err = h.vote.FinishVoting(*job.VotingId, types.VotingTypeInformal)
	require.NoError(t, err)

	h.now += cfg.TimeBetweenInformalAndFormalVoting*2 + 1
	_, err = h.engine.FinishJobVoting(job.Id)
	require.Error(t, err, "this call itself starts the formal stage, so its own window cannot have elapsed yet")

	h.now += cfg.FormalVotingTime + 1
	summary, err := h.engine.FinishJobVoting(job.Id)
	require.NoError(t, err)
	require.Equal(t, types.VotingResultInFavor, summary.Result)

	job, ok = h.state.GetJob(job.Id)
	require.True(t, ok)
	require.Equal(t, bidescrow.JobCompleted, job.Status)

	// payment=40, governance cut at 10%=4, remainder=36, redistribution
	// cut at 30%=floor(36*300/1000)=10, worker share=36-10=26. The
	// redistribution cut is split against the reputation ledger's total
	// minted supply (100), not the sum of currently free balances: worker
	// holds a free balance of 90 (100 minted, less the 10 staked for the
	// bid; the informal/formal ballots stay unbound by default and never
	// lock further reputation), so worker's share is floor(10*90/100)=9
	// and the floor-division remainder of 1 routes to the governance
	// wallet: worker gets 26+9=35, wallet gets 4+1=5.
	require.Equal(t, "35", h.purse.BalanceOf(worker).String())
	require.Equal(t, "5", h.purse.BalanceOf(wallet).String())
}

func TestFinishJobVoting_Against_RefundsPaymentAndDosFeeToPoster(t *testing.T) {
	wallet := testAddress(t, 0xAA)
	cfg := baseConfig(wallet)
	h := newTestHarness(t, cfg)
	poster := testAddress(t, 1)
	worker := testAddress(t, 2)
	objector := testAddress(t, 3)
	require.NoError(t, h.kycReg.Mint(poster))
	require.NoError(t, h.mem.Mint(worker))
	require.NoError(t, h.mem.Mint(objector))
	h.rep.Mint(worker, types.NewBalance(100))
	h.rep.Mint(objector, types.NewBalance(1000))

	offer, err := h.engine.PostJobOffer(poster, 500, types.NewBalance(100), types.NewBalance(5))
	require.NoError(t, err)

	bid, err := h.engine.SubmitBid(offer.Id, worker, 50, types.NewBalance(40), types.NewBalance(10), types.Zero, false)
	require.NoError(t, err)

	job, err := h.engine.PickBid(offer.Id, bid.Id, poster, types.NewBalance(40))
	require.NoError(t, err)

	require.NoError(t, h.engine.SubmitJobProof(job.Id, worker, []byte("proof")))

	h.now = 11
	require.NoError(t, h.engine.CreatePendingVoting(job.Id))
	job, ok := h.state.GetJob(job.Id)
	require.True(t, ok)
	votingId := *job.VotingId

	require.NoError(t, h.vote.Vote(objector, votingId, types.VotingTypeInformal, types.ChoiceAgainst, types.NewBalance(500)))

	h.now = 11 + cfg.InformalVotingTime + 1
	_, err = h.vote.FinishVoting(votingId, types.VotingTypeInformal)
	require.NoError(t, err)

	h.now += cfg.TimeBetweenInformalAndFormalVoting*2 + 1
	require.NoError(t, h.vote.Vote(objector, votingId, types.VotingTypeFormal, types.ChoiceAgainst, types.NewBalance(500)))

	h.now += cfg.FormalVotingTime + 1
	summary, err := h.engine.FinishJobVoting(job.Id)
	require.NoError(t, err)
	require.Equal(t, types.VotingResultAgainst, summary.Result)

	job, ok = h.state.GetJob(job.Id)
	require.True(t, ok)
	require.Equal(t, bidescrow.JobCancelled, job.Status)
	require.True(t, h.purse.BalanceOf(poster).IsZero(), "the job payment and the DOS fee both leave escrow entirely via Withdraw back to the poster")
}
