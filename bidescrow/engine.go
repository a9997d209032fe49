package bidescrow

import (
	"daocore/config"
	"daocore/daoerrors"
	"daocore/events"
	"daocore/idgen"
	"daocore/reputation"
	"daocore/rules"
	"daocore/types"
	"daocore/voting"
)

// ReputationStaker is the narrow slice of the Reputation Ledger the engine
// depends on for member-class bid stakes and post-voting payouts.
type ReputationStaker interface {
	StakeForBid(bidID uint64, addr types.Address, amount types.Balance) error
	UnstakeForBid(bidID uint64, addr types.Address, amount types.Balance) error
	BalanceOf(addr types.Address) types.Balance
	Mint(addr types.Address, amount types.Balance)
	MintPassive(addr types.Address, amount types.Balance)
	Burn(addr types.Address, amount types.Balance) error
	// AllBalances and PartialBalances back the Formal InFavor redistribution
	// split (spec §4.3 bullet 3): every VA's reputation balance, or only
	// the formal voting's own voters, depending on
	// Configuration.DistributePaymentToNonVoters.
	AllBalances() (types.Balance, []reputation.AddressBalance)
	PartialBalances(addrs []types.Address) (types.Balance, []reputation.AddressBalance)
}

// Purse is the narrow slice of the CSPR Primitive the engine depends on.
type Purse interface {
	Deposit(addr types.Address, amount types.Balance)
	Withdraw(addr types.Address, amount types.Balance) error
	Transfer(from, to types.Address, amount types.Balance) error
}

// MembershipChecker reports and mutates VA membership.
type MembershipChecker interface {
	IsMember(addr types.Address) bool
	Mint(addr types.Address) error
}

// KycChecker reports KYC verification status.
type KycChecker interface {
	IsKYCed(addr types.Address) bool
}

// VotingEngine is the narrow slice of the Voting Engine the workflow drives
// to create and finish job-proof votings.
type VotingEngine interface {
	CreateVoting(creator types.Address, stake types.Balance, unbound bool, cfg config.Configuration) (*voting.Voting, error)
	FinishVoting(votingId types.VotingId, votingType types.VotingType) (*voting.Summary, error)
	// Voters lists a formal voting's non-canceled ballot addresses, for the
	// distribute_payment_to_non_voters=false redistribution split.
	Voters(votingId types.VotingId, votingType types.VotingType) []types.Address
}

// ConfigBuilder produces a fresh bid-escrow Configuration snapshot.
type ConfigBuilder func(memberCount uint64) (config.Configuration, error)

// IdGenerators mints the three id kinds the workflow needs.
type IdGenerators struct {
	Offers interface{ Next() types.JobOfferId }
	Bids   interface{ Next() types.BidId }
	Jobs   interface{ Next() types.JobId }
}

// Engine is the single owner of every bid-escrow operation (spec §4.4).
type Engine struct {
	state       State
	emitter     events.Emitter
	nowFn       func() uint64
	reputation  ReputationStaker
	purse       Purse
	membership  MembershipChecker
	kyc         KycChecker
	votingEng   VotingEngine
	buildConfig ConfigBuilder
	ids         IdGenerators
	memberCount func() uint64
}

// NewEngine constructs an Engine with no-op defaults; callers wire real
// collaborators via the Set* methods.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return 0 },
	}
}

func (e *Engine) SetState(s State)                      { e.state = s }
func (e *Engine) SetEmitter(em events.Emitter)          { e.emitter = em }
func (e *Engine) SetClock(now func() uint64)            { e.nowFn = now }
func (e *Engine) SetReputation(r ReputationStaker)      { e.reputation = r }
func (e *Engine) SetPurse(p Purse)                      { e.purse = p }
func (e *Engine) SetMembership(m MembershipChecker)     { e.membership = m }
func (e *Engine) SetKyc(k KycChecker)                   { e.kyc = k }
func (e *Engine) SetVotingEngine(v VotingEngine)        { e.votingEng = v }
func (e *Engine) SetConfigBuilder(cb ConfigBuilder)     { e.buildConfig = cb }
func (e *Engine) SetIdGenerators(ids IdGenerators)      { e.ids = ids }
func (e *Engine) SetMemberCount(f func() uint64)        { e.memberCount = f }

func (e *Engine) now() uint64 { return e.nowFn() }

// PostJobOffer opens a new auction. The poster must be KYCed and the
// attached CSPR must cover the configured DOS fee (spec §4.4).
func (e *Engine) PostJobOffer(poster types.Address, expectedTimeframe uint64, maxBudget, attachedCSPR types.Balance) (*JobOffer, error) {
	cfg, err := e.buildConfig(e.memberCount())
	if err != nil {
		return nil, err
	}

	dosFeeRequired := cfg.PostJobDosFee
	if cfg.FiatRate != nil && !cfg.FiatRate.IsZero() {
		dosFeeRequired = dosFeeRequired.MulDivFloor(types.NewBalance(1), *cfg.FiatRate)
	}

	if err := rules.New().
		Add(rules.IsUserKyced(e.kyc.IsKYCed(poster))).
		Add(rules.IsDosFeeEnough(attachedCSPR.Cmp(dosFeeRequired) >= 0)).
		Validate(); err != nil {
		return nil, err
	}

	offer := &JobOffer{
		Id:                e.ids.Offers.Next(),
		Poster:            poster,
		MaxBudget:         maxBudget,
		ExpectedTimeframe: expectedTimeframe,
		DosFee:            attachedCSPR,
		Status:            OfferCreated,
		StartTime:         e.now(),
		Configuration:     cfg,
	}
	e.purse.Deposit(poster, attachedCSPR)
	e.state.PutOffer(offer)

	e.emitter.Emit(events.JobOfferCreated{
		JobOfferId: offer.Id,
		Poster:     poster,
		MaxBudget:  maxBudget,
		DosFee:     attachedCSPR,
	})
	return offer, nil
}

// SubmitBid enters a worker into an offer's auction. Members stake
// reputation; non-members stake CSPR; exactly one must be positive (spec
// §4.4).
func (e *Engine) SubmitBid(offerId types.JobOfferId, worker types.Address, proposedTimeframe uint64, proposedPayment, repStake, csprStake types.Balance, onboard bool) (*Bid, error) {
	offer, ok := e.state.GetOffer(offerId)
	if !ok {
		return nil, daoerrors.New(daoerrors.CodeJobOfferNotFound, "job offer %s not found", offerId)
	}

	isMember := e.membership.IsMember(worker)
	phase := offer.Phase(e.now())
	auctionAllowed := phase == AuctionInternal && isMember ||
		phase == AuctionPublic && (!isMember || offer.Configuration.VaCanBidOnPublicAuction)

	stakeCorrect := (repStake.Sign() > 0) != (csprStake.Sign() > 0)
	if isMember && csprStake.Sign() > 0 {
		stakeCorrect = false
	}
	if !isMember && repStake.Sign() > 0 {
		stakeCorrect = false
	}

	if err := rules.New().
		Add(rules.CanBidOnOwnJob(worker == offer.Poster)).
		Add(rules.CanBidOnAuctionState(offer.Status == OfferCreated && auctionAllowed)).
		Add(rules.IsBidStakeCorrect(stakeCorrect)).
		Add(rules.DoesProposedPaymentExceedBudget(proposedPayment.Cmp(offer.MaxBudget) <= 0)).
		Validate(); err != nil {
		return nil, err
	}

	bid := &Bid{
		Id:                e.ids.Bids.Next(),
		OfferId:           offerId,
		Status:            BidCreated,
		Timestamp:         e.now(),
		ProposedTimeframe: proposedTimeframe,
		ProposedPayment:   proposedPayment,
		ReputationStake:   repStake,
		CSPRStake:         csprStake,
		Onboard:           onboard,
		Worker:            worker,
	}
	switch {
	case isMember:
		bid.WorkerType = types.WorkerTypeInternal
	case onboard:
		bid.WorkerType = types.WorkerTypeExternalToVA
	default:
		bid.WorkerType = types.WorkerTypeExternal
	}

	if repStake.Sign() > 0 {
		if err := e.reputation.StakeForBid(uint64(bid.Id), worker, repStake); err != nil {
			return nil, err
		}
	} else {
		e.purse.Deposit(worker, csprStake)
	}

	e.state.PutBid(bid)
	e.emitter.Emit(events.BidSubmitted{
		JobOfferId:      offerId,
		BidId:           bid.Id,
		Worker:          worker,
		WorkerType:      bid.WorkerType,
		Proposed:        proposedPayment,
		ReputationStake: repStake,
		CSPRStake:       csprStake,
	})
	return bid, nil
}

// CancelBid lets a bidder withdraw after the acceptance timeout on a still
// open offer (spec §4.4).
func (e *Engine) CancelBid(bidId types.BidId, caller types.Address) error {
	bid, ok := e.state.GetBid(bidId)
	if !ok {
		return daoerrors.New(daoerrors.CodeBidNotFound, "bid %s not found", bidId)
	}
	offer, ok := e.state.GetOffer(bid.OfferId)
	if !ok {
		return daoerrors.New(daoerrors.CodeJobOfferNotFound, "job offer %s not found", bid.OfferId)
	}

	timeoutElapsed := e.now() >= bid.Timestamp+offer.Configuration.VaBidAcceptanceTimeout

	if err := rules.New().
		Add(rules.HasPermissionsToCancelBid(caller == bid.Worker)).
		Add(rules.CanBidBeCancelled(offer.Status == OfferCreated && timeoutElapsed)).
		Validate(); err != nil {
		return err
	}

	e.refundBid(bid)
	bid.Status = BidCanceled
	e.state.PutBid(bid)
	e.emitter.Emit(events.BidCancelled{JobOfferId: bid.OfferId, BidId: bid.Id, Worker: bid.Worker})
	return nil
}

func (e *Engine) refundBid(bid *Bid) {
	if bid.ReputationStake.Sign() > 0 {
		_ = e.reputation.UnstakeForBid(uint64(bid.Id), bid.Worker, bid.ReputationStake)
	} else if bid.CSPRStake.Sign() > 0 {
		_ = e.purse.Withdraw(bid.Worker, bid.CSPRStake)
		e.emitCSPR(bid.Worker, bid.Worker, bid.CSPRStake, "BidStakeReturn")
	}
}

func (e *Engine) emitCSPR(from, to types.Address, amount types.Balance, reason string) {
	e.emitter.Emit(events.CSPRTransfer{From: from, To: to, Amount: amount, Reason: reason})
}

// CancelJobOffer lets the poster withdraw an offer once its auction window
// has fully elapsed, refunding every still-open bid and the DOS fee (spec
// §4.4).
func (e *Engine) CancelJobOffer(offerId types.JobOfferId, caller types.Address) error {
	offer, ok := e.state.GetOffer(offerId)
	if !ok {
		return daoerrors.New(daoerrors.CodeJobOfferNotFound, "job offer %s not found", offerId)
	}

	if err := rules.New().
		Add(rules.HasPermissionsToCancelJobOffer(caller == offer.Poster)).
		Add(rules.CanJobOfferBeCancelled(offer.Status == OfferCreated && offer.Phase(e.now()) == AuctionClosed)).
		Validate(); err != nil {
		return err
	}

	for _, bid := range e.state.BidsByOffer(offerId) {
		if bid.Status != BidCreated {
			continue
		}
		e.refundBid(bid)
		bid.Status = BidCanceled
		e.state.PutBid(bid)
	}

	_ = e.purse.Withdraw(offer.Poster, offer.DosFee)
	e.emitCSPR(offer.Poster, offer.Poster, offer.DosFee, "DOSFeeReturn")

	offer.Status = OfferCancelled
	e.state.PutOffer(offer)
	return nil
}

// PickBid lets the poster accept a winning bid, creating the Job and
// rejecting every sibling bid (spec §4.4).
func (e *Engine) PickBid(offerId types.JobOfferId, bidId types.BidId, caller types.Address, attachedCSPR types.Balance) (*Job, error) {
	offer, ok := e.state.GetOffer(offerId)
	if !ok {
		return nil, daoerrors.New(daoerrors.CodeJobOfferNotFound, "job offer %s not found", offerId)
	}
	bid, ok := e.state.GetBid(bidId)
	if !ok || bid.OfferId != offerId {
		return nil, daoerrors.New(daoerrors.CodeBidNotFound, "bid %s not found on offer %s", bidId, offerId)
	}

	phase := offer.Phase(e.now())
	if err := rules.New().
		Add(rules.CanPickBid(caller == offer.Poster)).
		Add(rules.CanProgressJobOffer(offer.Status == OfferCreated)).
		Add(rules.CanBidOnAuctionState(phase == AuctionInternal || phase == AuctionPublic)).
		Add(rules.DoesProposedPaymentMatchTransferred(attachedCSPR.Cmp(bid.ProposedPayment) == 0)).
		Validate(); err != nil {
		return nil, err
	}

	e.purse.Deposit(offer.Poster, attachedCSPR)

	for _, sibling := range e.state.BidsByOffer(offerId) {
		if sibling.Id == bidId || sibling.Status != BidCreated {
			continue
		}
		e.refundBid(sibling)
		sibling.Status = BidRejected
		e.state.PutBid(sibling)
	}

	bid.Status = BidPicked
	e.state.PutBid(bid)

	job := &Job{
		Id:                      e.ids.Jobs.Next(),
		BidId:                   bid.Id,
		OfferId:                 offerId,
		StartTime:               e.now(),
		TimeForJob:              bid.ProposedTimeframe,
		Status:                  JobCreated,
		Worker:                  bid.Worker,
		WorkerType:              bid.WorkerType,
		Poster:                  offer.Poster,
		Payment:                 bid.ProposedPayment,
		Stake:                   bid.ReputationStake,
		ExternalWorkerCSPRStake: bid.CSPRStake,
	}
	e.state.PutJob(job)

	offer.Status = OfferInProgress
	e.state.PutOffer(offer)

	e.emitter.Emit(events.JobCreated{JobOfferId: offerId, JobId: job.Id, BidId: bid.Id, Worker: bid.Worker, Payment: bid.ProposedPayment})
	return job, nil
}

// SubmitJobProof hashes the worker's proof document, records it, and
// schedules the formal voting that will decide acceptance (spec §4.4). The
// caller is responsible for invoking CreatePendingVoting once
// voting_delay_after_job_worker_submission has elapsed.
func (e *Engine) SubmitJobProof(jobId types.JobId, caller types.Address, proof []byte) error {
	job, ok := e.state.GetJob(jobId)
	if !ok {
		return daoerrors.New(daoerrors.CodeJobNotFound, "job %s not found", jobId)
	}
	offer, ok := e.state.GetOffer(job.OfferId)
	if !ok {
		return daoerrors.New(daoerrors.CodeJobOfferNotFound, "job offer %s not found", job.OfferId)
	}

	if err := rules.New().
		Add(rules.IsJobWorker(caller == job.Worker)).
		Add(rules.CanSubmitJobProof(job.Status == JobCreated && e.now() <= job.StartTime+job.TimeForJob)).
		Validate(); err != nil {
		return err
	}

	proofHash := idgen.ContentHash(proof)
	job.Proof = proofHash
	job.Status = JobSubmitted
	job.votingScheduledAt = e.now() + offer.Configuration.VotingDelayAfterJobWorkerSubmission
	job.votingPending = true
	e.state.PutJob(job)

	e.emitter.Emit(events.JobSubmitted{JobId: job.Id, Submitter: caller, ProofHash: proofHash})
	return nil
}

// CreatePendingVoting creates the deferred formal voting for a submitted
// job once its scheduling delay has elapsed. Idempotent: a second call
// after the voting already exists is a no-op.
func (e *Engine) CreatePendingVoting(jobId types.JobId) error {
	job, ok := e.state.GetJob(jobId)
	if !ok {
		return daoerrors.New(daoerrors.CodeJobNotFound, "job %s not found", jobId)
	}
	if !job.votingPending || e.now() < job.votingScheduledAt {
		return nil
	}
	offer, ok := e.state.GetOffer(job.OfferId)
	if !ok {
		return daoerrors.New(daoerrors.CodeJobOfferNotFound, "job offer %s not found", job.OfferId)
	}

	stake := job.Stake
	unbound := job.WorkerType != types.WorkerTypeInternal
	cfg := offer.Configuration
	if unbound {
		cfg.BindBallotForSuccessfulVoting = true
		cfg.UnboundBallotAddress = job.Worker
		if stake.IsZero() && !job.ExternalWorkerCSPRStake.IsZero() {
			stake = cfg.ReputationToMint(job.ExternalWorkerCSPRStake)
		}
	}

	v, err := e.votingEng.CreateVoting(job.Worker, stake, unbound, cfg)
	if err != nil {
		return err
	}
	votingId := v.Id
	job.VotingId = &votingId
	job.votingPending = false
	e.state.PutJob(job)
	return nil
}

// SubmitJobProofDuringGracePeriod lets a new worker take over an
// unsubmitted job once its grace period has opened, chaining the old job
// to the new one via FollowedBy (spec §4.4).
func (e *Engine) SubmitJobProofDuringGracePeriod(jobId types.JobId, newWorker types.Address, proof []byte, repStake, csprStake types.Balance, onboard bool) (*Job, error) {
	oldJob, ok := e.state.GetJob(jobId)
	if !ok {
		return nil, daoerrors.New(daoerrors.CodeJobNotFound, "job %s not found", jobId)
	}
	offer, ok := e.state.GetOffer(oldJob.OfferId)
	if !ok {
		return nil, daoerrors.New(daoerrors.CodeJobOfferNotFound, "job offer %s not found", oldJob.OfferId)
	}

	now := e.now()
	inGrace := now > oldJob.StartTime+oldJob.TimeForJob && now <= oldJob.StartTime+2*oldJob.TimeForJob

	isMember := e.membership.IsMember(newWorker)
	stakeCorrect := (repStake.Sign() > 0) != (csprStake.Sign() > 0)

	if err := rules.New().
		Add(rules.CanProgressJobOffer(oldJob.Status == JobCreated)).
		Add(rules.IsGracePeriod(inGrace)).
		Add(rules.IsBidStakeCorrect(stakeCorrect)).
		Validate(); err != nil {
		return nil, err
	}

	if oldJob.Stake.Sign() > 0 {
		_ = e.reputation.UnstakeForBid(uint64(oldJob.BidId), oldJob.Worker, oldJob.Stake)
	} else if oldJob.ExternalWorkerCSPRStake.Sign() > 0 {
		_ = e.purse.Withdraw(oldJob.Worker, oldJob.ExternalWorkerCSPRStake)
		e.emitCSPR(oldJob.Worker, oldJob.Worker, oldJob.ExternalWorkerCSPRStake, "BidStakeReturn")
	}

	newBid := &Bid{
		Id:              e.ids.Bids.Next(),
		OfferId:         oldJob.OfferId,
		Status:          BidPicked,
		Timestamp:       now,
		ProposedPayment: oldJob.Payment,
		ReputationStake: repStake,
		CSPRStake:       csprStake,
		Onboard:         onboard,
		Worker:          newWorker,
	}
	switch {
	case isMember:
		newBid.WorkerType = types.WorkerTypeInternal
	case onboard:
		newBid.WorkerType = types.WorkerTypeExternalToVA
	default:
		newBid.WorkerType = types.WorkerTypeExternal
	}
	if repStake.Sign() > 0 {
		if err := e.reputation.StakeForBid(uint64(newBid.Id), newWorker, repStake); err != nil {
			return nil, err
		}
	} else {
		e.purse.Deposit(newWorker, csprStake)
	}
	e.state.PutBid(newBid)

	proofHash := idgen.ContentHash(proof)
	newJob := &Job{
		Id:                      e.ids.Jobs.Next(),
		BidId:                   newBid.Id,
		OfferId:                 oldJob.OfferId,
		Proof:                   proofHash,
		StartTime:               now,
		TimeForJob:              oldJob.TimeForJob,
		Status:                  JobSubmitted,
		Worker:                  newWorker,
		WorkerType:              newBid.WorkerType,
		Poster:                  oldJob.Poster,
		Payment:                 oldJob.Payment,
		Stake:                   repStake,
		ExternalWorkerCSPRStake: csprStake,
		votingScheduledAt:       now + offer.Configuration.VotingDelayAfterJobWorkerSubmission,
		votingPending:           true,
	}
	e.state.PutJob(newJob)

	newJobId := newJob.Id
	oldJob.Status = JobCompleted
	oldJob.FollowedBy = &newJobId
	e.state.PutJob(oldJob)

	e.emitter.Emit(events.JobSubmitted{JobId: newJob.Id, Submitter: newWorker, ProofHash: proofHash, DuringGrace: true})
	return newJob, nil
}

// CancelJob lets the poster withdraw a job once its grace period has
// closed without any proof submission, refunding the poster's payment and
// the worker's stake (spec §4.4).
func (e *Engine) CancelJob(jobId types.JobId, caller types.Address) error {
	job, ok := e.state.GetJob(jobId)
	if !ok {
		return daoerrors.New(daoerrors.CodeJobNotFound, "job %s not found", jobId)
	}

	graceClosed := e.now() > job.StartTime+2*job.TimeForJob

	if err := rules.New().
		Add(rules.HasPermissionsToCancelJobOffer(caller == job.Poster)).
		Add(rules.CanProgressJobOffer(job.Status == JobCreated && graceClosed)).
		Validate(); err != nil {
		return err
	}

	_ = e.purse.Withdraw(job.Poster, job.Payment)
	e.emitCSPR(job.Poster, job.Poster, job.Payment, "JobPaymentReturn")

	if job.Stake.Sign() > 0 {
		_ = e.reputation.UnstakeForBid(uint64(job.BidId), job.Worker, job.Stake)
	} else if job.ExternalWorkerCSPRStake.Sign() > 0 {
		_ = e.purse.Withdraw(job.Worker, job.ExternalWorkerCSPRStake)
		e.emitCSPR(job.Worker, job.Worker, job.ExternalWorkerCSPRStake, "BidStakeReturn")
	}

	job.Status = JobCancelled
	e.state.PutJob(job)
	e.emitter.Emit(events.JobCancelled{JobId: job.Id, Reason: "grace period closed without submission"})
	return nil
}

// FinishJobVoting closes the formal voting bound to a submitted job and
// applies the bid-escrow CSPR flow atop the Voting Engine's reputation-side
// outcome (spec §4.3 "Bid-escrow CSPR flow" / §4.4). The generic
// redistribution kernel only ever sees reputation; the payment to the
// worker, the governance cut, and the onboarding conversion are this
// engine's own responsibility.
func (e *Engine) FinishJobVoting(jobId types.JobId) (*voting.Summary, error) {
	job, ok := e.state.GetJob(jobId)
	if !ok {
		return nil, daoerrors.New(daoerrors.CodeJobNotFound, "job %s not found", jobId)
	}
	if job.VotingId == nil {
		return nil, daoerrors.New(daoerrors.CodeVotingIdNotFound, "job %s has no pending voting", jobId)
	}
	offer, ok := e.state.GetOffer(job.OfferId)
	if !ok {
		return nil, daoerrors.New(daoerrors.CodeJobOfferNotFound, "job offer %s not found", job.OfferId)
	}

	summary, err := e.votingEng.FinishVoting(*job.VotingId, types.VotingTypeFormal)
	if err != nil {
		return nil, err
	}

	switch summary.Result {
	case types.VotingResultInFavor:
		cfg := offer.Configuration
		governanceCut := cfg.GovernanceCut(job.Payment)
		afterGovernance, _ := job.Payment.SafeSub(governanceCut)
		// The remainder left after the governance cut is itself split
		// between the worker and a redistribution pool at the policing
		// rate, the same ratio the reputation side reserves for voters
		// when minting (spec §4.3 bullet 3, S3's "less the governance cut
		// and the redistribution cut").
		redistributionCut := afterGovernance.MulPerMille(cfg.DefaultPolicingRate)
		workerPayment, _ := afterGovernance.SafeSub(redistributionCut)

		if err := e.purse.Transfer(job.Poster, job.Worker, workerPayment); err != nil {
			return nil, err
		}
		e.emitCSPR(job.Poster, job.Worker, workerPayment, "JobPayment")
		if err := e.purse.Transfer(job.Poster, cfg.GovernanceWallet, governanceCut); err != nil {
			return nil, err
		}
		e.emitCSPR(job.Poster, cfg.GovernanceWallet, governanceCut, "GovernanceCut")
		if err := e.redistributeCSPR(job.Poster, *job.VotingId, cfg, redistributionCut); err != nil {
			return nil, err
		}

		// The payment transfer above settles job.Payment in full (worker
		// share + governance cut + redistribution cut); the DOS fee
		// deposited with the offer stays escrowed under the poster and is
		// not refunded on this path (spec §4.3 "consumed as a validity
		// deposit").
		if job.WorkerType != types.WorkerTypeInternal && job.ExternalWorkerCSPRStake.Sign() > 0 {
			if err := e.purse.Withdraw(job.Worker, job.ExternalWorkerCSPRStake); err == nil {
				if merr := e.membership.Mint(job.Worker); merr == nil {
					mintAmount := cfg.ReputationToMint(job.ExternalWorkerCSPRStake)
					policingShare := cfg.AmountToRedistributeByPolicing(mintAmount)
					recipientShare, _ := mintAmount.SafeSub(policingShare)
					e.reputation.MintPassive(job.Worker, recipientShare)
					if err := e.redistributeReputation(*job.VotingId, policingShare); err != nil {
						return nil, err
					}
				}
			}
		}

		job.Status = JobCompleted
		e.state.PutJob(job)
		e.emitter.Emit(events.JobDone{JobId: job.Id, Worker: job.Worker, Payment: workerPayment})

	case types.VotingResultAgainst:
		if err := e.purse.Withdraw(job.Poster, job.Payment); err != nil {
			return nil, err
		}
		if err := e.purse.Withdraw(job.Poster, offer.DosFee); err != nil {
			return nil, err
		}
		e.emitCSPR(job.Poster, job.Poster, job.Payment.Add(offer.DosFee), "JobPaymentAndDOSFeeReturn")

		// The worker's reputation stake was already unstaked/burned by the
		// voting engine's redistribution outcome; CSPR stakes are never
		// seen by that generic kernel and are redistributed per the same
		// rules as the InFavor path instead.
		if job.WorkerType != types.WorkerTypeInternal && job.ExternalWorkerCSPRStake.Sign() > 0 {
			if err := e.purse.Withdraw(job.Worker, job.ExternalWorkerCSPRStake); err == nil {
				if rerr := e.redistributeCSPR(job.Poster, *job.VotingId, offer.Configuration, job.ExternalWorkerCSPRStake); rerr != nil {
					return nil, rerr
				}
			}
		}

		job.Status = JobCancelled
		e.state.PutJob(job)
		e.emitter.Emit(events.JobRejected{JobId: job.Id, Worker: job.Worker})

	case types.VotingResultQuorumNotReached:
		// Formal QuorumNotReached releases every CSPR escrowed for the job
		// back to its funders: the poster's payment and the worker's CSPR
		// stake, if any (spec §4.3 "release all CSPR escrowed for the job
		// back to its funder (poster and worker)"); the worker's bid
		// reputation stake, if any, is unlocked here as well, since the
		// voting engine's own outcome only releases ballot stakes.
		if err := e.purse.Withdraw(job.Poster, job.Payment); err != nil {
			return nil, err
		}
		e.emitCSPR(job.Poster, job.Poster, job.Payment, "JobPaymentReturn")

		if job.WorkerType != types.WorkerTypeInternal && job.ExternalWorkerCSPRStake.Sign() > 0 {
			if err := e.purse.Withdraw(job.Worker, job.ExternalWorkerCSPRStake); err == nil {
				e.emitCSPR(job.Worker, job.Worker, job.ExternalWorkerCSPRStake, "BidStakeReturn")
			}
		}
		if job.Stake.Sign() > 0 {
			_ = e.reputation.UnstakeForBid(uint64(job.BidId), job.Worker, job.Stake)
		}

		job.Status = JobNotCompleted
		e.state.PutJob(job)
		e.emitter.Emit(events.JobRejected{JobId: job.Id, Worker: job.Worker})
	}

	return summary, nil
}

// redistributeCSPR splits amount either across every VA's reputation
// balance or across a formal voting's own voters only, per
// Configuration.DistributePaymentToNonVoters (spec §4.3 bullet 3), with the
// floor-division dust routed to the governance wallet (spec §4.3 bullet 4).
func (e *Engine) redistributeCSPR(from types.Address, votingId types.VotingId, cfg config.Configuration, amount types.Balance) error {
	if amount.Sign() <= 0 {
		return nil
	}

	var total types.Balance
	var balances []reputation.AddressBalance
	if cfg.DistributePaymentToNonVoters {
		total, balances = e.reputation.AllBalances()
	} else {
		total, balances = e.reputation.PartialBalances(e.votingEng.Voters(votingId, types.VotingTypeFormal))
	}

	if total.IsZero() {
		if err := e.purse.Transfer(from, cfg.GovernanceWallet, amount); err != nil {
			return err
		}
		e.emitCSPR(from, cfg.GovernanceWallet, amount, "Redistribution")
		return nil
	}

	distributed := types.Zero
	for _, ab := range balances {
		if ab.Balance.IsZero() {
			continue
		}
		share := amount.MulDivFloor(ab.Balance, total)
		if share.IsZero() {
			continue
		}
		if err := e.purse.Transfer(from, ab.Address, share); err != nil {
			return err
		}
		e.emitCSPR(from, ab.Address, share, "Redistribution")
		distributed = distributed.Add(share)
	}

	if dust, ok := amount.SafeSub(distributed); ok && dust.Sign() > 0 {
		if err := e.purse.Transfer(from, cfg.GovernanceWallet, dust); err != nil {
			return err
		}
		e.emitCSPR(from, cfg.GovernanceWallet, dust, "Redistribution")
	}
	return nil
}

// redistributeReputation mints the policing-rate share reserved from an
// onboarded worker's conversion to every formal voter, proportional to
// each voter's free reputation balance over the ledger's total supply
// (PartialBalances), not to ballot stakes; the floor-division remainder is
// not minted. This slice is CSPR-stake-derived and never seen by the
// generic redistribution kernel.
func (e *Engine) redistributeReputation(votingId types.VotingId, amount types.Balance) error {
	if amount.Sign() <= 0 {
		return nil
	}
	voters := e.votingEng.Voters(votingId, types.VotingTypeFormal)
	if len(voters) == 0 {
		return nil
	}
	total, balances := e.reputation.PartialBalances(voters)
	if total.IsZero() {
		return nil
	}
	for _, ab := range balances {
		if ab.Balance.IsZero() {
			continue
		}
		share := amount.MulDivFloor(ab.Balance, total)
		if share.IsZero() {
			continue
		}
		e.reputation.MintPassive(ab.Address, share)
	}
	return nil
}
