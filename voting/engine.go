package voting

import (
	"daocore/config"
	"daocore/daoerrors"
	"daocore/events"
	"daocore/redistribution"
	"daocore/types"
)

// ReputationLocker is the narrow slice of the Reputation Ledger the engine
// depends on for staking and redistribution.
type ReputationLocker interface {
	StakeForVoting(votingID uint64, addr types.Address, amount types.Balance) error
	UnstakeForVoting(votingID uint64, addr types.Address, amount types.Balance) error
	Mint(addr types.Address, amount types.Balance)
	MintPassive(addr types.Address, amount types.Balance)
	Burn(addr types.Address, amount types.Balance) error
}

// MembershipChecker is the narrow slice of the Membership Registry the
// engine depends on.
type MembershipChecker interface {
	IsMember(addr types.Address) bool
}

// IdGenerator mints VotingId values.
type IdGenerator interface {
	Next() types.VotingId
}

// ContractCaller executes a single deferred contract call descriptor at
// formal-voting completion (spec §9).
type ContractCaller interface {
	Call(call config.ContractCall) error
}

// noopContracts rejects nothing and runs nothing; the default when no
// caller is configured, matching the teacher's NoopEmitter idiom.
type noopContracts struct{}

func (noopContracts) Call(config.ContractCall) error { return nil }

// Engine orchestrates the two-stage voting lifecycle shared by every voter
// module.
type Engine struct {
	state      Store
	emitter    events.Emitter
	nowFn      func() uint64
	ledger     ReputationLocker
	membership MembershipChecker
	ids        IdGenerator
	contracts  ContractCaller
}

// NewEngine constructs an Engine with no-op defaults; callers wire real
// collaborators via the Set* methods before use.
func NewEngine() *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		nowFn:     func() uint64 { return 0 },
		contracts: noopContracts{},
	}
}

func (e *Engine) SetState(state Store)                   { e.state = state }
func (e *Engine) SetEmitter(emitter events.Emitter)       { e.emitter = emitter }
func (e *Engine) SetClock(now func() uint64)              { e.nowFn = now }
func (e *Engine) SetReputationLedger(l ReputationLocker)  { e.ledger = l }
func (e *Engine) SetMembership(m MembershipChecker)       { e.membership = m }
func (e *Engine) SetIdGenerator(g IdGenerator)            { e.ids = g }
func (e *Engine) SetContractCaller(c ContractCaller) {
	if c == nil {
		e.contracts = noopContracts{}
		return
	}
	e.contracts = c
}

func (e *Engine) now() uint64 { return e.nowFn() }

// CreateVoting allocates a fresh voting and, when stake is positive, casts
// the creator's implicit InFavor ballot (spec §4.2). unbound forces the
// implicit ballot to be recorded without locking reputation, used by
// bid-escrow and onboarding callers whose creator has no real reputation
// yet.
func (e *Engine) CreateVoting(creator types.Address, stake types.Balance, unbound bool, cfg config.Configuration) (*Voting, error) {
	if cfg.OnlyVaCanCreate && !e.membership.IsMember(creator) {
		return nil, daoerrors.New(daoerrors.CodeNotOnboarded, "creator %s is not a voting associate", creator)
	}

	voting := &Voting{
		Id:            e.ids.Next(),
		Creator:       creator,
		CreationTime:  e.now(),
		State:         StateInformalVoting,
		Informal:      newTally(),
		Formal:        newTally(),
		Configuration: cfg,
	}
	e.state.PutVoting(voting)

	if stake.Sign() > 0 {
		effectiveUnbound := unbound || !cfg.InformalStakeReputation
		if err := e.castBallot(voting, creator, types.VotingTypeInformal, types.ChoiceInFavor, stake, effectiveUnbound); err != nil {
			return nil, err
		}
	}

	e.emitter.Emit(events.VotingCreated{
		VotingId:                     voting.Id,
		VotingType:                   types.VotingTypeInformal,
		Creator:                      creator,
		InformalQuorum:               cfg.InformalQuorum,
		FormalQuorum:                 cfg.FormalQuorum,
		TimeBetweenInformalAndFormal: cfg.TimeBetweenInformalAndFormalVoting,
		DoublingClearnessDelta:       cfg.DoubleTimeBetweenVotings,
	})

	return voting, nil
}

// Vote casts a ballot for voter on (votingId, votingType).
func (e *Engine) Vote(voter types.Address, votingId types.VotingId, votingType types.VotingType, choice types.Choice, stake types.Balance) error {
	voting, ok := e.state.GetVoting(votingId)
	if !ok {
		return daoerrors.New(daoerrors.CodeVotingDoesNotExist, "voting %s does not exist", votingId)
	}
	if !choice.Valid() {
		return daoerrors.New(daoerrors.CodeZeroStake, "choice must be in_favor or against")
	}
	if stake.Sign() <= 0 {
		return daoerrors.New(daoerrors.CodeZeroStake, "stake must be positive")
	}

	if votingType == types.VotingTypeFormal {
		e.ensureFormalStarted(voting)
	}

	if err := e.requireActive(voting, votingType); err != nil {
		return err
	}

	if _, exists := e.state.GetBallot(votingId, votingType, voter); exists {
		return daoerrors.New(daoerrors.CodeCannotVoteTwice, "voter %s already voted on voting %s (%s)", voter, votingId, votingType)
	}

	effectiveUnbound := votingType == types.VotingTypeInformal && !voting.Configuration.InformalStakeReputation
	if err := e.castBallot(voting, voter, votingType, choice, stake, effectiveUnbound); err != nil {
		return err
	}
	return nil
}

func (e *Engine) castBallot(voting *Voting, voter types.Address, votingType types.VotingType, choice types.Choice, stake types.Balance, unbound bool) error {
	if !unbound {
		if err := e.ledger.StakeForVoting(uint64(voting.Id), voter, stake); err != nil {
			return err
		}
	}
	ballot := &Ballot{
		Voter:      voter,
		VotingId:   voting.Id,
		VotingType: votingType,
		Choice:     choice,
		Stake:      stake,
		Unbound:    unbound,
	}
	e.state.PutBallot(ballot)
	if votingType == types.VotingTypeInformal {
		voting.Informal.add(*ballot)
	} else {
		voting.Formal.add(*ballot)
	}
	e.state.PutVoting(voting)

	e.emitter.Emit(events.BallotCast{
		VotingId:  voting.Id,
		Voter:     voter,
		Choice:    choice,
		Stake:     stake,
		IsUnbound: unbound,
	})
	return nil
}

// requireActive validates that votingType's stage is currently open for
// voting/finishing.
func (e *Engine) requireActive(voting *Voting, votingType types.VotingType) error {
	switch voting.State {
	case StateCanceled:
		return daoerrors.New(daoerrors.CodeVotingAlreadyCanceled, "voting %s was canceled", voting.Id)
	case StateFinished:
		return daoerrors.New(daoerrors.CodeVoteOnCompletedVotingNotAllowed, "voting %s already finished", voting.Id)
	}
	expected := StateInformalVoting
	if votingType == types.VotingTypeFormal {
		expected = StateFormalVoting
	}
	if voting.State != expected {
		return daoerrors.New(daoerrors.CodeVotingWithGivenTypeNotInProgress, "voting %s is not in %s stage", voting.Id, votingType)
	}
	return nil
}

// ensureFormalStarted advances a voting from BetweenVotings to FormalVoting
// once the (possibly doubled) gap has elapsed, recasting the creator's
// informal ballot as the formal stage's first ballot (spec §4.2).
func (e *Engine) ensureFormalStarted(voting *Voting) {
	if voting.State != StateBetweenVotings {
		return
	}
	gap := voting.Configuration.EffectiveTimeBetweenVotings(voting.ClearnessTriggered)
	if e.now() < voting.InformalFinishedAt+gap {
		return
	}
	voting.State = StateFormalVoting
	voting.FormalStartedAt = e.now()

	if informalBallot, ok := e.state.GetBallot(voting.Id, types.VotingTypeInformal, voting.Creator); ok && !informalBallot.Canceled {
		// The recast is skipped if the creator has been slashed since.
		_ = e.castBallot(voting, voting.Creator, types.VotingTypeFormal, informalBallot.Choice, informalBallot.Stake, informalBallot.Unbound)
	}
	e.state.PutVoting(voting)
}

// FinishVoting closes out votingType's active stage once its time window
// has elapsed, computes the result, applies the redistribution kernel's
// outcome, and transitions the voting's state (spec §4.2).
func (e *Engine) FinishVoting(votingId types.VotingId, votingType types.VotingType) (*Summary, error) {
	voting, ok := e.state.GetVoting(votingId)
	if !ok {
		return nil, daoerrors.New(daoerrors.CodeVotingDoesNotExist, "voting %s does not exist", votingId)
	}

	if votingType == types.VotingTypeFormal {
		e.ensureFormalStarted(voting)
	}

	switch voting.State {
	case StateCanceled:
		return nil, daoerrors.New(daoerrors.CodeVotingAlreadyCanceled, "voting %s was canceled", voting.Id)
	case StateFinished:
		return nil, daoerrors.New(daoerrors.CodeFinishingCompletedVotingNotAllowed, "voting %s already finished", voting.Id)
	}
	expected := StateInformalVoting
	if votingType == types.VotingTypeFormal {
		expected = StateFormalVoting
	}
	if voting.State != expected {
		return nil, daoerrors.New(daoerrors.CodeVotingWithGivenTypeNotInProgress, "voting %s is not in %s stage", voting.Id, votingType)
	}

	cfg := voting.Configuration
	if votingType == types.VotingTypeInformal {
		if e.now() < voting.CreationTime+cfg.InformalVotingTime {
			return nil, daoerrors.New(daoerrors.CodeInformalVotingTimeNotReached, "informal voting window for %s has not elapsed", voting.Id)
		}
	} else {
		if e.now() < voting.FormalStartedAt+cfg.FormalVotingTime {
			return nil, daoerrors.New(daoerrors.CodeFormalVotingTimeNotReached, "formal voting window for %s has not elapsed", voting.Id)
		}
	}

	t := &voting.Informal
	quorum := cfg.InformalQuorum
	if votingType == types.VotingTypeFormal {
		t = &voting.Formal
		quorum = cfg.FormalQuorum
	}

	var result types.VotingResult
	if t.totalVotes() < quorum {
		result = types.VotingResultQuorumNotReached
	} else {
		totalInFavor := t.StakeInFavor.Add(t.UnboundStakeInFavor)
		totalAgainst := t.StakeAgainst.Add(t.UnboundStakeAgainst)
		if totalInFavor.Cmp(totalAgainst) >= 0 {
			result = types.VotingResultInFavor
		} else {
			result = types.VotingResultAgainst
		}
	}

	ballots := e.state.ListBallots(votingId, votingType)
	repBallots := make([]redistribution.Ballot, 0, len(ballots))
	for _, b := range ballots {
		if b.Canceled {
			continue
		}
		repBallots = append(repBallots, redistribution.Ballot{Voter: b.Voter, Choice: b.Choice, Stake: b.Stake, Unbound: b.Unbound})
	}

	if votingType == types.VotingTypeFormal && result == types.VotingResultInFavor {
		for _, call := range cfg.ContractCalls {
			if err := e.contracts.Call(call); err != nil {
				return nil, daoerrors.Wrap(daoerrors.CodeContractCallFailed, err)
			}
		}
	}

	outcome := redistribution.Compute(votingType, result, cfg, repBallots)
	if err := e.applyOutcome(votingId, outcome); err != nil {
		return nil, err
	}
	voting.AppliedOutcome = &outcome

	if votingType == types.VotingTypeInformal {
		if result == types.VotingResultQuorumNotReached {
			voting.State = StateFinished
			voting.FinishedType = types.VotingTypeInformal
			voting.Result = result
			voting.FinishedAt = e.now()
		} else {
			totalInFavor := t.StakeInFavor.Add(t.UnboundStakeInFavor)
			totalAgainst := t.StakeAgainst.Add(t.UnboundStakeAgainst)
			diff, ok := totalInFavor.SafeSub(totalAgainst)
			if !ok {
				diff, _ = totalAgainst.SafeSub(totalInFavor)
			}
			voting.State = StateBetweenVotings
			voting.InformalFinishedAt = e.now()
			voting.ClearnessTriggered = diff.Cmp(cfg.VotingClearnessDelta) < 0
		}
	} else {
		voting.State = StateFinished
		voting.FinishedType = types.VotingTypeFormal
		voting.Result = result
		voting.FinishedAt = e.now()
	}
	e.state.PutVoting(voting)

	e.emitter.Emit(events.VotingEnded{
		VotingId:     voting.Id,
		VotingType:   votingType,
		Result:       result,
		StakeInFavor: t.StakeInFavor,
		StakeAgainst: t.StakeAgainst,
		VotesInFavor: t.VotesInFavor,
		VotesAgainst: t.VotesAgainst,
	})

	return &Summary{
		VotingId:      voting.Id,
		VotingType:    votingType,
		Result:        result,
		StakeInFavor:  t.StakeInFavor,
		StakeAgainst:  t.StakeAgainst,
		VotesInFavor:  t.VotesInFavor,
		VotesAgainst:  t.VotesAgainst,
		Configuration: cfg,
	}, nil
}

// Voters returns the non-canceled ballot addresses cast in votingId's
// votingType stage, used by the Bid-Escrow Workflow to restrict a CSPR
// redistribution to a formal voting's own voters (spec §4.3 bullet 3,
// `distribute_payment_to_non_voters=false`).
func (e *Engine) Voters(votingId types.VotingId, votingType types.VotingType) []types.Address {
	ballots := e.state.ListBallots(votingId, votingType)
	out := make([]types.Address, 0, len(ballots))
	for _, b := range ballots {
		if b.Canceled {
			continue
		}
		out = append(out, b.Voter)
	}
	return out
}

func (e *Engine) applyOutcome(votingId types.VotingId, outcome redistribution.Outcome) error {
	for _, r := range outcome.Releases {
		if err := e.ledger.UnstakeForVoting(uint64(votingId), r.Voter, r.Amount); err != nil {
			return err
		}
	}
	for _, b := range outcome.Burns {
		if err := e.ledger.Burn(b.Voter, b.Amount); err != nil {
			return err
		}
	}
	for _, m := range outcome.Mints {
		if m.Passive {
			e.ledger.MintPassive(m.Voter, m.Amount)
		} else {
			e.ledger.Mint(m.Voter, m.Amount)
		}
	}
	return nil
}

// AffectedVoting names one (voting, stage) pair whose tally was adjusted by
// a slashing cascade.
type AffectedVoting struct {
	VotingId   types.VotingId
	VotingType types.VotingType
}

// SlashVoter removes voter from every voting they currently participate in:
// cancels their ballots, subtracts their stake from the affected tallies,
// and cancels any voting they created that has not yet finished (spec
// §4.2 "Cancellation cascade").
func (e *Engine) SlashVoter(voter types.Address) ([]AffectedVoting, error) {
	var affected []AffectedVoting

	for _, votingId := range e.state.VotingsByVoter(voter) {
		voting, ok := e.state.GetVoting(votingId)
		if !ok {
			continue
		}

		for _, vt := range []types.VotingType{types.VotingTypeInformal, types.VotingTypeFormal} {
			ballot, ok := e.state.GetBallot(votingId, vt, voter)
			if !ok || ballot.Canceled {
				continue
			}
			ballot.Canceled = true
			e.state.PutBallot(ballot)

			if vt == types.VotingTypeInformal {
				voting.Informal.remove(*ballot)
			} else {
				voting.Formal.remove(*ballot)
			}
			if !ballot.Unbound {
				if err := e.ledger.UnstakeForVoting(uint64(votingId), voter, ballot.Stake); err != nil {
					return affected, err
				}
			}
			affected = append(affected, AffectedVoting{VotingId: votingId, VotingType: vt})
			e.emitter.Emit(events.VoterSlashed{VotingId: votingId, Voter: voter, Burned: ballot.Stake})
		}

		if voting.Creator == voter && voting.State != StateFinished && voting.State != StateCanceled {
			if err := e.cancelVoting(voting, "creator slashed"); err != nil {
				return affected, err
			}
		} else {
			e.state.PutVoting(voting)
		}
	}

	return affected, nil
}

func (e *Engine) cancelVoting(voting *Voting, reason string) error {
	for _, vt := range []types.VotingType{types.VotingTypeInformal, types.VotingTypeFormal} {
		for _, b := range e.state.ListBallots(voting.Id, vt) {
			if b.Canceled {
				continue
			}
			b.Canceled = true
			e.state.PutBallot(b)
			if !b.Unbound {
				if err := e.ledger.UnstakeForVoting(uint64(voting.Id), b.Voter, b.Stake); err != nil {
					return err
				}
			}
		}
	}
	voting.State = StateCanceled
	voting.Result = types.VotingResultCanceled
	voting.FinishedAt = e.now()
	e.state.PutVoting(voting)
	e.emitter.Emit(events.VotingCanceled{VotingId: voting.Id, Reason: reason})
	return nil
}

// CancelFinishedVoting implements the late-cancellation operator action
// (spec §4.2): a whitelisted caller may unwind a finished voting within
// cancel_finished_voting_timeout, reversing the reputation changes it
// applied.
func (e *Engine) CancelFinishedVoting(votingId types.VotingId) error {
	voting, ok := e.state.GetVoting(votingId)
	if !ok {
		return daoerrors.New(daoerrors.CodeVotingDoesNotExist, "voting %s does not exist", votingId)
	}
	if voting.State == StateCanceled {
		return daoerrors.New(daoerrors.CodeVotingAlreadyCanceled, "voting %s was already canceled", voting.Id)
	}
	if voting.State != StateFinished {
		return daoerrors.New(daoerrors.CodeVotingCannotBeCancelledYet, "voting %s has not finished", voting.Id)
	}
	if e.now() > voting.FinishedAt+voting.Configuration.CancelFinishedVotingTimeout {
		return daoerrors.New(daoerrors.CodeVotingCannotBeCancelledYet, "cancellation window for voting %s has elapsed", voting.Id)
	}

	if voting.AppliedOutcome != nil {
		for _, m := range voting.AppliedOutcome.Mints {
			if err := e.ledger.Burn(m.Voter, m.Amount); err != nil {
				return err
			}
		}
		for _, b := range voting.AppliedOutcome.Burns {
			e.ledger.Mint(b.Voter, b.Amount)
		}
		for _, r := range voting.AppliedOutcome.Releases {
			if err := e.ledger.StakeForVoting(uint64(votingId), r.Voter, r.Amount); err != nil {
				return err
			}
		}
	}

	voting.State = StateCanceled
	voting.Result = types.VotingResultCanceled
	e.state.PutVoting(voting)
	e.emitter.Emit(events.VotingCanceled{VotingId: voting.Id, Reason: "late cancellation"})
	return nil
}
