// Package voting implements the Voting Engine (spec §4.2): the two-stage
// (informal → formal) weighted voting state machine shared by every voter
// module (generic governance votes, bid-escrow job proofs, onboarding
// requests). Grounded on the teacher's native/governance.Engine shape: a
// state-interface-backed engine with an injectable clock and event emitter.
package voting

import (
	"daocore/config"
	"daocore/redistribution"
	"daocore/types"
)

// State is a voting's position in its lifecycle (spec §3).
type State uint8

const (
	StateInformalVoting State = iota
	StateBetweenVotings
	StateFormalVoting
	StateFinished
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateInformalVoting:
		return "informal_voting"
	case StateBetweenVotings:
		return "between_votings"
	case StateFormalVoting:
		return "formal_voting"
	case StateFinished:
		return "finished"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Ballot is one voter's cast vote on one (voting, type) pair (spec §3).
type Ballot struct {
	Voter      types.Address
	VotingId   types.VotingId
	VotingType types.VotingType
	Choice     types.Choice
	Stake      types.Balance
	// Unbound is true when Stake was never actually locked in the
	// reputation ledger (e.g. an external worker with no reputation yet).
	// Such ballots count toward quorum/outcome but never redistribution.
	Unbound bool
	// Canceled is set when the voter is globally slashed mid-voting.
	Canceled bool
}

// tally accumulates the running totals for a single voting-type segment.
// Reset independently for the informal and formal stages, matching the
// spec invariant that stake_in_favor+stake_against always equals the sum
// of bound ballot stakes "for that voting in its current type".
type tally struct {
	StakeInFavor       types.Balance
	StakeAgainst       types.Balance
	UnboundStakeInFavor types.Balance
	UnboundStakeAgainst types.Balance
	VotesInFavor       uint32
	VotesAgainst       uint32
}

func newTally() tally {
	return tally{
		StakeInFavor:        types.Zero,
		StakeAgainst:        types.Zero,
		UnboundStakeInFavor: types.Zero,
		UnboundStakeAgainst: types.Zero,
	}
}

func (t *tally) add(b Ballot) {
	switch b.Choice {
	case types.ChoiceInFavor:
		t.VotesInFavor++
		if b.Unbound {
			t.UnboundStakeInFavor = t.UnboundStakeInFavor.Add(b.Stake)
		} else {
			t.StakeInFavor = t.StakeInFavor.Add(b.Stake)
		}
	case types.ChoiceAgainst:
		t.VotesAgainst++
		if b.Unbound {
			t.UnboundStakeAgainst = t.UnboundStakeAgainst.Add(b.Stake)
		} else {
			t.StakeAgainst = t.StakeAgainst.Add(b.Stake)
		}
	}
}

func (t *tally) remove(b Ballot) {
	switch b.Choice {
	case types.ChoiceInFavor:
		if t.VotesInFavor > 0 {
			t.VotesInFavor--
		}
		if b.Unbound {
			t.UnboundStakeInFavor, _ = t.UnboundStakeInFavor.SafeSub(b.Stake)
		} else {
			t.StakeInFavor, _ = t.StakeInFavor.SafeSub(b.Stake)
		}
	case types.ChoiceAgainst:
		if t.VotesAgainst > 0 {
			t.VotesAgainst--
		}
		if b.Unbound {
			t.UnboundStakeAgainst, _ = t.UnboundStakeAgainst.SafeSub(b.Stake)
		} else {
			t.StakeAgainst, _ = t.StakeAgainst.SafeSub(b.Stake)
		}
	}
}

func (t tally) totalVotes() uint32 { return t.VotesInFavor + t.VotesAgainst }

// Voting is the VotingStateMachine of spec §3.
type Voting struct {
	Id           types.VotingId
	Creator      types.Address
	CreationTime uint64

	State State

	Informal tally
	Formal   tally

	// ClearnessTriggered is set at informal-finish time when the stake gap
	// fell below voting_clearness_delta, doubling the effective time
	// between votings for this voting only (spec §4.2, §9).
	ClearnessTriggered bool
	InformalFinishedAt uint64
	FormalStartedAt    uint64
	FinishedAt         uint64

	FinishedType types.VotingType
	Result       types.VotingResult

	Configuration config.Configuration

	// AppliedOutcome records the redistribution kernel's last applied
	// result, so CancelFinishedVoting can reverse it precisely.
	AppliedOutcome *redistribution.Outcome
}

// Summary is the VotingSummary returned by FinishVoting, carrying the
// configuration snapshot's key parameters so external indexers can
// interpret the result without refetching (spec §6).
type Summary struct {
	VotingId     types.VotingId
	VotingType   types.VotingType
	Result       types.VotingResult
	StakeInFavor types.Balance
	StakeAgainst types.Balance
	VotesInFavor uint32
	VotesAgainst uint32
	Configuration config.Configuration
}
