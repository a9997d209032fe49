// Package redistribution implements the Redistribution Kernel (spec §4.3):
// a pure function of (voting type, result, configuration, ballots) that
// computes the reputation unstake/mint/burn deltas for a finished voting
// stage. It never touches a storage backend itself — the Voting Engine and
// Bid-Escrow Workflow apply the returned deltas through their own
// collaborators, keeping this package trivially unit-testable.
package redistribution

import (
	"daocore/config"
	"daocore/types"
)

// Ballot is the minimal view of a cast ballot the kernel needs: enough to
// compute tallies and winner/loser shares without depending on the voting
// package (which would create an import cycle, since voting depends on this
// package to apply outcomes).
type Ballot struct {
	Voter   types.Address
	Choice  types.Choice
	Stake   types.Balance
	Unbound bool
}

// StakeRelease instructs the caller to return a bound ballot's locked stake
// to its voter's free balance.
type StakeRelease struct {
	Voter  types.Address
	Amount types.Balance
}

// Mint instructs the caller to credit amount to Voter, either as
// transferable reputation (Passive=false) or as potential-only balance
// (Passive=true, spec's mint_passive).
type Mint struct {
	Voter   types.Address
	Amount  types.Balance
	Passive bool
	Reason  string
}

// Burn instructs the caller to debit amount from Voter's free reputation
// balance.
type Burn struct {
	Voter  types.Address
	Amount types.Balance
	Reason string
}

// Outcome is the full set of reputation-ledger deltas produced for one
// finished voting stage.
type Outcome struct {
	Releases []StakeRelease
	Mints    []Mint
	Burns    []Burn
}

const (
	ReasonVotingStakeReturn = "voting_stake_return"
	ReasonRedistribution    = "redistribution"
	ReasonRedistributionDust = "redistribution_dust"
)

// Compute implements the outcome table of spec §4.3 for the generic
// (non-bid-escrow-CSPR) portion of a finished voting stage. Bid-escrow and
// onboarding CSPR flows are layered on top of this by their own packages,
// which call Compute for the reputation side effects and handle CSPR
// transfers separately using the same winner/loser partition this function
// exposes via the returned Outcome's Mints/Burns voter sets.
func Compute(votingType types.VotingType, result types.VotingResult, cfg config.Configuration, ballots []Ballot) Outcome {
	switch result {
	case types.VotingResultQuorumNotReached, types.VotingResultCanceled:
		return releaseAllBound(ballots)
	}

	if votingType == types.VotingTypeInformal {
		// Informal InFavor/Against: unstake only, advance to BetweenVotings.
		return releaseAllBound(ballots)
	}

	// Formal InFavor/Against: winners take a proportional share of losers'
	// bound stake; losers are burned. Unbound winners receive their share as
	// passive (potential) balance instead of transferable reputation.
	winningChoice := types.ChoiceInFavor
	if result == types.VotingResultAgainst {
		winningChoice = types.ChoiceAgainst
	}

	var winners, losers []Ballot
	for _, b := range ballots {
		if b.Choice == winningChoice {
			winners = append(winners, b)
		} else {
			losers = append(losers, b)
		}
	}

	totalLosersBound := types.Zero
	for _, l := range losers {
		if !l.Unbound {
			totalLosersBound = totalLosersBound.Add(l.Stake)
		}
	}
	totalWinnersWeight := types.Zero
	for _, w := range winners {
		totalWinnersWeight = totalWinnersWeight.Add(w.Stake)
	}

	var out Outcome

	for _, l := range losers {
		if l.Unbound {
			continue
		}
		out.Burns = append(out.Burns, Burn{Voter: l.Voter, Amount: l.Stake, Reason: ReasonRedistribution})
	}

	distributed := types.Zero
	for _, w := range winners {
		if !w.Unbound {
			out.Releases = append(out.Releases, StakeRelease{Voter: w.Voter, Amount: w.Stake})
		}
		if totalWinnersWeight.IsZero() || totalLosersBound.IsZero() {
			continue
		}
		share := w.Stake.MulDivFloor(totalLosersBound, totalWinnersWeight)
		if share.IsZero() {
			continue
		}
		distributed = distributed.Add(share)
		out.Mints = append(out.Mints, Mint{Voter: w.Voter, Amount: share, Passive: w.Unbound, Reason: ReasonRedistribution})
	}

	dust, ok := totalLosersBound.SafeSub(distributed)
	if ok && !dust.IsZero() {
		out.Mints = append(out.Mints, Mint{Voter: cfg.GovernanceWallet, Amount: dust, Reason: ReasonRedistributionDust})
	}

	return out
}

func releaseAllBound(ballots []Ballot) Outcome {
	var out Outcome
	for _, b := range ballots {
		if b.Unbound {
			continue
		}
		out.Releases = append(out.Releases, StakeRelease{Voter: b.Voter, Amount: b.Stake})
	}
	return out
}
