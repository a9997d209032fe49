package events

import (
	"daocore/types"
)

const (
	TypeCSPRTransfer           = "cspr.transfer"
	TypeOnboardingVotingCreated = "onboarding.voting_created"
	TypeVoterSlashed            = "voter.slashed"
)

// CSPRTransfer records a CSPR movement the core directs the host to perform.
// reason is a short machine-stable label (the bid-escrow workflow emits
// "JobPayment", "GovernanceCut", "Redistribution", "BidStakeReturn",
// "DOSFeeReturn", "JobPaymentReturn" and "JobPaymentAndDOSFeeReturn") so
// indexers can bucket transfers without parsing free text.
type CSPRTransfer struct {
	From   types.Address
	To     types.Address
	Amount types.Balance
	Reason string
}

func (CSPRTransfer) EventType() string { return TypeCSPRTransfer }

func (e CSPRTransfer) Render() *Record {
	return &Record{Type: TypeCSPRTransfer, Attributes: map[string]string{
		"from":   e.From.String(),
		"to":     e.To.String(),
		"amount": e.Amount.String(),
		"reason": e.Reason,
	}}
}

// OnboardingVotingCreated is emitted when a stake-backed onboarding request
// opens its informal voting stage.
type OnboardingVotingCreated struct {
	VotingId   types.VotingId
	Requester  types.Address
	Stake      types.Balance
	ReasonHash string
}

func (OnboardingVotingCreated) EventType() string { return TypeOnboardingVotingCreated }

func (e OnboardingVotingCreated) Render() *Record {
	return &Record{Type: TypeOnboardingVotingCreated, Attributes: map[string]string{
		"votingId":   e.VotingId.String(),
		"requester":  e.Requester.String(),
		"stake":      e.Stake.String(),
		"reasonHash": e.ReasonHash,
	}}
}

// VoterSlashed is the slashing-result event named by spec §6 ("plus
// slashing-result events"): emitted once per ballot that the voting engine's
// SlashVoter cancels. Burned carries that ballot's stake; SlashVoter returns
// a bound stake to the voter and burns no reputation.
type VoterSlashed struct {
	VotingId types.VotingId
	Voter    types.Address
	Burned   types.Balance
}

func (VoterSlashed) EventType() string { return TypeVoterSlashed }

func (e VoterSlashed) Render() *Record {
	return &Record{Type: TypeVoterSlashed, Attributes: map[string]string{
		"votingId": e.VotingId.String(),
		"voter":    e.Voter.String(),
		"burned":   e.Burned.String(),
	}}
}
