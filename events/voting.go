package events

import (
	"strconv"

	"daocore/types"
)

const (
	TypeVotingCreated = "voting.created"
	TypeBallotCast    = "ballot.cast"
	TypeBallotCanceled = "ballot.canceled"
	TypeVotingEnded   = "voting.ended"
	TypeVotingCanceled = "voting.canceled"
)

// VotingCreated is emitted when a new informal/formal stage begins.
type VotingCreated struct {
	VotingId          types.VotingId
	VotingType        types.VotingType
	Creator           types.Address
	InformalQuorum    uint32
	FormalQuorum      uint32
	TimeBetweenInformalAndFormal uint64
	DoublingClearnessDelta       bool
}

func (VotingCreated) EventType() string { return TypeVotingCreated }

func (e VotingCreated) Render() *Record {
	return &Record{Type: TypeVotingCreated, Attributes: map[string]string{
		"votingId":       e.VotingId.String(),
		"votingType":     e.VotingType.String(),
		"creator":        e.Creator.String(),
		"informalQuorum": strconv.FormatUint(uint64(e.InformalQuorum), 10),
		"formalQuorum":   strconv.FormatUint(uint64(e.FormalQuorum), 10),
	}}
}

// BallotCast records a single vote contribution to a voting stage's tally.
type BallotCast struct {
	VotingId types.VotingId
	Voter    types.Address
	Choice   types.Choice
	Stake    types.Balance
	IsUnbound bool
}

func (BallotCast) EventType() string { return TypeBallotCast }

func (e BallotCast) Render() *Record {
	return &Record{Type: TypeBallotCast, Attributes: map[string]string{
		"votingId": e.VotingId.String(),
		"voter":    e.Voter.String(),
		"choice":   e.Choice.String(),
		"stake":    e.Stake.String(),
	}}
}

// BallotCanceled records a single voter's stake being returned, independent
// of the voting stage's own outcome. The voting engine does not emit it:
// canceled ballots surface as VoterSlashed, canceled votings as
// VotingCanceled.
type BallotCanceled struct {
	VotingId types.VotingId
	Voter    types.Address
	Stake    types.Balance
}

func (BallotCanceled) EventType() string { return TypeBallotCanceled }

func (e BallotCanceled) Render() *Record {
	return &Record{Type: TypeBallotCanceled, Attributes: map[string]string{
		"votingId": e.VotingId.String(),
		"voter":    e.Voter.String(),
		"stake":    e.Stake.String(),
	}}
}

// VotingEnded carries the tally summary for a finished voting stage.
type VotingEnded struct {
	VotingId     types.VotingId
	VotingType   types.VotingType
	Result       types.VotingResult
	StakeInFavor types.Balance
	StakeAgainst types.Balance
	VotesInFavor uint32
	VotesAgainst uint32
}

func (VotingEnded) EventType() string { return TypeVotingEnded }

func (e VotingEnded) Render() *Record {
	return &Record{Type: TypeVotingEnded, Attributes: map[string]string{
		"votingId":     e.VotingId.String(),
		"votingType":   e.VotingType.String(),
		"result":       e.Result.String(),
		"stakeInFavor": e.StakeInFavor.String(),
		"stakeAgainst": e.StakeAgainst.String(),
	}}
}

// VotingCanceled marks an entire voting (both stages) as withdrawn before
// completion, e.g. following a creator-dependent slashing cascade.
type VotingCanceled struct {
	VotingId types.VotingId
	Reason   string
}

func (VotingCanceled) EventType() string { return TypeVotingCanceled }

func (e VotingCanceled) Render() *Record {
	return &Record{Type: TypeVotingCanceled, Attributes: map[string]string{
		"votingId": e.VotingId.String(),
		"reason":   e.Reason,
	}}
}
