// Package bidescrow implements the Bid-Escrow Workflow (spec §4.4): job
// offer posting, the bid auction, work submission with its grace-period
// takeover chain, and the CSPR/reputation payout rules that follow a formal
// voting's outcome. A single Engine owns every operation, matching the
// teacher's single-owner trade-engine shape (native/escrow/trade_engine.go).
package bidescrow

import (
	"daocore/config"
	"daocore/types"
)

// OfferStatus is a JobOffer's lifecycle position.
type OfferStatus uint8

const (
	OfferCreated OfferStatus = iota
	OfferInProgress
	OfferCancelled
)

// BidStatus is a Bid's lifecycle position.
type BidStatus uint8

const (
	BidCreated BidStatus = iota
	BidPicked
	BidRejected
	BidReclaimed
	BidCanceled
)

// JobStatus is a Job's lifecycle position.
type JobStatus uint8

const (
	JobCreated JobStatus = iota
	JobCancelled
	JobSubmitted
	JobCompleted
	// JobNotCompleted is the terminal state for a submitted job whose
	// formal voting missed quorum (spec §4.3 "Formal QuorumNotReached"),
	// matching the Rust original's JobStatus::NotCompleted variant.
	JobNotCompleted
)

// JobOffer is a posted auction for work (spec §3).
type JobOffer struct {
	Id                types.JobOfferId
	Poster            types.Address
	MaxBudget         types.Balance
	ExpectedTimeframe uint64
	DosFee            types.Balance
	Status            OfferStatus
	StartTime         uint64
	Configuration     config.Configuration
}

// Bid is a worker's offer against a JobOffer (spec §3). Exactly one of
// ReputationStake or CSPRStake is positive: members stake reputation,
// externals stake CSPR.
type Bid struct {
	Id                types.BidId
	OfferId           types.JobOfferId
	Status            BidStatus
	Timestamp         uint64
	ProposedTimeframe uint64
	ProposedPayment   types.Balance
	ReputationStake   types.Balance
	CSPRStake         types.Balance
	Onboard           bool
	Worker            types.Address
	WorkerType        types.WorkerType
}

// Job is the work unit created from a picked bid (spec §3).
type Job struct {
	Id         types.JobId
	BidId      types.BidId
	OfferId    types.JobOfferId
	VotingId   *types.VotingId
	Proof      string
	StartTime  uint64
	TimeForJob uint64
	Status     JobStatus
	Worker     types.Address
	WorkerType types.WorkerType
	Poster     types.Address
	Payment    types.Balance
	// Stake is the worker's reputation stake; zero when the worker staked
	// CSPR instead (ExternalWorkerCSPRStake holds that amount).
	Stake                   types.Balance
	ExternalWorkerCSPRStake types.Balance
	// FollowedBy links to the job that superseded this one during a
	// grace-period takeover, forming a reclaim chain (spec glossary).
	FollowedBy *types.JobId

	// votingScheduledAt is set when submit_job_proof records the delay
	// after which the formal voting is created; it keeps that value once
	// the voting has been created (votingPending is cleared instead).
	votingScheduledAt uint64
	votingPending     bool
}

// AuctionPhase classifies where in its auction window an offer currently
// sits, driving CanBidOnAuctionState.
type AuctionPhase uint8

const (
	AuctionInternal AuctionPhase = iota
	AuctionPublic
	AuctionClosed
)

// Phase returns the offer's current auction phase given now.
func (o *JobOffer) Phase(now uint64) AuctionPhase {
	switch {
	case now < o.StartTime+o.Configuration.InternalAuctionTime:
		return AuctionInternal
	case now < o.StartTime+o.Configuration.InternalAuctionTime+o.Configuration.PublicAuctionTime:
		return AuctionPublic
	default:
		return AuctionClosed
	}
}
