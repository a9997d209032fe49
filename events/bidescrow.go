package events

import (
	"daocore/types"
)

const (
	TypeJobOfferCreated = "bidescrow.job_offer_created"
	TypeBidSubmitted    = "bidescrow.bid_submitted"
	TypeBidCancelled    = "bidescrow.bid_cancelled"
	TypeJobCreated      = "bidescrow.job_created"
	TypeJobSubmitted    = "bidescrow.job_submitted"
	TypeJobCancelled    = "bidescrow.job_cancelled"
	TypeJobDone         = "bidescrow.job_done"
	TypeJobRejected     = "bidescrow.job_rejected"
)

// JobOfferCreated is emitted when a job poster opens an auction.
type JobOfferCreated struct {
	JobOfferId types.JobOfferId
	Poster     types.Address
	MaxBudget  types.Balance
	DosFee     types.Balance
}

func (JobOfferCreated) EventType() string { return TypeJobOfferCreated }

func (e JobOfferCreated) Render() *Record {
	return &Record{Type: TypeJobOfferCreated, Attributes: map[string]string{
		"jobOfferId": e.JobOfferId.String(),
		"poster":     e.Poster.String(),
		"maxBudget":  e.MaxBudget.String(),
		"dosFee":     e.DosFee.String(),
	}}
}

// BidSubmitted is emitted when a worker enters the auction.
type BidSubmitted struct {
	JobOfferId types.JobOfferId
	BidId      types.BidId
	Worker     types.Address
	WorkerType types.WorkerType
	Proposed   types.Balance
	ReputationStake types.Balance
	CSPRStake       types.Balance
}

func (BidSubmitted) EventType() string { return TypeBidSubmitted }

func (e BidSubmitted) Render() *Record {
	return &Record{Type: TypeBidSubmitted, Attributes: map[string]string{
		"jobOfferId": e.JobOfferId.String(),
		"bidId":      e.BidId.String(),
		"worker":     e.Worker.String(),
		"workerType": e.WorkerType.String(),
		"proposed":   e.Proposed.String(),
	}}
}

// BidCancelled is emitted when a bidder withdraws before acceptance.
type BidCancelled struct {
	JobOfferId types.JobOfferId
	BidId      types.BidId
	Worker     types.Address
}

func (BidCancelled) EventType() string { return TypeBidCancelled }

func (e BidCancelled) Render() *Record {
	return &Record{Type: TypeBidCancelled, Attributes: map[string]string{
		"jobOfferId": e.JobOfferId.String(),
		"bidId":      e.BidId.String(),
		"worker":     e.Worker.String(),
	}}
}

// JobCreated is emitted when a poster picks a winning bid.
type JobCreated struct {
	JobOfferId types.JobOfferId
	JobId      types.JobId
	BidId      types.BidId
	Worker     types.Address
	Payment    types.Balance
}

func (JobCreated) EventType() string { return TypeJobCreated }

func (e JobCreated) Render() *Record {
	return &Record{Type: TypeJobCreated, Attributes: map[string]string{
		"jobOfferId": e.JobOfferId.String(),
		"jobId":      e.JobId.String(),
		"bidId":      e.BidId.String(),
		"worker":     e.Worker.String(),
		"payment":    e.Payment.String(),
	}}
}

// JobSubmitted is emitted when the worker (or a grace-period substitute)
// submits proof of completed work.
type JobSubmitted struct {
	JobId       types.JobId
	Submitter   types.Address
	ProofHash   string
	DuringGrace bool
}

func (JobSubmitted) EventType() string { return TypeJobSubmitted }

func (e JobSubmitted) Render() *Record {
	return &Record{Type: TypeJobSubmitted, Attributes: map[string]string{
		"jobId":     e.JobId.String(),
		"submitter": e.Submitter.String(),
		"proofHash": e.ProofHash,
	}}
}

// JobCancelled is emitted when a job is withdrawn without a submission.
type JobCancelled struct {
	JobId  types.JobId
	Reason string
}

func (JobCancelled) EventType() string { return TypeJobCancelled }

func (e JobCancelled) Render() *Record {
	return &Record{Type: TypeJobCancelled, Attributes: map[string]string{
		"jobId":  e.JobId.String(),
		"reason": e.Reason,
	}}
}

// JobDone is emitted when the formal voting on a submitted job proof passes.
type JobDone struct {
	JobId   types.JobId
	Worker  types.Address
	Payment types.Balance
}

func (JobDone) EventType() string { return TypeJobDone }

func (e JobDone) Render() *Record {
	return &Record{Type: TypeJobDone, Attributes: map[string]string{
		"jobId":   e.JobId.String(),
		"worker":  e.Worker.String(),
		"payment": e.Payment.String(),
	}}
}

// JobRejected is emitted when the formal voting on a submitted job proof
// fails, triggering the redistribution kernel's failure path.
type JobRejected struct {
	JobId  types.JobId
	Worker types.Address
}

func (JobRejected) EventType() string { return TypeJobRejected }

func (e JobRejected) Render() *Record {
	return &Record{Type: TypeJobRejected, Attributes: map[string]string{
		"jobId":  e.JobId.String(),
		"worker": e.Worker.String(),
	}}
}
