package rules

import "daocore/daoerrors"

// Each predicate constructor takes the already-evaluated boolean condition
// plus whatever values are needed for a useful failure message, and returns
// a Rule carrying the error code spec §4.6 assigns to that named check.
// Keeping predicates as plain functions over primitives (rather than over
// bidescrow's domain types) avoids an import cycle, since bidescrow depends
// on rules, not the reverse.

// IsUserKyced requires the actor to hold a KYC token. It does not consult
// the configuration's forum_kyc_required flag.
func IsUserKyced(kyced bool) Rule {
	return Rule{Name: "IsUserKyced", Ok: kyced, Code: daoerrors.CodeNotWhitelisted, Msg: "actor is not KYC verified"}
}

// CanBidOnOwnJob forbids a job offer's poster from bidding on their own
// offer.
func CanBidOnOwnJob(isOwnJob bool) Rule {
	return Rule{Name: "CanBidOnOwnJob", Ok: !isOwnJob, Code: daoerrors.CodeCannotBidOnOwnJob}
}

// CanVoteOnOwnJob forbids a job's poster from voting on its own proof.
func CanVoteOnOwnJob(isOwnJob bool) Rule {
	return Rule{Name: "CanVoteOnOwnJob", Ok: !isOwnJob, Code: daoerrors.CodeCannotVoteOnOwnJob}
}

// CanBeOnboarded requires the bidder not already be a member when
// requesting onboarding.
func CanBeOnboarded(alreadyMember bool) Rule {
	return Rule{Name: "CanBeOnboarded", Ok: !alreadyMember, Code: daoerrors.CodeNotOnboardedWorkerCannotStakeReputation, Msg: "already a voting associate"}
}

// DoesProposedPaymentExceedBudget rejects a bid whose proposed payment
// exceeds the offer's max budget.
func DoesProposedPaymentExceedBudget(withinBudget bool) Rule {
	return Rule{Name: "DoesProposedPaymentExceedBudget", Ok: withinBudget, Code: daoerrors.CodePaymentExceedsMaxBudget}
}

// CanBidOnAuctionState requires the offer's current auction phase to accept
// new bids from this bidder's class.
func CanBidOnAuctionState(allowed bool) Rule {
	return Rule{Name: "CanBidOnAuctionState", Ok: allowed, Code: daoerrors.CodeAuctionNotRunning}
}

// IsBidStakeCorrect requires exactly one of reputation_stake/cspr_stake to
// be positive, matching the bidder's membership class.
func IsBidStakeCorrect(correct bool) Rule {
	return Rule{Name: "IsBidStakeCorrect", Ok: correct, Code: daoerrors.CodeCannotStakeBothCSPRAndReputation}
}

// IsGracePeriod requires now to fall within (finish_time, finish_time +
// time_for_job].
func IsGracePeriod(inGracePeriod bool) Rule {
	return Rule{Name: "IsGracePeriod", Ok: inGracePeriod, Code: daoerrors.CodeGracePeriodNotStarted}
}

// IsStakeNonZero requires a positive stake amount.
func IsStakeNonZero(nonZero bool) Rule {
	return Rule{Name: "IsStakeNonZero", Ok: nonZero, Code: daoerrors.CodeZeroStake}
}

// CanPickBid requires the caller to be the offer's poster while the offer
// is still Created.
func CanPickBid(allowed bool) Rule {
	return Rule{Name: "CanPickBid", Ok: allowed, Code: daoerrors.CodeOnlyJobPosterCanPickABid}
}

// DoesProposedPaymentMatchTransferred requires the attached CSPR to equal
// the picked bid's proposed payment exactly.
func DoesProposedPaymentMatchTransferred(matches bool) Rule {
	return Rule{Name: "DoesProposedPaymentMatchTransferred", Ok: matches, Code: daoerrors.CodeAttachedValueMismatch}
}

// HasPermissionsToCancelBid requires the caller to be the bid's own worker.
func HasPermissionsToCancelBid(isOwner bool) Rule {
	return Rule{Name: "HasPermissionsToCancelBid", Ok: isOwner, Code: daoerrors.CodeCannotCancelNotOwnedBid}
}

// CanBidBeCancelled requires the offer to still be Created and the
// acceptance timeout to have elapsed since the bid was submitted.
func CanBidBeCancelled(allowed bool) Rule {
	return Rule{Name: "CanBidBeCancelled", Ok: allowed, Code: daoerrors.CodeCannotCancelBidBeforeAcceptanceTimeout}
}

// HasPermissionsToCancelJobOffer requires the caller to be the offer's
// poster.
func HasPermissionsToCancelJobOffer(isOwner bool) Rule {
	return Rule{Name: "HasPermissionsToCancelJobOffer", Ok: isOwner, Code: daoerrors.CodeCannotCancelNotOwnedJobOffer}
}

// CanJobOfferBeCancelled requires the offer's auction window to have fully
// elapsed.
func CanJobOfferBeCancelled(allowed bool) Rule {
	return Rule{Name: "CanJobOfferBeCancelled", Ok: allowed, Code: daoerrors.CodeJobOfferCannotBeYetCanceled}
}

// CanProgressJobOffer requires the offer to still be in a state that
// permits the requested transition (e.g. not already Cancelled).
func CanProgressJobOffer(allowed bool) Rule {
	return Rule{Name: "CanProgressJobOffer", Ok: allowed, Code: daoerrors.CodeCannotAcceptJob}
}

// IsDosFeeEnough requires the attached CSPR, converted at the fiat rate, to
// meet or exceed the configured DOS fee threshold.
func IsDosFeeEnough(enough bool) Rule {
	return Rule{Name: "IsDosFeeEnough", Ok: enough, Code: daoerrors.CodeDosFeeTooLow}
}

// IsJobWorker requires the caller to be the job's assigned worker.
func IsJobWorker(isWorker bool) Rule {
	return Rule{Name: "IsJobWorker", Ok: isWorker, Code: daoerrors.CodeOnlyWorkerCanSubmitProof}
}

// CanSubmitJobProof requires the job to still be Created and within its
// time_for_job window.
func CanSubmitJobProof(withinWindow bool) Rule {
	return Rule{Name: "CanSubmitJobProof", Ok: withinWindow, Code: daoerrors.CodeCannotSubmitJobProof}
}

// IsVa requires the caller to hold a membership token.
func IsVa(isMember bool) Rule {
	return Rule{Name: "IsVa", Ok: isMember, Code: daoerrors.CodeNotAnOwner}
}
