// Package daoerrors defines the enumerated failure codes shared by every
// public operation in the governance core. Every code has exactly one
// meaning and is never reused for a different cause (spec §7): callers that
// need to distinguish failure kinds programmatically should compare against
// Code, not against error strings.
package daoerrors

import "fmt"

// Code enumerates every distinct failure kind the core can report.
type Code uint16

const (
	CodeUnspecified Code = iota

	// Permission
	CodeNotAnOwner
	CodeNotWhitelisted
	CodeOnlyWorkerCanSubmitProof
	CodeOnlyJobPosterCanPickABid
	CodeCannotVoteOnOwnJob
	CodeCannotBidOnOwnJob
	CodeSubjectOfSlashing
	CodeCannotCancelNotOwnedBid
	CodeCannotCancelNotOwnedJobOffer

	// State
	CodeCannotCancelJob
	CodeJobCannotBeYetCanceled
	CodeCannotAcceptJob
	CodeJobAlreadySubmitted
	CodeCannotSubmitJobProof
	CodeAuctionNotRunning
	CodeInternalAuctionTimeExpired
	CodePublicAuctionTimeExpired
	CodePublicAuctionNotStarted
	CodeCannotCancelBidBeforeAcceptanceTimeout
	CodeCannotCancelBidOnCompletedJobOffer
	CodeGracePeriodNotStarted
	CodeJobOfferCannotBeYetCanceled
	CodeInformalVotingTimeNotReached
	CodeFormalVotingTimeNotReached
	CodeVoteOnCompletedVotingNotAllowed
	CodeFinishingCompletedVotingNotAllowed
	CodeVotingCannotBeCancelledYet
	CodeVotingAlreadyCanceled
	CodeVotingAlreadyFinished
	CodeVotingDuringTimeBetweenVotingsNotAllowed
	CodeVotingWithGivenTypeNotInProgress
	CodeExpectedInformal
	CodeExpectedFormalToBeOn

	// Input
	CodeZeroStake
	CodeCannotStakeBothCSPRAndReputation
	CodeOnboardedWorkerCannotStakeCSPR
	CodeNotOnboardedWorkerMustStakeCSPR
	CodeNotOnboardedWorkerCannotStakeReputation
	CodePaymentExceedsMaxBudget
	CodeDosFeeTooLow
	CodeAttachedValueMismatch
	CodeCannotVoteTwice
	CodeCannotDepositZeroAmount

	// Lookup
	CodeVotingDoesNotExist
	CodeBallotDoesNotExist
	CodeJobOfferNotFound
	CodeBidNotFound
	CodeJobNotFound
	CodeOnboardingRequestNotFound
	CodeVotingIdNotFound
	CodeValueNotAvailable

	// Arithmetic / Resource
	CodeArithmeticOverflow
	CodeTotalSupplyOverflow
	CodeInsufficientBalance
	CodeInsufficientBalanceForStake
	CodeTransferError
	CodePurseBalanceMismatch
	CodeFiatRateNotSet

	// Reputation ledger specific (spec §6)
	CodeCannotStakeTwice
	CodeBidStakeDoesntExist
	CodeVotingStakeDoesntExist

	// Membership / KYC registry specific
	CodeUserAlreadyOwnsToken

	// Variable repository specific
	CodeActivationTimeInPast

	// Deferred contract call specific (spec §9)
	CodeContractCallFailed

	// Onboarding specific
	CodeNotOnboarded
)

var codeNames = map[Code]string{
	CodeUnspecified:                               "Unspecified",
	CodeNotAnOwner:                                "NotAnOwner",
	CodeNotWhitelisted:                            "NotWhitelisted",
	CodeOnlyWorkerCanSubmitProof:                  "OnlyWorkerCanSubmitProof",
	CodeOnlyJobPosterCanPickABid:                  "OnlyJobPosterCanPickABid",
	CodeCannotVoteOnOwnJob:                        "CannotVoteOnOwnJob",
	CodeCannotBidOnOwnJob:                         "CannotBidOnOwnJob",
	CodeSubjectOfSlashing:                         "SubjectOfSlashing",
	CodeCannotCancelNotOwnedBid:                   "CannotCancelNotOwnedBid",
	CodeCannotCancelNotOwnedJobOffer:              "CannotCancelNotOwnedJobOffer",
	CodeCannotCancelJob:                           "CannotCancelJob",
	CodeJobCannotBeYetCanceled:                    "JobCannotBeYetCanceled",
	CodeCannotAcceptJob:                           "CannotAcceptJob",
	CodeJobAlreadySubmitted:                       "JobAlreadySubmitted",
	CodeCannotSubmitJobProof:                      "CannotSubmitJobProof",
	CodeAuctionNotRunning:                         "AuctionNotRunning",
	CodeInternalAuctionTimeExpired:                "InternalAuctionTimeExpired",
	CodePublicAuctionTimeExpired:                  "PublicAuctionTimeExpired",
	CodePublicAuctionNotStarted:                   "PublicAuctionNotStarted",
	CodeCannotCancelBidBeforeAcceptanceTimeout:    "CannotCancelBidBeforeAcceptanceTimeout",
	CodeCannotCancelBidOnCompletedJobOffer:        "CannotCancelBidOnCompletedJobOffer",
	CodeGracePeriodNotStarted:                     "GracePeriodNotStarted",
	CodeJobOfferCannotBeYetCanceled:               "JobOfferCannotBeYetCanceled",
	CodeInformalVotingTimeNotReached:              "InformalVotingTimeNotReached",
	CodeFormalVotingTimeNotReached:                "FormalVotingTimeNotReached",
	CodeVoteOnCompletedVotingNotAllowed:           "VoteOnCompletedVotingNotAllowed",
	CodeFinishingCompletedVotingNotAllowed:        "FinishingCompletedVotingNotAllowed",
	CodeVotingCannotBeCancelledYet:                "VotingCannotBeCancelledYet",
	CodeVotingAlreadyCanceled:                     "VotingAlreadyCanceled",
	CodeVotingAlreadyFinished:                     "VotingAlreadyFinished",
	CodeVotingDuringTimeBetweenVotingsNotAllowed:  "VotingDuringTimeBetweenVotingsNotAllowed",
	CodeVotingWithGivenTypeNotInProgress:          "VotingWithGivenTypeNotInProgress",
	CodeExpectedInformal:                          "ExpectedInformal",
	CodeExpectedFormalToBeOn:                      "ExpectedFormalToBeOn",
	CodeZeroStake:                                 "ZeroStake",
	CodeCannotStakeBothCSPRAndReputation:          "CannotStakeBothCSPRAndReputation",
	CodeOnboardedWorkerCannotStakeCSPR:            "OnboardedWorkerCannotStakeCSPR",
	CodeNotOnboardedWorkerMustStakeCSPR:           "NotOnboardedWorkerMustStakeCSPR",
	CodeNotOnboardedWorkerCannotStakeReputation:   "NotOnboardedWorkerCannotStakeReputation",
	CodePaymentExceedsMaxBudget:                   "PaymentExceedsMaxBudget",
	CodeDosFeeTooLow:                              "DosFeeTooLow",
	CodeAttachedValueMismatch:                     "AttachedValueMismatch",
	CodeCannotVoteTwice:                           "CannotVoteTwice",
	CodeCannotDepositZeroAmount:                   "CannotDepositZeroAmount",
	CodeVotingDoesNotExist:                        "VotingDoesNotExist",
	CodeBallotDoesNotExist:                        "BallotDoesNotExist",
	CodeJobOfferNotFound:                          "JobOfferNotFound",
	CodeBidNotFound:                               "BidNotFound",
	CodeJobNotFound:                               "JobNotFound",
	CodeOnboardingRequestNotFound:                 "OnboardingRequestNotFound",
	CodeVotingIdNotFound:                          "VotingIdNotFound",
	CodeValueNotAvailable:                         "ValueNotAvailable",
	CodeArithmeticOverflow:                        "ArithmeticOverflow",
	CodeTotalSupplyOverflow:                       "TotalSupplyOverflow",
	CodeInsufficientBalance:                       "InsufficientBalance",
	CodeInsufficientBalanceForStake:               "InsufficientBalanceForStake",
	CodeTransferError:                             "TransferError",
	CodePurseBalanceMismatch:                      "PurseBalanceMismatch",
	CodeFiatRateNotSet:                            "FiatRateNotSet",
	CodeCannotStakeTwice:                          "CannotStakeTwice",
	CodeBidStakeDoesntExist:                       "BidStakeDoesntExist",
	CodeVotingStakeDoesntExist:                    "VotingStakeDoesntExist",
	CodeUserAlreadyOwnsToken:                      "UserAlreadyOwnsToken",
	CodeActivationTimeInPast:                      "ActivationTimeInPast",
	CodeContractCallFailed:                        "ContractCallFailed",
	CodeNotOnboarded:                              "NotOnboarded",
}

// String renders the code's symbolic name for logs and error messages.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint16(c))
}

// Error is the structured error type returned by every public operation.
// Propagation policy: a returned Error means the operation committed no
// mutation and emitted no event (spec §4.2 "Failure model").
type Error struct {
	Code   Code
	Detail string
	cause  error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code.String(), e.Detail)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }

// New constructs an Error carrying the given code and a formatted detail.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error carrying the given code and wrapping cause.
func Wrap(code Code, cause error) *Error {
	if cause == nil {
		return &Error{Code: code}
	}
	return &Error{Code: code, Detail: cause.Error(), cause: cause}
}

// Is reports whether err is a *Error carrying the given code, allowing
// callers to write `daoerrors.Is(err, daoerrors.CodeZeroStake)`.
func Is(err error, code Code) bool {
	var de *Error
	if !asError(err, &de) {
		return false
	}
	return de.Code == code
}

func asError(err error, target **Error) bool {
	for err != nil {
		if de, ok := err.(*Error); ok {
			*target = de
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
