package config

// Variable repository key names. These are the exact field list of the
// Configuration snapshot (spec §3); the Resolver reads each one from the
// variable repository and fails ValueNotAvailable when a required key is
// absent.
const (
	KeyPostJobDosFee             = "post_job_dos_fee"
	KeyDefaultPolicingRate       = "default_policing_rate"
	KeyReputationConversionRate  = "reputation_conversion_rate"
	KeyBidEscrowPaymentRatio     = "bid_escrow_payment_ratio"
	KeyDefaultReputationSlash    = "default_reputation_slash"

	KeyInternalAuctionTime                  = "internal_auction_time"
	KeyPublicAuctionTime                    = "public_auction_time"
	KeyInformalVotingTime                   = "informal_voting_time"
	KeyFormalVotingTime                     = "formal_voting_time"
	KeyBidEscrowInformalVotingTime          = "bid_escrow_informal_voting_time"
	KeyBidEscrowFormalVotingTime            = "bid_escrow_formal_voting_time"
	KeyTimeBetweenInformalAndFormalVoting   = "time_between_informal_and_formal_voting"
	KeyVaBidAcceptanceTimeout               = "va_bid_acceptance_timeout"
	KeyVotingDelayAfterJobWorkerSubmission  = "voting_delay_after_job_worker_submission"
	KeyCancelFinishedVotingTimeout          = "cancel_finished_voting_timeout"

	KeyInformalQuorumRatio           = "informal_quorum_ratio"
	KeyFormalQuorumRatio             = "formal_quorum_ratio"
	KeyBidEscrowInformalQuorumRatio  = "bid_escrow_informal_quorum_ratio"
	KeyBidEscrowFormalQuorumRatio    = "bid_escrow_formal_quorum_ratio"

	KeyInformalStakeReputation       = "informal_stake_reputation"
	KeyVaCanBidOnPublicAuction       = "va_can_bid_on_public_auction"
	KeyDistributePaymentToNonVoters  = "distribute_payment_to_non_voters"
	KeyForumKycRequired              = "forum_kyc_required"
	KeyOnlyVaCanCreate               = "only_va_can_create"
	KeyIsBidEscrow                   = "is_bid_escrow"
	KeyBindBallotForSuccessfulVoting = "bind_ballot_for_successful_voting"
	KeyDoubleTimeBetweenVotings      = "double_time_between_votings"

	KeyVotingClearnessDelta = "voting_clearness_delta"

	KeyGovernanceWallet = "governance_wallet"
)
