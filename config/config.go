// Package config implements the Configuration Resolver (spec §4.1): the
// pure builder that snapshots the variable repository into an immutable
// Configuration consumed by a single voting for its entire lifetime.
package config

import (
	"strconv"

	"daocore/daoerrors"
	"daocore/types"
	"daocore/variables"
)

// ContractCall is one deferred side effect scheduled to run sequentially at
// formal-voting completion, under the operation's own transactional
// envelope (spec §9 "Deferred contract calls").
type ContractCall struct {
	Target         string
	Method         string
	Args           []byte
	AttachedAmount types.Balance
}

// FiatRateOracle is the narrow external collaborator consulted only at
// bid-escrow configuration build time, to convert the DOS fee threshold.
type FiatRateOracle interface {
	Rate() (types.Balance, error)
}

// Configuration is the immutable snapshot every voting carries for its
// entire lifetime (spec §3). Every field is final once Build returns; the
// tally and finish paths never re-read the variable repository.
type Configuration struct {
	// money
	PostJobDosFee             types.Balance
	DefaultPolicingRate       uint32
	ReputationConversionRate  uint32
	BidEscrowPaymentRatio     uint32
	DefaultReputationSlash    uint32
	FiatRate                  *types.Balance

	// timing
	InternalAuctionTime                 uint64
	PublicAuctionTime                   uint64
	InformalVotingTime                  uint64
	FormalVotingTime                    uint64
	TimeBetweenInformalAndFormalVoting  uint64
	VaBidAcceptanceTimeout              uint64
	VotingDelayAfterJobWorkerSubmission uint64
	CancelFinishedVotingTimeout         uint64

	// ratios (per-mille)
	InformalQuorumRatio uint32
	FormalQuorumRatio   uint32

	// flags
	InformalStakeReputation      bool
	VaCanBidOnPublicAuction      bool
	DistributePaymentToNonVoters bool
	ForumKycRequired             bool
	OnlyVaCanCreate              bool
	IsBidEscrow                  bool
	BindBallotForSuccessfulVoting bool
	DoubleTimeBetweenVotings     bool

	// derived
	VotingClearnessDelta types.Balance

	// composition
	ContractCalls       []ContractCall
	UnboundBallotAddress types.Address
	TotalOnboarded       uint64
	GovernanceWallet     types.Address

	// derived quorum counts, computed at build time from the ratios above
	// and the member count snapshot (spec §4.1).
	InformalQuorum uint32
	FormalQuorum   uint32
}

// Resolver builds Configuration snapshots from the delayed-activation
// variable repository.
type Resolver struct {
	vars   *variables.Repository
	oracle FiatRateOracle
}

// NewResolver constructs a Resolver. oracle may be nil; it is only
// consulted when an override enables IsBidEscrow.
func NewResolver(vars *variables.Repository, oracle FiatRateOracle) *Resolver {
	return &Resolver{vars: vars, oracle: oracle}
}

// Override is a fluent builder option applied after the base snapshot is
// read from the variable repository, matching spec §4.1's exposed
// overrides.
type Override func(*Configuration) error

// OnlyVaCanCreate forces the only_va_can_create flag regardless of the
// stored value.
func OnlyVaCanCreate(v bool) Override {
	return func(c *Configuration) error {
		c.OnlyVaCanCreate = v
		return nil
	}
}

// IsBidEscrowOverride switches the generic timing/quorum fields for their
// bid-escrow-specific counterparts and requires a fiat rate to be
// available.
func IsBidEscrowOverride(resolver *Resolver, bidEscrowInformalTime, bidEscrowFormalTime uint64, bidEscrowInformalQuorumRatio, bidEscrowFormalQuorumRatio uint32) Override {
	return func(c *Configuration) error {
		c.IsBidEscrow = true
		c.InformalVotingTime = bidEscrowInformalTime
		c.FormalVotingTime = bidEscrowFormalTime
		c.InformalQuorumRatio = bidEscrowInformalQuorumRatio
		c.FormalQuorumRatio = bidEscrowFormalQuorumRatio
		c.InformalQuorum = uint32(types.CeilRatio(uint32(c.InformalQuorumRatio), c.TotalOnboarded))
		c.FormalQuorum = uint32(types.CeilRatio(uint32(c.FormalQuorumRatio), c.TotalOnboarded))
		if resolver.oracle == nil {
			return daoerrors.New(daoerrors.CodeFiatRateNotSet, "bid-escrow configuration requires a fiat rate oracle")
		}
		rate, err := resolver.oracle.Rate()
		if err != nil {
			return daoerrors.Wrap(daoerrors.CodeFiatRateNotSet, err)
		}
		c.FiatRate = &rate
		return nil
	}
}

// ContractCalls appends deferred side effects to run at formal-voting close.
func ContractCalls(calls ...ContractCall) Override {
	return func(c *Configuration) error {
		c.ContractCalls = append(c.ContractCalls, calls...)
		return nil
	}
}

// BindBallotForSuccessfulVoting designates the single ballot that converts
// from unbound to bound when the voting passes (spec §9).
func BindBallotForSuccessfulVoting(addr types.Address) Override {
	return func(c *Configuration) error {
		c.BindBallotForSuccessfulVoting = true
		c.UnboundBallotAddress = addr
		return nil
	}
}

// Build reads every recognized key from the variable repository, converts
// per-mille ratios into absolute quorum counts, and applies overrides in
// order. The resulting Configuration is a value clone safe to embed by
// value into any number of votings.
func (r *Resolver) Build(memberCount uint64, overrides ...Override) (Configuration, error) {
	var c Configuration
	c.TotalOnboarded = memberCount

	dosFee, err := r.requireString(KeyPostJobDosFee)
	if err != nil {
		return Configuration{}, err
	}
	dosFeeBalance, perr := types.ParseBalance(dosFee)
	if perr != nil {
		return Configuration{}, daoerrors.Wrap(daoerrors.CodeValueNotAvailable, perr)
	}
	c.PostJobDosFee = dosFeeBalance

	if c.DefaultPolicingRate, err = r.requireUint32(KeyDefaultPolicingRate); err != nil {
		return Configuration{}, err
	}
	if c.ReputationConversionRate, err = r.requireUint32(KeyReputationConversionRate); err != nil {
		return Configuration{}, err
	}
	if c.BidEscrowPaymentRatio, err = r.requireUint32(KeyBidEscrowPaymentRatio); err != nil {
		return Configuration{}, err
	}
	if c.DefaultReputationSlash, err = r.requireUint32(KeyDefaultReputationSlash); err != nil {
		return Configuration{}, err
	}

	if c.InternalAuctionTime, err = r.requireUint64(KeyInternalAuctionTime); err != nil {
		return Configuration{}, err
	}
	if c.PublicAuctionTime, err = r.requireUint64(KeyPublicAuctionTime); err != nil {
		return Configuration{}, err
	}
	if c.InformalVotingTime, err = r.requireUint64(KeyInformalVotingTime); err != nil {
		return Configuration{}, err
	}
	if c.FormalVotingTime, err = r.requireUint64(KeyFormalVotingTime); err != nil {
		return Configuration{}, err
	}
	if c.TimeBetweenInformalAndFormalVoting, err = r.requireUint64(KeyTimeBetweenInformalAndFormalVoting); err != nil {
		return Configuration{}, err
	}
	if c.VaBidAcceptanceTimeout, err = r.requireUint64(KeyVaBidAcceptanceTimeout); err != nil {
		return Configuration{}, err
	}
	if c.VotingDelayAfterJobWorkerSubmission, err = r.requireUint64(KeyVotingDelayAfterJobWorkerSubmission); err != nil {
		return Configuration{}, err
	}
	if c.CancelFinishedVotingTimeout, err = r.requireUint64(KeyCancelFinishedVotingTimeout); err != nil {
		return Configuration{}, err
	}

	if c.InformalQuorumRatio, err = r.requireUint32(KeyInformalQuorumRatio); err != nil {
		return Configuration{}, err
	}
	if c.FormalQuorumRatio, err = r.requireUint32(KeyFormalQuorumRatio); err != nil {
		return Configuration{}, err
	}

	if c.InformalStakeReputation, err = r.requireBool(KeyInformalStakeReputation); err != nil {
		return Configuration{}, err
	}
	if c.VaCanBidOnPublicAuction, err = r.requireBool(KeyVaCanBidOnPublicAuction); err != nil {
		return Configuration{}, err
	}
	if c.DistributePaymentToNonVoters, err = r.requireBool(KeyDistributePaymentToNonVoters); err != nil {
		return Configuration{}, err
	}
	if c.ForumKycRequired, err = r.requireBool(KeyForumKycRequired); err != nil {
		return Configuration{}, err
	}
	if c.OnlyVaCanCreate, err = r.requireBool(KeyOnlyVaCanCreate); err != nil {
		return Configuration{}, err
	}
	if c.DoubleTimeBetweenVotings, err = r.requireBool(KeyDoubleTimeBetweenVotings); err != nil {
		return Configuration{}, err
	}

	delta, err := r.requireString(KeyVotingClearnessDelta)
	if err != nil {
		return Configuration{}, err
	}
	deltaBalance, perr := types.ParseBalance(delta)
	if perr != nil {
		return Configuration{}, daoerrors.Wrap(daoerrors.CodeValueNotAvailable, perr)
	}
	c.VotingClearnessDelta = deltaBalance

	walletStr, err := r.requireString(KeyGovernanceWallet)
	if err != nil {
		return Configuration{}, err
	}
	wallet, derr := types.DecodeAddress(walletStr)
	if derr != nil {
		return Configuration{}, daoerrors.Wrap(daoerrors.CodeValueNotAvailable, derr)
	}
	c.GovernanceWallet = wallet

	c.InformalQuorum = uint32(types.CeilRatio(c.InformalQuorumRatio, memberCount))
	c.FormalQuorum = uint32(types.CeilRatio(c.FormalQuorumRatio, memberCount))

	for _, apply := range overrides {
		if err := apply(&c); err != nil {
			return Configuration{}, err
		}
	}

	if err := preflight(&c); err != nil {
		return Configuration{}, err
	}

	return c, nil
}

// preflight validates cross-field invariants no single requireX accessor
// can catch on its own (spec §4.1's Resolver only checks that a key is
// present and well-typed, not that the assembled snapshot is sane),
// grounded on the teacher's native/gov/validate.go param-change validation
// style: a list of named checks run in order, the first failure wins.
func preflight(c *Configuration) error {
	ratios := []struct {
		name string
		v    uint32
	}{
		{"informal_quorum_ratio", c.InformalQuorumRatio},
		{"formal_quorum_ratio", c.FormalQuorumRatio},
		{"default_policing_rate", c.DefaultPolicingRate},
		{"reputation_conversion_rate", c.ReputationConversionRate},
		{"bid_escrow_payment_ratio", c.BidEscrowPaymentRatio},
		{"default_reputation_slash", c.DefaultReputationSlash},
	}
	for _, r := range ratios {
		if r.v == 0 || r.v > 1000 {
			return daoerrors.New(daoerrors.CodeValueNotAvailable, "configuration ratio %q must be in (0, 1000], got %d", r.name, r.v)
		}
	}

	windows := []struct {
		name string
		v    uint64
	}{
		{"internal_auction_time", c.InternalAuctionTime},
		{"public_auction_time", c.PublicAuctionTime},
		{"informal_voting_time", c.InformalVotingTime},
		{"formal_voting_time", c.FormalVotingTime},
		{"va_bid_acceptance_timeout", c.VaBidAcceptanceTimeout},
		{"voting_delay_after_job_worker_submission", c.VotingDelayAfterJobWorkerSubmission},
		{"cancel_finished_voting_timeout", c.CancelFinishedVotingTimeout},
	}
	for _, w := range windows {
		if w.v == 0 {
			return daoerrors.New(daoerrors.CodeValueNotAvailable, "configuration timing window %q must be positive", w.name)
		}
	}

	return nil
}

func (r *Resolver) requireString(key string) (string, error) {
	v, ok := r.vars.Get(key)
	if !ok {
		return "", daoerrors.New(daoerrors.CodeValueNotAvailable, "missing required configuration key %q", key)
	}
	return string(v), nil
}

func (r *Resolver) requireUint64(key string) (uint64, error) {
	s, err := r.requireString(key)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.ParseUint(s, 10, 64)
	if perr != nil {
		return 0, daoerrors.New(daoerrors.CodeValueNotAvailable, "configuration key %q is not a valid integer: %s", key, s)
	}
	return n, nil
}

func (r *Resolver) requireUint32(key string) (uint32, error) {
	n, err := r.requireUint64(key)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}

func (r *Resolver) requireBool(key string) (bool, error) {
	s, err := r.requireString(key)
	if err != nil {
		return false, err
	}
	b, perr := strconv.ParseBool(s)
	if perr != nil {
		return false, daoerrors.New(daoerrors.CodeValueNotAvailable, "configuration key %q is not a valid boolean: %s", key, s)
	}
	return b, nil
}

// ReputationToMint computes cspr * reputation_conversion_rate / 1000.
func (c Configuration) ReputationToMint(cspr types.Balance) types.Balance {
	return cspr.MulPerMille(c.ReputationConversionRate)
}

// AmountToRedistributeByPolicing computes rep * default_policing_rate / 1000.
func (c Configuration) AmountToRedistributeByPolicing(rep types.Balance) types.Balance {
	return rep.MulPerMille(c.DefaultPolicingRate)
}

// GovernanceCut computes cspr * bid_escrow_payment_ratio / 1000.
func (c Configuration) GovernanceCut(cspr types.Balance) types.Balance {
	return cspr.MulPerMille(c.BidEscrowPaymentRatio)
}

// EffectiveTimeBetweenVotings returns the configured gap, doubled when the
// caller indicates the informal stage finished with a clearness-delta gap
// below threshold (spec §4.2 "Clearness/double-gap") and also doubled for
// every voting whenever DoubleTimeBetweenVotings is set.
func (c Configuration) EffectiveTimeBetweenVotings(clearnessTriggered bool) uint64 {
	if clearnessTriggered || c.DoubleTimeBetweenVotings {
		return c.TimeBetweenInformalAndFormalVoting * 2
	}
	return c.TimeBetweenInformalAndFormalVoting
}
