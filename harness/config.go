// Package harness assembles the governance core's collaborators into a
// running process: a yaml-driven variable seed, the in-memory reference
// storage backends, and an events.MultiEmitter fanning out to structured
// logging, prometheus metrics and the durable audit mirror. Grounded on the
// teacher's services/governd/config.Load (os.Open + yaml.NewDecoder, with
// defaults applied before and after decode) and services/otc-gateway/main.go's
// gorm/postgres bootstrap-then-serve shape.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"daocore/config"
	"daocore/types"
)

// VariableSeed is the yaml-configurable initial value for one Configuration
// key (spec §6 "Variable Repository"). Every field of config.Configuration
// has a corresponding entry here, named by its config.Key constant.
type VariableSeed struct {
	PostJobDosFee            string `yaml:"post_job_dos_fee"`
	DefaultPolicingRate      uint32 `yaml:"default_policing_rate"`
	ReputationConversionRate uint32 `yaml:"reputation_conversion_rate"`
	BidEscrowPaymentRatio    uint32 `yaml:"bid_escrow_payment_ratio"`
	DefaultReputationSlash   uint32 `yaml:"default_reputation_slash"`

	InternalAuctionTime                 uint64 `yaml:"internal_auction_time"`
	PublicAuctionTime                   uint64 `yaml:"public_auction_time"`
	InformalVotingTime                  uint64 `yaml:"informal_voting_time"`
	FormalVotingTime                    uint64 `yaml:"formal_voting_time"`
	BidEscrowInformalVotingTime         uint64 `yaml:"bid_escrow_informal_voting_time"`
	BidEscrowFormalVotingTime           uint64 `yaml:"bid_escrow_formal_voting_time"`
	TimeBetweenInformalAndFormalVoting  uint64 `yaml:"time_between_informal_and_formal_voting"`
	VaBidAcceptanceTimeout              uint64 `yaml:"va_bid_acceptance_timeout"`
	VotingDelayAfterJobWorkerSubmission uint64 `yaml:"voting_delay_after_job_worker_submission"`
	CancelFinishedVotingTimeout         uint64 `yaml:"cancel_finished_voting_timeout"`

	InformalQuorumRatio          uint32 `yaml:"informal_quorum_ratio"`
	FormalQuorumRatio            uint32 `yaml:"formal_quorum_ratio"`
	BidEscrowInformalQuorumRatio uint32 `yaml:"bid_escrow_informal_quorum_ratio"`
	BidEscrowFormalQuorumRatio   uint32 `yaml:"bid_escrow_formal_quorum_ratio"`

	InformalStakeReputation      bool `yaml:"informal_stake_reputation"`
	VaCanBidOnPublicAuction      bool `yaml:"va_can_bid_on_public_auction"`
	DistributePaymentToNonVoters bool `yaml:"distribute_payment_to_non_voters"`
	ForumKycRequired             bool `yaml:"forum_kyc_required"`
	OnlyVaCanCreate              bool `yaml:"only_va_can_create"`
	DoubleTimeBetweenVotings     bool `yaml:"double_time_between_votings"`

	VotingClearnessDelta string `yaml:"voting_clearness_delta"`
	GovernanceWallet     string `yaml:"governance_wallet"`
}

// AuditConfig selects the durable audit mirror's backing database.
type AuditConfig struct {
	// Driver is "postgres" or "sqlite". Empty disables the audit mirror.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LogConfig controls the process-wide slog handler (spec's ambient logging
// concern).
type LogConfig struct {
	// Path, when set, routes logs through a rotating file writer instead of
	// stderr (lumberjack.Logger, one of the teacher's declared but otherwise
	// unexercised dependencies — see DESIGN.md).
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config is the harness's top-level process configuration.
type Config struct {
	ListenAddress string       `yaml:"listen"`
	Variables     VariableSeed `yaml:"variables"`
	Audit         AuditConfig  `yaml:"audit"`
	Log           LogConfig    `yaml:"log"`
}

// defaultConfig mirrors the distilled spec's seed scenarios (S1-S6):
// DefaultPolicingRate 300 (30%), ReputationConversionRate 500 (50%), and
// 500/1000 informal and formal quorum ratios (the absolute quorum follows
// from the live member count at build time).
func defaultConfig() Config {
	return Config{
		ListenAddress: ":8088",
		Variables: VariableSeed{
			PostJobDosFee:                       "10",
			DefaultPolicingRate:                 300,
			ReputationConversionRate:             500,
			BidEscrowPaymentRatio:               500,
			DefaultReputationSlash:              500,
			InternalAuctionTime:                 3600,
			PublicAuctionTime:                   3600,
			InformalVotingTime:                  86400,
			FormalVotingTime:                    172800,
			BidEscrowInformalVotingTime:          43200,
			BidEscrowFormalVotingTime:            86400,
			TimeBetweenInformalAndFormalVoting:  3600,
			VaBidAcceptanceTimeout:              3600,
			VotingDelayAfterJobWorkerSubmission: 3600,
			CancelFinishedVotingTimeout:         604800,
			InformalQuorumRatio:                 500,
			FormalQuorumRatio:                   500,
			BidEscrowInformalQuorumRatio:        500,
			BidEscrowFormalQuorumRatio:          500,
			InformalStakeReputation:             true,
			VaCanBidOnPublicAuction:             true,
			DistributePaymentToNonVoters:        true,
			ForumKycRequired:                    false,
			OnlyVaCanCreate:                      false,
			DoubleTimeBetweenVotings:             true,
			VotingClearnessDelta:                 "50",
			GovernanceWallet:                     types.MustNewAddress(types.DAOPrefix, make([]byte, 20)).String(),
		},
	}
}

// LoadConfig reads path as yaml atop defaultConfig's baseline, matching the
// teacher's Load(path) shape.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// seedVariables installs every VariableSeed field into repo as its current
// value, under the keys config.Build requires.
func seedVariables(repo *variableSetter, seed VariableSeed) error {
	str := func(key, value string) error { return repo.set(key, value) }
	u64 := func(key string, value uint64) error { return repo.set(key, fmt.Sprintf("%d", value)) }
	u32 := func(key string, value uint32) error { return repo.set(key, fmt.Sprintf("%d", value)) }
	b := func(key string, value bool) error { return repo.set(key, fmt.Sprintf("%t", value)) }

	steps := []func() error{
		func() error { return str(config.KeyPostJobDosFee, seed.PostJobDosFee) },
		func() error { return u32(config.KeyDefaultPolicingRate, seed.DefaultPolicingRate) },
		func() error { return u32(config.KeyReputationConversionRate, seed.ReputationConversionRate) },
		func() error { return u32(config.KeyBidEscrowPaymentRatio, seed.BidEscrowPaymentRatio) },
		func() error { return u32(config.KeyDefaultReputationSlash, seed.DefaultReputationSlash) },
		func() error { return u64(config.KeyInternalAuctionTime, seed.InternalAuctionTime) },
		func() error { return u64(config.KeyPublicAuctionTime, seed.PublicAuctionTime) },
		func() error { return u64(config.KeyInformalVotingTime, seed.InformalVotingTime) },
		func() error { return u64(config.KeyFormalVotingTime, seed.FormalVotingTime) },
		func() error { return u64(config.KeyBidEscrowInformalVotingTime, seed.BidEscrowInformalVotingTime) },
		func() error { return u64(config.KeyBidEscrowFormalVotingTime, seed.BidEscrowFormalVotingTime) },
		func() error {
			return u64(config.KeyTimeBetweenInformalAndFormalVoting, seed.TimeBetweenInformalAndFormalVoting)
		},
		func() error { return u64(config.KeyVaBidAcceptanceTimeout, seed.VaBidAcceptanceTimeout) },
		func() error {
			return u64(config.KeyVotingDelayAfterJobWorkerSubmission, seed.VotingDelayAfterJobWorkerSubmission)
		},
		func() error { return u64(config.KeyCancelFinishedVotingTimeout, seed.CancelFinishedVotingTimeout) },
		func() error { return u32(config.KeyInformalQuorumRatio, seed.InformalQuorumRatio) },
		func() error { return u32(config.KeyFormalQuorumRatio, seed.FormalQuorumRatio) },
		func() error { return u32(config.KeyBidEscrowInformalQuorumRatio, seed.BidEscrowInformalQuorumRatio) },
		func() error { return u32(config.KeyBidEscrowFormalQuorumRatio, seed.BidEscrowFormalQuorumRatio) },
		func() error { return b(config.KeyInformalStakeReputation, seed.InformalStakeReputation) },
		func() error { return b(config.KeyVaCanBidOnPublicAuction, seed.VaCanBidOnPublicAuction) },
		func() error { return b(config.KeyDistributePaymentToNonVoters, seed.DistributePaymentToNonVoters) },
		func() error { return b(config.KeyForumKycRequired, seed.ForumKycRequired) },
		func() error { return b(config.KeyOnlyVaCanCreate, seed.OnlyVaCanCreate) },
		func() error { return b(config.KeyDoubleTimeBetweenVotings, seed.DoubleTimeBetweenVotings) },
		func() error { return str(config.KeyVotingClearnessDelta, seed.VotingClearnessDelta) },
		func() error { return str(config.KeyGovernanceWallet, seed.GovernanceWallet) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
