package harness

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"daocore/bidescrow"
	"daocore/config"
	"daocore/cspr"
	"daocore/daoerrors"
	"daocore/events"
	"daocore/idgen"
	"daocore/kyc"
	"daocore/membership"
	"daocore/observability/logging"
	"daocore/observability/metrics"
	"daocore/onboarding"
	"daocore/oracle"
	"daocore/reputation"
	"daocore/rpc"
	"daocore/storage/sqlaudit"
	"daocore/variables"
	"daocore/voting"
)

// variableSetter adapts variables.Repository.UpdateAt into the plain
// string-keyed setter seedVariables drives, always installing an
// immediately-active value (activationTime nil).
type variableSetter struct {
	repo *variables.Repository
}

func (v *variableSetter) set(key, value string) error {
	return v.repo.UpdateAt(key, []byte(value), nil)
}

// Core bundles every collaborator and engine the rpc facade needs, plus the
// pieces a process entrypoint must close or poll.
type Core struct {
	Config     Config
	Logger     *slog.Logger
	logCloser  io.Closer
	AuditDB    *gorm.DB
	Variables  *variables.Repository
	Reputation *reputation.Ledger
	Membership *membership.Registry
	Kyc        *kyc.Registry
	Purse      *cspr.Purse
	Oracle     *oracle.FiatRateOracle
	Voting     *voting.Engine
	Bidescrow  *bidescrow.Engine
	Onboarding *onboarding.Engine
	clock      uint64
}

// Now returns the core's logical clock, a monotonic counter advanced by
// Tick rather than wall time, so every engine and the harness itself agree
// on "now" without depending on the host's real clock (mirrors the
// teacher's test-clock idiom, promoted here to the production default).
func (c *Core) Now() uint64 { return c.clock }

// Tick advances the core's logical clock by delta seconds.
func (c *Core) Tick(delta uint64) { c.clock += delta }

// newLogger builds the process slog.Logger. When cfg.Path is set, output is
// routed through a lumberjack.Logger for rotation (the teacher's go.mod
// carries this dependency without a direct call site; this is its genuine
// use, the io.Writer backing a rotating production log file).
func newLogger(cfg LogConfig) (*slog.Logger, io.Closer) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.Path != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		w = lj
		closer = lj
	}
	handler := slog.NewJSONHandler(w, nil)
	return slog.New(handler), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Close releases the log rotation file handle and the audit database
// connection.
func (c *Core) Close() error {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
	if c.AuditDB != nil {
		if sqlDB, err := c.AuditDB.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

// New wires every collaborator and engine from cfg: the in-memory reference
// storage backends (the harness's own production backend, matching the
// teacher's pattern of an in-memory default behind a narrow state
// interface), the variable repository seed, and a MultiEmitter fanning out
// to structured logging, prometheus metrics, and (when cfg.Audit.Driver is
// set) the durable sqlaudit mirror.
func New(cfg Config) (*Core, error) {
	core := &Core{Config: cfg}

	logger, closer := newLogger(cfg.Log)
	core.Logger = logger
	core.logCloser = closer

	core.Variables = variables.New(variables.NewMemoryState(), core.Now)
	if err := seedVariables(&variableSetter{repo: core.Variables}, cfg.Variables); err != nil {
		return nil, daoerrors.Wrap(daoerrors.CodeValueNotAvailable, err)
	}

	core.Reputation = reputation.NewLedger()
	core.Membership = membership.NewRegistry()
	core.Kyc = kyc.NewRegistry()
	core.Purse = cspr.NewPurse()
	core.Oracle = oracle.NewFiatRateOracle()

	resolver := config.NewResolver(core.Variables, core.Oracle)

	emitters := events.MultiEmitter{logging.NewEventEmitter(core.Logger), metrics.NewEventEmitter(metrics.GovernanceMetrics())}
	if cfg.Audit.Driver != "" {
		db, err := openAuditDB(cfg.Audit)
		if err != nil {
			return nil, err
		}
		if err := sqlaudit.AutoMigrate(db); err != nil {
			return nil, daoerrors.Wrap(daoerrors.CodeUnspecified, err)
		}
		core.AuditDB = db
		emitters = append(emitters, sqlaudit.NewMirror(db))
	}

	memberCount := func() uint64 { return core.Membership.TotalSupply() }

	votingEng := voting.NewEngine()
	votingEng.SetState(voting.NewMemoryState())
	votingEng.SetEmitter(emitters)
	votingEng.SetClock(core.Now)
	votingEng.SetReputationLedger(core.Reputation)
	votingEng.SetMembership(core.Membership)
	votingEng.SetIdGenerator(&idgen.VotingIds{})
	core.Voting = votingEng

	buildConfig := func(memberCount uint64) (config.Configuration, error) {
		return resolver.Build(memberCount)
	}

	onboardEng := onboarding.NewEngine()
	onboardEng.SetState(onboarding.NewMemoryState())
	onboardEng.SetEmitter(emitters)
	onboardEng.SetReputation(core.Reputation)
	onboardEng.SetMembership(core.Membership)
	onboardEng.SetPurse(core.Purse)
	onboardEng.SetVotingEngine(votingEng)
	onboardEng.SetConfigBuilder(buildConfig)
	onboardEng.SetMemberCount(memberCount)
	core.Onboarding = onboardEng

	bidEscrowConfig := func(memberCount uint64) (config.Configuration, error) {
		return resolver.Build(memberCount, config.IsBidEscrowOverride(
			resolver,
			cfg.Variables.BidEscrowInformalVotingTime,
			cfg.Variables.BidEscrowFormalVotingTime,
			cfg.Variables.BidEscrowInformalQuorumRatio,
			cfg.Variables.BidEscrowFormalQuorumRatio,
		))
	}

	bidEng := bidescrow.NewEngine()
	bidEng.SetState(bidescrow.NewMemoryState())
	bidEng.SetEmitter(emitters)
	bidEng.SetClock(core.Now)
	bidEng.SetReputation(core.Reputation)
	bidEng.SetPurse(core.Purse)
	bidEng.SetMembership(core.Membership)
	bidEng.SetKyc(core.Kyc)
	bidEng.SetVotingEngine(votingEng)
	bidEng.SetConfigBuilder(bidEscrowConfig)
	bidEng.SetIdGenerators(bidescrow.IdGenerators{
		Offers: &idgen.JobOfferIds{},
		Bids:   &idgen.BidIds{},
		Jobs:   &idgen.JobIds{},
	})
	bidEng.SetMemberCount(memberCount)
	core.Bidescrow = bidEng

	return core, nil
}

func openAuditDB(cfg AuditConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := sqlaudit.Open(cfg.DSN)
		if err != nil {
			return nil, daoerrors.Wrap(daoerrors.CodeUnspecified, err)
		}
		return db, nil
	case "sqlite":
		db, err := sqlaudit.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, daoerrors.Wrap(daoerrors.CodeUnspecified, err)
		}
		return db, nil
	default:
		return nil, daoerrors.New(daoerrors.CodeUnspecified, "unknown audit driver %q", cfg.Driver)
	}
}

// Handler builds the go-chi http.Handler serving c's wired engines, the
// process entrypoint's composition root.
func (c *Core) Handler() http.Handler {
	return rpc.New(rpc.Dependencies{
		Voting:     c.Voting,
		Bidescrow:  c.Bidescrow,
		Onboarding: c.Onboarding,
	})
}
