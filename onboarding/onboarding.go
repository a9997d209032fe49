// Package onboarding implements the Onboarding Workflow (spec §4.5): a
// single stake-backed operation by which a non-member requests membership,
// backed by the same Voting Engine and redistribution kernel the
// bid-escrow workflow uses, grounded on nhbchain's native/escrow onboarding
// flavor of its trade engine (a request that stakes value and resolves via
// the shared governance voting machinery rather than its own state
// machine).
package onboarding

import (
	"daocore/config"
	"daocore/daoerrors"
	"daocore/events"
	"daocore/idgen"
	"daocore/types"
	"daocore/voting"
)

// ReputationMinter is the narrow slice of the Reputation Ledger the
// workflow depends on to convert a passing requester's CSPR stake into
// reputation.
type ReputationMinter interface {
	MintPassive(addr types.Address, amount types.Balance)
}

// MembershipGranter is the narrow slice of the Membership Registry the
// workflow depends on.
type MembershipGranter interface {
	Mint(addr types.Address) error
}

// Purse is the narrow slice of the CSPR Primitive the workflow depends on.
type Purse interface {
	Deposit(addr types.Address, amount types.Balance)
	Withdraw(addr types.Address, amount types.Balance) error
	Transfer(from, to types.Address, amount types.Balance) error
}

// VotingEngine is the narrow slice of the Voting Engine the workflow
// drives.
type VotingEngine interface {
	CreateVoting(creator types.Address, stake types.Balance, unbound bool, cfg config.Configuration) (*voting.Voting, error)
	FinishVoting(votingId types.VotingId, votingType types.VotingType) (*voting.Summary, error)
}

// ConfigBuilder produces a fresh onboarding Configuration snapshot (the
// same bid-escrow-flavored snapshot the job-proof votings use, per spec
// §4.5).
type ConfigBuilder func(memberCount uint64) (config.Configuration, error)

// Request is a pending onboarding stake, keyed by the voting it created.
type Request struct {
	VotingId       types.VotingId
	Requester      types.Address
	ReasonDocument string
	AttachedCSPR   types.Balance
	Resolved       bool
}

// State is the narrow storage backend the engine depends on.
type State interface {
	GetRequest(votingId types.VotingId) (*Request, bool)
	PutRequest(r *Request)
}

// MemoryState is the reference in-memory State implementation.
type MemoryState struct {
	requests map[types.VotingId]*Request
}

// NewMemoryState constructs an empty in-memory backend.
func NewMemoryState() *MemoryState {
	return &MemoryState{requests: make(map[types.VotingId]*Request)}
}

func (m *MemoryState) GetRequest(votingId types.VotingId) (*Request, bool) {
	r, ok := m.requests[votingId]
	return r, ok
}

func (m *MemoryState) PutRequest(r *Request) {
	m.requests[r.VotingId] = r
}

// Engine owns the onboarding request lifecycle.
type Engine struct {
	state       State
	emitter     events.Emitter
	reputation  ReputationMinter
	membership  MembershipGranter
	purse       Purse
	votingEng   VotingEngine
	buildConfig ConfigBuilder
	memberCount func() uint64
}

// NewEngine constructs an Engine with a no-op emitter; callers wire real
// collaborators via the Set* methods.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

func (e *Engine) SetState(s State)                  { e.state = s }
func (e *Engine) SetEmitter(em events.Emitter)       { e.emitter = em }
func (e *Engine) SetReputation(r ReputationMinter)   { e.reputation = r }
func (e *Engine) SetMembership(m MembershipGranter)  { e.membership = m }
func (e *Engine) SetPurse(p Purse)                   { e.purse = p }
func (e *Engine) SetVotingEngine(v VotingEngine)      { e.votingEng = v }
func (e *Engine) SetConfigBuilder(cb ConfigBuilder)   { e.buildConfig = cb }
func (e *Engine) SetMemberCount(f func() uint64)      { e.memberCount = f }

// CreateVoting opens a non-member's onboarding request: attached_cspr is
// escrowed and converted into the requester's unbound creator ballot at
// reputation_to_mint(attached_cspr) (spec §4.5).
func (e *Engine) CreateVoting(requester types.Address, reasonDocument string, attachedCSPR types.Balance) (*voting.Voting, error) {
	if attachedCSPR.Sign() <= 0 {
		return nil, daoerrors.New(daoerrors.CodeZeroStake, "onboarding stake must be positive")
	}

	cfg, err := e.buildConfig(e.memberCount())
	if err != nil {
		return nil, err
	}
	cfg.OnlyVaCanCreate = false
	cfg.BindBallotForSuccessfulVoting = true
	cfg.UnboundBallotAddress = requester

	repStake := cfg.ReputationToMint(attachedCSPR)

	e.purse.Deposit(requester, attachedCSPR)

	v, err := e.votingEng.CreateVoting(requester, repStake, true, cfg)
	if err != nil {
		return nil, err
	}

	e.state.PutRequest(&Request{VotingId: v.Id, Requester: requester, ReasonDocument: reasonDocument, AttachedCSPR: attachedCSPR})
	e.emitter.Emit(events.OnboardingVotingCreated{
		VotingId:   v.Id,
		Requester:  requester,
		Stake:      attachedCSPR,
		ReasonHash: idgen.MetadataHash(reasonDocument),
	})
	return v, nil
}

// FinishVoting closes the formal stage of an onboarding request and applies
// the CSPR/reputation conversion or refund (spec §4.5).
func (e *Engine) FinishVoting(votingId types.VotingId) (*voting.Summary, error) {
	req, ok := e.state.GetRequest(votingId)
	if !ok {
		return nil, daoerrors.New(daoerrors.CodeOnboardingRequestNotFound, "no onboarding request for voting %s", votingId)
	}
	if req.Resolved {
		return nil, daoerrors.New(daoerrors.CodeVotingAlreadyFinished, "onboarding request for voting %s already resolved", votingId)
	}

	summary, err := e.votingEng.FinishVoting(votingId, types.VotingTypeFormal)
	if err != nil {
		return nil, err
	}

	switch summary.Result {
	case types.VotingResultInFavor:
		if err := e.membership.Mint(req.Requester); err != nil {
			return nil, err
		}
		e.reputation.MintPassive(req.Requester, summary.Configuration.ReputationToMint(req.AttachedCSPR))

	case types.VotingResultAgainst:
		cut := summary.Configuration.GovernanceCut(req.AttachedCSPR)
		refund, _ := req.AttachedCSPR.SafeSub(cut)
		if cut.Sign() > 0 {
			if err := e.purse.Transfer(req.Requester, summary.Configuration.GovernanceWallet, cut); err != nil {
				return nil, err
			}
		}
		if err := e.purse.Withdraw(req.Requester, refund); err != nil {
			return nil, err
		}

	case types.VotingResultQuorumNotReached:
		if err := e.purse.Withdraw(req.Requester, req.AttachedCSPR); err != nil {
			return nil, err
		}
	}

	req.Resolved = true
	e.state.PutRequest(req)
	return summary, nil
}
