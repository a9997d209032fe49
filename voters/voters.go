// Package voters implements the thin voter facades spec.md line 8 lists
// alongside the engine and escrow as the straightforward surfaces built on
// top of them: "admin voter", "kyc voter", "repo voter", "simple voter",
// "reputation voter", "slashing voter". Per spec §9's design note, the
// engine holds all canonical voting state; a voter module owns only a small
// auxiliary map from voting id to its own request context and composes the
// Voting Engine by reference, never by containment, delegating every
// lifecycle operation straight through. The admin/repo/kyc/reputation
// flavors additionally assemble a deferred contract call (spec §9) that the
// engine runs automatically once a formal voting passes; Router dispatches
// those calls. The remaining flavor named by the spec, "onboarding request", is
// the onboarding package itself (see DESIGN.md) rather than a type here,
// since its workflow needs a dedicated CSPR-stake lifecycle no generic
// facade can express.
package voters

import (
	"daocore/config"
	"daocore/daoerrors"
	"daocore/types"
	"daocore/voting"
)

// VotingEngine is the narrow slice of the Voting Engine every facade in
// this package drives.
type VotingEngine interface {
	CreateVoting(creator types.Address, stake types.Balance, unbound bool, cfg config.Configuration) (*voting.Voting, error)
	FinishVoting(votingId types.VotingId, votingType types.VotingType) (*voting.Summary, error)
}

// ConfigBuilder produces a fresh Configuration snapshot, accepting the
// per-voting overrides (here, always a ContractCalls override) the caller
// needs layered on top of the stored variables.
type ConfigBuilder func(memberCount uint64, overrides ...config.Override) (config.Configuration, error)

// Request records what a single deferred-contract-call voting concerns.
// It is kept only so FinishVoting can recognize its own votings and for
// read-back/audit; the actual effect runs through the contract call the
// engine already executed by the time FinishVoting returns.
type Request struct {
	VotingId    types.VotingId
	Target      types.Address
	Method      string
	Description string
}

// facade is the shared plumbing every deferred-contract-call voter flavor
// embeds: compose the engine by reference, remember which votings are
// "ours", forward create/finish straight through.
type facade struct {
	target      string
	votingEng   VotingEngine
	buildConfig ConfigBuilder
	memberCount func() uint64
	requests    map[types.VotingId]Request
}

func newFacade(target string) facade {
	return facade{target: target, requests: make(map[types.VotingId]Request)}
}

func (f *facade) createVoting(creator, subject types.Address, method, description string, args []byte, stake types.Balance) (*voting.Voting, error) {
	cfg, err := f.buildConfig(f.memberCount(), config.ContractCalls(config.ContractCall{
		Target: f.target,
		Method: method,
		Args:   args,
	}))
	if err != nil {
		return nil, err
	}

	v, err := f.votingEng.CreateVoting(creator, stake, false, cfg)
	if err != nil {
		return nil, err
	}

	f.requests[v.Id] = Request{VotingId: v.Id, Target: subject, Method: method, Description: description}
	return v, nil
}

func (f *facade) finishVoting(votingId types.VotingId, votingType types.VotingType) (*voting.Summary, error) {
	if _, ok := f.requests[votingId]; !ok {
		return nil, daoerrors.New(daoerrors.CodeVotingDoesNotExist, "voters: no %s request for voting %s", f.target, votingId)
	}
	return f.votingEng.FinishVoting(votingId, votingType)
}

// AdminVoter is the thin facade over admin-roster grants, dispatched
// through the shared Router's admin Whitelist on a passing formal vote.
type AdminVoter struct {
	facade
	router *Router
}

// NewAdminVoter constructs an AdminVoter reading/writing router's admin
// whitelist.
func NewAdminVoter(router *Router) *AdminVoter {
	return &AdminVoter{facade: newFacade(TargetAdminAllowlist), router: router}
}

func (v *AdminVoter) SetVotingEngine(e VotingEngine)    { v.votingEng = e }
func (v *AdminVoter) SetConfigBuilder(cb ConfigBuilder) { v.buildConfig = cb }
func (v *AdminVoter) SetMemberCount(f func() uint64)    { v.memberCount = f }

// CreateVoting opens a voting to grant or revoke addr's admin standing.
func (v *AdminVoter) CreateVoting(creator, addr types.Address, grant bool, stake types.Balance) (*voting.Voting, error) {
	method := MethodRevoke
	if grant {
		method = MethodGrant
	}
	return v.createVoting(creator, addr, method, "", encodeString(addr.String()), stake)
}

// FinishVoting closes the formal stage; the engine has already run the
// admin grant/revoke by the time this returns a result.
func (v *AdminVoter) FinishVoting(votingId types.VotingId, votingType types.VotingType) (*voting.Summary, error) {
	return v.finishVoting(votingId, votingType)
}

// IsAdmin reports whether addr currently holds an admin grant.
func (v *AdminVoter) IsAdmin(addr types.Address) bool {
	return v.router.Admin.Contains(addr.String())
}

// RepoVoter is the thin facade over the repository allowlist: whitelisting
// an external code/resource URI rather than an address, but otherwise the
// same shape as AdminVoter.
type RepoVoter struct {
	facade
	router *Router
}

// NewRepoVoter constructs a RepoVoter reading/writing router's repo
// whitelist.
func NewRepoVoter(router *Router) *RepoVoter {
	return &RepoVoter{facade: newFacade(TargetRepoAllowlist), router: router}
}

func (v *RepoVoter) SetVotingEngine(e VotingEngine)    { v.votingEng = e }
func (v *RepoVoter) SetConfigBuilder(cb ConfigBuilder) { v.buildConfig = cb }
func (v *RepoVoter) SetMemberCount(f func() uint64)    { v.memberCount = f }

// CreateVoting opens a voting to add or remove repoURI from the allowlist.
func (v *RepoVoter) CreateVoting(creator types.Address, repoURI string, allow bool, stake types.Balance) (*voting.Voting, error) {
	method := MethodRevoke
	if allow {
		method = MethodGrant
	}
	return v.createVoting(creator, types.Address{}, method, repoURI, encodeString(repoURI), stake)
}

func (v *RepoVoter) FinishVoting(votingId types.VotingId, votingType types.VotingType) (*voting.Summary, error) {
	return v.finishVoting(votingId, votingType)
}

// IsAllowed reports whether repoURI currently holds a grant.
func (v *RepoVoter) IsAllowed(repoURI string) bool {
	return v.router.Repo.Contains(repoURI)
}

// KycVoter is the thin facade over the KYC Registry's grant/revoke,
// dispatched through the shared Router on a passing formal vote.
type KycVoter struct {
	facade
}

// NewKycVoter constructs a KycVoter. The registry itself is wired onto
// router.Kyc by the caller assembling the full collaborator graph.
func NewKycVoter() *KycVoter {
	return &KycVoter{facade: newFacade(TargetKycToken)}
}

func (v *KycVoter) SetVotingEngine(e VotingEngine)    { v.votingEng = e }
func (v *KycVoter) SetConfigBuilder(cb ConfigBuilder) { v.buildConfig = cb }
func (v *KycVoter) SetMemberCount(f func() uint64)    { v.memberCount = f }

// CreateVoting opens a voting to grant or revoke addr's KYC token.
func (v *KycVoter) CreateVoting(creator, addr types.Address, grant bool, stake types.Balance) (*voting.Voting, error) {
	method := MethodRevoke
	if grant {
		method = MethodGrant
	}
	return v.createVoting(creator, addr, method, "", encodeAddress(addr), stake)
}

func (v *KycVoter) FinishVoting(votingId types.VotingId, votingType types.VotingType) (*voting.Summary, error) {
	return v.finishVoting(votingId, votingType)
}

// ReputationVoter is the thin facade over direct reputation mint/burn
// directives (a treasury-style action distinct from the engine's own
// per-voting stake lifecycle), dispatched through the shared Router.
type ReputationVoter struct {
	facade
}

// NewReputationVoter constructs a ReputationVoter.
func NewReputationVoter() *ReputationVoter {
	return &ReputationVoter{facade: newFacade(TargetReputation)}
}

func (v *ReputationVoter) SetVotingEngine(e VotingEngine)    { v.votingEng = e }
func (v *ReputationVoter) SetConfigBuilder(cb ConfigBuilder) { v.buildConfig = cb }
func (v *ReputationVoter) SetMemberCount(f func() uint64)    { v.memberCount = f }

// CreateVoting opens a voting to mint or burn amount of addr's reputation
// directly, outside the normal stake/redistribution path.
func (v *ReputationVoter) CreateVoting(creator, addr types.Address, mint bool, amount, stake types.Balance) (*voting.Voting, error) {
	method := MethodBurn
	if mint {
		method = MethodMint
	}
	return v.createVoting(creator, addr, method, "", encodeReputation(addr, amount), stake)
}

func (v *ReputationVoter) FinishVoting(votingId types.VotingId, votingType types.VotingType) (*voting.Summary, error) {
	return v.finishVoting(votingId, votingType)
}

// SimpleVoter is the thin facade over a plain yes/no decision with no
// deferred contract call at all: the vote outcome itself is the product
// (e.g. a non-binding sentiment check, or a decision an off-chain operator
// reads back and acts on manually).
type SimpleVoter struct {
	votingEng   VotingEngine
	buildConfig func(memberCount uint64) (config.Configuration, error)
	memberCount func() uint64
	descriptions map[types.VotingId]string
}

// NewSimpleVoter constructs a SimpleVoter.
func NewSimpleVoter() *SimpleVoter {
	return &SimpleVoter{descriptions: make(map[types.VotingId]string)}
}

func (v *SimpleVoter) SetVotingEngine(e VotingEngine) { v.votingEng = e }
func (v *SimpleVoter) SetConfigBuilder(cb func(memberCount uint64) (config.Configuration, error)) {
	v.buildConfig = cb
}
func (v *SimpleVoter) SetMemberCount(f func() uint64) { v.memberCount = f }

// CreateVoting opens a plain voting carrying no side effect of its own.
func (v *SimpleVoter) CreateVoting(creator types.Address, description string, stake types.Balance) (*voting.Voting, error) {
	cfg, err := v.buildConfig(v.memberCount())
	if err != nil {
		return nil, err
	}
	created, err := v.votingEng.CreateVoting(creator, stake, false, cfg)
	if err != nil {
		return nil, err
	}
	v.descriptions[created.Id] = description
	return created, nil
}

// FinishVoting closes the formal stage and returns the tally; callers that
// care about the outcome read summary.Result themselves.
func (v *SimpleVoter) FinishVoting(votingId types.VotingId, votingType types.VotingType) (*voting.Summary, error) {
	if _, ok := v.descriptions[votingId]; !ok {
		return nil, daoerrors.New(daoerrors.CodeVotingDoesNotExist, "voters: no simple voting %s", votingId)
	}
	return v.votingEng.FinishVoting(votingId, votingType)
}

// Description returns the free-form text a simple voting was created with.
func (v *SimpleVoter) Description(votingId types.VotingId) (string, bool) {
	d, ok := v.descriptions[votingId]
	return d, ok
}

// SlashingEngine is the narrow slice of the Voting Engine the slashing
// voter drives; unlike the other flavors it has no voting lifecycle of its
// own, since slash_voter is a direct operator action (spec §4.2).
type SlashingEngine interface {
	SlashVoter(voter types.Address) ([]voting.AffectedVoting, error)
}

// AffectedHandler is notified once per (voting_id, voting_type) pair a
// slash touched, so subscribers can cancel their own external records
// (spec §4.2: "callers use this to cancel the associated external
// records", e.g. bidescrow jobs/offers/bids or an onboarding request).
type AffectedHandler func(affected voting.AffectedVoting)

// SlashingVoter is the thin facade over slash_voter: "voter" here names
// the actor being slashed out of every voting they participate in, not a
// voting being created.
type SlashingVoter struct {
	engine     SlashingEngine
	onAffected []AffectedHandler
}

// NewSlashingVoter constructs a SlashingVoter composing engine by
// reference.
func NewSlashingVoter(engine SlashingEngine) *SlashingVoter {
	return &SlashingVoter{engine: engine}
}

// OnAffected registers a callback run for every voting a Slash call
// touches. Subscribers are invoked in registration order.
func (v *SlashingVoter) OnAffected(h AffectedHandler) {
	v.onAffected = append(v.onAffected, h)
}

// Slash removes voter from every voting they currently participate in and
// notifies registered subscribers of each affected voting.
func (v *SlashingVoter) Slash(voter types.Address) ([]voting.AffectedVoting, error) {
	affected, err := v.engine.SlashVoter(voter)
	if err != nil {
		return affected, err
	}
	for _, a := range affected {
		for _, h := range v.onAffected {
			h(a)
		}
	}
	return affected, nil
}
