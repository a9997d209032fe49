package voters

import (
	"encoding/json"
	"sync"

	"daocore/config"
	"daocore/daoerrors"
	"daocore/types"
)

// Deferred contract call targets, one per thin voter flavor, grounded on
// nhbchain's native/governance ProposalKind constants (param.update,
// role.allowlist, treasury.directive).
const (
	TargetAdminAllowlist = "admin.allowlist"
	TargetRepoAllowlist  = "repo.allowlist"
	TargetKycToken       = "kyc.token"
	TargetReputation     = "reputation.directive"
)

// Deferred contract call methods.
const (
	MethodGrant = "grant"
	MethodRevoke = "revoke"
	MethodMint   = "mint"
	MethodBurn   = "burn"
)

// Whitelist is the generic name/address access-control set behind the admin
// and repo voter flavors (spec.md line 8's "name/whitelist access control"
// ambient facade). It is keyed by an opaque string so the same type serves
// an address-keyed admin roster and a repository-URI-keyed allowlist alike.
type Whitelist struct {
	mu      sync.RWMutex
	members map[string]struct{}
}

// NewWhitelist constructs an empty whitelist.
func NewWhitelist() *Whitelist {
	return &Whitelist{members: make(map[string]struct{})}
}

// Contains reports whether key currently holds a grant.
func (w *Whitelist) Contains(key string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.members[key]
	return ok
}

func (w *Whitelist) grant(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.members[key] = struct{}{}
}

func (w *Whitelist) revoke(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.members, key)
}

// KycGranter is the narrow slice of the KYC Registry the kyc voter's
// deferred contract call dispatches to.
type KycGranter interface {
	Mint(addr types.Address) error
	Burn(addr types.Address)
}

// ReputationAdjuster is the narrow slice of the Reputation Ledger the
// reputation voter's deferred contract call dispatches to.
type ReputationAdjuster interface {
	Mint(addr types.Address, amount types.Balance)
	Burn(addr types.Address, amount types.Balance) error
}

// Router implements voting.ContractCaller (spec §9 "Deferred contract
// calls"): it decodes each call's Target/Method/Args and dispatches to the
// registry the owning voter facade assembled the call for. One Router is
// wired into the shared Voting Engine; every thin voter facade shares it.
type Router struct {
	Admin      *Whitelist
	Repo       *Whitelist
	Kyc        KycGranter
	Reputation ReputationAdjuster
}

// NewRouter constructs a Router with fresh admin/repo whitelists. Kyc and
// Reputation are wired separately via the exported fields, since those
// collaborators live outside this package.
func NewRouter() *Router {
	return &Router{Admin: NewWhitelist(), Repo: NewWhitelist()}
}

// Call implements voting.ContractCaller.
func (r *Router) Call(call config.ContractCall) error {
	switch call.Target {
	case TargetAdminAllowlist:
		return r.dispatchWhitelist(r.Admin, call)
	case TargetRepoAllowlist:
		return r.dispatchWhitelist(r.Repo, call)
	case TargetKycToken:
		return r.dispatchKyc(call)
	case TargetReputation:
		return r.dispatchReputation(call)
	default:
		return daoerrors.New(daoerrors.CodeContractCallFailed, "voters: unknown contract call target %q", call.Target)
	}
}

func (r *Router) dispatchWhitelist(w *Whitelist, call config.ContractCall) error {
	var p stringPayload
	if err := json.Unmarshal(call.Args, &p); err != nil {
		return daoerrors.Wrap(daoerrors.CodeContractCallFailed, err)
	}
	switch call.Method {
	case MethodGrant:
		w.grant(p.Value)
	case MethodRevoke:
		w.revoke(p.Value)
	default:
		return daoerrors.New(daoerrors.CodeContractCallFailed, "voters: unknown whitelist method %q", call.Method)
	}
	return nil
}

func (r *Router) dispatchKyc(call config.ContractCall) error {
	if r.Kyc == nil {
		return daoerrors.New(daoerrors.CodeContractCallFailed, "voters: kyc registry not wired")
	}
	addr, err := decodeAddress(call.Args)
	if err != nil {
		return err
	}
	switch call.Method {
	case MethodGrant:
		return r.Kyc.Mint(addr)
	case MethodRevoke:
		r.Kyc.Burn(addr)
		return nil
	default:
		return daoerrors.New(daoerrors.CodeContractCallFailed, "voters: unknown kyc method %q", call.Method)
	}
}

func (r *Router) dispatchReputation(call config.ContractCall) error {
	if r.Reputation == nil {
		return daoerrors.New(daoerrors.CodeContractCallFailed, "voters: reputation ledger not wired")
	}
	addr, amount, err := decodeReputation(call.Args)
	if err != nil {
		return err
	}
	switch call.Method {
	case MethodMint:
		r.Reputation.Mint(addr, amount)
		return nil
	case MethodBurn:
		return r.Reputation.Burn(addr, amount)
	default:
		return daoerrors.New(daoerrors.CodeContractCallFailed, "voters: unknown reputation method %q", call.Method)
	}
}

// stringPayload is the Args encoding for the admin/repo whitelist calls: a
// single opaque key (a bech32 address for admin, a repository URI for
// repo).
type stringPayload struct {
	Value string `json:"value"`
}

// addressPayload is the Args encoding for the kyc call: a single address.
type addressPayload struct {
	Address string `json:"address"`
}

// reputationPayload additionally carries the amount for the reputation
// voter's mint/burn directive.
type reputationPayload struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func encodeString(value string) []byte {
	b, _ := json.Marshal(stringPayload{Value: value})
	return b
}

func encodeAddress(addr types.Address) []byte {
	b, _ := json.Marshal(addressPayload{Address: addr.String()})
	return b
}

func decodeAddress(args []byte) (types.Address, error) {
	var p addressPayload
	if err := json.Unmarshal(args, &p); err != nil {
		return types.Address{}, daoerrors.Wrap(daoerrors.CodeContractCallFailed, err)
	}
	return types.DecodeAddress(p.Address)
}

func encodeReputation(addr types.Address, amount types.Balance) []byte {
	b, _ := json.Marshal(reputationPayload{Address: addr.String(), Amount: amount.String()})
	return b
}

func decodeReputation(args []byte) (types.Address, types.Balance, error) {
	var p reputationPayload
	if err := json.Unmarshal(args, &p); err != nil {
		return types.Address{}, types.Balance{}, daoerrors.Wrap(daoerrors.CodeContractCallFailed, err)
	}
	addr, err := types.DecodeAddress(p.Address)
	if err != nil {
		return types.Address{}, types.Balance{}, err
	}
	amount, err := types.ParseBalance(p.Amount)
	if err != nil {
		return types.Address{}, types.Balance{}, err
	}
	return addr, amount, nil
}
