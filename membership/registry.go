// Package membership implements the Membership Registry external
// collaborator (spec §6): a one-token-per-address non-transferable
// membership set, grounded on the teacher's native/reputation ledger idiom
// of a mutex-guarded in-memory map behind a narrow method surface.
package membership

import (
	"sync"

	"daocore/daoerrors"
	"daocore/types"
)

// Registry tracks which addresses currently hold a membership token (are a
// Voting Associate).
type Registry struct {
	mu      sync.RWMutex
	members map[types.Address]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{members: make(map[types.Address]struct{})}
}

// IsMember reports whether addr currently holds a membership token.
func (r *Registry) IsMember(addr types.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[addr]
	return ok
}

// Mint grants addr a membership token. Fails UserAlreadyOwnsToken if addr
// is already a member.
func (r *Registry) Mint(addr types.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[addr]; ok {
		return daoerrors.New(daoerrors.CodeUserAlreadyOwnsToken, "address %s already holds a membership token", addr)
	}
	r.members[addr] = struct{}{}
	return nil
}

// Burn revokes addr's membership token, if any.
func (r *Registry) Burn(addr types.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, addr)
}

// TotalSupply returns the current member count, used by the Configuration
// Resolver to convert per-mille quorum ratios into absolute counts.
func (r *Registry) TotalSupply() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.members))
}
