// Package kyc implements the KYC Registry external collaborator (spec §6):
// one token per verified address, consulted by the Rules Engine's
// IsUserKyced predicate.
package kyc

import (
	"sync"

	"daocore/daoerrors"
	"daocore/types"
)

// Registry tracks which addresses have passed KYC verification.
type Registry struct {
	mu      sync.RWMutex
	verified map[types.Address]struct{}
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{verified: make(map[types.Address]struct{})}
}

// IsKYCed reports whether addr currently holds a KYC token.
func (r *Registry) IsKYCed(addr types.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.verified[addr]
	return ok
}

// Mint grants addr a KYC token. Fails UserAlreadyOwnsToken if addr is
// already verified.
func (r *Registry) Mint(addr types.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.verified[addr]; ok {
		return daoerrors.New(daoerrors.CodeUserAlreadyOwnsToken, "address %s already holds a KYC token", addr)
	}
	r.verified[addr] = struct{}{}
	return nil
}

// Burn revokes addr's KYC token, if any.
func (r *Registry) Burn(addr types.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.verified, addr)
}
