// Package cspr implements the CSPR Primitive external collaborator (spec
// §6): the host supplies deposit/withdraw within a transaction, and the
// core only ever sees typed Balance credits/debits. Purse is the reference
// in-memory implementation used by the harness and tests; a production host
// would back the same interface with a real native-token custody layer.
package cspr

import (
	"sync"

	"daocore/daoerrors"
	"daocore/types"
)

// Purse holds escrowed CSPR per address, standing in for the host's real
// custody of attached transaction value.
type Purse struct {
	mu      sync.Mutex
	balance map[types.Address]types.Balance
}

// NewPurse constructs an empty purse.
func NewPurse() *Purse {
	return &Purse{balance: make(map[types.Address]types.Balance)}
}

// Deposit credits amount to addr's escrowed balance, modeling the host
// having already collected attached transaction value from addr.
func (p *Purse) Deposit(addr types.Address, amount types.Balance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance[addr] = p.balance[addr].Add(amount)
}

// Withdraw debits amount from addr's escrowed balance. Fails
// PurseBalanceMismatch if addr does not hold enough.
func (p *Purse) Withdraw(addr types.Address, amount types.Balance) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	bal := p.balance[addr]
	next, ok := bal.SafeSub(amount)
	if !ok {
		return daoerrors.New(daoerrors.CodePurseBalanceMismatch, "address %s holds %s escrowed, cannot withdraw %s", addr, bal, amount)
	}
	p.balance[addr] = next
	return nil
}

// Transfer moves amount from from's escrowed balance directly to to's,
// without round-tripping through the host. Used for payouts that never
// leave escrow custody (e.g. job payment to worker).
func (p *Purse) Transfer(from, to types.Address, amount types.Balance) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	bal := p.balance[from]
	next, ok := bal.SafeSub(amount)
	if !ok {
		return daoerrors.New(daoerrors.CodePurseBalanceMismatch, "address %s holds %s escrowed, cannot transfer %s", from, bal, amount)
	}
	p.balance[from] = next
	p.balance[to] = p.balance[to].Add(amount)
	return nil
}

// BalanceOf returns addr's current escrowed balance.
func (p *Purse) BalanceOf(addr types.Address) types.Balance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance[addr]
}
