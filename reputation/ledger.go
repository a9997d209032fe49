// Package reputation implements the Reputation Ledger external collaborator
// (spec §6): per-address balances plus the voting/bid staking locks the
// Voting Engine and Bid-Escrow Workflow depend on. Grounded on the teacher's
// native/reputation.Ledger shape — a struct wrapping a narrow storage
// interface with an injectable clock — generalized from skill-attestation
// storage to balance/stake bookkeeping.
package reputation

import (
	"sync"

	"daocore/daoerrors"
	"daocore/types"
)

// stakeKey identifies one locked stake, either for a voting ballot or a bid.
type stakeKey struct {
	kind string // "voting" or "bid"
	id   uint64
	addr types.Address
}

// Ledger is the in-memory reference implementation of the Reputation Ledger
// interface. Production deployments would back this with durable storage
// using the same method surface.
type Ledger struct {
	mu      sync.Mutex
	balance map[types.Address]types.Balance
	total   types.Balance
	stakes  map[stakeKey]types.Balance
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balance: make(map[types.Address]types.Balance),
		total:   types.Zero,
		stakes:  make(map[stakeKey]types.Balance),
	}
}

// BalanceOf returns addr's current free balance (excludes locked stakes).
func (l *Ledger) BalanceOf(addr types.Address) types.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance[addr]
}

// TotalSupply returns the total minted supply: every address's free balance
// plus every locked stake.
func (l *Ledger) TotalSupply() types.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// AllBalances returns the total supply and every non-zero balance.
func (l *Ledger) AllBalances() (types.Balance, []AddressBalance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AddressBalance, 0, len(l.balance))
	for addr, bal := range l.balance {
		if bal.IsZero() {
			continue
		}
		out = append(out, AddressBalance{Address: addr, Balance: bal})
	}
	return l.total, out
}

// PartialBalances returns the total supply and the balances of only the
// requested addresses.
func (l *Ledger) PartialBalances(addrs []types.Address) (types.Balance, []AddressBalance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AddressBalance, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, AddressBalance{Address: addr, Balance: l.balance[addr]})
	}
	return l.total, out
}

// AddressBalance pairs an address with its ledger balance.
type AddressBalance struct {
	Address types.Address
	Balance types.Balance
}

// Mint credits amount to addr as transferable, bound reputation.
func (l *Ledger) Mint(addr types.Address, amount types.Balance) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance[addr] = l.balance[addr].Add(amount)
	l.total = l.total.Add(amount)
}

// MintPassive grants only potential, unbound balance. The reference ledger
// tracks potential and bound balance identically since nothing downstream
// distinguishes them once minted; the distinction that matters is upstream,
// in whether a ballot was marked unbound when the stake was recorded.
func (l *Ledger) MintPassive(addr types.Address, amount types.Balance) {
	l.Mint(addr, amount)
}

// Burn debits amount from addr. Fails InsufficientBalance if addr does not
// hold enough free balance.
func (l *Ledger) Burn(addr types.Address, amount types.Balance) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balance[addr]
	next, ok := bal.SafeSub(amount)
	if !ok {
		return daoerrors.New(daoerrors.CodeInsufficientBalance, "address %s holds %s, cannot burn %s", addr, bal, amount)
	}
	l.balance[addr] = next
	l.total = l.total.Sub(amount)
	return nil
}

// BurnAll zeroes out addr's entire balance and returns the amount burned.
func (l *Ledger) BurnAll(addr types.Address) types.Balance {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balance[addr]
	l.balance[addr] = types.Zero
	l.total = l.total.Sub(bal)
	return bal
}

// StakeForVoting locks amount from addr's free balance against a specific
// (voting_id, addr) pair. Fails CannotStakeTwice if a stake already exists
// for that pair, InsufficientBalanceForStake if addr's free balance is
// short.
func (l *Ledger) StakeForVoting(votingID uint64, addr types.Address, amount types.Balance) error {
	return l.stake("voting", votingID, addr, amount, daoerrors.CodeVotingStakeDoesntExist)
}

// UnstakeForVoting releases a previously locked voting stake back to addr's
// free balance. Fails VotingStakeDoesntExist if no matching stake exists.
func (l *Ledger) UnstakeForVoting(votingID uint64, addr types.Address, amount types.Balance) error {
	return l.unstake("voting", votingID, addr, amount, daoerrors.CodeVotingStakeDoesntExist)
}

// BulkUnstakeForVoting releases a batch of locked voting stakes in one call.
// The voting engine does not use it; its refund paths release each ballot
// through UnstakeForVoting.
func (l *Ledger) BulkUnstakeForVoting(releases []VotingRelease) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range releases {
		key := stakeKey{kind: "voting", id: r.VotingID, addr: r.Address}
		locked, ok := l.stakes[key]
		if !ok {
			return daoerrors.New(daoerrors.CodeVotingStakeDoesntExist, "no voting stake for %s on voting %d", r.Address, r.VotingID)
		}
		if locked.Cmp(r.Amount) < 0 {
			return daoerrors.New(daoerrors.CodeVotingStakeDoesntExist, "voting stake for %s on voting %d is %s, cannot release %s", r.Address, r.VotingID, locked, r.Amount)
		}
		remaining := locked.Sub(r.Amount)
		if remaining.IsZero() {
			delete(l.stakes, key)
		} else {
			l.stakes[key] = remaining
		}
		l.balance[r.Address] = l.balance[r.Address].Add(r.Amount)
	}
	return nil
}

// VotingRelease is one entry in a BulkUnstakeForVoting batch.
type VotingRelease struct {
	VotingID uint64
	Address  types.Address
	Amount   types.Balance
}

// StakeForBid locks amount from addr's free balance against a specific
// (bid_id, addr) pair.
func (l *Ledger) StakeForBid(bidID uint64, addr types.Address, amount types.Balance) error {
	return l.stake("bid", bidID, addr, amount, daoerrors.CodeBidStakeDoesntExist)
}

// UnstakeForBid releases a previously locked bid stake back to addr's free
// balance.
func (l *Ledger) UnstakeForBid(bidID uint64, addr types.Address, amount types.Balance) error {
	return l.unstake("bid", bidID, addr, amount, daoerrors.CodeBidStakeDoesntExist)
}

func (l *Ledger) stake(kind string, id uint64, addr types.Address, amount types.Balance, notFoundCode daoerrors.Code) error {
	if amount.IsZero() {
		return daoerrors.New(daoerrors.CodeZeroStake, "stake amount must be positive")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	key := stakeKey{kind: kind, id: id, addr: addr}
	if _, exists := l.stakes[key]; exists {
		return daoerrors.New(daoerrors.CodeCannotStakeTwice, "%s %d already has a stake from %s", kind, id, addr)
	}
	bal := l.balance[addr]
	next, ok := bal.SafeSub(amount)
	if !ok {
		return daoerrors.New(daoerrors.CodeInsufficientBalanceForStake, "address %s holds %s, cannot stake %s", addr, bal, amount)
	}
	l.balance[addr] = next
	l.stakes[key] = amount
	return nil
}

func (l *Ledger) unstake(kind string, id uint64, addr types.Address, amount types.Balance, notFoundCode daoerrors.Code) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := stakeKey{kind: kind, id: id, addr: addr}
	locked, ok := l.stakes[key]
	if !ok {
		return daoerrors.New(notFoundCode, "no %s stake for %s on %d", kind, addr, id)
	}
	if locked.Cmp(amount) < 0 {
		return daoerrors.New(notFoundCode, "%s stake for %s on %d is %s, cannot release %s", kind, addr, id, locked, amount)
	}
	remaining := locked.Sub(amount)
	if remaining.IsZero() {
		delete(l.stakes, key)
	} else {
		l.stakes[key] = remaining
	}
	l.balance[addr] = l.balance[addr].Add(amount)
	return nil
}
