// Package oracle implements the Fiat Rate Oracle external collaborator
// (spec §6), consulted exclusively at bid-escrow configuration build time
// to convert the DOS fee threshold into CSPR terms.
package oracle

import (
	"sync"
	"sync/atomic"

	"daocore/daoerrors"
	"daocore/types"
)

// FiatRateOracle serves a fiat-per-CSPR rate (fixed-point millicent
// scaling). Any SetRate call, including one with a zero rate, marks the rate
// as set.
type FiatRateOracle struct {
	mu   sync.RWMutex
	rate types.Balance
	set  atomic.Bool
}

// NewFiatRateOracle constructs an oracle with no rate set.
func NewFiatRateOracle() *FiatRateOracle {
	return &FiatRateOracle{}
}

// SetRate installs the current fiat-per-CSPR rate. Callers (e.g. a price
// feed poller) are expected to call this periodically; the core never
// drives it.
func (o *FiatRateOracle) SetRate(rate types.Balance) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rate = rate
	o.set.Store(true)
}

// Rate returns the current rate, or FiatRateNotSet if none has been
// installed yet.
func (o *FiatRateOracle) Rate() (types.Balance, error) {
	if !o.set.Load() {
		return types.Zero, daoerrors.New(daoerrors.CodeFiatRateNotSet, "fiat rate oracle has no rate installed")
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.rate, nil
}
