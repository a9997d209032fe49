// Package rules implements the composable validator used by bids, jobs,
// offers, and onboarding (spec §4.6): a builder accumulates typed
// predicates, and Validate short-circuits on the first failure with that
// rule's error kind. This is the single bottleneck through which every
// pre-mutation guard in the bid-escrow and onboarding workflows passes, so
// no state ever mutates past a failed check.
package rules

import "daocore/daoerrors"

// Rule is a single named precondition. Ok reports whether the condition
// holds; Code is the error returned when it does not.
type Rule struct {
	Name string
	Ok   bool
	Code daoerrors.Code
	Msg  string
}

// Builder accumulates rules for a single validation pass.
type Builder struct {
	rules []Rule
}

// New constructs an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Add appends a rule to the builder. Call sites typically wrap this with a
// package-level constructor per named predicate (see predicates.go).
func (b *Builder) Add(rule Rule) *Builder {
	b.rules = append(b.rules, rule)
	return b
}

// Validate runs every accumulated rule in order and returns the first
// failure, or nil if every rule holds.
func (b *Builder) Validate() error {
	for _, r := range b.rules {
		if !r.Ok {
			if r.Msg != "" {
				return daoerrors.New(r.Code, "%s: %s", r.Name, r.Msg)
			}
			return daoerrors.New(r.Code, "%s failed", r.Name)
		}
	}
	return nil
}
