// Package variables implements the delayed-activation key/value repository
// (spec §6 "Variable Repository"): the backing store for every named field
// of the Configuration snapshot, with support for scheduling a replacement
// value that only becomes visible once its activation time has passed.
//
// The pattern follows the teacher's params.Store: a typed accessor wrapping
// a narrow state-backend interface, so the engine under test can supply an
// in-memory fake instead of a real state manager.
package variables

import (
	"fmt"

	"daocore/daoerrors"
)

// State is the narrow storage backend the repository depends on. A single
// entry is the JSON-free raw bytes plus optional scheduled replacement;
// callers outside this package never see the envelope.
type State interface {
	VariableGet(key string) (entry, bool)
	VariableSet(key string, entry entry)
	VariableKeys() []string
}

// entry is the stored envelope: a current value plus an optional scheduled
// replacement awaiting its activation time.
type entry struct {
	value     []byte
	hasSched  bool
	schedValue []byte
	schedAt    uint64
}

// MemoryState is an in-memory State implementation, the default backend
// used by the harness and by tests.
type MemoryState struct {
	entries map[string]entry
}

// NewMemoryState constructs an empty in-memory backend.
func NewMemoryState() *MemoryState {
	return &MemoryState{entries: make(map[string]entry)}
}

func (m *MemoryState) VariableGet(key string) (entry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

func (m *MemoryState) VariableSet(key string, e entry) {
	m.entries[key] = e
}

func (m *MemoryState) VariableKeys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

// Clock returns the current time as a Unix timestamp. Engines supply this so
// tests can control "now" deterministically.
type Clock func() uint64

// Repository is the delayed-activation variable store.
type Repository struct {
	state State
	now   Clock
}

// New constructs a Repository backed by state, using now to resolve
// activation times.
func New(state State, now Clock) *Repository {
	return &Repository{state: state, now: now}
}

// UpdateAt installs value as the key's current value (activationTime == nil)
// or schedules it as a pending replacement (activationTime in the future).
// If the key already carries a scheduled value whose activation time has
// already passed, that value is promoted to current first, matching the
// spec's "updating a key whose scheduled value is in the past promotes it
// first" rule.
func (r *Repository) UpdateAt(key string, value []byte, activationTime *uint64) error {
	current, _ := r.state.VariableGet(key)
	current = r.promoteIfDue(current)

	if activationTime == nil {
		current.value = value
		current.hasSched = false
		current.schedValue = nil
		current.schedAt = 0
		r.state.VariableSet(key, current)
		return nil
	}

	now := r.now()
	if *activationTime <= now {
		return daoerrors.New(daoerrors.CodeActivationTimeInPast,
			"activation time %d is not after current time %d", *activationTime, now)
	}
	current.hasSched = true
	current.schedValue = value
	current.schedAt = *activationTime
	r.state.VariableSet(key, current)
	return nil
}

// Get returns the key's effective value: the scheduled replacement if its
// activation time has passed, otherwise the current value.
func (r *Repository) Get(key string) ([]byte, bool) {
	e, ok := r.state.VariableGet(key)
	if !ok {
		return nil, false
	}
	e = r.promoteIfDue(e)
	if e.value == nil && !e.hasSched {
		return nil, false
	}
	return e.value, e.value != nil
}

// All returns every key's effective value.
func (r *Repository) All() map[string][]byte {
	out := make(map[string][]byte)
	for _, key := range r.state.VariableKeys() {
		if v, ok := r.Get(key); ok {
			out[key] = v
		}
	}
	return out
}

func (r *Repository) promoteIfDue(e entry) entry {
	if e.hasSched && r.now() > e.schedAt {
		e.value = e.schedValue
		e.hasSched = false
		e.schedValue = nil
		e.schedAt = 0
	}
	return e
}

// MustGetString is a convenience wrapper for Configuration resolution: it
// returns the effective value as a string, or an empty string if unset.
func MustGetString(r *Repository, key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return string(v)
}

// ErrValueNotAvailable is returned by callers of Get that require a value to
// be present (the repository itself returns ok=false instead of an error,
// since "key never set" is a normal state, not a failure).
var ErrValueNotAvailable = fmt.Errorf("variables: %s", daoerrors.CodeValueNotAvailable)
