package voting

import (
	"sync"

	"daocore/types"
)

type ballotKey struct {
	votingId   types.VotingId
	votingType types.VotingType
	voter      types.Address
}

// Store is the narrow storage backend the engine depends on, matching the
// teacher's proposalState pattern: a state-interface-backed engine that
// tests can satisfy with an in-memory fake.
type Store interface {
	GetVoting(id types.VotingId) (*Voting, bool)
	PutVoting(v *Voting)
	GetBallot(id types.VotingId, vt types.VotingType, voter types.Address) (*Ballot, bool)
	PutBallot(b *Ballot)
	ListBallots(id types.VotingId, vt types.VotingType) []*Ballot
	// VotingsByVoter lists every voting id a voter currently holds a
	// non-canceled ballot in, across both stages, supporting slash_voter's
	// cascade.
	VotingsByVoter(voter types.Address) []types.VotingId
}

// MemoryState is the reference in-memory Store implementation used by the
// harness and by tests.
type MemoryState struct {
	mu       sync.Mutex
	votings  map[types.VotingId]*Voting
	ballots  map[ballotKey]*Ballot
	byVoter  map[types.Address]map[types.VotingId]struct{}
}

// NewMemoryState constructs an empty in-memory backend.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		votings: make(map[types.VotingId]*Voting),
		ballots: make(map[ballotKey]*Ballot),
		byVoter: make(map[types.Address]map[types.VotingId]struct{}),
	}
}

func (m *MemoryState) GetVoting(id types.VotingId) (*Voting, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votings[id]
	return v, ok
}

func (m *MemoryState) PutVoting(v *Voting) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votings[v.Id] = v
}

func (m *MemoryState) GetBallot(id types.VotingId, vt types.VotingType, voter types.Address) (*Ballot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.ballots[ballotKey{id, vt, voter}]
	return b, ok
}

func (m *MemoryState) PutBallot(b *Ballot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ballots[ballotKey{b.VotingId, b.VotingType, b.Voter}] = b
	if m.byVoter[b.Voter] == nil {
		m.byVoter[b.Voter] = make(map[types.VotingId]struct{})
	}
	m.byVoter[b.Voter][b.VotingId] = struct{}{}
}

func (m *MemoryState) ListBallots(id types.VotingId, vt types.VotingType) []*Ballot {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Ballot
	for k, b := range m.ballots {
		if k.votingId == id && k.votingType == vt {
			out = append(out, b)
		}
	}
	return out
}

func (m *MemoryState) VotingsByVoter(voter types.Address) []types.VotingId {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.VotingId, 0, len(m.byVoter[voter]))
	for id := range m.byVoter[voter] {
		out = append(out, id)
	}
	return out
}
