package bidescrow

import (
	"sync"

	"daocore/types"
)

// State is the narrow storage backend the engine depends on.
type State interface {
	GetOffer(id types.JobOfferId) (*JobOffer, bool)
	PutOffer(o *JobOffer)
	GetBid(id types.BidId) (*Bid, bool)
	PutBid(b *Bid)
	BidsByOffer(offerId types.JobOfferId) []*Bid
	GetJob(id types.JobId) (*Job, bool)
	PutJob(j *Job)
	JobByVoting(votingId types.VotingId) (types.JobId, bool)
}

// MemoryState is the reference in-memory State implementation.
type MemoryState struct {
	mu           sync.Mutex
	offers       map[types.JobOfferId]*JobOffer
	bids         map[types.BidId]*Bid
	bidsByOffer  map[types.JobOfferId][]types.BidId
	jobs         map[types.JobId]*Job
	jobsByVoting map[types.VotingId]types.JobId
}

// NewMemoryState constructs an empty in-memory backend.
func NewMemoryState() *MemoryState {
	return &MemoryState{
		offers:       make(map[types.JobOfferId]*JobOffer),
		bids:         make(map[types.BidId]*Bid),
		bidsByOffer:  make(map[types.JobOfferId][]types.BidId),
		jobs:         make(map[types.JobId]*Job),
		jobsByVoting: make(map[types.VotingId]types.JobId),
	}
}

func (m *MemoryState) GetOffer(id types.JobOfferId) (*JobOffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.offers[id]
	return o, ok
}

func (m *MemoryState) PutOffer(o *JobOffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[o.Id] = o
}

func (m *MemoryState) GetBid(id types.BidId) (*Bid, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bids[id]
	return b, ok
}

func (m *MemoryState) PutBid(b *Bid) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bids[b.Id]; !exists {
		m.bidsByOffer[b.OfferId] = append(m.bidsByOffer[b.OfferId], b.Id)
	}
	m.bids[b.Id] = b
}

func (m *MemoryState) BidsByOffer(offerId types.JobOfferId) []*Bid {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.bidsByOffer[offerId]
	out := make([]*Bid, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.bids[id])
	}
	return out
}

func (m *MemoryState) GetJob(id types.JobId) (*Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	return j, ok
}

func (m *MemoryState) PutJob(j *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.Id] = j
	if j.VotingId != nil {
		m.jobsByVoting[*j.VotingId] = j.Id
	}
}

func (m *MemoryState) JobByVoting(votingId types.VotingId) (types.JobId, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.jobsByVoting[votingId]
	return id, ok
}
