package types

import "fmt"

// VotingId, JobId, JobOfferId and BidId are opaque monotonic identifiers
// minted by their respective generators (voting ids by the external
// voting-id generator, the rest by the bid-escrow workflow's own counters).
// They are never reused and are only ever compared for equality or ordering.
type VotingId uint64

// JobOfferId identifies a posted job offer.
type JobOfferId uint64

// BidId identifies a bid against a job offer.
type BidId uint64

// JobId identifies a job created from a picked bid.
type JobId uint64

func (id VotingId) String() string   { return fmt.Sprintf("voting-%d", uint64(id)) }
func (id JobOfferId) String() string { return fmt.Sprintf("offer-%d", uint64(id)) }
func (id BidId) String() string      { return fmt.Sprintf("bid-%d", uint64(id)) }
func (id JobId) String() string      { return fmt.Sprintf("job-%d", uint64(id)) }
