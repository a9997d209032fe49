// Package idgen implements the monotonic id generators named by spec §6
// (Voting-Id Generator) and the bid-escrow workflow's own JobOffer/Bid/Job
// counters, plus content-hash helpers for submitted job proofs and
// onboarding reason documents.
package idgen

import (
	"encoding/hex"
	"sync/atomic"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"lukechampine.com/blake3"

	"daocore/types"
)

// Sequence is a monotonic, never-reused counter. The zero value starts
// counting at 1 so that 0 can remain reserved as "no id".
type Sequence struct {
	next uint64
}

// NewSequence constructs a Sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) advance() uint64 {
	return atomic.AddUint64(&s.next, 1)
}

// VotingIds mints VotingId values, matching spec §6's Voting-Id Generator.
type VotingIds struct{ seq Sequence }

// Next returns the next VotingId.
func (g *VotingIds) Next() types.VotingId { return types.VotingId(g.seq.advance()) }

// JobOfferIds mints JobOfferId values.
type JobOfferIds struct{ seq Sequence }

// Next returns the next JobOfferId.
func (g *JobOfferIds) Next() types.JobOfferId { return types.JobOfferId(g.seq.advance()) }

// BidIds mints BidId values.
type BidIds struct{ seq Sequence }

// Next returns the next BidId.
func (g *BidIds) Next() types.BidId { return types.BidId(g.seq.advance()) }

// JobIds mints JobId values.
type JobIds struct{ seq Sequence }

// Next returns the next JobId.
func (g *JobIds) Next() types.JobId { return types.JobId(g.seq.advance()) }

// ContentHash renders the keccak256 digest of payload bytes as a hex
// string; the bid-escrow workflow uses it as the Job.proof document hash.
func ContentHash(data []byte) string {
	sum := ethcrypto.Keccak256(data)
	return hexString(sum)
}

// MetadataHash renders the blake3 digest of free-text metadata (an
// onboarding request's reason document) as a hex string, the same
// content-addressing role blake3.Sum256 plays for sanitized metadata in the
// teacher's native/creator engine.
func MetadataHash(text string) string {
	sum := blake3.Sum256([]byte(text))
	return "0x" + hex.EncodeToString(sum[:])
}

const hexDigits = "0123456789abcdef"

func hexString(b []byte) string {
	out := make([]byte, 2*len(b)+2)
	out[0], out[1] = '0', 'x'
	for i, v := range b {
		out[2+2*i] = hexDigits[v>>4]
		out[2+2*i+1] = hexDigits[v&0x0f]
	}
	return string(out)
}
