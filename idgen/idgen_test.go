package idgen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/idgen"
)

func TestSequences_MonotonicStartingAtOne(t *testing.T) {
	var votingIds idgen.VotingIds
	require.EqualValues(t, 1, votingIds.Next())
	require.EqualValues(t, 2, votingIds.Next())

	var jobOfferIds idgen.JobOfferIds
	require.EqualValues(t, 1, jobOfferIds.Next())

	var bidIds idgen.BidIds
	require.EqualValues(t, 1, bidIds.Next())

	var jobIds idgen.JobIds
	require.EqualValues(t, 1, jobIds.Next())
}

func TestContentHash_Deterministic(t *testing.T) {
	h1 := idgen.ContentHash([]byte("proof document"))
	h2 := idgen.ContentHash([]byte("proof document"))
	h3 := idgen.ContentHash([]byte("different document"))

	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)
	require.Regexp(t, "^0x[0-9a-f]{64}$", h1)
}

func TestMetadataHash_Deterministic(t *testing.T) {
	h1 := idgen.MetadataHash("please let me join")
	h2 := idgen.MetadataHash("please let me join")
	h3 := idgen.MetadataHash("something else")

	require.Equal(t, h1, h2)
	require.NotEqual(t, h1, h3)
	require.Regexp(t, "^0x[0-9a-f]{64}$", h1)
}
