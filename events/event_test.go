package events_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/events"
	"daocore/types"
)

type recordingEmitter struct{ received []events.Event }

func (r *recordingEmitter) Emit(e events.Event) { r.received = append(r.received, e) }

func TestMultiEmitter_FansOutToEverySink(t *testing.T) {
	a := &recordingEmitter{}
	b := &recordingEmitter{}
	multi := events.MultiEmitter{a, b}

	evt := events.VoterSlashed{VotingId: types.VotingId(1), Burned: types.NewBalance(5)}
	multi.Emit(evt)

	require.Len(t, a.received, 1)
	require.Len(t, b.received, 1)
	require.Equal(t, evt, a.received[0])
}

func TestNoopEmitter_DiscardsSilently(t *testing.T) {
	require.NotPanics(t, func() {
		events.NoopEmitter{}.Emit(events.VoterSlashed{})
	})
}

func TestCSPRTransfer_Render(t *testing.T) {
	addrFrom := types.MustNewAddress(types.DAOPrefix, make([]byte, 20))
	addrTo := types.MustNewAddress(types.DAOPrefix, append(make([]byte, 19), 1))
	evt := events.CSPRTransfer{From: addrFrom, To: addrTo, Amount: types.NewBalance(10), Reason: "payout"}

	rec := evt.Render()
	require.Equal(t, events.TypeCSPRTransfer, rec.Type)
	require.Equal(t, "payout", rec.Attributes["reason"])
	require.Equal(t, "10", rec.Attributes["amount"])
	require.Equal(t, addrFrom.String(), rec.Attributes["from"])
}

func TestOnboardingVotingCreated_Render(t *testing.T) {
	addr := types.MustNewAddress(types.DAOPrefix, make([]byte, 20))
	evt := events.OnboardingVotingCreated{VotingId: types.VotingId(7), Requester: addr, Stake: types.NewBalance(50), ReasonHash: "0xabc"}

	rec := evt.Render()
	require.Equal(t, events.TypeOnboardingVotingCreated, rec.Type)
	require.Equal(t, "0xabc", rec.Attributes["reasonHash"])
}
