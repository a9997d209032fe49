package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/events"
	"daocore/observability/metrics"
	"daocore/types"
)

func TestGovernanceMetrics_IsASingleton(t *testing.T) {
	a := metrics.GovernanceMetrics()
	b := metrics.GovernanceMetrics()
	require.Same(t, a, b)
}

func TestEventEmitter_HandlesEveryKnownEventTypeWithoutPanicking(t *testing.T) {
	m := metrics.GovernanceMetrics()
	emitter := metrics.NewEventEmitter(m)

	require.NotPanics(t, func() {
		emitter.Emit(events.VotingCreated{VotingType: types.VotingTypeInformal})
		emitter.Emit(events.VotingEnded{VotingType: types.VotingTypeFormal, Result: types.VotingResultQuorumNotReached})
		emitter.Emit(events.VoterSlashed{})
		emitter.Emit(events.CSPRTransfer{Reason: "payout"})
	})
}

func TestEventEmitter_IgnoresUnknownEventTypes(t *testing.T) {
	m := metrics.GovernanceMetrics()
	emitter := metrics.NewEventEmitter(m)
	require.NotPanics(t, func() {
		emitter.Emit(unknownEvent{})
	})
}

func TestEventEmitter_NilReceiverDoesNotPanic(t *testing.T) {
	var emitter *metrics.EventEmitter
	require.NotPanics(t, func() {
		emitter.Emit(events.CSPRTransfer{Reason: "payout", Amount: types.NewBalance(1)})
	})
}

type unknownEvent struct{}

func (unknownEvent) EventType() string { return "test.unknown" }
