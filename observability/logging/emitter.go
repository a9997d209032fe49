package logging

import (
	"log/slog"

	"daocore/events"
)

// EventEmitter adapts every Renderable event emitted by the core's engines
// into a structured slog line, so the same events that feed the audit
// mirror and RPC subscribers also land in the operator's log stream (spec's
// ambient logging concern, carried even though spec.md names no
// observability surface of its own).
type EventEmitter struct {
	log *slog.Logger
}

// NewEventEmitter wraps log as an events.Emitter.
func NewEventEmitter(log *slog.Logger) *EventEmitter {
	return &EventEmitter{log: log}
}

// Emit implements events.Emitter. Events that do not implement
// events.Renderable are logged by type alone.
func (e *EventEmitter) Emit(ev events.Event) {
	if e == nil || e.log == nil {
		return
	}
	r, ok := ev.(events.Renderable)
	if !ok {
		e.log.Info("event", "type", ev.EventType())
		return
	}
	rec := r.Render()
	args := make([]any, 0, len(rec.Attributes)*2+2)
	args = append(args, "type", rec.Type)
	for k, v := range rec.Attributes {
		args = append(args, k, v)
	}
	e.log.Info("event", args...)
}
