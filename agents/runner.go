package agents

import (
	"context"
	"encoding/json"
	"log"

	"aibc/store"
	"aibc/types"
)

// OutputSink persists agent outputs; satisfied by *store.Store
type OutputSink interface {
	SaveAgentOutput(out store.AgentOutput) error
}

// Runner is the downstream agent worker. It receives routed envelopes off
// the queue and records one agent-output row per delivery. The agents'
// content-generation behavior lives in the hosted platform; this worker
// closes the persistence contract for deliveries.
type Runner struct {
	sink OutputSink
}

// NewRunner creates an agent worker writing to the given sink
func NewRunner(sink OutputSink) *Runner {
	return &Runner{sink: sink}
}

// HandleEnvelope implements queue.EnvelopeHandler. A failed write leaves the
// message unmarked so the queue redelivers it.
func (r *Runner) HandleEnvelope(ctx context.Context, env types.Envelope) (bool, error) {
	payload, err := json.Marshal(env.Signal)
	if err != nil {
		// Undecodable signals are recorded without a payload rather than retried
		payload = nil
	}

	out := store.AgentOutput{
		AgentID:  string(env.AgentID),
		SignalID: env.Signal.ID,
		CycleID:  env.CycleID,
		Status:   "received",
		Payload:  string(payload),
	}

	if err := r.sink.SaveAgentOutput(out); err != nil {
		return false, err
	}

	log.Printf("Agent %s received signal %s (%s, confidence %.2f)",
		env.AgentID, env.Signal.ID, env.Signal.Category, env.Signal.Confidence)
	return true, nil
}
