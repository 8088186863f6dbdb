package agents

import (
	"context"
	"errors"
	"testing"

	"aibc/store"
	"aibc/types"
)

type fakeSink struct {
	outputs []store.AgentOutput
	err     error
}

func (f *fakeSink) SaveAgentOutput(out store.AgentOutput) error {
	if f.err != nil {
		return f.err
	}
	f.outputs = append(f.outputs, out)
	return nil
}

func TestHandleEnvelopeRecordsOutput(t *testing.T) {
	sink := &fakeSink{}
	runner := NewRunner(sink)

	env := types.Envelope{
		AgentID: types.AgentContentDirector,
		CycleID: "cycle-1",
		Signal: types.Signal{
			ID:         "social-0",
			Source:     types.SourceSocial,
			Category:   types.CategoryViral,
			Title:      "Campaign blew up",
			Confidence: 0.95,
		},
	}

	mark, err := runner.HandleEnvelope(context.Background(), env)
	if err != nil {
		t.Fatalf("HandleEnvelope failed: %v", err)
	}
	if !mark {
		t.Fatal("successful delivery should mark the message")
	}

	if len(sink.outputs) != 1 {
		t.Fatalf("recorded %d outputs; want 1", len(sink.outputs))
	}
	out := sink.outputs[0]
	if out.AgentID != "content_director" || out.SignalID != "social-0" || out.CycleID != "cycle-1" {
		t.Fatalf("output = %+v", out)
	}
	if out.Status != "received" {
		t.Errorf("status = %q; want received", out.Status)
	}
	if out.Payload == "" {
		t.Error("payload should carry the signal JSON")
	}
}

func TestHandleEnvelopeSinkFailureRetries(t *testing.T) {
	runner := NewRunner(&fakeSink{err: errors.New("database locked")})

	mark, err := runner.HandleEnvelope(context.Background(), types.Envelope{
		AgentID: types.AgentGrowthStrategy,
		Signal:  types.Signal{ID: "news-0"},
	})
	if err == nil {
		t.Fatal("expected sink error to propagate")
	}
	if mark {
		t.Fatal("failed delivery must stay unmarked so the queue can retry")
	}
}
