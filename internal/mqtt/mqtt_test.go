package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/travel-switch/internal/logic"
)

func TestFormatPayload(t *testing.T) {
	event := TransitionEvent{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		From:      logic.StateIdle,
		To:        logic.StateHoldPending,
		Cause:     "press",
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if p.Switch.Timestamp != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp: got %q, want 2026-03-14T09:26:53Z", p.Switch.Timestamp)
	}
	if p.Switch.From != "IDLE" {
		t.Errorf("from: got %q, want IDLE", p.Switch.From)
	}
	if p.Switch.To != "HOLD_PENDING" {
		t.Errorf("to: got %q, want HOLD_PENDING", p.Switch.To)
	}
	if p.Switch.Cause != "press" {
		t.Errorf("cause: got %q, want press", p.Switch.Cause)
	}
}

func TestFormatPayloadLocalTimeNormalized(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	event := TransitionEvent{
		Timestamp: time.Date(2026, 3, 14, 11, 0, 0, 0, loc),
		From:      logic.StateHoldPending,
		To:        logic.StateBlinkSequence,
		Cause:     string(logic.HoldTimer),
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if p.Switch.Timestamp != "2026-03-14T09:00:00Z" {
		t.Errorf("timestamp should be UTC: got %q", p.Switch.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "hold-confirmed",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var p SystemPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if p.System.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", p.System.Event)
	}
	if p.System.Reason != "hold-confirmed" {
		t.Errorf("reason: got %q, want hold-confirmed", p.System.Reason)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Event:     "STARTUP",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if _, ok := raw["system"]["reason"]; ok {
		t.Error("empty reason should be omitted from payload")
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"system":{"event":"HEARTBEAT","custom":true}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "HEARTBEAT",
		RawPayload: raw,
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: got %s", payload)
	}
}

func TestFakePublisherRecordsEvents(t *testing.T) {
	f := NewFakePublisher()

	event := TransitionEvent{
		Timestamp: time.Now(),
		From:      logic.StateBlinkSequence,
		To:        logic.StateShuttingDown,
		Cause:     "release",
	}
	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("events: got %d, want 1", len(f.Events))
	}
	if f.Events[0].To != logic.StateShuttingDown {
		t.Errorf("recorded event To: got %s, want %s", f.Events[0].To, logic.StateShuttingDown)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("payloads: got %d, want 1", len(f.Payloads))
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	err := f.Publish(TransitionEvent{Timestamp: time.Now()})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not be recorded")
	}

	f.PublishSystemError = errors.New("broker down")
	if err := f.PublishSystem(SystemEvent{Event: "SHUTDOWN"}); err == nil {
		t.Fatal("expected system publish error")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(TransitionEvent{Timestamp: time.Now()})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Connected = true
	f.Close()

	f.Reset()

	if len(f.Events) != 0 || len(f.SystemEvents) != 0 || f.Closed || f.Connected {
		t.Error("Reset should clear all recorded state")
	}
}
