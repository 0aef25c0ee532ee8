package gpio

import (
	"errors"
	"testing"
)

func TestFakeSwitchRead(t *testing.T) {
	f := NewFakeSwitch(true)
	held, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !held {
		t.Error("expected held=true")
	}

	f.Held = false
	held, err = f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if held {
		t.Error("expected held=false")
	}
}

func TestFakeSwitchReadError(t *testing.T) {
	f := NewFakeSwitch(true)
	f.ReadError = errors.New("line not ready")

	_, err := f.Read()
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestFakeSwitchEvents(t *testing.T) {
	f := NewFakeSwitch(false)
	f.Press()
	f.Release()

	ev := <-f.Events()
	if !ev.Pressed {
		t.Error("first event: expected pressed")
	}
	ev = <-f.Events()
	if ev.Pressed {
		t.Error("second event: expected released")
	}
	if f.Held {
		t.Error("held should be false after release")
	}
}

func TestFakeSwitchClose(t *testing.T) {
	f := NewFakeSwitch(false)
	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("expected Closed=true")
	}
}

func TestFakeIndicatorRecordsWrites(t *testing.T) {
	f := NewFakeIndicator()

	if err := f.Set(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.On {
		t.Error("indicator should be off after last write")
	}
	if len(f.Writes) != 2 || !f.Writes[0] || f.Writes[1] {
		t.Errorf("writes: got %v, want [true false]", f.Writes)
	}
	if !f.EverOn() {
		t.Error("EverOn should report the on write")
	}
}

func TestFakeIndicatorSetError(t *testing.T) {
	f := NewFakeIndicator()
	f.SetError = errors.New("stuck line")

	if err := f.Set(true); err == nil {
		t.Fatal("expected error")
	}
	if len(f.Writes) != 0 {
		t.Errorf("failed write should not be recorded, got %v", f.Writes)
	}
}

func TestNopIndicator(t *testing.T) {
	var ind Indicator = NopIndicator{}
	if err := ind.Set(true); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ind.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
