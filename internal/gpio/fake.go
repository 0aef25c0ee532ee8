package gpio

// FakeSwitch is a test double for the switch line. Tests script the held
// state and push press/release events through the same channel the real
// implementation uses.
type FakeSwitch struct {
	// Held is returned by Read.
	Held bool

	// ReadError, if set, will be returned by Read.
	ReadError error

	// C carries the scripted events. Buffered so tests can push without a
	// consumer running.
	C chan Event

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSwitch creates a FakeSwitch with the given boot-time held state.
func NewFakeSwitch(held bool) *FakeSwitch {
	return &FakeSwitch{Held: held, C: make(chan Event, 16)}
}

// Read returns the scripted held state.
func (f *FakeSwitch) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}
	return f.Held, nil
}

// Events returns the scripted event channel.
func (f *FakeSwitch) Events() <-chan Event {
	return f.C
}

// Press queues a press event and updates the held state.
func (f *FakeSwitch) Press() {
	f.Held = true
	f.C <- Event{Pressed: true}
}

// Release queues a release event and updates the held state.
func (f *FakeSwitch) Release() {
	f.Held = false
	f.C <- Event{Pressed: false}
}

// Close marks the switch as closed.
func (f *FakeSwitch) Close() error {
	f.Closed = true
	return nil
}

// FakeIndicator records indicator writes for test assertions.
type FakeIndicator struct {
	// On is the current indicator value.
	On bool

	// Writes contains every value set, in order.
	Writes []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeIndicator creates a FakeIndicator, initially off.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{}
}

// Set records the write.
func (f *FakeIndicator) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.On = on
	f.Writes = append(f.Writes, on)
	return nil
}

// Close marks the indicator as closed.
func (f *FakeIndicator) Close() error {
	f.Closed = true
	return nil
}

// EverOn reports whether any write turned the indicator on.
func (f *FakeIndicator) EverOn() bool {
	for _, on := range f.Writes {
		if on {
			return true
		}
	}
	return false
}
