package power

// FakeSleeper counts power-off invocations for test assertions.
type FakeSleeper struct {
	// Calls is the number of times Off was invoked.
	Calls int

	// OffError, if set, will be returned by Off.
	OffError error
}

// NewFakeSleeper creates a FakeSleeper.
func NewFakeSleeper() *FakeSleeper {
	return &FakeSleeper{}
}

// Off records the invocation.
func (f *FakeSleeper) Off() error {
	f.Calls++
	return f.OffError
}
