// Package gpio provides the switch input line and the indicator output line
// with hardware abstraction. The real implementations use the Linux GPIO
// character device. The fake implementations allow testing without hardware.
package gpio

// Event is a single press/release notification from the switch line.
type Event struct {
	Pressed bool
}

// Switch delivers press/release notifications for the monitored switch.
type Switch interface {
	// Read returns whether the switch is currently held. Used once at boot,
	// before any events have been delivered.
	Read() (bool, error)

	// Events returns the stream of press/release notifications. The channel
	// is never closed; Close stops deliveries.
	Events() <-chan Event

	// Close releases the line.
	Close() error
}

// Indicator drives the LED line.
type Indicator interface {
	// Set turns the indicator on or off.
	Set(on bool) error

	// Close releases the line, leaving the indicator off.
	Close() error
}

// Default wiring (BCM numbering).
const (
	DefaultChip      = "gpiochip0"
	DefaultPinSwitch = 26
	DefaultPinLED    = 16
)

// NopIndicator is used when the LED line could not be configured at boot:
// the daemon keeps running without visual feedback.
type NopIndicator struct{}

func (NopIndicator) Set(bool) error { return nil }
func (NopIndicator) Close() error   { return nil }
