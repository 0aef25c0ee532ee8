//go:build linux

package gpio

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealIndicator drives the LED through a GPIO character device output line.
type RealIndicator struct {
	line *gpiocdev.Line
}

// NewRealIndicator requests the LED line as an output, initially off.
func NewRealIndicator(chip string, pin int) (*RealIndicator, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request LED pin %d: %w", pin, err)
	}
	return &RealIndicator{line: line}, nil
}

// Set turns the indicator on or off.
func (i *RealIndicator) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := i.line.SetValue(v); err != nil {
		return fmt.Errorf("set LED pin: %w", err)
	}
	return nil
}

// Close turns the LED off and reverts the line to input so it does not hold
// an unexpected level across a reboot.
func (i *RealIndicator) Close() error {
	var errs []error
	if err := i.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear LED pin: %w", err))
	}
	if err := i.line.Reconfigure(gpiocdev.AsInput); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure LED pin: %w", err))
	}
	if err := i.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close LED pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealSwitch watches the switch line for edges and delivers press/release
// events. Electrical debouncing is delegated to the kernel's debounce period.
type RealSwitch struct {
	line   *gpiocdev.Line
	events chan Event
}

// NewRealSwitch requests the switch line as an input with edge detection.
// activeLow should be true for the usual switch-to-ground wiring with an
// internal pull-up; logical "pressed" then corresponds to the line going low.
func NewRealSwitch(chip string, pin int, activeLow bool, debounce time.Duration) (*RealSwitch, error) {
	s := &RealSwitch{events: make(chan Event, 8)}

	opts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(debounce),
		gpiocdev.WithEventHandler(s.handleEdge),
	}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow, gpiocdev.WithPullUp)
	} else {
		opts = append(opts, gpiocdev.WithPullDown)
	}

	line, err := gpiocdev.RequestLine(chip, pin, opts...)
	if err != nil {
		return nil, fmt.Errorf("request switch pin %d: %w", pin, err)
	}
	s.line = line
	return s, nil
}

// handleEdge runs on gpiocdev's event goroutine. With AsActiveLow applied,
// a rising edge is always the logical press.
func (s *RealSwitch) handleEdge(evt gpiocdev.LineEvent) {
	pressed := evt.Type == gpiocdev.LineEventRisingEdge
	select {
	case s.events <- Event{Pressed: pressed}:
	default:
		// Consumer is wedged; drop rather than block the event goroutine.
		// The held flag re-syncs on the next edge.
	}
}

// Read returns whether the switch is currently held.
func (s *RealSwitch) Read() (bool, error) {
	v, err := s.line.Value()
	if err != nil {
		return false, fmt.Errorf("read switch pin: %w", err)
	}
	return v != 0, nil
}

// Events returns the press/release notification stream.
func (s *RealSwitch) Events() <-chan Event {
	return s.events
}

// Close releases the switch line.
func (s *RealSwitch) Close() error {
	if err := s.line.Close(); err != nil {
		return fmt.Errorf("close switch pin: %w", err)
	}
	return nil
}
