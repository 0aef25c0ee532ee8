//go:build !linux

package power

import "errors"

// RealSleeper is not available on non-Linux platforms.
type RealSleeper struct{}

// NewRealSleeper creates a RealSleeper.
func NewRealSleeper() *RealSleeper {
	return &RealSleeper{}
}

// Off is not implemented on non-Linux platforms.
func (*RealSleeper) Off() error {
	return errors.New("power: not supported on this platform (requires Linux)")
}
