// Package power provides the platform low-power entry primitive.
package power

// Sleeper enters the platform's low-power state.
type Sleeper interface {
	// Off powers the device down. On real hardware it does not return under
	// normal operation.
	Off() error
}
