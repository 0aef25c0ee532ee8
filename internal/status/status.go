// Package status provides a thread-safe status tracker for the travel-switch
// daemon. It is read by HTTP handlers and serialized into MQTT lifecycle
// payloads.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/travel-switch/internal/logic"
)

// Counts tracks how often each notable event occurred since startup.
type Counts struct {
	Presses        int
	Releases       int
	HoldsConfirmed int
	Cooldowns      int
	SpuriousWakes  int
}

// Config contains daemon configuration for display.
type Config struct {
	Chip            string
	SwitchPin       int
	LEDPin          int
	HoldMs          int64
	CooldownMs      int64
	BlinkCount      uint
	BlinkIntervalMs int64
	HeartbeatMs     int64
	Broker          string
	HTTPAddr        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State          logic.State
	Held           bool
	BlinkRemaining uint
	Counts         Counts
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     logic.StateIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the machine state, held flag, blink progress, and counts.
// Called from the event loop after every handled event.
func (t *Tracker) Update(state logic.State, held bool, blinkRemaining uint, counts Counts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Held = held
	t.snap.BlinkRemaining = blinkRemaining
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
