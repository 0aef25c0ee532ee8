// Package logic contains the pure hold state machine for the travel switch.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Handlers return side effects as Effect values; the caller applies them.
package logic

import "time"

// State represents the machine's current position in the hold/blink/power-down
// protocol. Exactly one state is active at any instant.
type State string

const (
	// StateIdle is the resting state, indicator off.
	StateIdle State = "IDLE"
	// StateHoldPending means the switch is pressed and the hold timer is running.
	StateHoldPending State = "HOLD_PENDING"
	// StateLedCooldown means the switch was released before the hold completed;
	// the indicator stays on for a grace window before returning to idle.
	StateLedCooldown State = "LED_COOLDOWN"
	// StateBlinkSequence means the hold was confirmed and the indicator is
	// blinking a fixed number of cycles.
	StateBlinkSequence State = "BLINK_SEQUENCE"
	// StateWakeupHoldPending is the boot-time variant of HOLD_PENDING, entered
	// when the switch was already held at boot.
	StateWakeupHoldPending State = "WAKEUP_HOLD_PENDING"
	// StateShuttingDown is terminal. No event leaves it within a session.
	StateShuttingDown State = "SHUTTING_DOWN"
)

// TimerID names one of the machine's one-shot timers. The machine never owns
// more than one pending instance of each.
type TimerID string

const (
	HoldTimer      TimerID = "hold"
	CooldownTimer  TimerID = "cooldown"
	BlinkStepTimer TimerID = "blink-step"
)

// EffectKind discriminates Effect values.
type EffectKind int

const (
	// EffectSetIndicator sets the indicator line to Effect.On.
	EffectSetIndicator EffectKind = iota
	// EffectScheduleTimer arms the one-shot timer Effect.Timer for Effect.Duration.
	EffectScheduleTimer
	// EffectCancelTimer cancels any pending instance of Effect.Timer.
	EffectCancelTimer
	// EffectDeferPowerOff hands the terminal action to the single-slot deferred
	// queue instead of performing it in the current calling context.
	EffectDeferPowerOff
	// EffectPowerOff invokes the platform low-power entry primitive.
	EffectPowerOff
)

// Effect is a single side effect requested by a state transition.
type Effect struct {
	Kind     EffectKind
	On       bool          // EffectSetIndicator only
	Timer    TimerID       // EffectScheduleTimer, EffectCancelTimer
	Duration time.Duration // EffectScheduleTimer only
}

func setIndicator(on bool) Effect {
	return Effect{Kind: EffectSetIndicator, On: on}
}

func scheduleTimer(id TimerID, d time.Duration) Effect {
	return Effect{Kind: EffectScheduleTimer, Timer: id, Duration: d}
}

func cancelTimer(id TimerID) Effect {
	return Effect{Kind: EffectCancelTimer, Timer: id}
}

// Config holds the static tuning values supplied by the host environment.
type Config struct {
	// HoldDuration is the minimum continuous press time required to arm shutdown.
	HoldDuration time.Duration
	// CooldownDuration is the grace window after a short press during which the
	// indicator stays on and a repeat press resumes hold-tracking.
	CooldownDuration time.Duration
	// BlinkCount is the number of full on/off indicator cycles confirming an
	// armed shutdown. Must be >= 1.
	BlinkCount uint
	// BlinkInterval is the period of one full blink cycle; the step timer fires
	// every BlinkInterval/2.
	BlinkInterval time.Duration
}

// BlinkProgress tracks the blink sequencer. Valid only while the machine is
// in StateBlinkSequence; reset on entry.
type BlinkProgress struct {
	// Remaining is the number of full cycles still to run.
	Remaining uint
	// LedOn is the current phase of the indicator within the cycle.
	LedOn bool
}
