package logic

// Machine is the hold state machine for a single physical switch. It owns the
// current state, the held flag, and the blink sequencer. It performs no I/O:
// every handler returns the effects the caller must apply, in order.
//
// Handlers must be serialized by the caller; the machine assumes at most one
// handler is executing at a time.
type Machine struct {
	cfg   Config
	state State
	held  bool
	blink BlinkProgress
}

// NewMachine creates a machine in the idle state.
func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg, state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Held returns whether the switch is currently held, as tracked from
// press/release events.
func (m *Machine) Held() bool {
	return m.held
}

// Blink returns the blink sequencer progress. Meaningful only while the
// machine is in StateBlinkSequence.
func (m *Machine) Blink() BlinkProgress {
	return m.blink
}

// Boot applies the boot-time wake validation result. pressed is the direct
// read of the switch line before any events have been delivered.
//
// Not held means the wake was spurious (a bump or noise): the machine goes
// straight to shutdown without passing through any intermediate state. Held
// starts the wakeup hold validation, which behaves like a normal hold except
// that any release is terminal.
//
// If the boot-time read failed, do not call Boot at all; the machine simply
// stays idle (fail open rather than risk an unbootable device).
func (m *Machine) Boot(pressed bool) []Effect {
	if !pressed {
		m.held = false
		return m.EnterShutdown()
	}
	m.held = true
	m.state = StateWakeupHoldPending
	return []Effect{
		setIndicator(true),
		scheduleTimer(HoldTimer, m.cfg.HoldDuration),
	}
}

// Press handles a switch press notification. The held flag is updated
// unconditionally before the transition table is applied.
func (m *Machine) Press() []Effect {
	m.held = true

	switch m.state {
	case StateIdle:
		m.state = StateHoldPending
		return []Effect{
			setIndicator(true),
			scheduleTimer(HoldTimer, m.cfg.HoldDuration),
		}

	case StateLedCooldown:
		// Repeat press within the grace window: resume hold-tracking. The
		// indicator is already on and stays on.
		m.state = StateHoldPending
		return []Effect{
			cancelTimer(CooldownTimer),
			setIndicator(true),
			scheduleTimer(HoldTimer, m.cfg.HoldDuration),
		}
	}

	// Presses are ignored in all other states, including during the blink
	// sequence: once armed, only the blink-completion/release pair matters.
	return nil
}

// Release handles a switch release notification. The held flag is updated
// unconditionally before the transition table is applied.
func (m *Machine) Release() []Effect {
	m.held = false

	switch m.state {
	case StateHoldPending:
		m.state = StateLedCooldown
		return []Effect{
			cancelTimer(HoldTimer),
			scheduleTimer(CooldownTimer, m.cfg.CooldownDuration),
		}

	case StateWakeupHoldPending:
		// Any release during wakeup validation is terminal, whether or not
		// the hold timer has fired. Release arrives in normal context here,
		// so no deferral is needed.
		effects := []Effect{cancelTimer(HoldTimer)}
		return append(effects, m.EnterShutdown()...)

	case StateBlinkSequence:
		if m.blink.Remaining == 0 {
			// Blinks already finished; this release completes the sequence.
			// Defer the terminal action out of the input-delivery context.
			return []Effect{{Kind: EffectDeferPowerOff}}
		}
		// Blinks still running; the sequencer checks the held flag on its
		// own completion.
		return nil
	}

	return nil
}

// HandleTimer handles expiry of one of the machine's one-shot timers. A stale
// expiry (one that raced a cancellation) is harmless: every branch is guarded
// by the state that armed the timer.
func (m *Machine) HandleTimer(id TimerID) []Effect {
	switch id {
	case HoldTimer:
		return m.onHoldTimer()
	case CooldownTimer:
		return m.onCooldownTimer()
	case BlinkStepTimer:
		return m.onBlinkStep()
	}
	return nil
}

// onHoldTimer fires when the switch has been continuously held for the full
// hold duration. The timer is only still pending if no release cancelled it,
// so reaching here in a hold-pending state confirms the hold.
func (m *Machine) onHoldTimer() []Effect {
	if m.state != StateHoldPending && m.state != StateWakeupHoldPending {
		return nil
	}
	return m.startBlinkSequence()
}

func (m *Machine) onCooldownTimer() []Effect {
	if m.state != StateLedCooldown {
		return nil
	}
	m.state = StateIdle
	return []Effect{setIndicator(false)}
}

// startBlinkSequence enters the blink confirmation. The indicator was on for
// the whole hold, so the sequence starts in the off phase to produce a
// visible pattern.
func (m *Machine) startBlinkSequence() []Effect {
	m.state = StateBlinkSequence
	m.blink = BlinkProgress{Remaining: m.cfg.BlinkCount, LedOn: false}
	return []Effect{
		setIndicator(false),
		scheduleTimer(BlinkStepTimer, m.cfg.BlinkInterval/2),
	}
}

func (m *Machine) onBlinkStep() []Effect {
	if m.state != StateBlinkSequence {
		return nil
	}

	if m.blink.Remaining == 0 {
		// Sequence complete. If the switch was already released, shut down
		// now; otherwise stay put and let the eventual release finish it.
		// Both sides check the same (remaining, held) pair, so exactly one
		// of them observes the terminal condition.
		if !m.held {
			return m.EnterShutdown()
		}
		return []Effect{setIndicator(false)}
	}

	if !m.blink.LedOn {
		m.blink.LedOn = true
		return []Effect{
			setIndicator(true),
			scheduleTimer(BlinkStepTimer, m.cfg.BlinkInterval/2),
		}
	}

	// Second half of the cycle: one full blink done.
	m.blink.LedOn = false
	m.blink.Remaining--
	return []Effect{
		setIndicator(false),
		scheduleTimer(BlinkStepTimer, m.cfg.BlinkInterval/2),
	}
}

// EnterShutdown performs the terminal transition: the state becomes absorbing,
// the indicator is forced off, and the low-power primitive is invoked. Called
// directly from handler paths that run in normal context, and by the deferred
// queue consumer for the one path that does not.
func (m *Machine) EnterShutdown() []Effect {
	if m.state == StateShuttingDown {
		return nil
	}
	m.state = StateShuttingDown
	return []Effect{
		setIndicator(false),
		{Kind: EffectPowerOff},
	}
}
