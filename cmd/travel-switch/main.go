// Command travel-switch implements a hold-to-confirm power-down sequence for
// a battery-powered device with a single physical switch and an indicator
// LED. Holding the switch arms a shutdown, a blink sequence confirms it, and
// releasing the switch powers the device off. On wake, the switch line is
// re-validated so a bump does not boot the device for good.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/travel-switch/internal/gpio"
	"github.com/sweeney/travel-switch/internal/logic"
	"github.com/sweeney/travel-switch/internal/mqtt"
	"github.com/sweeney/travel-switch/internal/power"
	"github.com/sweeney/travel-switch/internal/status"
	"github.com/sweeney/travel-switch/internal/timers"
	"github.com/sweeney/travel-switch/internal/web"
)

// Shutdown reasons reported in the SHUTDOWN lifecycle event.
const (
	reasonHoldConfirmed = "hold-confirmed"
	reasonSpuriousWake  = "spurious-wake"
	reasonWakeReleased  = "wake-released"
)

func main() {
	chip := flag.String("chip", gpio.DefaultChip, "GPIO character device")
	switchPin := flag.Int("switch-pin", gpio.DefaultPinSwitch, "BCM pin number for the travel switch")
	ledPin := flag.Int("led-pin", gpio.DefaultPinLED, "BCM pin number for the indicator LED")
	activeLow := flag.Bool("active-low", true, "Switch is wired to ground (pressed = line low)")
	debounce := flag.Duration("debounce", 15*time.Millisecond, "Kernel debounce period for the switch line")
	hold := flag.Duration("hold", 2*time.Second, "Hold duration required to arm shutdown")
	cooldown := flag.Duration("cooldown", time.Second, "Grace period the LED stays on after a short press")
	blinkCount := flag.Uint("blink-count", 3, "Number of confirmation blink cycles")
	blinkInterval := flag.Duration("blink-interval", 400*time.Millisecond, "Duration of one full blink cycle")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	printState := flag.Bool("print-state", false, "Print current switch state and exit")

	flag.Parse()

	if *blinkCount < 1 {
		log.Fatalf("fatal: -blink-count must be at least 1")
	}

	cfg := daemonConfig{
		chip:      *chip,
		switchPin: *switchPin,
		ledPin:    *ledPin,
		activeLow: *activeLow,
		debounce:  *debounce,
		machine: logic.Config{
			HoldDuration:     *hold,
			CooldownDuration: *cooldown,
			BlinkCount:       *blinkCount,
			BlinkInterval:    *blinkInterval,
		},
		broker:     *broker,
		heartbeat:  *heartbeat,
		httpAddr:   *httpAddr,
		printState: *printState,
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

type daemonConfig struct {
	chip       string
	switchPin  int
	ledPin     int
	activeLow  bool
	debounce   time.Duration
	machine    logic.Config
	broker     string
	heartbeat  time.Duration
	httpAddr   string
	printState bool
}

func run(cfg daemonConfig) error {
	// Without the switch line the daemon cannot do anything at all.
	sw, err := gpio.NewRealSwitch(cfg.chip, cfg.switchPin, cfg.activeLow, cfg.debounce)
	if err != nil {
		return fmt.Errorf("init switch line: %w", err)
	}
	defer sw.Close()

	// Print state mode
	if cfg.printState {
		held, err := sw.Read()
		if err != nil {
			return fmt.Errorf("read switch: %w", err)
		}
		fmt.Printf("switch: %s\n", heldString(held))
		return nil
	}

	// A missing LED is not fatal: the device stays usable, just without
	// visual feedback.
	var indicator gpio.Indicator
	if ind, err := gpio.NewRealIndicator(cfg.chip, cfg.ledPin); err != nil {
		log.Printf("indicator unavailable, continuing without LED: %v", err)
		indicator = gpio.NopIndicator{}
	} else {
		indicator = ind
		defer ind.Close()
	}

	publisher := mqtt.NewResilientPublisher(cfg.broker, "travel-switch")
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:            cfg.chip,
		SwitchPin:       cfg.switchPin,
		LEDPin:          cfg.ledPin,
		HoldMs:          cfg.machine.HoldDuration.Milliseconds(),
		CooldownMs:      cfg.machine.CooldownDuration.Milliseconds(),
		BlinkCount:      cfg.machine.BlinkCount,
		BlinkIntervalMs: cfg.machine.BlinkInterval.Milliseconds(),
		HeartbeatMs:     cfg.heartbeat.Milliseconds(),
		Broker:          cfg.broker,
		HTTPAddr:        cfg.httpAddr,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	}

	sched := timers.NewScheduler()
	d := &daemon{
		machine:    logic.NewMachine(cfg.machine),
		indicator:  indicator,
		timers:     sched,
		deferred:   make(chan struct{}, 1),
		sleeper:    power.NewRealSleeper(),
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		now:        time.Now,
	}

	// Boot-time wake validation: a spurious wake goes straight back down,
	// before the HTTP surface even starts.
	if d.boot(sw) {
		return nil
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: state=%s hold=%v cooldown=%v blinks=%d interval=%v broker=%s",
		d.machine.State(), cfg.machine.HoldDuration, cfg.machine.CooldownDuration,
		cfg.machine.BlinkCount, cfg.machine.BlinkInterval, cfg.broker)

	var hbTick <-chan time.Time
	if cfg.heartbeat > 0 {
		ticker := time.NewTicker(cfg.heartbeat)
		defer ticker.Stop()
		hbTick = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return d.runLoop(sw.Events(), sched.C(), hbTick, sigCh)
}

// daemon wires the state machine to its collaborators. All methods run on
// the event loop goroutine; the machine is never touched from anywhere else.
type daemon struct {
	machine    *logic.Machine
	indicator  gpio.Indicator
	timers     timers.Service
	deferred   chan struct{}
	sleeper    power.Sleeper
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	now        func() time.Time

	counts status.Counts

	// shutdownReason is recorded when the terminal action is deferred, so
	// the SHUTDOWN event published later carries the original cause.
	shutdownReason string
}

// boot performs the boot-time wake validation. Returns true if the device
// powered off (spurious wake).
func (d *daemon) boot(sw gpio.Switch) bool {
	held, err := sw.Read()
	if err != nil {
		// Cannot determine wake validity; fail open to idle rather than
		// risk a device that can never stay booted.
		log.Printf("boot: switch read failed, proceeding as cold boot: %v", err)
		d.updateTracker()
		return false
	}

	if held {
		log.Printf("boot: switch held, validating wake")
	} else {
		log.Printf("boot: switch not held, spurious wake")
		d.counts.SpuriousWakes++
	}

	prev := d.machine.State()
	return d.finish(prev, "boot", reasonSpuriousWake, d.machine.Boot(held))
}

// runLoop is the single serialization point for the state machine: switch
// events, timer expiries, the deferred terminal action, and heartbeats are
// all handled here, one at a time, to completion.
func (d *daemon) runLoop(events <-chan gpio.Event, timerC <-chan timers.Expiry, hbTick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, stopping daemon", s)
			name := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp:  d.now(),
				Event:      "SHUTDOWN",
				Reason:     name,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", name),
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			}
			return nil

		case ev := <-events:
			if d.handleSwitch(ev) {
				return nil
			}

		case e := <-timerC:
			if !d.timers.Expired(e) {
				// Cancelled or re-armed after this expiry was delivered; a
				// stale hold expiry must not confirm a brand-new hold.
				continue
			}
			if d.handleTimer(e.ID) {
				return nil
			}

		case <-d.deferred:
			// Terminal action handed off from the input-delivery path.
			prev := d.machine.State()
			if d.finish(prev, "deferred-release", d.shutdownReason, d.machine.EnterShutdown()) {
				return nil
			}

		case <-hbTick:
			d.heartbeat()
		}
	}
}

func (d *daemon) handleSwitch(ev gpio.Event) bool {
	prev := d.machine.State()

	var effects []logic.Effect
	cause := "press"
	reason := reasonHoldConfirmed
	if ev.Pressed {
		d.counts.Presses++
		effects = d.machine.Press()
	} else {
		d.counts.Releases++
		cause = "release"
		if prev == logic.StateWakeupHoldPending {
			reason = reasonWakeReleased
		}
		effects = d.machine.Release()
	}

	return d.finish(prev, cause, reason, effects)
}

func (d *daemon) handleTimer(id logic.TimerID) bool {
	prev := d.machine.State()
	return d.finish(prev, string(id), reasonHoldConfirmed, d.machine.HandleTimer(id))
}

// finish publishes the transition (if any), refreshes counters and the
// status tracker, and applies the effects. Returns true if the device
// powered off.
func (d *daemon) finish(prev logic.State, cause, reason string, effects []logic.Effect) bool {
	cur := d.machine.State()
	if cur != prev {
		switch cur {
		case logic.StateBlinkSequence:
			d.counts.HoldsConfirmed++
		case logic.StateLedCooldown:
			d.counts.Cooldowns++
		}

		log.Printf("%s: %s -> %s", cause, prev, cur)
		event := mqtt.TransitionEvent{Timestamp: d.now(), From: prev, To: cur, Cause: cause}
		if err := d.publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
			// Don't crash on publish failure
		}
	}

	d.updateTracker()
	return d.apply(effects, reason)
}

// apply executes effects in order. Returns true when the power-off effect
// ran and the loop must exit.
func (d *daemon) apply(effects []logic.Effect, reason string) bool {
	for _, e := range effects {
		switch e.Kind {
		case logic.EffectSetIndicator:
			if err := d.indicator.Set(e.On); err != nil {
				// A stuck LED must not block state progression.
				log.Printf("indicator write failed: %v", err)
			}

		case logic.EffectScheduleTimer:
			d.timers.Schedule(e.Timer, e.Duration)

		case logic.EffectCancelTimer:
			d.timers.Cancel(e.Timer)

		case logic.EffectDeferPowerOff:
			d.shutdownReason = reason
			select {
			case d.deferred <- struct{}{}:
			default:
				// already queued; the terminal action runs once
			}

		case logic.EffectPowerOff:
			d.powerOff(reason)
			return true
		}
	}
	return false
}

func (d *daemon) powerOff(reason string) {
	log.Printf("entering low-power state (%s)", reason)
	event := mqtt.SystemEvent{
		Timestamp:  d.now(),
		Event:      "SHUTDOWN",
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(d.tracker.Snapshot(), "SHUTDOWN", reason),
	}
	if err := d.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	}
	if err := d.sleeper.Off(); err != nil {
		log.Printf("low-power entry failed: %v", err)
	}
}

func (d *daemon) updateTracker() {
	d.tracker.Update(d.machine.State(), d.machine.Held(), d.machine.Blink().Remaining, d.counts)
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

func (d *daemon) heartbeat() {
	d.updateTracker()
	snap := d.tracker.Snapshot()
	log.Printf("heartbeat: uptime=%v state=%s presses=%d releases=%d holds=%d",
		snap.Uptime().Truncate(time.Second), snap.State,
		snap.Counts.Presses, snap.Counts.Releases, snap.Counts.HoldsConfirmed)

	hbEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := d.publisher.PublishSystem(hbEvent); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func heldString(held bool) string {
	if held {
		return "HELD"
	}
	return "released"
}
