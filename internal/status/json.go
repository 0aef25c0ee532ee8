package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string     `json:"event,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	State          string     `json:"state"`
	Held           bool       `json:"held"`
	BlinkRemaining uint       `json:"blink_remaining"`
	UptimeSeconds  int64      `json:"uptime_seconds"`
	StartTime      string     `json:"start_time"`
	Timestamp      string     `json:"timestamp"`
	MQTT           MQTTStatus `json:"mqtt"`
	Counts         CountsJSON `json:"event_counts"`
	Config         ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Presses        int `json:"presses"`
	Releases       int `json:"releases"`
	HoldsConfirmed int `json:"holds_confirmed"`
	Cooldowns      int `json:"cooldowns"`
	SpuriousWakes  int `json:"spurious_wakes"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip            string `json:"chip"`
	SwitchPin       int    `json:"switch_pin"`
	LEDPin          int    `json:"led_pin"`
	HoldMs          int64  `json:"hold_ms"`
	CooldownMs      int64  `json:"cooldown_ms"`
	BlinkCount      uint   `json:"blink_count"`
	BlinkIntervalMs int64  `json:"blink_interval_ms"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	Broker          string `json:"broker"`
	HTTPAddr        string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	return StatusInner{
		State:          state,
		Held:           snap.Held,
		BlinkRemaining: snap.BlinkRemaining,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Presses:        snap.Counts.Presses,
			Releases:       snap.Counts.Releases,
			HoldsConfirmed: snap.Counts.HoldsConfirmed,
			Cooldowns:      snap.Counts.Cooldowns,
			SpuriousWakes:  snap.Counts.SpuriousWakes,
		},
		Config: ConfigJSON{
			Chip:            snap.Config.Chip,
			SwitchPin:       snap.Config.SwitchPin,
			LEDPin:          snap.Config.LEDPin,
			HoldMs:          snap.Config.HoldMs,
			CooldownMs:      snap.Config.CooldownMs,
			BlinkCount:      snap.Config.BlinkCount,
			BlinkIntervalMs: snap.Config.BlinkIntervalMs,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
