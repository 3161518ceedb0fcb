package viera

import (
	"time"

	"github.com/google/uuid"
)

// MQTT message types published by the Viera bridge.

// Operation kinds recorded in results, history, and telemetry.
const (
	OpSendKey       = "send_key"
	OpSetVolume     = "set_volume"
	OpSetMute       = "set_mute"
	OpLaunchApp     = "launch_app"
	OpGetApps       = "get_apps"
	OpGetDeviceInfo = "get_device_info"
	OpGetVolume     = "get_volume"
)

// Outcome values for results.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeDropped = "dropped"
)

// switchedOffReason is the reason string published when the TV cannot be
// reached. Home automation consumers key off this exact text.
const switchedOffReason = "TV switched off"

// StatusMessage is published to the status topic.
// Topic: {prefix}/status
// QoS: bridge QoS, Retained: Yes
//
// The switched-off form carries only power and reason, so the retained
// payload is stable across probes and deduplicates cleanly.
type StatusMessage struct {
	// Power is "on" or "off".
	Power string `json:"power"`

	// Volume is the current volume 0-100 (only when on).
	Volume *int `json:"volume,omitempty"`

	// Mute is the current mute state (only when on).
	Mute *bool `json:"mute,omitempty"`

	// Reason explains an "off" status.
	Reason string `json:"reason,omitempty"`

	// Timestamp is when the status was observed (UTC, omitted for the
	// fixed switched-off payload).
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// NewStatusOn builds an "on" status from a successful probe.
func NewStatusOn(volume int, mute bool) StatusMessage {
	return StatusMessage{
		Power:     "on",
		Volume:    &volume,
		Mute:      &mute,
		Timestamp: time.Now().UTC(),
	}
}

// NewStatusOff builds the fixed switched-off status.
func NewStatusOff() StatusMessage {
	return StatusMessage{
		Power:  "off",
		Reason: switchedOffReason,
	}
}

// ResultMessage reports the outcome of one handled command.
// Topic: {prefix}/result
// QoS: bridge QoS, Retained: No
type ResultMessage struct {
	// ID uniquely identifies this command execution.
	ID string `json:"id"`

	// Timestamp is when the result was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Operation is the resolved operation kind (send_key, set_volume, ...).
	Operation string `json:"operation"`

	// Input is the command text extracted from the payload.
	Input string `json:"input,omitempty"`

	// Outcome is ok, error, or dropped.
	Outcome string `json:"outcome"`

	// Error holds details when outcome is not ok.
	Error string `json:"error,omitempty"`
}

// NewResult creates a result message with a fresh command ID.
func NewResult(operation, input, outcome string, err error) ResultMessage {
	msg := ResultMessage{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Operation: operation,
		Input:     input,
		Outcome:   outcome,
	}
	if err != nil {
		msg.Error = err.Error()
	}
	return msg
}
