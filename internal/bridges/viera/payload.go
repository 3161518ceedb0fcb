package viera

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// command is the parsed form of an incoming MQTT payload.
//
// A text command (op == "") carries the command text in input and is
// resolved at dispatch time: special query words first, then the key
// catalogue, then a raw key code. Structured commands carry their
// parameters directly.
type command struct {
	op     string // Op* constant for structured commands, "" for text
	input  string // command text, or the raw payload for structured commands
	volume int
	mute   bool
	appID  string
}

// parsePayload interprets an MQTT payload as a command.
//
// The payload contract:
//   - Non-UTF-8 payloads are dropped (ErrUndecodablePayload).
//   - A JSON object uses its "key" field, falling back to "action".
//   - A JSON object without either may instead carry one structured
//     command: {"set_volume": n}, {"mute": bool}, or {"launch_app": id}.
//   - Any other JSON object falls back to the raw payload text.
//   - A JSON string or number is used as its value.
//   - Anything that is not valid JSON is used as raw text.
//   - An empty payload is ignored (ErrEmptyCommand).
func parsePayload(raw []byte) (command, error) {
	if !utf8.Valid(raw) {
		return command{}, ErrUndecodablePayload
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return command{}, ErrEmptyCommand
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		// Not JSON: raw key code or key name.
		return command{input: text}, nil
	}

	switch v := decoded.(type) {
	case map[string]any:
		return parseObject(v, text)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return command{}, ErrEmptyCommand
		}
		return command{input: s}, nil
	case float64:
		return command{input: formatNumber(v)}, nil
	default:
		// Arrays, booleans, null: no key semantics, fall back to raw text.
		return command{input: text}, nil
	}
}

// parseObject handles JSON object payloads.
func parseObject(obj map[string]any, raw string) (command, error) {
	for _, field := range []string{"key", "action"} {
		if s, ok := obj[field].(string); ok && s != "" {
			return command{input: strings.TrimSpace(s)}, nil
		}
	}

	if v, ok := obj["set_volume"]; ok {
		n, ok := v.(float64)
		if !ok || n != math.Trunc(n) {
			return command{}, fmt.Errorf("%w: set_volume must be an integer", ErrInvalidParameters)
		}
		return command{op: OpSetVolume, input: raw, volume: int(n)}, nil
	}

	if v, ok := obj["mute"]; ok {
		m, ok := v.(bool)
		if !ok {
			return command{}, fmt.Errorf("%w: mute must be a boolean", ErrInvalidParameters)
		}
		return command{op: OpSetMute, input: raw, mute: m}, nil
	}

	if v, ok := obj["launch_app"]; ok {
		id, ok := v.(string)
		if !ok || id == "" {
			return command{}, fmt.Errorf("%w: launch_app must be a product id", ErrInvalidParameters)
		}
		return command{op: OpLaunchApp, input: raw, appID: id}, nil
	}

	// Unknown object shape: treat the whole payload as a raw key code.
	return command{input: raw}, nil
}

// formatNumber renders a JSON number the way it was most likely written.
func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
