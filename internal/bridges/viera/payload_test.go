package viera

import (
	"errors"
	"testing"
)

func TestParsePayloadText(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"json with key", `{"key": "VOL_UP"}`, "VOL_UP"},
		{"json with action", `{"action": "POWER_OFF"}`, "POWER_OFF"},
		{"json without key or action", `{"other": "value"}`, `{"other": "value"}`},
		{"non-json payload", "RAW_KEY_CODE", "RAW_KEY_CODE"},
		{"invalid json payload", "{invalid: json}", "{invalid: json}"},
		{"json string", `"MUTE"`, "MUTE"},
		{"json number", "5", "5"},
		{"json array", `["array", "payload"]`, `["array", "payload"]`},
		{"surrounding whitespace", "  VOLUME_UP\n", "VOLUME_UP"},
		{"key wins over action", `{"key": "A", "action": "B"}`, "A"},
		{"non-string key falls through to action", `{"key": 5, "action": "B"}`, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := parsePayload([]byte(tt.payload))
			if err != nil {
				t.Fatalf("parsePayload(%q) error = %v", tt.payload, err)
			}
			if cmd.op != "" {
				t.Errorf("parsePayload(%q) op = %q, want text command", tt.payload, cmd.op)
			}
			if cmd.input != tt.want {
				t.Errorf("parsePayload(%q) input = %q, want %q", tt.payload, cmd.input, tt.want)
			}
		})
	}
}

func TestParsePayloadStructured(t *testing.T) {
	cmd, err := parsePayload([]byte(`{"set_volume": 25}`))
	if err != nil {
		t.Fatalf("parsePayload() error = %v", err)
	}
	if cmd.op != OpSetVolume || cmd.volume != 25 {
		t.Errorf("parsePayload() = %+v, want set_volume 25", cmd)
	}

	cmd, err = parsePayload([]byte(`{"mute": true}`))
	if err != nil {
		t.Fatalf("parsePayload() error = %v", err)
	}
	if cmd.op != OpSetMute || !cmd.mute {
		t.Errorf("parsePayload() = %+v, want mute true", cmd)
	}

	cmd, err = parsePayload([]byte(`{"launch_app": "0010000200000001"}`))
	if err != nil {
		t.Fatalf("parsePayload() error = %v", err)
	}
	if cmd.op != OpLaunchApp || cmd.appID != "0010000200000001" {
		t.Errorf("parsePayload() = %+v, want launch_app", cmd)
	}
}

func TestParsePayloadStructuredInvalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"volume not a number", `{"set_volume": "loud"}`},
		{"volume not an integer", `{"set_volume": 25.5}`},
		{"mute not a boolean", `{"mute": "yes"}`},
		{"launch_app not a string", `{"launch_app": 5}`},
		{"launch_app empty", `{"launch_app": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePayload([]byte(tt.payload))
			if !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("parsePayload(%q) error = %v, want ErrInvalidParameters", tt.payload, err)
			}
		})
	}
}

func TestParsePayloadEmpty(t *testing.T) {
	for _, payload := range []string{"", "   ", "\n", `""`} {
		if _, err := parsePayload([]byte(payload)); !errors.Is(err, ErrEmptyCommand) {
			t.Errorf("parsePayload(%q) error = %v, want ErrEmptyCommand", payload, err)
		}
	}
}

func TestParsePayloadInvalidUTF8(t *testing.T) {
	_, err := parsePayload([]byte{0x80, 'a', 'b', 'c'})
	if !errors.Is(err, ErrUndecodablePayload) {
		t.Errorf("parsePayload() error = %v, want ErrUndecodablePayload", err)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5"},
		{-3, "-3"},
		{0, "0"},
		{2.5, "2.5"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
