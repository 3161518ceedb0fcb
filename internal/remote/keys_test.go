package remote

import (
	"sort"
	"testing"
)

func TestLookupKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Key
		found bool
	}{
		{
			name:  "by name",
			input: "volume_up",
			want:  KeyVolumeUp,
			found: true,
		},
		{
			name:  "by name case insensitive",
			input: "VoLuMe_Up",
			want:  KeyVolumeUp,
			found: true,
		},
		{
			name:  "by name upper case",
			input: "MUTE",
			want:  KeyMute,
			found: true,
		},
		{
			name:  "by wire code",
			input: "NRC_VOLDOWN-ONOFF",
			want:  KeyVolumeDown,
			found: true,
		},
		{
			name:  "exit aliases cancel",
			input: "exit",
			want:  KeyCancel,
			found: true,
		},
		{
			name:  "digit key",
			input: "num_5",
			want:  KeyNum5,
			found: true,
		},
		{
			name:  "unknown string",
			input: "NON_EXISTENT_KEY",
			found: false,
		},
		{
			name:  "empty string",
			input: "",
			found: false,
		},
		{
			name:  "wire code is not case folded",
			input: "nrc_volup-onoff",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := LookupKey(tt.input)
			if found != tt.found {
				t.Fatalf("LookupKey(%q) found = %v, want %v", tt.input, found, tt.found)
			}
			if found && got != tt.want {
				t.Errorf("LookupKey(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKeyName(t *testing.T) {
	if got := KeyName(KeyVolumeUp); got != "VOLUME_UP" {
		t.Errorf("KeyName(KeyVolumeUp) = %q, want VOLUME_UP", got)
	}

	// Unknown codes fall back to the raw code.
	if got := KeyName(Key("NRC_CUSTOM-ONOFF")); got != "NRC_CUSTOM-ONOFF" {
		t.Errorf("KeyName(custom) = %q, want raw code", got)
	}

	// The shared CANCEL/EXIT code resolves to CANCEL.
	if got := KeyName(KeyCancel); got != "CANCEL" {
		t.Errorf("KeyName(KeyCancel) = %q, want CANCEL", got)
	}
}

func TestKeyCatalogue(t *testing.T) {
	entries := KeyCatalogue()

	if len(entries) != len(keysByName) {
		t.Fatalf("KeyCatalogue() returned %d entries, want %d", len(entries), len(keysByName))
	}

	if !sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name }) {
		t.Error("KeyCatalogue() entries not sorted by name")
	}

	seen := make(map[string]bool)
	foundVolumeUp := false
	for _, e := range entries {
		if seen[e.Name] {
			t.Errorf("duplicate catalogue entry %q", e.Name)
		}
		seen[e.Name] = true

		if e.Name == "VOLUME_UP" {
			foundVolumeUp = true
			if e.Code != string(KeyVolumeUp) {
				t.Errorf("VOLUME_UP code = %q, want %q", e.Code, KeyVolumeUp)
			}
		}
	}
	if !foundVolumeUp {
		t.Error("KeyCatalogue() missing VOLUME_UP")
	}
}
