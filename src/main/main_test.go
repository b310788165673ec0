package main

import (
	"testing"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Maps slash flags to long flags",
			in:   []string{"screen-snip", "/ac"},
			out:  []string{"screen-snip", "--capture-clipboard"},
		},
		{
			name: "Maps all one-shot flags",
			in:   []string{"screen-snip", "/af", "/f", "/s", "/v"},
			out:  []string{"screen-snip", "--capture-file", "--open-folder", "--select", "--version"},
		},
		{
			name: "Maps autostart flags",
			in:   []string{"screen-snip", "/re", "/rd"},
			out:  []string{"screen-snip", "--register-autostart", "--unregister-autostart"},
		},
		{
			name: "Maps help",
			in:   []string{"screen-snip", "/?"},
			out:  []string{"screen-snip", "--help"},
		},
		{
			name: "Is case insensitive",
			in:   []string{"screen-snip", "/AC", "/Re"},
			out:  []string{"screen-snip", "--capture-clipboard", "--register-autostart"},
		},
		{
			name: "Leaves long flags unchanged",
			in:   []string{"screen-snip", "--version", "--other"},
			out:  []string{"screen-snip", "--version", "--other"},
		},
		{
			name: "Ignores the program name",
			in:   []string{"/ac"},
			out:  []string{"/ac"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--capture-file", "--version"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.captureFile {
		t.Fatal("Expected captureFile=true")
	}
	if !opts.showVersion {
		t.Fatal("Expected showVersion=true")
	}
	if opts.selectRegion {
		t.Fatal("Expected selectRegion=false")
	}
}
