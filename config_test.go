package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"mbtrace/pkg/decoder"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    decoder.Channel
		wantErr bool
	}{
		{"a", decoder.ChannelA, false},
		{"A", decoder.ChannelA, false},
		{"b", decoder.ChannelB, false},
		{"B", decoder.ChannelB, false},
		{"c", decoder.ChannelA, true},
		{"", decoder.ChannelA, true},
	}
	for _, tt := range tests {
		got, err := parseChannel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseChannel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseChannel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCharBits(t *testing.T) {
	tests := []struct {
		databits int
		stopbits int
		parity   string
		want     int
	}{
		{8, 1, "even", 11},
		{8, 1, "none", 10},
		{8, 2, "none", 11},
		{7, 1, "odd", 10},
		{5, 1, "none", 7},
	}
	for _, tt := range tests {
		if got := charBits(tt.databits, tt.stopbits, tt.parity); got != tt.want {
			t.Errorf("charBits(%d, %d, %q) = %d, want %d",
				tt.databits, tt.stopbits, tt.parity, got, tt.want)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := Config{Baud: 19200, DataBits: 8, Parity: "even", StopBits: 1, InboundChannel: "a"}
	if cfg != want {
		t.Errorf("defaults = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := "port: /dev/ttyUSB0\nbaud: 9600\nparity: none\ninbound_channel: b\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Port != "/dev/ttyUSB0" || cfg.Baud != 9600 || cfg.Parity != "none" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	// Fields absent from the file keep their defaults.
	if cfg.DataBits != 8 || cfg.StopBits != 1 {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
	if cfg.InboundChannel != "b" || cfg.LogLevel != "debug" {
		t.Errorf("channel/log settings not applied: %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("loadConfig accepted a missing file")
	}
}

func TestResolveFlagPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("baud: 9600\nparity: none\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var f serialFlags
	cmd := &cobra.Command{}
	f.register(cmd)
	for flag, value := range map[string]string{"config": path, "baud": "115200"} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := f.resolve(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// Explicit flag beats the file; the file beats the flag default.
	if cfg.Baud != 115200 {
		t.Errorf("baud = %d, want flag value 115200", cfg.Baud)
	}
	if cfg.Parity != "none" {
		t.Errorf("parity = %q, want file value %q", cfg.Parity, "none")
	}
	if cfg.DataBits != 8 {
		t.Errorf("data bits = %d, want default 8", cfg.DataBits)
	}
}

func TestResolveRejectsBadValues(t *testing.T) {
	tests := []struct {
		flag  string
		value string
	}{
		{"baud", "0"},
		{"databits", "9"},
	}
	for _, tt := range tests {
		var f serialFlags
		cmd := &cobra.Command{}
		f.register(cmd)
		if err := cmd.Flags().Set(tt.flag, tt.value); err != nil {
			t.Fatal(err)
		}
		if _, err := f.resolve(cmd); err == nil {
			t.Errorf("resolve accepted %s=%s", tt.flag, tt.value)
		}
	}
}
