package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.bug.st/serial"
	"gopkg.in/yaml.v3"

	"mbtrace/pkg/decoder"
)

// Config holds the serial line parameters and the channel selection.
// Values come from an optional YAML file; command-line flags override it.
type Config struct {
	Port     string `yaml:"port,omitempty"` // serial port for live capture
	Baud     int    `yaml:"baud"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`    // none, odd, even, mark, space
	StopBits int    `yaml:"stop_bits"` // 1 or 2
	// InboundChannel selects which physical channel carries server →
	// client traffic: "a" or "b". Channel B always carries client →
	// server traffic, so "b" decodes both interpretations from one wire.
	InboundChannel string `yaml:"inbound_channel"`
	LogLevel       string `yaml:"log_level,omitempty"`
}

func defaultConfig() Config {
	return Config{
		Baud:           19200,
		DataBits:       8,
		Parity:         "even",
		StopBits:       1,
		InboundChannel: "a",
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// serialFlags is the flag set shared by the capture and decode commands.
type serialFlags struct {
	configPath string
	baud       int
	databits   int
	parity     string
	stopbits   int
	inbound    string
	logLevel   string
}

func (f *serialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML config file")
	cmd.Flags().IntVar(&f.baud, "baud", 19200, "baud rate")
	cmd.Flags().IntVar(&f.databits, "databits", 8, "data bits (5-8)")
	cmd.Flags().StringVar(&f.parity, "parity", "even", "parity: none, odd, even, mark, space")
	cmd.Flags().IntVar(&f.stopbits, "stopbits", 1, "stop bits: 1 or 2")
	cmd.Flags().StringVar(&f.inbound, "inbound", "a", "channel carrying server->client traffic: a or b")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error (empty = silent)")
}

// resolve merges file config and flags, flags winning when set explicitly.
func (f *serialFlags) resolve(cmd *cobra.Command) (Config, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("baud") {
		cfg.Baud = f.baud
	}
	if flags.Changed("databits") {
		cfg.DataBits = f.databits
	}
	if flags.Changed("parity") {
		cfg.Parity = f.parity
	}
	if flags.Changed("stopbits") {
		cfg.StopBits = f.stopbits
	}
	if flags.Changed("inbound") {
		cfg.InboundChannel = f.inbound
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if cfg.Baud <= 0 {
		return cfg, fmt.Errorf("invalid baud rate %d", cfg.Baud)
	}
	if cfg.DataBits < 5 || cfg.DataBits > 8 {
		return cfg, fmt.Errorf("invalid data bits %d: use 5-8", cfg.DataBits)
	}
	return cfg, nil
}

func parseChannel(s string) (decoder.Channel, error) {
	switch strings.ToLower(s) {
	case "a":
		return decoder.ChannelA, nil
	case "b":
		return decoder.ChannelB, nil
	default:
		return decoder.ChannelA, fmt.Errorf("invalid channel %q: use a or b", s)
	}
}

func parseParity(s string) (serial.Parity, error) {
	switch s {
	case "none":
		return serial.NoParity, nil
	case "odd":
		return serial.OddParity, nil
	case "even":
		return serial.EvenParity, nil
	case "mark":
		return serial.MarkParity, nil
	case "space":
		return serial.SpaceParity, nil
	default:
		return serial.NoParity, fmt.Errorf("invalid parity %q: use none, odd, even, mark, or space", s)
	}
}

func parseStopBits(n int) (serial.StopBits, error) {
	switch n {
	case 1:
		return serial.OneStopBit, nil
	case 2:
		return serial.TwoStopBits, nil
	default:
		return serial.OneStopBit, fmt.Errorf("invalid stop bits %d: use 1 or 2", n)
	}
}

// charBits returns the total number of bits per character on the wire
// (start + data + optional parity + stop).
func charBits(databits, stopbitsN int, parity string) int {
	bits := 1 + databits // start + data
	if parity != "none" {
		bits++
	}
	bits += stopbitsN
	return bits
}
