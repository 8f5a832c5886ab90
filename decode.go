package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mbtrace/pkg/decoder"
	"mbtrace/pkg/logging"
	"mbtrace/pkg/pcap"
)

var decodeFlags serialFlags

var decodeCmd = &cobra.Command{
	Use:   "decode <capture.pcap>",
	Short: "Decode a pcap capture of Modbus RTU traffic",
	Long: `Decode replays a pcap capture through the Modbus RTU decoder and
prints the resulting field annotations.

RTAC Serial captures (link type 250) carry a direction marker per packet,
so TX packets feed channel B and RX packets feed channel A. Raw captures
(link type 147) are treated as a single channel B byte stream. Byte timing
within a packet is reconstructed from the configured serial parameters.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeFlags.register(decodeCmd)
	rootCmd.AddCommand(decodeCmd)
}

// rtacChannel maps an RTAC Serial event type to the decoder channel its
// payload belongs to. Status-change and unknown events carry no bytes for
// the decoder.
func rtacChannel(eventType byte) (decoder.Channel, bool) {
	switch eventType {
	case pcap.EventTxStart:
		return decoder.ChannelB, true
	case pcap.EventRxStart:
		return decoder.ChannelA, true
	default:
		return decoder.ChannelA, false
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg, err := decodeFlags.resolve(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	inbound, err := parseChannel(cfg.InboundChannel)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer func() { _ = f.Close() }()

	pr, err := pcap.NewReader(bufio.NewReader(f))
	if err != nil {
		return err
	}
	if lt := pr.LinkType(); lt != pcap.DLTRTACSer && lt != pcap.DLTUser0 {
		return fmt.Errorf("unsupported link type %d: expected %d (RTAC Serial) or %d (user0)",
			lt, pcap.DLTRTACSer, pcap.DLTUser0)
	}

	dec := decoder.New(inbound, newRenderer(os.Stdout), logger)
	synth := newEventSynth(cfg.Baud, cfg.DataBits, cfg.StopBits, cfg.Parity)

	for {
		ts, pkt, err := pr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}
		ch := decoder.ChannelB
		data := pkt
		if pr.LinkType() == pcap.DLTRTACSer {
			rts, eventType, payload, err := pcap.ParseRTAC(pkt)
			if err != nil {
				logger.Warn("skipping malformed packet", zap.Error(err))
				continue
			}
			mapped, ok := rtacChannel(eventType)
			if !ok {
				continue
			}
			ch, ts, data = mapped, rts, payload
		}
		for _, ev := range synth.events(ts, ch, data) {
			dec.Feed(ev)
		}
	}
	dec.Flush()

	stats := dec.Stats()
	logger.Info("decode complete",
		zap.Int("requests", stats.Requests),
		zap.Int("responses", stats.Responses),
		zap.Int("frames_with_errors", stats.Errors))
	return nil
}
