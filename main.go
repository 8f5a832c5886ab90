// Mbtrace is a passive Modbus RTU line analyzer. It decodes a timestamped
// byte stream observed on a serial tap, live or replayed from a pcap
// capture, into positioned field annotations, flagging framing errors,
// checksum failures and malformed fields. It never transmits on the bus.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "mbtrace",
	Short: "Passive Modbus RTU line analyzer",
	Long: `Mbtrace decodes Modbus RTU traffic observed on a serial line into
human-readable field annotations: server IDs, function names, addresses,
register values, checksums, and the errors in between.

Message boundaries are inferred from inter-byte silence, so decoding works
on a raw byte stream with no framing help. Traffic can be decoded live from
a serial port ('capture') or replayed from a pcap file ('decode').

Both directions of a two-channel tap are decoded independently. On a
single-channel tap the decoder cannot know whether a byte belongs to a
request or a response, so with --inbound b it produces both
interpretations side by side.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
