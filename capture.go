package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.bug.st/serial"
	"go.uber.org/zap"

	"mbtrace/pkg/decoder"
	"mbtrace/pkg/logging"
	"mbtrace/pkg/pcap"
)

var captureFlags struct {
	serialFlags
	record    string
	pipeMode  bool
	silenceUs float64
	bigEndian bool
}

var captureCmd = &cobra.Command{
	Use:   "capture <serial-port>",
	Short: "Capture and decode Modbus RTU traffic from a serial port",
	Long: `Capture opens a serial port, decodes the observed Modbus RTU traffic as
it arrives, and prints field annotations until interrupted.

A single port sees one physical channel, which feeds the client->server
interpretation (channel B). Pass --inbound b to additionally decode every
byte as server->client traffic when both directions share the wire.

With --record the raw byte stream is also written as an RTAC Serial pcap
that 'mbtrace decode' or Wireshark can replay later; --pipe turns the
record target into a named pipe for live streaming.`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

func init() {
	captureFlags.serialFlags.register(captureCmd)
	captureCmd.Flags().StringVar(&captureFlags.record, "record", "", "also write the capture to this pcap file")
	captureCmd.Flags().BoolVar(&captureFlags.pipeMode, "pipe", false, "make the record target a named pipe (FIFO) for live streaming (Unix only)")
	captureCmd.Flags().Float64Var(&captureFlags.silenceUs, "silence", 0, "record flush threshold in microseconds (0 = auto: 3.5 character times)")
	captureCmd.Flags().BoolVar(&captureFlags.bigEndian, "bigendian", false, "write the recorded pcap in big-endian byte order")
	rootCmd.AddCommand(captureCmd)
}

type readResult struct {
	data []byte
	ts   time.Time
}

// recordSilence returns 3.5 character times for the given serial settings,
// the gap after which a recorded packet is flushed.
func recordSilence(baud, databits, stopbitsN int, parity string) time.Duration {
	bits := charBits(databits, stopbitsN, parity)
	charTime := float64(bits) / float64(baud)
	return time.Duration(3.5 * charTime * float64(time.Second))
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := captureFlags.resolve(cmd)
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
	parity, err := parseParity(cfg.Parity)
	if err != nil {
		return err
	}
	stopbits, err := parseStopBits(cfg.StopBits)
	if err != nil {
		return err
	}

	portPath := args[0]
	port, err := serial.Open(portPath, &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: cfg.DataBits,
		Parity:   parity,
		StopBits: stopbits,
	})
	if err != nil {
		return fmt.Errorf("open serial port: %w", err)
	}
	defer func() { _ = port.Close() }()

	var pw *pcap.Writer
	if captureFlags.record != "" {
		var f *os.File
		if captureFlags.pipeMode {
			logger.Info("waiting for pipe reader", zap.String("path", captureFlags.record))
			f, err = createPipe(captureFlags.record)
			if err != nil {
				return fmt.Errorf("create pipe: %w", err)
			}
			defer removePipe(captureFlags.record)
		} else {
			f, err = os.Create(captureFlags.record)
			if err != nil {
				return fmt.Errorf("create record file: %w", err)
			}
		}
		defer func() { _ = f.Close() }()

		var order binary.ByteOrder = binary.LittleEndian
		if captureFlags.bigEndian {
			order = binary.BigEndian
		}
		pw, err = pcap.NewWriter(f, order, pcap.DLTRTACSer)
		if err != nil {
			return fmt.Errorf("write pcap header: %w", err)
		}
	}

	silenceThreshold := recordSilence(cfg.Baud, cfg.DataBits, cfg.StopBits, cfg.Parity)
	if captureFlags.silenceUs > 0 {
		silenceThreshold = time.Duration(captureFlags.silenceUs * float64(time.Microsecond))
	}

	dec := decoder.New(inbound, newRenderer(os.Stdout), logger)
	synth := newEventSynth(cfg.Baud, cfg.DataBits, cfg.StopBits, cfg.Parity)

	dataChan := make(chan readResult, 64)
	errChan := make(chan error, 1)

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := port.Read(buf)
			if err != nil {
				errChan <- err
				return
			}
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				dataChan <- readResult{data: chunk, ts: time.Now()}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var packetBuf []byte
	var firstByteTime time.Time
	silenceTimer := time.NewTimer(0)
	if !silenceTimer.Stop() {
		<-silenceTimer.C
	}

	flush := func() {
		if pw == nil || len(packetBuf) == 0 {
			return
		}
		payload := append(pcap.RTACHeader(firstByteTime, pcap.EventTxStart), packetBuf...)
		if err := pw.WritePacket(firstByteTime, payload); err != nil {
			if errors.Is(err, syscall.EPIPE) {
				logger.Info("pipe closed by reader, recording stopped")
				pw = nil
			} else {
				logger.Warn("write packet", zap.Error(err))
			}
		}
		packetBuf = nil
	}

	finish := func() {
		flush()
		dec.Flush()
		stats := dec.Stats()
		logger.Info("capture finished",
			zap.Int("requests", stats.Requests),
			zap.Int("responses", stats.Responses),
			zap.Int("frames_with_errors", stats.Errors))
	}

	logger.Info("capturing",
		zap.String("port", portPath),
		zap.Int("baud", cfg.Baud),
		zap.Duration("record_silence", silenceThreshold),
		zap.Bool("dual_interpretation", dec.DualMode()))

	for {
		select {
		case chunk := <-dataChan:
			for _, ev := range synth.events(chunk.ts, decoder.ChannelB, chunk.data) {
				dec.Feed(ev)
			}
			if pw != nil {
				if len(packetBuf) == 0 {
					firstByteTime = chunk.ts
				}
				packetBuf = append(packetBuf, chunk.data...)
				silenceTimer.Reset(silenceThreshold)
			}

		case <-silenceTimer.C:
			flush()

		case <-sigChan:
			finish()
			return nil

		case err := <-errChan:
			finish()
			return fmt.Errorf("serial read: %w", err)
		}
	}
}
