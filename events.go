package main

import (
	"time"

	"mbtrace/pkg/decoder"
)

// eventSynth converts chunks of raw bytes into decoder events. Byte
// sources like a serial port or a pcap packet only give one timestamp per
// chunk, so each byte is assigned its wire-time span from the configured
// character size, and the first chunk is preceded by a bit-edge event that
// seeds the decoder's bit duration.
type eventSynth struct {
	bitNs    int64
	charBits int64
	seeded   bool
}

func newEventSynth(baud, databits, stopbits int, parity string) *eventSynth {
	return &eventSynth{
		bitNs:    int64(time.Second) / int64(baud),
		charBits: int64(charBits(databits, stopbits, parity)),
	}
}

func (s *eventSynth) events(ts time.Time, ch decoder.Channel, data []byte) []decoder.Event {
	start := ts.UnixNano()
	evs := make([]decoder.Event, 0, len(data)+1)
	if !s.seeded {
		s.seeded = true
		evs = append(evs, decoder.Event{
			Kind:    decoder.EventBit,
			Channel: ch,
			Start:   start,
			End:     start + s.bitNs,
		})
	}
	span := s.bitNs * s.charBits
	for i, b := range data {
		bs := start + int64(i)*span
		evs = append(evs, decoder.Event{
			Kind:    decoder.EventData,
			Channel: ch,
			Start:   bs,
			End:     bs + span,
			Value:   b,
		})
	}
	return evs
}
