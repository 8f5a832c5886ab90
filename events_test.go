package main

import (
	"bytes"
	"testing"
	"time"

	"mbtrace/pkg/decoder"
)

func TestEventSynth(t *testing.T) {
	// 19200 8E1: 52083ns per bit, 11 bits per character.
	s := newEventSynth(19200, 8, 1, "even")
	ts := time.Unix(100, 0)
	evs := s.events(ts, decoder.ChannelB, []byte{0x11, 0x05})

	if len(evs) != 3 {
		t.Fatalf("got %d events, want bit edge + 2 data bytes", len(evs))
	}
	bit := evs[0]
	if bit.Kind != decoder.EventBit {
		t.Fatalf("first event kind = %v, want bit edge", bit.Kind)
	}
	if got := bit.End - bit.Start; got != int64(time.Second)/19200 {
		t.Errorf("bit duration = %dns, want %d", got, int64(time.Second)/19200)
	}

	span := 11 * (int64(time.Second) / 19200)
	for i, ev := range evs[1:] {
		if ev.Kind != decoder.EventData || ev.Channel != decoder.ChannelB {
			t.Errorf("event %d = %+v, want data byte on channel B", i, ev)
		}
		wantStart := ts.UnixNano() + int64(i)*span
		if ev.Start != wantStart || ev.End != wantStart+span {
			t.Errorf("event %d span = [%d, %d], want [%d, %d]",
				i, ev.Start, ev.End, wantStart, wantStart+span)
		}
	}
	if evs[1].Value != 0x11 || evs[2].Value != 0x05 {
		t.Errorf("data values = %02X %02X", evs[1].Value, evs[2].Value)
	}

	// The seed bit edge is emitted only once.
	more := s.events(ts.Add(time.Second), decoder.ChannelB, []byte{0x00})
	if len(more) != 1 || more[0].Kind != decoder.EventData {
		t.Errorf("second chunk = %+v, want a single data event", more)
	}
}

func TestRendererOutput(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf)
	r.Put(decoder.Annotation{Start: 1_000_000_000, End: 1_500_000_000, Class: decoder.ClassRequestServerID, Text: "Server ID: 17"})
	r.Put(decoder.Annotation{Start: 1_500_000_000, End: 2_000_000_000, Class: decoder.ClassRequestError, Text: "Message too long"})

	want := "    0.000000     0.500000  req/server-id    Server ID: 17\n" +
		"    0.500000     1.000000  req/error        Message too long\n"
	if buf.String() != want {
		t.Errorf("output:\n%q\nwant:\n%q", buf.String(), want)
	}
}
