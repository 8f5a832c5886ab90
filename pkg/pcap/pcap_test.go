package pcap

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"
)

func TestGlobalHeader(t *testing.T) {
	tests := []struct {
		name     string
		order    binary.ByteOrder
		linkType uint32
	}{
		{"little endian user0", binary.LittleEndian, DLTUser0},
		{"little endian rtac", binary.LittleEndian, DLTRTACSer},
		{"big endian user0", binary.BigEndian, DLTUser0},
		{"big endian rtac", binary.BigEndian, DLTRTACSer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if _, err := NewWriter(&buf, tt.order, tt.linkType); err != nil {
				t.Fatalf("NewWriter: %v", err)
			}
			hdr := buf.Bytes()
			if len(hdr) != 24 {
				t.Fatalf("global header is %d bytes, want 24", len(hdr))
			}
			if got := tt.order.Uint32(hdr[0:4]); got != 0xa1b2c3d4 {
				t.Errorf("magic = 0x%08x", got)
			}
			if got := tt.order.Uint16(hdr[4:6]); got != 2 {
				t.Errorf("version major = %d, want 2", got)
			}
			if got := tt.order.Uint16(hdr[6:8]); got != 4 {
				t.Errorf("version minor = %d, want 4", got)
			}
			if got := tt.order.Uint32(hdr[16:20]); got != 65535 {
				t.Errorf("snap length = %d, want 65535", got)
			}
			if got := tt.order.Uint32(hdr[20:24]); got != tt.linkType {
				t.Errorf("link type = %d, want %d", got, tt.linkType)
			}
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	orders := []struct {
		name  string
		order binary.ByteOrder
	}{
		{"little endian", binary.LittleEndian},
		{"big endian", binary.BigEndian},
	}
	for _, tt := range orders {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w, err := NewWriter(&buf, tt.order, DLTRTACSer)
			if err != nil {
				t.Fatalf("NewWriter: %v", err)
			}
			packets := []struct {
				ts   time.Time
				data []byte
			}{
				{time.Unix(1700000000, 123456000).UTC(), []byte{0x11, 0x05, 0x00, 0xAC}},
				{time.Unix(1700000001, 0).UTC(), []byte{0xFF}},
			}
			for _, p := range packets {
				if err := w.WritePacket(p.ts, p.data); err != nil {
					t.Fatalf("WritePacket: %v", err)
				}
			}

			r, err := NewReader(&buf)
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			if r.LinkType() != DLTRTACSer {
				t.Errorf("LinkType() = %d, want %d", r.LinkType(), DLTRTACSer)
			}
			for i, p := range packets {
				ts, data, err := r.Next()
				if err != nil {
					t.Fatalf("Next() packet %d: %v", i, err)
				}
				if !ts.Equal(p.ts) {
					t.Errorf("packet %d timestamp = %v, want %v", i, ts, p.ts)
				}
				if !bytes.Equal(data, p.data) {
					t.Errorf("packet %d data = %x, want %x", i, data, p.data)
				}
			}
			if _, _, err := r.Next(); err != io.EOF {
				t.Errorf("Next() after last packet = %v, want io.EOF", err)
			}
		})
	}
}

func TestReaderRejectsBadMagic(t *testing.T) {
	if _, err := NewReader(bytes.NewReader(make([]byte, 24))); err == nil {
		t.Error("NewReader accepted a zeroed header")
	}
}

func TestReaderRejectsBadVersion(t *testing.T) {
	hdr := make([]byte, 24)
	binary.LittleEndian.PutUint32(hdr[0:4], 0xa1b2c3d4)
	binary.LittleEndian.PutUint16(hdr[4:6], 3)
	if _, err := NewReader(bytes.NewReader(hdr)); err == nil {
		t.Error("NewReader accepted version 3")
	}
}

func TestRTACRoundTrip(t *testing.T) {
	ts := time.Unix(1700000000, 654321000).UTC()
	payload := []byte{0x11, 0x05, 0x00, 0xAC, 0xFF, 0x00, 0x4E, 0x8B}
	pkt := append(RTACHeader(ts, EventTxStart), payload...)

	gotTs, eventType, gotPayload, err := ParseRTAC(pkt)
	if err != nil {
		t.Fatalf("ParseRTAC: %v", err)
	}
	if !gotTs.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", gotTs, ts)
	}
	if eventType != EventTxStart {
		t.Errorf("event type = %d, want %d", eventType, EventTxStart)
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Errorf("payload = %x, want %x", gotPayload, payload)
	}
}

func TestParseRTACShortPacket(t *testing.T) {
	if _, _, _, err := ParseRTAC(make([]byte, 11)); err == nil {
		t.Error("ParseRTAC accepted an 11-byte packet")
	}
}
