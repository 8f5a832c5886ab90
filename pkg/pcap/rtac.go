package pcap

import (
	"encoding/binary"
	"fmt"
	"time"
)

// RTAC Serial event types, as carried in the capture event header.
const (
	EventStatusChange byte = 0x00
	EventTxStart      byte = 0x01
	EventRxStart      byte = 0x02
)

const rtacHeaderLen = 12

// RTACHeader builds the 12-byte RTAC Serial event header (big-endian) for
// the given timestamp and event type.
func RTACHeader(ts time.Time, eventType byte) []byte {
	hdr := make([]byte, rtacHeaderLen)
	binary.BigEndian.PutUint32(hdr[0:4], uint32(ts.Unix()))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(ts.Nanosecond()/1000))
	hdr[8] = eventType
	return hdr
}

// ParseRTAC splits an RTAC Serial packet into its embedded timestamp,
// event type and payload bytes.
func ParseRTAC(pkt []byte) (ts time.Time, eventType byte, payload []byte, err error) {
	if len(pkt) < rtacHeaderLen {
		return time.Time{}, 0, nil, fmt.Errorf("RTAC packet too short (%d bytes)", len(pkt))
	}
	sec := binary.BigEndian.Uint32(pkt[0:4])
	usec := binary.BigEndian.Uint32(pkt[4:8])
	ts = time.Unix(int64(sec), int64(usec)*1000).UTC()
	return ts, pkt[8], pkt[rtacHeaderLen:], nil
}
