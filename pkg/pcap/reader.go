package pcap

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Reader iterates the packets of a libpcap capture file. Both byte orders
// are accepted; the order is detected from the magic number.
type Reader struct {
	r        io.Reader
	order    binary.ByteOrder
	linkType uint32
}

// NewReader reads the 24-byte global header and prepares to iterate
// packets.
func NewReader(r io.Reader) (*Reader, error) {
	hdr := make([]byte, 24)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("read global header: %w", err)
	}
	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(hdr[0:4]) == magicNumber:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(hdr[0:4]) == magicNumber:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a pcap file (magic 0x%08x)", binary.LittleEndian.Uint32(hdr[0:4]))
	}
	major := order.Uint16(hdr[4:6])
	if major != versionMajor {
		return nil, fmt.Errorf("unsupported pcap version %d.%d", major, order.Uint16(hdr[6:8]))
	}
	return &Reader{
		r:        r,
		order:    order,
		linkType: order.Uint32(hdr[20:24]),
	}, nil
}

// LinkType returns the capture's link-layer type.
func (pr *Reader) LinkType() uint32 { return pr.linkType }

// Next returns the next packet's timestamp and data. It returns io.EOF at
// a clean end of the capture.
func (pr *Reader) Next() (time.Time, []byte, error) {
	hdr := make([]byte, 16)
	if _, err := io.ReadFull(pr.r, hdr); err != nil {
		if err == io.EOF {
			return time.Time{}, nil, io.EOF
		}
		return time.Time{}, nil, fmt.Errorf("read packet header: %w", err)
	}
	sec := pr.order.Uint32(hdr[0:4])
	usec := pr.order.Uint32(hdr[4:8])
	capLen := pr.order.Uint32(hdr[8:12])
	if capLen > snapLen {
		return time.Time{}, nil, fmt.Errorf("packet length %d exceeds snap length %d", capLen, snapLen)
	}
	data := make([]byte, capLen)
	if _, err := io.ReadFull(pr.r, data); err != nil {
		return time.Time{}, nil, fmt.Errorf("read packet data: %w", err)
	}
	ts := time.Unix(int64(sec), int64(usec)*1000).UTC()
	return ts, data, nil
}
