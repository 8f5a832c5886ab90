package decoder

import "fmt"

// result is the outcome of one decode step. The original design used
// non-local control transfer for these; here every step reports its outcome
// and the dispatch loop decides what to do next.
type result uint8

const (
	complete     result = iota // step already satisfied, keep parsing
	emitted                    // a new annotation was written, restart the dispatch
	needMoreData               // a required byte has not arrived yet
)

type aduByte struct {
	start, end int64
	value      byte
}

// adu is one Modbus message in progress. It owns a growing byte buffer and
// a high-water mark of already-annotated bytes, which together make the
// parse dispatch resumable and idempotent: re-running it after every
// appended byte emits each field exactly once.
type adu struct {
	dir        Direction
	sink       Sink
	markErrors bool // two-channel mode: flag whole frames containing errors

	data     []aduByte
	lastRead int64
	lastPut  int // index of the last annotated byte, -1 before the first
	// minLength starts at the protocol floor of 4 and is refined upward
	// once the function code and any byte-count field are known.
	minLength int
	hasError  bool
}

func newADU(dir Direction, start int64, markErrors bool, sink Sink) *adu {
	return &adu{
		dir:        dir,
		sink:       sink,
		markErrors: markErrors,
		lastRead:   start,
		lastPut:    -1,
		minLength:  4,
	}
}

// addData appends one byte and re-runs the dispatch until it neither needs
// more data nor has anything new to say. A single byte can satisfy several
// pending fields; each dispatch attempt stops at its first emission and is
// simply run again.
func (a *adu) addData(ev Event) {
	a.lastRead = ev.End
	a.data = append(a.data, aduByte{ev.Start, ev.End, ev.Value})
	for a.parse() == emitted {
	}
}

func (a *adu) parse() result {
	if a.dir == DirResponse {
		return a.parseResponse()
	}
	return a.parseRequest()
}

// putIfNeeded annotates the span from the byte after the high-water mark
// through byte idx, unless that range is already covered. Emission advances
// the mark, so no annotation is ever repeated and coverage is contiguous.
func (a *adu) putIfNeeded(idx int, k kind, text string) result {
	if idx > len(a.data)-1 {
		return needMoreData
	}
	if idx <= a.lastPut {
		return complete
	}
	if k == kindError {
		a.hasError = true
	}
	a.sink.Put(Annotation{
		Start: a.data[a.lastPut+1].start,
		End:   a.data[idx].end,
		Class: classFor(a.dir, k),
		Text:  text,
	})
	a.lastPut = idx
	return emitted
}

// putLast annotates the most recent buffer byte. If max is non-negative and
// the buffer has already grown past it, nothing happens; this is how
// variable-length payload regions are bounded.
func (a *adu) putLast(k kind, text string, max int) result {
	last := len(a.data) - 1
	if max >= 0 && last > max {
		return complete
	}
	return a.putIfNeeded(last, k, text)
}

// u16 reads the big-endian half word starting at byte idx.
func (a *adu) u16(idx int) (uint16, result) {
	if len(a.data) < idx+2 {
		return 0, needMoreData
	}
	return uint16(a.data[idx].value)<<8 | uint16(a.data[idx+1].value), complete
}

// checkCRC verifies the trailing checksum; idx is the index of its second
// (high) byte. A request to verify fewer than 3 preceding bytes means the
// decoder's own length accounting is broken, so it panics instead of
// reporting a protocol error.
func (a *adu) checkCRC(idx int) result {
	if idx < 3 {
		panic(fmt.Sprintf("decoder: checksum requested at index %d; no frame is that short", idx))
	}
	if idx > len(a.data)-1 {
		return needMoreData
	}
	payload := make([]byte, idx-1)
	for i := range payload {
		payload[i] = a.data[i].value
	}
	lo, hi := Checksum(payload)
	if a.data[idx-1].value == lo && a.data[idx].value == hi {
		return a.putIfNeeded(idx, kindChecksum, "CRC correct")
	}
	return a.putIfNeeded(idx, kindError, fmt.Sprintf("CRC should be 0x%02X 0x%02X", lo, hi))
}

func (a *adu) requireLength(n int) {
	if n > a.minLength {
		a.minLength = n
	}
}

// close finalizes the ADU once the assembler has decided the message is
// over. deadline bounds the stretch of trailing silence an error annotation
// may be drawn across.
func (a *adu) close(deadline int64) {
	if len(a.data) == 0 {
		// Stray noise between frames, safe to ignore.
		return
	}
	if len(a.data) < a.minLength {
		start := a.data[len(a.data)-1].end
		if a.lastPut >= 0 {
			start = a.data[a.lastPut].end
		}
		a.hasError = true
		a.sink.Put(Annotation{
			Start: start,
			End:   deadline,
			Class: classFor(a.dir, kindError),
			Text:  "Message too short or not finished",
		})
	}
	if a.hasError && a.markErrors {
		// Only worth flagging when the two directions are on separate
		// channels; in dual-interpretation mode one of the two readings
		// is bound to contain errors.
		a.sink.Put(Annotation{
			Start: a.data[0].start,
			End:   a.data[len(a.data)-1].end,
			Class: ClassErrorIndication,
			Text:  "Message contains error",
		})
	}
	if len(a.data) > 256 {
		a.putIfNeeded(len(a.data)-1, kindError, "Modbus frames are limited to 256 bytes")
	}
}
