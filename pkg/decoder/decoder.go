// Package decoder incrementally decodes Modbus RTU traffic from a
// timestamped byte-event stream into positioned field annotations.
//
// There is no explicit frame delimiter on the wire; message boundaries are
// inferred from inter-byte silence. The decoder therefore keeps one message
// in progress per direction and re-runs its field dispatch after every
// byte, emitting each field annotation exactly once as soon as enough bytes
// exist to describe it.
package decoder

import "go.uber.org/zap"

// Stats are running totals of closed frames.
type Stats struct {
	Requests  int
	Responses int
	Errors    int
}

// Decoder is the frame assembler. It learns the link's bit duration from
// the first bit-edge event, routes data bytes to the per-direction ADUs,
// and uses inter-byte gaps to decide where one message ends and the next
// begins. Events must be fed in timestamp order; processing is strictly
// sequential.
type Decoder struct {
	inbound Channel // physical channel carrying server → client traffic
	sink    Sink
	log     *zap.Logger

	bitLength int64
	pending   []Event // data bytes seen before the bit duration is known

	request  *adu
	response *adu
	stats    Stats
}

// New creates a Decoder. inbound selects which physical channel carries
// server → client traffic; outbound traffic is always taken from channel B,
// so inbound = ChannelB means both interpretations are produced from the
// same wire. A nil logger disables logging.
func New(inbound Channel, sink Sink, log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{inbound: inbound, sink: sink, log: log}
}

// DualMode reports whether both interpretations are decoded from a single
// physical channel.
func (d *Decoder) DualMode() bool { return d.inbound == ChannelB }

// Stats returns totals over all frames closed so far.
func (d *Decoder) Stats() Stats { return d.stats }

// Feed processes one event from the upstream byte source. Data bytes that
// arrive before any bit-edge event are buffered and replayed once the bit
// duration is known.
func (d *Decoder) Feed(ev Event) {
	if ev.Kind == EventBit {
		if d.bitLength == 0 && ev.End > ev.Start {
			d.bitLength = ev.End - ev.Start
			d.log.Debug("bit duration learned",
				zap.Int64("nanoseconds", d.bitLength),
				zap.Int("buffered_bytes", len(d.pending)))
			pending := d.pending
			d.pending = nil
			for _, p := range pending {
				d.route(p)
			}
		}
		return
	}
	if d.bitLength == 0 {
		d.pending = append(d.pending, ev)
		return
	}
	d.route(ev)
}

// route feeds a data byte to the ADU(s) its channel selects. A byte can
// reach both ADUs in dual-interpretation mode; the two decodings are
// intentionally independent.
func (d *Decoder) route(ev Event) {
	if ev.Channel == ChannelB {
		d.feed(&d.request, DirRequest, ev)
	}
	if ev.Channel == d.inbound {
		d.feed(&d.response, DirResponse, ev)
	}
}

// silence is the inter-frame gap threshold: a single averaged stand-in for
// the protocol's 3.5 / 1.5 character rules, at roughly 11 bit-times per
// character.
func (d *Decoder) silence() int64 { return 28 * d.bitLength }

func (d *Decoder) feed(slot **adu, dir Direction, ev Event) {
	a := *slot
	if a != nil && ev.Start-a.lastRead > d.silence() {
		d.closeADU(a)
		a = nil
	}
	if a == nil {
		a = newADU(dir, ev.Start, !d.DualMode(), d.sink)
		*slot = a
	}
	a.addData(ev)
}

func (d *Decoder) closeADU(a *adu) {
	// Up to 3 bit-times of trailing silence may carry a final error
	// annotation.
	a.close(a.lastRead + 3*d.bitLength)
	if len(a.data) == 0 {
		return
	}
	if a.dir == DirResponse {
		d.stats.Responses++
	} else {
		d.stats.Requests++
	}
	if a.hasError {
		d.stats.Errors++
	}
	d.log.Debug("frame closed",
		zap.Stringer("direction", a.dir),
		zap.Int("bytes", len(a.data)),
		zap.Bool("error", a.hasError))
}

// Flush closes both in-progress ADUs. Call it once the event stream ends.
func (d *Decoder) Flush() {
	if d.request != nil {
		d.closeADU(d.request)
		d.request = nil
	}
	if d.response != nil {
		d.closeADU(d.response)
		d.response = nil
	}
}
