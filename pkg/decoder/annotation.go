package decoder

import "fmt"

// Direction classifies a Modbus RTU message by who sent it.
// The values intentionally match the RTAC Serial event type byte.
type Direction uint8

const (
	DirRequest  Direction = 0x01 // client → server (DATA_TX_START)
	DirResponse Direction = 0x02 // server → client (DATA_RX_START)
)

func (d Direction) String() string {
	switch d {
	case DirRequest:
		return "request"
	case DirResponse:
		return "response"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// Channel identifies one of the two physical lines of the tap.
// Channel B is the line carrying client → server traffic.
type Channel uint8

const (
	ChannelA Channel = iota
	ChannelB
)

func (c Channel) String() string {
	switch c {
	case ChannelA:
		return "A"
	case ChannelB:
		return "B"
	default:
		return fmt.Sprintf("channel(%d)", uint8(c))
	}
}

// EventKind distinguishes the two event types an upstream byte source
// produces: bit-edge timing markers and data bytes.
type EventKind uint8

const (
	EventBit  EventKind = iota // timing marker, Value unused
	EventData                  // one byte off the wire
)

// Event is one timestamped observation from the upstream byte source.
// Timestamps are nanoseconds; only their differences matter to the decoder.
type Event struct {
	Kind    EventKind
	Channel Channel
	Start   int64
	End     int64
	Value   byte // EventData only
}

// Class is the annotation class of an emitted field. There are seven
// classes per direction plus one shared whole-frame error indication.
type Class uint8

const (
	ClassRequestServerID Class = iota
	ClassRequestFunction
	ClassRequestChecksum
	ClassRequestAddress
	ClassRequestData
	ClassRequestLength
	ClassRequestError
	ClassResponseServerID
	ClassResponseFunction
	ClassResponseChecksum
	ClassResponseAddress
	ClassResponseData
	ClassResponseLength
	ClassResponseError
	ClassErrorIndication
)

// kind is a direction-independent field class; an ADU maps it onto the
// concrete Class for its direction.
type kind uint8

const (
	kindServerID kind = iota
	kindFunction
	kindChecksum
	kindAddress
	kindData
	kindLength
	kindError
)

func classFor(dir Direction, k kind) Class {
	if dir == DirResponse {
		return ClassResponseServerID + Class(k)
	}
	return ClassRequestServerID + Class(k)
}

var classNames = [...]string{
	"req/server-id", "req/function", "req/checksum", "req/address",
	"req/data", "req/length", "req/error",
	"resp/server-id", "resp/function", "resp/checksum", "resp/address",
	"resp/data", "resp/length", "resp/error",
	"error-indication",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Direction reports which direction's row a class belongs to. The shared
// error indication reports DirRequest.
func (c Class) Direction() Direction {
	if c >= ClassResponseServerID && c <= ClassResponseError {
		return DirResponse
	}
	return DirRequest
}

// IsError reports whether the class is one of the error classes.
func (c Class) IsError() bool {
	return c == ClassRequestError || c == ClassResponseError || c == ClassErrorIndication
}

// Annotation is one positioned, human-readable field description.
type Annotation struct {
	Start int64
	End   int64
	Class Class
	Text  string
}

// Sink consumes annotations in non-decreasing start order per
// direction row.
type Sink interface {
	Put(Annotation)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Annotation)

func (f SinkFunc) Put(a Annotation) { f(a) }
