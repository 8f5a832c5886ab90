package decoder

import "fmt"

// parseResponse is the server → client dispatch, re-run after every
// appended byte.
func (a *adu) parseResponse() result {
	if r := a.putIfNeeded(0, kindServerID, responseServerIDText(a.data[0].value)); r != complete {
		return r
	}
	if len(a.data) < 2 {
		return needMoreData
	}
	fc := a.data[1].value
	handler, ok := responseHandlers[fc]
	switch {
	case ok:
	case fc > 0x80:
		handler = (*adu).parseException
	default:
		handler = (*adu).parseUnknownFunction
	}
	if r := handler(a); r != complete {
		return r
	}
	return a.putLast(kindError, "Message too long", -1)
}

func responseServerIDText(id byte) string {
	if id >= 1 && id <= 247 {
		return fmt.Sprintf("Server ID: %d", id)
	}
	return fmt.Sprintf("Server ID %d is invalid", id)
}

// parseReadBitsResponse covers responses for functions 1 and 2: byte count
// followed by packed bit payload.
func (a *adu) parseReadBitsResponse() result {
	a.requireLength(6)
	if r := a.putFunction(); r != complete {
		return r
	}
	if len(a.data) < 3 {
		return needMoreData
	}
	byteCount := int(a.data[2].value)
	a.minLength = 5 + byteCount
	if r := a.putIfNeeded(2, kindLength, fmt.Sprintf("Byte count: %d", byteCount)); r != complete {
		return r
	}
	if r := a.putLast(kindData, fmt.Sprintf("%08b", a.data[len(a.data)-1].value), 2+byteCount); r != complete {
		return r
	}
	return a.checkCRC(4 + byteCount)
}

// parseReadRegistersResponse covers responses for functions 3, 4 and 23:
// byte count followed by 16-bit register values.
func (a *adu) parseReadRegistersResponse() result {
	a.requireLength(7)
	if r := a.putFunction(); r != complete {
		return r
	}
	if len(a.data) < 3 {
		return needMoreData
	}
	byteCount := int(a.data[2].value)
	a.minLength = 5 + byteCount
	if byteCount%2 == 0 {
		if r := a.putIfNeeded(2, kindLength, fmt.Sprintf("Byte count: %d", byteCount)); r != complete {
			return r
		}
	} else {
		if r := a.putIfNeeded(2, kindError, fmt.Sprintf("Odd byte count (%d)", byteCount)); r != complete {
			return r
		}
	}
	// Register payload starts at byte 3, so a full register ends on every
	// odd buffer length from 5 on.
	if len(a.data) >= 5 && len(a.data)%2 == 1 {
		value, r := a.u16(len(a.data) - 2)
		if r != complete {
			return r
		}
		if r := a.putLast(kindData, fmt.Sprintf("0x%04X / %d", value, value), 2+byteCount); r != complete {
			return r
		}
	}
	return a.checkCRC(4 + byteCount)
}

// parseExceptionStatusResponse covers the function 7 response: one status
// byte of output states.
func (a *adu) parseExceptionStatusResponse() result {
	a.requireLength(5)
	if r := a.putFunction(); r != complete {
		return r
	}
	if len(a.data) < 3 {
		return needMoreData
	}
	if r := a.putIfNeeded(2, kindData, fmt.Sprintf("Status: %08b", a.data[2].value)); r != complete {
		return r
	}
	return a.checkCRC(4)
}

// parseEventCounterResponse covers the function 11 response.
func (a *adu) parseEventCounterResponse() result {
	a.requireLength(8)
	if r := a.putFunction(); r != complete {
		return r
	}
	status, r := a.u16(2)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(3, kindData, fmt.Sprintf("Status: 0x%04X", status)); r != complete {
		return r
	}
	count, r := a.u16(4)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(5, kindData, fmt.Sprintf("Event count: %d", count)); r != complete {
		return r
	}
	return a.checkCRC(7)
}

// parseEventLogResponse covers the function 12 response: status, counters
// and a trailing list of event bytes.
func (a *adu) parseEventLogResponse() result {
	a.requireLength(11)
	if r := a.putFunction(); r != complete {
		return r
	}
	if len(a.data) < 3 {
		return needMoreData
	}
	byteCount := int(a.data[2].value)
	a.minLength = 5 + byteCount
	if r := a.putIfNeeded(2, kindLength, fmt.Sprintf("Byte count: %d", byteCount)); r != complete {
		return r
	}
	status, r := a.u16(3)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(4, kindData, fmt.Sprintf("Status: 0x%04X", status)); r != complete {
		return r
	}
	eventCount, r := a.u16(5)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(6, kindData, fmt.Sprintf("Event count: %d", eventCount)); r != complete {
		return r
	}
	messageCount, r := a.u16(7)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(8, kindData, fmt.Sprintf("Message count: %d", messageCount)); r != complete {
		return r
	}
	if r := a.putLast(kindData, fmt.Sprintf("Event: 0x%02X", a.data[len(a.data)-1].value), 2+byteCount); r != complete {
		return r
	}
	return a.checkCRC(4 + byteCount)
}

// parseWriteMultipleResponse covers responses for functions 15 and 16,
// which echo address and quantity.
func (a *adu) parseWriteMultipleResponse() result {
	fc := a.data[1].value
	a.requireLength(8)
	if r := a.putFunction(); r != complete {
		return r
	}
	addr, r := a.u16(2)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(3, kindAddress, "Start at address "+longAddress(fc, addr)); r != complete {
		return r
	}
	quantity, r := a.u16(4)
	if r != complete {
		return r
	}
	unit := "registers"
	if fc == 15 {
		unit = "coils"
	}
	if r := a.putIfNeeded(5, kindLength, fmt.Sprintf("Wrote %d %s", quantity, unit)); r != complete {
		return r
	}
	return a.checkCRC(7)
}

// parseReportServerIDResponse covers the function 17 response: byte count,
// server ID, run indicator and device-specific data.
func (a *adu) parseReportServerIDResponse() result {
	a.requireLength(7)
	if r := a.putFunction(); r != complete {
		return r
	}
	if len(a.data) < 3 {
		return needMoreData
	}
	byteCount := int(a.data[2].value)
	a.minLength = 5 + byteCount
	if r := a.putIfNeeded(2, kindLength, fmt.Sprintf("Byte count: %d", byteCount)); r != complete {
		return r
	}
	if len(a.data) < 4 {
		return needMoreData
	}
	if r := a.putIfNeeded(3, kindData, fmt.Sprintf("Server ID: %d", a.data[3].value)); r != complete {
		return r
	}
	if len(a.data) < 5 {
		return needMoreData
	}
	var run string
	switch a.data[4].value {
	case 0x00:
		run = "Run Indicator: OFF"
	case 0xFF:
		run = "Run Indicator: ON"
	default:
		run = fmt.Sprintf("Run Indicator: 0x%02X (invalid)", a.data[4].value)
	}
	if r := a.putIfNeeded(4, kindData, run); r != complete {
		return r
	}
	if r := a.putLast(kindData, fmt.Sprintf("Additional data: 0x%02X", a.data[len(a.data)-1].value), 2+byteCount); r != complete {
		return r
	}
	return a.checkCRC(4 + byteCount)
}
