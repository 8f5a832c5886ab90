package decoder

import "fmt"

// parseRequest is the client → server dispatch, re-run after every
// appended byte.
func (a *adu) parseRequest() result {
	if r := a.putIfNeeded(0, kindServerID, requestServerIDText(a.data[0].value)); r != complete {
		return r
	}
	if len(a.data) < 2 {
		return needMoreData
	}
	fc := a.data[1].value
	handler, ok := requestHandlers[fc]
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
	// A message that decoded exactly to length has nothing left for this
	// to cover; anything beyond the expected end gets flagged.
	return a.putLast(kindError, "Message too long", -1)
}

func requestServerIDText(id byte) string {
	switch {
	case id == 0:
		return "Broadcast message"
	case id <= 247:
		return fmt.Sprintf("Server ID: %d", id)
	default:
		return fmt.Sprintf("Server ID %d is reserved", id)
	}
}

// putFunction annotates byte 1 with the function name. Callers guarantee
// the code is present in functionNames.
func (a *adu) putFunction() result {
	fc := a.data[1].value
	return a.putIfNeeded(1, kindFunction, fmt.Sprintf("Function %d: %s", fc, functionNames[fc]))
}

// longAddress renders a wire address together with its conventional data
// model number: coils and discrete inputs in the 1nnnn range, input
// registers from 30001, holding registers from 40001.
func longAddress(fc byte, addr uint16) string {
	base := 40001
	switch fc {
	case 1, 2, 5, 15:
		base = 10000
	case 4:
		base = 30001
	}
	return fmt.Sprintf("0x%X / %d", addr, int(addr)+base)
}

// parseReadRequest covers functions 1-4: start address and unit count,
// fixed 8 bytes.
func (a *adu) parseReadRequest() result {
	a.requireLength(8)
	if r := a.putFunction(); r != complete {
		return r
	}
	addr, r := a.u16(2)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(3, kindAddress, "Start at address "+longAddress(a.data[1].value, addr)); r != complete {
		return r
	}
	count, r := a.u16(4)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(5, kindLength, fmt.Sprintf("Read %d units of data", count)); r != complete {
		return r
	}
	return a.checkCRC(7)
}

// parseWriteSingleCoil covers function 5 in both directions; the response
// echoes the request.
func (a *adu) parseWriteSingleCoil() result {
	a.requireLength(8)
	if r := a.putFunction(); r != complete {
		return r
	}
	addr, r := a.u16(2)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(3, kindAddress, "Address "+longAddress(5, addr)); r != complete {
		return r
	}
	value, r := a.u16(4)
	if r != complete {
		return r
	}
	text := "Invalid coil value"
	switch value {
	case 0x0000:
		text = "Coil Value OFF"
	case 0xFF00:
		text = "Coil Value ON"
	}
	if r := a.putIfNeeded(5, kindData, text); r != complete {
		return r
	}
	return a.checkCRC(7)
}

// parseWriteSingleRegister covers function 6 in both directions.
func (a *adu) parseWriteSingleRegister() result {
	a.requireLength(8)
	if r := a.putFunction(); r != complete {
		return r
	}
	addr, r := a.u16(2)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(3, kindAddress, "Address "+longAddress(6, addr)); r != complete {
		return r
	}
	value, r := a.u16(4)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(5, kindData, fmt.Sprintf("Value 0x%04X / %d", value, value)); r != complete {
		return r
	}
	return a.checkCRC(7)
}

// parseBareRequest covers requests that carry no fields at all beyond the
// function code: 7, 11, 12 and 17.
func (a *adu) parseBareRequest() result {
	a.requireLength(4)
	if r := a.putFunction(); r != complete {
		return r
	}
	return a.checkCRC(3)
}

// parseDiagnostics covers function 8 in both directions; the response
// echoes the request.
func (a *adu) parseDiagnostics() result {
	a.requireLength(8)
	if r := a.putFunction(); r != complete {
		return r
	}
	sub, r := a.u16(2)
	if r != complete {
		return r
	}
	name, ok := diagSubfunctionNames[sub]
	if !ok {
		name = "Reserved"
	}
	if r := a.putIfNeeded(3, kindFunction, fmt.Sprintf("Subfunction %d: %s", sub, name)); r != complete {
		return r
	}
	value, r := a.u16(4)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(5, kindData, fmt.Sprintf("Data: 0x%04X", value)); r != complete {
		return r
	}
	return a.checkCRC(7)
}

// parseWriteMultipleRequest covers requests for functions 15 and 16:
// address, quantity, byte count, payload, checksum.
func (a *adu) parseWriteMultipleRequest() result {
	fc := a.data[1].value
	a.requireLength(9)
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
	unit, maxQuantity := "registers", uint16(0x7B)
	if fc == 15 {
		unit, maxQuantity = "coils", 0x7B0
	}
	if quantity >= 1 && quantity <= maxQuantity {
		if r := a.putIfNeeded(5, kindLength, fmt.Sprintf("Write %d %s", quantity, unit)); r != complete {
			return r
		}
	} else {
		if r := a.putIfNeeded(5, kindError, fmt.Sprintf("Write %d %s (allowed range 1-%d)", quantity, unit, maxQuantity)); r != complete {
			return r
		}
	}
	if len(a.data) < 7 {
		return needMoreData
	}
	byteCount := int(a.data[6].value)
	a.minLength = 9 + byteCount
	expected := 2 * int(quantity)
	if fc == 15 {
		expected = (int(quantity) + 7) / 8
	}
	if byteCount == expected {
		if r := a.putIfNeeded(6, kindLength, fmt.Sprintf("Byte count: %d", byteCount)); r != complete {
			return r
		}
	} else {
		if r := a.putIfNeeded(6, kindError, fmt.Sprintf("Byte count %d does not match %d %s", byteCount, quantity, unit)); r != complete {
			return r
		}
	}
	// Payload occupies bytes 7 through 6+byteCount.
	if fc == 15 {
		if r := a.putLast(kindData, fmt.Sprintf("%08b", a.data[len(a.data)-1].value), 6+byteCount); r != complete {
			return r
		}
	} else if len(a.data) >= 9 && len(a.data)%2 == 1 {
		// Register payload starts at byte 7, so a full register ends on
		// every odd buffer length from 9 on.
		value, r := a.u16(len(a.data) - 2)
		if r != complete {
			return r
		}
		if r := a.putLast(kindData, fmt.Sprintf("0x%04X / %d", value, value), 6+byteCount); r != complete {
			return r
		}
	}
	return a.checkCRC(8 + byteCount)
}

// parseReadWriteRegistersRequest covers the request of function 23, which
// combines a read range with a write range and payload.
func (a *adu) parseReadWriteRegistersRequest() result {
	a.requireLength(13)
	if r := a.putFunction(); r != complete {
		return r
	}
	readAddr, r := a.u16(2)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(3, kindAddress, "Read starting at address "+longAddress(3, readAddr)); r != complete {
		return r
	}
	readQuantity, r := a.u16(4)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(5, kindLength, fmt.Sprintf("Read %d registers", readQuantity)); r != complete {
		return r
	}
	writeAddr, r := a.u16(6)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(7, kindAddress, "Write starting at address "+longAddress(3, writeAddr)); r != complete {
		return r
	}
	writeQuantity, r := a.u16(8)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(9, kindLength, fmt.Sprintf("Write %d registers", writeQuantity)); r != complete {
		return r
	}
	if len(a.data) < 11 {
		return needMoreData
	}
	byteCount := int(a.data[10].value)
	a.minLength = 13 + byteCount
	if byteCount == 2*int(writeQuantity) {
		if r := a.putIfNeeded(10, kindLength, fmt.Sprintf("Byte count: %d", byteCount)); r != complete {
			return r
		}
	} else {
		if r := a.putIfNeeded(10, kindError, fmt.Sprintf("Byte count %d does not match %d registers", byteCount, writeQuantity)); r != complete {
			return r
		}
	}
	// Write payload starts at byte 11; a full register ends on every odd
	// buffer length from 13 on.
	if len(a.data) >= 13 && len(a.data)%2 == 1 {
		value, r := a.u16(len(a.data) - 2)
		if r != complete {
			return r
		}
		if r := a.putLast(kindData, fmt.Sprintf("0x%04X / %d", value, value), 10+byteCount); r != complete {
			return r
		}
	}
	return a.checkCRC(12 + byteCount)
}

// parseMaskWriteRegister covers function 22 in both directions.
func (a *adu) parseMaskWriteRegister() result {
	a.requireLength(10)
	if r := a.putFunction(); r != complete {
		return r
	}
	addr, r := a.u16(2)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(3, kindAddress, "Address "+longAddress(22, addr)); r != complete {
		return r
	}
	andMask, r := a.u16(4)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(5, kindData, fmt.Sprintf("AND mask: 0x%04X", andMask)); r != complete {
		return r
	}
	orMask, r := a.u16(6)
	if r != complete {
		return r
	}
	if r := a.putIfNeeded(7, kindData, fmt.Sprintf("OR mask: 0x%04X", orMask)); r != complete {
		return r
	}
	return a.checkCRC(9)
}

// parseUnsupported names the function and swallows the rest of the frame
// without interpreting it.
func (a *adu) parseUnsupported() result {
	fc := a.data[1].value
	if r := a.putIfNeeded(1, kindFunction, fmt.Sprintf("Function %d: %s (not supported)", fc, functionNames[fc])); r != complete {
		return r
	}
	return a.putLast(kindData, "Not interpreted (unsupported function)", -1)
}

// parseUnknownFunction terminates useful decoding; every further byte is
// swallowed under the same error marker.
func (a *adu) parseUnknownFunction() result {
	fc := a.data[1].value
	if r := a.putIfNeeded(1, kindError, fmt.Sprintf("Unknown function: 0x%02X", fc)); r != complete {
		return r
	}
	return a.putLast(kindError, "Unknown function", -1)
}

// parseException covers error responses: any function code with the high
// bit set, followed by an exception code.
func (a *adu) parseException() result {
	a.requireLength(5)
	fc := a.data[1].value
	base := fc - 0x80
	text := fmt.Sprintf("Error for unknown function 0x%02X", base)
	if name, ok := functionNames[base]; ok {
		text = fmt.Sprintf("Error for function %d: %s", base, name)
	}
	if r := a.putIfNeeded(1, kindFunction, text); r != complete {
		return r
	}
	if len(a.data) < 3 {
		return needMoreData
	}
	code := a.data[2].value
	if name, ok := exceptionNames[code]; ok {
		if r := a.putIfNeeded(2, kindData, fmt.Sprintf("Exception %d: %s", code, name)); r != complete {
			return r
		}
	} else {
		if r := a.putIfNeeded(2, kindError, fmt.Sprintf("Exception %d: Unknown", code)); r != complete {
			return r
		}
	}
	return a.checkCRC(4)
}
