package decoder

// functionNames covers every function code this decoder recognizes,
// including the codes it only names without interpreting.
var functionNames = map[byte]string{
	1:  "Read Coils",
	2:  "Read Discrete Inputs",
	3:  "Read Holding Registers",
	4:  "Read Input Registers",
	5:  "Write Single Coil",
	6:  "Write Single Register",
	7:  "Read Exception Status",
	8:  "Diagnostics",
	11: "Get Comm Event Counter",
	12: "Get Comm Event Log",
	15: "Write Multiple Coils",
	16: "Write Multiple Registers",
	17: "Report Server ID",
	20: "Read File Record",
	21: "Write File Record",
	22: "Mask Write Register",
	23: "Read/Write Multiple Registers",
	24: "Read FIFO Queue",
	43: "Encapsulated Interface Transport",
}

// diagSubfunctionNames maps Diagnostics (function 8) subfunction codes to
// names. Codes 0-20 without an entry are reserved.
var diagSubfunctionNames = map[uint16]string{
	0:  "Return Query Data",
	1:  "Restart Communications Option",
	2:  "Return Diagnostic Register",
	3:  "Change ASCII Input Delimiter",
	4:  "Force Listen Only Mode",
	10: "Clear Counters and Diagnostic Register",
	11: "Return Bus Message Count",
	12: "Return Bus Communication Error Count",
	13: "Return Bus Exception Error Count",
	14: "Return Server Message Count",
	15: "Return Server No Response Count",
	16: "Return Server NAK Count",
	17: "Return Server Busy Count",
	18: "Return Bus Character Overrun Count",
	20: "Clear Overrun Counter and Flag",
}

// exceptionNames maps the exception code of an error response to its name.
var exceptionNames = map[byte]string{
	1:  "Illegal Function",
	2:  "Illegal Data Address",
	3:  "Illegal Data Value",
	4:  "Server Device Failure",
	5:  "Acknowledge",
	6:  "Server Device Busy",
	8:  "Memory Parity Error",
	10: "Gateway Path Unavailable",
	11: "Gateway Target Device Failed to Respond",
}

// requestHandlers is the client → server field layout registry. Codes with
// the high bit set route to the exception layout, everything else absent
// here to the unknown-function fallback.
var requestHandlers = map[byte]func(*adu) result{
	1:  (*adu).parseReadRequest,
	2:  (*adu).parseReadRequest,
	3:  (*adu).parseReadRequest,
	4:  (*adu).parseReadRequest,
	5:  (*adu).parseWriteSingleCoil,
	6:  (*adu).parseWriteSingleRegister,
	7:  (*adu).parseBareRequest,
	8:  (*adu).parseDiagnostics,
	11: (*adu).parseBareRequest,
	12: (*adu).parseBareRequest,
	15: (*adu).parseWriteMultipleRequest,
	16: (*adu).parseWriteMultipleRequest,
	17: (*adu).parseBareRequest,
	20: (*adu).parseUnsupported,
	21: (*adu).parseUnsupported,
	22: (*adu).parseMaskWriteRegister,
	23: (*adu).parseReadWriteRegistersRequest,
	24: (*adu).parseUnsupported,
	43: (*adu).parseUnsupported,
}

// responseHandlers is the server → client field layout registry. Functions
// 5, 6, 8 and 22 echo their request, so those layouts are shared.
var responseHandlers = map[byte]func(*adu) result{
	1:  (*adu).parseReadBitsResponse,
	2:  (*adu).parseReadBitsResponse,
	3:  (*adu).parseReadRegistersResponse,
	4:  (*adu).parseReadRegistersResponse,
	5:  (*adu).parseWriteSingleCoil,
	6:  (*adu).parseWriteSingleRegister,
	7:  (*adu).parseExceptionStatusResponse,
	8:  (*adu).parseDiagnostics,
	11: (*adu).parseEventCounterResponse,
	12: (*adu).parseEventLogResponse,
	15: (*adu).parseWriteMultipleResponse,
	16: (*adu).parseWriteMultipleResponse,
	17: (*adu).parseReportServerIDResponse,
	20: (*adu).parseUnsupported,
	21: (*adu).parseUnsupported,
	22: (*adu).parseMaskWriteRegister,
	23: (*adu).parseReadRegistersResponse,
	24: (*adu).parseUnsupported,
	43: (*adu).parseUnsupported,
}
