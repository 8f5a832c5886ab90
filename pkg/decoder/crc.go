package decoder

// Checksum computes the CRC-16/Modbus error-detection code over p:
// seed 0xFFFF, polynomial 0xA001, least-significant-bit first. On the wire
// the low byte is transmitted first.
func Checksum(p []byte) (lo, hi byte) {
	crc := uint16(0xFFFF)
	for _, b := range p {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			lsb := crc & 1
			crc >>= 1
			if lsb != 0 {
				crc ^= 0xA001
			}
		}
	}
	return byte(crc & 0xFF), byte(crc >> 8)
}
