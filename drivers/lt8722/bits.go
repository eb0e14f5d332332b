package lt8722

// Register payloads are big-endian: Data[0] holds bits 31:24 and Data[3]
// holds bits 7:0.

// SetBits returns data with field f replaced by the low f.Width bits of v.
// Bits outside f are preserved. An invalid field leaves data unchanged.
func SetBits(data [4]byte, f Field, v uint32) [4]byte {
	if !f.valid() {
		return data
	}
	for i := uint8(0); i < f.Width; i++ {
		pos := f.Start + i
		idx := 3 - pos/8
		off := pos % 8
		if (v>>i)&1 != 0 {
			data[idx] |= 1 << off
		} else {
			data[idx] &^= 1 << off
		}
	}
	return data
}

// GetBits extracts field f from data.
func GetBits(data [4]byte, f Field) uint32 {
	if !f.valid() {
		return 0
	}
	return (wordOf(data) >> f.Start) & f.Mask()
}

func wordOf(data [4]byte) uint32 {
	return uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
}

func bytesOf(w uint32) [4]byte {
	return [4]byte{byte(w >> 24), byte(w >> 16), byte(w >> 8), byte(w)}
}
