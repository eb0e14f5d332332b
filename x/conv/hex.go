package conv

const hexd = "0123456789ABCDEF"

// AppendHex appends the low digits*4 bits of n as zero-padded uppercase hex
// without 0x.
func AppendHex(buf []byte, n uint64, digits int) []byte {
	for i := digits - 1; i >= 0; i-- {
		buf = append(buf, hexd[(n>>(4*uint(i)))&0xF])
	}
	return buf
}

// AppendBytes appends b as space-separated hex pairs.
func AppendBytes(buf []byte, b []byte) []byte {
	for i, x := range b {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = AppendHex(buf, uint64(x), 2)
	}
	return buf
}
