package conv

// AppendUint appends the base-10 representation of n.
// No allocations beyond buf growth; no fmt/strconv dependency.
func AppendUint(buf []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(buf, tmp[i:]...)
}

// AppendInt appends the base-10 representation of n.
func AppendInt(buf []byte, n int64) []byte {
	if n < 0 {
		return AppendUint(append(buf, '-'), uint64(-n))
	}
	return AppendUint(buf, uint64(n))
}
