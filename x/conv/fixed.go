package conv

import "math"

// AppendFixed appends v with prec decimal places (0..9), rounding half away
// from zero. A value that rounds to zero is printed without a sign.
func AppendFixed(buf []byte, v float64, prec int) []byte {
	switch {
	case math.IsNaN(v):
		return append(buf, "NaN"...)
	case math.IsInf(v, 1):
		return append(buf, "+Inf"...)
	case math.IsInf(v, -1):
		return append(buf, "-Inf"...)
	}
	if prec < 0 {
		prec = 0
	} else if prec > 9 {
		prec = 9
	}
	scale := uint64(1)
	for i := 0; i < prec; i++ {
		scale *= 10
	}
	neg := v < 0
	if neg {
		v = -v
	}
	r := uint64(v*float64(scale) + 0.5)
	if neg && r != 0 {
		buf = append(buf, '-')
	}
	buf = AppendUint(buf, r/scale)
	if prec == 0 {
		return buf
	}
	buf = append(buf, '.')
	var tmp [10]byte
	frac := AppendUint(tmp[:0], r%scale)
	for i := len(frac); i < prec; i++ {
		buf = append(buf, '0')
	}
	return append(buf, frac...)
}
