package lt8722

import "lt8722-go/x/mathx"

// SPIS_DAC is a 32-bit two's complement code around the 1.25 V midpoint of
// the 2.5 V reference, 2.5*2^-25 V per LSB, with positive codes below the
// midpoint.
const (
	dacMidpoint = 1.25
	dacLSB      = 2.5 / (1 << 25)

	// VOUT = -16 * (VDAC - 1.25)
	outputGain = -16.0
)

// Current limit DAC scaling (A per LSB) and the positive limit offset.
const (
	currentLSB      = 0.01328
	posCurrentRange = 6.8
)

// EncodeDAC converts a DAC voltage to the SPIS_DAC code. 1.25 V encodes as 0.
func EncodeDAC(v float64) uint32 {
	if v >= dacMidpoint {
		// 2^32 at the midpoint wraps to 0.
		return uint32(int64(4294967296 - (v-dacMidpoint)/dacLSB))
	}
	return uint32(int64((v - dacMidpoint) / -dacLSB))
}

// DecodeDAC is the inverse of EncodeDAC.
func DecodeDAC(raw uint32) float64 {
	return dacMidpoint - float64(int32(raw))*dacLSB
}

// DACForOutput maps a desired output voltage to the DAC voltage.
func DACForOutput(vout float64) float64 { return vout/outputGain + dacMidpoint }

// OutputForDAC maps a DAC voltage to the output voltage it produces.
func OutputForDAC(vdac float64) float64 { return (vdac - dacMidpoint) * outputGain }

// posCurrentCode returns the SPIS_DAC_ILIMP code for a limit in amps.
func posCurrentCode(amps float64) uint16 {
	code := -((amps - posCurrentRange) / currentLSB)
	return uint16(mathx.Clamp(code, 0, 0xFFFF))
}

// negCurrentCode returns the SPIS_DAC_ILIMN code for a limit magnitude in amps.
func negCurrentCode(amps float64) uint16 {
	code := amps / currentLSB
	return uint16(mathx.Clamp(code, 0, 0xFFFF))
}

// negVoltageCode converts a voltage limit to the inverted clamp code used by
// SPIS_UV_CLAMP.
func negVoltageCode(l VoltageLimit) byte { return ^byte(l) & 0x0F }

func u16Payload(v uint16) [4]byte { return [4]byte{0x00, 0x00, byte(v >> 8), byte(v)} }
