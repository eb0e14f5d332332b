package lt8722

import (
	"math"
	"testing"
)

func TestEncodeDACMidpoint(t *testing.T) {
	if got := EncodeDAC(1.25); got != 0 {
		t.Fatalf("EncodeDAC(1.25)=%#x want 0", got)
	}
}

func TestEncodeDACEnds(t *testing.T) {
	cases := []struct {
		v    float64
		want uint32
	}{
		{2.5, 0xFF000000},
		{0.0, 0x01000000},
	}
	for _, c := range cases {
		if got := EncodeDAC(c.v); got != c.want {
			t.Errorf("EncodeDAC(%v)=%#08x want %#08x", c.v, got, c.want)
		}
	}
}

func TestEncodeDACHalves(t *testing.T) {
	for _, v := range []float64{1.26, 1.5, 2.0, 2.5} {
		raw := EncodeDAC(v)
		if raw <= 1<<31 {
			t.Errorf("EncodeDAC(%v)=%#08x not above half range", v, raw)
		}
	}
	for _, v := range []float64{0.0, 0.5, 1.0, 1.24} {
		raw := EncodeDAC(v)
		if raw == 0 || raw >= 1<<31 {
			t.Errorf("EncodeDAC(%v)=%#08x not a small positive code", v, raw)
		}
	}
}

func TestDecodeDACRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.25, 1.0, 1.25, 1.3, 2.0, 2.5} {
		got := DecodeDAC(EncodeDAC(v))
		if math.Abs(got-v) > 2*dacLSB {
			t.Errorf("round trip %v -> %v", v, got)
		}
	}
}

func TestOutputMapping(t *testing.T) {
	cases := []struct{ vout, vdac float64 }{
		{0, 1.25},
		{16, 0.25},
		{-16, 2.25},
		{4, 1.0},
	}
	for _, c := range cases {
		if got := DACForOutput(c.vout); math.Abs(got-c.vdac) > 1e-12 {
			t.Errorf("DACForOutput(%v)=%v want %v", c.vout, got, c.vdac)
		}
		if got := OutputForDAC(c.vdac); math.Abs(got-c.vout) > 1e-12 {
			t.Errorf("OutputForDAC(%v)=%v want %v", c.vdac, got, c.vout)
		}
	}
}

func TestCurrentCodes(t *testing.T) {
	if got := posCurrentCode(4.5); got != 173 {
		t.Errorf("posCurrentCode(4.5)=%d want 173", got)
	}
	if got := negCurrentCode(4.5); got != 338 {
		t.Errorf("negCurrentCode(4.5)=%d want 338", got)
	}
	if got := posCurrentCode(10); got != 0 {
		t.Errorf("posCurrentCode above range=%d want 0", got)
	}
	if got := negCurrentCode(-1); got != 0 {
		t.Errorf("negCurrentCode(-1)=%d want 0", got)
	}
}

func TestVoltageLimitCodes(t *testing.T) {
	if got := negVoltageCode(VoltageLimit5_00); got != 0x0C {
		t.Errorf("negVoltageCode(5V)=%#x want 0xC", got)
	}
	if got := negVoltageCode(VoltageLimit20_00); got != 0x00 {
		t.Errorf("negVoltageCode(20V)=%#x want 0x0", got)
	}
	if got := VoltageLimitFor(5); got != VoltageLimit5_00 {
		t.Errorf("VoltageLimitFor(5)=%d", got)
	}
	if got := VoltageLimitFor(4.9); got != VoltageLimit5_00 {
		t.Errorf("VoltageLimitFor(4.9)=%d", got)
	}
	if got := VoltageLimitFor(99); got != VoltageLimit20_00 {
		t.Errorf("VoltageLimitFor(99)=%d", got)
	}
	if got := VoltageLimit20_00.Volts(); got != 20 {
		t.Errorf("20V limit reports %v", got)
	}
}
