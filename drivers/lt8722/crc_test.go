package lt8722

import "testing"

// crcBitwise is the reference shift-register CRC-8 (poly 0x07, init 0).
func crcBitwise(b []byte) byte {
	var crc byte
	for _, v := range b {
		crc ^= v
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func TestCRCTableMatchesPolynomial(t *testing.T) {
	for i := 0; i < 256; i++ {
		if got, want := crc8Table[i], crcBitwise([]byte{byte(i)}); got != want {
			t.Fatalf("table[%#02x]=%#02x want %#02x", i, got, want)
		}
	}
}

func TestCRCKnownFrames(t *testing.T) {
	if got := CRC2([2]byte{0xF0, 0x02}); got != 0x1A {
		t.Fatalf("status read CRC=%#02x want 0x1A", got)
	}
	if got := CRC2([2]byte{0xF4, 0x08}); got != 0x78 {
		t.Fatalf("read DAC CRC=%#02x want 0x78", got)
	}
	if got := CRC6([2]byte{0xF2, 0x08}, [4]byte{}); got != 0x74 {
		t.Fatalf("write DAC CRC=%#02x want 0x74", got)
	}
}

func TestCRC6IsConcatenation(t *testing.T) {
	st := [2]byte{0x12, 0x34}
	data := [4]byte{0xDE, 0xAD, 0xBE, 0xEF}
	want := crcBitwise([]byte{0x12, 0x34, 0xDE, 0xAD, 0xBE, 0xEF})
	if got := CRC6(st, data); got != want {
		t.Fatalf("CRC6=%#02x want %#02x", got, want)
	}
}

func TestCRCDeterministic(t *testing.T) {
	st := [2]byte{0xF2, 0x0E}
	data := [4]byte{0x00, 0x01, 0x80, 0xFF}
	first := CRC6(st, data)
	for i := 0; i < 100; i++ {
		if CRC6(st, data) != first {
			t.Fatal("CRC6 not deterministic")
		}
	}
}

func TestCRC6SingleBitFlip(t *testing.T) {
	inputs := [][6]byte{
		{0xF2, 0x08, 0x00, 0x00, 0x00, 0x00},
		{0xF4, 0x00, 0x12, 0x34, 0x56, 0x78},
		{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
	}
	for _, in := range inputs {
		base := CRC6([2]byte{in[0], in[1]}, [4]byte{in[2], in[3], in[4], in[5]})
		for bit := 0; bit < 48; bit++ {
			m := in
			m[bit/8] ^= 1 << (bit % 8)
			got := CRC6([2]byte{m[0], m[1]}, [4]byte{m[2], m[3], m[4], m[5]})
			if got == base {
				t.Fatalf("flip of bit %d in % X did not change CRC", bit, in)
			}
		}
	}
}
