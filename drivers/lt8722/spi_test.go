package lt8722

import (
	"errors"
	"testing"
)

// scriptSPI records each frame and answers with the next scripted reply.
type scriptSPI struct {
	tx      [][]byte
	replies [][]byte
	err     error
}

func (s *scriptSPI) Tx(w, r []byte) error {
	s.tx = append(s.tx, append([]byte(nil), w...))
	if s.err != nil {
		return s.err
	}
	if len(s.replies) > 0 {
		copy(r, s.replies[0])
		s.replies = s.replies[1:]
	}
	return nil
}

func (s *scriptSPI) Transfer(b byte) (byte, error) { return 0, nil }

// csPin tracks chip-select edges.
type csPin struct {
	low     bool
	asserts int
}

func (p *csPin) set(level bool) {
	if !level && !p.low {
		p.asserts++
	}
	p.low = !level
}

func newScripted(replies ...[]byte) (*Device, *scriptSPI, *csPin) {
	s := &scriptSPI{replies: replies}
	cs := &csPin{}
	return New(s, cs.set, Config{}), s, cs
}

func statusReply(st [2]byte, ack byte) []byte {
	return []byte{st[0], st[1], CRC2(st), ack}
}

func readReply(st [2]byte, data [4]byte, ack byte) []byte {
	return []byte{st[0], st[1], data[0], data[1], data[2], data[3], CRC6(st, data), ack}
}

func writeReply(st [2]byte, data [4]byte, ack byte) []byte {
	return []byte{st[0], st[1], CRC6(st, data), data[0], data[1], data[2], data[3], ack}
}

func TestReadStatusFrame(t *testing.T) {
	d, s, cs := newScripted(statusReply([2]byte{0x00, 0x05}, AckByte))
	r := d.ReadStatus()
	if !r.OK || r.Err() != nil {
		t.Fatalf("unexpected failure: %v", r.Err())
	}
	if got, want := s.tx[0], []byte{0xF0, 0x02, 0x1A, 0x00}; string(got) != string(want) {
		t.Fatalf("tx % X want % X", got, want)
	}
	if r.StatusWord() != 0x0005 {
		t.Fatalf("status %#04x", r.StatusWord())
	}
	if r.Data != [4]byte{} {
		t.Fatalf("status read data not zero: % X", r.Data)
	}
	if cs.asserts != 1 || cs.low {
		t.Fatalf("chip select asserts=%d low=%v", cs.asserts, cs.low)
	}
}

func TestAckGate(t *testing.T) {
	for _, ack := range []byte{0x00, NackByte, UnsupportedAddrByte, 0xFF, 0xA4} {
		d, _, _ := newScripted(readReply([2]byte{}, [4]byte{1, 2, 3, 4}, ack))
		r := d.ReadRegister(RegCommand)
		if r.OK {
			t.Fatalf("ack %#02x accepted", ack)
		}
		if !errors.Is(r.Err(), ErrNack) || !errors.Is(r.Err(), ErrCommunication) {
			t.Fatalf("ack %#02x: err=%v", ack, r.Err())
		}
	}
}

func TestCRCMismatch(t *testing.T) {
	rep := readReply([2]byte{}, [4]byte{1, 2, 3, 4}, AckByte)
	rep[6] ^= 0x01
	d, _, _ := newScripted(rep)
	r := d.ReadRegister(RegCommand)
	if r.OK || !errors.Is(r.Err(), ErrCRC) || !errors.Is(r.Err(), ErrCommunication) {
		t.Fatalf("ok=%v err=%v", r.OK, r.Err())
	}
}

func TestReadRegisterFrame(t *testing.T) {
	data := [4]byte{0x12, 0x34, 0x56, 0x78}
	d, s, _ := newScripted(readReply([2]byte{0x00, 0x01}, data, AckByte))
	r := d.ReadRegister(RegOutputVoltage)
	if r.Err() != nil {
		t.Fatal(r.Err())
	}
	want := []byte{0xF4, 0x08, 0x78, 0, 0, 0, 0, 0}
	if string(s.tx[0]) != string(want) {
		t.Fatalf("tx % X want % X", s.tx[0], want)
	}
	if r.Word() != 0x12345678 {
		t.Fatalf("word %#08x", r.Word())
	}
}

func TestWriteRegisterZeroDAC(t *testing.T) {
	st := [2]byte{0x00, 0x00}
	d, s, _ := newScripted(writeReply(st, [4]byte{}, AckByte))
	r := d.WriteRegister(RegOutputVoltage, [4]byte{})
	want := []byte{0xF2, 0x08, 0, 0, 0, 0, CRC6([2]byte{0xF2, 0x08}, [4]byte{}), 0}
	if string(s.tx[0]) != string(want) {
		t.Fatalf("tx % X want % X", s.tx[0], want)
	}
	if s.tx[0][6] != 0x74 {
		t.Fatalf("write CRC %#02x", s.tx[0][6])
	}
	if !r.OK {
		t.Fatalf("write not OK: %v", r.Err())
	}
}

func TestWriteRegisterEchoLayout(t *testing.T) {
	st := [2]byte{0x01, 0x02}
	data := [4]byte{0xAA, 0xBB, 0xCC, 0xDD}
	d, s, _ := newScripted(writeReply(st, data, AckByte))
	r := d.WriteRegister(RegPosCurrentLimit, data)
	if string(s.tx[0][2:6]) != string(data[:]) {
		t.Fatalf("payload slots % X", s.tx[0][2:6])
	}
	if r.Data != data || r.Status != st || r.CRC != CRC6(st, data) {
		t.Fatalf("echo decoded as %+v", r)
	}
}

func TestBusErrorReleasesChipSelect(t *testing.T) {
	ioErr := errors.New("dma stalled")
	d, s, cs := newScripted()
	s.err = ioErr
	r := d.ReadRegister(RegCommand)
	if r.OK {
		t.Fatal("bus error reported OK")
	}
	if !errors.Is(r.Err(), ErrCommunication) || !errors.Is(r.Err(), ioErr) {
		t.Fatalf("err=%v", r.Err())
	}
	if cs.low {
		t.Fatal("chip select left asserted")
	}
}

func TestChangeBitsEnableRequest(t *testing.T) {
	st := [2]byte{}
	d, s, cs := newScripted(
		readReply(st, [4]byte{}, AckByte),
		writeReply(st, [4]byte{0, 0, 0, 1}, AckByte),
	)
	r := d.ChangeBits(RegCommand, 0, 1, 1)
	if !r.OK {
		t.Fatalf("ChangeBits failed: %v", r.Err())
	}
	if len(s.tx) != 2 {
		t.Fatalf("frames=%d want 2", len(s.tx))
	}
	if got := s.tx[1][2:6]; string(got) != string([]byte{0, 0, 0, 1}) {
		t.Fatalf("write payload % X", got)
	}
	if r.Data != [4]byte{0, 0, 0, 1} {
		t.Fatalf("result payload % X", r.Data)
	}
	if cs.asserts != 2 {
		t.Fatalf("chip select asserts=%d", cs.asserts)
	}
}

func TestChangeBitsPreservesOtherBits(t *testing.T) {
	st := [2]byte{}
	initial := [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
	d, s, _ := newScripted(readReply(st, initial, AckByte), writeReply(st, [4]byte{}, AckByte))
	d.ChangeBits(RegCommand, 2, 3, 0)
	if got := s.tx[1][2:6]; string(got) != string([]byte{0xFF, 0xFF, 0xFF, 0xE3}) {
		t.Fatalf("write payload % X", got)
	}
}

func TestChangeBitsReadFailureSkipsWrite(t *testing.T) {
	badCRC := readReply([2]byte{}, [4]byte{}, AckByte)
	badCRC[6] ^= 0x01
	for _, c := range []struct {
		name  string
		reply []byte
		want  error
	}{
		{"nack", readReply([2]byte{}, [4]byte{}, NackByte), ErrNack},
		{"crc", badCRC, ErrCRC},
	} {
		d, s, cs := newScripted(c.reply)
		r := d.ChangeBits(RegCommand, 0, 1, 1)
		if r.OK || !errors.Is(r.Err(), c.want) {
			t.Fatalf("%s: ok=%v err=%v", c.name, r.OK, r.Err())
		}
		if len(s.tx) != 1 || s.tx[0][0] != cmdRegRead {
			t.Fatalf("%s: frames=%d want the read only", c.name, len(s.tx))
		}
		if cs.low {
			t.Fatalf("%s: chip select left asserted", c.name)
		}
	}
}

func TestChangeBitsWriteFailure(t *testing.T) {
	st := [2]byte{}
	d, _, _ := newScripted(
		readReply(st, [4]byte{}, AckByte),
		writeReply(st, [4]byte{0, 0, 0, 1}, 0x00),
	)
	r := d.ChangeBits(RegCommand, 0, 1, 1)
	if r.OK || !errors.Is(r.Err(), ErrNack) {
		t.Fatalf("ok=%v err=%v", r.OK, r.Err())
	}
	if r.Ack != AckByte {
		t.Fatalf("result should carry the read frame, ack=%#02x", r.Ack)
	}
}

func TestChangeBitsFieldRange(t *testing.T) {
	d, s, _ := newScripted()
	r := d.ChangeBits(RegCommand, 30, 4, 0xF)
	if !errors.Is(r.Err(), ErrFieldRange) || len(s.tx) != 0 {
		t.Fatalf("err=%v frames=%d", r.Err(), len(s.tx))
	}
}

func TestSetCommandUnknownSymbol(t *testing.T) {
	d, s, cs := newScripted()
	for _, sym := range []Symbol{3, 4, 6, 8, 10, 12, 13, 19, 31, 200} {
		r := d.SetCommand(sym, 1)
		if r.OK || !errors.Is(r.Err(), ErrUnknownSymbol) {
			t.Fatalf("symbol %d: ok=%v err=%v", sym, r.OK, r.Err())
		}
	}
	if len(s.tx) != 0 || cs.asserts != 0 {
		t.Fatalf("unknown symbol touched the bus: frames=%d asserts=%d", len(s.tx), cs.asserts)
	}
}
