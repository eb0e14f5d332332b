package sim

import (
	"errors"
	"testing"

	"lt8722-go/drivers/lt8722"
)

func frame(cmd byte, addr uint8, data [4]byte) []byte {
	a := lt8722.AddrByte(addr)
	switch cmd {
	case 0xF0:
		return []byte{0xF0, a, lt8722.CRC2([2]byte{0xF0, a}), 0}
	case 0xF4:
		return []byte{0xF4, a, lt8722.CRC2([2]byte{0xF4, a}), 0, 0, 0, 0, 0}
	}
	return []byte{0xF2, a, data[0], data[1], data[2], data[3], lt8722.CRC6([2]byte{0xF2, a}, data), 0}
}

func tx(t *testing.T, c *Chip, w []byte) []byte {
	t.Helper()
	r := make([]byte, len(w))
	c.CS(false)
	defer c.CS(true)
	if err := c.Tx(w, r); err != nil {
		t.Fatalf("Tx: %v", err)
	}
	return r
}

func TestWriteThenRead(t *testing.T) {
	c := New()
	d := [4]byte{0x12, 0x34, 0x56, 0x78}
	w := tx(t, c, frame(0xF2, 4, d))
	if w[7] != lt8722.AckByte {
		t.Fatalf("write ack %#x", w[7])
	}
	if got := c.Reg(lt8722.RegOutputVoltage); got != 0x12345678 {
		t.Fatalf("reg4=%#x", got)
	}
	r := tx(t, c, frame(0xF4, 4, [4]byte{}))
	if r[7] != lt8722.AckByte || [4]byte{r[2], r[3], r[4], r[5]} != d {
		t.Fatalf("read reply % X", r)
	}
	if r[6] != lt8722.CRC6([2]byte{r[0], r[1]}, d) {
		t.Fatal("read CRC")
	}
	if c.Frames() != 2 || c.Selects != 2 {
		t.Fatalf("frames=%d selects=%d", c.Frames(), c.Selects)
	}
}

func TestStatusEcho(t *testing.T) {
	c := New()
	c.SetReg(lt8722.RegStatus, 0xABCD0412)
	r := tx(t, c, frame(0xF0, 1, [4]byte{}))
	if r[0] != 0x04 || r[1] != 0x12 || r[3] != lt8722.AckByte {
		t.Fatalf("status reply % X", r)
	}
}

func TestRejects(t *testing.T) {
	c := New()

	bad := frame(0xF4, 2, [4]byte{})
	bad[2] ^= 1
	if r := tx(t, c, bad); r[7] != lt8722.NackByte {
		t.Fatalf("bad CRC ack %#x", r[7])
	}
	if r := tx(t, c, frame(0xF4, 9, [4]byte{})); r[7] != lt8722.UnsupportedAddrByte {
		t.Fatalf("unsupported address ack %#x", r[7])
	}
	if r := tx(t, c, frame(0xF2, 9, [4]byte{1, 2, 3, 4})); r[7] != lt8722.UnsupportedAddrByte {
		t.Fatalf("unsupported write ack %#x", r[7])
	}

	if err := c.Tx(frame(0xF0, 1, [4]byte{}), make([]byte, 4)); !errors.Is(err, ErrNotSelected) {
		t.Fatalf("unselected err=%v", err)
	}
	if _, err := c.Transfer(0xF0); !errors.Is(err, ErrFrameLength) {
		t.Fatalf("Transfer err=%v", err)
	}
}

func TestSPIReset(t *testing.T) {
	c := New()
	c.SetReg(lt8722.RegStatus, 0x55)
	c.SetReg(lt8722.RegPosVoltageLimit, 7)
	tx(t, c, frame(0xF2, 0, [4]byte{0, 0, 0x40, 0}))
	if c.Reg(lt8722.RegPosVoltageLimit) != 0 || c.Reg(lt8722.RegCommand) != 0 {
		t.Fatal("registers not reset")
	}
	if c.Reg(lt8722.RegStatus) != 0x55 {
		t.Fatal("status register reset")
	}
}

func TestInjectedFaults(t *testing.T) {
	c := New()
	c.InjectAt(0, FaultCRC)
	c.InjectAt(1, FaultNack)
	c.InjectAt(2, FaultBus)

	r := tx(t, c, frame(0xF4, 0, [4]byte{}))
	if r[6] == lt8722.CRC6([2]byte{r[0], r[1]}, [4]byte{r[2], r[3], r[4], r[5]}) {
		t.Fatal("CRC fault not applied")
	}
	w := tx(t, c, frame(0xF2, 5, [4]byte{0, 0, 0, 3}))
	if w[7] != lt8722.NackByte {
		t.Fatalf("NACK fault ack %#x", w[7])
	}
	c.CS(false)
	if err := c.Tx(frame(0xF0, 1, [4]byte{}), make([]byte, 4)); !errors.Is(err, ErrBus) {
		t.Fatalf("bus fault err=%v", err)
	}
	c.CS(true)

	// Faults apply once.
	if r := tx(t, c, frame(0xF0, 1, [4]byte{})); r[3] != lt8722.AckByte {
		t.Fatalf("fault persisted: % X", r)
	}
	if len(c.Log) != 4 || c.LastFrame()[0] != 0xF0 {
		t.Fatalf("log %v", c.Log)
	}
}
