package lt8722

// PinOutput drives a digital output. The chip select is active-low.
type PinOutput func(level bool)

// Result is the outcome of one bus transaction. It is built fresh for every
// transaction and never shared.
type Result struct {
	Status [2]byte // status word echoed in the first two slots
	Data   [4]byte // register payload, MSB first
	CRC    byte    // CRC received from the chip
	Ack    byte    // acknowledge received from the chip
	OK     bool    // Ack == AckByte and CRC verified over the frame span

	err error
}

// Err returns nil for a good transaction, otherwise an error matching
// ErrCommunication (or ErrUnknownSymbol / ErrFieldRange for requests that
// never reached the bus).
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	return ErrCommunication
}

// Word returns Data as a 32-bit register value.
func (r Result) Word() uint32 { return wordOf(r.Data) }

// StatusWord returns the 16-bit status echo.
func (r Result) StatusWord() uint16 { return uint16(r.Status[0])<<8 | uint16(r.Status[1]) }

// verify sets OK from the ack and the CRC over the given span (2 or 6).
func (r Result) verify(span int) Result {
	var want byte
	if span == 2 {
		want = CRC2(r.Status)
	} else {
		want = CRC6(r.Status, r.Data)
	}
	switch {
	case r.Ack != AckByte:
		r.OK, r.err = false, ErrNack
	case r.CRC != want:
		r.OK, r.err = false, ErrCRC
	default:
		r.OK, r.err = true, nil
	}
	return r
}

// and folds a later sub-transaction into r. r keeps its payload; the verdict
// fails if either failed.
func (r Result) and(next Result) Result {
	if !r.OK {
		return r
	}
	if !next.OK {
		r.OK = false
		r.err = next.Err()
	}
	return r
}

func failed(err error) Result { return Result{err: err} }

// ---------------- Frame exchange ----------------

// exchange clocks n bytes of d.w out and n bytes into d.r with the chip
// selected. Chip select is released on every path.
func (d *Device) exchange(n int) error {
	d.cs(false)
	defer d.cs(true)
	if err := d.spi.Tx(d.w[:n], d.r[:n]); err != nil {
		return &busError{err: err}
	}
	return nil
}

// ReadStatus reads the status word.
//
//	tx: F0 addr(0x01) CRC2 00
//	rx: S1 S0       CRC  ACK
func (d *Device) ReadStatus() Result {
	d.w[0] = cmdStatusRead
	d.w[1] = AddrByte(uint8(RegStatus))
	d.w[2] = CRC2([2]byte{d.w[0], d.w[1]})
	d.w[3] = 0x00
	if err := d.exchange(4); err != nil {
		return failed(err)
	}
	res := Result{
		Status: [2]byte{d.r[0], d.r[1]},
		CRC:    d.r[2],
		Ack:    d.r[3],
	}
	return res.verify(2)
}

// ReadRegister reads a 32-bit register.
//
//	tx: F4 addr CRC2 00 00 00 00  00
//	rx: S1 S0   D3   D2 D1 D0 CRC ACK
func (d *Device) ReadRegister(reg Register) Result {
	d.w[0] = cmdRegRead
	d.w[1] = AddrByte(uint8(reg))
	d.w[2] = CRC2([2]byte{d.w[0], d.w[1]})
	for i := 3; i < 8; i++ {
		d.w[i] = 0x00
	}
	if err := d.exchange(8); err != nil {
		return failed(err)
	}
	res := Result{
		Status: [2]byte{d.r[0], d.r[1]},
		Data:   [4]byte{d.r[2], d.r[3], d.r[4], d.r[5]},
		CRC:    d.r[6],
		Ack:    d.r[7],
	}
	return res.verify(6)
}

// WriteRegister writes a 32-bit register. The first payload byte goes out in
// the slot where the chip returns its CRC, so the echo is shifted by one slot
// relative to a read.
//
//	tx: F2 addr D3  D2 D1 D0 CRC6 00
//	rx: S1 S0   CRC e3 e2 e1 e0   ACK
func (d *Device) WriteRegister(reg Register, data [4]byte) Result {
	cmd := [2]byte{cmdRegWrite, AddrByte(uint8(reg))}
	d.w[0], d.w[1] = cmd[0], cmd[1]
	copy(d.w[2:6], data[:])
	d.w[6] = CRC6(cmd, data)
	d.w[7] = 0x00
	if err := d.exchange(8); err != nil {
		return failed(err)
	}
	res := Result{
		Status: [2]byte{d.r[0], d.r[1]},
		CRC:    d.r[2],
		Data:   [4]byte{d.r[3], d.r[4], d.r[5], d.r[6]},
		Ack:    d.r[7],
	}
	return res.verify(6)
}

// ChangeBits is a read-modify-write of numBits bits starting at startBit.
// Bit i of value lands at register bit startBit+i. The returned result holds
// the read frame with the modified payload; it is OK only if both the read
// and the write were acknowledged and verified.
//
// A failed read (NACK, CRC mismatch or bus error) ends the operation after
// one frame: no write frame is issued, unlike an unconditional
// read-then-write, so a corrupt payload is never written back.
func (d *Device) ChangeBits(reg Register, startBit, numBits uint8, value uint32) Result {
	f := Field{Start: startBit, Width: numBits}
	if !f.valid() {
		return failed(ErrFieldRange)
	}
	rd := d.ReadRegister(reg)
	if !rd.OK {
		return rd
	}
	rd.Data = SetBits(rd.Data, f, value)
	return rd.and(d.WriteRegister(reg, rd.Data))
}

// ChangeField is ChangeBits for a Field.
func (d *Device) ChangeField(reg Register, f Field, value uint32) Result {
	return d.ChangeBits(reg, f.Start, f.Width, value)
}
