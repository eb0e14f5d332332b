// Package sim is a register-level LT8722 model that speaks the SPI frame
// protocol. It implements drivers.SPI so the driver, the regulator service
// and host tools can run without hardware.
package sim

import (
	"errors"
	"sync"

	"lt8722-go/drivers/lt8722"
)

// Fault forces a frame to fail in a specific way.
type Fault uint8

const (
	FaultNone Fault = iota
	FaultNack       // ACK slot returns NackByte
	FaultCRC        // CRC slot is corrupted
	FaultBus        // Tx returns ErrBus
)

var (
	ErrBus         = errors.New("sim: bus fault")
	ErrNotSelected = errors.New("sim: chip select not asserted")
	ErrFrameLength = errors.New("sim: bad frame length")
)

// Chip is a simulated LT8722. The zero value is not usable; call New.
type Chip struct {
	mu sync.Mutex

	regs   [8]uint32
	csLow  bool
	frames int

	// Fault applies to every frame while set.
	Fault Fault
	// faults applies once to the frame with the given index (0-based).
	faults map[int]Fault

	// Frames sent by the host, in order.
	Log [][]byte
	// Selects counts chip-select assertions.
	Selects int
}

// New returns a chip with all registers at zero.
func New() *Chip {
	return &Chip{faults: make(map[int]Fault)}
}

// CS is the chip-select line; wire it as the driver's PinOutput.
func (c *Chip) CS(level bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !level && !c.csLow {
		c.Selects++
	}
	c.csLow = !level
}

// Selected reports whether chip select is currently asserted.
func (c *Chip) Selected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csLow
}

// InjectAt makes the frame with index n (counting from 0) fail with f.
func (c *Chip) InjectAt(n int, f Fault) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.faults[n] = f
}

// Frames returns the number of frames seen so far.
func (c *Chip) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Reg returns a register value.
func (c *Chip) Reg(r lt8722.Register) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[r]
}

// SetReg presets a register value.
func (c *Chip) SetReg(r lt8722.Register, v uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regs[r] = v
}

// LastFrame returns a copy of the most recent frame, or nil.
func (c *Chip) LastFrame() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Log) == 0 {
		return nil
	}
	return append([]byte(nil), c.Log[len(c.Log)-1]...)
}

// Transfer implements drivers.SPI. The chip only accepts whole frames.
func (c *Chip) Transfer(b byte) (byte, error) { return 0, ErrFrameLength }

// Tx implements drivers.SPI: one call is one frame.
func (c *Chip) Tx(w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.frames
	c.frames++
	c.Log = append(c.Log, append([]byte(nil), w...))

	fault := c.Fault
	if f, ok := c.faults[idx]; ok {
		fault = f
		delete(c.faults, idx)
	}
	if fault == FaultBus {
		return ErrBus
	}
	if !c.csLow {
		return ErrNotSelected
	}
	if len(r) < len(w) {
		return ErrFrameLength
	}

	out, ok := c.frame(w)
	if !ok {
		return ErrFrameLength
	}
	switch fault {
	case FaultNack:
		out[len(out)-1] = lt8722.NackByte
	case FaultCRC:
		crcSlot := len(out) - 2
		if len(out) == 8 && w[0] == 0xF2 {
			crcSlot = 2
		}
		out[crcSlot] ^= 0xFF
	}
	copy(r, out)
	return nil
}

// frame decodes one host frame and builds the chip's reply.
func (c *Chip) frame(w []byte) ([]byte, bool) {
	if len(w) < 4 {
		return nil, false
	}
	cmd := [2]byte{w[0], w[1]}
	addr := w[1] >> 1
	st := uint16(c.regs[lt8722.RegStatus])
	status := [2]byte{byte(st >> 8), byte(st)}

	switch w[0] {
	case 0xF0:
		out := []byte{status[0], status[1], lt8722.CRC2(status), lt8722.AckByte}
		if w[2] != lt8722.CRC2(cmd) {
			out[3] = lt8722.NackByte
		}
		return out, true

	case 0xF4:
		if len(w) != 8 {
			return nil, false
		}
		var data [4]byte
		ack := byte(lt8722.AckByte)
		switch {
		case w[2] != lt8722.CRC2(cmd):
			ack = lt8722.NackByte
		case int(addr) >= len(c.regs):
			ack = lt8722.UnsupportedAddrByte
		default:
			v := c.regs[addr]
			data = [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
		}
		return []byte{status[0], status[1], data[0], data[1], data[2], data[3],
			lt8722.CRC6(status, data), ack}, true

	case 0xF2:
		if len(w) != 8 {
			return nil, false
		}
		data := [4]byte{w[2], w[3], w[4], w[5]}
		ack := byte(lt8722.AckByte)
		switch {
		case w[6] != lt8722.CRC6(cmd, data):
			ack = lt8722.NackByte
		case int(addr) >= len(c.regs):
			ack = lt8722.UnsupportedAddrByte
		default:
			c.write(lt8722.Register(addr), data)
		}
		return []byte{status[0], status[1], lt8722.CRC6(status, data),
			data[0], data[1], data[2], data[3], ack}, true
	}
	return nil, false
}

func (c *Chip) write(reg lt8722.Register, data [4]byte) {
	v := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	if reg == lt8722.RegCommand && v&(1<<14) != 0 {
		// SPI_RST: everything but status returns to reset state.
		st := c.regs[lt8722.RegStatus]
		c.regs = [8]uint32{}
		c.regs[lt8722.RegStatus] = st
		return
	}
	c.regs[reg] = v
}
