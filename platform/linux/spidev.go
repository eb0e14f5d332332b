//go:build linux

// Package linux provides a drivers.SPI backed by the Linux spidev interface,
// so the regulator driver can run from a host with an SPI controller.
package linux

import (
	"errors"
	"sync"

	"golang.org/x/exp/io/spi"
)

var (
	ErrClosed = errors.New("spidev: closed")
	ErrLength = errors.New("spidev: read buffer shorter than write buffer")
	ErrMode   = errors.New("spidev: mode must be 0..3")
)

// SPIConfig is applied when the device is opened. Zero fields keep defaults.
type SPIConfig struct {
	Mode    uint8  // SPI mode 0..3, default 0
	Bits    uint8  // bits per word, default 8
	SpeedHz uint32 // default 1 MHz
}

// conn is the part of *spi.Device the adapter uses.
type conn interface {
	Tx(w, r []byte) error
	Close() error
}

// SPIDev adapts one /dev/spidevB.C node to drivers.SPI. Each Tx is a single
// kernel transfer, so the controller frames chip select around it.
type SPIDev struct {
	mu  sync.Mutex
	dev conn
}

// OpenSPI opens and configures a spidev node.
func OpenSPI(path string, cfg SPIConfig) (*SPIDev, error) {
	if cfg.Mode > 3 {
		return nil, ErrMode
	}
	if cfg.Bits == 0 {
		cfg.Bits = 8
	}
	if cfg.SpeedHz == 0 {
		cfg.SpeedHz = 1_000_000
	}
	d, err := spi.Open(&spi.Devfs{
		Dev:      path,
		Mode:     spi.Mode(cfg.Mode),
		MaxSpeed: int64(cfg.SpeedHz),
	})
	if err != nil {
		return nil, err
	}
	if err := d.SetBitsPerWord(int(cfg.Bits)); err != nil {
		d.Close()
		return nil, err
	}
	return &SPIDev{dev: d}, nil
}

// Tx implements drivers.SPI. r may be nil; otherwise it must be at least as
// long as w.
func (d *SPIDev) Tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return ErrClosed
	}
	if r != nil && len(r) < len(w) {
		return ErrLength
	}
	if len(w) == 0 {
		return nil
	}
	if r != nil {
		r = r[:len(w)]
	}
	return d.dev.Tx(w, r)
}

// Transfer implements drivers.SPI for a single byte.
func (d *SPIDev) Transfer(b byte) (byte, error) {
	var r [1]byte
	err := d.Tx([]byte{b}, r[:])
	return r[0], err
}

func (d *SPIDev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return nil
	}
	err := d.dev.Close()
	d.dev = nil
	return err
}
