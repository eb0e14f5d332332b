//go:build linux

package main

import (
	"lt8722-go/drivers/lt8722"
	"lt8722-go/platform/linux"

	"tinygo.org/x/drivers"
)

// openSPI returns the simulator when path is empty. spidev frames chip select
// itself, so no PinOutput is returned for it.
func openSPI(path string, speedHz uint32) (drivers.SPI, lt8722.PinOutput, string, func() error, error) {
	if path == "" {
		return openSim()
	}
	d, err := linux.OpenSPI(path, linux.SPIConfig{Mode: 0, Bits: 8, SpeedHz: speedHz})
	if err != nil {
		return nil, nil, "", nil, err
	}
	return d, nil, path, d.Close, nil
}
