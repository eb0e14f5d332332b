//go:build !linux

package main

import (
	"errors"

	"lt8722-go/drivers/lt8722"

	"tinygo.org/x/drivers"
)

func openSPI(path string, _ uint32) (drivers.SPI, lt8722.PinOutput, string, func() error, error) {
	if path == "" {
		return openSim()
	}
	return nil, nil, "", nil, errors.New("spidev is only available on linux")
}
