package main

import (
	"lt8722-go/drivers/lt8722"
	"lt8722-go/drivers/lt8722/sim"

	"tinygo.org/x/drivers"
)

func openSim() (drivers.SPI, lt8722.PinOutput, string, func() error, error) {
	chip := sim.New()
	println("Info: no device node given, using the simulated chip")
	return chip, chip.CS, "sim", func() error { return nil }, nil
}
