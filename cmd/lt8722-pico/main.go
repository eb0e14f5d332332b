//go:build rp2040 || rp2350

// Command lt8722-pico runs the regulator service on an RP2 board with the
// LT8722 on SPI0 and the line console on UART0.
package main

import (
	"context"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"lt8722-go/bus"
	"lt8722-go/drivers/lt8722"
	"lt8722-go/services/config"
	"lt8722-go/services/console"
	"lt8722-go/services/heartbeat"
	"lt8722-go/services/regulator"
)

// Board wiring.
const (
	pinSCK = machine.GP18
	pinSDO = machine.GP19
	pinSDI = machine.GP16
	pinCS  = machine.GP17
	pinTX  = machine.GP0
	pinRX  = machine.GP1
	pinAOU = machine.ADC0
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("Info: boot")

	if err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 1_000_000,
		Mode:      0,
		SCK:       pinSCK,
		SDO:       pinSDO,
		SDI:       pinSDI,
	}); err != nil {
		println("Error: spi0:", err.Error())
		return
	}
	cs := pinCS
	cs.Configure(machine.PinConfig{Mode: machine.PinOutput})
	cs.High()

	machine.InitADC()
	aout := machine.ADC{Pin: pinAOU}
	aout.Configure(machine.ADCConfig{})
	readAOUT := func() (int32, error) {
		// 16-bit scaled reading against a 3.3 V reference.
		return int32(uint32(aout.Get()) * 3300 / 0xFFFF), nil
	}

	cfg := lt8722.DefaultConfig()
	cfg.ADC = readAOUT
	dev := lt8722.New(machine.SPI0, cs.Set, cfg)

	ctx := context.Background()
	b := bus.NewBus(8)
	if err := config.New("pico").Start(ctx, b.NewConnection("config")); err != nil {
		println("Warn: config:", err.Error())
	}
	svc, err := regulator.New(dev, regulator.Params{Name: "main", Bus: "spi0", ADC: true})
	if err != nil {
		println("Error: regulator:", err.Error())
		return
	}
	_ = svc.Start(ctx, b.NewConnection("regulator"))
	hb := &heartbeat.Service{Name: "main"}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{BaudRate: 115200, TX: pinTX, RX: pinRX})
	con := console.New(b.NewConnection("console"), u, console.Config{Prompt: "lt8722> "})
	for {
		if err := con.Run(ctx, &lineReader{ctx: ctx, u: u}); err != nil {
			println("Warn: console:", err.Error())
		}
	}
}

// lineReader echoes input and turns carriage returns into newlines so
// terminal emulators can drive the console.
type lineReader struct {
	ctx context.Context
	u   *uartx.UART
}

func (r *lineReader) Read(p []byte) (int, error) {
	n, err := r.u.RecvSomeContext(r.ctx, p)
	for i := 0; i < n; i++ {
		if p[i] == '\r' {
			p[i] = '\n'
		}
	}
	if n > 0 {
		r.u.Write(p[:n])
	}
	return n, err
}
