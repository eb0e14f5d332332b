// Command lt8722-host drives an LT8722 from a Linux host over spidev, or a
// simulated chip when no device node is given, through the line console.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"lt8722-go/bus"
	"lt8722-go/drivers/lt8722"
	"lt8722-go/services/config"
	"lt8722-go/services/console"
	"lt8722-go/services/heartbeat"
	"lt8722-go/services/regulator"
)

func main() {
	var (
		dev   = flag.String("dev", "", "spidev node, e.g. /dev/spidev0.0 (empty: simulator)")
		speed = flag.Uint("speed", 1_000_000, "SPI clock in Hz")
		name  = flag.String("name", "main", "regulator name on the bus")
		cfgIn = flag.String("config", "", "JSON config file (default: embedded host config)")
		start = flag.Bool("start", false, "soft start after reset")
		trace = flag.Bool("trace", false, "print every SPI frame to stderr")
	)
	flag.Parse()

	spi, cs, busName, closeSPI, err := openSPI(*dev, uint32(*speed))
	if err != nil {
		println("Error:", err.Error())
		os.Exit(1)
	}
	defer closeSPI()
	if *trace {
		spi = &tracer{spi: spi, out: os.Stderr}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(16)
	cfgConn := b.NewConnection("config")
	if *cfgIn != "" {
		raw, err := os.ReadFile(*cfgIn)
		if err == nil {
			err = config.Publish(cfgConn, raw)
		}
		if err != nil {
			println("Error: config:", err.Error())
			os.Exit(1)
		}
	} else if err := config.New("host").Start(ctx, cfgConn); err != nil {
		println("Warn: config:", err.Error())
	}

	svc, err := regulator.New(lt8722.New(spi, cs, lt8722.DefaultConfig()), regulator.Params{
		Name: *name,
		Bus:  busName,
	})
	if err != nil {
		println("Error:", err.Error())
		os.Exit(1)
	}
	if err := svc.Start(ctx, b.NewConnection("regulator")); err != nil {
		println("Error:", err.Error())
		os.Exit(1)
	}

	hb := &heartbeat.Service{Name: *name}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	con := console.New(b.NewConnection("console"), os.Stdout, console.Config{Name: *name, Prompt: "lt8722> "})
	if *start {
		println("Info: soft start:", con.Exec(ctx, "start"))
	}
	if err := con.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		println("Warn: console:", err.Error())
	}
	stop()
	<-svc.Done()
}
