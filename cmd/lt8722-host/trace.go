package main

import (
	"io"

	"lt8722-go/x/conv"

	"tinygo.org/x/drivers"
)

// tracer logs each frame as "tx: .. rx: ..".
type tracer struct {
	spi drivers.SPI
	out io.Writer
	buf []byte
}

func (t *tracer) Tx(w, r []byte) error {
	err := t.spi.Tx(w, r)
	t.buf = append(t.buf[:0], "tx: "...)
	t.buf = conv.AppendBytes(t.buf, w)
	if len(r) >= len(w) {
		t.buf = append(t.buf, "  rx: "...)
		t.buf = conv.AppendBytes(t.buf, r[:len(w)])
	}
	if err != nil {
		t.buf = append(t.buf, "  err: "...)
		t.buf = append(t.buf, err.Error()...)
	}
	t.out.Write(append(t.buf, '\n'))
	return err
}

func (t *tracer) Transfer(b byte) (byte, error) { return t.spi.Transfer(b) }
