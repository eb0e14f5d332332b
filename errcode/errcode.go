package errcode

import (
	"context"
	"errors"

	"lt8722-go/drivers/lt8722"
)

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Busy           Code = "busy"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidPayload Code = "invalid_payload"
	InvalidTopic   Code = "invalid_topic"
	Timeout        Code = "timeout"

	// CommFailure covers NACKs, CRC mismatches and bus faults on the SPI link.
	CommFailure Code = "comm_failure"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps regulator driver errors to a Code.
func MapDriverErr(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, lt8722.ErrCommunication):
		return CommFailure
	case errors.Is(err, lt8722.ErrUnknownSymbol),
		errors.Is(err, lt8722.ErrFieldRange),
		errors.Is(err, lt8722.ErrInvalidRamp),
		errors.Is(err, lt8722.ErrInvalidAnalog):
		return InvalidParams
	case errors.Is(err, lt8722.ErrNoADC):
		return Unsupported
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	}
	return Of(err)
}
