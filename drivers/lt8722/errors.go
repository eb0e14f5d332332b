package lt8722

import "errors"

// Errors returned by the driver.
var (
	// ErrCommunication is matched (errors.Is) by every transaction failure.
	ErrCommunication = errors.New("lt8722: communication error")

	ErrNack error = commError("lt8722: acknowledge mismatch")
	ErrCRC  error = commError("lt8722: crc mismatch")

	ErrUnknownSymbol = errors.New("lt8722: unknown command symbol")
	ErrFieldRange    = errors.New("lt8722: bit field outside register")
	ErrNoADC         = errors.New("lt8722: no analog reader configured")
	ErrInvalidRamp   = errors.New("lt8722: invalid ramp parameters")
	ErrInvalidAnalog = errors.New("lt8722: invalid analog output selection")
)

type commError string

func (e commError) Error() string        { return string(e) }
func (e commError) Is(target error) bool { return target == ErrCommunication }

// busError wraps a failure reported by the SPI implementation.
type busError struct{ err error }

func (e *busError) Error() string        { return "lt8722: bus: " + e.err.Error() }
func (e *busError) Unwrap() error        { return e.err }
func (e *busError) Is(target error) bool { return target == ErrCommunication }
