// Package lt8722 provides a TinyGo driver for the LT8722 bidirectional
// TEC/DC-DC regulator with integrated linear power stage.
//
// Design notes (datasheet references):
// • SPI mode 0, chip select active-low framing one transaction.
// • Every frame carries a CRC-8 (poly 0x07) and ends with an ACK (0xA5) slot.
// • All registers are 32 bits, transmitted MSB first.
// • Sub-register fields are changed by read-modify-write.
// • Output is set through a 32-bit two's complement DAC around 1.25 V.
//
// Transactions return a Result; device-level operations fold the results of
// every frame they issue into a single error.
package lt8722

import (
	"math"
	"time"

	"lt8722-go/x/ramp"

	"tinygo.org/x/drivers"
)

// AnalogReader samples the ADC wired to the AOUT pin, in millivolts.
type AnalogReader func() (mV int32, err error)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// ADC reads the AOUT pin. ReadAnalog returns ErrNoADC without it.
	ADC AnalogReader
	// SettleDelay is the wait after status resets in SoftStart. Default 2 ms.
	SettleDelay time.Duration
	// AnalogSettle is the wait after switching AMUX. Default 10 ms.
	AnalogSettle time.Duration
	// Soft-start ramp of the DAC from 2.5 V down to 1.25 V (0 V output).
	// Defaults 0.01 V per step over 20 ms.
	RampStep     float64
	RampDuration time.Duration
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

// DefaultConfig returns the timings used by the evaluation board firmware.
func DefaultConfig() Config {
	return Config{
		SettleDelay:  2 * time.Millisecond,
		AnalogSettle: 10 * time.Millisecond,
		RampStep:     0.01,
		RampDuration: 20 * time.Millisecond,
		Sleep:        time.Sleep,
	}
}

// Device wraps an SPI connection to an LT8722.
type Device struct {
	spi drivers.SPI
	cs  PinOutput
	cfg Config

	// Fixed frame buffers to avoid per-call heap allocations.
	w [8]byte
	r [8]byte
}

// New creates a Device. The SPI bus must already be configured. cs may be nil
// when the bus frames chip select itself (e.g. Linux spidev).
// New does not touch the device; call Configure.
func New(spi drivers.SPI, cs PinOutput, cfg Config) *Device {
	def := DefaultConfig()
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = def.SettleDelay
	}
	if cfg.AnalogSettle <= 0 {
		cfg.AnalogSettle = def.AnalogSettle
	}
	if cfg.RampStep <= 0 {
		cfg.RampStep = def.RampStep
	}
	if cfg.RampDuration <= 0 {
		cfg.RampDuration = def.RampDuration
	}
	if cfg.Sleep == nil {
		cfg.Sleep = def.Sleep
	}
	if cs == nil {
		cs = func(bool) {}
	}
	return &Device{spi: spi, cs: cs, cfg: cfg}
}

// Configure releases chip select and resets all registers.
func (d *Device) Configure() error {
	d.cs(true)
	return d.Reset()
}

// firstErr folds a sequence of results into one error.
func firstErr(rs ...Result) error {
	for _, r := range rs {
		if err := r.Err(); err != nil {
			return err
		}
	}
	return nil
}

// ---------------- Register-level helpers ----------------

// SetCommand writes value into the command-register field named by sym.
// Unknown symbols fail without a bus transaction.
func (d *Device) SetCommand(sym Symbol, value uint32) Result {
	f, ok := sym.Field()
	if !ok {
		return failed(ErrUnknownSymbol)
	}
	return d.ChangeField(RegCommand, f, value)
}

// ResetRegisters pulses SPI_RST, resetting every register except status.
func (d *Device) ResetRegisters() Result {
	first := d.SetCommand(SPIReset, 1)
	return d.SetCommand(SPIReset, 0).and(first)
}

// ResetStatusRegister clears SPIS_STATUS.
func (d *Device) ResetStatusRegister() Result {
	return d.WriteRegister(RegStatus, [4]byte{})
}

// SetOutputVoltage writes a DAC voltage (not the output voltage) to SPIS_DAC.
func (d *Device) SetOutputVoltage(vdac float64) Result {
	return d.WriteRegister(RegOutputVoltage, bytesOf(EncodeDAC(vdac)))
}

// RampOutputVoltage steps the DAC voltage from start to end in increments of
// step, spreading the steps over duration. It blocks until done and returns
// the readback of SPIS_DAC; the readback fails if any step failed.
func (d *Device) RampOutputVoltage(start, end, step float64, duration time.Duration) Result {
	if !finite(start) || !finite(end) || !finite(step) || step <= 0 || duration < 0 {
		return failed(ErrInvalidRamp)
	}
	var stepErr error
	ramp.Linear(start, end, step, duration,
		func(w time.Duration) bool {
			d.cfg.Sleep(w)
			return true
		},
		func(v float64) {
			if err := d.SetOutputVoltage(v).Err(); err != nil && stepErr == nil {
				stepErr = err
			}
		})
	res := d.ReadRegister(RegOutputVoltage)
	if stepErr != nil {
		return res.and(failed(stepErr))
	}
	return res
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// EnableAnalogOutput sets AOUT_EN.
func (d *Device) EnableAnalogOutput() Result {
	return d.ChangeField(RegAnalogMux, fieldAnalogEnable, 1)
}

// DisableAnalogOutput clears AOUT_EN.
func (d *Device) DisableAnalogOutput() Result {
	return d.ChangeField(RegAnalogMux, fieldAnalogEnable, 0)
}

// SetAnalogOutput selects the AMUX channel.
func (d *Device) SetAnalogOutput(ch AnalogOutput) Result {
	return d.ChangeField(RegAnalogMux, fieldAnalogMux, uint32(ch))
}

// ---------------- Power sequencing ----------------

// SoftStart brings the output up without a large inrush current: linear
// stage first with the DAC parked at 2.5 V, then a ramp to the 1.25 V
// midpoint (0 V output), then the switching stage.
func (d *Device) SoftStart() error {
	r0 := d.ResetRegisters()
	r1 := d.ResetStatusRegister()
	r2 := d.SetCommand(EnableReq, 1)
	r3 := d.SetOutputVoltage(2.5)
	r4 := d.ResetStatusRegister()
	d.cfg.Sleep(d.cfg.SettleDelay)
	r5 := d.RampOutputVoltage(2.5, dacMidpoint, d.cfg.RampStep, d.cfg.RampDuration)
	r6 := d.SetCommand(SwitchEnReq, 1)
	r7 := d.ResetStatusRegister()
	d.cfg.Sleep(d.cfg.SettleDelay)
	return firstErr(r0, r1, r2, r3, r4, r5, r6, r7)
}

// Reset resets all registers including status.
func (d *Device) Reset() error {
	return firstErr(d.ResetRegisters(), d.ResetStatusRegister())
}

// PowerOff clears both enable requests and the status register.
func (d *Device) PowerOff() error {
	r0 := d.SetCommand(EnableReq, 0)
	r1 := d.SetCommand(SwitchEnReq, 0)
	r2 := d.ResetStatusRegister()
	return firstErr(r0, r1, r2)
}

// SetVoltage sets the output voltage (VOUT = -16*(VDAC-1.25)).
func (d *Device) SetVoltage(vout float64) error {
	return d.SetOutputVoltage(DACForOutput(vout)).Err()
}

// Voltage reads SPIS_DAC back as an output voltage.
func (d *Device) Voltage() (float64, error) {
	r := d.ReadRegister(RegOutputVoltage)
	if err := r.Err(); err != nil {
		return 0, err
	}
	return OutputForDAC(DecodeDAC(r.Word())), nil
}

// Status returns SPIS_STATUS bits 10:0.
func (d *Device) Status() (uint16, error) {
	r := d.ReadStatus()
	return r.StatusWord(), r.Err()
}

// Command returns SPIS_COMMAND.
func (d *Device) Command() (uint32, error) {
	r := d.ReadRegister(RegCommand)
	return r.Word(), r.Err()
}

// ---------------- Limits ----------------

func (d *Device) SetPositiveVoltageLimit(l VoltageLimit) error {
	return d.WriteRegister(RegPosVoltageLimit, [4]byte{0, 0, 0, byte(l) & 0x0F}).Err()
}

func (d *Device) SetNegativeVoltageLimit(l VoltageLimit) error {
	return d.WriteRegister(RegNegVoltageLimit, [4]byte{0, 0, 0, negVoltageCode(l)}).Err()
}

// SetPositiveCurrentLimit sets the sourcing current limit in amps.
func (d *Device) SetPositiveCurrentLimit(amps float64) error {
	return d.WriteRegister(RegPosCurrentLimit, u16Payload(posCurrentCode(amps))).Err()
}

// SetNegativeCurrentLimit sets the sinking current limit; amps is the magnitude.
func (d *Device) SetNegativeCurrentLimit(amps float64) error {
	return d.WriteRegister(RegNegCurrentLimit, u16Payload(negCurrentCode(amps))).Err()
}

// ---------------- PWM / LDO settings ----------------

func (d *Device) SetPWMFreq(v PWMFreq) error { return d.SetCommand(SwFreqSet, uint32(v)).Err() }

func (d *Device) SetPWMAdjust(v PWMAdjust) error { return d.SetCommand(SwFreqAdj, uint32(v)).Err() }

func (d *Device) SetPWMDuty(v PWMDuty) error { return d.SetCommand(SysDC, uint32(v)).Err() }

func (d *Device) SetLDOVoltage(v LDOVoltage) error { return d.SetCommand(VCCVReg, uint32(v)).Err() }

func (d *Device) SetPeakInductorCurrent(v InductorCurrent) error {
	return d.SetCommand(SwVCInt, uint32(v)).Err()
}

func (d *Device) SetPowerLimit(v PowerLimit) error { return d.SetCommand(PowerLim, uint32(v)).Err() }
