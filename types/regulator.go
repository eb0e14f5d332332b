package types

// ------------------------
// Regulator (lt8722)
// ------------------------

// Retained info: hal/cap/power/regulator/<name>/info
type RegulatorInfo struct {
	Chip string `json:"chip"` // "lt8722"
	Bus  string `json:"bus"`  // "spi0", "/dev/spidev0.0", "sim"
	ADC  bool   `json:"adc"`  // AOUT readback available
}

// Retained value: hal/cap/power/regulator/<name>/value
type RegulatorValue struct {
	Status  uint16  `json:"status"`  // raw SPIS_STATUS low half
	Command uint32  `json:"command"` // raw SPIS_COMMAND
	Volts   float64 `json:"volts"`   // output set point from the DAC register
	TS      int64   `json:"ts_ns"`
}

// Controls

type RegulatorSetVoltage struct{ Volts float64 } // verb: "set_voltage"

// RegulatorRamp moves the DAC input (not the output) from From to To.
// verb: "ramp"
type RegulatorRamp struct {
	From, To, Step float64
	DurationMs     uint32
}

// RegulatorLimits is a partial update. Nil means "leave as-is".
// verb: "set_limits"
type RegulatorLimits struct {
	PosVolts *float64 `json:"pos_volts,omitempty"`
	NegVolts *float64 `json:"neg_volts,omitempty"`
	PosAmps  *float64 `json:"pos_amps,omitempty"`
	NegAmps  *float64 `json:"neg_amps,omitempty"`
}

// RegulatorPWM carries raw register codes (lt8722 setting types).
// Nil means "leave as-is". verb: "set_pwm"
type RegulatorPWM struct {
	Freq       *uint8 `json:"freq,omitempty"`
	Adjust     *uint8 `json:"adjust,omitempty"`
	Duty       *uint8 `json:"duty,omitempty"`
	LDO        *uint8 `json:"ldo,omitempty"`
	Inductor   *uint8 `json:"inductor,omitempty"`
	PowerLimit *uint8 `json:"power_limit,omitempty"`
}

// AnalogChannel names an AOUT signal.
type AnalogChannel string

const (
	AnalogVoltage     AnalogChannel = "voltage"
	AnalogCurrent     AnalogChannel = "current"
	AnalogTemperature AnalogChannel = "temperature"
)

type RegulatorAnalog struct{ Channel AnalogChannel } // verb: "read_analog"

// Reply to "read_analog". Volts, amps or degrees C depending on Channel.
type RegulatorAnalogValue struct {
	Channel AnalogChannel `json:"channel"`
	Value   float64       `json:"value"`
}

// RegulatorConfig holds start-up settings for one regulator. The retained
// config/regulator payload is a JSON object of these keyed by name.
type RegulatorConfig struct {
	Limits    *RegulatorLimits `json:"limits,omitempty"`
	PWM       *RegulatorPWM    `json:"pwm,omitempty"`
	SoftStart bool             `json:"soft_start,omitempty"`
	Volts     *float64         `json:"volts,omitempty"`
}
