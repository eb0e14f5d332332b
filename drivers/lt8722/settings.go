package lt8722

// Closed sets of register codes.

// VoltageLimit is the output clamp in 1.25 V steps (SPIS_OV_CLAMP / SPIS_UV_CLAMP).
type VoltageLimit uint8

const (
	VoltageLimit1_25 VoltageLimit = iota
	VoltageLimit2_50
	VoltageLimit3_75
	VoltageLimit5_00
	VoltageLimit6_25
	VoltageLimit7_50
	VoltageLimit8_75
	VoltageLimit10_00
	VoltageLimit11_25
	VoltageLimit12_50
	VoltageLimit13_75
	VoltageLimit15_00
	VoltageLimit16_25
	VoltageLimit17_50
	VoltageLimit18_75
	VoltageLimit20_00
)

// Volts returns the clamp magnitude.
func (l VoltageLimit) Volts() float64 { return 1.25 * float64(l+1) }

// VoltageLimitFor returns the smallest limit >= volts, capped at 20 V.
func VoltageLimitFor(volts float64) VoltageLimit {
	for l := VoltageLimit1_25; l < VoltageLimit20_00; l++ {
		if l.Volts() >= volts {
			return l
		}
	}
	return VoltageLimit20_00
}

// PWMFreq selects the switching frequency (SW_FRQ_SET).
type PWMFreq uint8

const (
	PWM0_5MHz PWMFreq = iota
	PWM1_0MHz
	PWM1_5MHz
	PWM2_0MHz
	PWM2_5MHz
	PWM3_0MHz
)

// PWMAdjust trims the switching frequency (SW_FRQ_ADJ).
type PWMAdjust uint8

const (
	PWMAdjust0     PWMAdjust = 0x0
	PWMAdjustPlus  PWMAdjust = 0x1 // +15 %
	PWMAdjustMinus PWMAdjust = 0x2 // -15 %
)

// PWMDuty selects the duty cycle limits (SYS_DC).
type PWMDuty uint8

const (
	PWMDuty20_80 PWMDuty = iota
	PWMDuty15_85
	PWMDuty10_90
)

// LDOVoltage selects the VCC LDO regulation point (VCC_VREG).
type LDOVoltage uint8

const (
	LDO3_1V LDOVoltage = 0x0
	LDO3_4V LDOVoltage = 0x1
)

// InductorCurrent is the typical peak inductor current after the BST-SW
// refresh period (SW_VC_INT).
type InductorCurrent uint8

const (
	Inductor0_252A InductorCurrent = iota
	Inductor0_594A
	Inductor0_936A
	Inductor1_278A
	Inductor1_620A
	Inductor1_962A
	Inductor2_304A
	Inductor2_646A
)

// PowerLimit is the linear stage MOSFET power limit (PWR_LIM).
type PowerLimit uint8

const (
	PowerLimit2_0W PowerLimit = 0x0
	PowerLimitNone PowerLimit = 0x5
	PowerLimit3_0W PowerLimit = 0xA
	PowerLimit3_5W PowerLimit = 0xF
)

// AnalogOutput selects the AOUT signal for readback.
type AnalogOutput uint8

const (
	AnalogVoltage     AnalogOutput = 0x3
	AnalogCurrent     AnalogOutput = 0x4
	AnalogTemperature AnalogOutput = 0x8

	analogRef1V25 AnalogOutput = 0x6
	analogRef1V65 AnalogOutput = 0x7
)
