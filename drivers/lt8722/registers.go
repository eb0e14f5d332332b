package lt8722

// Register is a 7-bit register address. All registers are 32 bits wide.
type Register uint8

const (
	RegCommand         Register = 0x00 // SPIS_COMMAND
	RegStatus          Register = 0x01 // SPIS_STATUS, bits 10:0
	RegNegCurrentLimit Register = 0x02 // SPIS_DAC_ILIMN
	RegPosCurrentLimit Register = 0x03 // SPIS_DAC_ILIMP
	RegOutputVoltage   Register = 0x04 // SPIS_DAC
	RegPosVoltageLimit Register = 0x05 // SPIS_OV_CLAMP
	RegNegVoltageLimit Register = 0x06 // SPIS_UV_CLAMP
	RegAnalogMux       Register = 0x07 // SPIS_AMUX

	numRegisters = 8
)

// Frame bytes.
const (
	cmdStatusRead = 0xF0
	cmdRegWrite   = 0xF2
	cmdRegRead    = 0xF4

	// AckByte is returned in the last slot of every accepted frame.
	AckByte = 0xA5
	// NackByte is returned for frames with a bad CRC.
	NackByte = 0xC3
	// UnsupportedAddrByte is returned for addresses outside the register map.
	UnsupportedAddrByte = 0x0F
)

// AddrByte frames a register address: address in bits 7:1, bit 0 cleared.
func AddrByte(addr uint8) byte { return (addr << 1) & 0xFE }

// Field is a bit range inside a 32-bit register. Bit 0 is the LSB.
type Field struct {
	Start uint8
	Width uint8
}

func (f Field) valid() bool {
	return f.Width > 0 && int(f.Start)+int(f.Width) <= 32
}

// Mask returns the field mask aligned to bit 0.
func (f Field) Mask() uint32 {
	if f.Width >= 32 {
		return 0xFFFFFFFF
	}
	return 1<<f.Width - 1
}

// Symbol names a field of the command register. The value of each symbol is
// the field's start bit.
type Symbol uint8

const (
	EnableReq   Symbol = 0  // ENABLE_REQ: enable the linear power stage
	SwitchEnReq Symbol = 1  // SWEN_REQ: enable the PWM switching stage
	SwFreqSet   Symbol = 2  // SW_FRQ_SET: PWM switching frequency
	SwFreqAdj   Symbol = 5  // SW_FRQ_ADJ: PWM frequency adjustment
	SysDC       Symbol = 7  // SYS_DC: PWM duty cycle limits
	VCCVReg     Symbol = 9  // VCC_VREG: VCC LDO regulation
	SwVCInt     Symbol = 11 // SW_VC_INT: peak inductor current after BST-SW refresh
	SPIReset    Symbol = 14 // SPI_RST: reset all registers except status
	PowerLim    Symbol = 15 // PWR_LIM: linear stage MOSFET power limit
)

// commandFields is the SPIS_COMMAND bit map. Ranges are disjoint.
var commandFields = map[Symbol]Field{
	EnableReq:   {Start: 0, Width: 1},
	SwitchEnReq: {Start: 1, Width: 1},
	SwFreqSet:   {Start: 2, Width: 3},
	SwFreqAdj:   {Start: 5, Width: 2},
	SysDC:       {Start: 7, Width: 2},
	VCCVReg:     {Start: 9, Width: 1},
	SwVCInt:     {Start: 11, Width: 3},
	SPIReset:    {Start: 14, Width: 1},
	PowerLim:    {Start: 15, Width: 4},
}

// Field returns the command-register field owned by s.
func (s Symbol) Field() (Field, bool) {
	f, ok := commandFields[s]
	return f, ok
}

func (s Symbol) String() string {
	switch s {
	case EnableReq:
		return "ENABLE_REQ"
	case SwitchEnReq:
		return "SWEN_REQ"
	case SwFreqSet:
		return "SW_FRQ_SET"
	case SwFreqAdj:
		return "SW_FRQ_ADJ"
	case SysDC:
		return "SYS_DC"
	case VCCVReg:
		return "VCC_VREG"
	case SwVCInt:
		return "SW_VC_INT"
	case SPIReset:
		return "SPI_RST"
	case PowerLim:
		return "PWR_LIM"
	default:
		return "unknown"
	}
}

// SPIS_AMUX fields.
var (
	fieldAnalogEnable = Field{Start: 6, Width: 1} // AOUT_EN
	fieldAnalogMux    = Field{Start: 0, Width: 4} // AMUX
)
