package lt8722

// AOUT scaling.
const (
	aoutVoltageGain = 16.0     // VOUT = (V1P25 - AOUT) * 16
	aoutCurrentGain = 8.0      // IOUT = (V1P65 - AOUT) * 8
	aoutTempOffset  = 1.421125 // AOUT at 0 °C
	aoutTempSlope   = 0.004715 // V per °C
)

// ReadAnalog routes sel to AOUT, samples it and converts it to volts, amps or
// °C. Voltage and current are measured against their on-chip references to
// cancel ADC offset. AOUT is disabled again before returning.
func (d *Device) ReadAnalog(sel AnalogOutput) (float64, error) {
	if d.cfg.ADC == nil {
		return 0, ErrNoADC
	}
	var ref AnalogOutput
	switch sel {
	case AnalogVoltage:
		ref = analogRef1V25
	case AnalogCurrent:
		ref = analogRef1V65
	case AnalogTemperature:
	default:
		return 0, ErrInvalidAnalog
	}

	en := d.EnableAnalogOutput()
	v, rSel, err := d.sample(sel)
	if err != nil {
		d.DisableAnalogOutput()
		return 0, err
	}
	var vRef float64
	rRef := Result{OK: true}
	if ref != 0 {
		if vRef, rRef, err = d.sample(ref); err != nil {
			d.DisableAnalogOutput()
			return 0, err
		}
	}
	dis := d.DisableAnalogOutput()
	if err := firstErr(en, rSel, rRef, dis); err != nil {
		return 0, err
	}

	switch sel {
	case AnalogVoltage:
		return (vRef - v) * aoutVoltageGain, nil
	case AnalogCurrent:
		return (vRef - v) * aoutCurrentGain, nil
	default:
		return (v - aoutTempOffset) / aoutTempSlope, nil
	}
}

// sample selects ch, waits for AOUT to settle and reads it in volts.
func (d *Device) sample(ch AnalogOutput) (float64, Result, error) {
	r := d.SetAnalogOutput(ch)
	d.cfg.Sleep(d.cfg.AnalogSettle)
	mV, err := d.cfg.ADC()
	if err != nil {
		return 0, r, err
	}
	return float64(mV) / 1000, r, nil
}
