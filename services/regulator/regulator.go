// Package regulator exposes one LT8722 on the bus. A single goroutine owns the
// driver; requests arrive on hal/cap/<domain>/regulator/<name>/control/<verb>
// and are answered on the message's ReplyTo topic.
package regulator

import (
	"context"
	"encoding/json"
	"time"

	"lt8722-go/bus"
	"lt8722-go/drivers/lt8722"
	"lt8722-go/errcode"
	"lt8722-go/types"
)

// Params defines naming and behaviour for one regulator instance.
type Params struct {
	Name   string // required
	Domain string // default "power"
	Bus    string // informational, e.g. "spi0"
	ADC    bool   // AOUT is wired to an ADC

	// SkipReset leaves the registers untouched at start.
	SkipReset bool
}

// TopicConfig carries start-up settings for all regulators, keyed by name.
var TopicConfig = bus.T("config", "regulator")

// Verbs accepted on the control topic.
const (
	VerbSoftStart  = "soft_start"
	VerbPowerOff   = "power_off"
	VerbReset      = "reset"
	VerbSetVoltage = "set_voltage"
	VerbRamp       = "ramp"
	VerbSetLimits  = "set_limits"
	VerbSetPWM     = "set_pwm"
	VerbRead       = "read"
	VerbReadAnalog = "read_analog"
)

// Service is a single-owner bus front end for an lt8722.Device.
type Service struct {
	params Params
	addr   types.CapabilityAddress
	base   bus.Topic

	// Owned by the worker only:
	dev  *lt8722.Device
	conn *bus.Connection
	ctl  *bus.Subscription
	cfg  *bus.Subscription
	link types.Link

	done chan struct{}
}

// New validates p. dev must not be used by anyone else once the service runs.
func New(dev *lt8722.Device, p Params) (*Service, error) {
	if dev == nil || p.Name == "" {
		return nil, errcode.InvalidParams
	}
	if p.Domain == "" {
		p.Domain = "power"
	}
	return &Service{
		params: p,
		addr:   types.CapabilityAddress{Domain: p.Domain, Kind: types.KindRegulator, Name: p.Name},
		base:   Base(p.Domain, p.Name),
		dev:    dev,
	}, nil
}

// Base returns hal/cap/<domain>/regulator/<name>.
func Base(domain, name string) bus.Topic {
	return bus.T("hal", "cap", domain, string(types.KindRegulator), name)
}

// Control returns the control topic for verb.
func Control(domain, name, verb string) bus.Topic {
	return Base(domain, name).Append("control", verb)
}

// Start subscribes to the control topics, publishes the retained info and
// runs the worker until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if s.done != nil {
		return errcode.Busy
	}
	s.conn = conn
	s.ctl = conn.Subscribe(s.base.Append("control", "+"))
	s.cfg = conn.Subscribe(TopicConfig)
	s.done = make(chan struct{})

	conn.Publish(conn.NewMessage(s.base.Append("info"), types.Info{
		SchemaVersion: 1,
		Driver:        "lt8722",
		Address:       s.addr,
		Detail: types.RegulatorInfo{
			Chip: "lt8722",
			Bus:  s.params.Bus,
			ADC:  s.params.ADC,
		},
	}, true))

	go s.worker(ctx)
	return nil
}

// Done is closed when the worker has stopped.
func (s *Service) Done() <-chan struct{} { return s.done }

// ---- Worker ----

func (s *Service) worker(ctx context.Context) {
	defer close(s.done)
	defer s.conn.Unsubscribe(s.ctl)
	defer s.conn.Unsubscribe(s.cfg)

	if s.params.SkipReset {
		s.refresh()
	} else if err := s.dev.Configure(); err != nil {
		println("Warn: regulator", s.params.Name, "configure failed:", err.Error())
		s.publishStatus(errcode.MapDriverErr(err))
	} else {
		s.refresh()
	}
	println("Info: regulator", s.params.Name, "started")

	for {
		select {
		case <-ctx.Done():
			println("Info: regulator", s.params.Name, "stopping")
			s.link = types.LinkDown
			s.conn.Publish(s.conn.NewMessage(s.base.Append("status"),
				types.CapabilityStatus{Link: types.LinkDown, TS: time.Now().UnixNano()}, true))
			return
		case msg, ok := <-s.ctl.Channel():
			if !ok {
				return
			}
			s.handle(msg)
		case msg, ok := <-s.cfg.Channel():
			if !ok {
				return
			}
			s.applyConfig(msg.Payload)
		}
	}
}

func (s *Service) handle(msg *bus.Message) {
	verb, ok := msg.Topic[len(msg.Topic)-1].(string)
	if !ok {
		s.conn.Reply(msg, types.ErrorReply{OK: false, Error: string(errcode.InvalidTopic)}, false)
		return
	}
	reply, err := s.dispatch(verb, msg.Payload)
	if err != nil {
		code := errcode.MapDriverErr(err)
		if code == errcode.CommFailure {
			println("Warn: regulator", s.params.Name, verb+":", err.Error())
			s.publishStatus(code)
		}
		s.conn.Reply(msg, types.ErrorReply{OK: false, Error: string(code)}, false)
		return
	}
	s.conn.Reply(msg, reply, false)
}

func (s *Service) dispatch(verb string, payload any) (any, error) {
	ok := types.OKReply{OK: true}
	switch verb {
	case VerbSoftStart:
		return s.changed(ok, s.dev.SoftStart())
	case VerbPowerOff:
		return s.changed(ok, s.dev.PowerOff())
	case VerbReset:
		return s.changed(ok, s.dev.Reset())

	case VerbSetVoltage:
		v, good := decode[types.RegulatorSetVoltage](payload)
		if !good {
			return nil, errcode.InvalidPayload
		}
		return s.changed(ok, s.dev.SetVoltage(v.Volts))

	case VerbRamp:
		v, good := decode[types.RegulatorRamp](payload)
		if !good {
			return nil, errcode.InvalidPayload
		}
		d := time.Duration(v.DurationMs) * time.Millisecond
		return s.changed(ok, s.dev.RampOutputVoltage(v.From, v.To, v.Step, d).Err())

	case VerbSetLimits:
		v, good := decode[types.RegulatorLimits](payload)
		if !good {
			return nil, errcode.InvalidPayload
		}
		return s.changed(ok, s.setLimits(v))

	case VerbSetPWM:
		v, good := decode[types.RegulatorPWM](payload)
		if !good {
			return nil, errcode.InvalidPayload
		}
		if !validPWM(v) {
			return nil, errcode.InvalidParams
		}
		return s.changed(ok, s.setPWM(v))

	case VerbRead:
		val, err := s.sample()
		if err != nil {
			return nil, err
		}
		s.publishValue(val)
		return val, nil

	case VerbReadAnalog:
		v, good := decode[types.RegulatorAnalog](payload)
		if !good {
			return nil, errcode.InvalidPayload
		}
		sel, known := analogSel[v.Channel]
		if !known {
			return nil, errcode.InvalidParams
		}
		x, err := s.dev.ReadAnalog(sel)
		if err != nil {
			return nil, err
		}
		return types.RegulatorAnalogValue{Channel: v.Channel, Value: x}, nil
	}
	return nil, errcode.Unsupported
}

// changed refreshes the retained state after a state-changing verb.
func (s *Service) changed(reply any, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	s.refresh()
	return reply, nil
}

var analogSel = map[types.AnalogChannel]lt8722.AnalogOutput{
	types.AnalogVoltage:     lt8722.AnalogVoltage,
	types.AnalogCurrent:     lt8722.AnalogCurrent,
	types.AnalogTemperature: lt8722.AnalogTemperature,
}

// setLimits applies every present field and returns the first failure.
func (s *Service) setLimits(v types.RegulatorLimits) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if v.PosVolts != nil {
		keep(s.dev.SetPositiveVoltageLimit(lt8722.VoltageLimitFor(*v.PosVolts)))
	}
	if v.NegVolts != nil {
		keep(s.dev.SetNegativeVoltageLimit(lt8722.VoltageLimitFor(*v.NegVolts)))
	}
	if v.PosAmps != nil {
		keep(s.dev.SetPositiveCurrentLimit(*v.PosAmps))
	}
	if v.NegAmps != nil {
		keep(s.dev.SetNegativeCurrentLimit(*v.NegAmps))
	}
	return first
}

func validPWM(v types.RegulatorPWM) bool {
	le := func(p *uint8, hi uint8) bool { return p == nil || *p <= hi }
	if !le(v.Freq, uint8(lt8722.PWM3_0MHz)) ||
		!le(v.Adjust, uint8(lt8722.PWMAdjustMinus)) ||
		!le(v.Duty, uint8(lt8722.PWMDuty10_90)) ||
		!le(v.LDO, uint8(lt8722.LDO3_4V)) ||
		!le(v.Inductor, uint8(lt8722.Inductor2_646A)) {
		return false
	}
	if v.PowerLimit != nil {
		switch lt8722.PowerLimit(*v.PowerLimit) {
		case lt8722.PowerLimit2_0W, lt8722.PowerLimitNone, lt8722.PowerLimit3_0W, lt8722.PowerLimit3_5W:
		default:
			return false
		}
	}
	return true
}

func (s *Service) setPWM(v types.RegulatorPWM) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if v.Freq != nil {
		keep(s.dev.SetPWMFreq(lt8722.PWMFreq(*v.Freq)))
	}
	if v.Adjust != nil {
		keep(s.dev.SetPWMAdjust(lt8722.PWMAdjust(*v.Adjust)))
	}
	if v.Duty != nil {
		keep(s.dev.SetPWMDuty(lt8722.PWMDuty(*v.Duty)))
	}
	if v.LDO != nil {
		keep(s.dev.SetLDOVoltage(lt8722.LDOVoltage(*v.LDO)))
	}
	if v.Inductor != nil {
		keep(s.dev.SetPeakInductorCurrent(lt8722.InductorCurrent(*v.Inductor)))
	}
	if v.PowerLimit != nil {
		keep(s.dev.SetPowerLimit(lt8722.PowerLimit(*v.PowerLimit)))
	}
	return first
}

// ---- Configuration ----

// applyConfig applies this regulator's entry from config/regulator: limits,
// then PWM settings, then soft start, then the output voltage.
func (s *Service) applyConfig(payload any) {
	var all map[string]types.RegulatorConfig
	switch x := payload.(type) {
	case map[string]types.RegulatorConfig:
		all = x
	case json.RawMessage:
		if err := json.Unmarshal(x, &all); err != nil {
			println("Warn: regulator config:", err.Error())
			return
		}
	case []byte:
		if err := json.Unmarshal(x, &all); err != nil {
			println("Warn: regulator config:", err.Error())
			return
		}
	case nil:
		return
	default:
		println("Warn: regulator config: unexpected payload")
		return
	}
	c, ok := all[s.params.Name]
	if !ok {
		return
	}

	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if c.Limits != nil {
		keep(s.setLimits(*c.Limits))
	}
	if c.PWM != nil {
		if validPWM(*c.PWM) {
			keep(s.setPWM(*c.PWM))
		} else {
			keep(&errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "pwm setting out of range"})
		}
	}
	if c.SoftStart {
		keep(s.dev.SoftStart())
	}
	if c.Volts != nil {
		keep(s.dev.SetVoltage(*c.Volts))
	}
	if first != nil {
		println("Warn: regulator", s.params.Name, "config:", first.Error())
		if code := errcode.MapDriverErr(first); code == errcode.CommFailure {
			s.publishStatus(code)
			return
		}
	}
	println("Info: regulator", s.params.Name, "config applied")
	s.refresh()
}

// ---- Retained state ----

func (s *Service) sample() (types.RegulatorValue, error) {
	st, err := s.dev.Status()
	if err != nil {
		return types.RegulatorValue{}, err
	}
	cmd, err := s.dev.Command()
	if err != nil {
		return types.RegulatorValue{}, err
	}
	volts, err := s.dev.Voltage()
	if err != nil {
		return types.RegulatorValue{}, err
	}
	return types.RegulatorValue{
		Status:  st,
		Command: cmd,
		Volts:   volts,
		TS:      time.Now().UnixNano(),
	}, nil
}

// refresh samples the device and publishes value and status.
func (s *Service) refresh() {
	val, err := s.sample()
	if err != nil {
		s.publishStatus(errcode.MapDriverErr(err))
		return
	}
	s.publishValue(val)
}

func (s *Service) publishValue(val types.RegulatorValue) {
	s.conn.Publish(s.conn.NewMessage(s.base.Append("value"), val, true))
	s.publishStatus(errcode.OK)
}

// publishStatus publishes up for OK and degraded otherwise. Repeated "up"
// states are not republished.
func (s *Service) publishStatus(code errcode.Code) {
	st := types.CapabilityStatus{Link: types.LinkUp, TS: time.Now().UnixNano()}
	if code != errcode.OK {
		st.Link = types.LinkDegraded
		st.Error = string(code)
	} else if s.link == types.LinkUp {
		return
	}
	s.link = st.Link
	s.conn.Publish(s.conn.NewMessage(s.base.Append("status"), st, true))
}

// decode accepts T or a non-nil *T.
func decode[T any](payload any) (T, bool) {
	switch x := payload.(type) {
	case T:
		return x, true
	case *T:
		if x != nil {
			return *x, true
		}
	}
	var zero T
	return zero, false
}
