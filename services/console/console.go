// Package console is a line-oriented operator console for a regulator
// service. Each line is split shell-style, mapped to one control verb and
// answered with one line of output.
package console

import (
	"bufio"
	"context"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"lt8722-go/bus"
	"lt8722-go/drivers/lt8722"
	"lt8722-go/services/regulator"
	"lt8722-go/types"
	"lt8722-go/x/conv"
)

// Config selects the regulator to drive.
type Config struct {
	Domain  string        // default "power"
	Name    string        // default "main"
	Timeout time.Duration // per request, default 2 s
	Prompt  string        // written before each line when non-empty
}

type Console struct {
	conn *bus.Connection
	out  io.Writer
	cfg  Config
}

func New(conn *bus.Connection, out io.Writer, cfg Config) *Console {
	if cfg.Domain == "" {
		cfg.Domain = "power"
	}
	if cfg.Name == "" {
		cfg.Name = "main"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &Console{conn: conn, out: out, cfg: cfg}
}

// Run executes lines from in until EOF or ctx is cancelled.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	c.prompt()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if line := c.Exec(ctx, sc.Text()); line != "" {
			c.println(line)
		}
		c.prompt()
	}
	return sc.Err()
}

func (c *Console) prompt() {
	if c.cfg.Prompt != "" {
		io.WriteString(c.out, c.cfg.Prompt)
	}
}

func (c *Console) println(s string) { io.WriteString(c.out, s+"\n") }

const help = "commands: start | off | reset | voltage <V> | ramp <from> <to> <step> <ms> | " +
	"limits <+V> <-V> <+A> <-A> | pwm <MHz> <0|+15|-15> <20-80|15-85|10-90> | " +
	"status | analog <voltage|current|temperature> | help"

// Exec runs one command line and returns its one-line result. Blank lines
// and comments return "".
func (c *Console) Exec(ctx context.Context, line string) string {
	args, err := shlex.Split(line)
	if err != nil {
		return "error: " + err.Error()
	}
	if len(args) == 0 {
		return ""
	}
	verb, payload, err := parse(args)
	if err != nil {
		return "error: " + err.Error()
	}
	if verb == "" {
		return help
	}

	rctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	msg := c.conn.NewMessage(regulator.Control(c.cfg.Domain, c.cfg.Name, verb), payload, false)
	reply, err := c.conn.RequestWait(rctx, msg)
	if err != nil {
		return "error: " + verb + ": " + err.Error()
	}
	return format(reply.Payload)
}

type usageError string

func (e usageError) Error() string { return "usage: " + string(e) }

type argError string

func (e argError) Error() string { return string(e) }

// parse maps a command to a control verb and payload. An empty verb means help.
func parse(args []string) (string, any, error) {
	cmd, rest := strings.ToLower(args[0]), args[1:]
	want := func(n int, usage string) error {
		if len(rest) != n {
			return usageError(usage)
		}
		return nil
	}

	switch cmd {
	case "help", "?":
		return "", nil, nil
	case "start":
		return regulator.VerbSoftStart, nil, want(0, "start")
	case "off":
		return regulator.VerbPowerOff, nil, want(0, "off")
	case "reset":
		return regulator.VerbReset, nil, want(0, "reset")
	case "status":
		return regulator.VerbRead, nil, want(0, "status")

	case "voltage":
		if err := want(1, "voltage <volts>"); err != nil {
			return "", nil, err
		}
		v, err := number(rest[0])
		if err != nil {
			return "", nil, err
		}
		return regulator.VerbSetVoltage, types.RegulatorSetVoltage{Volts: v}, nil

	case "ramp":
		if err := want(4, "ramp <from> <to> <step> <ms>"); err != nil {
			return "", nil, err
		}
		var f [3]float64
		for i := range f {
			v, err := number(rest[i])
			if err != nil {
				return "", nil, err
			}
			f[i] = v
		}
		ms, err := strconv.ParseUint(rest[3], 10, 32)
		if err != nil {
			return "", nil, argError("bad duration " + strconv.Quote(rest[3]))
		}
		return regulator.VerbRamp, types.RegulatorRamp{From: f[0], To: f[1], Step: f[2], DurationMs: uint32(ms)}, nil

	case "limits":
		if err := want(4, "limits <+V> <-V> <+A> <-A> (use _ to keep)"); err != nil {
			return "", nil, err
		}
		var p [4]*float64
		for i := range p {
			if rest[i] == "_" {
				continue
			}
			v, err := number(rest[i])
			if err != nil {
				return "", nil, err
			}
			p[i] = &v
		}
		return regulator.VerbSetLimits, types.RegulatorLimits{PosVolts: p[0], NegVolts: p[1], PosAmps: p[2], NegAmps: p[3]}, nil

	case "pwm":
		if err := want(3, "pwm <MHz> <0|+15|-15> <20-80|15-85|10-90>"); err != nil {
			return "", nil, err
		}
		freq, err := pwmFreq(rest[0])
		if err != nil {
			return "", nil, err
		}
		adj, ok := pwmAdjust[rest[1]]
		if !ok {
			return "", nil, argError("bad adjust " + strconv.Quote(rest[1]))
		}
		duty, ok := pwmDuty[rest[2]]
		if !ok {
			return "", nil, argError("bad duty " + strconv.Quote(rest[2]))
		}
		f, a, d := uint8(freq), uint8(adj), uint8(duty)
		return regulator.VerbSetPWM, types.RegulatorPWM{Freq: &f, Adjust: &a, Duty: &d}, nil

	case "analog":
		if err := want(1, "analog <voltage|current|temperature>"); err != nil {
			return "", nil, err
		}
		ch := types.AnalogChannel(strings.ToLower(rest[0]))
		switch ch {
		case types.AnalogVoltage, types.AnalogCurrent, types.AnalogTemperature:
		default:
			return "", nil, argError("bad channel " + strconv.Quote(rest[0]))
		}
		return regulator.VerbReadAnalog, types.RegulatorAnalog{Channel: ch}, nil
	}
	return "", nil, argError("unknown command " + strconv.Quote(args[0]) + " (try help)")
}

func number(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, argError("bad number " + strconv.Quote(s))
	}
	return v, nil
}

// pwmFreq accepts 0.5 to 3.0 MHz in 0.5 MHz steps.
func pwmFreq(s string) (lt8722.PWMFreq, error) {
	v, err := number(s)
	if err != nil {
		return 0, err
	}
	steps := v * 2
	if steps != float64(int(steps)) || steps < 1 || steps > 6 {
		return 0, argError("bad frequency " + strconv.Quote(s))
	}
	return lt8722.PWMFreq(int(steps) - 1), nil
}

var pwmAdjust = map[string]lt8722.PWMAdjust{
	"0":   lt8722.PWMAdjust0,
	"+15": lt8722.PWMAdjustPlus,
	"15":  lt8722.PWMAdjustPlus,
	"-15": lt8722.PWMAdjustMinus,
}

var pwmDuty = map[string]lt8722.PWMDuty{
	"20-80": lt8722.PWMDuty20_80,
	"15-85": lt8722.PWMDuty15_85,
	"10-90": lt8722.PWMDuty10_90,
}

// format renders a reply payload as one line.
func format(p any) string {
	var b []byte
	switch v := p.(type) {
	case types.OKReply:
		return "ok"
	case types.ErrorReply:
		return "error: " + v.Error
	case types.RegulatorValue:
		b = append(b, "status=0x"...)
		b = conv.AppendHex(b, uint64(v.Status), 4)
		b = append(b, " command=0x"...)
		b = conv.AppendHex(b, uint64(v.Command), 8)
		b = append(b, " vout="...)
		b = conv.AppendFixed(b, v.Volts, 3)
		b = append(b, 'V')
	case types.RegulatorAnalogValue:
		b = append(b, string(v.Channel)...)
		b = append(b, '=')
		b = conv.AppendFixed(b, v.Value, 3)
		switch v.Channel {
		case types.AnalogVoltage:
			b = append(b, 'V')
		case types.AnalogCurrent:
			b = append(b, 'A')
		case types.AnalogTemperature:
			b = append(b, 'C')
		}
	default:
		return "error: unexpected reply"
	}
	return string(b)
}
