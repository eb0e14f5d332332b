package heartbeat

import (
	"context"
	"encoding/json"
	"time"

	"lt8722-go/bus"
	"lt8722-go/services/regulator"
	"lt8722-go/types"
	"lt8722-go/x/conv"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

// Config is the JSON document on config/heartbeat. Interval is in seconds;
// 0 pauses the heartbeat.
type Config struct {
	Interval float64 `json:"interval"`
}

// Service periodically reads a regulator and logs one line per beat.
type Service struct {
	Domain   string        // default "power"
	Name     string        // default "main"
	Interval time.Duration // initial interval, default 1 s; 0 from config pauses

	// Log receives each line; defaults to println.
	Log func(line string)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	cur := s.Interval
	tick := time.NewTicker(cur)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			s.Log("Info: heartbeat service stopping")
			return
		case t := <-tick.C:
			s.beat(ctx, conn, t, cur)
		case msg := <-cfgSub.Channel():
			var c Config
			if raw, ok := msg.Payload.(json.RawMessage); !ok || json.Unmarshal(raw, &c) != nil {
				s.Log("Warn: heartbeat: bad config")
				continue
			}
			if c.Interval <= 0 {
				tick.Stop()
				s.Log("Info: heartbeat paused")
				continue
			}
			cur = time.Duration(c.Interval * float64(time.Second))
			tick.Reset(cur)
			s.Log("Info: heartbeat interval set to " + string(conv.AppendFixed(nil, c.Interval, 2)) + " s")
		}
	}
}

// beat waits at most half an interval (capped at 1 s) for the reading.
func (s *Service) beat(ctx context.Context, conn *bus.Connection, t time.Time, interval time.Duration) {
	wait := interval / 2
	if wait > time.Second {
		wait = time.Second
	}
	rctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	req := conn.NewMessage(regulator.Control(s.Domain, s.Name, regulator.VerbRead), nil, false)

	line := append([]byte("Info: "), t.Format("15:04:05")...)
	line = append(line, " regulator "...)
	line = append(line, s.Name...)
	reply, err := conn.RequestWait(rctx, req)
	switch {
	case err != nil:
		line = append(line, " no reply: "...)
		line = append(line, err.Error()...)
	default:
		switch v := reply.Payload.(type) {
		case types.RegulatorValue:
			line = append(line, " status=0x"...)
			line = conv.AppendHex(line, uint64(v.Status), 4)
			line = append(line, " vout="...)
			line = conv.AppendFixed(line, v.Volts, 3)
			line = append(line, 'V')
		case types.ErrorReply:
			line = append(line, " error="...)
			line = append(line, v.Error...)
		}
	}
	s.Log(string(line))
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if s.Domain == "" {
		s.Domain = "power"
	}
	if s.Name == "" {
		s.Name = "main"
	}
	if s.Interval <= 0 {
		s.Interval = time.Second
	}
	if s.Log == nil {
		s.Log = func(line string) { println(line) }
	}
	go s.serviceLoop(ctx, conn)
	return nil
}
