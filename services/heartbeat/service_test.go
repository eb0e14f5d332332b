package heartbeat

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"lt8722-go/bus"
	"lt8722-go/services/regulator"
	"lt8722-go/types"
)

func TestBeatLogsRegulatorValue(t *testing.T) {
	b := bus.NewBus(8)
	fake := b.NewConnection("fake-regulator")
	reqs := fake.Subscribe(regulator.Control("power", "main", regulator.VerbRead))
	go func() {
		for m := range reqs.Channel() {
			fake.Reply(m, types.RegulatorValue{Status: 0x412, Volts: 5}, false)
		}
	}()

	lines := make(chan string, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &Service{Interval: 10 * time.Millisecond, Log: func(l string) {
		select {
		case lines <- l:
		default:
		}
	}}
	if err := s.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case l := <-lines:
			if strings.HasSuffix(l, "regulator main status=0x0412 vout=5.000V") {
				return
			}
		case <-deadline:
			t.Fatal("no heartbeat with the regulator value")
		}
	}
}

func TestConfigPausesAndResumes(t *testing.T) {
	b := bus.NewBus(8)
	cfg := b.NewConnection("config")
	lines := make(chan string, 64)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &Service{Interval: time.Hour, Log: func(l string) {
		select {
		case lines <- l:
		default:
		}
	}}
	if err := s.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		t.Fatal(err)
	}

	expect := func(want string) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case l := <-lines:
				if strings.Contains(l, want) {
					return
				}
			case <-deadline:
				t.Fatalf("no line containing %q", want)
			}
		}
	}

	cfg.Publish(cfg.NewMessage(topicConfigHeartbeat, json.RawMessage(`{"interval": 0}`), true))
	expect("heartbeat paused")
	cfg.Publish(cfg.NewMessage(topicConfigHeartbeat, json.RawMessage(`{"interval": 0.02}`), true))
	expect("interval set to 0.02 s")
	// No regulator answers, so each beat reports the timeout.
	expect("no reply")
	cfg.Publish(cfg.NewMessage(topicConfigHeartbeat, "garbage", true))
	expect("bad config")
}
