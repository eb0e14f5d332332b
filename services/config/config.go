package config

import (
	"context"
	"encoding/json"
	"errors"

	"lt8722-go/bus"
)

const configPrefix = "config"

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

var (
	ErrNoConfig  = errors.New("config: no embedded config for device")
	ErrNotObject = errors.New("config: document is not a JSON object")
)

// Service publishes a device's configuration document on the bus.
type Service struct {
	Device string
}

func New(device string) *Service { return &Service{Device: device} }

// Publish splits a JSON object into retained messages on config/<key>. Each
// payload is the key's value as json.RawMessage, decoded by its consumer.
// Well-formed JSON that is not an object returns ErrNotObject.
func Publish(conn *bus.Connection, raw []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			return ErrNotObject
		}
		return err
	}
	if doc == nil {
		return ErrNotObject
	}
	for k, v := range doc {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), v, true))
	}
	return nil
}

// Start publishes the embedded config for s.Device.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	raw, ok := EmbeddedConfigLookup(s.Device)
	if !ok || len(raw) == 0 {
		return ErrNoConfig
	}
	if err := Publish(conn, raw); err != nil {
		println("Warn: config:", err.Error())
		return err
	}
	println("Info: config published for", s.Device)
	return nil
}
