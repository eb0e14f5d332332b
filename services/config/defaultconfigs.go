package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

const cfgPico = `{
  "regulator": {
    "main": {
      "limits": {"pos_volts": 5, "neg_volts": 5, "pos_amps": 1, "neg_amps": 1},
      "pwm": {"freq": 3, "adjust": 0, "duty": 2, "power_limit": 5}
    }
  },
  "heartbeat": {
    "interval": 5
  }
}`

const cfgHost = `{
  "regulator": {
    "main": {
      "limits": {"pos_volts": 5, "neg_volts": 5, "pos_amps": 1, "neg_amps": 1}
    }
  },
  "heartbeat": {
    "interval": 0
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"host": []byte(cfgHost),
}
