package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tempnode/core"
	"tempnode/sensor"
)

// ErrConfig wraps every startup configuration failure.
var ErrConfig = errors.New("node: invalid configuration")

// Radio output power bounds on the SX127x PA_BOOST pin. The default is the
// EU868 16 dBm limit lowered by 14 dB to save battery.
const (
	MinTxPowerDBm     int8 = 2
	MaxTxPowerDBm     int8 = 17
	DefaultTxPowerDBm int8 = 2
)

// Config is the node's runtime configuration.
type Config struct {
	TxIntervalSeconds uint32 `json:"tx_interval_s"`
	Port              uint8  `json:"port"`
	Confirmed         bool   `json:"confirmed"`
	JoinedDutyRate    uint8  `json:"joined_duty_rate"`
	Resolution        uint8  `json:"resolution"`
	MaxSensors        int    `json:"max_sensors"`
	BatteryFullScale  uint32 `json:"battery_full_scale"`
	SkipSelfTest      bool   `json:"skip_self_test"`
	LogLevel          string `json:"log_level"` // "off", "info" or "debug"
	TxPowerDBm        int8   `json:"tx_power_dbm"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	c := Config{TxPowerDBm: DefaultTxPowerDBm}
	applyDefaults(&c)
	return c
}

// LoadConfig parses a JSON configuration and fills in defaults. The result
// is not validated; New does that.
func LoadConfig(data []byte) (*Config, error) {
	c := Config{TxPowerDBm: DefaultTxPowerDBm}
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.TxIntervalSeconds == 0 {
		c.TxIntervalSeconds = 180
	}
	if c.Port == 0 {
		c.Port = 4
	}
	if c.JoinedDutyRate == 0 {
		c.JoinedDutyRate = 12
	}
	if c.Resolution == 0 {
		c.Resolution = uint8(sensor.Resolution12)
	}
	if c.MaxSensors == 0 {
		c.MaxSensors = 8
	}
	if c.BatteryFullScale == 0 {
		c.BatteryFullScale = 683
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// TxInterval is the period between uplinks.
func (c *Config) TxInterval() time.Duration {
	return time.Duration(c.TxIntervalSeconds) * time.Second
}

// SensorResolution returns the configured conversion resolution.
func (c *Config) SensorResolution() sensor.Resolution {
	return sensor.Resolution(c.Resolution)
}

// DebugLevel maps LogLevel onto the diagnostic levels.
func (c *Config) DebugLevel() (core.Level, error) {
	switch c.LogLevel {
	case "off":
		return core.LevelOff, nil
	case "info", "":
		return core.LevelInfo, nil
	case "debug":
		return core.LevelDebug, nil
	}
	return 0, fmt.Errorf("%w: unknown log level %q", ErrConfig, c.LogLevel)
}

// Validate checks the fields that do not depend on the attached hardware.
func (c *Config) Validate() error {
	if c.TxIntervalSeconds == 0 {
		return fmt.Errorf("%w: zero transmit interval", ErrConfig)
	}
	if !c.SensorResolution().Valid() {
		return fmt.Errorf("%w: resolution %d bits: %v", ErrConfig, c.Resolution, sensor.ErrResolution)
	}
	if c.MaxSensors < 0 {
		return fmt.Errorf("%w: negative sensor count", ErrConfig)
	}
	if c.Port == 0 || c.Port > 223 {
		return fmt.Errorf("%w: port %d outside 1..223", ErrConfig, c.Port)
	}
	if c.BatteryFullScale == 0 {
		return fmt.Errorf("%w: zero battery full scale", ErrConfig)
	}
	if c.TxPowerDBm < MinTxPowerDBm || c.TxPowerDBm > MaxTxPowerDBm {
		return fmt.Errorf("%w: tx power %d dBm outside %d..%d", ErrConfig, c.TxPowerDBm, MinTxPowerDBm, MaxTxPowerDBm)
	}
	if _, err := c.DebugLevel(); err != nil {
		return err
	}
	return nil
}
