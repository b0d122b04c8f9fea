package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "BRIDGE"

// Config is read once at startup and treated as immutable afterwards.
type Config struct {
	Port      string
	LogLevel  string
	Serial    SerialConfig
	Telemetry TelemetryConfig
	WS        WSConfig
	Journal   JournalConfig
	MQTT      MQTTConfig
}

type SerialConfig struct {
	Enabled     bool
	Port        string // preferred device; empty means scan only
	BaudRate    int
	ReadTimeout time.Duration
	SettleDelay time.Duration
}

type TelemetryConfig struct {
	ReportInterval time.Duration // simulator cadence
}

type WSConfig struct {
	SendBuffer int // per-session outbound queue length
}

type JournalConfig struct {
	Enabled bool
	Path    string
}

type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	TopicPrefix string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("log.level", "info")

	v.SetDefault("serial.enabled", true)
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud", 115200)
	v.SetDefault("serial.read_timeout", "1s")
	v.SetDefault("serial.settle_delay", "2s")

	v.SetDefault("telemetry.report_interval", "1s")
	v.SetDefault("ws.send_buffer", 64)

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "bridge.db")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "telemetry-bridge")
	v.SetDefault("mqtt.topic_prefix", "bridge")
}

// Load reads config.yml from the first of paths that has one, then applies
// BRIDGE_* environment overrides (serial.port -> BRIDGE_SERIAL_PORT).
// A missing config file is not an error.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(paths) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Port:     strings.TrimSpace(v.GetString("port")),
		LogLevel: v.GetString("log.level"),
		Serial: SerialConfig{
			Enabled:     v.GetBool("serial.enabled"),
			Port:        strings.TrimSpace(v.GetString("serial.port")),
			BaudRate:    v.GetInt("serial.baud"),
			ReadTimeout: v.GetDuration("serial.read_timeout"),
			SettleDelay: v.GetDuration("serial.settle_delay"),
		},
		Telemetry: TelemetryConfig{
			ReportInterval: v.GetDuration("telemetry.report_interval"),
		},
		WS: WSConfig{
			SendBuffer: v.GetInt("ws.send_buffer"),
		},
		Journal: JournalConfig{
			Enabled: v.GetBool("journal.enabled"),
			Path:    strings.TrimSpace(v.GetString("journal.path")),
		},
		MQTT: MQTTConfig{
			Enabled:     v.GetBool("mqtt.enabled"),
			Broker:      strings.TrimSpace(v.GetString("mqtt.broker")),
			ClientID:    strings.TrimSpace(v.GetString("mqtt.client_id")),
			TopicPrefix: strings.Trim(strings.TrimSpace(v.GetString("mqtt.topic_prefix")), "/"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("invalid serial.baud %d: must be positive", c.Serial.BaudRate)
	}
	if c.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("invalid serial.read_timeout %v: must be positive", c.Serial.ReadTimeout)
	}
	if c.Serial.SettleDelay < 0 {
		return fmt.Errorf("invalid serial.settle_delay %v: must not be negative", c.Serial.SettleDelay)
	}
	if c.Telemetry.ReportInterval <= 0 {
		return fmt.Errorf("invalid telemetry.report_interval %v: must be positive", c.Telemetry.ReportInterval)
	}
	if c.WS.SendBuffer <= 0 {
		return fmt.Errorf("invalid ws.send_buffer %d: must be positive", c.WS.SendBuffer)
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal.path is required when journal.enabled is true")
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt.broker is required when mqtt.enabled is true")
	}
	return nil
}
