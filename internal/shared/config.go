package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type StorageConfig struct {
	// Backend selects the store implementation: "memory" (default) or
	// "sqlite". Both are volatile; the sqlite backend defaults to an
	// in-memory database.
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
}

type MQTTConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BrokerURL string `yaml:"broker_url"`
	ClientID  string `yaml:"client_id"`
	Topic     string `yaml:"topic"`
}

type StreamConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ServerConfig struct {
	Listen       string `yaml:"listen"`
	ClientSecret string `yaml:"client_secret"`

	// DisplayOffset is the fixed UTC offset applied to timestamps in
	// query responses, e.g. "+10:00". Not a timezone; never DST-aware.
	DisplayOffset string `yaml:"display_offset"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	Storage StorageConfig `yaml:"storage"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Stream  StreamConfig  `yaml:"stream"`
}

func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Listen:        ":8080",
		ClientSecret:  "mysecret", // dev default; override in env or config
		DisplayOffset: "+10:00",
		LogLevel:      "info",
		Storage: StorageConfig{
			Backend: "memory",
			DSN:     ":memory:",
		},
		MQTT: MQTTConfig{
			BrokerURL: "tcp://localhost:1883",
			Topic:     "sensors/+/readings",
		},
		Stream: StreamConfig{Enabled: true},
	}
}

func LoadServerConfig(path string) (*ServerConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := DefaultServerConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = ":memory:"
	}
	if c.DisplayOffset == "" {
		c.DisplayOffset = "+10:00"
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = "sensors/+/readings"
	}
	return c, nil
}

// ApplyEnv lets deployment env vars win over the config file.
func (c *ServerConfig) ApplyEnv() {
	if v := os.Getenv("SW_ADDR"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("SW_CLIENT_SECRET"); v != "" {
		c.ClientSecret = v
	}
	if v := os.Getenv("SW_DISPLAY_OFFSET"); v != "" {
		c.DisplayOffset = v
	}
}

// ParseUTCOffset parses a fixed offset like "+10:00", "-05:30" or "+09"
// into a duration. This is plain offset arithmetic, not a tzdb lookup.
func ParseUTCOffset(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty utc offset")
	}
	sign := time.Duration(1)
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	}

	hh, mm := s, "0"
	if i := strings.IndexByte(s, ':'); i >= 0 {
		hh, mm = s[:i], s[i+1:]
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad utc offset hours %q", hh)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad utc offset minutes %q", mm)
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}
