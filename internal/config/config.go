package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	MIN_POLL_INTERVAL_MILLIS = 1000
	MAPPING_BY_ID            = "by_id"
	MAPPING_POSITIONAL       = "positional"
)

type Config struct {
	LogLevel      zapcore.Level
	Inverter      InverterConfig `mapstructure:"inverter"`
	MQTT          MQTTConfig     `mapstructure:"mqtt"`
	MonitorConfig MonitorConfig  `mapstructure:"monitor"`
	Port          uint           `mapstructure:"port"`
	HttpLog       bool           `mapstructure:"http_log"`
}

type InverterConfig struct {
	Url  string
	Name string
	// credentials of the inverter web UI, only needed to change settings
	Username      string
	Password      string
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
	ParallelFetch      bool   `mapstructure:"parallel_fetch"`
	Mapping            string `mapstructure:"mapping"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.MonitorConfig.PollIntervalMillis) * time.Millisecond
}

func (c Config) InverterTimeout() time.Duration {
	return time.Duration(c.Inverter.TimeoutMillis) * time.Millisecond
}

// Validate checks bounds and normalizes topics in place.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Inverter.Url)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config param inverter.url must be an http(s) url, got %q", c.Inverter.Url)
	}
	if c.Inverter.Name == "" {
		c.Inverter.Name = "Kostal PIKO"
	}

	baseTopic, err := CheckMQTTTopic(c.MQTT.BaseTopic)
	if err != nil {
		return errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	c.MQTT.BaseTopic = baseTopic

	hadBaseTopic, err := CheckMQTTTopic(c.MQTT.HADiscoveryTopic)
	if err != nil {
		return errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	c.MQTT.HADiscoveryTopic = hadBaseTopic

	if c.MonitorConfig.PollIntervalMillis < MIN_POLL_INTERVAL_MILLIS {
		return fmt.Errorf("config param monitor.poll_interval_millis should be >= %d", MIN_POLL_INTERVAL_MILLIS)
	}
	if c.Inverter.TimeoutMillis == 0 {
		return errors.New("config param inverter.timeout_millis should be > 0")
	}
	switch c.MonitorConfig.Mapping {
	case "":
		c.MonitorConfig.Mapping = MAPPING_BY_ID
	case MAPPING_BY_ID, MAPPING_POSITIONAL:
	default:
		return fmt.Errorf("config param monitor.mapping must be %s or %s", MAPPING_BY_ID, MAPPING_POSITIONAL)
	}
	return nil
}

// Redacted returns a copy without credentials, safe to log.
func (c Config) Redacted() Config {
	c.MQTT.Username = "*redacted*"
	c.MQTT.Password = "*redacted*"
	c.Inverter.Username = "*redacted*"
	c.Inverter.Password = "*redacted*"
	return c
}

func ParseLogLevel(level string) zapcore.Level {
	switch level {
	case "trace":
		return zap.DebugLevel
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "error":
		return zap.ErrorLevel
	case "warn":
		return zap.WarnLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	if !baseTopicRegexp.MatchString(lowerBaseTopic) {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
