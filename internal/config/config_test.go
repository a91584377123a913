package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validConfig() Config {
	return Config{
		Inverter: InverterConfig{
			Url:           "http://192.168.1.50",
			TimeoutMillis: 60000,
		},
		MQTT: MQTTConfig{
			BaseTopic:        "Kostal",
			HADiscoveryTopic: "homeassistant",
		},
		MonitorConfig: MonitorConfig{
			PollIntervalMillis: 60000,
		},
	}
}

func TestValidateNormalizes(t *testing.T) {
	require := require.New(t)

	cfg := validConfig()
	require.NoError(cfg.Validate())
	require.Equal("kostal", cfg.MQTT.BaseTopic)
	require.Equal(MAPPING_BY_ID, cfg.MonitorConfig.Mapping)
	require.Equal("Kostal PIKO", cfg.Inverter.Name)
	require.Equal(time.Minute, cfg.PollInterval())
	require.Equal(time.Minute, cfg.InverterTimeout())
}

func TestValidateRejects(t *testing.T) {
	assert := assert.New(t)

	cases := map[string]func(*Config){
		"missing url":     func(c *Config) { c.Inverter.Url = "" },
		"ftp url":         func(c *Config) { c.Inverter.Url = "ftp://inverter" },
		"bad base topic":  func(c *Config) { c.MQTT.BaseTopic = "kostal/solar" },
		"bad ha topic":    func(c *Config) { c.MQTT.HADiscoveryTopic = "home assistant" },
		"short interval":  func(c *Config) { c.MonitorConfig.PollIntervalMillis = 999 },
		"zero timeout":    func(c *Config) { c.Inverter.TimeoutMillis = 0 },
		"unknown mapping": func(c *Config) { c.MonitorConfig.Mapping = "by_name" },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		assert.Error(cfg.Validate(), name)
	}
}

func TestRedacted(t *testing.T) {
	assert := assert.New(t)

	cfg := validConfig()
	cfg.MQTT.Password = "secret"
	cfg.Inverter.Password = "pv"
	r := cfg.Redacted()
	assert.Equal("*redacted*", r.MQTT.Password)
	assert.Equal("*redacted*", r.Inverter.Password)
	assert.Equal("secret", cfg.MQTT.Password)
}

func TestCheckMQTTTopic(t *testing.T) {
	assert := assert.New(t)

	topic, err := CheckMQTTTopic("My_Inverter1")
	assert.NoError(err)
	assert.Equal("my_inverter1", topic)

	_, err = CheckMQTTTopic("")
	assert.Error(err)
	_, err = CheckMQTTTopic("a/b")
	assert.Error(err)
}

func TestParseLogLevel(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(zap.DebugLevel, ParseLogLevel("trace"))
	assert.Equal(zap.WarnLevel, ParseLogLevel("warn"))
	assert.Equal(zap.InfoLevel, ParseLogLevel("nonsense"))
}
