package util

import (
	"github.com/berfenger/kostal2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Inverter: config.InverterConfig{
			Url:           "http://192.0.2.10",
			Name:          "PIKO test",
			TimeoutMillis: 2000,
		},
		MQTT: config.MQTTConfig{
			Host:              "localhost",
			Port:              1883,
			BaseTopic:         "kostal",
			HADiscoveryEnable: true,
			HADiscoveryTopic:  "homeassistant",
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis: 5000,
			Mapping:            config.MAPPING_BY_ID,
		},
		Port: 8080,
	}
}
