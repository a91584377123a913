package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/berfenger/kostal2mqtt/internal/config"
	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func testClient() *MQTTClient {
	cfg := config.Config{
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "kostal",
			HADiscoveryTopic: "homeassistant",
		},
	}
	return CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)

	client := testClient()
	assert.Equal("kostal/bridge/state", client.BridgeStateTopic())
	assert.Equal("kostal/sensor/batteryVoltage/state", client.SensorStateTopic("batteryVoltage"))
	assert.Equal("kostal/binary_sensor/inverter_connectivity/state", client.BinarySensorStateTopic(domain.SENSOR_ID_INVERTER_CONNECTIVITY))
	assert.Equal("homeassistant/status", client.HAStatusTopic())
}

func TestOptsLastWill(t *testing.T) {

	assert := assert.New(t)

	cfg := config.Config{MQTT: config.MQTTConfig{Host: "broker", Port: 1884, BaseTopic: "pv"}}
	opts := OptsFromConfig(&cfg)
	assert.True(opts.WillEnabled)
	assert.True(opts.WillRetained)
	assert.Equal("pv/bridge/state", opts.WillTopic)
	assert.Equal([]byte(MQTT_PAYLOAD_OFFLINE), opts.WillPayload)
	assert.Equal("tcp://broker:1884", opts.Servers[0].String())
}

func TestSlotSensorDiscoveryMessage(t *testing.T) {

	assert := assert.New(t)

	client := testClient()
	inverter := domain.InverterDevice("PIKO", "http://192.168.1.50")
	sensors := domain.SlotSensors(inverter, domain.PollGroups())

	var soc domain.GenericSensor
	for _, s := range sensors {
		if s.Id == "batStateOfCharge" {
			soc = s
		}
	}
	msg := GenericSensorToHADiscoveryMessage(client, soc)
	assert.Equal("kostal/sensor/batStateOfCharge/state", msg.StateTopic)
	assert.Equal("%", msg.UnitOfMeasurement)
	assert.Equal(domain.DEVICE_CLASS_BATTERY, msg.DeviceClass)
	assert.Equal("kostal/bridge/state", msg.AvTopic)
	assert.Equal([]string{inverter.Id}, msg.Device.Id)
	assert.Equal("homeassistant/sensor/"+inverter.Id+"/batStateOfCharge/config", HADiscoverySensorTopic(client.HADiscoveryTopic(), soc))

	payload, err := json.Marshal(msg)
	assert.NoError(err)
	assert.Contains(string(payload), `"unit_of_measurement":"%"`)
	assert.NotContains(string(payload), "payload_on")
}

func TestBinarySensorDiscoveryMessage(t *testing.T) {

	assert := assert.New(t)

	client := testClient()
	bridge := domain.BridgeSensors(domain.BridgeDevice("kostal"))[0]
	msg := GenericSensorToHADiscoveryMessage(client, bridge)
	assert.Equal("kostal/bridge/state", msg.StateTopic)
	assert.Equal(MQTT_PAYLOAD_ONLINE, msg.PayloadOn)
	assert.Empty(msg.AvTopic)

	status := domain.InverterStatusSensors(domain.InverterDevice("PIKO", "http://inverter"))
	msg = GenericSensorToHADiscoveryMessage(client, status[0])
	assert.Equal("kostal/binary_sensor/inverter_connectivity/state", msg.StateTopic)
	assert.Equal(MQTT_PAYLOAD_ON, msg.PayloadOn)
	assert.Equal(MQTT_PAYLOAD_OFF, msg.PayloadOff)
}
