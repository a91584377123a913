package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE          = "bridge"
	SENSOR_ID_INVERTER_CONNECTIVITY = "inverter_connectivity"
	SENSOR_ID_INVERTER_STATUS       = "inverter_status"
	SLOT_ID_BATTERY_SOC             = "batStateOfCharge"
	STATUS_ONLINE                   = "online"
	STATUS_OFFLINE                  = "offline"
	STATUS_UNKNOWN                  = "unknown"
	STATE_CLASS_MEASUREMENT         = "measurement"
	STATE_CLASS_TOTAL_INCREASING    = "total_increasing"
	DEVICE_CLASS_BATTERY            = "battery"
	DEVICE_CLASS_CURRENT            = "current"
	DEVICE_CLASS_DURATION           = "duration"
	DEVICE_CLASS_ENERGY             = "energy"
	DEVICE_CLASS_FREQUENCY          = "frequency"
	DEVICE_CLASS_POWER              = "power"
	DEVICE_CLASS_TEMPERATURE        = "temperature"
	DEVICE_CLASS_VOLTAGE            = "voltage"
	DEVICE_CLASS_CONNECTIVITY       = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC         = "diagnostic"
	SENSOR_TYPE_SENSOR              = "sensor"
	SENSOR_TYPE_BINARY              = "binary_sensor"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("kostal2mqtt_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "kostal2mqtt",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("kostal2mqtt %s", md5HashShort(baseTopic)),
	}
}

// InverterDevice identifies the inverter by its configured url, the dxs api
// does not expose a serial number without a session.
func InverterDevice(name, url string) Device {
	return Device{
		Id:           fmt.Sprintf("kos_inverter_%s", md5HashShort(url)),
		Manufacturer: "Kostal",
		Model:        "PIKO",
		Name:         fmt.Sprintf("%s %s", name, md5HashShort(url)),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {

	var sensors []GenericSensor

	sensors = append(sensors, GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	return sensors
}

func InverterStatusSensors(inverterDevice Device) []GenericSensor {

	var sensors []GenericSensor

	// Inverter reachable on last poll
	sensors = append(sensors, GenericSensor{
		Device:         inverterDevice,
		Id:             SENSOR_ID_INVERTER_CONNECTIVITY,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Inverter connectivity",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(inverterDevice.Id, SENSOR_ID_INVERTER_CONNECTIVITY),
	})

	// Inverter status and failure reason
	sensors = append(sensors, GenericSensor{
		Device:         inverterDevice,
		Id:             SENSOR_ID_INVERTER_STATUS,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Inverter status",
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		Icon:           "mdi:solar-power-variant",
		UniqueId:       uniqueId(inverterDevice.Id, SENSOR_ID_INVERTER_STATUS),
	})

	return sensors
}

// SlotSensors declares one Home Assistant sensor per output slot.
func SlotSensors(inverterDevice Device, groups []Group) []GenericSensor {

	var sensors []GenericSensor

	for _, g := range groups {
		for _, slot := range g.Slots {
			sensor := GenericSensor{
				Device:            inverterDevice,
				Id:                slot.Name,
				SensorType:        SENSOR_TYPE_SENSOR,
				Name:              slotDisplayName(slot.Name),
				UnitOfMeasurement: string(slot.Unit),
				UniqueId:          uniqueId(inverterDevice.Id, slot.Name),
			}
			sensor.DeviceClass, sensor.StateClass = slotClasses(slot)
			sensors = append(sensors, sensor)
		}
	}

	return sensors
}

func slotClasses(slot OutputSlot) (deviceClass string, stateClass string) {
	switch slot.Unit {
	case UNIT_WATT:
		return DEVICE_CLASS_POWER, STATE_CLASS_MEASUREMENT
	case UNIT_WATT_HOUR, UNIT_KILOWATT_HOUR:
		return DEVICE_CLASS_ENERGY, STATE_CLASS_TOTAL_INCREASING
	case UNIT_VOLT:
		return DEVICE_CLASS_VOLTAGE, STATE_CLASS_MEASUREMENT
	case UNIT_AMPERE:
		return DEVICE_CLASS_CURRENT, STATE_CLASS_MEASUREMENT
	case UNIT_HERTZ:
		return DEVICE_CLASS_FREQUENCY, STATE_CLASS_MEASUREMENT
	case UNIT_CELSIUS:
		return DEVICE_CLASS_TEMPERATURE, STATE_CLASS_MEASUREMENT
	case UNIT_HOUR, UNIT_MINUTE:
		return DEVICE_CLASS_DURATION, STATE_CLASS_MEASUREMENT
	case UNIT_PERCENT:
		if slot.Name == SLOT_ID_BATTERY_SOC {
			return DEVICE_CLASS_BATTERY, STATE_CLASS_MEASUREMENT
		}
		return "", STATE_CLASS_MEASUREMENT
	case UNIT_NONE:
		return "", ""
	}
	return "", STATE_CLASS_MEASUREMENT
}

// slotDisplayName turns gridVoltageL1 into "Grid Voltage L1"
func slotDisplayName(name string) string {
	var words []string
	var current []rune
	runes := []rune(name)
	for i, r := range runes {
		if r == '_' {
			if len(current) > 0 {
				words = append(words, string(current))
				current = nil
			}
			continue
		}
		if unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) && len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}
