package events

import (
	"testing"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestObservationToUpdateEvent(t *testing.T) {
	assert := assert.New(t)

	ev := ObservationToUpdateEvent("batteryVoltage", domain.Measurement{Value: 48.3, Unit: domain.UNIT_VOLT})
	assert.Equal(domain.MeasurementSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: "batteryVoltage"},
		Value:                  48.3,
		Unit:                   domain.UNIT_VOLT,
	}, ev)
	assert.Equal("batteryVoltage", ev.SensorId())

	ev = ObservationToUpdateEvent("operatingStatus", domain.Text{Value: "3"})
	assert.IsType(domain.TextSensorUpdateEvent{}, ev)

	ev = ObservationToUpdateEvent("gridFreq", domain.Undefined{})
	assert.IsType(domain.UndefinedSensorUpdateEvent{}, ev)
	assert.Equal("gridFreq", ev.SensorId())
}

func TestCycleStatusToUpdateEvents(t *testing.T) {
	assert := assert.New(t)

	evs := CycleStatusToUpdateEvents(domain.Unhealthy("timeout"))
	assert.Len(evs, 2)
	assert.Equal(domain.BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.SENSOR_ID_INVERTER_CONNECTIVITY},
		Value:                  false,
	}, evs[0])
	assert.Equal("offline: timeout", evs[1].(domain.TextSensorUpdateEvent).Value)

	evs = CycleStatusToUpdateEvents(domain.Healthy())
	assert.True(evs[0].(domain.BinarySensorUpdateEvent).Value)
	assert.Equal("online", evs[1].(domain.TextSensorUpdateEvent).Value)
}
