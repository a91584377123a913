package events

import (
	. "github.com/berfenger/kostal2mqtt/internal/core/domain"
)

func ObservationToUpdateEvent(slotName string, obs Observation) SensorUpdateEvent {
	mixIn := SensorUpdateEventMixIn{Id: slotName}
	switch o := obs.(type) {
	case Measurement:
		return MeasurementSensorUpdateEvent{
			SensorUpdateEventMixIn: mixIn,
			Value:                  o.Value,
			Unit:                   o.Unit,
		}
	case Text:
		return TextSensorUpdateEvent{
			SensorUpdateEventMixIn: mixIn,
			Value:                  o.Value,
		}
	default:
		return UndefinedSensorUpdateEvent{
			SensorUpdateEventMixIn: mixIn,
		}
	}
}

func CycleStatusToUpdateEvents(status CycleStatus) []any {
	var events []any

	// Inverter connectivity
	events = append(events, BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_INVERTER_CONNECTIVITY,
		},
		Value: status.Healthy,
	})
	// Inverter status text
	events = append(events, TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_INVERTER_STATUS,
		},
		Value: status.String(),
	})

	return events
}

func UnknownStatusUpdateEvents() []any {
	return []any{
		TextSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: SENSOR_ID_INVERTER_STATUS,
			},
			Value: STATUS_UNKNOWN,
		},
	}
}
