package domain

import "time"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_POLLER       = "poller"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

// TriggerPollRequest starts a poll cycle unless one is already running.
type TriggerPollRequest struct {
	ActorRequestMixIn
}

type GetCycleStatusRequest struct {
	ActorRequestMixIn
}

// GetCycleStatusResponse carries the last cycle status. Polled is false
// until the first cycle finished.
type GetCycleStatusResponse struct {
	ActorResponseMixIn
	Polled   bool
	Status   CycleStatus
	LastPoll time.Time
	Running  bool
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors []GenericSensor
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

// HAStatusOnline is sent when Home Assistant announces itself on its status topic.
type HAStatusOnline struct {
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
