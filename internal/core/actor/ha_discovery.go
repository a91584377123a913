package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/kostal2mqtt/internal/config"
	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/berfenger/kostal2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const HADISCOVERY_RETRY_DELAY = 5 * time.Second

type HADiscoveryActor struct {
	config    *config.Config
	behavior  actor.Behavior
	stash     *actorutil.Stash
	scheduler *scheduler.TimerScheduler
	mqttActor *actor.PID
	groups    []domain.Group
	published int

	logger *zap.Logger
}

type checkMQTTHealth struct {
}

func NewHADiscoveryActor(config *config.Config, mqttActor *actor.PID, groups []domain.Group, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:    config,
		mqttActor: mqttActor,
		groups:    groups,
		behavior:  actor.NewBehavior(),
		stash:     &actorutil.Stash{},
		logger:    actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.WaitingHealthyReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@waiting started")
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		ctx.Send(ctx.Self(), checkMQTTHealth{})
	case checkMQTTHealth:
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@waiting ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		if !msg.Healthy {
			// MQTT may still be connecting
			state.scheduler.RequestOnce(HADISCOVERY_RETRY_DELAY, ctx.Self(), checkMQTTHealth{})
			return
		}
		state.publishDiscovery(ctx)
		state.behavior.Become(state.DoneReceive)
		state.stash.UnstashAll(ctx)
	case domain.HAStatusOnline:
		// discovery is sent anyway once MQTT is up
	default:
		state.logger.Debug("hadiscovery@waiting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) DoneReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.HAStatusOnline:
		state.logger.Info("hadiscovery@done homeassistant restarted, publishing discovery")
		state.publishDiscovery(ctx)
	case domain.PublishDiscoveryResponse:
		if msg.HasResponseError() {
			state.logger.Error("hadiscovery@done discovery failed", zap.Error(msg.GetResponseError()))
		}
	default:
		state.logger.Debug("hadiscovery@done: ignored", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HADiscoveryActor) publishDiscovery(ctx actor.Context) {
	sensors := DiscoverySensors(state.config, state.groups)
	state.published++
	state.logger.Debug("hadiscovery: publish", zap.Int("sensors", len(sensors)), zap.Int("count", state.published))
	ctx.Request(state.mqttActor, domain.PublishDiscoveryRequest{
		Sensors: sensors,
	})
}

// DiscoverySensors lists every entity announced to Home Assistant. Only the
// first sensor of a device carries the full device description.
func DiscoverySensors(config *config.Config, groups []domain.Group) []domain.GenericSensor {
	var sensors []domain.GenericSensor

	bridgeDevice := domain.BridgeDevice(config.MQTT.BaseTopic)
	sensors = append(sensors, domain.BridgeSensors(bridgeDevice)...)

	inverterDevice := domain.InverterDevice(config.Inverter.Name, config.Inverter.Url)
	inverterDevice.ViaDevice = bridgeDevice.Id
	inverterSensors := domain.InverterStatusSensors(inverterDevice)
	inverterSensors = append(inverterSensors, domain.SlotSensors(inverterDevice, groups)...)
	for i := range inverterSensors {
		if i > 0 {
			inverterSensors[i].Device = domain.IdDevice(inverterDevice)
		}
		sensors = append(sensors, inverterSensors[i])
	}

	return sensors
}
