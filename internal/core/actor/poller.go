package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/kostal2mqtt/internal/config"
	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/berfenger/kostal2mqtt/internal/core/events"
	"github.com/berfenger/kostal2mqtt/internal/core/port"
	"github.com/berfenger/kostal2mqtt/internal/core/service"
	"github.com/berfenger/kostal2mqtt/internal/schedule"
	. "github.com/berfenger/kostal2mqtt/internal/util/actorutil"
	"github.com/berfenger/kostal2mqtt/pkg/dxs"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// PollerActor runs a poll cycle on every trigger, at most one at a time.
// Values and status are published on the event stream.
type PollerActor struct {
	behavior actor.Behavior
	stash    *Stash
	trigger  *schedule.PollTrigger

	config      *config.Config
	cycle       *service.PollCycle
	eventStream *eventstream.EventStream
	observer    port.CycleObserver
	lastStatus  *domain.CycleStatus
	lastPoll    time.Time

	logger *zap.Logger
}

type pollCycleDone struct {
	Status domain.CycleStatus
}

func NewPollerActor(config *config.Config, reader dxs.EntriesReader, groups []domain.Group, observer port.CycleObserver,
	eventStream *eventstream.EventStream, logger *zap.Logger) *PollerActor {
	if observer == nil {
		observer = port.NoopCycleObserver{}
	}
	mapping, err := service.ParseMappingMode(config.MonitorConfig.Mapping)
	if err != nil {
		mapping = service.MAPPING_BY_ID
	}
	act := &PollerActor{
		config:      config,
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		eventStream: eventStream,
		observer:    observer,
		logger:      ActorLogger(domain.ACTOR_ID_POLLER, logger),
	}
	act.cycle = &service.PollCycle{
		Reader:   reader,
		Groups:   groups,
		Mapping:  mapping,
		Parallel: config.MonitorConfig.ParallelFetch,
		Observer: observer,
		Logger:   act.logger,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *PollerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollerActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poller@starting started")

		for _, ev := range events.UnknownStatusUpdateEvents() {
			state.eventStream.Publish(ev)
		}

		self := ctx.Self()
		root := ctx.ActorSystem().Root
		trigger, err := schedule.NewPollTrigger(state.config.PollInterval(), func() {
			root.Send(self, domain.TriggerPollRequest{})
		}, state.logger)
		if err != nil {
			panic(err)
		}
		if err := trigger.Start(); err != nil {
			panic(err)
		}
		state.trigger = trigger

		// first cycle runs right away
		ctx.Send(ctx.Self(), domain.TriggerPollRequest{})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.stopTrigger()
	default:
		state.logger.Debug("poller@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.TriggerPollRequest:
		state.logger.Debug("poller@default trigger")
		state.startCycle(ctx)
		state.behavior.BecomeStacked(state.PollingReceive)
	case domain.ActorHealthRequest:
		state.logger.Debug("poller@default: ActorHealthRequest")
		ctx.Respond(state.health("idle"))
	case domain.GetCycleStatusRequest:
		ForRequest(msg).Respond(ctx, state.cycleStatus(false))
	case *actor.Stopping, *actor.Restarting:
		state.stopTrigger()
	default:
		state.logger.Debug("poller@default: ignored", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *PollerActor) PollingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.TriggerPollRequest:
		state.logger.Info("poller@polling: previous cycle still running, trigger skipped")
		state.observer.TriggerSkipped()
	case pollCycleDone:
		state.logger.Debug("poller@polling: cycle done", zap.Stringer("status", msg.Status))
		status := msg.Status
		state.lastStatus = &status
		state.lastPoll = time.Now()
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(state.health("polling"))
	case domain.GetCycleStatusRequest:
		ForRequest(msg).Respond(ctx, state.cycleStatus(true))
	case *actor.Stopping, *actor.Restarting:
		state.stopTrigger()
	default:
		state.logger.Debug("poller@polling: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) startCycle(ctx actor.Context) {
	cycle := state.cycle
	sink := eventStreamSink{eventStream: state.eventStream}
	logger := state.logger
	NewBackgroundTaskNoError(ctx, func(c context.Context) *pollCycleDone {
		return &pollCycleDone{Status: cycle.Run(c, sink, sink)}
	}).WithDeadline(state.cycleTimeout()).Recover(func(err error) pollCycleDone {
		logger.Warn("poller: cycle aborted", zap.Error(err))
		return pollCycleDone{Status: domain.Unhealthy(dxs.FailureReason(err))}
	}).PipeTo(ctx.Self())
}

// cycleTimeout leaves room for every group request to hit the read timeout.
// The polling state lasts until the cycle returns, even past this deadline.
func (state *PollerActor) cycleTimeout() time.Duration {
	groups := len(state.cycle.Groups)
	if state.cycle.Parallel {
		groups = 1
	}
	return time.Duration(groups+1) * state.config.InverterTimeout()
}

func (state *PollerActor) health(actorState string) domain.ActorHealthResponse {
	healthy := state.lastStatus == nil || state.lastStatus.Healthy
	if state.lastStatus != nil {
		actorState = fmt.Sprintf("%s (%s)", actorState, state.lastStatus.String())
	}
	return domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_POLLER,
		Healthy: healthy,
		State:   actorState,
	}
}

func (state *PollerActor) cycleStatus(running bool) domain.GetCycleStatusResponse {
	resp := domain.GetCycleStatusResponse{
		Running:  running,
		LastPoll: state.lastPoll,
	}
	if state.lastStatus != nil {
		resp.Polled = true
		resp.Status = *state.lastStatus
	}
	return resp
}

func (state *PollerActor) stopTrigger() {
	if state.trigger != nil {
		state.trigger.Stop()
		state.trigger = nil
	}
}

// eventStreamSink publishes cycle output as sensor update events.
type eventStreamSink struct {
	eventStream *eventstream.EventStream
}

func (s eventStreamSink) Publish(slotName string, obs domain.Observation) {
	s.eventStream.Publish(events.ObservationToUpdateEvent(slotName, obs))
}

func (s eventStreamSink) ReportStatus(status domain.CycleStatus) {
	for _, ev := range events.CycleStatusToUpdateEvents(status) {
		s.eventStream.Publish(ev)
	}
}
