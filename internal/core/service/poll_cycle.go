package service

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/berfenger/kostal2mqtt/internal/core/port"
	"github.com/berfenger/kostal2mqtt/pkg/dxs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PollCycle reads every group from the inverter and publishes the coerced
// values. A cycle is all or nothing: values are only published when every
// group was read and parsed.
type PollCycle struct {
	Reader   dxs.EntriesReader
	Groups   []domain.Group
	Mapping  MappingMode
	Parallel bool
	Observer port.CycleObserver
	Logger   *zap.Logger
}

// Run executes one cycle. The reporter is called exactly once with the
// returned status.
func (c *PollCycle) Run(ctx context.Context, publisher port.ObservationPublisher, reporter port.StatusReporter) (status domain.CycleStatus) {
	start := time.Now()
	logger := c.logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("poll cycle panic", zap.Any("panic", r))
			status = domain.Unhealthy(fmt.Sprintf("internal error: %v", r))
		}
		c.observer().CycleFinished(status, time.Since(start))
		reporter.ReportStatus(status)
	}()

	envelopes, err := c.readAll(ctx)
	if err == nil {
		// a reader may return after the deadline, its values are stale by now
		err = ctx.Err()
	}
	if err != nil {
		reason := dxs.FailureReason(err)
		logger.Warn("poll cycle failed", zap.String("reason", reason), zap.Error(err))
		return domain.Unhealthy(reason)
	}

	for i, group := range c.Groups {
		c.publishGroup(group, envelopes[i], publisher)
	}
	logger.Debug("poll cycle done", zap.Duration("elapsed", time.Since(start)))
	return domain.Healthy()
}

func (c *PollCycle) readAll(ctx context.Context) ([]dxs.Envelope, error) {
	envelopes := make([]dxs.Envelope, len(c.Groups))

	if !c.Parallel {
		for i, group := range c.Groups {
			env, err := c.Reader.ReadEntries(ctx, group.Ids)
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", group.Name, err)
			}
			envelopes[i] = env
		}
		return envelopes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, group := range c.Groups {
		g.Go(func() error {
			env, err := c.Reader.ReadEntries(gctx, group.Ids)
			if err != nil {
				return fmt.Errorf("group %s: %w", group.Name, err)
			}
			envelopes[i] = env
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return envelopes, nil
}

func (c *PollCycle) publishGroup(group domain.Group, env dxs.Envelope, publisher port.ObservationPublisher) {
	values := MapGroup(env, group, c.Mapping)
	if missing := len(group.Slots) - len(values); missing > 0 {
		c.logger().Warn("inverter returned fewer values than expected",
			zap.String("group", group.Name),
			zap.Int("expected", len(group.Slots)),
			zap.Int("received", len(values)))
		c.observer().GroupShortfall(group.Name, missing)
	}
	for _, v := range values {
		obs := Coerce(v.Raw, v.Slot.Unit)
		if _, undefined := obs.(domain.Undefined); undefined {
			c.logger().Debug("value is not a number",
				zap.String("slot", v.Slot.Name), zap.String("raw", v.Raw))
			c.observer().UndefinedValue(v.Slot.Name)
		}
		publisher.Publish(v.Slot.Name, obs)
	}
}

func (c *PollCycle) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *PollCycle) observer() port.CycleObserver {
	if c.Observer == nil {
		return port.NoopCycleObserver{}
	}
	return c.Observer
}
