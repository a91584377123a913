package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"
)

const POLL_JOB_KEY = "kostal_poll"

// PollTrigger calls fire every interval until stopped. The first call
// happens one interval after Start.
type PollTrigger struct {
	interval  time.Duration
	fire      func()
	scheduler quartz.Scheduler
	cancel    context.CancelFunc
	logger    *zap.Logger
}

func NewPollTrigger(interval time.Duration, fire func(), logger *zap.Logger) (*PollTrigger, error) {
	if interval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollTrigger{
		interval: interval,
		fire:     fire,
		logger:   logger,
	}, nil
}

func (p *PollTrigger) Start() error {
	sched := quartz.NewStdScheduler()
	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)

	pollJob := job.NewFunctionJob(func(_ context.Context) (bool, error) {
		p.fire()
		return true, nil
	})
	detail := quartz.NewJobDetail(pollJob, quartz.NewJobKey(POLL_JOB_KEY))
	if err := sched.ScheduleJob(detail, quartz.NewSimpleTrigger(p.interval)); err != nil {
		cancel()
		return err
	}
	p.scheduler = sched
	p.cancel = cancel
	p.logger.Debug("poll trigger started", zap.Duration("interval", p.interval))
	return nil
}

func (p *PollTrigger) Stop() {
	if p.scheduler == nil {
		return
	}
	p.scheduler.Stop()
	p.cancel()
	p.scheduler = nil
	p.logger.Debug("poll trigger stopped")
}
