package port

import (
	"time"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"
)

// ObservationPublisher receives the coerced value of one output slot.
type ObservationPublisher interface {
	Publish(slotName string, obs domain.Observation)
}

// StatusReporter receives the outcome of a poll cycle, once per cycle.
type StatusReporter interface {
	ReportStatus(status domain.CycleStatus)
}

type CycleObserver interface {
	CycleFinished(status domain.CycleStatus, duration time.Duration)
	GroupShortfall(group string, missing int)
	UndefinedValue(slotName string)
	TriggerSkipped()
}

type NoopCycleObserver struct{}

func (NoopCycleObserver) CycleFinished(domain.CycleStatus, time.Duration) {}
func (NoopCycleObserver) GroupShortfall(string, int)                      {}
func (NoopCycleObserver) UndefinedValue(string)                           {}
func (NoopCycleObserver) TriggerSkipped()                                 {}

var _ CycleObserver = NoopCycleObserver{}
