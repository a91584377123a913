package metrics

import (
	"time"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/berfenger/kostal2mqtt/internal/core/port"
	"github.com/berfenger/kostal2mqtt/pkg/dxs"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	RESULT_SUCCESS = "success"
	RESULT_FAILURE = "failure"
)

// PollMetrics exports poll cycle and dxs request metrics on its own registry.
type PollMetrics struct {
	Registry *prometheus.Registry

	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	requests      *prometheus.HistogramVec
	shortfall     *prometheus.CounterVec
	undefined     *prometheus.CounterVec
	skipped       prometheus.Counter
	inverterUp    prometheus.Gauge
}

func NewPollMetrics() *PollMetrics {
	m := &PollMetrics{
		Registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kostal_poll_cycles_total",
			Help: "Poll cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kostal_poll_cycle_duration_seconds",
			Help:    "Duration of a full poll cycle.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kostal_dxs_request_duration_seconds",
			Help:    "Duration of dxs.json requests.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"op"}),
		shortfall: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kostal_group_missing_values_total",
			Help: "Slots left without a value because the inverter returned fewer entries than requested.",
		}, []string{"group"}),
		undefined: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kostal_undefined_values_total",
			Help: "Values that could not be parsed as numbers.",
		}, []string{"slot"}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kostal_poll_triggers_skipped_total",
			Help: "Poll triggers dropped because a cycle was still running.",
		}),
		inverterUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kostal_inverter_up",
			Help: "1 when the last poll cycle succeeded.",
		}),
	}
	m.Registry.MustRegister(m.cycles, m.cycleDuration, m.requests, m.shortfall, m.undefined, m.skipped, m.inverterUp)
	return m
}

func (m *PollMetrics) CycleFinished(status domain.CycleStatus, duration time.Duration) {
	m.cycleDuration.Observe(duration.Seconds())
	if status.Healthy {
		m.cycles.WithLabelValues(RESULT_SUCCESS).Inc()
		m.inverterUp.Set(1)
	} else {
		m.cycles.WithLabelValues(RESULT_FAILURE).Inc()
		m.inverterUp.Set(0)
	}
}

func (m *PollMetrics) GroupShortfall(group string, missing int) {
	m.shortfall.WithLabelValues(group).Add(float64(missing))
}

func (m *PollMetrics) UndefinedValue(slotName string) {
	m.undefined.WithLabelValues(slotName).Inc()
}

func (m *PollMetrics) TriggerSkipped() {
	m.skipped.Inc()
}

// DxsInstrument records request durations of the dxs client.
func (m *PollMetrics) DxsInstrument() dxs.DxsInstrument {
	return dxs.DxsInstrument{
		RecordTime: func(fnName string, readTime time.Duration) {
			m.requests.WithLabelValues(fnName).Observe(readTime.Seconds())
		},
	}
}

var _ port.CycleObserver = (*PollMetrics)(nil)
