package metrics

import (
	"testing"
	"time"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPollMetrics(t *testing.T) {
	assert := assert.New(t)

	m := NewPollMetrics()

	m.CycleFinished(domain.Healthy(), 200*time.Millisecond)
	m.CycleFinished(domain.Unhealthy("timeout"), time.Second)
	m.CycleFinished(domain.Unhealthy("timeout"), time.Second)
	assert.Equal(1.0, testutil.ToFloat64(m.cycles.WithLabelValues(RESULT_SUCCESS)))
	assert.Equal(2.0, testutil.ToFloat64(m.cycles.WithLabelValues(RESULT_FAILURE)))
	assert.Equal(0.0, testutil.ToFloat64(m.inverterUp))
	assert.Equal(1, testutil.CollectAndCount(m.cycleDuration))

	m.GroupShortfall("battery", 2)
	assert.Equal(2.0, testutil.ToFloat64(m.shortfall.WithLabelValues("battery")))

	m.UndefinedValue("gridFreq")
	m.TriggerSkipped()
	assert.Equal(1.0, testutil.ToFloat64(m.undefined.WithLabelValues("gridFreq")))
	assert.Equal(1.0, testutil.ToFloat64(m.skipped))

	m.DxsInstrument().RecordTime("Fetch", 30*time.Millisecond)
	assert.Equal(1, testutil.CollectAndCount(m.requests, "kostal_dxs_request_duration_seconds"))
}

func TestPollMetricsRegistry(t *testing.T) {
	assert := assert.New(t)

	// each instance owns its registry
	a := NewPollMetrics()
	b := NewPollMetrics()
	a.TriggerSkipped()

	families, err := a.Registry.Gather()
	assert.NoError(err)
	assert.NotEmpty(families)
	assert.Equal(0.0, testutil.ToFloat64(b.skipped))
}
