package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"
	"github.com/berfenger/kostal2mqtt/internal/metrics"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMaster answers like the master actor from fixed values
func fakeMaster(as *actor.ActorSystem, healthy bool, status *domain.CycleStatus, triggers chan<- struct{}) *actor.PID {
	return as.Root.Spawn(actor.PropsFromFunc(func(ctx actor.Context) {
		switch ctx.Message().(type) {
		case domain.ActorHealthRequest:
			ctx.Respond(domain.ActorHealthResponse{Id: domain.ACTOR_ID_MASTER, Healthy: healthy})
		case domain.GetCycleStatusRequest:
			if status == nil {
				ctx.Respond(domain.GetCycleStatusResponse{Running: true})
			} else {
				ctx.Respond(domain.GetCycleStatusResponse{Polled: true, Status: *status})
			}
		case domain.TriggerPollRequest:
			triggers <- struct{}{}
		}
	}))
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, req)
	return rec
}

func TestHealthCheckHandler(t *testing.T) {
	assert := assert.New(t)

	as := actor.NewActorSystem()
	defer as.Shutdown()

	s := &Server{rootContext: as.Root, masterActor: fakeMaster(as, true, nil, nil)}
	rec := serve(s, http.MethodGet, "/healthcheck")
	assert.Equal(http.StatusOK, rec.Code)
	assert.Equal("health_check: OK", rec.Body.String())

	s = &Server{rootContext: as.Root, masterActor: fakeMaster(as, false, nil, nil)}
	rec = serve(s, http.MethodGet, "/healthcheck")
	assert.Equal(http.StatusServiceUnavailable, rec.Code)
}

func TestStatusHandler(t *testing.T) {
	require := require.New(t)

	as := actor.NewActorSystem()
	defer as.Shutdown()

	status := domain.Unhealthy("timeout")
	s := &Server{rootContext: as.Root, masterActor: fakeMaster(as, false, &status, nil)}
	rec := serve(s, http.MethodGet, "/status")
	require.Equal(http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal("offline: timeout", resp.Status)
	require.Equal("timeout", resp.Reason)
	require.False(resp.Healthy)
	require.NotNil(resp.LastPoll)

	s = &Server{rootContext: as.Root, masterActor: fakeMaster(as, true, nil, nil)}
	rec = serve(s, http.MethodGet, "/status")
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(domain.STATUS_UNKNOWN, resp.Status)
	require.True(resp.Running)
}

func TestPollHandler(t *testing.T) {
	assert := assert.New(t)

	as := actor.NewActorSystem()
	defer as.Shutdown()

	triggers := make(chan struct{}, 1)
	s := &Server{rootContext: as.Root, masterActor: fakeMaster(as, true, nil, triggers)}
	rec := serve(s, http.MethodPost, "/poll")
	assert.Equal(http.StatusAccepted, rec.Code)
	<-triggers
}

func TestMetricsHandler(t *testing.T) {
	assert := assert.New(t)

	m := metrics.NewPollMetrics()
	m.TriggerSkipped()

	s := &Server{gatherer: m.Registry}
	rec := serve(s, http.MethodGet, "/metrics")
	assert.Equal(http.StatusOK, rec.Code)
	assert.True(strings.Contains(rec.Body.String(), "kostal_poll_triggers_skipped_total 1"))

	s = &Server{}
	rec = serve(s, http.MethodGet, "/metrics")
	assert.Equal(http.StatusNotFound, rec.Code)
}
