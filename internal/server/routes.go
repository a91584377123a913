package server

import (
	"net/http"
	"time"

	"github.com/berfenger/kostal2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type StatusResponse struct {
	Status   string     `json:"status"`
	Healthy  bool       `json:"healthy"`
	Reason   string     `json:"reason,omitempty"`
	Running  bool       `json:"running"`
	LastPoll *time.Time `json:"last_poll,omitempty"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/status", s.StatusHandler)
	e.POST("/poll", s.PollHandler)
	if s.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) StatusHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetCycleStatusRequest{}, 5*time.Second).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetCycleStatusResponse)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "unexpected response")
	}
	if !response.Polled {
		return c.JSON(http.StatusOK, StatusResponse{
			Status:  domain.STATUS_UNKNOWN,
			Running: response.Running,
		})
	}
	lastPoll := response.LastPoll
	return c.JSON(http.StatusOK, StatusResponse{
		Status:   response.Status.String(),
		Healthy:  response.Status.Healthy,
		Reason:   response.Status.Reason,
		Running:  response.Running,
		LastPoll: &lastPoll,
	})
}

// PollHandler requests an extra cycle. It is dropped when one is running.
func (s *Server) PollHandler(c echo.Context) error {
	s.rootContext.Send(s.masterActor, domain.TriggerPollRequest{})
	return c.NoContent(http.StatusAccepted)
}
