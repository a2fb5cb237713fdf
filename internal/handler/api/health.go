package api

import (
	"context"
	"net/http"

	xlogger "rrtracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthCheck is one named dependency probe.
type HealthCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// HealthHandler reports process liveness and dependency health.
type HealthHandler struct {
	logger *xlogger.Logger
	checks []HealthCheck
}

func NewHealthHandler(logger *xlogger.Logger, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{logger: logger, checks: checks}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Probe(ctx); err != nil {
			h.logger.Warn("health probe failed", xlogger.String("dep", chk.Name), xlogger.Error(err))
			deps[chk.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[chk.Name] = "ok"
	}
	return c.JSON(status, map[string]interface{}{
		"status": http.StatusText(status),
		"deps":   deps,
	})
}
