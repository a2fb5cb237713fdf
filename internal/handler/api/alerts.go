// Package api holds the Echo HTTP handlers.
package api

import (
	"rrtracker/internal/usecase"
	xhttp "rrtracker/pkg/http"
	xlogger "rrtracker/pkg/logger"
	"rrtracker/pkg/util"

	"github.com/labstack/echo/v4"
)

// AlertsHandler exposes the batch trigger endpoint.
type AlertsHandler struct {
	logger  *xlogger.Logger
	checker *usecase.CrossingChecker
	// apiKey gates the run: without a market data key a run can only burn
	// the cursor, so refuse outright.
	apiKey string
}

func NewAlertsHandler(logger *xlogger.Logger, checker *usecase.CrossingChecker, apiKey string) *AlertsHandler {
	return &AlertsHandler{logger: logger, checker: checker, apiKey: apiKey}
}

func (h *AlertsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/alerts/run", h.Run)
	e.POST("/api/alerts/run", h.Run)
}

// Run triggers one batch invocation. ?all=1 processes the whole list,
// ignoring the cursor and slice size.
func (h *AlertsHandler) Run(c echo.Context) error {
	if h.apiKey == "" {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Missing ALPHA_VANTAGE_KEY"))
	}

	forceAll := util.ParseBoolDefault(c.QueryParam("all"), false)

	summary, err := h.checker.Run(c.Request().Context(), forceAll)
	if err != nil {
		h.logger.Error("batch run failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("batch run failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, summary)
}
