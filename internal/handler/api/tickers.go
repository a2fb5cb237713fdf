package api

import (
	"rrtracker/internal/domain/models"
	"rrtracker/internal/domain/repository"
	xhttp "rrtracker/pkg/http"
	xlogger "rrtracker/pkg/logger"
	"rrtracker/pkg/util"

	"github.com/labstack/echo/v4"
)

// TickersHandler serves the parsed watchlist.
type TickersHandler struct {
	logger  *xlogger.Logger
	tickers repository.TickerSource
}

func NewTickersHandler(logger *xlogger.Logger, tickers repository.TickerSource) *TickersHandler {
	return &TickersHandler{logger: logger, tickers: tickers}
}

func (h *TickersHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/tickers", h.List)
	e.GET("/api/rr", h.Lookup)
}

type tickerListResponse struct {
	Items []models.TickerSpec `json:"items"`
}

func (h *TickersHandler) List(c echo.Context) error {
	items, err := h.tickers.List(c.Request().Context())
	if err != nil {
		h.logger.Error("ticker list failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("ticker source unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, tickerListResponse{Items: items})
}

// Lookup returns one watchlist row by symbol.
func (h *TickersHandler) Lookup(c echo.Context) error {
	symbol := util.SanitizeSymbol(c.QueryParam("symbol"))
	if symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol required"))
	}

	items, err := h.tickers.List(c.Request().Context())
	if err != nil {
		h.logger.Error("ticker list failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("ticker source unavailable").WithError(err))
	}
	for _, it := range items {
		if it.Symbol == symbol {
			return xhttp.SuccessResponse(c, it)
		}
	}
	return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown symbol %s", symbol))
}
