package api

import (
	"errors"

	"rrtracker/internal/domain/repository"
	"rrtracker/internal/service/alphavantage"
	xhttp "rrtracker/pkg/http"
	xlogger "rrtracker/pkg/logger"
	"rrtracker/pkg/util"

	"github.com/labstack/echo/v4"
)

// PriceHandler serves spot quotes for the chart UI.
type PriceHandler struct {
	logger *xlogger.Logger
	oracle *alphavantage.Client
	apiKey string
}

func NewPriceHandler(logger *xlogger.Logger, oracle *alphavantage.Client, apiKey string) *PriceHandler {
	return &PriceHandler{logger: logger, oracle: oracle, apiKey: apiKey}
}

func (h *PriceHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/price", h.Quote)
}

type priceResponse struct {
	Price float64 `json:"price"`
}

func (h *PriceHandler) Quote(c echo.Context) error {
	symbol := util.SanitizeSymbol(c.QueryParam("symbol"))
	if symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol required"))
	}
	if h.apiKey == "" {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Missing ALPHA_VANTAGE_KEY"))
	}

	price, err := h.oracle.Quote(c.Request().Context(), symbol)
	if err != nil {
		if errors.Is(err, repository.ErrPriceNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no price for %s", symbol))
		}
		if errors.Is(err, repository.ErrRateLimited) {
			return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("market data rate limited").WithError(err))
		}
		h.logger.Error("quote failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("market data unavailable").WithError(err))
	}
	return xhttp.SuccessResponse(c, priceResponse{Price: price})
}
