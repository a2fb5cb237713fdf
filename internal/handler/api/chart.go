package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	xlogger "rrtracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChartHandler proxies remote chart images with display-friendly headers so
// browsers render them inline instead of downloading.
type ChartHandler struct {
	logger *xlogger.Logger
	client *http.Client
}

func NewChartHandler(logger *xlogger.Logger) *ChartHandler {
	return &ChartHandler{
		logger: logger,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (h *ChartHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/chart", h.Proxy)
}

func (h *ChartHandler) Proxy(c echo.Context) error {
	url := c.QueryParam("url")
	lower := strings.ToLower(url)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return c.String(http.StatusBadRequest, "bad url")
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, url, nil)
	if err != nil {
		return c.String(http.StatusBadRequest, "bad url")
	}
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("chart fetch failed", xlogger.String("url", url), xlogger.Error(err))
		return c.String(http.StatusBadGateway, "upstream error")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.String(http.StatusBadGateway, "upstream error")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename=chart.png`)
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	c.Response().WriteHeader(http.StatusOK)

	_, err = io.Copy(c.Response(), resp.Body)
	return err
}
