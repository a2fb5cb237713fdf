package api

import (
	"errors"
	"fmt"
	"net/http"

	"rrtracker/internal/domain/models"
	"rrtracker/internal/repository"
	"rrtracker/internal/usecase"
	xhttp "rrtracker/pkg/http"
	xlogger "rrtracker/pkg/logger"
	"rrtracker/pkg/util"

	"github.com/labstack/echo/v4"
)

// SubscribersHandler manages the alert recipient list, including the two
// unsubscribe flows: the signed one-click link from emails and the plain
// email-only endpoint used by the site.
type SubscribersHandler struct {
	logger *xlogger.Logger
	subs   *usecase.SubscriberManager
}

func NewSubscribersHandler(logger *xlogger.Logger, subs *usecase.SubscriberManager) *SubscribersHandler {
	return &SubscribersHandler{logger: logger, subs: subs}
}

func (h *SubscribersHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/subscribe", h.Subscribe)
	e.GET("/api/subscribers", h.List)
	e.GET("/api/unsubscribe", h.UnsubscribeSigned)
	e.GET("/api/unsub", h.Unsubscribe)
	e.POST("/api/resubscribe", h.Resubscribe)
}

func (h *SubscribersHandler) Subscribe(c echo.Context) error {
	req := &models.SubscribeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	email, err := h.subs.Subscribe(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidEmail) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid email"))
		}
		h.logger.Error("subscribe failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("subscribe failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"email": email})
}

func (h *SubscribersHandler) List(c echo.Context) error {
	emails, err := h.subs.List(c.Request().Context())
	if err != nil {
		h.logger.Error("list subscribers failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("list failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"count": len(emails), "emails": emails})
}

// UnsubscribeSigned handles the one-click link from alert emails. It returns
// HTML because the click lands in a browser.
func (h *SubscribersHandler) UnsubscribeSigned(c echo.Context) error {
	email := util.NormalizeEmail(c.QueryParam("e"))
	token := c.QueryParam("t")

	if email == "" {
		return c.String(http.StatusBadRequest, "Invalid or expired unsubscribe link.")
	}
	e, err := h.subs.OptOutSigned(c.Request().Context(), email, token)
	if err != nil {
		if errors.Is(err, usecase.ErrBadToken) || errors.Is(err, repository.ErrInvalidEmail) {
			return c.String(http.StatusBadRequest, "Invalid or expired unsubscribe link.")
		}
		h.logger.Error("unsubscribe failed", xlogger.Error(err))
		return c.String(http.StatusInternalServerError, "Something went wrong.")
	}

	return c.HTML(http.StatusOK, fmt.Sprintf(`<html><body style="font-family:system-ui;max-width:560px;margin:40px auto">
  <h2>Unsubscribed</h2>
  <p><b>%s</b> will no longer receive alerts.</p>
  <p><a href="/">Return to site</a></p>
</body></html>`, e))
}

// Unsubscribe handles the plain email-only flow.
func (h *SubscribersHandler) Unsubscribe(c echo.Context) error {
	email := util.NormalizeEmail(c.QueryParam("email"))
	if email == "" {
		return c.String(http.StatusBadRequest, "Missing email address.")
	}

	e, err := h.subs.OptOut(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidEmail) {
			return c.String(http.StatusBadRequest, "Invalid email.")
		}
		h.logger.Error("opt-out failed", xlogger.Error(err))
		return c.String(http.StatusInternalServerError, "Something went wrong.")
	}

	return c.HTML(http.StatusOK, fmt.Sprintf(`<!doctype html>
<div style="font-family:system-ui,Segoe UI,Arial,sans-serif;max-width:560px;margin:40px auto;padding:24px;border:1px solid #eee;border-radius:12px">
  <h2 style="margin-top:0">You're unsubscribed</h2>
  <p>We'll stop sending R/R alerts to <strong>%s</strong>.</p>
  <p style="color:#666;font-size:14px">If this was a mistake, you can resubscribe any time by signing up again.</p>
</div>`, e))
}

func (h *SubscribersHandler) Resubscribe(c echo.Context) error {
	req := &models.SubscribeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	email, err := h.subs.Resubscribe(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidEmail) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("invalid email"))
		}
		h.logger.Error("resubscribe failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("resubscribe failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"email": email})
}
