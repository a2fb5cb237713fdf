package api

import (
	"rrtracker/internal/domain/models"
	"rrtracker/internal/domain/repository"
	xhttp "rrtracker/pkg/http"
	xlogger "rrtracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TestEmailHandler sends a canned message to verify the mail pipeline.
type TestEmailHandler struct {
	logger    *xlogger.Logger
	mailer    repository.Mailer
	defaultTo string
}

func NewTestEmailHandler(logger *xlogger.Logger, mailer repository.Mailer, defaultTo string) *TestEmailHandler {
	return &TestEmailHandler{logger: logger, mailer: mailer, defaultTo: defaultTo}
}

func (h *TestEmailHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/test-email", h.Send)
}

func (h *TestEmailHandler) Send(c echo.Context) error {
	req := &models.TestEmailRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	to := req.To
	if to == "" {
		to = h.defaultTo
	}
	if to == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no recipient configured"))
	}

	err := h.mailer.Send(c.Request().Context(), to,
		"RR-Tracker: test email",
		"<p>This is a test email from your RR-Tracker deployment.</p>")
	if err != nil {
		h.logger.Error("test email failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("send failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]bool{"ok": true})
}
