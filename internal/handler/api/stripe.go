package api

import (
	"encoding/json"
	"io"
	"net/http"

	"rrtracker/internal/usecase"
	xhttp "rrtracker/pkg/http"
	xlogger "rrtracker/pkg/logger"
	"rrtracker/pkg/util"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Stripe caps webhook payloads at 64KB; anything larger is not ours.
const maxWebhookBody = 65536

// StripeHandler syncs the subscriber list with billing events and serves the
// customer portal redirect.
type StripeHandler struct {
	logger        *xlogger.Logger
	subs          *usecase.SubscriberManager
	webhookSecret string
	returnURL     string
}

func NewStripeHandler(logger *xlogger.Logger, subs *usecase.SubscriberManager, secretKey, webhookSecret, returnURL string) *StripeHandler {
	stripe.Key = secretKey
	return &StripeHandler{
		logger:        logger,
		subs:          subs,
		webhookSecret: webhookSecret,
		returnURL:     returnURL,
	}
}

func (h *StripeHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/stripe/webhook", h.Webhook)
	e.GET("/api/stripe/portal", h.Portal)
}

func (h *StripeHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.String(http.StatusBadRequest, "read error")
	}

	event, err := webhook.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook signature rejected", xlogger.Error(err))
		return c.String(http.StatusBadRequest, "Webhook Error: "+err.Error())
	}

	ctx := c.Request().Context()
	switch string(event.Type) {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return c.String(http.StatusBadRequest, "bad payload")
		}
		email := sess.CustomerEmail
		if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
			email = sess.CustomerDetails.Email
		}
		customerID := ""
		if sess.Customer != nil {
			customerID = sess.Customer.ID
		}
		if email != "" {
			if err := h.subs.ApplyCheckoutCompleted(ctx, email, customerID); err != nil {
				h.logger.Error("apply checkout", xlogger.Error(err))
				return xhttp.AppErrorResponse(c, xhttp.InternalError("apply failed").WithError(err))
			}
		}

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return c.String(http.StatusBadRequest, "bad payload")
		}
		// Email is only present when the customer object is expanded.
		email := ""
		if sub.Customer != nil {
			email = sub.Customer.Email
		}
		status := string(sub.Status)
		if string(event.Type) == "customer.subscription.deleted" {
			status = "canceled"
		}
		if email != "" {
			if err := h.subs.ApplySubscriptionStatus(ctx, email, status); err != nil {
				h.logger.Error("apply subscription status", xlogger.Error(err))
				return xhttp.AppErrorResponse(c, xhttp.InternalError("apply failed").WithError(err))
			}
		}

	default:
		h.logger.Debug("ignoring webhook event", xlogger.String("type", string(event.Type)))
	}

	return xhttp.SuccessResponse(c, map[string]bool{"received": true})
}

// Portal redirects a subscriber to the Stripe billing portal.
func (h *StripeHandler) Portal(c echo.Context) error {
	email := util.NormalizeEmail(c.QueryParam("email"))
	if email == "" {
		return c.String(http.StatusBadRequest, "email required")
	}

	customerID, err := h.subs.Customer(c.Request().Context(), email)
	if err != nil {
		h.logger.Error("customer lookup failed", xlogger.Error(err))
		return c.String(http.StatusInternalServerError, "lookup failed")
	}
	if customerID == "" {
		return c.String(http.StatusNotFound, "No Stripe customer found for this email")
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(h.returnURL),
	})
	if err != nil {
		h.logger.Error("portal session failed", xlogger.Error(err))
		return c.String(http.StatusBadGateway, "portal unavailable")
	}
	return c.Redirect(http.StatusFound, sess.URL)
}
