package usecase

import (
	"context"
	"errors"

	xlogger "rrtracker/pkg/logger"

	drepo "rrtracker/internal/domain/repository"
	"rrtracker/internal/service/unsub"
)

var ErrBadToken = errors.New("invalid unsubscribe token")

// BillingDirectory is a subscriber directory that also remembers the billing
// customer id per address.
type BillingDirectory interface {
	drepo.SubscriberDirectory
	SetCustomer(ctx context.Context, email, customerID string) error
	Customer(ctx context.Context, email string) (string, error)
}

// SubscriberManager fronts the directory for the HTTP handlers and applies
// billing events to the subscriber sets.
type SubscriberManager struct {
	dir    BillingDirectory
	signer *unsub.Signer
	logger *xlogger.Logger
}

func NewSubscriberManager(dir BillingDirectory, signer *unsub.Signer, logger *xlogger.Logger) *SubscriberManager {
	return &SubscriberManager{dir: dir, signer: signer, logger: logger}
}

// Directory exposes the read side for alert fan-out.
func (m *SubscriberManager) Directory() drepo.SubscriberDirectory {
	return m.dir
}

func (m *SubscriberManager) Subscribe(ctx context.Context, email string) (string, error) {
	return m.dir.Add(ctx, email)
}

func (m *SubscriberManager) List(ctx context.Context) ([]string, error) {
	return m.dir.Active(ctx)
}

// OptOut records an unconditional opt-out, used by the plain unsub endpoint.
func (m *SubscriberManager) OptOut(ctx context.Context, email string) (string, error) {
	return m.dir.Unsubscribe(ctx, email)
}

// OptOutSigned verifies the one-click link token before opting out.
func (m *SubscriberManager) OptOutSigned(ctx context.Context, email, token string) (string, error) {
	if !m.signer.Verify(email, token) {
		return "", ErrBadToken
	}
	return m.dir.Unsubscribe(ctx, email)
}

func (m *SubscriberManager) Resubscribe(ctx context.Context, email string) (string, error) {
	return m.dir.Resubscribe(ctx, email)
}

// ApplyCheckoutCompleted activates a subscriber after checkout and remembers
// the billing customer id for the portal redirect.
func (m *SubscriberManager) ApplyCheckoutCompleted(ctx context.Context, email, customerID string) error {
	e, err := m.dir.Add(ctx, email)
	if err != nil {
		return err
	}
	if customerID != "" {
		if err := m.dir.SetCustomer(ctx, e, customerID); err != nil {
			return err
		}
	}
	m.logger.Info("checkout completed", xlogger.String("email", e))
	return nil
}

// ApplySubscriptionStatus keeps the active set in sync with the billing
// subscription lifecycle.
func (m *SubscriberManager) ApplySubscriptionStatus(ctx context.Context, email, status string) error {
	switch status {
	case "canceled", "unpaid", "incomplete_expired":
		_, err := m.dir.Remove(ctx, email)
		return err
	default:
		_, err := m.dir.Add(ctx, email)
		return err
	}
}

// Customer resolves the billing customer id for an address, "" when unknown.
func (m *SubscriberManager) Customer(ctx context.Context, email string) (string, error) {
	return m.dir.Customer(ctx, email)
}
