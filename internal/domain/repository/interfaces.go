package repository

import (
	"context"

	"rrtracker/internal/domain/models"
)

// TickerSource returns the ordered, authoritative ticker list.
type TickerSource interface {
	List(ctx context.Context) ([]models.TickerSpec, error)
}

// PriceOracle resolves the latest price for a symbol. It returns
// ErrRateLimited when the upstream throttles and ErrPriceNotFound when no
// data exists for the symbol; callers treat the two very differently.
type PriceOracle interface {
	Resolve(ctx context.Context, symbol string) (*models.PriceObservation, error)
}

// StateStore persists per-ticker alert state and the batch cursor.
// GetAlertState returns (nil, nil) for a symbol that was never observed.
type StateStore interface {
	GetAlertState(ctx context.Context, symbol string) (*models.AlertState, error)
	SetAlertState(ctx context.Context, symbol string, st *models.AlertState) error
	GetCursor(ctx context.Context) (int, error)
	SetCursor(ctx context.Context, cursor int) error
}

// SubscriberDirectory manages the set of alert recipients.
type SubscriberDirectory interface {
	// Active returns normalized, deduplicated addresses that have not opted out.
	Active(ctx context.Context) ([]string, error)
	Add(ctx context.Context, email string) (string, error)
	Remove(ctx context.Context, email string) (string, error)
	Unsubscribe(ctx context.Context, email string) (string, error)
	Resubscribe(ctx context.Context, email string) (string, error)
	IsUnsubscribed(ctx context.Context, email string) (bool, error)
}

// Mailer sends one message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ObservationSink records score observations for offline analysis. Optional;
// failures are logged, never fatal to a batch run.
type ObservationSink interface {
	Record(ctx context.Context, obs *models.PriceObservation, score float64, zone int) error
	Close() error
}

// AlertPublisher emits crossing events to an audit stream. Optional.
type AlertPublisher interface {
	PublishCrossing(ctx context.Context, ev *models.CrossingEvent) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordTickerChecked(symbol string)
	RecordCrossing(symbol, direction string)
	RecordEmail(outcome string)
	RecordRateLimited()
	RecordError(kind string)
	RecordObservation(symbol string, price, score float64)
	RecordRunDuration(seconds float64)
}
