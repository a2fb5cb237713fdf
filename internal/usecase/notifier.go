// Package usecase wires the scoring core to the stores, the price oracle and
// the mail transport. It owns the batch loop and the cooldown policy.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"rrtracker/internal/domain/models"
	"rrtracker/internal/domain/repository"
	"rrtracker/internal/scoring"
	"rrtracker/internal/service/unsub"
	xlogger "rrtracker/pkg/logger"
)

// Cap on parallel mail deliveries per crossing.
const maxConcurrentSends = 8

// Notifier sends crossing alerts to every active subscriber, at most once
// per ticker per cooldown window. The window is keyed to successful
// delivery: if every send fails, the crossing stays eligible for retry.
type Notifier struct {
	subscribers repository.SubscriberDirectory
	mailer      repository.Mailer
	signer      *unsub.Signer
	metrics     repository.Metrics
	logger      *xlogger.Logger

	baseURL  string
	cooldown time.Duration
	now      func() time.Time
}

func NewNotifier(
	subscribers repository.SubscriberDirectory,
	mailer repository.Mailer,
	signer *unsub.Signer,
	metrics repository.Metrics,
	logger *xlogger.Logger,
	baseURL string,
	cooldown time.Duration,
) *Notifier {
	return &Notifier{
		subscribers: subscribers,
		mailer:      mailer,
		signer:      signer,
		metrics:     metrics,
		logger:      logger,
		baseURL:     baseURL,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// MaybeNotify handles one detected crossing. It returns whether at least one
// email was delivered and the AlertState to persist: lastZone always moves
// to the new zone, lastEmailAt moves only on successful delivery.
func (n *Notifier) MaybeNotify(
	ctx context.Context,
	spec models.TickerSpec,
	prior *models.AlertState,
	to scoring.Zone,
	cross scoring.Crossing,
	obs *models.PriceObservation,
) (bool, *models.AlertState) {
	toInt := int(to)
	updated := &models.AlertState{
		LastZone:    &toInt,
		LastEmailAt: prior.LastEmailAt,
		LastPrice:   obs.Price,
		LastDate:    obs.AsOfDate,
	}

	now := n.now()
	if prior.LastEmailAt > 0 && now.UnixMilli()-prior.LastEmailAt < n.cooldown.Milliseconds() {
		n.logger.Info("on cooldown, no email",
			xlogger.String("symbol", spec.Symbol),
			xlogger.Int64("lastEmailAt", prior.LastEmailAt),
		)
		return false, updated
	}

	recipients, err := n.subscribers.Active(ctx)
	if err != nil {
		n.logger.Error("load subscribers", xlogger.Error(err))
		n.metrics.RecordError("subscribers")
		return false, updated
	}
	if len(recipients) == 0 {
		n.logger.Info("no active subscribers, skipping send", xlogger.String("symbol", spec.Symbol))
		return false, updated
	}

	fromZone := scoring.Zone(-1)
	if prior.LastZone != nil {
		fromZone = scoring.Zone(*prior.LastZone)
	}
	subject := fmt.Sprintf("R/R alert: %s moved %s in price into %s",
		spec.Symbol, cross.Direction, to.Name())

	// One message per recipient so a bad address never blocks the rest.
	var wg sync.WaitGroup
	var delivered atomic.Int64
	sem := make(chan struct{}, maxConcurrentSends)
	for _, rcpt := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(rcpt string) {
			defer wg.Done()
			defer func() { <-sem }()
			html := n.composeHTML(spec, fromZone, to, cross, obs, rcpt)
			if err := n.mailer.Send(ctx, rcpt, subject, html); err != nil {
				n.logger.Warn("email send failed",
					xlogger.String("symbol", spec.Symbol),
					xlogger.String("to", rcpt),
					xlogger.Error(err),
				)
				n.metrics.RecordEmail("failed")
				return
			}
			delivered.Add(1)
			n.metrics.RecordEmail("delivered")
		}(rcpt)
	}
	wg.Wait()

	n.logger.Info("crossing fan-out done",
		xlogger.String("symbol", spec.Symbol),
		xlogger.Int64("delivered", delivered.Load()),
		xlogger.Int("recipients", len(recipients)),
	)

	if delivered.Load() == 0 {
		return false, updated
	}
	updated.LastEmailAt = now.UnixMilli()
	return true, updated
}

func (n *Notifier) composeHTML(
	spec models.TickerSpec,
	from, to scoring.Zone,
	cross scoring.Crossing,
	obs *models.PriceObservation,
	recipient string,
) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:system-ui,Segoe UI,Arial,sans-serif">`)
	fmt.Fprintf(&b, `<h2 style="margin:0 0 8px 0">%s moved %s in price</h2>`, spec.Symbol, cross.Direction)
	fmt.Fprintf(&b, `<p style="margin:0 0 6px 0"><strong>From:</strong> %s</p>`, from.Name())
	fmt.Fprintf(&b, `<p style="margin:0 0 6px 0"><strong>To:</strong> %s</p>`, to.Name())
	if cross.Occurred && cross.Boundary > 0 {
		bp := scoring.PriceAtScore(spec.Low, spec.High, cross.Boundary)
		fmt.Fprintf(&b, `<p style="margin:0 0 6px 0"><strong>Crossed:</strong> %.0f-line near ~$%.2f</p>`,
			cross.Boundary, bp)
	}
	fmt.Fprintf(&b, `<p style="margin:0 0 6px 0"><strong>Latest close:</strong> $%.2f <span style="color:#666">(as of %s)</span></p>`,
		obs.Price, obs.AsOfDate)
	b.WriteString(`<hr style="border:none;border-top:1px solid #ddd;margin:12px 0" />`)
	fmt.Fprintf(&b, `<p style="font-size:12px;color:#666;margin:0">Max one alert per ticker per %s. Not investment advice.</p>`,
		cooldownPhrase(n.cooldown))
	fmt.Fprintf(&b, `<p style="font-size:12px;color:#666;margin:8px 0 0 0"><a href="%s">Unsubscribe</a></p>`,
		n.signer.Link(n.baseURL, recipient))
	b.WriteString(`</div>`)
	return b.String()
}

// cooldownPhrase renders the configured window for the email footer.
func cooldownPhrase(d time.Duration) string {
	if d > 0 && d%(24*time.Hour) == 0 {
		days := int(d / (24 * time.Hour))
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	return d.String()
}
