package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"rrtracker/internal/domain/models"
	"rrtracker/internal/domain/repository"
	"rrtracker/internal/scoring"
	xlogger "rrtracker/pkg/logger"
	"rrtracker/pkg/util"
)

// CheckerOption configures optional CrossingChecker collaborators.
type CheckerOption func(*CrossingChecker)

// WithObservationSink records every scored observation.
func WithObservationSink(sink repository.ObservationSink) CheckerOption {
	return func(c *CrossingChecker) {
		c.sinks = append(c.sinks, sink)
	}
}

// WithAlertPublisher emits crossing events to an extra destination. May be
// given more than once; publish failures are logged, never fatal.
func WithAlertPublisher(pub repository.AlertPublisher) CheckerOption {
	return func(c *CrossingChecker) {
		c.publishers = append(c.publishers, pub)
	}
}

// WithRunHook is called with the summary after every completed run.
func WithRunHook(hook func(*models.RunSummary)) CheckerOption {
	return func(c *CrossingChecker) {
		c.runHooks = append(c.runHooks, hook)
	}
}

// CrossingChecker is the cursor-paginated batch runner. Each invocation
// processes a bounded window of the ticker list, sequentially; the upstream
// price source is rate limited and the sequencing is the backpressure.
type CrossingChecker struct {
	tickers  repository.TickerSource
	oracle   repository.PriceOracle
	state    repository.StateStore
	notifier *Notifier
	metrics  repository.Metrics
	logger   *xlogger.Logger

	perRun     int
	sinks      []repository.ObservationSink
	publishers []repository.AlertPublisher
	runHooks   []func(*models.RunSummary)
	now        func() time.Time
}

func NewCrossingChecker(
	tickers repository.TickerSource,
	oracle repository.PriceOracle,
	state repository.StateStore,
	notifier *Notifier,
	metrics repository.Metrics,
	logger *xlogger.Logger,
	perRun int,
	opts ...CheckerOption,
) *CrossingChecker {
	if perRun <= 0 {
		perRun = 4
	}
	c := &CrossingChecker{
		tickers:  tickers,
		oracle:   oracle,
		state:    state,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		perRun:   perRun,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one batch invocation. forceAll processes the whole list from
// position zero, ignoring the cursor and slice size.
func (c *CrossingChecker) Run(ctx context.Context, forceAll bool) (*models.RunSummary, error) {
	started := c.now()
	defer func() {
		c.metrics.RecordRunDuration(time.Since(started).Seconds())
	}()

	specs, err := c.tickers.List(ctx)
	if err != nil {
		c.metrics.RecordError("ticker_source")
		return nil, err
	}
	total := len(specs)
	if total == 0 {
		return &models.RunSummary{}, nil
	}

	start := 0
	if !forceAll {
		start, err = c.state.GetCursor(ctx)
		if err != nil {
			c.metrics.RecordError("state_store")
			return nil, err
		}
		// The list may have shrunk since the cursor was written.
		start %= total
	}

	per := total
	if !forceAll && c.perRun < total {
		per = c.perRun
	}

	slice := window(specs, start, per)
	nextCursor := (start + per) % total

	c.logger.Info("batch window",
		xlogger.Int("size", len(slice)),
		xlogger.Int("total", total),
		xlogger.Int("cursor", start),
		xlogger.Int("nextCursor", nextCursor),
	)

	processed, sent := 0, 0
	rateLimited := false

	for _, spec := range slice {
		emailed, err := c.step(ctx, spec)
		if errors.Is(err, repository.ErrRateLimited) {
			// Retry the same window next run.
			rateLimited = true
			c.metrics.RecordRateLimited()
			c.logger.Warn("rate limited, stopping early", xlogger.String("symbol", spec.Symbol))
			break
		}
		if err != nil {
			// A broken state store cannot be worked around: a lost write
			// loses the cooldown stamp and re-alerts on every poll.
			return nil, err
		}
		processed++
		if emailed {
			sent++
		}
	}

	if rateLimited && !forceAll {
		nextCursor = start
	}
	if err := c.state.SetCursor(ctx, nextCursor); err != nil {
		c.metrics.RecordError("state_store")
		return nil, err
	}

	summary := &models.RunSummary{
		Processed:   processed,
		Total:       total,
		Sent:        sent,
		NextCursor:  nextCursor,
		RateLimited: rateLimited,
	}
	c.logger.Info("batch done",
		xlogger.Int("processed", summary.Processed),
		xlogger.Int("sent", summary.Sent),
		xlogger.Bool("rateLimited", summary.RateLimited),
	)
	for _, hook := range c.runHooks {
		hook(summary)
	}
	return summary, nil
}

// step handles one ticker. Price and range failures are logged and absorbed
// so the rest of the window still runs; ErrRateLimited and state-store
// failures propagate, the latter aborting the whole run.
func (c *CrossingChecker) step(ctx context.Context, spec models.TickerSpec) (bool, error) {
	obs, err := c.resolve(ctx, spec)
	if err != nil {
		if errors.Is(err, repository.ErrRateLimited) {
			return false, err
		}
		c.logger.Warn("price unavailable", xlogger.String("symbol", spec.Symbol), xlogger.Error(err))
		c.metrics.RecordError("price")
		return false, nil
	}

	score, err := scoring.Score(obs.Price, spec.Low, spec.High)
	if err != nil {
		c.logger.Warn("unusable range",
			xlogger.String("symbol", spec.Symbol),
			xlogger.Float64("low", spec.Low),
			xlogger.Float64("high", spec.High),
			xlogger.Error(err),
		)
		c.metrics.RecordError("range")
		return false, nil
	}
	zone := scoring.ZoneOf(score)

	c.metrics.RecordTickerChecked(spec.Symbol)
	c.metrics.RecordObservation(spec.Symbol, obs.Price, score)
	for _, sink := range c.sinks {
		if err := sink.Record(ctx, obs, score, int(zone)); err != nil {
			c.logger.Warn("observation sink", xlogger.Error(err))
		}
	}
	c.logger.Info("scored",
		xlogger.String("symbol", spec.Symbol),
		xlogger.Float64("price", obs.Price),
		xlogger.Float64("score", score),
		xlogger.String("zone", zone.Name()),
	)

	prior, err := c.state.GetAlertState(ctx, spec.Symbol)
	if err != nil {
		c.logger.Error("load alert state", xlogger.String("symbol", spec.Symbol), xlogger.Error(err))
		c.metrics.RecordError("state_store")
		return false, fmt.Errorf("load alert state %s: %w", spec.Symbol, err)
	}
	if prior == nil || prior.LastZone == nil {
		// First sighting seeds history and never alerts.
		z := int(zone)
		seed := &models.AlertState{LastZone: &z, LastPrice: obs.Price, LastDate: obs.AsOfDate}
		if prior != nil {
			seed.LastEmailAt = prior.LastEmailAt
		}
		if err := c.state.SetAlertState(ctx, spec.Symbol, seed); err != nil {
			c.logger.Error("seed alert state", xlogger.String("symbol", spec.Symbol), xlogger.Error(err))
			c.metrics.RecordError("state_store")
			return false, fmt.Errorf("seed alert state %s: %w", spec.Symbol, err)
		}
		return false, nil
	}

	from := scoring.Zone(*prior.LastZone)
	cross := scoring.Detect(&from, zone)
	if !cross.Occurred {
		// Steady state still refreshes the cached price and date.
		prior.LastPrice = obs.Price
		prior.LastDate = obs.AsOfDate
		if err := c.state.SetAlertState(ctx, spec.Symbol, prior); err != nil {
			c.logger.Error("refresh alert state", xlogger.String("symbol", spec.Symbol), xlogger.Error(err))
			c.metrics.RecordError("state_store")
			return false, fmt.Errorf("refresh alert state %s: %w", spec.Symbol, err)
		}
		return false, nil
	}

	c.logger.Info("zone crossing",
		xlogger.String("symbol", spec.Symbol),
		xlogger.String("from", from.Name()),
		xlogger.String("to", zone.Name()),
		xlogger.String("direction", string(cross.Direction)),
	)
	c.metrics.RecordCrossing(spec.Symbol, string(cross.Direction))

	emailed, updated := c.notifier.MaybeNotify(ctx, spec, prior, zone, cross, obs)
	if err := c.state.SetAlertState(ctx, spec.Symbol, updated); err != nil {
		// Losing this write loses the cooldown stamp for an already-sent
		// email, so it must fail the run.
		c.logger.Error("persist alert state", xlogger.String("symbol", spec.Symbol), xlogger.Error(err))
		c.metrics.RecordError("state_store")
		return false, fmt.Errorf("persist alert state %s: %w", spec.Symbol, err)
	}

	ev := &models.CrossingEvent{
		Symbol:        spec.Symbol,
		FromZone:      int(from),
		ToZone:        int(zone),
		FromZoneName:  from.Name(),
		ToZoneName:    zone.Name(),
		Direction:     string(cross.Direction),
		BoundaryScore: cross.Boundary,
		BoundaryPrice: scoring.PriceAtScore(spec.Low, spec.High, cross.Boundary),
		Price:         obs.Price,
		AsOfDate:      obs.AsOfDate,
		EmailSent:     emailed,
		DetectedAt:    c.now().UTC(),
	}
	for _, pub := range c.publishers {
		if err := pub.PublishCrossing(ctx, ev); err != nil {
			c.logger.Warn("publish crossing", xlogger.String("symbol", spec.Symbol), xlogger.Error(err))
		}
	}

	return emailed, nil
}

// resolve prefers a finite pre-supplied price from the source record and
// only then asks the oracle.
func (c *CrossingChecker) resolve(ctx context.Context, spec models.TickerSpec) (*models.PriceObservation, error) {
	if spec.Price > 0 && !math.IsInf(spec.Price, 0) && !math.IsNaN(spec.Price) {
		return &models.PriceObservation{
			Symbol:   spec.Symbol,
			Price:    spec.Price,
			AsOfDate: util.DayString(c.now()),
		}, nil
	}
	return c.oracle.Resolve(ctx, spec.Symbol)
}

// window returns per specs starting at start, wrapping past the end.
func window(specs []models.TickerSpec, start, per int) []models.TickerSpec {
	total := len(specs)
	if per >= total {
		per = total
	}
	end := start + per
	if end <= total {
		return specs[start:end]
	}
	out := make([]models.TickerSpec, 0, per)
	out = append(out, specs[start:]...)
	out = append(out, specs[:end-total]...)
	return out
}
