package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	tickersChecked *prometheus.CounterVec
	crossings      *prometheus.CounterVec
	emails         *prometheus.CounterVec
	rateLimits     prometheus.Counter
	errorsTotal    *prometheus.CounterVec
	lastScore      *prometheus.GaugeVec
	lastPrice      *prometheus.GaugeVec
	runDuration    prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		tickersChecked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rrtracker_tickers_checked_total",
				Help: "Total number of per-ticker checks performed by batch runs",
			},
			[]string{"symbol"},
		),
		crossings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rrtracker_zone_crossings_total",
				Help: "Total number of detected zone crossings",
			},
			[]string{"symbol", "direction"},
		),
		emails: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rrtracker_emails_total",
				Help: "Alert email delivery attempts by outcome",
			},
			[]string{"outcome"},
		),
		rateLimits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rrtracker_rate_limited_runs_total",
				Help: "Batch runs cut short by an upstream rate limit",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rrtracker_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rrtracker_last_score",
				Help: "Last computed risk/reward score for a symbol",
			},
			[]string{"symbol"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rrtracker_last_price",
				Help: "Last observed price for a symbol",
			},
			[]string{"symbol"},
		),
		runDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rrtracker_run_duration_seconds",
				Help:    "Duration of batch runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordTickerChecked records one per-ticker batch step.
func (r *Recorder) RecordTickerChecked(symbol string) {
	r.tickersChecked.WithLabelValues(symbol).Inc()
}

// RecordCrossing records a detected zone crossing.
func (r *Recorder) RecordCrossing(symbol, direction string) {
	r.crossings.WithLabelValues(symbol, direction).Inc()
}

// RecordEmail records an email delivery attempt outcome ("delivered" or "failed").
func (r *Recorder) RecordEmail(outcome string) {
	r.emails.WithLabelValues(outcome).Inc()
}

// RecordRateLimited records a batch run halted by the price source.
func (r *Recorder) RecordRateLimited() {
	r.rateLimits.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordObservation records the last score and price for a symbol.
func (r *Recorder) RecordObservation(symbol string, price, score float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
	r.lastScore.WithLabelValues(symbol).Set(score)
}

// RecordRunDuration records batch run latency in seconds.
func (r *Recorder) RecordRunDuration(seconds float64) {
	r.runDuration.Observe(seconds)
}
