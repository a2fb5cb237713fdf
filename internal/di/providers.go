// Package di assembles the application graph for google/wire.
package di

import (
	"context"
	"fmt"
	"time"

	drepo "rrtracker/internal/domain/repository"
	"rrtracker/internal/handler/api"
	"rrtracker/internal/handler/ws"
	internalrepo "rrtracker/internal/repository"
	"rrtracker/internal/service/alphavantage"
	"rrtracker/internal/service/resend"
	"rrtracker/internal/service/sheet"
	"rrtracker/internal/service/unsub"
	"rrtracker/internal/usecase"
	pkgch "rrtracker/pkg/clickhouse"
	"rrtracker/pkg/config"
	xhttp "rrtracker/pkg/http"
	pkgkafka "rrtracker/pkg/kafka"
	"rrtracker/pkg/kv"
	xlogger "rrtracker/pkg/logger"
	"rrtracker/pkg/metrics"
	"rrtracker/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	return xlogger.New(&xlogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideKVStore creates the Redis store and verifies connectivity.
func ProvideKVStore(cfg *config.Config) (*kv.Store, error) {
	store, err := kv.NewStore(
		kv.WithAddr(cfg.Redis.Host, cfg.Redis.Port),
		kv.WithPassword(cfg.Redis.Password),
		kv.WithDB(cfg.Redis.DB),
		kv.WithPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis store: %w", err)
	}
	return store, nil
}

// ProvideStateStore creates the alert state repository.
func ProvideStateStore(store *kv.Store) drepo.StateStore {
	return internalrepo.NewRedisStateStore(store)
}

// ProvideSubscriberDirectory creates the subscriber repository.
func ProvideSubscriberDirectory(store *kv.Store) *internalrepo.RedisSubscriberDirectory {
	return internalrepo.NewRedisSubscriberDirectory(store)
}

// ProvideSigner creates the unsubscribe link signer.
func ProvideSigner(cfg *config.Config) *unsub.Signer {
	return unsub.NewSigner(cfg.Unsubscribe.Secret)
}

// ProvideMailer creates the Resend mail client.
func ProvideMailer(cfg *config.Config) drepo.Mailer {
	return resend.New(cfg.Mail.APIKey, cfg.Mail.BaseURL, cfg.Mail.From, cfg.Mail.Timeout)
}

// ProvideOracle creates the Alpha Vantage price client.
func ProvideOracle(cfg *config.Config, logger *xlogger.Logger) *alphavantage.Client {
	return alphavantage.New(
		cfg.AlphaVantage.APIKey,
		cfg.AlphaVantage.BaseURL,
		cfg.AlphaVantage.Timeout,
		cfg.AlphaVantage.RequestsPerMinute,
		logger,
	)
}

// ProvideTickerSource creates the sheet-backed watchlist source.
func ProvideTickerSource(cfg *config.Config, logger *xlogger.Logger) *sheet.Source {
	return sheet.New(cfg.Sheet.CSVURL, cfg.Sheet.Timeout, cfg.Sheet.CacheTTL, logger)
}

// ProvideHub creates the websocket fan-out hub.
func ProvideHub(logger *xlogger.Logger) *ws.Hub {
	return ws.NewHub(logger)
}

// ProvideSubscriberManager fronts the directory for the HTTP handlers.
func ProvideSubscriberManager(dir *internalrepo.RedisSubscriberDirectory, signer *unsub.Signer, logger *xlogger.Logger) *usecase.SubscriberManager {
	return usecase.NewSubscriberManager(dir, signer, logger)
}

// ProvideNotifier creates the cooldown-gated notifier.
func ProvideNotifier(
	cfg *config.Config,
	dir *internalrepo.RedisSubscriberDirectory,
	mailer drepo.Mailer,
	signer *unsub.Signer,
	m drepo.Metrics,
	logger *xlogger.Logger,
) *usecase.Notifier {
	return usecase.NewNotifier(dir, mailer, signer, m, logger, cfg.BaseURL, cfg.Alerts.Cooldown)
}

// ProvideChecker creates the batch runner with its optional Kafka and
// ClickHouse collaborators. The returned cleanup closes whatever was opened.
func ProvideChecker(
	cfg *config.Config,
	tickers *sheet.Source,
	oracle *alphavantage.Client,
	state drepo.StateStore,
	notifier *usecase.Notifier,
	m drepo.Metrics,
	hub *ws.Hub,
	logger *xlogger.Logger,
) (*usecase.CrossingChecker, func(), error) {
	opts := []usecase.CheckerOption{
		usecase.WithAlertPublisher(hub),
		usecase.WithRunHook(hub.BroadcastRun),
	}
	var closers []func()

	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		pub := internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic)
		opts = append(opts, usecase.WithAlertPublisher(pub))
		closers = append(closers, func() { _ = pub.Close() })
	}

	if cfg.ClickHouse.Enabled {
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sink, err := internalrepo.NewClickHouseObservationSink(ctx, client)
		cancel()
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		opts = append(opts, usecase.WithObservationSink(sink))
		closers = append(closers, func() { _ = sink.Close() })
	}

	checker := usecase.NewCrossingChecker(tickers, oracle, state, notifier, m, logger, cfg.Alerts.PerRun, opts...)
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}
	return checker, cleanup, nil
}

// ProvideScheduler creates the periodic trigger.
func ProvideScheduler(cfg *config.Config, checker *usecase.CrossingChecker, logger *xlogger.Logger) *usecase.Scheduler {
	return usecase.NewScheduler(checker, cfg.Alerts.Interval, logger)
}

// ProvideHandler assembles every HTTP handler into one registration group.
func ProvideHandler(
	cfg *config.Config,
	logger *xlogger.Logger,
	checker *usecase.CrossingChecker,
	tickers *sheet.Source,
	oracle *alphavantage.Client,
	subs *usecase.SubscriberManager,
	mailer drepo.Mailer,
	hub *ws.Hub,
	store *kv.Store,
) xhttp.Handler {
	health := api.NewHealthHandler(logger, api.HealthCheck{
		Name: "redis",
		Probe: func(ctx context.Context) error {
			return store.Client().Ping(ctx).Err()
		},
	})

	return xhttp.HandlerGroup{
		api.NewAlertsHandler(logger, checker, cfg.AlphaVantage.APIKey),
		api.NewTickersHandler(logger, tickers),
		api.NewPriceHandler(logger, oracle, cfg.AlphaVantage.APIKey),
		api.NewChartHandler(logger),
		api.NewSubscribersHandler(logger, subs),
		api.NewStripeHandler(logger, subs, cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Stripe.ReturnURL),
		api.NewTestEmailHandler(logger, mailer, cfg.Mail.TestTo),
		health,
		hub,
	}
}

// ProvideApp creates the application shell.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	handler xhttp.Handler,
	scheduler *usecase.Scheduler,
	store *kv.Store,
) *server.App {
	return server.New(cfg, logger, handler, scheduler, store)
}
