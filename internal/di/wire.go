//go:build wireinject
// +build wireinject

package di

import (
	"rrtracker/pkg/config"
	"rrtracker/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKVStore,

		// Repositories
		ProvideStateStore,
		ProvideSubscriberDirectory,

		// Services
		ProvideSigner,
		ProvideMailer,
		ProvideOracle,
		ProvideTickerSource,
		ProvideHub,

		// Use cases
		ProvideSubscriberManager,
		ProvideNotifier,
		ProvideChecker,
		ProvideScheduler,

		// HTTP surface and application shell
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil, nil
}
