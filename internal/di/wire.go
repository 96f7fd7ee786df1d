//go:build wireinject
// +build wireinject

package di

import (
	"volscan/pkg/config"
	"volscan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Repositories
		ProvideHistoryStore,
		ProvideResultLog,
		ProvideMarketSource,

		// Analytics
		ProvideEstimator,
		ProvideSelector,

		// Delivery
		ProvideHub,
		ProvideSinks,
		ProvideDispatcher,

		// Use cases
		ProvideScanCycle,

		// HTTP surface
		ProvideBytesCache,
		ProvideLimiter,
		ProvidePerformerHandler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
