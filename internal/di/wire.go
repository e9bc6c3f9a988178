//go:build wireinject
// +build wireinject

package di

import (
	"candlerelay/pkg/config"
	"candlerelay/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,

		// Repositories
		ProvideCandleStore,

		// Policies
		ProvideLimitPolicy,
		ProvideStepPolicy,

		// Use cases
		ProvideMarketData,
		ProvideReplayEngine,

		// Handlers
		ProvideMarketHandler,
		ProvideReplayHandler,

		// Application server
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
