//go:build wireinject
// +build wireinject

package di

import (
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Streaming side
		ProvideTransport,
		ProvideBus,
		ProvideDataCache,
		ProvideRegistry,
		ProvideTapPipeline,
		ProvideStreamClient,
		ProvideBarRepository,
		ProvideBarRecorder,
		ProvideStreamUsecase,

		// Signals side
		ProvideAnalyticsService,
		ProvideScorer,
		ProvideBarStore,
		ProvideSignalCache,
		ProvideSignalUsecase,

		// HTTP surface
		ProvideRateLimiter,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
