//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"hitstream/internal/hits/format"
	hitssqlite "hitstream/internal/hits/repository/sqlite"
	"hitstream/internal/hits/usecase"
	"hitstream/internal/infra/eventbus"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var hitsSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideDedupGuard,
	hitssqlite.NewHitRepository,
	wire.Bind(new(usecase.HitRepository), new(*hitssqlite.HitRepository)),
	format.NewFormatter,
	usecase.NewHitService,
	provideHitsHandler,
)

var collectorSet = wire.NewSet(
	provideLocator,
	provideRegistry,
	provideMetrics,
	provideCollectService,
	provideCollectorHandler,
	provideRateLimiter,
)

var eventbusSet = wire.NewSet(
	eventbus.NewZapLoggerAdapter,
	eventbus.NewEventBus,
	eventbus.NewRouter,
)

// initApp wires the single-process application.
func initApp(Config, *zap.Logger) (*App, func(), error) {
	panic(wire.Build(
		hitsSet,
		collectorSet,
		eventbusSet,
		newApp,
	))
}
