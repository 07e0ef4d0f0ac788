package main

import (
	"database/sql"
	"os"
	"path/filepath"

	collectorhttp "hitstream/internal/collector/delivery/http"
	collectorusecase "hitstream/internal/collector/usecase"
	"hitstream/internal/enrichment"
	"hitstream/internal/hits/cache"
	hitsdb "hitstream/internal/hits/database"
	hitshttp "hitstream/internal/hits/delivery/http"
	"hitstream/internal/hits/usecase"
	"hitstream/internal/infra/eventbus"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config is the process configuration read from the environment.
type Config struct {
	CollectorPort string
	APIPort       string
	DatabasePath  string
	GeoIPDBPath   string
	RedisAddr     string
	RateLimit     int
}

func provideDB(cfg Config, logger *zap.Logger) (*sql.DB, func(), error) {
	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, err
		}
	}

	db, err := hitsdb.OpenDB(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	if err := hitsdb.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("hits database initialized", zap.String("path", cfg.DatabasePath))

	return db, func() { db.Close() }, nil
}

// provideRedis returns nil when no address is configured.
func provideRedis(cfg Config, logger *zap.Logger) (*redis.Client, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, duplicate deliveries will be stored")
		return nil, func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return rdb, func() { rdb.Close() }
}

func provideDedupGuard(rdb *redis.Client, logger *zap.Logger) usecase.DedupGuard {
	return cache.NewDedupGuard(rdb, cache.DefaultDedupTTL, logger)
}

func provideLocator(cfg Config, logger *zap.Logger) (collectorusecase.Locator, func()) {
	geoIP, err := enrichment.NewGeoIPResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn("GeoIP database not available, location fallback disabled",
			zap.Error(err),
			zap.String("path", cfg.GeoIPDBPath),
		)
		return enrichment.NoopLocator{}, func() {}
	}
	return geoIP, func() { geoIP.Close() }
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func provideMetrics(reg *prometheus.Registry) *collectorhttp.Metrics {
	return collectorhttp.NewMetrics(reg)
}

// provideCollectService publishes to the in-process bus.
func provideCollectService(bus *eventbus.EventBus, locator collectorusecase.Locator) *collectorusecase.CollectService {
	return collectorusecase.NewCollectService(bus, locator)
}

func provideCollectorHandler(service *collectorusecase.CollectService, metrics *collectorhttp.Metrics, logger *zap.Logger) *collectorhttp.Handler {
	return collectorhttp.NewHandler(service, metrics, logger)
}

func provideRateLimiter(cfg Config) (*collectorhttp.RateLimiter, func()) {
	rl := collectorhttp.NewRateLimiter(cfg.RateLimit)
	return rl, rl.Close
}

func provideHitsHandler(service *usecase.HitService, logger *zap.Logger, db *sql.DB) *hitshttp.Handler {
	return hitshttp.NewHandler(service, logger, hitshttp.DatabaseCheck(db))
}
