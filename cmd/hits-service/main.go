package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"hitstream/internal/hits/cache"
	hitsdb "hitstream/internal/hits/database"
	hitshttp "hitstream/internal/hits/delivery/http"
	"hitstream/internal/hits/format"
	hitssqlite "hitstream/internal/hits/repository/sqlite"
	"hitstream/internal/hits/usecase"
	"hitstream/internal/infra/eventbus"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "go.uber.org/automaxprocs"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", zap.Error(err))
	}

	port := getEnv("PORT", "8081")
	databasePath := getEnv("DATABASE_PATH", "data/hits.db")
	redisAddr := getEnv("REDIS_ADDR", "")
	sub := hitshttp.Subscription{
		PubsubName: getEnv("PUBSUB_NAME", "pubsub"),
		Topic:      getEnv("HITS_TOPIC", eventbus.HitsTopic),
	}

	if err := os.MkdirAll(filepath.Dir(databasePath), 0755); err != nil {
		logger.Fatal("failed to create data directory", zap.Error(err))
	}

	db, err := hitsdb.OpenDB(databasePath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := hitsdb.RunMigrations(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("hits database initialized", zap.String("path", databasePath))

	var rdb *redis.Client
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})
		defer rdb.Close()
		logger.Info("redis dedup enabled", zap.String("addr", redisAddr))
	} else {
		logger.Warn("REDIS_ADDR not set, duplicate deliveries will be stored")
	}

	service := usecase.NewHitService(
		hitssqlite.NewHitRepository(db),
		format.NewFormatter(),
		cache.NewDedupGuard(rdb, cache.DefaultDedupTTL, logger),
		logger,
	)
	handler := hitshttp.NewHandler(service, logger, hitshttp.DatabaseCheck(db))
	router := hitshttp.NewRouter(handler, logger, sub)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("hits service starting",
			zap.String("port", port),
			zap.String("pubsub", sub.PubsubName),
			zap.String("topic", sub.Topic),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("hits service shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("hits service stopped")
}
