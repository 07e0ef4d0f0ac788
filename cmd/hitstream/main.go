package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
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

	rateLimitStr := getEnv("RATE_LIMIT", "600")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil || rateLimit < 1 {
		logger.Fatal("invalid RATE_LIMIT value", zap.String("value", rateLimitStr), zap.Error(err))
	}

	cfg := Config{
		CollectorPort: getEnv("PORT", "8080"),
		APIPort:       getEnv("API_PORT", "8081"),
		DatabasePath:  getEnv("DATABASE_PATH", "data/hits.db"),
		GeoIPDBPath:   getEnv("GEOIP_DB_PATH", "data/GeoLite2-City.mmdb"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RateLimit:     rateLimit,
	}

	app, cleanup, err := initApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.Error("hitstream stopped with error", zap.Error(err))
		return
	}
	logger.Info("hitstream stopped")
}
