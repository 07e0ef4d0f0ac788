package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	collectorhttp "hitstream/internal/collector/delivery/http"
	"hitstream/internal/collector/publisher"
	"hitstream/internal/collector/usecase"
	"hitstream/internal/enrichment"
	"hitstream/internal/infra/eventbus"

	dapr "github.com/dapr/go-sdk/client"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	port := getEnv("PORT", "8080")
	geoipDBPath := getEnv("GEOIP_DB_PATH", "data/GeoLite2-City.mmdb")
	pubsubName := getEnv("PUBSUB_NAME", "pubsub")
	topic := getEnv("HITS_TOPIC", eventbus.HitsTopic)
	daprHealthURL := getEnv("DAPR_HEALTH_URL", "http://localhost:"+getEnv("DAPR_HTTP_PORT", "3500")+"/v1.0/healthz/outbound")

	rateLimitStr := getEnv("RATE_LIMIT", "600")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil || rateLimit < 1 {
		logger.Fatal("invalid RATE_LIMIT value", zap.String("value", rateLimitStr), zap.Error(err))
	}

	daprClient, err := dapr.NewClient()
	if err != nil {
		logger.Fatal("failed to create Dapr client; run cmd/hitstream for a single-process setup", zap.Error(err))
	}
	defer daprClient.Close()

	var locator usecase.Locator = enrichment.NoopLocator{}
	geoIP, err := enrichment.NewGeoIPResolver(geoipDBPath)
	if err != nil {
		logger.Warn("GeoIP database not available, location fallback disabled",
			zap.Error(err),
			zap.String("path", geoipDBPath),
		)
	} else {
		logger.Info("GeoIP database loaded successfully", zap.String("path", geoipDBPath))
		defer geoIP.Close()
		locator = geoIP
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service := usecase.NewCollectService(publisher.NewDaprPublisher(daprClient, pubsubName, topic), locator)
	handler := collectorhttp.NewHandler(service, collectorhttp.NewMetrics(reg), logger,
		collectorhttp.DaprSidecarCheck(daprHealthURL),
	)
	rateLimiter := collectorhttp.NewRateLimiter(rateLimit)
	defer rateLimiter.Close()
	router := collectorhttp.NewRouter(handler, logger, rateLimiter, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("collector service starting",
			zap.String("port", port),
			zap.String("pubsub", pubsubName),
			zap.String("topic", topic),
			zap.Int("rate_limit", rateLimit),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("collector service shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("collector service stopped")
}
