// Command send-hit sends one pageview through a tracker with the hit
// duplicator installed.
package main

import (
	"context"
	"flag"
	"net/http"
	"net/url"
	"os"
	"time"

	"hitstream/internal/duplicator"
	"hitstream/internal/tracker"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
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

	collectURL := flag.String("collect-url", getEnv("COLLECT_URL", tracker.DefaultCollectURL), "primary collect endpoint")
	trackingID := flag.String("tid", getEnv("TRACKING_ID", ""), "tracking id")
	endpoint := flag.String("duplicate-endpoint", getEnv("DUPLICATE_ENDPOINT", "http://localhost:8080/collect"), "duplicate collect endpoint")
	referrer := flag.String("referrer", "", "document referrer of the simulated page")
	location := flag.String("dl", "https://example.com/", "document location")
	title := flag.String("dt", "", "document title")
	wait := flag.Duration("wait", time.Second, "time to wait for the duplicate to be delivered")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	dup, err := duplicator.New(
		duplicator.Config{Endpoint: *endpoint},
		duplicator.PageContext{Referrer: *referrer, HTTPClient: client},
		logger,
	)
	if err != nil {
		logger.Fatal("failed to create duplicator", zap.Error(err))
	}

	t, err := tracker.New(tracker.Config{
		TrackingID: *trackingID,
		CollectURL: *collectURL,
		HTTPClient: client,
		Logger:     logger,
	}, tracker.WithPlugin(func(t *tracker.Tracker) { dup.Register(t) }))
	if err != nil {
		logger.Fatal("failed to create tracker", zap.Error(err))
	}

	fields := url.Values{}
	fields.Set("dl", *location)
	if *title != "" {
		fields.Set("dt", *title)
	}
	if *referrer != "" {
		fields.Set("dr", *referrer)
	}

	if err := t.Send(context.Background(), "pageview", fields); err != nil {
		logger.Fatal("failed to send hit", zap.Error(err))
	}

	// The duplicate is fire-and-forget; give it a chance to leave the process.
	time.Sleep(*wait)
	logger.Info("pageview sent",
		zap.String("tracking_id", *trackingID),
		zap.String("client_id", t.ClientID()),
		zap.String("duplicate_endpoint", *endpoint),
	)
}
