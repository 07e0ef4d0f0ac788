//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// stack holds the base URLs of a running collector and hits service.
type stack struct {
	collectorURL string
	hitsURL      string
}

// requireStack skips the test unless a deployed stack is configured through
// COLLECTOR_URL and HITS_URL.
func requireStack(t *testing.T) stack {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("Skipping integration test (SKIP_INTEGRATION set)")
	}

	s := stack{
		collectorURL: os.Getenv("COLLECTOR_URL"),
		hitsURL:      os.Getenv("HITS_URL"),
	}
	if s.collectorURL == "" || s.hitsURL == "" {
		t.Skip("COLLECTOR_URL and HITS_URL must point at a running stack")
	}
	return s
}

// waitForHealthy polls a health endpoint until it returns 200 or timeout is reached
func waitForHealthy(ctx context.Context, url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		resp, err := client.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return fmt.Errorf("timeout waiting for %s to be healthy", url)
}
