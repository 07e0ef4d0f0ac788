package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := Config{
		DatabasePath: filepath.Join(t.TempDir(), "hits.db"),
		GeoIPDBPath:  filepath.Join(t.TempDir(), "missing.mmdb"),
		RateLimit:    600,
	}
	app, cleanup, err := initApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		app.router.Close()
		app.bus.Close()
	})
	app.startConsumers(ctx)

	return app
}

// TestApp_CollectedHitIsQueryable verifies a hit accepted by the collector
// flows over the event bus into the hits store.
func TestApp_CollectedHitIsQueryable(t *testing.T) {
	app := newTestApp(t)
	collector := httptest.NewServer(app.collector)
	defer collector.Close()
	api := httptest.NewServer(app.api)
	defer api.Close()

	body := "v=1&t=pageview&tid=UA-1-1&cid=555&z=1&dl=https%3A%2F%2Fexample.com%2Fpricing&referrer=https%3A%2F%2Fwww.google.com%2F"
	resp, err := http.Post(collector.URL+"/collect", "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Hits []struct {
			ClientID string `json:"client_id"`
			HitType  string `json:"hit_type"`
			PagePath string `json:"page_path"`
			Channel  string `json:"channel"`
		} `json:"hits"`
	}
	require.Eventually(t, func() bool {
		resp, err := http.Get(api.URL + "/hits/UA-1-1")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			return false
		}
		return len(page.Hits) == 1
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, "555", page.Hits[0].ClientID)
	assert.Equal(t, "PAGEVIEW", page.Hits[0].HitType)
	assert.Equal(t, "/pricing", page.Hits[0].PagePath)
	assert.Equal(t, "Search", page.Hits[0].Channel)
}

// TestApp_HealthEndpoints verifies both surfaces answer liveness probes.
func TestApp_HealthEndpoints(t *testing.T) {
	app := newTestApp(t)

	for _, h := range []http.Handler{app.collector, app.api} {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
