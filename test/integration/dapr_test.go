//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"hitstream/internal/duplicator"
	"hitstream/internal/tracker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDaprPubSub_DuplicatedHitRecorded verifies that a hit duplicated by the
// tracker plugin is accepted by the collector, delivered through Dapr pub/sub
// and stored by the hits service.
func TestDaprPubSub_DuplicatedHitRecorded(t *testing.T) {
	s := requireStack(t)

	require.NoError(t, waitForHealthy(t.Context(), s.collectorURL+"/healthz", 90*time.Second),
		"collector failed to become healthy")
	require.NoError(t, waitForHealthy(t.Context(), s.hitsURL+"/healthz", 90*time.Second),
		"hits service failed to become healthy")

	// Stand-in for the primary analytics endpoint.
	var primaryHits atomic.Int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		primaryHits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer primary.Close()

	trackingID := "UA-" + uuid.NewString()[:8] + "-1"
	client := &http.Client{Timeout: 10 * time.Second}

	dup, err := duplicator.New(
		duplicator.Config{Endpoint: s.collectorURL + "/collect"},
		duplicator.PageContext{Referrer: "https://www.bing.com/search?q=hit stream", HTTPClient: client},
		nil,
	)
	require.NoError(t, err)

	tr, err := tracker.New(tracker.Config{
		TrackingID: trackingID,
		CollectURL: primary.URL,
		HTTPClient: client,
	}, tracker.WithPlugin(func(tk *tracker.Tracker) { dup.Register(tk) }))
	require.NoError(t, err)

	fields := url.Values{}
	fields.Set("dl", "https://shop.example.com/checkout")
	fields.Set("dt", "Checkout")
	require.NoError(t, tr.Send(t.Context(), "pageview", fields))
	assert.EqualValues(t, 1, primaryHits.Load(), "primary send task must run first")

	var page struct {
		Hits []struct {
			ClientID string `json:"client_id"`
			PagePath string `json:"page_path"`
			Channel  string `json:"channel"`
		} `json:"hits"`
	}
	require.Eventually(t, func() bool {
		resp, err := http.Get(s.hitsURL + "/hits/" + trackingID)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}
		return json.NewDecoder(resp.Body).Decode(&page) == nil && len(page.Hits) == 1
	}, 30*time.Second, 2*time.Second, "duplicated hit was not recorded within timeout")

	assert.Equal(t, tr.ClientID(), page.Hits[0].ClientID)
	assert.Equal(t, "/checkout", page.Hits[0].PagePath)
	assert.Equal(t, "Search", page.Hits[0].Channel)
}

// TestSummary_CountsDuplicatedHits verifies the summary endpoint reflects
// hits sent straight to the collector.
func TestSummary_CountsDuplicatedHits(t *testing.T) {
	s := requireStack(t)

	require.NoError(t, waitForHealthy(t.Context(), s.collectorURL+"/healthz", 90*time.Second))
	require.NoError(t, waitForHealthy(t.Context(), s.hitsURL+"/healthz", 90*time.Second))

	trackingID := "UA-" + uuid.NewString()[:8] + "-2"
	client := &http.Client{Timeout: 10 * time.Second}

	dup, err := duplicator.New(
		duplicator.Config{Endpoint: s.collectorURL + "/collect"},
		duplicator.PageContext{HTTPClient: client},
		nil,
	)
	require.NoError(t, err)

	// No primary endpoint is reachable; the duplicate is still sent.
	tr, err := tracker.New(tracker.Config{
		TrackingID: trackingID,
		CollectURL: "http://127.0.0.1:1/collect",
		HTTPClient: client,
	}, tracker.WithPlugin(func(tk *tracker.Tracker) { dup.Register(tk) }))
	require.NoError(t, err)

	for _, hitType := range []string{"pageview", "pageview", "event"} {
		require.NoError(t, tr.Send(t.Context(), hitType, url.Values{"dl": {"https://example.com/"}}))
	}

	today := time.Now().UTC().Format("2006-01-02")
	var summary struct {
		TotalHits int64 `json:"total_hits"`
		HitTypes  []struct {
			Value string `json:"value"`
			Count int64  `json:"count"`
		} `json:"hit_types"`
	}
	require.Eventually(t, func() bool {
		resp, err := http.Get(s.hitsURL + "/hits/" + trackingID + "/summary?from=" + today + "&to=" + today)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return json.NewDecoder(resp.Body).Decode(&summary) == nil && summary.TotalHits == 3
	}, 30*time.Second, 2*time.Second)

	require.Len(t, summary.HitTypes, 2)
	assert.Equal(t, "PAGEVIEW", summary.HitTypes[0].Value)
	assert.EqualValues(t, 2, summary.HitTypes[0].Count)
	assert.Equal(t, "EVENT", summary.HitTypes[1].Value)
}
