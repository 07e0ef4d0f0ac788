package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"hitstream/pkg/problemdetails"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeProblem writes an RFC 7807 Problem Details response
func writeProblem(w http.ResponseWriter, problem *problemdetails.ProblemDetail) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	json.NewEncoder(w).Encode(problem)
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// BreakdownResponse represents a single breakdown item with count and percentage
type BreakdownResponse struct {
	Value      string `json:"value"`
	Count      int64  `json:"count"`
	Percentage string `json:"percentage"` // "58.3%"
}

// SummaryResponse holds hit totals with breakdowns
type SummaryResponse struct {
	TrackingID string              `json:"tracking_id"`
	TotalHits  int64               `json:"total_hits"`
	HitTypes   []BreakdownResponse `json:"hit_types"`
	Devices    []BreakdownResponse `json:"devices"`
	Channels   []BreakdownResponse `json:"channels"`
}

// HitResponse is a stored hit with its formatted body
type HitResponse struct {
	ID             string          `json:"id"`
	ServerTimeUTC  int64           `json:"server_time_utc"`
	HitDate        string          `json:"hit_date"`
	HitType        string          `json:"hit_type"`
	ClientID       string          `json:"client_id"`
	DeviceCategory string          `json:"device_category"`
	Channel        string          `json:"channel"`
	PagePath       string          `json:"page_path"`
	Hostname       string          `json:"hostname"`
	Hit            json.RawMessage `json:"hit"`
}

// PaginatedHitsResponse holds a page of hits
type PaginatedHitsResponse struct {
	Hits       []HitResponse `json:"hits"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

// formatPercentage formats a float percentage to "XX.X%" format
func formatPercentage(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}
