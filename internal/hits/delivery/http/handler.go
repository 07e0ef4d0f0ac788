package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"hitstream/internal/hits/domain"
	"hitstream/internal/hits/usecase"
	"hitstream/internal/shared/events"
	"hitstream/pkg/problemdetails"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Handler struct {
	hitService *usecase.HitService
	logger     *zap.Logger
	checks     []ReadinessCheck
}

func NewHandler(hitService *usecase.HitService, logger *zap.Logger, checks ...ReadinessCheck) *Handler {
	return &Handler{
		hitService: hitService,
		logger:     logger,
		checks:     checks,
	}
}

// HandleHitEvent processes collected hits delivered by Dapr pub/sub.
// Every outcome is acknowledged with 200 so Dapr does not redeliver.
// Route: POST /events/hit
func (h *Handler) HandleHitEvent(w http.ResponseWriter, r *http.Request) {
	var cloudEvent struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.NewDecoder(r.Body).Decode(&cloudEvent); err != nil {
		h.logger.Error("failed to decode cloud event", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}

	var hit events.CollectedHit
	if err := json.Unmarshal(cloudEvent.Data, &hit); err != nil {
		h.logger.Error("failed to unmarshal collected hit", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.hitService.RecordHit(r.Context(), hit); err != nil {
		if errors.Is(err, domain.ErrDuplicateHit) {
			h.logger.Info("duplicate hit skipped", zap.String("tracking_id", hit.Param("tid")))
		} else {
			h.logger.Error("failed to record hit",
				zap.String("tracking_id", hit.Param("tid")),
				zap.Error(err),
			)
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetSummary handles GET /hits/{tid}/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "tid")

	from, to, err := parseTimeRange(r)
	if err != nil {
		writeProblem(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Query Parameters",
			err.Error(),
		))
		return
	}

	summary, err := h.hitService.GetSummary(r.Context(), trackingID, from, to)
	if err != nil {
		h.logger.Error("failed to build summary", zap.String("tracking_id", trackingID), zap.Error(err))
		writeProblem(w, problemdetails.New(
			http.StatusInternalServerError,
			problemdetails.TypeInternalError,
			"Internal Server Error",
			"Failed to retrieve hit summary",
		))
		return
	}

	writeJSON(w, http.StatusOK, convertToSummaryResponse(summary))
}

// ListHits handles GET /hits/{tid}
func (h *Handler) ListHits(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "tid")

	cursor, err := usecase.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeProblem(w, problemdetails.New(
			http.StatusBadRequest,
			problemdetails.TypeInvalidRequest,
			"Invalid Query Parameters",
			"Invalid cursor format",
		))
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"))

	page, err := h.hitService.ListHits(r.Context(), trackingID, cursor, limit)
	if err != nil {
		h.logger.Error("failed to list hits", zap.String("tracking_id", trackingID), zap.Error(err))
		writeProblem(w, problemdetails.New(
			http.StatusInternalServerError,
			problemdetails.TypeInternalError,
			"Internal Server Error",
			"Failed to retrieve hits",
		))
		return
	}

	writeJSON(w, http.StatusOK, convertToHitsResponse(page))
}

// Healthz handles GET /healthz (liveness probe)
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz handles GET /readyz (readiness probe)
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, check := range h.checks {
		if err := check(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Reason: err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}

// parseTimeRange parses the from and to query parameters (YYYY-MM-DD, UTC)
func parseTimeRange(r *http.Request) (from int64, to int64, err error) {
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	from = 0
	if fromStr != "" {
		fromTime, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return 0, 0, err
		}
		from = fromTime.Unix()
	}

	to = time.Now().Unix()
	if toStr != "" {
		toTime, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return 0, 0, err
		}
		// include the entire end date
		to = toTime.Add(24*time.Hour - time.Second).Unix()
	}

	if from > to {
		return 0, 0, errors.New("from must not be after to")
	}
	return from, to, nil
}

// parseLimit parses the limit query parameter, clamped to 1-100
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 20
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 20
	}

	if limit < 1 {
		return 1
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func convertToSummaryResponse(summary *usecase.SummaryResult) *SummaryResponse {
	return &SummaryResponse{
		TrackingID: summary.TrackingID,
		TotalHits:  summary.TotalHits,
		HitTypes:   convertBreakdownItems(summary.HitTypes),
		Devices:    convertBreakdownItems(summary.Devices),
		Channels:   convertBreakdownItems(summary.Channels),
	}
}

func convertBreakdownItems(items []usecase.BreakdownItem) []BreakdownResponse {
	resp := make([]BreakdownResponse, len(items))
	for i, item := range items {
		resp[i] = BreakdownResponse{
			Value:      item.Value,
			Count:      item.Count,
			Percentage: formatPercentage(item.Percentage),
		}
	}
	return resp
}

func convertToHitsResponse(page *usecase.PaginatedHits) *PaginatedHitsResponse {
	hits := make([]HitResponse, len(page.Hits))
	for i, hit := range page.Hits {
		hits[i] = HitResponse{
			ID:             hit.ID,
			ServerTimeUTC:  hit.ServerTimeUTC,
			HitDate:        hit.HitDate,
			HitType:        hit.HitType,
			ClientID:       hit.ClientID,
			DeviceCategory: hit.DeviceCategory,
			Channel:        hit.Channel,
			PagePath:       hit.PagePath,
			Hostname:       hit.Hostname,
			Hit:            hit.Body,
		}
	}

	return &PaginatedHitsResponse{
		Hits:       hits,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
}

// DatabaseCheck pings db.
func DatabaseCheck(pinger interface {
	PingContext(ctx context.Context) error
}) ReadinessCheck {
	return func(ctx context.Context) error {
		if err := pinger.PingContext(ctx); err != nil {
			return errors.New("database unavailable")
		}
		return nil
	}
}
