package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"hitstream/internal/collector/usecase"
	"hitstream/pkg/problemdetails"

	"go.uber.org/zap"
)

// MaxPayloadBytes is the largest accepted body: the 8192 byte Measurement
// Protocol limit plus room for parameters appended client-side.
const MaxPayloadBytes = 8192 + 3000

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handler handles collect requests
type Handler struct {
	service *usecase.CollectService
	metrics *Metrics
	logger  *zap.Logger
	checks  []ReadinessCheck
}

// NewHandler creates a new Handler
func NewHandler(service *usecase.CollectService, metrics *Metrics, logger *zap.Logger, checks ...ReadinessCheck) *Handler {
	return &Handler{
		service: service,
		metrics: metrics,
		logger:  logger,
		checks:  checks,
	}
}

// Collect handles requests to /collect
func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.ContentLength > MaxPayloadBytes {
		h.reject(w, http.StatusRequestEntityTooLarge, problemdetails.TypePayloadTooLarge,
			"Payload Too Large", fmt.Sprintf("Payload exceeds %d bytes", MaxPayloadBytes))
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.reject(w, http.StatusMethodNotAllowed, problemdetails.TypeMethodNotAllowed,
			"Method Not Allowed", "Only POST is accepted")
		return
	}
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "text/plain" {
		h.reject(w, http.StatusUnsupportedMediaType, problemdetails.TypeUnsupportedMediaType,
			"Unsupported Media Type", "Content-Type must be text/plain")
		return
	}

	// Chunked bodies carry no Content-Length, so the limit is enforced again while reading.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, http.StatusRequestEntityTooLarge, problemdetails.TypePayloadTooLarge,
				"Payload Too Large", fmt.Sprintf("Payload exceeds %d bytes", MaxPayloadBytes))
			return
		}
		h.reject(w, http.StatusBadRequest, problemdetails.TypeInvalidRequest,
			"Invalid Request", "Failed to read request body")
		return
	}

	hit, err := h.service.Collect(r.Context(), string(body), requestMeta(r))
	if err != nil {
		if errors.Is(err, usecase.ErrMalformedPayload) {
			h.logger.Warn("malformed hit payload", zap.Error(err))
			h.metrics.observe(resultMalformed)
			writeProblem(w, problemdetails.New(
				http.StatusBadRequest,
				problemdetails.TypeMalformedPayload,
				"Malformed Payload",
				err.Error(),
			))
			return
		}

		if errors.Is(err, usecase.ErrPublishFailed) && hit != nil {
			// The hit is lost; the client has nothing to retry with.
			h.logger.Error("failed to publish hit",
				zap.String("tracking_id", hit.Param("tid")),
				zap.Error(err),
			)
			h.metrics.observe(resultPublishFailed)
			w.WriteHeader(http.StatusOK)
			return
		}

		h.logger.Error("failed to collect hit", zap.Error(err))
		writeProblem(w, problemdetails.New(
			http.StatusInternalServerError,
			problemdetails.TypeInternalError,
			"Internal Server Error",
			"Internal server error",
		))
		return
	}

	h.metrics.observe(resultAccepted)
	h.metrics.observePayload(len(body))
	w.WriteHeader(http.StatusOK)
}

// Preflight handles OPTIONS /collect
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
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

func (h *Handler) reject(w http.ResponseWriter, status int, problemType, title, detail string) {
	h.metrics.observe(resultRejected)
	writeProblem(w, problemdetails.New(status, problemType, title, detail))
}

// DaprSidecarCheck probes the sidecar health endpoint at url.
func DaprSidecarCheck(url string) ReadinessCheck {
	client := &http.Client{Timeout: 2 * time.Second}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("dapr health check failed: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("dapr sidecar unavailable: %w", err)
		}
		resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("dapr sidecar unhealthy: status %d", resp.StatusCode)
		}
		return nil
	}
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", http.MethodPost)
}

// requestMeta extracts the request data attached to each hit. App Engine
// style edge headers are preferred over the connection address.
func requestMeta(r *http.Request) usecase.RequestMeta {
	ip := r.Header.Get("X-Appengine-User-Ip")
	if ip == "" {
		ip = clientIP(r)
	}

	return usecase.RequestMeta{
		IPAddress: ip,
		UserAgent: r.Header.Get("User-Agent"),
		Country:   r.Header.Get("X-Appengine-Country"),
		Region:    r.Header.Get("X-Appengine-Region"),
		City:      r.Header.Get("X-Appengine-City"),
	}
}
