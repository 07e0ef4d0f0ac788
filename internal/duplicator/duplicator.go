// Package duplicator wraps a tracker's send task so every hit is also posted,
// best effort, to a secondary collect endpoint with the page referrer attached.
package duplicator

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const (
	// SendHitTask is the tracker task that transmits a built hit.
	SendHitTask = "sendHitTask"
	// HitPayloadField is the model field holding the encoded hit.
	HitPayloadField = "hitPayload"

	referrerParam = "&referrer="
	contentType   = "text/plain"
)

var (
	ErrMissingEndpoint = errors.New("duplicate endpoint is required")
	ErrInvalidEndpoint = errors.New("invalid duplicate endpoint")
)

// HitModel is the per-hit accessor the tracker hands to its send task.
type HitModel interface {
	Get(field string) string
}

// SendHandler transmits one hit.
type SendHandler func(model HitModel)

// Tracker exposes the task table of a tracker instance.
type Tracker interface {
	Get(task string) SendHandler
	Set(task string, handler SendHandler)
}

// HTTPClient is the capability used to post duplicates.
// *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// PageContext carries what the page knows about itself.
// A nil HTTPClient means duplicates cannot be sent and are skipped.
type PageContext struct {
	Referrer   string
	HTTPClient HTTPClient
}

// Config holds the duplicate endpoint.
type Config struct {
	Endpoint string
}

// Duplicator installs duplicating send tasks on trackers.
type Duplicator struct {
	endpoint string
	page     PageContext
	logger   *zap.Logger
}

// New validates the endpoint and returns a Duplicator bound to the page.
func New(cfg Config, page PageContext, logger *zap.Logger) (*Duplicator, error) {
	if cfg.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEndpoint, cfg.Endpoint)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Duplicator{
		endpoint: cfg.Endpoint,
		page:     page,
		logger:   logger,
	}, nil
}

// Register replaces the tracker's send task with one that runs the original
// task and then posts a duplicate. Each call captures its own tracker's
// original task.
func (d *Duplicator) Register(t Tracker) {
	original := t.Get(SendHitTask)
	t.Set(SendHitTask, d.wrap(original))

	d.logger.Debug("send task wrapped",
		zap.String("endpoint", d.endpoint),
		zap.Bool("duplicates_enabled", d.page.HTTPClient != nil),
	)
}

func (d *Duplicator) wrap(original SendHandler) SendHandler {
	return func(model HitModel) {
		if original != nil {
			original(model)
		}

		if d.page.HTTPClient == nil {
			return
		}

		body := Body(model.Get(HitPayloadField), d.page.Referrer)
		req, err := http.NewRequest(http.MethodPost, d.endpoint, strings.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", contentType)

		// Fire-and-forget: the duplicate's outcome is never observed.
		go send(d.page.HTTPClient, req)
	}
}

func send(client HTTPClient, req *http.Request) {
	resp, err := client.Do(req)
	if err != nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// Body appends the percent-encoded referrer to a hit payload.
func Body(payload, referrer string) string {
	return payload + referrerParam + EncodeURIComponent(referrer)
}
