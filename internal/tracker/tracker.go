// Package tracker is a small Measurement Protocol tracker. Hits are built into
// an encoded payload and handed to a replaceable send task, which plugins
// such as the duplicator may wrap.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"hitstream/internal/duplicator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultCollectURL is the Measurement Protocol collect endpoint.
	DefaultCollectURL = "https://www.google-analytics.com/collect"

	protocolVersion = "1"
)

var (
	ErrMissingTrackingID = errors.New("tracking id is required")
	ErrMissingHitType    = errors.New("hit type is required")
	ErrNoSendTask        = errors.New("no send task installed")
)

// Config configures a Tracker.
type Config struct {
	TrackingID string
	// ClientID identifies the browser instance; generated when empty.
	ClientID   string
	CollectURL string
	HTTPClient duplicator.HTTPClient
	Logger     *zap.Logger
}

// Option customizes a Tracker at construction.
type Option func(*Tracker)

// WithPlugin registers a readiness callback invoked once by New after the
// default tasks are installed.
func WithPlugin(plugin func(t *Tracker)) Option {
	return func(t *Tracker) {
		t.plugins = append(t.plugins, plugin)
	}
}

// Tracker holds per-page tracking state and the task table.
type Tracker struct {
	cfg     Config
	logger  *zap.Logger
	plugins []func(*Tracker)

	mu    sync.RWMutex
	tasks map[string]duplicator.SendHandler
}

var _ duplicator.Tracker = (*Tracker)(nil)

// New creates a tracker, installs the default send task and runs plugins.
func New(cfg Config, opts ...Option) (*Tracker, error) {
	if cfg.TrackingID == "" {
		return nil, ErrMissingTrackingID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	if cfg.CollectURL == "" {
		cfg.CollectURL = DefaultCollectURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	t := &Tracker{
		cfg:    cfg,
		logger: cfg.Logger,
		tasks:  make(map[string]duplicator.SendHandler),
	}
	t.tasks[duplicator.SendHitTask] = t.sendHitTask

	for _, opt := range opts {
		opt(t)
	}
	for _, plugin := range t.plugins {
		plugin(t)
	}

	return t, nil
}

// Get returns the handler installed for task, or nil.
func (t *Tracker) Get(task string) duplicator.SendHandler {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tasks[task]
}

// Set installs handler for task.
func (t *Tracker) Set(task string, handler duplicator.SendHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[task] = handler
}

// ClientID returns the client id sent with every hit.
func (t *Tracker) ClientID() string {
	return t.cfg.ClientID
}

// Send builds a hit of the given type and passes it to the current send task.
func (t *Tracker) Send(ctx context.Context, hitType string, fields url.Values) error {
	if hitType == "" {
		return ErrMissingHitType
	}

	task := t.Get(duplicator.SendHitTask)
	if task == nil {
		return ErrNoSendTask
	}

	task(&Model{
		ctx: ctx,
		fields: map[string]string{
			duplicator.HitPayloadField: t.buildPayload(hitType, fields),
			"hitType":                  hitType,
			"trackingId":               t.cfg.TrackingID,
			"clientId":                 t.cfg.ClientID,
		},
	})
	return nil
}

func (t *Tracker) buildPayload(hitType string, fields url.Values) string {
	values := url.Values{}
	for k, v := range fields {
		values[k] = append([]string(nil), v...)
	}
	values.Set("v", protocolVersion)
	values.Set("tid", t.cfg.TrackingID)
	values.Set("cid", t.cfg.ClientID)
	values.Set("t", hitType)
	values.Set("z", strconv.FormatUint(rand.Uint64(), 10))
	return values.Encode()
}

// sendHitTask posts the payload to the collect endpoint.
func (t *Tracker) sendHitTask(model duplicator.HitModel) {
	ctx := context.Background()
	if m, ok := model.(*Model); ok {
		ctx = m.Context()
	}

	if err := t.post(ctx, model.Get(duplicator.HitPayloadField)); err != nil {
		t.logger.Warn("failed to send hit",
			zap.String("collect_url", t.cfg.CollectURL),
			zap.Error(err),
		)
	}
}

func (t *Tracker) post(ctx context.Context, payload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.CollectURL, strings.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")

	resp, err := t.cfg.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("collect endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
