package eventbus

import (
	"context"
	"errors"
	"time"

	"hitstream/internal/hits/domain"
	"hitstream/internal/shared/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// HitRecorder stores collected hits.
type HitRecorder interface {
	RecordHit(ctx context.Context, hit events.CollectedHit) error
}

// Router routes collected hits to recorders.
type Router struct {
	router   *message.Router
	eventBus *EventBus
	retry    middleware.Retry
	logger   watermill.LoggerAdapter
}

// NewRouter creates a new hit router.
func NewRouter(eventBus *EventBus, logger watermill.LoggerAdapter) (*Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}
	router.AddMiddleware(middleware.Recoverer)

	return &Router{
		router:   router,
		eventBus: eventBus,
		retry: middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 50 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2,
			Logger:          logger,
		},
		logger: logger,
	}, nil
}

// AddRecorder subscribes recorder to HitsTopic under handlerName.
func (r *Router) AddRecorder(handlerName string, recorder HitRecorder) {
	record := r.retry.Middleware(r.recordFunc(handlerName, recorder))

	r.router.AddNoPublisherHandler(
		handlerName,
		HitsTopic,
		r.eventBus.Subscriber(),
		func(msg *message.Message) error {
			// Acked even after the retries run out: a nack would redeliver forever.
			if _, err := record(msg); err != nil {
				r.logger.Error("dropping hit after retries", err, watermill.LogFields{
					"handler":     handlerName,
					"message_id":  msg.UUID,
					"tracking_id": msg.Metadata.Get(metadataTrackingID),
				})
			}
			return nil
		},
	)
}

func (r *Router) recordFunc(handlerName string, recorder HitRecorder) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		hit, err := MessageToHit(msg)
		if err != nil {
			r.logger.Error("failed to parse message", err, watermill.LogFields{"message_id": msg.UUID})
			return nil, nil // Don't retry on parse errors
		}

		err = recorder.RecordHit(msg.Context(), hit)
		switch {
		case err == nil:
			return nil, nil
		case errors.Is(err, domain.ErrDuplicateHit):
			r.logger.Debug("duplicate hit skipped", watermill.LogFields{"message_id": msg.UUID})
			return nil, nil
		case errors.Is(err, domain.ErrMissingHitType), errors.Is(err, domain.ErrMissingTrackerID):
			r.logger.Error("rejecting invalid hit", err, watermill.LogFields{
				"handler":    handlerName,
				"message_id": msg.UUID,
			})
			return nil, nil
		}
		return nil, err
	}
}

// Run starts the router.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that is closed when the router is running.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}
