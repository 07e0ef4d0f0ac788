package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"hitstream/internal/shared/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	// HitsTopic carries hits accepted by the collector.
	HitsTopic = "hits.collected"

	metadataTrackingID = "tracking_id"
)

// EventBus wraps Watermill pub/sub for collected hits in a single process.
type EventBus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewEventBus creates a new event bus using Go channels.
func NewEventBus(logger watermill.LoggerAdapter) *EventBus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer: 100,
			Persistent:          false,
		},
		logger,
	)

	return &EventBus{
		pubsub: pubsub,
		logger: logger,
	}
}

// Publisher returns the Watermill publisher.
func (b *EventBus) Publisher() message.Publisher {
	return b.pubsub
}

// Subscriber returns the Watermill subscriber.
func (b *EventBus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Publish publishes a collected hit to HitsTopic.
func (b *EventBus) Publish(ctx context.Context, hit events.CollectedHit) error {
	msg, err := HitToMessage(hit)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	return b.pubsub.Publish(HitsTopic, msg)
}

// Close closes the event bus.
func (b *EventBus) Close() error {
	return b.pubsub.Close()
}

// HitToMessage converts a collected hit to a Watermill message.
func HitToMessage(hit events.CollectedHit) (*message.Message, error) {
	payload, err := json.Marshal(hit)
	if err != nil {
		return nil, fmt.Errorf("marshal hit: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(metadataTrackingID, hit.Param("tid"))
	return msg, nil
}

// MessageToHit extracts the collected hit from a Watermill message.
func MessageToHit(msg *message.Message) (events.CollectedHit, error) {
	var hit events.CollectedHit
	if err := json.Unmarshal(msg.Payload, &hit); err != nil {
		return events.CollectedHit{}, err
	}
	return hit, nil
}
