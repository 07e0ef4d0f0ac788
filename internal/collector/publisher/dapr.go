package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"hitstream/internal/collector/usecase"
	"hitstream/internal/shared/events"

	dapr "github.com/dapr/go-sdk/client"
)

// DaprClient is the subset of the Dapr client used for publishing.
type DaprClient interface {
	PublishEvent(ctx context.Context, pubsubName, topicName string, data interface{}, opts ...dapr.PublishEventOption) error
	Close()
}

// DaprPublisher publishes collected hits to a Dapr pub/sub component.
type DaprPublisher struct {
	client     DaprClient
	pubsubName string
	topic      string
}

var _ usecase.Publisher = (*DaprPublisher)(nil)

func NewDaprPublisher(client DaprClient, pubsubName, topic string) *DaprPublisher {
	return &DaprPublisher{
		client:     client,
		pubsubName: pubsubName,
		topic:      topic,
	}
}

// Publish sends hit as a JSON event.
func (p *DaprPublisher) Publish(ctx context.Context, hit events.CollectedHit) error {
	data, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("failed to marshal hit: %w", err)
	}

	return p.client.PublishEvent(ctx, p.pubsubName, p.topic, data,
		dapr.PublishEventWithContentType("application/json"))
}
