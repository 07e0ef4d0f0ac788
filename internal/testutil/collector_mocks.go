package testutil

import (
	"context"

	"hitstream/internal/enrichment"
	"hitstream/internal/shared/events"

	dapr "github.com/dapr/go-sdk/client"
	"github.com/stretchr/testify/mock"
)

// MockPublisher is a testify mock for usecase.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, hit events.CollectedHit) error {
	args := m.Called(ctx, hit)
	return args.Error(0)
}

// MockLocator is a testify mock for usecase.Locator.
type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Lookup(ip string) enrichment.Location {
	args := m.Called(ip)
	return args.Get(0).(enrichment.Location)
}

// MockDaprClient is a testify mock for the subset of dapr.Client the
// publisher uses. Options are not forwarded to Called.
type MockDaprClient struct {
	mock.Mock
}

func (m *MockDaprClient) PublishEvent(ctx context.Context, pubsubName, topicName string, data interface{}, opts ...dapr.PublishEventOption) error {
	args := m.Called(ctx, pubsubName, topicName, data)
	return args.Error(0)
}

func (m *MockDaprClient) Close() {
	m.Called()
}
