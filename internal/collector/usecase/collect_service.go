package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hitstream/internal/enrichment"
	"hitstream/internal/shared/events"
)

var (
	ErrMalformedPayload = errors.New("malformed hit payload")
	ErrPublishFailed    = errors.New("failed to publish hit")
)

// Publisher forwards collected hits to the processing side.
type Publisher interface {
	Publish(ctx context.Context, hit events.CollectedHit) error
}

// Locator resolves client IPs when the edge did not supply location headers.
type Locator interface {
	Lookup(ip string) enrichment.Location
}

// RequestMeta is the request information attached to every hit.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Country   string
	Region    string
	City      string
}

// CollectService parses duplicated hit payloads and publishes them.
type CollectService struct {
	publisher Publisher
	locator   Locator // may be nil
	now       func() time.Time
}

// Option customizes a CollectService.
type Option func(*CollectService)

// WithClock overrides the server clock used for serverTimeUtc.
func WithClock(now func() time.Time) Option {
	return func(s *CollectService) {
		s.now = now
	}
}

// NewCollectService creates a collect service. locator may be nil.
func NewCollectService(publisher Publisher, locator Locator, opts ...Option) *CollectService {
	s := &CollectService{
		publisher: publisher,
		locator:   locator,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collect parses rawPayload, attaches meta and publishes the result. On a
// publish failure the hit is still returned alongside ErrPublishFailed.
func (s *CollectService) Collect(ctx context.Context, rawPayload string, meta RequestMeta) (*events.CollectedHit, error) {
	params, err := ParsePayload(rawPayload)
	if err != nil {
		return nil, err
	}

	if meta.Country == "" && meta.IPAddress != "" && s.locator != nil {
		loc := s.locator.Lookup(meta.IPAddress)
		meta.Country = loc.Country
		if meta.Region == "" {
			meta.Region = loc.Region
		}
		if meta.City == "" {
			meta.City = loc.City
		}
	}

	hit := &events.CollectedHit{
		Params:        params,
		ServerTimeUTC: s.now().UTC().Unix(),
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		Country:       meta.Country,
		Region:        meta.Region,
		City:          meta.City,
	}

	if err := s.publisher.Publish(ctx, *hit); err != nil {
		return hit, fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	return hit, nil
}
