package usecase

import (
	"context"
	"encoding/json"
)

// HitRecord is a stored hit: indexed columns plus the formatted hit as JSON.
type HitRecord struct {
	ID             string
	TrackingID     string
	ClientID       string
	HitType        string
	ServerTimeUTC  int64
	HitDate        string // YYYYMMDD, UTC
	DeviceCategory string
	Channel        string
	PagePath       string
	Hostname       string
	Body           json.RawMessage
}

// GroupCount represents a count for a single group value (hit type, device, channel).
type GroupCount struct {
	Value string
	Count int64
}

// Cursor positions a page of hits, newest first.
type Cursor struct {
	ServerTimeUTC int64
	ID            string
}

// PaginatedHits holds a page of hits with cursor info.
type PaginatedHits struct {
	Hits       []HitRecord
	NextCursor string
	HasMore    bool
}

type HitRepository interface {
	// InsertHit stores a formatted hit.
	InsertHit(ctx context.Context, hit HitRecord) error
	// CountInRange returns total hits within a time range.
	CountInRange(ctx context.Context, trackingID string, from int64, to int64) (int64, error)
	// CountByHitTypeInRange returns hit counts grouped by hit type within a time range.
	CountByHitTypeInRange(ctx context.Context, trackingID string, from int64, to int64) ([]GroupCount, error)
	// CountByDeviceInRange returns hit counts grouped by device category within a time range.
	CountByDeviceInRange(ctx context.Context, trackingID string, from int64, to int64) ([]GroupCount, error)
	// CountByChannelInRange returns hit counts grouped by channel within a time range.
	CountByChannelInRange(ctx context.Context, trackingID string, from int64, to int64) ([]GroupCount, error)
	// ListHits returns hits older than cursor, newest first.
	ListHits(ctx context.Context, trackingID string, cursor Cursor, limit int) (*PaginatedHits, error)
}

// DedupGuard admits each hit key once.
type DedupGuard interface {
	// Claim returns false if key was already claimed.
	Claim(ctx context.Context, key string) (bool, error)
	// Release forgets key so a redelivery of the same hit is admitted.
	Release(ctx context.Context, key string) error
}
