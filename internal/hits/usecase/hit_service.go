package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hitstream/internal/hits/domain"
	"hitstream/internal/hits/format"
	"hitstream/internal/shared/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BreakdownItem is one row of a summary breakdown.
type BreakdownItem struct {
	Value      string
	Count      int64
	Percentage float64
}

// SummaryResult aggregates hits for a tracking id over a time range.
type SummaryResult struct {
	TrackingID string
	TotalHits  int64
	HitTypes   []BreakdownItem
	Devices    []BreakdownItem
	Channels   []BreakdownItem
}

type HitService struct {
	repo      HitRepository
	formatter *format.Formatter
	guard     DedupGuard
	logger    *zap.Logger
}

func NewHitService(repo HitRepository, formatter *format.Formatter, guard DedupGuard, logger *zap.Logger) *HitService {
	return &HitService{
		repo:      repo,
		formatter: formatter,
		guard:     guard,
		logger:    logger,
	}
}

// DedupKey identifies a hit across redeliveries.
func DedupKey(e events.CollectedHit) string {
	return strings.Join([]string{
		e.Param("tid"),
		e.Param("cid"),
		e.Param("z"),
		strconv.FormatInt(e.ServerTimeUTC, 10),
	}, "|")
}

// RecordHit formats and stores a collected hit. A hit already recorded
// returns domain.ErrDuplicateHit. The dedup claim is released when the hit
// is not stored, so a retry is not mistaken for a duplicate.
func (s *HitService) RecordHit(ctx context.Context, e events.CollectedHit) (err error) {
	key := DedupKey(e)
	fresh, err := s.guard.Claim(ctx, key)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if !fresh {
		return domain.ErrDuplicateHit
	}
	defer func() {
		if err == nil {
			return
		}
		if releaseErr := s.guard.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			s.logger.Warn("failed to release dedup key", zap.String("key", key), zap.Error(releaseErr))
		}
	}()

	hit, err := s.formatter.Format(e)
	if err != nil {
		return err
	}

	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("marshal hit: %w", err)
	}

	record := HitRecord{
		ID:             uuid.NewString(),
		TrackingID:     hit.TrackingID,
		ClientID:       hit.ClientID,
		HitType:        hit.HitType,
		ServerTimeUTC:  hit.ServerTimeUTC,
		HitDate:        time.Unix(hit.ServerTimeUTC, 0).UTC().Format("20060102"),
		DeviceCategory: hit.Device.Category,
		Channel:        hit.TrafficSource.Channel,
		PagePath:       hit.Page.PagePath,
		Hostname:       hit.Page.Hostname,
		Body:           body,
	}
	if err := s.repo.InsertHit(ctx, record); err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}

	s.logger.Debug("hit recorded",
		zap.String("tracking_id", record.TrackingID),
		zap.String("hit_type", record.HitType),
		zap.String("id", record.ID),
	)
	return nil
}

// GetSummary returns totals and breakdowns for trackingID between from and to (unix seconds, inclusive).
func (s *HitService) GetSummary(ctx context.Context, trackingID string, from, to int64) (*SummaryResult, error) {
	total, err := s.repo.CountInRange(ctx, trackingID, from, to)
	if err != nil {
		return nil, err
	}

	hitTypes, err := s.repo.CountByHitTypeInRange(ctx, trackingID, from, to)
	if err != nil {
		return nil, err
	}

	devices, err := s.repo.CountByDeviceInRange(ctx, trackingID, from, to)
	if err != nil {
		return nil, err
	}

	channels, err := s.repo.CountByChannelInRange(ctx, trackingID, from, to)
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		TrackingID: trackingID,
		TotalHits:  total,
		HitTypes:   computeBreakdown(hitTypes, total),
		Devices:    computeBreakdown(devices, total),
		Channels:   computeBreakdown(channels, total),
	}, nil
}

// ListHits returns a page of hits for trackingID, newest first.
func (s *HitService) ListHits(ctx context.Context, trackingID string, cursor Cursor, limit int) (*PaginatedHits, error) {
	return s.repo.ListHits(ctx, trackingID, cursor, limit)
}

func computeBreakdown(groups []GroupCount, total int64) []BreakdownItem {
	items := make([]BreakdownItem, len(groups))
	for i, g := range groups {
		var pct float64
		if total > 0 {
			pct = float64(g.Count) / float64(total) * 100
		}
		items[i] = BreakdownItem{
			Value:      g.Value,
			Count:      g.Count,
			Percentage: pct,
		}
	}
	return items
}
