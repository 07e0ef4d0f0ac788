package testutil

import (
	"context"

	"hitstream/internal/hits/usecase"

	"github.com/stretchr/testify/mock"
)

// MockHitRepository is a testify mock for usecase.HitRepository.
type MockHitRepository struct {
	mock.Mock
}

func (m *MockHitRepository) InsertHit(ctx context.Context, hit usecase.HitRecord) error {
	args := m.Called(ctx, hit)
	return args.Error(0)
}

func (m *MockHitRepository) CountInRange(ctx context.Context, trackingID string, from int64, to int64) (int64, error) {
	args := m.Called(ctx, trackingID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHitRepository) CountByHitTypeInRange(ctx context.Context, trackingID string, from int64, to int64) ([]usecase.GroupCount, error) {
	args := m.Called(ctx, trackingID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.GroupCount), args.Error(1)
}

func (m *MockHitRepository) CountByDeviceInRange(ctx context.Context, trackingID string, from int64, to int64) ([]usecase.GroupCount, error) {
	args := m.Called(ctx, trackingID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.GroupCount), args.Error(1)
}

func (m *MockHitRepository) CountByChannelInRange(ctx context.Context, trackingID string, from int64, to int64) ([]usecase.GroupCount, error) {
	args := m.Called(ctx, trackingID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.GroupCount), args.Error(1)
}

func (m *MockHitRepository) ListHits(ctx context.Context, trackingID string, cursor usecase.Cursor, limit int) (*usecase.PaginatedHits, error) {
	args := m.Called(ctx, trackingID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PaginatedHits), args.Error(1)
}

// MockDedupGuard is a testify mock for usecase.DedupGuard.
type MockDedupGuard struct {
	mock.Mock
}

func (m *MockDedupGuard) Claim(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDedupGuard) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
