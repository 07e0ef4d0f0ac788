package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"hitstream/internal/hits/domain"
	"hitstream/internal/hits/format"
	"hitstream/internal/hits/usecase"
	"hitstream/internal/shared/events"
	"hitstream/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(repo *testutil.MockHitRepository, guard *testutil.MockDedupGuard) *usecase.HitService {
	return usecase.NewHitService(repo, format.NewFormatter(), guard, zap.NewNop())
}

func pageview() events.CollectedHit {
	return events.CollectedHit{
		Params: map[string]string{
			"v": "1", "tid": "UA-1-1", "cid": "555", "t": "pageview", "z": "42",
			"dl": "https://example.com/pricing", "referrer": "https://t.co/xyz",
		},
		ServerTimeUTC: 1700000000, // 2023-11-14T22:13:20Z
	}
}

// TestRecordHit_FreshHit_InsertsFormattedRecord verifies the stored columns and body
func TestRecordHit_FreshHit_InsertsFormattedRecord(t *testing.T) {
	// Setup
	repo := &testutil.MockHitRepository{}
	guard := &testutil.MockDedupGuard{}
	svc := newService(repo, guard)

	guard.On("Claim", mock.Anything, "UA-1-1|555|42|1700000000").Return(true, nil)

	var stored usecase.HitRecord
	repo.On("InsertHit", mock.Anything, mock.AnythingOfType("usecase.HitRecord")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(usecase.HitRecord) }).
		Return(nil)

	// Act
	err := svc.RecordHit(context.Background(), pageview())

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "UA-1-1", stored.TrackingID)
	assert.Equal(t, "555", stored.ClientID)
	assert.Equal(t, "PAGEVIEW", stored.HitType)
	assert.Equal(t, int64(1700000000), stored.ServerTimeUTC)
	assert.Equal(t, "20231114", stored.HitDate)
	assert.Equal(t, "unknown", stored.DeviceCategory)
	assert.Equal(t, "Social", stored.Channel)
	assert.Equal(t, "/pricing", stored.PagePath)
	assert.Equal(t, "example.com", stored.Hostname)

	var body domain.Hit
	require.NoError(t, json.Unmarshal(stored.Body, &body))
	assert.Equal(t, "PAGEVIEW", body.HitType)
	assert.Equal(t, "https://t.co/xyz", body.Page.Referrer)

	repo.AssertExpectations(t)
	guard.AssertExpectations(t)
}

// TestRecordHit_Duplicate_ReturnsErrDuplicateHit verifies redeliveries are skipped
func TestRecordHit_Duplicate_ReturnsErrDuplicateHit(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	guard := &testutil.MockDedupGuard{}
	svc := newService(repo, guard)

	guard.On("Claim", mock.Anything, mock.Anything).Return(false, nil)

	err := svc.RecordHit(context.Background(), pageview())

	assert.ErrorIs(t, err, domain.ErrDuplicateHit)
	repo.AssertNotCalled(t, "InsertHit", mock.Anything, mock.Anything)
}

// TestRecordHit_GuardError_ReturnsError verifies guard failures are surfaced
func TestRecordHit_GuardError_ReturnsError(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	guard := &testutil.MockDedupGuard{}
	svc := newService(repo, guard)

	guard.On("Claim", mock.Anything, mock.Anything).Return(false, errors.New("boom"))

	err := svc.RecordHit(context.Background(), pageview())

	assert.ErrorContains(t, err, "dedup check")
	repo.AssertNotCalled(t, "InsertHit", mock.Anything, mock.Anything)
}

// TestRecordHit_MissingHitType_ReturnsFormatError verifies unformattable hits are not stored
func TestRecordHit_MissingHitType_ReturnsFormatError(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	guard := &testutil.MockDedupGuard{}
	svc := newService(repo, guard)

	guard.On("Claim", mock.Anything, mock.Anything).Return(true, nil)
	guard.On("Release", mock.Anything, mock.Anything).Return(nil)
	e := pageview()
	delete(e.Params, "t")

	err := svc.RecordHit(context.Background(), e)

	assert.ErrorIs(t, err, domain.ErrMissingHitType)
	repo.AssertNotCalled(t, "InsertHit", mock.Anything, mock.Anything)
	guard.AssertCalled(t, "Release", mock.Anything, usecase.DedupKey(e))
}

// TestRecordHit_InsertFails_WrapsError verifies repository errors are wrapped
func TestRecordHit_InsertFails_WrapsError(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	guard := &testutil.MockDedupGuard{}
	svc := newService(repo, guard)

	dbErr := errors.New("disk full")
	guard.On("Claim", mock.Anything, mock.Anything).Return(true, nil)
	guard.On("Release", mock.Anything, "UA-1-1|555|42|1700000000").Return(nil)
	repo.On("InsertHit", mock.Anything, mock.Anything).Return(dbErr)

	err := svc.RecordHit(context.Background(), pageview())

	assert.ErrorIs(t, err, dbErr)
	guard.AssertExpectations(t)
}

// TestRecordHit_ReleaseFails_ReturnsInsertError verifies a failed release does not mask the insert error
func TestRecordHit_ReleaseFails_ReturnsInsertError(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	guard := &testutil.MockDedupGuard{}
	svc := newService(repo, guard)

	dbErr := errors.New("disk full")
	guard.On("Claim", mock.Anything, mock.Anything).Return(true, nil)
	guard.On("Release", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	repo.On("InsertHit", mock.Anything, mock.Anything).Return(dbErr)

	err := svc.RecordHit(context.Background(), pageview())

	assert.ErrorIs(t, err, dbErr)
}

// TestRecordHit_NonFiniteRevenue_IsStored verifies a NaN revenue does not block storage
func TestRecordHit_NonFiniteRevenue_IsStored(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	guard := &testutil.MockDedupGuard{}
	svc := newService(repo, guard)

	guard.On("Claim", mock.Anything, mock.Anything).Return(true, nil)
	var stored usecase.HitRecord
	repo.On("InsertHit", mock.Anything, mock.AnythingOfType("usecase.HitRecord")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(usecase.HitRecord) }).
		Return(nil)

	e := pageview()
	e.Params["tr"] = "NaN"
	e.Params["tt"] = "Inf"

	err := svc.RecordHit(context.Background(), e)

	require.NoError(t, err)
	var body domain.Hit
	require.NoError(t, json.Unmarshal(stored.Body, &body))
	assert.Nil(t, body.Transaction.Revenue)
	assert.Nil(t, body.Transaction.Tax)
	guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "UA-1-1|555|42|1700000000", usecase.DedupKey(pageview()))
	assert.Equal(t, "|||0", usecase.DedupKey(events.CollectedHit{}))
}

// TestGetSummary_ComputesPercentages verifies breakdown percentages
func TestGetSummary_ComputesPercentages(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	svc := newService(repo, &testutil.MockDedupGuard{})
	ctx := context.Background()

	repo.On("CountInRange", ctx, "UA-1", int64(0), int64(100)).Return(int64(4), nil)
	repo.On("CountByHitTypeInRange", ctx, "UA-1", int64(0), int64(100)).
		Return([]usecase.GroupCount{{Value: "PAGEVIEW", Count: 3}, {Value: "EVENT", Count: 1}}, nil)
	repo.On("CountByDeviceInRange", ctx, "UA-1", int64(0), int64(100)).
		Return([]usecase.GroupCount{{Value: "mobile", Count: 4}}, nil)
	repo.On("CountByChannelInRange", ctx, "UA-1", int64(0), int64(100)).
		Return([]usecase.GroupCount{{Value: "Search", Count: 2}, {Value: "Direct", Count: 2}}, nil)

	summary, err := svc.GetSummary(ctx, "UA-1", 0, 100)

	require.NoError(t, err)
	assert.Equal(t, "UA-1", summary.TrackingID)
	assert.Equal(t, int64(4), summary.TotalHits)
	assert.Equal(t, []usecase.BreakdownItem{
		{Value: "PAGEVIEW", Count: 3, Percentage: 75},
		{Value: "EVENT", Count: 1, Percentage: 25},
	}, summary.HitTypes)
	assert.Equal(t, []usecase.BreakdownItem{{Value: "mobile", Count: 4, Percentage: 100}}, summary.Devices)
	assert.Equal(t, 50.0, summary.Channels[0].Percentage)
}

// TestGetSummary_NoHits_ZeroPercentages verifies division by zero is avoided
func TestGetSummary_NoHits_ZeroPercentages(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	svc := newService(repo, &testutil.MockDedupGuard{})

	repo.On("CountInRange", mock.Anything, "UA-1", mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("CountByHitTypeInRange", mock.Anything, "UA-1", mock.Anything, mock.Anything).Return([]usecase.GroupCount{}, nil)
	repo.On("CountByDeviceInRange", mock.Anything, "UA-1", mock.Anything, mock.Anything).Return([]usecase.GroupCount{}, nil)
	repo.On("CountByChannelInRange", mock.Anything, "UA-1", mock.Anything, mock.Anything).Return([]usecase.GroupCount{}, nil)

	summary, err := svc.GetSummary(context.Background(), "UA-1", 0, 100)

	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalHits)
	assert.Empty(t, summary.HitTypes)
	assert.Empty(t, summary.Channels)
}

// TestGetSummary_RepositoryError_ReturnsError verifies errors propagate
func TestGetSummary_RepositoryError_ReturnsError(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	svc := newService(repo, &testutil.MockDedupGuard{})

	repo.On("CountInRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	_, err := svc.GetSummary(context.Background(), "UA-1", 0, 100)

	assert.EqualError(t, err, "db down")
}

func TestListHits_DelegatesToRepository(t *testing.T) {
	repo := &testutil.MockHitRepository{}
	svc := newService(repo, &testutil.MockDedupGuard{})
	want := &usecase.PaginatedHits{Hits: []usecase.HitRecord{{ID: "a"}}, HasMore: false}

	repo.On("ListHits", mock.Anything, "UA-1", usecase.FirstPage, 20).Return(want, nil)

	got, err := svc.ListHits(context.Background(), "UA-1", usecase.FirstPage, 20)

	require.NoError(t, err)
	assert.Same(t, want, got)
}
