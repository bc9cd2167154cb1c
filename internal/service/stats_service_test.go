package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/repository"
)

type mockStatsRepo struct {
	mock.Mock
}

func (m *mockStatsRepo) GetStatsGroups(ctx context.Context, filters repository.StatsFilters, groupBy string) ([]repository.StatsGroupRow, error) {
	args := m.Called(ctx, filters, groupBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.StatsGroupRow), args.Error(1)
}

func (m *mockStatsRepo) GetStatsSummary(ctx context.Context, filters repository.StatsFilters) (*repository.StatsSummaryRow, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.StatsSummaryRow), args.Error(1)
}

func (m *mockStatsRepo) GetTrendingTypes(ctx context.Context, from time.Time, limit int) ([]repository.TrendingTypeRow, error) {
	args := m.Called(ctx, from, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.TrendingTypeRow), args.Error(1)
}

func (m *mockStatsRepo) GetArtistStats(ctx context.Context, artistID uuid.UUID) (*models.ArtistStats, error) {
	args := m.Called(ctx, artistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ArtistStats), args.Error(1)
}

func newTestStatsService(repo *mockStatsRepo, now time.Time) *StatsService {
	svc := NewStatsService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestStatsService_GetStats_DerivedValues(t *testing.T) {
	repo := new(mockStatsRepo)
	svc := newTestStatsService(repo, testNow)

	rating := 4.5
	repo.On("GetStatsSummary", mock.Anything, mock.Anything).Return(&repository.StatsSummaryRow{
		TotalRequests:     3,
		CompletedRequests: 3,
		TotalBudget:       600,
		TotalFinal:        580,
		AverageRating:     &rating,
	}, nil)
	avg := 200.0
	repo.On("GetStatsGroups", mock.Anything, mock.Anything, "status").Return([]repository.StatsGroupRow{
		{GroupKey: models.RequestStatusCompleted, Count: 3, TotalBudget: 600, AvgBudget: &avg},
	}, nil)

	stats, err := svc.GetStats(context.Background(), StatsOptions{})

	assert.NoError(t, err)
	assert.Equal(t, "all", stats.Period)
	assert.Equal(t, "status", stats.GroupBy)
	assert.Equal(t, 3, stats.Overall.TotalRequests)
	assert.InDelta(t, 200.0, stats.Overall.AverageBudget, 1e-9)
	assert.InDelta(t, 1.0, stats.Overall.CompletionRate, 1e-9)
	assert.InDelta(t, 580.0, stats.Overall.TotalRevenue, 1e-9)
	assert.InDelta(t, 4.5, stats.Overall.AverageRating, 1e-9)
	if assert.Len(t, stats.Groups, 1) {
		assert.Equal(t, models.RequestStatusCompleted, stats.Groups[0].Group)
		assert.InDelta(t, 200.0, stats.Groups[0].AverageBudget, 1e-9)
	}
}

func TestStatsService_GetStats_EmptySelection(t *testing.T) {
	repo := new(mockStatsRepo)
	svc := newTestStatsService(repo, testNow)

	repo.On("GetStatsSummary", mock.Anything, mock.Anything).Return(&repository.StatsSummaryRow{}, nil)
	repo.On("GetStatsGroups", mock.Anything, mock.Anything, "status").Return([]repository.StatsGroupRow{}, nil)

	stats, err := svc.GetStats(context.Background(), StatsOptions{})

	assert.NoError(t, err)
	// Деление на ноль не происходит: производные величины остаются нулями.
	assert.Zero(t, stats.Overall.AverageBudget)
	assert.Zero(t, stats.Overall.CompletionRate)
	assert.Empty(t, stats.Groups)
}

func TestStatsService_GetStats_PeriodWindow(t *testing.T) {
	repo := new(mockStatsRepo)
	svc := newTestStatsService(repo, testNow)

	expectedFrom := testNow.AddDate(0, -1, 0)
	repo.On("GetStatsSummary", mock.Anything, mock.MatchedBy(func(f repository.StatsFilters) bool {
		return f.From != nil && f.From.Equal(expectedFrom)
	})).Return(&repository.StatsSummaryRow{}, nil)
	repo.On("GetStatsGroups", mock.Anything, mock.Anything, "request_type").Return([]repository.StatsGroupRow{}, nil)

	_, err := svc.GetStats(context.Background(), StatsOptions{Period: "month", GroupBy: "request_type"})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStatsService_GetStats_ExplicitFromOverridesPeriod(t *testing.T) {
	repo := new(mockStatsRepo)
	svc := newTestStatsService(repo, testNow)

	from := testNow.AddDate(0, -6, 0)
	repo.On("GetStatsSummary", mock.Anything, mock.MatchedBy(func(f repository.StatsFilters) bool {
		return f.From != nil && f.From.Equal(from)
	})).Return(&repository.StatsSummaryRow{}, nil)
	repo.On("GetStatsGroups", mock.Anything, mock.Anything, "status").Return([]repository.StatsGroupRow{}, nil)

	_, err := svc.GetStats(context.Background(), StatsOptions{Period: "month", From: &from})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStatsService_GetStats_UnknownPeriod(t *testing.T) {
	repo := new(mockStatsRepo)
	svc := newTestStatsService(repo, testNow)

	_, err := svc.GetStats(context.Background(), StatsOptions{Period: "decade"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "неизвестный период")
	repo.AssertNotCalled(t, "GetStatsSummary")
}

func TestStatsService_GetTrendingTypes_CompletionRate(t *testing.T) {
	repo := new(mockStatsRepo)
	svc := newTestStatsService(repo, testNow)

	avg := 150.0
	repo.On("GetTrendingTypes", mock.Anything, mock.Anything, 10).Return([]repository.TrendingTypeRow{
		{RequestType: models.RequestTypePortrait, Count: 3, CompletedCount: 3, AvgBudget: &avg},
		{RequestType: models.RequestTypeIllustration, Count: 4, CompletedCount: 1},
	}, nil)

	trending, err := svc.GetTrendingTypes(context.Background(), "", 0)

	assert.NoError(t, err)
	if assert.Len(t, trending, 2) {
		assert.InDelta(t, 1.0, trending[0].CompletionRate, 1e-9)
		assert.InDelta(t, 150.0, trending[0].AverageBudget, 1e-9)
		assert.InDelta(t, 0.25, trending[1].CompletionRate, 1e-9)
		assert.Zero(t, trending[1].AverageBudget)
	}
}

func TestStatsService_GetTrendingTypes_AllPeriodUnbounded(t *testing.T) {
	repo := new(mockStatsRepo)
	svc := newTestStatsService(repo, testNow)

	repo.On("GetTrendingTypes", mock.Anything, time.Time{}, 5).Return([]repository.TrendingTypeRow{}, nil)

	_, err := svc.GetTrendingTypes(context.Background(), "all", 5)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStatsService_GetTrendingTypes_LimitClamp(t *testing.T) {
	repo := new(mockStatsRepo)
	svc := newTestStatsService(repo, testNow)

	repo.On("GetTrendingTypes", mock.Anything, mock.Anything, 10).Return([]repository.TrendingTypeRow{}, nil)

	_, err := svc.GetTrendingTypes(context.Background(), "month", 500)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestPeriodStart(t *testing.T) {
	from, err := periodStart("all", testNow)
	assert.NoError(t, err)
	assert.Nil(t, from)

	from, err = periodStart("week", testNow)
	assert.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 0, -7), *from)

	from, err = periodStart("year", testNow)
	assert.NoError(t, err)
	assert.Equal(t, testNow.AddDate(-1, 0, 0), *from)

	_, err = periodStart("fortnight", testNow)
	assert.Error(t, err)
}
