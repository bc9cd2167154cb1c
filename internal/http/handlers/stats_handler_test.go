package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/arthub/arthub-backend/internal/http/middleware"
	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/repository"
	"github.com/arthub/arthub-backend/internal/service"
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

func newStatsTestContext(t *testing.T, rawQuery string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req, err := http.NewRequest(http.MethodGet, "/api/stats/requests?"+rawQuery, nil)
	assert.NoError(t, err)
	c.Request = req
	c.Set(middleware.ContextUserIDKey, uuid.New())
	c.Set(middleware.ContextRoleKey, models.RoleAdmin)
	return c, rec
}

func TestStatsHandler_GetStats_ExplicitWindow(t *testing.T) {
	repo := new(mockStatsRepo)
	handler := NewStatsHandler(service.NewStatsService(repo))

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	match := mock.MatchedBy(func(f repository.StatsFilters) bool {
		return f.From != nil && f.From.Equal(from) && f.To != nil && f.To.Equal(to)
	})
	repo.On("GetStatsSummary", mock.Anything, match).Return(&repository.StatsSummaryRow{}, nil)
	repo.On("GetStatsGroups", mock.Anything, match, "status").Return([]repository.StatsGroupRow{}, nil)

	c, rec := newStatsTestContext(t, "from=2026-02-01T00:00:00Z&to=2026-03-01T00:00:00Z")
	handler.GetStats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestStatsHandler_GetStats_BadFrom(t *testing.T) {
	repo := new(mockStatsRepo)
	handler := NewStatsHandler(service.NewStatsService(repo))

	c, rec := newStatsTestContext(t, "from=yesterday")
	handler.GetStats(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "GetStatsSummary")
}

func TestStatsHandler_GetStats_WindowInverted(t *testing.T) {
	repo := new(mockStatsRepo)
	handler := NewStatsHandler(service.NewStatsService(repo))

	c, rec := newStatsTestContext(t, "from=2026-03-01T00:00:00Z&to=2026-02-01T00:00:00Z")
	handler.GetStats(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "GetStatsSummary")
}
