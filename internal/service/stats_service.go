package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/pkg/apperror"
	"github.com/arthub/arthub-backend/internal/repository"
)

// StatsRepository описывает агрегатные запросы к хранилищу заказов.
type StatsRepository interface {
	GetStatsGroups(ctx context.Context, filters repository.StatsFilters, groupBy string) ([]repository.StatsGroupRow, error)
	GetStatsSummary(ctx context.Context, filters repository.StatsFilters) (*repository.StatsSummaryRow, error)
	GetTrendingTypes(ctx context.Context, from time.Time, limit int) ([]repository.TrendingTypeRow, error)
	GetArtistStats(ctx context.Context, artistID uuid.UUID) (*models.ArtistStats, error)
}

// StatsService считает статистику по заказам. Сырые агрегаты выполняет база,
// производные величины считаются здесь.
type StatsService struct {
	repo StatsRepository
	now  func() time.Time
}

// NewStatsService создаёт новый сервис статистики.
func NewStatsService(repo StatsRepository) *StatsService {
	return &StatsService{
		repo: repo,
		now:  time.Now,
	}
}

// StatsOptions описывает параметры запроса статистики.
type StatsOptions struct {
	SenderID    *uuid.UUID
	ArtistID    *uuid.UUID
	RequestType string
	Status      string
	GroupBy     string
	Period      string
	From        *time.Time
	To          *time.Time
}

// GroupStats содержит агрегаты по одной группе.
type GroupStats struct {
	Group                 string   `json:"group"`
	Count                 int      `json:"count"`
	TotalBudget           float64  `json:"total_budget"`
	AverageBudget         float64  `json:"average_budget"`
	TotalQuoted           float64  `json:"total_quoted"`
	AverageQuoted         float64  `json:"average_quoted"`
	TotalFinal            float64  `json:"total_final"`
	AverageFinal          float64  `json:"average_final"`
	AverageCompletionDays *float64 `json:"average_completion_days,omitempty"`
}

// OverallStats содержит сводку по всей выборке.
type OverallStats struct {
	TotalRequests     int     `json:"total_requests"`
	CompletedRequests int     `json:"completed_requests"`
	CancelledRequests int     `json:"cancelled_requests"`
	CompletionRate    float64 `json:"completion_rate"`
	TotalBudget       float64 `json:"total_budget"`
	AverageBudget     float64 `json:"average_budget"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageRating     float64 `json:"average_rating"`
}

// RequestStats объединяет сводку и разбивку по группам.
type RequestStats struct {
	Period  string       `json:"period"`
	GroupBy string       `json:"group_by"`
	Overall OverallStats `json:"overall"`
	Groups  []GroupStats `json:"groups"`
}

// TrendingType описывает популярный тип заказов за период.
type TrendingType struct {
	RequestType    string  `json:"request_type"`
	Count          int     `json:"count"`
	AverageBudget  float64 `json:"average_budget"`
	CompletionRate float64 `json:"completion_rate"`
}

// GetStats возвращает статистику по заказам за период с разбивкой по группам.
func (s *StatsService) GetStats(ctx context.Context, opts StatsOptions) (*RequestStats, error) {
	if opts.GroupBy == "" {
		opts.GroupBy = "status"
	}
	period := opts.Period
	if period == "" {
		period = "all"
	}

	filters := repository.StatsFilters{
		SenderID:    opts.SenderID,
		ArtistID:    opts.ArtistID,
		RequestType: opts.RequestType,
		Status:      opts.Status,
		From:        opts.From,
		To:          opts.To,
	}
	if filters.From == nil {
		from, err := periodStart(period, s.now())
		if err != nil {
			return nil, err
		}
		filters.From = from
	}

	summary, err := s.repo.GetStatsSummary(ctx, filters)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	rows, err := s.repo.GetStatsGroups(ctx, filters, opts.GroupBy)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	stats := &RequestStats{
		Period:  period,
		GroupBy: opts.GroupBy,
		Overall: OverallStats{
			TotalRequests:     summary.TotalRequests,
			CompletedRequests: summary.CompletedRequests,
			CancelledRequests: summary.CancelledRequests,
			TotalBudget:       summary.TotalBudget,
			TotalRevenue:      summary.TotalFinal,
		},
		Groups: make([]GroupStats, 0, len(rows)),
	}
	if summary.TotalRequests > 0 {
		stats.Overall.AverageBudget = summary.TotalBudget / float64(summary.TotalRequests)
		stats.Overall.CompletionRate = float64(summary.CompletedRequests) / float64(summary.TotalRequests)
	}
	if summary.AverageRating != nil {
		stats.Overall.AverageRating = *summary.AverageRating
	}

	for _, row := range rows {
		stats.Groups = append(stats.Groups, GroupStats{
			Group:                 row.GroupKey,
			Count:                 row.Count,
			TotalBudget:           row.TotalBudget,
			AverageBudget:         derefOrZero(row.AvgBudget),
			TotalQuoted:           row.TotalQuoted,
			AverageQuoted:         derefOrZero(row.AvgQuoted),
			TotalFinal:            row.TotalFinal,
			AverageFinal:          derefOrZero(row.AvgFinal),
			AverageCompletionDays: row.AvgCompletionDays,
		})
	}

	return stats, nil
}

// GetTrendingTypes возвращает популярные типы заказов за период. Доля
// завершённых считается от числа неотменённых заказов типа.
func (s *StatsService) GetTrendingTypes(ctx context.Context, period string, limit int) ([]TrendingType, error) {
	if period == "" {
		period = "month"
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	from, err := periodStart(period, s.now())
	if err != nil {
		return nil, err
	}
	start := time.Time{}
	if from != nil {
		start = *from
	}

	rows, err := s.repo.GetTrendingTypes(ctx, start, limit)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	trending := make([]TrendingType, 0, len(rows))
	for _, row := range rows {
		t := TrendingType{
			RequestType:   row.RequestType,
			Count:         row.Count,
			AverageBudget: derefOrZero(row.AvgBudget),
		}
		if row.Count > 0 {
			t.CompletionRate = float64(row.CompletedCount) / float64(row.Count)
		}
		trending = append(trending, t)
	}

	return trending, nil
}

// GetArtistStats возвращает статистику художника для публичного профиля.
func (s *StatsService) GetArtistStats(ctx context.Context, artistID uuid.UUID) (*models.ArtistStats, error) {
	stats, err := s.repo.GetArtistStats(ctx, artistID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return stats, nil
}

// periodStart возвращает начало периода относительно текущего момента.
// Для "all" возвращается nil: выборка не ограничивается по времени.
func periodStart(period string, now time.Time) (*time.Time, error) {
	var from time.Time
	switch period {
	case "all":
		return nil, nil
	case "day":
		from = now.AddDate(0, 0, -1)
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = now.AddDate(0, -1, 0)
	case "quarter":
		from = now.AddDate(0, -3, 0)
	case "year":
		from = now.AddDate(-1, 0, 0)
	default:
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный период %q", period))
	}
	return &from, nil
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
