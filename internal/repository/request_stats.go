package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arthub/arthub-backend/internal/models"
)

// StatsFilters ограничивает выборку агрегатов.
type StatsFilters struct {
	SenderID    *uuid.UUID
	ArtistID    *uuid.UUID
	RequestType string
	Status      string
	From        *time.Time
	To          *time.Time
}

// StatsGroupRow содержит агрегаты по одной группе.
type StatsGroupRow struct {
	GroupKey          string   `db:"group_key"`
	Count             int      `db:"cnt"`
	TotalBudget       float64  `db:"total_budget"`
	AvgBudget         *float64 `db:"avg_budget"`
	TotalQuoted       float64  `db:"total_quoted"`
	AvgQuoted         *float64 `db:"avg_quoted"`
	TotalFinal        float64  `db:"total_final"`
	AvgFinal          *float64 `db:"avg_final"`
	AvgCompletionDays *float64 `db:"avg_completion_days"`
}

// StatsSummaryRow содержит сырые агрегаты по всей выборке.
type StatsSummaryRow struct {
	TotalRequests     int      `db:"total_requests"`
	CompletedRequests int      `db:"completed_requests"`
	CancelledRequests int      `db:"cancelled_requests"`
	TotalBudget       float64  `db:"total_budget"`
	TotalFinal        float64  `db:"total_final"`
	AverageRating     *float64 `db:"average_rating"`
}

// TrendingTypeRow содержит агрегаты по одному типу заказов.
type TrendingTypeRow struct {
	RequestType    string   `db:"request_type"`
	Count          int      `db:"cnt"`
	AvgBudget      *float64 `db:"avg_budget"`
	CompletedCount int      `db:"completed_count"`
}

// groupByColumns белый список полей группировки для GetStatsGroups.
var groupByColumns = map[string]string{
	"status":       "status",
	"request_type": "request_type",
	"priority":     "priority",
	"artist_id":    "artist_id::text",
}

// buildStatsWhere собирает WHERE-часть для агрегатных запросов.
func buildStatsWhere(filters StatsFilters) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	appendClause := func(clause string, value interface{}) {
		where += fmt.Sprintf(clause, argIndex)
		args = append(args, value)
		argIndex++
	}

	if filters.SenderID != nil {
		appendClause(" AND sender_id = $%d", *filters.SenderID)
	}
	if filters.ArtistID != nil {
		appendClause(" AND artist_id = $%d", *filters.ArtistID)
	}
	if filters.RequestType != "" {
		appendClause(" AND request_type = $%d", filters.RequestType)
	}
	if filters.Status != "" {
		appendClause(" AND status = $%d", filters.Status)
	}
	if filters.From != nil {
		appendClause(" AND created_at >= $%d", *filters.From)
	}
	if filters.To != nil {
		appendClause(" AND created_at < $%d", *filters.To)
	}

	return where, args
}

// GetStatsGroups возвращает агрегаты, сгруппированные по указанному полю.
// Среднее время выполнения считается в днях между accepted_at и completed_at.
func (r *RequestRepository) GetStatsGroups(ctx context.Context, filters StatsFilters, groupBy string) ([]StatsGroupRow, error) {
	column, ok := groupByColumns[groupBy]
	if !ok {
		column = "status"
	}

	where, args := buildStatsWhere(filters)

	query := fmt.Sprintf(`
		SELECT
			%s AS group_key,
			COUNT(*) AS cnt,
			COALESCE(SUM(budget), 0) AS total_budget,
			AVG(budget) AS avg_budget,
			COALESCE(SUM(quoted_price), 0) AS total_quoted,
			AVG(quoted_price) AS avg_quoted,
			COALESCE(SUM(final_price), 0) AS total_final,
			AVG(final_price) AS avg_final,
			AVG(EXTRACT(EPOCH FROM (completed_at - accepted_at)) / 86400.0)
				FILTER (WHERE completed_at IS NOT NULL AND accepted_at IS NOT NULL) AS avg_completion_days
		FROM commission_requests
		%s
		GROUP BY %s
		ORDER BY cnt DESC
	`, column, where, column)

	var rows []StatsGroupRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: stats groups %w", err)
	}
	return rows, nil
}

// GetStatsSummary возвращает сводные агрегаты по всей выборке.
func (r *RequestRepository) GetStatsSummary(ctx context.Context, filters StatsFilters) (*StatsSummaryRow, error) {
	where, args := buildStatsWhere(filters)

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total_requests,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_requests,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled_requests,
			COALESCE(SUM(budget), 0) AS total_budget,
			COALESCE(SUM(final_price), 0) AS total_final,
			AVG(rating) FILTER (WHERE rating IS NOT NULL) AS average_rating
		FROM commission_requests
		%s
	`, where)

	var row StatsSummaryRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: stats summary %w", err)
	}
	return &row, nil
}

// GetTrendingTypes возвращает типы заказов за период, отсортированные по числу
// заказов. Отменённые заказы в выборку не входят.
func (r *RequestRepository) GetTrendingTypes(ctx context.Context, from time.Time, limit int) ([]TrendingTypeRow, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT
			request_type,
			COUNT(*) AS cnt,
			AVG(budget) AS avg_budget,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_count
		FROM commission_requests
		WHERE status <> $1 AND created_at >= $2
		GROUP BY request_type
		ORDER BY cnt DESC
		LIMIT $3
	`

	var rows []TrendingTypeRow
	if err := r.db.SelectContext(ctx, &rows, query, models.RequestStatusCancelled, from, limit); err != nil {
		return nil, fmt.Errorf("request repository: trending types %w", err)
	}
	return rows, nil
}

// GetArtistStats возвращает статистику художника для публичного профиля.
func (r *RequestRepository) GetArtistStats(ctx context.Context, artistID uuid.UUID) (*models.ArtistStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_requests,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed_requests,
			COALESCE(AVG(rating) FILTER (WHERE rating IS NOT NULL), 0) AS average_rating,
			COUNT(*) FILTER (WHERE rating IS NOT NULL) AS rated_requests,
			COALESCE(SUM(final_price) FILTER (WHERE status = 'completed'), 0) AS total_earnings
		FROM commission_requests
		WHERE artist_id = $1
	`

	var stats struct {
		TotalRequests     int     `db:"total_requests"`
		CompletedRequests int     `db:"completed_requests"`
		AverageRating     float64 `db:"average_rating"`
		RatedRequests     int     `db:"rated_requests"`
		TotalEarnings     float64 `db:"total_earnings"`
	}
	if err := r.db.GetContext(ctx, &stats, query, artistID); err != nil {
		return nil, fmt.Errorf("request repository: artist stats %w", err)
	}

	return &models.ArtistStats{
		TotalRequests:     stats.TotalRequests,
		CompletedRequests: stats.CompletedRequests,
		AverageRating:     stats.AverageRating,
		RatedRequests:     stats.RatedRequests,
		TotalEarnings:     stats.TotalEarnings,
	}, nil
}
