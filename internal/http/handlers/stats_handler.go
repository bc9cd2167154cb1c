package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arthub/arthub-backend/internal/dto"
	"github.com/arthub/arthub-backend/internal/http/handlers/common"
	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/service"
)

// StatsHandler обслуживает агрегатные отчёты по заказам.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler создаёт новый хэндлер.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats обрабатывает GET /stats/requests.
// Обычный пользователь видит статистику только по своим заказам.
func (h *StatsHandler) GetStats(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	opts := service.StatsOptions{
		RequestType: c.Query("request_type"),
		Status:      c.Query("status"),
		GroupBy:     c.Query("group_by"),
		Period:      c.Query("period"),
	}

	// Явное окно from/to имеет приоритет над period.
	if raw := c.Query("from"); raw != "" {
		from, err := dto.ParseTimestamp(&raw)
		if err != nil {
			common.RespondBadRequest(c, "from должен быть в формате RFC3339")
			return
		}
		opts.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := dto.ParseTimestamp(&raw)
		if err != nil {
			common.RespondBadRequest(c, "to должен быть в формате RFC3339")
			return
		}
		opts.To = to
	}
	if opts.From != nil && opts.To != nil && opts.To.Before(*opts.From) {
		common.RespondBadRequest(c, "to не может быть раньше from")
		return
	}

	switch role {
	case models.RoleAdmin:
		if raw := c.Query("artist_id"); raw != "" {
			artistID, err := uuid.Parse(raw)
			if err != nil {
				common.RespondBadRequest(c, "artist_id должен быть валидным UUID")
				return
			}
			opts.ArtistID = &artistID
		}
		if raw := c.Query("sender_id"); raw != "" {
			senderID, err := uuid.Parse(raw)
			if err != nil {
				common.RespondBadRequest(c, "sender_id должен быть валидным UUID")
				return
			}
			opts.SenderID = &senderID
		}
	case models.RoleArtist:
		opts.ArtistID = &userID
	default:
		opts.SenderID = &userID
	}

	stats, err := h.stats.GetStats(c.Request.Context(), opts)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, stats)
}

// GetTrendingTypes обрабатывает GET /stats/trending-types.
func (h *StatsHandler) GetTrendingTypes(c *gin.Context) {
	period := c.DefaultQuery("period", "month")
	limit := common.ParseIntQuery(c, "limit", 10)

	trending, err := h.stats.GetTrendingTypes(c.Request.Context(), period, limit)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{
		"period": period,
		"types":  trending,
	})
}

// GetArtistStats обрабатывает GET /artists/:id/stats.
func (h *StatsHandler) GetArtistStats(c *gin.Context) {
	artistID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	stats, err := h.stats.GetArtistStats(c.Request.Context(), artistID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, stats)
}
