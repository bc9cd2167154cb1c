package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arthub/arthub-backend/internal/dto"
	"github.com/arthub/arthub-backend/internal/http/handlers/common"
	"github.com/arthub/arthub-backend/internal/repository"
	"github.com/arthub/arthub-backend/internal/service"
)

// CatalogHandler обслуживает каталог категорий и публичные профили художников.
type CatalogHandler struct {
	catalog *repository.CatalogRepository
	users   *repository.UserRepository
	stats   *service.StatsService
}

// NewCatalogHandler создаёт новый хэндлер.
func NewCatalogHandler(catalog *repository.CatalogRepository, users *repository.UserRepository, stats *service.StatsService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, users: users, stats: stats}
}

// ListCategories обрабатывает GET /catalog/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{"categories": categories})
}

// GetCategory обрабатывает GET /catalog/categories/:slug.
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		common.RespondBadRequest(c, "параметр slug обязателен")
		return
	}

	category, err := h.catalog.GetCategoryBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			common.RespondNotFound(c, "категория не найдена")
			return
		}
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, category)
}

// ListArtists обрабатывает GET /catalog/artists.
func (h *CatalogHandler) ListArtists(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	artists, err := h.users.ListArtists(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, gin.H{
		"artists": artists,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetArtist обрабатывает GET /catalog/artists/:id — публичный профиль со статистикой.
func (h *CatalogHandler) GetArtist(c *gin.Context) {
	artistID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	artist, err := h.users.GetByID(c.Request.Context(), artistID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			common.RespondNotFound(c, "художник не найден")
			return
		}
		common.RespondServiceError(c, err)
		return
	}

	artistStats, err := h.stats.GetArtistStats(c.Request.Context(), artistID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ArtistProfileResponse{
		User:  artist,
		Stats: artistStats,
	})
}
