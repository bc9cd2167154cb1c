package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arthub/arthub-backend/internal/models"
)

// CatalogRepository отвечает за справочник категорий.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository создаёт новый экземпляр.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCategories возвращает все категории.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	query := `SELECT id, name, slug, description, created_at FROM categories ORDER BY name`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("catalog repository: list categories %w", err)
	}
	return categories, nil
}

// GetCategoryBySlug возвращает категорию по slug.
func (r *CatalogRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	query := `SELECT id, name, slug, description, created_at FROM categories WHERE slug = $1`
	if err := r.db.GetContext(ctx, &category, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("catalog repository: get category %w", err)
	}
	return &category, nil
}
