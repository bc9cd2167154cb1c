package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает пользователя платформы: покупателя, художника или администратора.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	DisplayName  string     `db:"display_name" json:"display_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Bio          *string    `db:"bio" json:"bio,omitempty"`
	AvatarURL    *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ArtistStats содержит агрегированную статистику художника.
type ArtistStats struct {
	TotalRequests     int     `json:"total_requests"`
	CompletedRequests int     `json:"completed_requests"`
	AverageRating     float64 `json:"average_rating"`
	RatedRequests     int     `json:"rated_requests"`
	TotalEarnings     float64 `json:"total_earnings"`
}
