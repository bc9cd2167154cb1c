package dto

import (
	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/service"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AuthResponse represents the result of registration or login
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// NewAuthResponse creates an AuthResponse from the service result
func NewAuthResponse(result *service.AuthResult) *AuthResponse {
	return &AuthResponse{
		User:         result.User,
		AccessToken:  result.TokenPair.AccessToken,
		RefreshToken: result.TokenPair.RefreshToken,
		ExpiresIn:    int64(result.TokenPair.ExpiresIn.Seconds()),
	}
}

// TokenResponse represents a refreshed token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ListResponse represents a paginated collection
type ListResponse struct {
	Items   interface{} `json:"items"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

// ArtistProfileResponse represents a public artist profile with stats
type ArtistProfileResponse struct {
	*models.User
	Stats *models.ArtistStats `json:"stats"`
}

// EstimateResponse represents the expected completion date of a commission
type EstimateResponse struct {
	RequestID           string `json:"request_id"`
	EstimatedCompletion string `json:"estimated_completion"`
}

// UploadResponse represents an uploaded media file
type UploadResponse struct {
	Media      *models.MediaFile `json:"media"`
	Attachment models.Attachment `json:"attachment"`
}
