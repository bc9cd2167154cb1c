package dto

import (
	"time"

	"github.com/arthub/arthub-backend/internal/models"
)

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateCommissionRequest represents the request to create a commission
type CreateCommissionRequest struct {
	ArtistID          string              `json:"artist_id" binding:"required"`
	RequestType       string              `json:"request_type" binding:"required"`
	Title             string              `json:"title" binding:"required"`
	Description       string              `json:"description" binding:"required"`
	Budget            *float64            `json:"budget"`
	Currency          string              `json:"currency"`
	Priority          string              `json:"priority"`
	CategoryID        *string             `json:"category_id"`
	Tags              []string            `json:"tags"`
	DeadlineAt        *string             `json:"deadline_at"`
	EstimatedDelivery *string             `json:"estimated_delivery"`
	MaxRevisions      *int                `json:"max_revisions"`
	AllowRevisions    *bool               `json:"allow_revisions"`
	IsPrivate         bool                `json:"is_private"`
	Attachments       []models.Attachment `json:"attachments"`
	Milestones        []MilestoneRequest  `json:"milestones"`
}

// MilestoneRequest represents a milestone in a commission payload
type MilestoneRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	DueAt       *string `json:"due_at"`
	Percentage  int     `json:"percentage"`
}

// UpdateStatusRequest represents the request to change commission status
type UpdateStatusRequest struct {
	Status             string   `json:"status" binding:"required"`
	QuotedPrice        *float64 `json:"quoted_price"`
	Response           *string  `json:"response"`
	EstimatedDelivery  *string  `json:"estimated_delivery"`
	CancellationReason *string  `json:"cancellation_reason"`
	RefundRequested    bool     `json:"refund_requested"`
	RefundAmount       *float64 `json:"refund_amount"`
	RefundReason       *string  `json:"refund_reason"`
}

// RecordProgressRequest represents the request to record progress
type RecordProgressRequest struct {
	Progress    int                 `json:"progress"`
	Note        *string             `json:"note"`
	Attachments []models.Attachment `json:"attachments"`
	MilestoneID *string             `json:"milestone_id"`
}

// RequestRevisionRequest represents the request to ask for changes
type RequestRevisionRequest struct {
	Feedback        string              `json:"feedback" binding:"required"`
	SpecificChanges []string            `json:"specific_changes"`
	Priority        string              `json:"priority"`
	Attachments     []models.Attachment `json:"attachments"`
}

// CompleteMilestoneRequest represents the request to complete a milestone
type CompleteMilestoneRequest struct {
	Deliverables []models.Deliverable `json:"deliverables"`
}

// SubmitFeedbackRequest represents the buyer feedback payload
type SubmitFeedbackRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment"`
}

// ParseTimestamp converts an RFC3339 string to time.Time pointer
func ParseTimestamp(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
