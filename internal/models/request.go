package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CommissionRequest описывает заказ на коммиссионную работу между покупателем и художником.
type CommissionRequest struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	SenderID          uuid.UUID      `db:"sender_id" json:"sender_id"`
	ArtistID          uuid.UUID      `db:"artist_id" json:"artist_id"`
	RequestType       string         `db:"request_type" json:"request_type"`
	Title             string         `db:"title" json:"title"`
	Description       string         `db:"description" json:"description"`
	Budget            *float64       `db:"budget" json:"budget,omitempty"`
	Currency          string         `db:"currency" json:"currency"`
	QuotedPrice       *float64       `db:"quoted_price" json:"quoted_price,omitempty"`
	FinalPrice        *float64       `db:"final_price" json:"final_price,omitempty"`
	Status            string         `db:"status" json:"status"`
	Priority          string         `db:"priority" json:"priority"`
	CategoryID        *uuid.UUID     `db:"category_id" json:"category_id,omitempty"`
	Tags              pq.StringArray `db:"tags" json:"tags"`
	Response          *string        `db:"response" json:"response,omitempty"`
	DeadlineAt        *time.Time     `db:"deadline_at" json:"deadline_at,omitempty"`
	EstimatedDelivery *time.Time     `db:"estimated_delivery" json:"estimated_delivery,omitempty"`
	CurrentProgress   int            `db:"current_progress" json:"current_progress"`
	UsedRevisions     int            `db:"used_revisions" json:"used_revisions"`
	MaxRevisions      int            `db:"max_revisions" json:"max_revisions"`
	AllowRevisions    bool           `db:"allow_revisions" json:"allow_revisions"`
	IsPrivate         bool           `db:"is_private" json:"is_private"`
	Attachments       AttachmentList `db:"attachments" json:"attachments"`

	AcceptedAt  *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	RejectedAt  *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`

	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	RefundRequested    bool       `db:"refund_requested" json:"refund_requested"`
	RefundAmount       *float64   `db:"refund_amount" json:"refund_amount,omitempty"`
	RefundReason       *string    `db:"refund_reason" json:"refund_reason,omitempty"`
	RefundProcessedAt  *time.Time `db:"refund_processed_at" json:"refund_processed_at,omitempty"`

	Rating          *int       `db:"rating" json:"rating,omitempty"`
	FeedbackComment *string    `db:"feedback_comment" json:"feedback_comment,omitempty"`
	FeedbackLeftAt  *time.Time `db:"feedback_left_at" json:"feedback_left_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Заполняются по запросу (population), в базе не хранятся.
	Sender   *User     `db:"-" json:"sender,omitempty"`
	Artist   *User     `db:"-" json:"artist,omitempty"`
	Category *Category `db:"-" json:"category,omitempty"`
}

// Attachment описывает файл, прикреплённый к заказу или его подсущности.
type Attachment struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Deliverable описывает результат работы с типом (final/preview/source/documentation).
type Deliverable struct {
	Attachment
	Kind string `json:"kind"`
}

// Milestone описывает этап работы с весом в процентах.
type Milestone struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RequestID    uuid.UUID       `db:"request_id" json:"request_id"`
	Title        string          `db:"title" json:"title"`
	Description  *string         `db:"description" json:"description,omitempty"`
	DueAt        *time.Time      `db:"due_at" json:"due_at,omitempty"`
	Percentage   int             `db:"percentage" json:"percentage"`
	Status       string          `db:"status" json:"status"`
	CompletedAt  *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	Deliverables DeliverableList `db:"deliverables" json:"deliverables"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Revision описывает запрос на правки от покупателя.
type Revision struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	RequestID       uuid.UUID      `db:"request_id" json:"request_id"`
	RequesterID     uuid.UUID      `db:"requester_id" json:"requester_id"`
	Feedback        string         `db:"feedback" json:"feedback"`
	SpecificChanges pq.StringArray `db:"specific_changes" json:"specific_changes"`
	Priority        string         `db:"priority" json:"priority"`
	Attachments     AttachmentList `db:"attachments" json:"attachments"`
	Status          string         `db:"status" json:"status"`
	ArtistResponse  *string        `db:"artist_response" json:"artist_response,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// ProgressUpdate описывает запись в журнале прогресса (append-only).
type ProgressUpdate struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	RequestID   uuid.UUID      `db:"request_id" json:"request_id"`
	Progress    int            `db:"progress" json:"progress"`
	Note        *string        `db:"note" json:"note,omitempty"`
	Attachments AttachmentList `db:"attachments" json:"attachments"`
	MilestoneID *uuid.UUID     `db:"milestone_id" json:"milestone_id,omitempty"`
	UpdatedBy   uuid.UUID      `db:"updated_by" json:"updated_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Category описывает категорию каталога. Заказ ссылается на неё опционально,
// каскадных удалений нет.
type Category struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Slug        string    `db:"slug" json:"slug"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// AttachmentList хранится в базе как JSONB.
type AttachmentList []Attachment

// Value реализует driver.Valuer.
func (l AttachmentList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("models: attachment list marshal %w", err)
	}
	return string(raw), nil
}

// Scan реализует sql.Scanner.
func (l *AttachmentList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// DeliverableList хранится в базе как JSONB.
type DeliverableList []Deliverable

// Value реализует driver.Valuer.
func (l DeliverableList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("models: deliverable list marshal %w", err)
	}
	return string(raw), nil
}

// Scan реализует sql.Scanner.
func (l *DeliverableList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("models: неподдерживаемый тип для JSONB: %T", src)
	}
}
