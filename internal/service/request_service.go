package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arthub/arthub-backend/internal/goroutine"
	"github.com/arthub/arthub-backend/internal/logger"
	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/pkg/apperror"
	"github.com/arthub/arthub-backend/internal/repository"
)

// RequestRepository описывает взаимодействие сервиса с хранилищем заказов.
type RequestRepository interface {
	Create(ctx context.Context, req *models.CommissionRequest, milestones []models.Milestone) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CommissionRequest, error)
	GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*models.CommissionRequest, []models.Milestone, []models.Revision, []models.ProgressUpdate, error)
	List(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error)
	UpdateLifecycle(ctx context.Context, req *models.CommissionRequest) error
	AppendProgress(ctx context.Context, req *models.CommissionRequest, update *models.ProgressUpdate) error
	AddRevision(ctx context.Context, requestID uuid.UUID, rev *models.Revision) error
	ListMilestones(ctx context.Context, requestID uuid.UUID) ([]models.Milestone, error)
	AddMilestone(ctx context.Context, ms *models.Milestone) error
	CompleteMilestone(ctx context.Context, requestID, milestoneID uuid.UUID, deliverables models.DeliverableList, newProgress *int) error
	ListRevisions(ctx context.Context, requestID uuid.UUID) ([]models.Revision, error)
	ListProgressUpdates(ctx context.Context, requestID uuid.UUID) ([]models.ProgressUpdate, error)
}

// Notifier интерфейс для отправки уведомлений о переходах жизненного цикла.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// RequestService содержит бизнес-логику жизненного цикла заказов на коммиссии.
type RequestService struct {
	repo RequestRepository
	hub  Notifier
	now  func() time.Time
}

// NewRequestService создаёт новый сервис заказов.
func NewRequestService(repo RequestRepository) *RequestService {
	return &RequestService{
		repo: repo,
		now:  time.Now,
	}
}

// SetHub устанавливает отправителя уведомлений.
func (s *RequestService) SetHub(hub Notifier) {
	s.hub = hub
}

// CreateRequestInput описывает входные данные нового заказа.
type CreateRequestInput struct {
	SenderID          uuid.UUID
	ArtistID          uuid.UUID
	RequestType       string
	Title             string
	Description       string
	Budget            *float64
	Currency          string
	Priority          string
	CategoryID        *uuid.UUID
	Tags              []string
	DeadlineAt        *time.Time
	EstimatedDelivery *time.Time
	MaxRevisions      *int
	AllowRevisions    *bool
	IsPrivate         bool
	Attachments       []models.Attachment
	Milestones        []models.Milestone
}

// UpdateStatusInput описывает перевод заказа в новый статус.
type UpdateStatusInput struct {
	RequestID          uuid.UUID
	ActorID            uuid.UUID
	ActorRole          string
	NewStatus          string
	QuotedPrice        *float64
	Response           *string
	EstimatedDelivery  *time.Time
	CancellationReason *string
	RefundRequested    bool
	RefundAmount       *float64
	RefundReason       *string
}

// RecordProgressInput описывает запись прогресса.
type RecordProgressInput struct {
	RequestID   uuid.UUID
	ActorID     uuid.UUID
	Progress    int
	Note        *string
	Attachments []models.Attachment
	MilestoneID *uuid.UUID
}

// RequestRevisionInput описывает запрос на правки.
type RequestRevisionInput struct {
	RequestID       uuid.UUID
	RequesterID     uuid.UUID
	Feedback        string
	SpecificChanges []string
	Priority        string
	Attachments     []models.Attachment
}

// RequestDetails объединяет заказ и его подсущности.
type RequestDetails struct {
	Request         *models.CommissionRequest `json:"request"`
	Milestones      []models.Milestone        `json:"milestones"`
	Revisions       []models.Revision         `json:"revisions"`
	ProgressUpdates []models.ProgressUpdate   `json:"progress_updates"`
}

// CreateRequest создаёт заказ в статусе pending.
func (s *RequestService) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.CommissionRequest, error) {
	if in.Title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название заказа не может быть пустым")
	}
	if in.Description == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "описание заказа не может быть пустым")
	}
	if in.SenderID == in.ArtistID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя заказать работу у самого себя")
	}
	if _, ok := models.ValidRequestTypes[in.RequestType]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный тип работы %q", in.RequestType))
	}
	if in.Budget != nil && *in.Budget < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "бюджет не может быть отрицательным")
	}
	if in.DeadlineAt != nil && in.DeadlineAt.Before(s.now()) {
		return nil, apperror.New(apperror.ErrCodeValidation, "дедлайн не может быть в прошлом")
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if _, ok := models.ValidPriorities[priority]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный приоритет %q", priority))
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	maxRevisions := 3
	if in.MaxRevisions != nil {
		if *in.MaxRevisions < 0 {
			return nil, apperror.New(apperror.ErrCodeValidation, "лимит правок не может быть отрицательным")
		}
		maxRevisions = *in.MaxRevisions
	}

	allowRevisions := true
	if in.AllowRevisions != nil {
		allowRevisions = *in.AllowRevisions
	}

	totalWeight := 0
	for _, ms := range in.Milestones {
		if ms.Title == "" {
			return nil, apperror.New(apperror.ErrCodeValidation, "название этапа не может быть пустым")
		}
		if ms.Percentage < 0 || ms.Percentage > 100 {
			return nil, apperror.New(apperror.ErrCodeValidation, "вес этапа должен быть в диапазоне [0,100]")
		}
		totalWeight += ms.Percentage
	}
	if totalWeight > 100 {
		return nil, apperror.New(apperror.ErrCodeValidation, "суммарный вес этапов превышает 100")
	}

	req := &models.CommissionRequest{
		SenderID:          in.SenderID,
		ArtistID:          in.ArtistID,
		RequestType:       in.RequestType,
		Title:             in.Title,
		Description:       in.Description,
		Budget:            in.Budget,
		Currency:          currency,
		Status:            models.RequestStatusPending,
		Priority:          priority,
		CategoryID:        in.CategoryID,
		Tags:              in.Tags,
		DeadlineAt:        in.DeadlineAt,
		EstimatedDelivery: in.EstimatedDelivery,
		MaxRevisions:      maxRevisions,
		AllowRevisions:    allowRevisions,
		IsPrivate:         in.IsPrivate,
		Attachments:       in.Attachments,
	}

	if err := s.repo.Create(ctx, req, in.Milestones); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.notify(req.ArtistID, "request_created", req)

	return req, nil
}

// GetRequest возвращает заказ с подсущностями, учитывая приватность.
func (s *RequestService) GetRequest(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*RequestDetails, error) {
	req, milestones, revisions, updates, err := s.repo.GetByIDWithDetails(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if req.IsPrivate && !isParticipant(req, actorID) && actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	return &RequestDetails{
		Request:         req,
		Milestones:      milestones,
		Revisions:       revisions,
		ProgressUpdates: updates,
	}, nil
}

// ListRequests возвращает страницу заказов с фильтрацией и поиском.
func (s *RequestService) ListRequests(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return result, nil
}

// UpdateStatus переводит заказ в новый статус с проверкой прав и допустимости
// перехода. Побочные эффекты перехода применяются до сохранения.
func (s *RequestService) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*models.CommissionRequest, error) {
	req, err := s.repo.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if err := authorizeStatusChange(req, in); err != nil {
		return nil, err
	}

	if in.QuotedPrice != nil {
		if *in.QuotedPrice < 0 {
			return nil, apperror.New(apperror.ErrCodeValidation, "цена не может быть отрицательной")
		}
		req.QuotedPrice = in.QuotedPrice
	}
	if in.Response != nil {
		req.Response = in.Response
	}
	if in.EstimatedDelivery != nil {
		req.EstimatedDelivery = in.EstimatedDelivery
	}
	if in.NewStatus == models.RequestStatusCancelled {
		req.CancellationReason = in.CancellationReason
		if in.RefundRequested {
			req.RefundRequested = true
			req.RefundAmount = in.RefundAmount
			req.RefundReason = in.RefundReason
		}
	}

	if err := ApplyTransition(req, in.NewStatus, s.now()); err != nil {
		return nil, err
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLifecycle(ctx, req); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.notify(counterpart(req, in.ActorID), "request_"+in.NewStatus, req)

	return req, nil
}

// RecordProgress добавляет запись в журнал прогресса и автоматически двигает
// статус: 100% из in_progress переводит в review, ненулевой прогресс из
// accepted переводит в in_progress. Регресс прогресса не блокируется.
func (s *RequestService) RecordProgress(ctx context.Context, in RecordProgressInput) (*models.CommissionRequest, error) {
	if in.Progress < 0 || in.Progress > 100 {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("прогресс %d вне диапазона [0,100]", in.Progress))
	}

	req, err := s.repo.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if req.ArtistID != in.ActorID {
		return nil, apperror.ErrForbidden
	}

	if next, ok := progressAutoStatus(req.Status, in.Progress); ok {
		if err := ApplyTransition(req, next, s.now()); err != nil {
			return nil, err
		}
	}
	req.CurrentProgress = in.Progress

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	update := &models.ProgressUpdate{
		Progress:    in.Progress,
		Note:        in.Note,
		Attachments: in.Attachments,
		MilestoneID: in.MilestoneID,
		UpdatedBy:   in.ActorID,
	}

	if err := s.repo.AppendProgress(ctx, req, update); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.notify(req.SenderID, "request_progress", update)

	return req, nil
}

// RequestRevision создаёт запрос на правки. Квота проверяется до записи, а
// инкремент счётчика выполняется атомарно вместе с проверкой в хранилище,
// поэтому два конкурентных запроса не могут превысить лимит.
func (s *RequestService) RequestRevision(ctx context.Context, in RequestRevisionInput) (*models.Revision, error) {
	if in.Feedback == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "описание правок не может быть пустым")
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if _, ok := models.ValidPriorities[priority]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный приоритет %q", priority))
	}

	req, err := s.repo.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if req.SenderID != in.RequesterID {
		return nil, apperror.ErrForbidden
	}
	if IsTerminalStatus(req.Status) {
		return nil, apperror.New(apperror.ErrCodeValidation, "правки по закрытому заказу невозможны")
	}
	if !req.AllowRevisions {
		return nil, apperror.New(apperror.ErrCodeValidation, "правки по этому заказу отключены")
	}
	if req.UsedRevisions >= req.MaxRevisions {
		return nil, apperror.ErrRevisionQuota
	}

	rev := &models.Revision{
		RequesterID:     in.RequesterID,
		Feedback:        in.Feedback,
		SpecificChanges: in.SpecificChanges,
		Priority:        priority,
		Attachments:     in.Attachments,
	}

	if err := s.repo.AddRevision(ctx, in.RequestID, rev); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.notify(req.ArtistID, "revision_requested", rev)

	return rev, nil
}

// AddMilestone добавляет этап к заказу.
func (s *RequestService) AddMilestone(ctx context.Context, requestID, actorID uuid.UUID, ms *models.Milestone) (*models.Milestone, error) {
	if ms.Title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название этапа не может быть пустым")
	}
	if ms.Percentage < 0 || ms.Percentage > 100 {
		return nil, apperror.New(apperror.ErrCodeValidation, "вес этапа должен быть в диапазоне [0,100]")
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if req.ArtistID != actorID {
		return nil, apperror.ErrForbidden
	}

	ms.RequestID = requestID
	if err := s.repo.AddMilestone(ctx, ms); err != nil {
		return nil, mapRepositoryError(err)
	}

	return ms, nil
}

// CompleteMilestone помечает этап завершённым и пересчитывает прогресс заказа
// по весам завершённых этапов. При нулевом суммарном весе прогресс не меняется.
func (s *RequestService) CompleteMilestone(ctx context.Context, requestID, actorID, milestoneID uuid.UUID, deliverables []models.Deliverable) (*models.CommissionRequest, error) {
	for _, d := range deliverables {
		if _, ok := models.ValidDeliverableKinds[d.Kind]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный тип результата %q", d.Kind))
		}
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if req.ArtistID != actorID {
		return nil, apperror.ErrForbidden
	}

	milestones, err := s.repo.ListMilestones(ctx, requestID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	var target *models.Milestone
	completedWeight := 0
	totalWeight := 0
	for i := range milestones {
		ms := &milestones[i]
		totalWeight += ms.Percentage
		switch {
		case ms.ID == milestoneID:
			target = ms
			completedWeight += ms.Percentage
		case ms.Status == models.MilestoneStatusCompleted:
			completedWeight += ms.Percentage
		}
	}
	if target == nil {
		return nil, apperror.ErrMilestoneNotFound
	}

	var progressPtr *int
	if progress, ok := milestoneProgress(completedWeight, totalWeight); ok {
		progressPtr = &progress
		req.CurrentProgress = progress
	}

	if err := s.repo.CompleteMilestone(ctx, requestID, milestoneID, deliverables, progressPtr); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.notify(req.SenderID, "milestone_completed", target)

	return req, nil
}

// EstimateCompletion возвращает ожидаемую дату завершения заказа.
func (s *RequestService) EstimateCompletion(ctx context.Context, requestID uuid.UUID) (time.Time, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return time.Time{}, mapRepositoryError(err)
	}
	return estimateCompletion(req, s.now()), nil
}

// SubmitFeedback сохраняет оценку и отзыв покупателя по завершённому заказу.
func (s *RequestService) SubmitFeedback(ctx context.Context, requestID, senderID uuid.UUID, rating int, comment *string) (*models.CommissionRequest, error) {
	if rating < 1 || rating > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if req.SenderID != senderID {
		return nil, apperror.ErrForbidden
	}
	if req.Status != models.RequestStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeValidation, "отзыв можно оставить только после завершения заказа")
	}
	if req.Rating != nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "отзыв по этому заказу уже оставлен")
	}

	now := s.now()
	req.Rating = &rating
	req.FeedbackComment = comment
	req.FeedbackLeftAt = &now

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLifecycle(ctx, req); err != nil {
		return nil, mapRepositoryError(err)
	}

	s.notify(req.ArtistID, "feedback_received", req)

	return req, nil
}

// notify отправляет уведомление в фоне. Ошибки доставки не влияют на исход
// операции и только логируются.
func (s *RequestService) notify(userID uuid.UUID, event string, data interface{}) {
	if s.hub == nil {
		return
	}
	hub := s.hub
	goroutine.SafeGo(func() {
		if err := hub.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
			logger.Log.WithField("event", event).Warnf("не удалось отправить уведомление: %v", err)
		}
	})
}

// authorizeStatusChange проверяет право инициатора на конкретный переход.
func authorizeStatusChange(req *models.CommissionRequest, in UpdateStatusInput) error {
	if in.ActorRole == models.RoleAdmin {
		return nil
	}

	switch in.NewStatus {
	case models.RequestStatusAccepted, models.RequestStatusRejected,
		models.RequestStatusInProgress, models.RequestStatusReview:
		if req.ArtistID != in.ActorID {
			return apperror.ErrForbidden
		}
	case models.RequestStatusCompleted:
		// Завершение подтверждает любая из сторон после review.
		if !isParticipant(req, in.ActorID) {
			return apperror.ErrForbidden
		}
	case models.RequestStatusCancelled:
		if !isParticipant(req, in.ActorID) {
			return apperror.ErrForbidden
		}
	default:
		if !isParticipant(req, in.ActorID) {
			return apperror.ErrForbidden
		}
	}
	return nil
}

func isParticipant(req *models.CommissionRequest, actorID uuid.UUID) bool {
	return req.SenderID == actorID || req.ArtistID == actorID
}

// counterpart возвращает вторую сторону заказа относительно инициатора.
func counterpart(req *models.CommissionRequest, actorID uuid.UUID) uuid.UUID {
	if req.ArtistID == actorID {
		return req.SenderID
	}
	return req.ArtistID
}

// mapRepositoryError переводит ошибки хранилища в ошибки уровня приложения.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrRequestNotFound):
		return apperror.ErrRequestNotFound
	case errors.Is(err, repository.ErrMilestoneNotFound):
		return apperror.ErrMilestoneNotFound
	case errors.Is(err, repository.ErrRevisionQuotaReached):
		return apperror.ErrRevisionQuota
	case errors.Is(err, repository.ErrRevisionsDisabled):
		return apperror.New(apperror.ErrCodeValidation, "правки по этому заказу отключены")
	case errors.Is(err, repository.ErrRequestClosed):
		return apperror.New(apperror.ErrCodeValidation, "правки по закрытому заказу невозможны")
	case errors.Is(err, repository.ErrUserNotFound):
		return apperror.ErrUserNotFound
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "операция с хранилищем не выполнена")
	}
}
