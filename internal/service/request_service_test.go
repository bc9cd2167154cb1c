package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/pkg/apperror"
	"github.com/arthub/arthub-backend/internal/repository"
)

type mockRequestRepo struct {
	mock.Mock
}

func (m *mockRequestRepo) Create(ctx context.Context, req *models.CommissionRequest, milestones []models.Milestone) error {
	args := m.Called(ctx, req, milestones)
	return args.Error(0)
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CommissionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommissionRequest), args.Error(1)
}

func (m *mockRequestRepo) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*models.CommissionRequest, []models.Milestone, []models.Revision, []models.ProgressUpdate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, nil, nil, args.Error(4)
	}
	return args.Get(0).(*models.CommissionRequest),
		args.Get(1).([]models.Milestone),
		args.Get(2).([]models.Revision),
		args.Get(3).([]models.ProgressUpdate),
		args.Error(4)
}

func (m *mockRequestRepo) List(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ListResult), args.Error(1)
}

func (m *mockRequestRepo) UpdateLifecycle(ctx context.Context, req *models.CommissionRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockRequestRepo) AppendProgress(ctx context.Context, req *models.CommissionRequest, update *models.ProgressUpdate) error {
	args := m.Called(ctx, req, update)
	return args.Error(0)
}

func (m *mockRequestRepo) AddRevision(ctx context.Context, requestID uuid.UUID, rev *models.Revision) error {
	args := m.Called(ctx, requestID, rev)
	return args.Error(0)
}

func (m *mockRequestRepo) ListMilestones(ctx context.Context, requestID uuid.UUID) ([]models.Milestone, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Milestone), args.Error(1)
}

func (m *mockRequestRepo) AddMilestone(ctx context.Context, ms *models.Milestone) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

func (m *mockRequestRepo) CompleteMilestone(ctx context.Context, requestID, milestoneID uuid.UUID, deliverables models.DeliverableList, newProgress *int) error {
	args := m.Called(ctx, requestID, milestoneID, deliverables, newProgress)
	return args.Error(0)
}

func (m *mockRequestRepo) ListRevisions(ctx context.Context, requestID uuid.UUID) ([]models.Revision, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Revision), args.Error(1)
}

func (m *mockRequestRepo) ListProgressUpdates(ctx context.Context, requestID uuid.UUID) ([]models.ProgressUpdate, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProgressUpdate), args.Error(1)
}

func newTestRequestService(repo *mockRequestRepo, now time.Time) *RequestService {
	svc := NewRequestService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestRequestService_CreateRequest_Success(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.CommissionRequest"), mock.Anything).Return(nil)

	req, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		SenderID:    uuid.New(),
		ArtistID:    uuid.New(),
		RequestType: models.RequestTypePortrait,
		Title:       "Портрет в акварели",
		Description: "Поясной портрет по фотографии, тёплая палитра",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.Equal(t, models.PriorityMedium, req.Priority)
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, 3, req.MaxRevisions)
	assert.True(t, req.AllowRevisions)
	repo.AssertExpectations(t)
}

func TestRequestService_CreateRequest_SelfOrder(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	id := uuid.New()
	_, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		SenderID:    id,
		ArtistID:    id,
		RequestType: models.RequestTypePortrait,
		Title:       "Портрет",
		Description: "Описание заказа",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "у самого себя")
	repo.AssertNotCalled(t, "Create")
}

func TestRequestService_CreateRequest_UnknownType(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	_, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		SenderID:    uuid.New(),
		ArtistID:    uuid.New(),
		RequestType: "tattoo",
		Title:       "Эскиз",
		Description: "Описание заказа",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestRequestService_CreateRequest_DeadlineInPast(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	past := testNow.Add(-time.Hour)
	_, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		SenderID:    uuid.New(),
		ArtistID:    uuid.New(),
		RequestType: models.RequestTypeIllustration,
		Title:       "Иллюстрация",
		Description: "Описание заказа",
		DeadlineAt:  &past,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "в прошлом")
}

func TestRequestService_CreateRequest_MilestoneWeightOverflow(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	_, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		SenderID:    uuid.New(),
		ArtistID:    uuid.New(),
		RequestType: models.RequestTypeIllustration,
		Title:       "Иллюстрация",
		Description: "Описание заказа",
		Milestones: []models.Milestone{
			{Title: "Скетч", Percentage: 60},
			{Title: "Чистовик", Percentage: 60},
		},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "превышает 100")
}

func TestRequestService_GetRequest_PrivateForbidden(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	req := &models.CommissionRequest{
		ID:        uuid.New(),
		SenderID:  uuid.New(),
		ArtistID:  uuid.New(),
		IsPrivate: true,
	}
	repo.On("GetByIDWithDetails", mock.Anything, req.ID).
		Return(req, []models.Milestone{}, []models.Revision{}, []models.ProgressUpdate{}, nil)

	_, err := svc.GetRequest(context.Background(), req.ID, uuid.New(), models.RoleBuyer)
	assert.True(t, apperror.IsForbidden(err))

	// Участник и администратор видят приватный заказ.
	_, err = svc.GetRequest(context.Background(), req.ID, req.SenderID, models.RoleBuyer)
	assert.NoError(t, err)
	_, err = svc.GetRequest(context.Background(), req.ID, uuid.New(), models.RoleAdmin)
	assert.NoError(t, err)
}

func TestRequestService_UpdateStatus_AcceptByArtist(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	artistID := uuid.New()
	req := &models.CommissionRequest{
		ID:       uuid.New(),
		SenderID: uuid.New(),
		ArtistID: artistID,
		Status:   models.RequestStatusPending,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	repo.On("UpdateLifecycle", mock.Anything, req).Return(nil)

	price := 250.0
	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		RequestID:   req.ID,
		ActorID:     artistID,
		ActorRole:   models.RoleArtist,
		NewStatus:   models.RequestStatusAccepted,
		QuotedPrice: &price,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, updated.Status)
	if assert.NotNil(t, updated.AcceptedAt) {
		assert.Equal(t, testNow, *updated.AcceptedAt)
	}
	assert.Equal(t, price, *updated.QuotedPrice)
	repo.AssertExpectations(t)
}

func TestRequestService_UpdateStatus_AcceptBySenderForbidden(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	req := &models.CommissionRequest{
		ID:       uuid.New(),
		SenderID: uuid.New(),
		ArtistID: uuid.New(),
		Status:   models.RequestStatusPending,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		RequestID: req.ID,
		ActorID:   req.SenderID,
		ActorRole: models.RoleBuyer,
		NewStatus: models.RequestStatusAccepted,
	})

	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "UpdateLifecycle")
}

func TestRequestService_UpdateStatus_IllegalTransition(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	artistID := uuid.New()
	req := &models.CommissionRequest{
		ID:       uuid.New(),
		SenderID: uuid.New(),
		ArtistID: artistID,
		Status:   models.RequestStatusPending,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		RequestID: req.ID,
		ActorID:   req.SenderID,
		ActorRole: models.RoleBuyer,
		NewStatus: models.RequestStatusCompleted,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "UpdateLifecycle")
}

func TestRequestService_UpdateStatus_CancelWithRefund(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	req := &models.CommissionRequest{
		ID:       uuid.New(),
		SenderID: uuid.New(),
		ArtistID: uuid.New(),
		Status:   models.RequestStatusInProgress,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	repo.On("UpdateLifecycle", mock.Anything, req).Return(nil)

	reason := "сроки сорваны"
	amount := 100.0
	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		RequestID:          req.ID,
		ActorID:            req.SenderID,
		ActorRole:          models.RoleBuyer,
		NewStatus:          models.RequestStatusCancelled,
		CancellationReason: &reason,
		RefundRequested:    true,
		RefundAmount:       &amount,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusCancelled, updated.Status)
	assert.Equal(t, reason, *updated.CancellationReason)
	assert.True(t, updated.RefundRequested)
	assert.Equal(t, amount, *updated.RefundAmount)
	assert.NotNil(t, updated.CancelledAt)
}

func TestRequestService_RecordProgress_AutoStartsWork(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	artistID := uuid.New()
	req := &models.CommissionRequest{
		ID:       uuid.New(),
		SenderID: uuid.New(),
		ArtistID: artistID,
		Status:   models.RequestStatusAccepted,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	repo.On("AppendProgress", mock.Anything, req, mock.AnythingOfType("*models.ProgressUpdate")).Return(nil)

	updated, err := svc.RecordProgress(context.Background(), RecordProgressInput{
		RequestID: req.ID,
		ActorID:   artistID,
		Progress:  25,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusInProgress, updated.Status)
	assert.Equal(t, 25, updated.CurrentProgress)
	assert.NotNil(t, updated.StartedAt)
}

func TestRequestService_RecordProgress_FullMovesToReview(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	artistID := uuid.New()
	req := &models.CommissionRequest{
		ID:              uuid.New(),
		SenderID:        uuid.New(),
		ArtistID:        artistID,
		Status:          models.RequestStatusInProgress,
		CurrentProgress: 70,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	repo.On("AppendProgress", mock.Anything, req, mock.AnythingOfType("*models.ProgressUpdate")).Return(nil)

	updated, err := svc.RecordProgress(context.Background(), RecordProgressInput{
		RequestID: req.ID,
		ActorID:   artistID,
		Progress:  100,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RequestStatusReview, updated.Status)
	assert.Equal(t, 100, updated.CurrentProgress)
}

func TestRequestService_RecordProgress_NotArtist(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	req := &models.CommissionRequest{
		ID:       uuid.New(),
		SenderID: uuid.New(),
		ArtistID: uuid.New(),
		Status:   models.RequestStatusInProgress,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	_, err := svc.RecordProgress(context.Background(), RecordProgressInput{
		RequestID: req.ID,
		ActorID:   req.SenderID,
		Progress:  50,
	})

	assert.True(t, apperror.IsForbidden(err))
	repo.AssertNotCalled(t, "AppendProgress")
}

func TestRequestService_RecordProgress_OutOfRange(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	_, err := svc.RecordProgress(context.Background(), RecordProgressInput{
		RequestID: uuid.New(),
		ActorID:   uuid.New(),
		Progress:  101,
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "GetByID")
}

func TestRequestService_RequestRevision_Success(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	senderID := uuid.New()
	req := &models.CommissionRequest{
		ID:             uuid.New(),
		SenderID:       senderID,
		ArtistID:       uuid.New(),
		Status:         models.RequestStatusReview,
		AllowRevisions: true,
		MaxRevisions:   3,
		UsedRevisions:  1,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	repo.On("AddRevision", mock.Anything, req.ID, mock.AnythingOfType("*models.Revision")).Return(nil)

	rev, err := svc.RequestRevision(context.Background(), RequestRevisionInput{
		RequestID:   req.ID,
		RequesterID: senderID,
		Feedback:    "Сделать фон темнее",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, rev.Priority)
	assert.Equal(t, senderID, rev.RequesterID)
	repo.AssertExpectations(t)
}

func TestRequestService_RequestRevision_QuotaExceeded(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	senderID := uuid.New()
	req := &models.CommissionRequest{
		ID:             uuid.New(),
		SenderID:       senderID,
		ArtistID:       uuid.New(),
		AllowRevisions: true,
		MaxRevisions:   2,
		UsedRevisions:  2,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	_, err := svc.RequestRevision(context.Background(), RequestRevisionInput{
		RequestID:   req.ID,
		RequesterID: senderID,
		Feedback:    "Ещё одна правка",
	})

	assert.True(t, apperror.IsQuotaExceeded(err))
	repo.AssertNotCalled(t, "AddRevision")
}

func TestRequestService_RequestRevision_ConcurrentQuotaRace(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	senderID := uuid.New()
	req := &models.CommissionRequest{
		ID:             uuid.New(),
		SenderID:       senderID,
		ArtistID:       uuid.New(),
		AllowRevisions: true,
		MaxRevisions:   3,
		UsedRevisions:  2,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	// Конкурент успел израсходовать квоту между чтением и записью.
	repo.On("AddRevision", mock.Anything, req.ID, mock.Anything).Return(repository.ErrRevisionQuotaReached)

	_, err := svc.RequestRevision(context.Background(), RequestRevisionInput{
		RequestID:   req.ID,
		RequesterID: senderID,
		Feedback:    "Правка",
	})

	assert.True(t, apperror.IsQuotaExceeded(err))
}

func TestRequestService_RequestRevision_CompletedRequest(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	senderID := uuid.New()
	completedAt := testNow.Add(-time.Hour)
	req := &models.CommissionRequest{
		ID:             uuid.New(),
		SenderID:       senderID,
		ArtistID:       uuid.New(),
		Status:         models.RequestStatusCompleted,
		CompletedAt:    &completedAt,
		AllowRevisions: true,
		MaxRevisions:   3,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	_, err := svc.RequestRevision(context.Background(), RequestRevisionInput{
		RequestID:   req.ID,
		RequesterID: senderID,
		Feedback:    "Поправить детали",
	})

	// Закрытый заказ не возвращается в review запросом правок.
	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), "закрытому заказу")
	repo.AssertNotCalled(t, "AddRevision")
}

func TestRequestService_RequestRevision_ClosedConcurrently(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	senderID := uuid.New()
	req := &models.CommissionRequest{
		ID:             uuid.New(),
		SenderID:       senderID,
		ArtistID:       uuid.New(),
		Status:         models.RequestStatusReview,
		AllowRevisions: true,
		MaxRevisions:   3,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	// Заказ завершили между чтением и условным UPDATE.
	repo.On("AddRevision", mock.Anything, req.ID, mock.Anything).Return(repository.ErrRequestClosed)

	_, err := svc.RequestRevision(context.Background(), RequestRevisionInput{
		RequestID:   req.ID,
		RequesterID: senderID,
		Feedback:    "Правка",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(models.RequestStatusCompleted))
	assert.True(t, IsTerminalStatus(models.RequestStatusRejected))
	assert.True(t, IsTerminalStatus(models.RequestStatusCancelled))
	assert.False(t, IsTerminalStatus(models.RequestStatusPending))
	assert.False(t, IsTerminalStatus(models.RequestStatusReview))
}

func TestRequestService_RequestRevision_Disabled(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	senderID := uuid.New()
	req := &models.CommissionRequest{
		ID:             uuid.New(),
		SenderID:       senderID,
		ArtistID:       uuid.New(),
		AllowRevisions: false,
		MaxRevisions:   3,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	_, err := svc.RequestRevision(context.Background(), RequestRevisionInput{
		RequestID:   req.ID,
		RequesterID: senderID,
		Feedback:    "Правка",
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "отключены")
}

func TestRequestService_CompleteMilestone_RecomputesProgress(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	artistID := uuid.New()
	req := &models.CommissionRequest{
		ID:       uuid.New(),
		SenderID: uuid.New(),
		ArtistID: artistID,
		Status:   models.RequestStatusInProgress,
	}
	target := models.Milestone{ID: uuid.New(), Title: "Чистовик", Percentage: 60}
	milestones := []models.Milestone{
		{ID: uuid.New(), Title: "Скетч", Percentage: 40, Status: models.MilestoneStatusCompleted},
		target,
	}

	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	repo.On("ListMilestones", mock.Anything, req.ID).Return(milestones, nil)
	repo.On("CompleteMilestone", mock.Anything, req.ID, target.ID, mock.Anything,
		mock.MatchedBy(func(p *int) bool { return p != nil && *p == 100 })).Return(nil)

	updated, err := svc.CompleteMilestone(context.Background(), req.ID, artistID, target.ID, nil)

	assert.NoError(t, err)
	assert.Equal(t, 100, updated.CurrentProgress)
	repo.AssertExpectations(t)
}

func TestRequestService_CompleteMilestone_ZeroWeightsKeepProgress(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	artistID := uuid.New()
	req := &models.CommissionRequest{
		ID:              uuid.New(),
		SenderID:        uuid.New(),
		ArtistID:        artistID,
		CurrentProgress: 40,
	}
	target := models.Milestone{ID: uuid.New(), Title: "Этап без веса"}

	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	repo.On("ListMilestones", mock.Anything, req.ID).Return([]models.Milestone{target}, nil)
	repo.On("CompleteMilestone", mock.Anything, req.ID, target.ID, mock.Anything, (*int)(nil)).Return(nil)

	updated, err := svc.CompleteMilestone(context.Background(), req.ID, artistID, target.ID, nil)

	assert.NoError(t, err)
	assert.Equal(t, 40, updated.CurrentProgress)
	repo.AssertExpectations(t)
}

func TestRequestService_CompleteMilestone_NotFound(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	artistID := uuid.New()
	req := &models.CommissionRequest{ID: uuid.New(), SenderID: uuid.New(), ArtistID: artistID}

	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	repo.On("ListMilestones", mock.Anything, req.ID).Return([]models.Milestone{}, nil)

	_, err := svc.CompleteMilestone(context.Background(), req.ID, artistID, uuid.New(), nil)

	assert.True(t, apperror.IsNotFound(err))
	repo.AssertNotCalled(t, "CompleteMilestone")
}

func TestRequestService_CompleteMilestone_UnknownDeliverableKind(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	_, err := svc.CompleteMilestone(context.Background(), uuid.New(), uuid.New(), uuid.New(),
		[]models.Deliverable{{Kind: "archive"}})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "GetByID")
}

func TestRequestService_EstimateCompletion_Fallback(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	req := &models.CommissionRequest{ID: uuid.New()}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	estimate, err := svc.EstimateCompletion(context.Background(), req.ID)

	assert.NoError(t, err)
	assert.Equal(t, testNow.Add(defaultEstimateWindow), estimate)
}

func TestRequestService_SubmitFeedback_Success(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	senderID := uuid.New()
	req := &models.CommissionRequest{
		ID:           uuid.New(),
		SenderID:     senderID,
		ArtistID:     uuid.New(),
		Status:       models.RequestStatusCompleted,
		MaxRevisions: 3,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)
	repo.On("UpdateLifecycle", mock.Anything, req).Return(nil)

	comment := "Отличная работа"
	updated, err := svc.SubmitFeedback(context.Background(), req.ID, senderID, 5, &comment)

	assert.NoError(t, err)
	assert.Equal(t, 5, *updated.Rating)
	assert.Equal(t, comment, *updated.FeedbackComment)
	if assert.NotNil(t, updated.FeedbackLeftAt) {
		assert.Equal(t, testNow, *updated.FeedbackLeftAt)
	}
}

func TestRequestService_SubmitFeedback_NotCompleted(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	senderID := uuid.New()
	req := &models.CommissionRequest{
		ID:       uuid.New(),
		SenderID: senderID,
		ArtistID: uuid.New(),
		Status:   models.RequestStatusReview,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	_, err := svc.SubmitFeedback(context.Background(), req.ID, senderID, 4, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "после завершения")
}

func TestRequestService_SubmitFeedback_AlreadyLeft(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	senderID := uuid.New()
	rating := 4
	req := &models.CommissionRequest{
		ID:       uuid.New(),
		SenderID: senderID,
		ArtistID: uuid.New(),
		Status:   models.RequestStatusCompleted,
		Rating:   &rating,
	}
	repo.On("GetByID", mock.Anything, req.ID).Return(req, nil)

	_, err := svc.SubmitFeedback(context.Background(), req.ID, senderID, 5, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "уже оставлен")
	repo.AssertNotCalled(t, "UpdateLifecycle")
}

func TestRequestService_SubmitFeedback_InvalidRating(t *testing.T) {
	repo := new(mockRequestRepo)
	svc := newTestRequestService(repo, testNow)

	_, err := svc.SubmitFeedback(context.Background(), uuid.New(), uuid.New(), 6, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "от 1 до 5")
}
