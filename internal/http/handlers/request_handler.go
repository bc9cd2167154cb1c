package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/arthub/arthub-backend/internal/dto"
	"github.com/arthub/arthub-backend/internal/http/handlers/common"
	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/repository"
	"github.com/arthub/arthub-backend/internal/service"
	"github.com/arthub/arthub-backend/internal/validation"
)

// RequestHandler обслуживает HTTP операции над заказами на коммиссии.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler создаёт новый хэндлер.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// CreateRequest обрабатывает POST /requests.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateCommissionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateTitle(req.Title); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateDescription(req.Description); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateTags(req.Tags); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	artistID, err := uuid.Parse(req.ArtistID)
	if err != nil {
		common.RespondBadRequest(c, "artist_id должен быть валидным UUID")
		return
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != "" {
		parsed, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			common.RespondBadRequest(c, "category_id должен быть валидным UUID")
			return
		}
		categoryID = &parsed
	}

	deadline, err := dto.ParseTimestamp(req.DeadlineAt)
	if err != nil {
		common.RespondBadRequest(c, "deadline_at должен быть в формате RFC3339")
		return
	}
	estimated, err := dto.ParseTimestamp(req.EstimatedDelivery)
	if err != nil {
		common.RespondBadRequest(c, "estimated_delivery должен быть в формате RFC3339")
		return
	}

	milestones := make([]models.Milestone, 0, len(req.Milestones))
	for _, m := range req.Milestones {
		dueAt, err := dto.ParseTimestamp(m.DueAt)
		if err != nil {
			common.RespondBadRequest(c, "due_at этапа должен быть в формате RFC3339")
			return
		}
		milestones = append(milestones, models.Milestone{
			Title:       m.Title,
			Description: m.Description,
			DueAt:       dueAt,
			Percentage:  m.Percentage,
		})
	}

	created, err := h.requests.CreateRequest(c.Request.Context(), service.CreateRequestInput{
		SenderID:          userID,
		ArtistID:          artistID,
		RequestType:       req.RequestType,
		Title:             req.Title,
		Description:       req.Description,
		Budget:            req.Budget,
		Currency:          req.Currency,
		Priority:          req.Priority,
		CategoryID:        categoryID,
		Tags:              validation.NormalizeTags(req.Tags),
		DeadlineAt:        deadline,
		EstimatedDelivery: estimated,
		MaxRevisions:      req.MaxRevisions,
		AllowRevisions:    req.AllowRevisions,
		IsPrivate:         req.IsPrivate,
		Attachments:       req.Attachments,
		Milestones:        milestones,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, created)
}

// GetRequest обрабатывает GET /requests/:id.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	details, err := h.requests.GetRequest(c.Request.Context(), requestID, userID, role)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, details)
}

// ListRequests обрабатывает GET /requests с фильтрацией, поиском и пагинацией.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	limit, offset := common.GetPagination(c)
	params := repository.ListFilterParams{
		Status:      c.Query("status"),
		RequestType: c.Query("request_type"),
		Priority:    c.Query("priority"),
		Search:      c.Query("search"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
		Populate:    c.Query("populate") == "true",
		Limit:       limit,
		Offset:      offset,
	}

	if tags := c.QueryArray("tags"); len(tags) > 0 {
		params.Tags = validation.NormalizeTags(tags)
	}

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "category_id должен быть валидным UUID")
			return
		}
		params.CategoryID = &categoryID
	}

	// Обычный пользователь видит только свои заказы: как покупатель через
	// mine=sent, как художник через mine=received. Админ видит все.
	switch c.DefaultQuery("mine", "") {
	case "sent":
		params.SenderID = &userID
	case "received":
		params.ArtistID = &userID
	default:
		if role != models.RoleAdmin {
			if role == models.RoleArtist {
				params.ArtistID = &userID
			} else {
				params.SenderID = &userID
			}
		}
	}

	result, err := h.requests.ListRequests(c.Request.Context(), params)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ListResponse{
		Items:   result.Requests,
		Total:   result.Total,
		Limit:   result.Limit,
		Offset:  result.Offset,
		HasMore: result.HasMore,
	})
}

// UpdateStatus обрабатывает PATCH /requests/:id/status.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateStatusRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	estimated, err := dto.ParseTimestamp(req.EstimatedDelivery)
	if err != nil {
		common.RespondBadRequest(c, "estimated_delivery должен быть в формате RFC3339")
		return
	}

	updated, err := h.requests.UpdateStatus(c.Request.Context(), service.UpdateStatusInput{
		RequestID:          requestID,
		ActorID:            userID,
		ActorRole:          role,
		NewStatus:          req.Status,
		QuotedPrice:        req.QuotedPrice,
		Response:           req.Response,
		EstimatedDelivery:  estimated,
		CancellationReason: req.CancellationReason,
		RefundRequested:    req.RefundRequested,
		RefundAmount:       req.RefundAmount,
		RefundReason:       req.RefundReason,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, updated)
}

// RecordProgress обрабатывает POST /requests/:id/progress.
func (h *RequestHandler) RecordProgress(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RecordProgressRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var milestoneID *uuid.UUID
	if req.MilestoneID != nil && *req.MilestoneID != "" {
		parsed, err := uuid.Parse(*req.MilestoneID)
		if err != nil {
			common.RespondBadRequest(c, "milestone_id должен быть валидным UUID")
			return
		}
		milestoneID = &parsed
	}

	updated, err := h.requests.RecordProgress(c.Request.Context(), service.RecordProgressInput{
		RequestID:   requestID,
		ActorID:     userID,
		Progress:    req.Progress,
		Note:        req.Note,
		Attachments: req.Attachments,
		MilestoneID: milestoneID,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, updated)
}

// RequestRevision обрабатывает POST /requests/:id/revisions.
func (h *RequestHandler) RequestRevision(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RequestRevisionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	revision, err := h.requests.RequestRevision(c.Request.Context(), service.RequestRevisionInput{
		RequestID:       requestID,
		RequesterID:     userID,
		Feedback:        req.Feedback,
		SpecificChanges: req.SpecificChanges,
		Priority:        req.Priority,
		Attachments:     req.Attachments,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, revision)
}

// AddMilestone обрабатывает POST /requests/:id/milestones.
func (h *RequestHandler) AddMilestone(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.MilestoneRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dueAt, err := dto.ParseTimestamp(req.DueAt)
	if err != nil {
		common.RespondBadRequest(c, "due_at должен быть в формате RFC3339")
		return
	}

	milestone, err := h.requests.AddMilestone(c.Request.Context(), requestID, userID, &models.Milestone{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       dueAt,
		Percentage:  req.Percentage,
	})
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, milestone)
}

// CompleteMilestone обрабатывает POST /requests/:id/milestones/:milestoneID/complete.
func (h *RequestHandler) CompleteMilestone(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	milestoneID, err := common.ParseUUIDParam(c, "milestoneID")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CompleteMilestoneRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	updated, err := h.requests.CompleteMilestone(c.Request.Context(), requestID, userID, milestoneID, req.Deliverables)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, updated)
}

// EstimateCompletion обрабатывает GET /requests/:id/estimate.
func (h *RequestHandler) EstimateCompletion(c *gin.Context) {
	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	estimate, err := h.requests.EstimateCompletion(c.Request.Context(), requestID)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.EstimateResponse{
		RequestID:           requestID.String(),
		EstimatedCompletion: estimate.UTC().Format(time.RFC3339),
	})
}

// SubmitFeedback обрабатывает POST /requests/:id/feedback.
func (h *RequestHandler) SubmitFeedback(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SubmitFeedbackRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if req.Comment != nil {
		if err := validation.ValidateLength("комментарий", *req.Comment, 0, validation.MaxFeedbackLength); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	updated, err := h.requests.SubmitFeedback(c.Request.Context(), requestID, userID, req.Rating, req.Comment)
	if err != nil {
		common.RespondServiceError(c, err)
		return
	}

	common.RespondJSON(c, http.StatusOK, updated)
}
