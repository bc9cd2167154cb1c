package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/arthub/arthub-backend/internal/models"
)

// RequestRepository отвечает за работу с заказами на коммиссии и их подсущностями.
type RequestRepository struct {
	db *sqlx.DB
}

// Ошибки уровня репозитория.
var (
	ErrRequestNotFound      = errors.New("commission request not found")
	ErrMilestoneNotFound    = errors.New("milestone not found")
	ErrRevisionQuotaReached = errors.New("revision quota reached")
	ErrRevisionsDisabled    = errors.New("revisions disabled for request")
	ErrRequestClosed        = errors.New("request is in a terminal status")
	ErrUserNotFound         = errors.New("user not found")
	ErrCategoryNotFound     = errors.New("category not found")
)

// NewRequestRepository создаёт новый экземпляр.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// requestColumns перечисляет колонки заказа в порядке полей структуры.
const requestColumns = `
	id, sender_id, artist_id, request_type, title, description, budget, currency,
	quoted_price, final_price, status, priority, category_id, tags, response,
	deadline_at, estimated_delivery, current_progress, used_revisions, max_revisions,
	allow_revisions, is_private, attachments, accepted_at, started_at, completed_at,
	rejected_at, cancelled_at, cancellation_reason, refund_requested, refund_amount,
	refund_reason, refund_processed_at, rating, feedback_comment, feedback_left_at,
	created_at, updated_at
`

// GetByID возвращает заказ по идентификатору.
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CommissionRequest, error) {
	var req models.CommissionRequest
	query := `SELECT ` + requestColumns + ` FROM commission_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: get by id %w", err)
	}
	return &req, nil
}

// GetByIDWithDetails возвращает заказ со всеми подсущностями за несколько запросов,
// без N+1 по отдельным записям.
func (r *RequestRepository) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*models.CommissionRequest, []models.Milestone, []models.Revision, []models.ProgressUpdate, error) {
	req, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	milestones, err := r.ListMilestones(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	revisions, err := r.ListRevisions(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	updates, err := r.ListProgressUpdates(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return req, milestones, revisions, updates, nil
}

// Create сохраняет заказ и его этапы в одной транзакции.
func (r *RequestRepository) Create(ctx context.Context, req *models.CommissionRequest, milestones []models.Milestone) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("request repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO commission_requests (
			sender_id, artist_id, request_type, title, description, budget, currency,
			quoted_price, status, priority, category_id, tags, deadline_at,
			estimated_delivery, max_revisions, allow_revisions, is_private, attachments
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, current_progress, used_revisions, created_at, updated_at
	`

	if err = tx.QueryRowxContext(
		ctx,
		query,
		req.SenderID,
		req.ArtistID,
		req.RequestType,
		req.Title,
		req.Description,
		req.Budget,
		req.Currency,
		req.QuotedPrice,
		req.Status,
		req.Priority,
		req.CategoryID,
		req.Tags,
		req.DeadlineAt,
		req.EstimatedDelivery,
		req.MaxRevisions,
		req.AllowRevisions,
		req.IsPrivate,
		req.Attachments,
	).Scan(&req.ID, &req.CurrentProgress, &req.UsedRevisions, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("request repository: insert request %w", err)
	}

	if len(milestones) > 0 {
		// Batch INSERT для этапов
		msQuery := `INSERT INTO request_milestones (request_id, title, description, due_at, percentage, status, deliverables) VALUES `
		msValues := make([]interface{}, 0, len(milestones)*7)

		for i, ms := range milestones {
			if i > 0 {
				msQuery += ", "
			}
			msQuery += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
				i*7+1, i*7+2, i*7+3, i*7+4, i*7+5, i*7+6, i*7+7)
			status := ms.Status
			if status == "" {
				status = models.MilestoneStatusPending
			}
			msValues = append(msValues, req.ID, ms.Title, ms.Description, ms.DueAt, ms.Percentage, status, ms.Deliverables)
		}

		if _, err = tx.ExecContext(ctx, msQuery, msValues...); err != nil {
			return fmt.Errorf("request repository: batch insert milestones %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("request repository: commit %w", err)
	}

	return nil
}

// UpdateLifecycle сохраняет изменяемые поля жизненного цикла заказа одной командой.
func (r *RequestRepository) UpdateLifecycle(ctx context.Context, req *models.CommissionRequest) error {
	err := execUpdateRequest(ctx, r.db, req)
	if err != nil {
		return err
	}
	return nil
}

// execUpdateRequest выполняет UPDATE строки заказа через переданный executor,
// чтобы тот же запрос работал и внутри транзакций.
func execUpdateRequest(ctx context.Context, ext sqlx.ExtContext, req *models.CommissionRequest) error {
	query := `
		UPDATE commission_requests
		SET status = $1,
		    quoted_price = $2,
		    final_price = $3,
		    response = $4,
		    estimated_delivery = $5,
		    current_progress = $6,
		    accepted_at = $7,
		    started_at = $8,
		    completed_at = $9,
		    rejected_at = $10,
		    cancelled_at = $11,
		    cancellation_reason = $12,
		    refund_requested = $13,
		    refund_amount = $14,
		    refund_reason = $15,
		    refund_processed_at = $16,
		    rating = $17,
		    feedback_comment = $18,
		    feedback_left_at = $19,
		    updated_at = NOW()
		WHERE id = $20
		RETURNING updated_at
	`

	row := ext.QueryRowxContext(
		ctx,
		query,
		req.Status,
		req.QuotedPrice,
		req.FinalPrice,
		req.Response,
		req.EstimatedDelivery,
		req.CurrentProgress,
		req.AcceptedAt,
		req.StartedAt,
		req.CompletedAt,
		req.RejectedAt,
		req.CancelledAt,
		req.CancellationReason,
		req.RefundRequested,
		req.RefundAmount,
		req.RefundReason,
		req.RefundProcessedAt,
		req.Rating,
		req.FeedbackComment,
		req.FeedbackLeftAt,
		req.ID,
	)
	if err := row.Scan(&req.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("request repository: update request %w", err)
	}
	return nil
}

// AppendProgress добавляет запись в журнал прогресса и сохраняет обновлённые
// поля заказа в одной транзакции.
func (r *RequestRepository) AppendProgress(ctx context.Context, req *models.CommissionRequest, update *models.ProgressUpdate) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("request repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO request_progress_updates (request_id, progress, note, attachments, milestone_id, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err = tx.QueryRowxContext(
		ctx,
		query,
		req.ID,
		update.Progress,
		update.Note,
		update.Attachments,
		update.MilestoneID,
		update.UpdatedBy,
	).Scan(&update.ID, &update.CreatedAt); err != nil {
		return fmt.Errorf("request repository: insert progress update %w", err)
	}
	update.RequestID = req.ID

	if err = execUpdateRequest(ctx, tx, req); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("request repository: commit %w", err)
	}

	return nil
}

// AddRevision атомарно инкрементирует счётчик использованных правок с проверкой
// квоты в том же UPDATE и вставляет запись о правке в одной транзакции.
// Два конкурентных запроса правок не могут оба пройти проверку квоты: условие
// used_revisions < max_revisions входит в сам UPDATE строки заказа. Закрытые
// заказы (completed/rejected/cancelled) из review не воскрешаются: их статусы
// исключены тем же предикатом.
func (r *RequestRepository) AddRevision(ctx context.Context, requestID uuid.UUID, rev *models.Revision) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("request repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var usedRevisions int
	incrementQuery := `
		UPDATE commission_requests
		SET used_revisions = used_revisions + 1,
		    status = $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND allow_revisions
		  AND used_revisions < max_revisions
		  AND status NOT IN ($3, $4, $5)
		RETURNING used_revisions
	`
	err = tx.QueryRowxContext(ctx, incrementQuery, requestID, models.RequestStatusReview,
		models.RequestStatusCompleted, models.RequestStatusRejected, models.RequestStatusCancelled).Scan(&usedRevisions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = r.classifyRevisionFailure(ctx, requestID)
			return err
		}
		return fmt.Errorf("request repository: increment revisions %w", err)
	}

	insertQuery := `
		INSERT INTO request_revisions (request_id, requester_id, feedback, specific_changes, priority, attachments, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	if err = tx.QueryRowxContext(
		ctx,
		insertQuery,
		requestID,
		rev.RequesterID,
		rev.Feedback,
		rev.SpecificChanges,
		rev.Priority,
		rev.Attachments,
		models.RevisionStatusPending,
	).Scan(&rev.ID, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
		return fmt.Errorf("request repository: insert revision %w", err)
	}
	rev.RequestID = requestID
	rev.Status = models.RevisionStatusPending

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("request repository: commit %w", err)
	}

	return nil
}

// classifyRevisionFailure выясняет, почему условный UPDATE не затронул строку.
func (r *RequestRepository) classifyRevisionFailure(ctx context.Context, requestID uuid.UUID) error {
	var state struct {
		Status         string `db:"status"`
		AllowRevisions bool   `db:"allow_revisions"`
		UsedRevisions  int    `db:"used_revisions"`
		MaxRevisions   int    `db:"max_revisions"`
	}
	query := `SELECT status, allow_revisions, used_revisions, max_revisions FROM commission_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &state, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("request repository: classify revision failure %w", err)
	}
	switch state.Status {
	case models.RequestStatusCompleted, models.RequestStatusRejected, models.RequestStatusCancelled:
		return ErrRequestClosed
	}
	if !state.AllowRevisions {
		return ErrRevisionsDisabled
	}
	return ErrRevisionQuotaReached
}

// ListMilestones возвращает этапы заказа в порядке создания.
func (r *RequestRepository) ListMilestones(ctx context.Context, requestID uuid.UUID) ([]models.Milestone, error) {
	var milestones []models.Milestone
	query := `
		SELECT id, request_id, title, description, due_at, percentage, status,
		       completed_at, deliverables, created_at, updated_at
		FROM request_milestones
		WHERE request_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &milestones, query, requestID); err != nil {
		return nil, fmt.Errorf("request repository: list milestones %w", err)
	}
	return milestones, nil
}

// AddMilestone добавляет этап к заказу.
func (r *RequestRepository) AddMilestone(ctx context.Context, ms *models.Milestone) error {
	query := `
		INSERT INTO request_milestones (request_id, title, description, due_at, percentage, status, deliverables)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	status := ms.Status
	if status == "" {
		status = models.MilestoneStatusPending
	}
	if err := r.db.QueryRowxContext(
		ctx,
		query,
		ms.RequestID,
		ms.Title,
		ms.Description,
		ms.DueAt,
		ms.Percentage,
		status,
		ms.Deliverables,
	).Scan(&ms.ID, &ms.CreatedAt, &ms.UpdatedAt); err != nil {
		return fmt.Errorf("request repository: insert milestone %w", err)
	}
	ms.Status = status
	return nil
}

// CompleteMilestone помечает этап завершённым, записывает результаты работы и,
// если передан новый прогресс, обновляет заказ в той же транзакции.
func (r *RequestRepository) CompleteMilestone(ctx context.Context, requestID, milestoneID uuid.UUID, deliverables models.DeliverableList, newProgress *int) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("request repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		UPDATE request_milestones
		SET status = $3,
		    completed_at = NOW(),
		    deliverables = $4,
		    updated_at = NOW()
		WHERE id = $2 AND request_id = $1
	`
	res, err := tx.ExecContext(ctx, query, requestID, milestoneID, models.MilestoneStatusCompleted, deliverables)
	if err != nil {
		return fmt.Errorf("request repository: complete milestone %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("request repository: rows affected %w", err)
	}
	if affected == 0 {
		err = ErrMilestoneNotFound
		return err
	}

	if newProgress != nil {
		updateQuery := `
			UPDATE commission_requests
			SET current_progress = $2, updated_at = NOW()
			WHERE id = $1
		`
		if _, err = tx.ExecContext(ctx, updateQuery, requestID, *newProgress); err != nil {
			return fmt.Errorf("request repository: update progress %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("request repository: commit %w", err)
	}

	return nil
}

// ListRevisions возвращает правки заказа в порядке создания.
func (r *RequestRepository) ListRevisions(ctx context.Context, requestID uuid.UUID) ([]models.Revision, error) {
	var revisions []models.Revision
	query := `
		SELECT id, request_id, requester_id, feedback, specific_changes, priority,
		       attachments, status, artist_response, created_at, updated_at
		FROM request_revisions
		WHERE request_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &revisions, query, requestID); err != nil {
		return nil, fmt.Errorf("request repository: list revisions %w", err)
	}
	return revisions, nil
}

// ListProgressUpdates возвращает журнал прогресса от новых записей к старым.
func (r *RequestRepository) ListProgressUpdates(ctx context.Context, requestID uuid.UUID) ([]models.ProgressUpdate, error) {
	var updates []models.ProgressUpdate
	query := `
		SELECT id, request_id, progress, note, attachments, milestone_id, updated_by, created_at
		FROM request_progress_updates
		WHERE request_id = $1
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &updates, query, requestID); err != nil {
		return nil, fmt.Errorf("request repository: list progress updates %w", err)
	}
	return updates, nil
}

// ListFilterParams содержит параметры фильтрации и поиска заказов.
type ListFilterParams struct {
	SenderID    *uuid.UUID
	ArtistID    *uuid.UUID
	Status      string
	RequestType string
	Priority    string
	CategoryID  *uuid.UUID
	Tags        []string
	Search      string
	SortBy      string // "date", "budget", "deadline", "progress", "priority"
	SortOrder   string // "asc", "desc"
	Populate    bool
	Limit       int
	Offset      int
}

// ListResult содержит страницу заказов и метаданные пагинации.
type ListResult struct {
	Requests []models.CommissionRequest
	Total    int
	Limit    int
	Offset   int
	HasMore  bool
}

// List возвращает список заказов с пагинацией, фильтрацией и взвешенным
// полнотекстовым поиском по названию, описанию и тегам.
func (r *RequestRepository) List(ctx context.Context, params ListFilterParams) (*ListResult, error) {
	countQuery := `SELECT COUNT(*) FROM commission_requests cr WHERE 1=1`
	selectColumns := "cr.id, cr.sender_id, cr.artist_id, cr.request_type, cr.title, cr.description, cr.budget, cr.currency, " +
		"cr.quoted_price, cr.final_price, cr.status, cr.priority, cr.category_id, cr.tags, cr.response, " +
		"cr.deadline_at, cr.estimated_delivery, cr.current_progress, cr.used_revisions, cr.max_revisions, " +
		"cr.allow_revisions, cr.is_private, cr.attachments, cr.accepted_at, cr.started_at, cr.completed_at, " +
		"cr.rejected_at, cr.cancelled_at, cr.cancellation_reason, cr.refund_requested, cr.refund_amount, " +
		"cr.refund_reason, cr.refund_processed_at, cr.rating, cr.feedback_comment, cr.feedback_left_at, " +
		"cr.created_at, cr.updated_at"
	query := `SELECT ` + selectColumns + ` FROM commission_requests cr WHERE 1=1`

	args := []interface{}{}
	argIndex := 1
	searchArgIndex := 0

	appendClause := func(clause string, value interface{}) {
		query += clause
		countQuery += clause
		args = append(args, value)
		argIndex++
	}

	if params.SenderID != nil {
		appendClause(fmt.Sprintf(" AND cr.sender_id = $%d", argIndex), *params.SenderID)
	}
	if params.ArtistID != nil {
		appendClause(fmt.Sprintf(" AND cr.artist_id = $%d", argIndex), *params.ArtistID)
	}
	if params.Status != "" {
		appendClause(fmt.Sprintf(" AND cr.status = $%d", argIndex), params.Status)
	}
	if params.RequestType != "" {
		appendClause(fmt.Sprintf(" AND cr.request_type = $%d", argIndex), params.RequestType)
	}
	if params.Priority != "" {
		appendClause(fmt.Sprintf(" AND cr.priority = $%d", argIndex), params.Priority)
	}
	if params.CategoryID != nil {
		appendClause(fmt.Sprintf(" AND cr.category_id = $%d", argIndex), *params.CategoryID)
	}
	if len(params.Tags) > 0 {
		appendClause(fmt.Sprintf(" AND cr.tags && $%d", argIndex), pq.Array(params.Tags))
	}

	// Взвешенный полнотекстовый поиск: название (вес A), описание (B), теги (C).
	if params.Search != "" {
		clause := fmt.Sprintf(" AND cr.search_vector @@ plainto_tsquery('simple', $%d)", argIndex)
		query += clause
		countQuery += clause
		args = append(args, params.Search)
		searchArgIndex = argIndex
		argIndex++
	}

	query += buildRequestOrderBy(params, searchArgIndex)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("request repository: count %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var requests []models.CommissionRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: list %w", err)
	}

	if params.Populate && len(requests) > 0 {
		if err := r.populateReferences(ctx, requests); err != nil {
			return nil, err
		}
	}

	return &ListResult{
		Requests: requests,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		HasMore:  offset+limit < total,
	}, nil
}

// buildRequestOrderBy строит ORDER BY по белому списку полей. При текстовом
// поиске первичным критерием служит релевантность ts_rank с весами 10/5/1.
func buildRequestOrderBy(params ListFilterParams, searchArgIndex int) string {
	sortOrder := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	var sortColumn string
	switch params.SortBy {
	case "budget":
		sortColumn = "COALESCE(cr.budget, 0)"
	case "deadline":
		sortColumn = "cr.deadline_at"
	case "progress":
		sortColumn = "cr.current_progress"
	case "priority":
		sortColumn = "CASE cr.priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END"
	default: // "date"
		sortColumn = "cr.created_at"
	}

	if searchArgIndex > 0 {
		return fmt.Sprintf(" ORDER BY ts_rank('{0,1,5,10}', cr.search_vector, plainto_tsquery('simple', $%d)) DESC, %s %s",
			searchArgIndex, sortColumn, sortOrder)
	}
	return fmt.Sprintf(" ORDER BY %s %s", sortColumn, sortOrder)
}

// populateReferences подгружает отправителей, художников и категории страницы
// заказов тремя запросами вместо N+1.
func (r *RequestRepository) populateReferences(ctx context.Context, requests []models.CommissionRequest) error {
	userIDs := make([]uuid.UUID, 0, len(requests)*2)
	categoryIDs := make([]uuid.UUID, 0, len(requests))
	seenUsers := map[uuid.UUID]struct{}{}
	seenCategories := map[uuid.UUID]struct{}{}

	for i := range requests {
		for _, id := range []uuid.UUID{requests[i].SenderID, requests[i].ArtistID} {
			if _, ok := seenUsers[id]; !ok {
				seenUsers[id] = struct{}{}
				userIDs = append(userIDs, id)
			}
		}
		if requests[i].CategoryID != nil {
			if _, ok := seenCategories[*requests[i].CategoryID]; !ok {
				seenCategories[*requests[i].CategoryID] = struct{}{}
				categoryIDs = append(categoryIDs, *requests[i].CategoryID)
			}
		}
	}

	var users []models.User
	userQuery := `
		SELECT id, email, username, display_name, password_hash, role, bio, avatar_url,
		       is_active, last_login_at, created_at, updated_at
		FROM users
		WHERE id = ANY($1)
	`
	if err := r.db.SelectContext(ctx, &users, userQuery, pq.Array(userIDs)); err != nil {
		return fmt.Errorf("request repository: populate users %w", err)
	}
	usersByID := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		usersByID[users[i].ID] = &users[i]
	}

	categoriesByID := map[uuid.UUID]*models.Category{}
	if len(categoryIDs) > 0 {
		var categories []models.Category
		catQuery := `SELECT id, name, slug, description, created_at FROM categories WHERE id = ANY($1)`
		if err := r.db.SelectContext(ctx, &categories, catQuery, pq.Array(categoryIDs)); err != nil {
			return fmt.Errorf("request repository: populate categories %w", err)
		}
		for i := range categories {
			categoriesByID[categories[i].ID] = &categories[i]
		}
	}

	for i := range requests {
		requests[i].Sender = usersByID[requests[i].SenderID]
		requests[i].Artist = usersByID[requests[i].ArtistID]
		if requests[i].CategoryID != nil {
			requests[i].Category = categoriesByID[*requests[i].CategoryID]
		}
	}

	return nil
}
