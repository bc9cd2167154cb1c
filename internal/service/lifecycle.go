package service

import (
	"fmt"
	"math"
	"time"

	"github.com/arthub/arthub-backend/internal/models"
	"github.com/arthub/arthub-backend/internal/pkg/apperror"
)

// defaultEstimateWindow используется, когда у заказа нет ни ожидаемой даты
// поставки, ни дедлайна.
const defaultEstimateWindow = 14 * 24 * time.Hour

// allowedTransitions описывает граф переходов статусов заказа.
// Терминальные статусы (completed, rejected, cancelled) переходов не имеют.
var allowedTransitions = map[string]map[string]struct{}{
	models.RequestStatusPending: {
		models.RequestStatusAccepted:  {},
		models.RequestStatusRejected:  {},
		models.RequestStatusCancelled: {},
	},
	models.RequestStatusAccepted: {
		models.RequestStatusInProgress: {},
		models.RequestStatusRejected:   {},
		models.RequestStatusCancelled:  {},
	},
	models.RequestStatusInProgress: {
		models.RequestStatusReview:    {},
		models.RequestStatusCancelled: {},
	},
	models.RequestStatusReview: {
		models.RequestStatusCompleted: {},
		models.RequestStatusCancelled: {},
	},
}

// CanTransition проверяет допустимость перехода между статусами.
// Повторная установка текущего статуса допустима и трактуется как no-op.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// IsTerminalStatus сообщает, закрыт ли заказ: из терминального статуса нет
// ни одного перехода.
func IsTerminalStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return !ok
}

// ApplyTransition переводит заказ в новый статус и выполняет побочные эффекты
// перехода: первую отметку времени жизненного цикла, принудительный прогресс
// и дефолт финальной цены. Вызывается каждым путём мутации перед сохранением,
// чтобы логика инвариантов не пряталась в слое хранилища.
func ApplyTransition(req *models.CommissionRequest, newStatus string, now time.Time) error {
	if _, ok := models.ValidRequestStatuses[newStatus]; !ok {
		return apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус %q", newStatus))
	}
	if !CanTransition(req.Status, newStatus) {
		return apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("переход из статуса %q в %q недопустим", req.Status, newStatus))
	}

	req.Status = newStatus

	// Отметки времени ставятся один раз и никогда не перезаписываются.
	switch newStatus {
	case models.RequestStatusAccepted:
		if req.AcceptedAt == nil {
			req.AcceptedAt = &now
		}
	case models.RequestStatusInProgress:
		if req.StartedAt == nil {
			req.StartedAt = &now
		}
	case models.RequestStatusCompleted:
		if req.CompletedAt == nil {
			req.CompletedAt = &now
		}
		req.CurrentProgress = 100
		if req.FinalPrice == nil && req.QuotedPrice != nil {
			price := *req.QuotedPrice
			req.FinalPrice = &price
		}
	case models.RequestStatusRejected:
		if req.RejectedAt == nil {
			req.RejectedAt = &now
		}
	case models.RequestStatusCancelled:
		if req.CancelledAt == nil {
			req.CancelledAt = &now
		}
	}

	return nil
}

// ValidateRequest проверяет инварианты заказа перед каждым сохранением.
func ValidateRequest(req *models.CommissionRequest) error {
	if req.UsedRevisions > req.MaxRevisions {
		return apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("использовано правок %d больше лимита %d", req.UsedRevisions, req.MaxRevisions))
	}
	if req.CurrentProgress < 0 || req.CurrentProgress > 100 {
		return apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("прогресс %d вне диапазона [0,100]", req.CurrentProgress))
	}
	return nil
}

// progressAutoStatus возвращает статус, в который заказ переводится автоматически
// после записи прогресса. Других автопереходов нет: регресс прогресса и записи по
// терминальным заказам намеренно не блокируются.
func progressAutoStatus(status string, progress int) (string, bool) {
	if progress == 100 && status == models.RequestStatusInProgress {
		return models.RequestStatusReview, true
	}
	if progress > 0 && status == models.RequestStatusAccepted {
		return models.RequestStatusInProgress, true
	}
	return "", false
}

// milestoneProgress пересчитывает прогресс заказа по весам завершённых этапов.
// При нулевом суммарном весе прогресс не меняется (второй результат false).
func milestoneProgress(completedWeight, totalWeight int) (int, bool) {
	if totalWeight <= 0 {
		return 0, false
	}
	return int(math.Round(100 * float64(completedWeight) / float64(totalWeight))), true
}

// estimateCompletion возвращает ожидаемую дату завершения заказа:
// estimated_delivery, иначе дедлайн, иначе текущий момент плюс две недели.
func estimateCompletion(req *models.CommissionRequest, now time.Time) time.Time {
	if req.EstimatedDelivery != nil {
		return *req.EstimatedDelivery
	}
	if req.DeadlineAt != nil {
		return *req.DeadlineAt
	}
	return now.Add(defaultEstimateWindow)
}
