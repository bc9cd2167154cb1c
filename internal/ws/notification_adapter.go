package ws

import (
	"context"

	"github.com/google/uuid"

	"github.com/arthub/arthub-backend/internal/models"
)

// notificationCreator соответствует NotificationService.CreateNotification.
type notificationCreator interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) (*models.Notification, error)
}

// NotificationServiceAdapter адаптирует сервис уведомлений к интерфейсу NotificationSaver.
type NotificationServiceAdapter struct {
	service notificationCreator
}

// NewNotificationServiceAdapter создаёт новый адаптер.
func NewNotificationServiceAdapter(service notificationCreator) *NotificationServiceAdapter {
	return &NotificationServiceAdapter{service: service}
}

// SaveNotification реализует интерфейс NotificationSaver.
func (a *NotificationServiceAdapter) SaveNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) error {
	_, err := a.service.CreateNotification(ctx, userID, event, data)
	return err
}
