package service

import (
	"context"

	"github.com/keonhq/taskflow/internal/application/port"
	"github.com/keonhq/taskflow/internal/domain/entity"
)

// NotificationService owns notification creation and delivery bookkeeping.
type NotificationService struct {
	notifications port.NotificationRepository
	logger        Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(notifications port.NotificationRepository, logger Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		logger:        logger,
	}
}

// Notify queues a notification for a recipient
func (s *NotificationService) Notify(ctx context.Context, recipientID int64, title, body string) error {
	return s.notifications.Create(ctx, &entity.Notification{
		RecipientID: recipientID,
		Title:       title,
		Body:        body,
		Status:      entity.NotificationStatusPending,
	})
}

// ListPending returns undelivered notifications, oldest first
func (s *NotificationService) ListPending(ctx context.Context, limit int) ([]*entity.Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.notifications.ListPending(ctx, limit)
}

// MarkSent marks a notification delivered
func (s *NotificationService) MarkSent(ctx context.Context, id int64) error {
	return s.notifications.MarkSent(ctx, id)
}

// AuditService exposes the append-only audit trail.
type AuditService struct {
	audits port.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(audits port.AuditRepository) *AuditService {
	return &AuditService{audits: audits}
}

// ListByEntity returns an entity's audit trail, oldest first
func (s *AuditService) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*entity.AuditEvent, error) {
	return s.audits.ListByEntity(ctx, entityType, entityID)
}
