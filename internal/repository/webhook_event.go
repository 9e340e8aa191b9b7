package repository

import (
	"context"
	"time"

	"edemy-backend/internal/model"

	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, tx *gorm.DB, eventID, eventType string) error
}

type webhookEventRepoImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepoImpl{db: db}
}

func (r *webhookEventRepoImpl) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error

	return count > 0, err
}

func (r *webhookEventRepoImpl) MarkProcessed(ctx context.Context, tx *gorm.DB, eventID, eventType string) error {
	return tx.WithContext(ctx).Create(&model.WebhookEvent{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	}).Error
}
