package repository

import (
	"context"
	"time"

	"edemy-backend/internal/model"

	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error
	FindByID(ctx context.Context, purchaseID string) (*model.Purchase, error)
	// MarkCompleted flips pending → completed and reports how many rows moved,
	// so callers can tell a real transition from a duplicate delivery.
	MarkCompleted(ctx context.Context, tx *gorm.DB, purchaseID string) (int64, error)
	MarkFailed(ctx context.Context, tx *gorm.DB, purchaseID string) (int64, error)
	CountInitiatedSince(ctx context.Context, userID string, since time.Time) (int64, error)
	// DeleteStale removes pending/failed purchases created before the cutoff.
	// Completed purchases are never touched.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
	CompletedByCourseIDs(ctx context.Context, courseIDs []string) ([]*model.Purchase, error)
	LatestCompletedByCourseIDs(ctx context.Context, courseIDs []string, limit int) ([]*model.Purchase, error)
}

type purchaseRepoImpl struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepoImpl{db: db}
}

func (r *purchaseRepoImpl) Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error {
	return tx.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepoImpl) FindByID(ctx context.Context, purchaseID string) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.WithContext(ctx).
		Where("id = ?", purchaseID).
		First(&purchase).Error

	if err != nil {
		return nil, err
	}

	return &purchase, nil
}

func (r *purchaseRepoImpl) MarkCompleted(ctx context.Context, tx *gorm.DB, purchaseID string) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND status = ?", purchaseID, model.PurchaseStatusPending).
		Updates(map[string]interface{}{
			"status":     model.PurchaseStatusCompleted,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *purchaseRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, purchaseID string) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND status = ?", purchaseID, model.PurchaseStatusPending).
		Updates(map[string]interface{}{
			"status":     model.PurchaseStatusFailed,
			"updated_at": time.Now(),
		})

	return result.RowsAffected, result.Error
}

func (r *purchaseRepoImpl) CountInitiatedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error

	return count, err
}

func (r *purchaseRepoImpl) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]string{model.PurchaseStatusPending, model.PurchaseStatusFailed},
			cutoff,
		).
		Delete(&model.Purchase{})

	return result.RowsAffected, result.Error
}

func (r *purchaseRepoImpl) CompletedByCourseIDs(ctx context.Context, courseIDs []string) ([]*model.Purchase, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	var purchases []*model.Purchase
	err := r.db.WithContext(ctx).
		Where("course_id IN ? AND status = ?", courseIDs, model.PurchaseStatusCompleted).
		Find(&purchases).Error

	if err != nil {
		return nil, err
	}

	return purchases, nil
}

func (r *purchaseRepoImpl) LatestCompletedByCourseIDs(ctx context.Context, courseIDs []string, limit int) ([]*model.Purchase, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	var purchases []*model.Purchase
	err := r.db.WithContext(ctx).
		Where("course_id IN ? AND status = ?", courseIDs, model.PurchaseStatusCompleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&purchases).Error

	if err != nil {
		return nil, err
	}

	return purchases, nil
}
