package repository

import (
	"context"

	"edemy-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByIDs(ctx context.Context, userIDs []string) ([]*model.User, error)
	Exists(ctx context.Context, tx *gorm.DB, userID string) (bool, error)
	// Upsert syncs the profile fields delivered by the identity provider.
	Upsert(ctx context.Context, user *model.User) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{db: db}
}

func (r *userRepoImpl) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindByIDs(ctx context.Context, userIDs []string) ([]*model.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var users []*model.User
	err := r.db.WithContext(ctx).
		Where("id IN ?", userIDs).
		Find(&users).Error

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepoImpl) Exists(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Count(&count).Error

	return count > 0, err
}

func (r *userRepoImpl) Upsert(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "image_url", "role", "updated_at"}),
		}).
		Create(user).Error
}
