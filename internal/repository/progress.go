package repository

import (
	"context"
	"time"

	"edemy-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	// AddCompletion inserts the lecture into the (user, course) completed set
	// and reports whether anything was actually added.
	AddCompletion(ctx context.Context, tx *gorm.DB, userID, courseID, lectureID string) (bool, error)
	EnsureRecord(ctx context.Context, tx *gorm.DB, userID, courseID string) error
	SetCompleted(ctx context.Context, tx *gorm.DB, userID, courseID string, completed bool) error
	Find(ctx context.Context, userID, courseID string) (*model.CourseProgress, error)
	// CompletedLectureIDs takes the caller's handle so the completion path can
	// read its own uncommitted insert; read-only callers pass the pool.
	CompletedLectureIDs(ctx context.Context, tx *gorm.DB, userID, courseID string) ([]string, error)
	AllByUser(ctx context.Context, userID string) ([]*model.CourseProgress, error)
	CompletionsByUser(ctx context.Context, userID string) ([]*model.LectureCompletion, error)
}

type progressRepoImpl struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepoImpl{db: db}
}

func (r *progressRepoImpl) AddCompletion(ctx context.Context, tx *gorm.DB, userID, courseID, lectureID string) (bool, error) {
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.LectureCompletion{
			UserID:    userID,
			CourseID:  courseID,
			LectureID: lectureID,
		})

	return result.RowsAffected > 0, result.Error
}

func (r *progressRepoImpl) EnsureRecord(ctx context.Context, tx *gorm.DB, userID, courseID string) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CourseProgress{
			UserID:   userID,
			CourseID: courseID,
		}).Error
}

func (r *progressRepoImpl) SetCompleted(ctx context.Context, tx *gorm.DB, userID, courseID string, completed bool) error {
	return tx.WithContext(ctx).Model(&model.CourseProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]interface{}{
			"completed":  completed,
			"updated_at": time.Now(),
		}).Error
}

func (r *progressRepoImpl) Find(ctx context.Context, userID, courseID string) (*model.CourseProgress, error) {
	var progress model.CourseProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error

	if err != nil {
		return nil, err
	}

	return &progress, nil
}

func (r *progressRepoImpl) CompletedLectureIDs(ctx context.Context, tx *gorm.DB, userID, courseID string) ([]string, error) {
	var ids []string
	err := tx.WithContext(ctx).Model(&model.LectureCompletion{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Pluck("lecture_id", &ids).Error

	return ids, err
}

func (r *progressRepoImpl) AllByUser(ctx context.Context, userID string) ([]*model.CourseProgress, error) {
	var records []*model.CourseProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *progressRepoImpl) CompletionsByUser(ctx context.Context, userID string) ([]*model.LectureCompletion, error) {
	var completions []*model.LectureCompletion
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&completions).Error

	if err != nil {
		return nil, err
	}

	return completions, nil
}
