package repository

import (
	"context"
	"strings"

	"edemy-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *model.Course) error
	// FindByID loads the full course content (chapters, lectures, ratings) in
	// position order.
	FindByID(ctx context.Context, courseID string) (*model.Course, error)
	Exists(ctx context.Context, tx *gorm.DB, courseID string) (bool, error)
	FindPublished(ctx context.Context, titleSearch string) ([]*model.Course, error)
	FindFeatured(ctx context.Context, limit int) ([]*model.Course, error)
	FindByEducator(ctx context.Context, educatorID string) ([]*model.Course, error)
	FindByIDs(ctx context.Context, courseIDs []string) ([]*model.Course, error)
	Publish(ctx context.Context, courseID, educatorID string) (int64, error)
	UpsertRating(ctx context.Context, rating *model.CourseRating) error
}

type courseRepoImpl struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepoImpl{db: db}
}

func (r *courseRepoImpl) Create(ctx context.Context, tx *gorm.DB, course *model.Course) error {
	return tx.WithContext(ctx).Create(course).Error
}

func (r *courseRepoImpl) FindByID(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapters.position ASC")
		}).
		Preload("Chapters.Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("lectures.position ASC")
		}).
		Preload("Ratings").
		Where("id = ?", courseID).
		First(&course).Error

	if err != nil {
		return nil, err
	}

	return &course, nil
}

func (r *courseRepoImpl) Exists(ctx context.Context, tx *gorm.DB, courseID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", courseID).
		Count(&count).Error

	return count > 0, err
}

func (r *courseRepoImpl) FindPublished(ctx context.Context, titleSearch string) ([]*model.Course, error) {
	query := r.db.WithContext(ctx).
		Preload("Ratings").
		Where("is_published = ?", true)

	if titleSearch != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(titleSearch)+"%")
	}

	var courses []*model.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepoImpl) FindFeatured(ctx context.Context, limit int) ([]*model.Course, error) {
	var courses []*model.Course
	err := r.db.WithContext(ctx).
		Preload("Ratings").
		Where("is_published = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&courses).Error

	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepoImpl) FindByEducator(ctx context.Context, educatorID string) ([]*model.Course, error) {
	var courses []*model.Course
	err := r.db.WithContext(ctx).
		Preload("Ratings").
		Where("educator_id = ?", educatorID).
		Find(&courses).Error

	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (r *courseRepoImpl) FindByIDs(ctx context.Context, courseIDs []string) ([]*model.Course, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	var courses []*model.Course
	err := r.db.WithContext(ctx).
		Where("id IN ?", courseIDs).
		Find(&courses).Error

	if err != nil {
		return nil, err
	}

	return courses, nil
}

// Publish only flips the flag when the course belongs to the educator, so the
// rows-affected count doubles as the ownership check.
func (r *courseRepoImpl) Publish(ctx context.Context, courseID, educatorID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("id = ? AND educator_id = ?", courseID, educatorID).
		Update("is_published", true)

	return result.RowsAffected, result.Error
}

func (r *courseRepoImpl) UpsertRating(ctx context.Context, rating *model.CourseRating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(rating).Error
}
