package repository

import (
	"context"

	"edemy-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentRepository owns both sides of the user↔course relationship. Link
// must run inside the caller's transaction so the two inserts land together.
type EnrollmentRepository interface {
	Link(ctx context.Context, tx *gorm.DB, userID, courseID string) error
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	CourseStudentIDs(ctx context.Context, courseID string) ([]string, error)
	UserCourseIDs(ctx context.Context, userID string) ([]string, error)
	CountByCourse(ctx context.Context, courseID string) (int64, error)
}

type enrollmentRepoImpl struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepoImpl{db: db}
}

// Link inserts both ownership rows, ignoring conflicts so re-linking an
// already-linked pair is a no-op on each side independently.
func (r *enrollmentRepoImpl) Link(ctx context.Context, tx *gorm.DB, userID, courseID string) error {
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserEnrollment{UserID: userID, CourseID: courseID}).Error
	if err != nil {
		return err
	}

	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.CourseEnrollment{CourseID: courseID, UserID: userID}).Error
}

func (r *enrollmentRepoImpl) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserEnrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error

	return count > 0, err
}

func (r *enrollmentRepoImpl) CourseStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.CourseEnrollment{}).
		Where("course_id = ?", courseID).
		Pluck("user_id", &ids).Error

	return ids, err
}

func (r *enrollmentRepoImpl) UserCourseIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.UserEnrollment{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &ids).Error

	return ids, err
}

func (r *enrollmentRepoImpl) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CourseEnrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error

	return count, err
}
