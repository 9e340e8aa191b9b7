package service

import (
	"context"
	"fmt"

	"edemy-backend/internal/apperr"
	"edemy-backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentLinker grants access by writing both sides of the user↔course
// relationship. Link takes the caller's transaction so the purchase completion
// path can make payment and access land (or fail) together.
type EnrollmentLinker interface {
	Link(ctx context.Context, tx *gorm.DB, userID, courseID string) error
}

type enrollmentLinkerImpl struct {
	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	logger         *zap.Logger
}

func NewEnrollmentLinker(
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	logger *zap.Logger,
) EnrollmentLinker {
	return &enrollmentLinkerImpl{
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

func (l *enrollmentLinkerImpl) Link(ctx context.Context, tx *gorm.DB, userID, courseID string) error {
	// entities may have vanished between the caller's validation and commit
	userExists, err := l.userRepo.Exists(ctx, tx, userID)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if !userExists {
		return fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}

	courseExists, err := l.courseRepo.Exists(ctx, tx, courseID)
	if err != nil {
		return fmt.Errorf("check course exists: %w", err)
	}
	if !courseExists {
		return fmt.Errorf("course %s: %w", courseID, apperr.ErrNotFound)
	}

	if err := l.enrollmentRepo.Link(ctx, tx, userID, courseID); err != nil {
		return fmt.Errorf("link enrollment: %w", err)
	}

	l.logger.Info("enrollment linked",
		zap.String("user_id", userID),
		zap.String("course_id", courseID),
	)

	return nil
}
