package service

import (
	"context"
	"errors"
	"fmt"

	"edemy-backend/internal/apperr"
	"edemy-backend/internal/dto"
	"edemy-backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService records idempotent lecture completions and derives
// per-course completion ratios.
type ProgressService interface {
	// MarkLectureComplete returns apperr.ErrAlreadyCompleted when the lecture
	// was already in the completed set; that is a benign signal, not a failure.
	MarkLectureComplete(ctx context.Context, userID, courseID, lectureID string) error
	CompletionRatio(ctx context.Context, userID, courseID string) (float64, error)
	Progress(ctx context.Context, userID, courseID string) (*dto.ProgressView, error)
	AllProgress(ctx context.Context, userID string) ([]*dto.ProgressView, error)
}

type progressServiceImpl struct {
	db           *gorm.DB
	courseRepo   repository.CourseRepository
	progressRepo repository.ProgressRepository
	logger       *zap.Logger
}

func NewProgressService(
	db *gorm.DB,
	courseRepo repository.CourseRepository,
	progressRepo repository.ProgressRepository,
	logger *zap.Logger,
) ProgressService {
	return &progressServiceImpl{
		db:           db,
		courseRepo:   courseRepo,
		progressRepo: progressRepo,
		logger:       logger,
	}
}

func (s *progressServiceImpl) MarkLectureComplete(ctx context.Context, userID, courseID, lectureID string) error {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course %s: %w", courseID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find course: %w", err)
	}

	if course.FindLecture(lectureID) == nil {
		return fmt.Errorf("lecture %s does not belong to course %s: %w", lectureID, courseID, apperr.ErrInvalidInput)
	}

	inserted := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.progressRepo.EnsureRecord(ctx, tx, userID, courseID); err != nil {
			return fmt.Errorf("ensure progress record: %w", err)
		}

		inserted, err = s.progressRepo.AddCompletion(ctx, tx, userID, courseID, lectureID)
		if err != nil {
			return fmt.Errorf("add completion: %w", err)
		}
		if !inserted {
			return nil
		}

		completed, err := s.progressRepo.CompletedLectureIDs(ctx, tx, userID, courseID)
		if err != nil {
			return fmt.Errorf("count completions: %w", err)
		}

		total := course.TotalLectures()
		done := total > 0 && len(completed) >= total
		return s.progressRepo.SetCompleted(ctx, tx, userID, courseID, done)
	})
	if err != nil {
		return err
	}

	if !inserted {
		return apperr.ErrAlreadyCompleted
	}

	s.logger.Info("lecture completed",
		zap.String("user_id", userID),
		zap.String("course_id", courseID),
		zap.String("lecture_id", lectureID),
	)

	return nil
}

// CompletionRatio is completed / total lectures; a course with no lectures has
// a ratio of 0 rather than a division fault.
func (s *progressServiceImpl) CompletionRatio(ctx context.Context, userID, courseID string) (float64, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("course %s: %w", courseID, apperr.ErrNotFound)
		}
		return 0, fmt.Errorf("find course: %w", err)
	}

	total := course.TotalLectures()
	if total == 0 {
		return 0, nil
	}

	completed, err := s.progressRepo.CompletedLectureIDs(ctx, s.db, userID, courseID)
	if err != nil {
		return 0, fmt.Errorf("load completions: %w", err)
	}

	return float64(len(completed)) / float64(total), nil
}

func (s *progressServiceImpl) Progress(ctx context.Context, userID, courseID string) (*dto.ProgressView, error) {
	record, err := s.progressRepo.Find(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// no completions yet; an empty view, not an error
			return &dto.ProgressView{CourseID: courseID, CompletedLectures: []string{}}, nil
		}
		return nil, fmt.Errorf("find progress: %w", err)
	}

	lectureIDs, err := s.progressRepo.CompletedLectureIDs(ctx, s.db, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}

	return &dto.ProgressView{
		CourseID:          courseID,
		CompletedLectures: lectureIDs,
		Completed:         record.Completed,
	}, nil
}

// AllProgress returns every progress record for the user in one pass, so
// per-enrollment completion does not need a query per course.
func (s *progressServiceImpl) AllProgress(ctx context.Context, userID string) ([]*dto.ProgressView, error) {
	records, err := s.progressRepo.AllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress records: %w", err)
	}

	completions, err := s.progressRepo.CompletionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load completions: %w", err)
	}

	byCourse := make(map[string][]string)
	for _, c := range completions {
		byCourse[c.CourseID] = append(byCourse[c.CourseID], c.LectureID)
	}

	views := make([]*dto.ProgressView, len(records))
	for i, r := range records {
		lectureIDs := byCourse[r.CourseID]
		if lectureIDs == nil {
			lectureIDs = []string{}
		}
		views[i] = &dto.ProgressView{
			CourseID:          r.CourseID,
			CompletedLectures: lectureIDs,
			Completed:         r.Completed,
		}
	}

	return views, nil
}
