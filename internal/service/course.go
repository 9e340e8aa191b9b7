package service

import (
	"context"
	"errors"
	"fmt"

	"edemy-backend/internal/apperr"
	"edemy-backend/internal/client"
	"edemy-backend/internal/dto"
	"edemy-backend/internal/model"
	"edemy-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const featuredCourseLimit = 4

type CourseService interface {
	Create(ctx context.Context, educatorID string, req *dto.CreateCourseRequest) (*dto.CourseView, error)
	Publish(ctx context.Context, educatorID, courseID string) error
	// Get returns the viewer-specific projection; an unpublished course is
	// visible only to its owner and reads as NotFound for anyone else.
	Get(ctx context.Context, courseID, viewerID string) (*dto.CourseView, error)
	ListPublished(ctx context.Context, titleSearch string) ([]*dto.CourseSummary, error)
	Featured(ctx context.Context) ([]*dto.CourseSummary, error)
	EnrolledCourses(ctx context.Context, userID string) ([]*dto.CourseView, error)
	AddRating(ctx context.Context, userID, courseID string, value int32) error
}

type courseServiceImpl struct {
	db             *gorm.DB
	mediaStorage   client.MediaStorage
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	logger         *zap.Logger
}

func NewCourseService(
	db *gorm.DB,
	mediaStorage client.MediaStorage,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	logger *zap.Logger,
) CourseService {
	return &courseServiceImpl{
		db:             db,
		mediaStorage:   mediaStorage,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

// Create stores a new unpublished course. The thumbnail was already uploaded
// by the client; if the create fails after that point the uploaded object is
// released so it does not end up orphaned.
func (s *courseServiceImpl) Create(ctx context.Context, educatorID string, req *dto.CreateCourseRequest) (*dto.CourseView, error) {
	if req.PriceCents < 0 || req.DiscountPercent < 0 || req.DiscountPercent > 100 {
		return nil, fmt.Errorf("invalid price or discount: %w", apperr.ErrInvalidInput)
	}
	if len(req.Chapters) == 0 {
		return nil, fmt.Errorf("course must have at least one chapter: %w", apperr.ErrInvalidInput)
	}

	course := &model.Course{
		ID:              uuid.NewString(),
		Title:           req.Title,
		Description:     req.Description,
		ThumbnailURL:    req.ThumbnailURL,
		PriceCents:      req.PriceCents,
		DiscountPercent: req.DiscountPercent,
		EducatorID:      educatorID,
	}

	for i, ch := range req.Chapters {
		chapter := model.Chapter{
			ID:       uuid.NewString(),
			CourseID: course.ID,
			Position: int32(i + 1),
			Title:    ch.Title,
		}
		for j, lec := range ch.Lectures {
			chapter.Lectures = append(chapter.Lectures, model.Lecture{
				ID:              uuid.NewString(),
				ChapterID:       chapter.ID,
				Position:        int32(j + 1),
				Title:           lec.Title,
				DurationMinutes: lec.DurationMinutes,
				ContentURL:      lec.ContentURL,
				IsPreviewFree:   lec.IsPreviewFree,
			})
		}
		course.Chapters = append(course.Chapters, chapter)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.courseRepo.Create(ctx, tx, course)
	})
	if err != nil {
		if removeErr := s.mediaStorage.Remove(req.ThumbnailURL); removeErr != nil {
			s.logger.Warn("failed to release orphaned thumbnail",
				zap.String("thumbnail", req.ThumbnailURL),
				zap.Error(removeErr),
			)
		}
		return nil, fmt.Errorf("store course: %w", err)
	}

	s.logger.Info("course created",
		zap.String("course_id", course.ID),
		zap.String("educator_id", educatorID),
	)

	return ProjectCourse(course, nil, educatorID), nil
}

func (s *courseServiceImpl) Publish(ctx context.Context, educatorID, courseID string) error {
	updated, err := s.courseRepo.Publish(ctx, courseID, educatorID)
	if err != nil {
		return fmt.Errorf("publish course: %w", err)
	}
	if updated == 0 {
		// either the course does not exist or the caller does not own it;
		// both read the same from outside
		return fmt.Errorf("course %s: %w", courseID, apperr.ErrNotFound)
	}

	return nil
}

func (s *courseServiceImpl) Get(ctx context.Context, courseID, viewerID string) (*dto.CourseView, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	if !course.IsPublished && course.EducatorID != viewerID {
		return nil, fmt.Errorf("course %s: %w", courseID, apperr.ErrNotFound)
	}

	enrolled, err := s.enrollmentRepo.CourseStudentIDs(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load enrolled students: %w", err)
	}

	return ProjectCourse(course, enrolled, viewerID), nil
}

func (s *courseServiceImpl) ListPublished(ctx context.Context, titleSearch string) ([]*dto.CourseSummary, error) {
	courses, err := s.courseRepo.FindPublished(ctx, titleSearch)
	if err != nil {
		return nil, fmt.Errorf("list published courses: %w", err)
	}

	summaries := make([]*dto.CourseSummary, len(courses))
	for i, c := range courses {
		summaries[i] = SummarizeCourse(c)
	}

	return summaries, nil
}

func (s *courseServiceImpl) Featured(ctx context.Context) ([]*dto.CourseSummary, error) {
	courses, err := s.courseRepo.FindFeatured(ctx, featuredCourseLimit)
	if err != nil {
		return nil, fmt.Errorf("list featured courses: %w", err)
	}

	summaries := make([]*dto.CourseSummary, len(courses))
	for i, c := range courses {
		summaries[i] = SummarizeCourse(c)
	}

	return summaries, nil
}

// EnrolledCourses projects each of the user's courses with the user as viewer,
// so all lecture URLs are visible.
func (s *courseServiceImpl) EnrolledCourses(ctx context.Context, userID string) ([]*dto.CourseView, error) {
	courseIDs, err := s.enrollmentRepo.UserCourseIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load enrolled course ids: %w", err)
	}

	views := make([]*dto.CourseView, 0, len(courseIDs))
	for _, id := range courseIDs {
		course, err := s.courseRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("find course %s: %w", id, err)
		}

		enrolled, err := s.enrollmentRepo.CourseStudentIDs(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load enrolled students: %w", err)
		}

		views = append(views, ProjectCourse(course, enrolled, userID))
	}

	return views, nil
}

// AddRating upserts the user's single rating slot on a course. One rating per
// user per course is enforced here, not by the store.
func (s *courseServiceImpl) AddRating(ctx context.Context, userID, courseID string, value int32) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("rating must be between 1 and 5: %w", apperr.ErrInvalidInput)
	}

	_, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course %s: %w", courseID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find course: %w", err)
	}

	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return fmt.Errorf("user has not purchased this course: %w", apperr.ErrForbidden)
	}

	return s.courseRepo.UpsertRating(ctx, &model.CourseRating{
		CourseID: courseID,
		UserID:   userID,
		Value:    value,
	})
}
