package service

import (
	"context"
	"fmt"

	"edemy-backend/internal/dto"
	"edemy-backend/internal/model"
	"edemy-backend/internal/repository"

	"go.uber.org/zap"
)

const latestEnrollmentLimit = 5

// EducatorService derives educator-facing aggregates from purchase records.
// Only completed purchases ever contribute to earnings or enrollment counts.
type EducatorService interface {
	Dashboard(ctx context.Context, educatorID string) (*dto.DashboardData, error)
	CoursesWithEarnings(ctx context.Context, educatorID string) ([]*dto.CourseEarnings, error)
	EnrolledStudents(ctx context.Context, educatorID string) ([]*dto.EnrollmentEntry, error)
}

type educatorServiceImpl struct {
	courseRepo   repository.CourseRepository
	purchaseRepo repository.PurchaseRepository
	userRepo     repository.UserRepository
	logger       *zap.Logger
}

func NewEducatorService(
	courseRepo repository.CourseRepository,
	purchaseRepo repository.PurchaseRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) EducatorService {
	return &educatorServiceImpl{
		courseRepo:   courseRepo,
		purchaseRepo: purchaseRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

func (s *educatorServiceImpl) Dashboard(ctx context.Context, educatorID string) (*dto.DashboardData, error) {
	courses, err := s.courseRepo.FindByEducator(ctx, educatorID)
	if err != nil {
		return nil, fmt.Errorf("load educator courses: %w", err)
	}

	courseIDs := make([]string, len(courses))
	titles := make(map[string]string, len(courses))
	for i, c := range courses {
		courseIDs[i] = c.ID
		titles[c.ID] = c.Title
	}

	purchases, err := s.purchaseRepo.CompletedByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load completed purchases: %w", err)
	}

	var totalEarnings int64
	for _, p := range purchases {
		totalEarnings += p.AmountCents
	}

	latest, err := s.purchaseRepo.LatestCompletedByCourseIDs(ctx, courseIDs, latestEnrollmentLimit)
	if err != nil {
		return nil, fmt.Errorf("load latest purchases: %w", err)
	}

	entries, err := s.joinStudents(ctx, latest, titles)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardData{
		TotalCourses:       len(courses),
		TotalEnrollments:   len(purchases),
		TotalEarningsCents: totalEarnings,
		LatestEnrollments:  entries,
	}, nil
}

// CoursesWithEarnings sums completed purchases per course for the educator's
// course list.
func (s *educatorServiceImpl) CoursesWithEarnings(ctx context.Context, educatorID string) ([]*dto.CourseEarnings, error) {
	courses, err := s.courseRepo.FindByEducator(ctx, educatorID)
	if err != nil {
		return nil, fmt.Errorf("load educator courses: %w", err)
	}

	courseIDs := make([]string, len(courses))
	for i, c := range courses {
		courseIDs[i] = c.ID
	}

	purchases, err := s.purchaseRepo.CompletedByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load completed purchases: %w", err)
	}

	earnings := make(map[string]int64, len(courses))
	for _, p := range purchases {
		earnings[p.CourseID] += p.AmountCents
	}

	result := make([]*dto.CourseEarnings, len(courses))
	for i, c := range courses {
		result[i] = &dto.CourseEarnings{
			Course:        *SummarizeCourse(c),
			IsPublished:   c.IsPublished,
			EarningsCents: earnings[c.ID],
		}
	}

	return result, nil
}

func (s *educatorServiceImpl) EnrolledStudents(ctx context.Context, educatorID string) ([]*dto.EnrollmentEntry, error) {
	courses, err := s.courseRepo.FindByEducator(ctx, educatorID)
	if err != nil {
		return nil, fmt.Errorf("load educator courses: %w", err)
	}

	courseIDs := make([]string, len(courses))
	titles := make(map[string]string, len(courses))
	for i, c := range courses {
		courseIDs[i] = c.ID
		titles[c.ID] = c.Title
	}

	purchases, err := s.purchaseRepo.CompletedByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load completed purchases: %w", err)
	}

	return s.joinStudents(ctx, purchases, titles)
}

// joinStudents attaches minimal student display fields and course titles to a
// purchase list.
func (s *educatorServiceImpl) joinStudents(ctx context.Context, purchases []*model.Purchase, courseTitles map[string]string) ([]*dto.EnrollmentEntry, error) {
	userIDs := make([]string, 0, len(purchases))
	seen := make(map[string]bool, len(purchases))
	for _, p := range purchases {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			userIDs = append(userIDs, p.UserID)
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}

	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	entries := make([]*dto.EnrollmentEntry, 0, len(purchases))
	for _, p := range purchases {
		student := dto.StudentView{ID: p.UserID}
		if u, ok := byID[p.UserID]; ok {
			student.Name = u.Name
			student.ImageURL = u.ImageURL
		}

		entries = append(entries, &dto.EnrollmentEntry{
			Student:     student,
			CourseTitle: courseTitles[p.CourseID],
			PurchasedAt: p.CreatedAt,
		})
	}

	return entries, nil
}
