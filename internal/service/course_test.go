package service

import (
	"context"
	"testing"

	"edemy-backend/internal/apperr"
	"edemy-backend/internal/dto"
	"edemy-backend/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createCourseRequest() *dto.CreateCourseRequest {
	return &dto.CreateCourseRequest{
		Title:           "Intro to Go",
		Description:     "learn go",
		ThumbnailURL:    "thumbnails/intro-go.png",
		PriceCents:      4999,
		DiscountPercent: 10,
		Chapters: []dto.CreateChapterRequest{
			{
				Title: "Getting Started",
				Lectures: []dto.CreateLectureRequest{
					{Title: "Hello World", DurationMinutes: 8, ContentURL: "https://v/hello", IsPreviewFree: true},
					{Title: "Packages", DurationMinutes: 12, ContentURL: "https://v/packages"},
				},
			},
		},
	}
}

func TestCreateCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.courses.Create(ctx, "edu-1", createCourseRequest())
	require.NoError(t, err)
	require.False(t, view.IsPublished)
	require.Len(t, view.Chapters, 1)
	require.Len(t, view.Chapters[0].Lectures, 2)
	// the creator is the owner, so URLs are visible in the returned view
	require.Equal(t, "https://v/packages", view.Chapters[0].Lectures[1].ContentURL)

	stored, err := env.courseRepo.FindByID(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, int64(4999), stored.PriceCents)
	require.Equal(t, 2, stored.TotalLectures())
}

func TestCreateCourseValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := createCourseRequest()
	req.Chapters = nil
	_, err := env.courses.Create(ctx, "edu-1", req)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	req = createCourseRequest()
	req.DiscountPercent = 120
	_, err = env.courses.Create(ctx, "edu-1", req)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestCreateCourseReleasesThumbnailOnFailure(t *testing.T) {
	env := newTestEnv(t)

	// a canceled context makes the store reject the create after the
	// thumbnail upload already happened client-side
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.courses.Create(ctx, "edu-1", createCourseRequest())
	require.Error(t, err)
	require.Equal(t, []string{"thumbnails/intro-go.png"}, env.media.removed)
}

func TestPublishCourseOwnerGated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.courses.Create(ctx, "edu-1", createCourseRequest())
	require.NoError(t, err)

	require.ErrorIs(t, env.courses.Publish(ctx, "edu-2", view.ID), apperr.ErrNotFound)
	require.NoError(t, env.courses.Publish(ctx, "edu-1", view.ID))

	stored, err := env.courseRepo.FindByID(ctx, view.ID)
	require.NoError(t, err)
	require.True(t, stored.IsPublished)
}

func TestGetUnpublishedCourseOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.courses.Create(ctx, "edu-1", createCourseRequest())
	require.NoError(t, err)

	_, err = env.courses.Get(ctx, created.ID, "stranger")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.courses.Get(ctx, created.ID, "")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	view, err := env.courses.Get(ctx, created.ID, "edu-1")
	require.NoError(t, err)
	require.Equal(t, created.ID, view.ID)
}

func TestGetPublishedCourseHidesRestrictedURLs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env.db, "user-1", "Alice", model.RoleStudent)
	course := seedCourse(t, env.db, "edu-1", 10000, 0, 2)

	view, err := env.courses.Get(ctx, course.ID, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, view.Chapters[0].Lectures[0].ContentURL) // preview
	require.Empty(t, view.Chapters[0].Lectures[1].ContentURL)

	require.NoError(t, env.db.Transaction(func(tx *gorm.DB) error {
		return env.linker.Link(ctx, tx, "user-1", course.ID)
	}))

	view, err = env.courses.Get(ctx, course.ID, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, view.Chapters[0].Lectures[1].ContentURL)
}

func TestListPublishedFiltersAndSearches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	published := seedCourse(t, env.db, "edu-1", 1000, 0, 1)
	draft := seedCourse(t, env.db, "edu-1", 1000, 0, 1)
	require.NoError(t, env.db.Model(&model.Course{}).
		Where("id = ?", draft.ID).
		Update("is_published", false).Error)

	list, err := env.courses.ListPublished(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, published.ID, list[0].ID)

	list, err = env.courses.ListPublished(ctx, "TEST")
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = env.courses.ListPublished(ctx, "nope")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAddRatingUpserts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env.db, "user-1", "Alice", model.RoleStudent)
	course := seedCourse(t, env.db, "edu-1", 0, 0, 1)

	require.ErrorIs(t, env.courses.AddRating(ctx, "user-1", course.ID, 0), apperr.ErrInvalidInput)
	require.ErrorIs(t, env.courses.AddRating(ctx, "user-1", course.ID, 6), apperr.ErrInvalidInput)

	// not enrolled yet
	require.ErrorIs(t, env.courses.AddRating(ctx, "user-1", course.ID, 4), apperr.ErrForbidden)

	require.NoError(t, env.purchases.EnrollFree(ctx, "user-1", course.ID))

	require.NoError(t, env.courses.AddRating(ctx, "user-1", course.ID, 4))
	require.NoError(t, env.courses.AddRating(ctx, "user-1", course.ID, 2))

	var ratings []model.CourseRating
	require.NoError(t, env.db.Where("course_id = ?", course.ID).Find(&ratings).Error)
	require.Len(t, ratings, 1)
	require.Equal(t, "user-1", ratings[0].UserID)
	require.Equal(t, int32(2), ratings[0].Value)
}

func TestEnrolledCoursesProjectedForViewer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env.db, "user-1", "Alice", model.RoleStudent)
	course := seedCourse(t, env.db, "edu-1", 0, 0, 2)

	require.NoError(t, env.purchases.EnrollFree(ctx, "user-1", course.ID))

	views, err := env.courses.EnrolledCourses(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	// enrolled viewer sees every lecture URL
	for _, lec := range views[0].Chapters[0].Lectures {
		require.NotEmpty(t, lec.ContentURL)
	}
}
