package service

import (
	"context"
	"testing"

	"edemy-backend/internal/apperr"
	"edemy-backend/internal/model"

	"github.com/stretchr/testify/require"
)

func TestMarkLectureCompleteIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env.db, "user-1", "Alice", model.RoleStudent)
	course := seedCourse(t, env.db, "edu-1", 0, 0, 4)

	lectureA := course.Chapters[0].Lectures[0].ID
	lectureB := course.Chapters[0].Lectures[1].ID

	require.NoError(t, env.progress.MarkLectureComplete(ctx, "user-1", course.ID, lectureA))

	// re-marking is a benign signal, not a failure, and leaves the set unchanged
	err := env.progress.MarkLectureComplete(ctx, "user-1", course.ID, lectureA)
	require.ErrorIs(t, err, apperr.ErrAlreadyCompleted)

	require.NoError(t, env.progress.MarkLectureComplete(ctx, "user-1", course.ID, lectureB))

	view, err := env.progress.Progress(ctx, "user-1", course.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{lectureA, lectureB}, view.CompletedLectures)
	require.False(t, view.Completed)

	ratio, err := env.progress.CompletionRatio(ctx, "user-1", course.ID)
	require.NoError(t, err)
	require.InDelta(t, 0.5, ratio, 1e-9)
}

// The derived flag must flip on the very first call that completes the course,
// so the in-transaction recount has to see the completion just inserted.
func TestMarkLectureCompleteDerivesFlagOnFirstCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := seedCourse(t, env.db, "edu-1", 0, 0, 1)
	lecture := course.Chapters[0].Lectures[0].ID

	require.NoError(t, env.progress.MarkLectureComplete(ctx, "user-1", course.ID, lecture))

	var record model.CourseProgress
	require.NoError(t, env.db.
		Where("user_id = ? AND course_id = ?", "user-1", course.ID).
		First(&record).Error)
	require.True(t, record.Completed)
}

func TestMarkLectureCompleteCommutative(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := seedCourse(t, env.db, "edu-1", 0, 0, 2)
	lectureA := course.Chapters[0].Lectures[0].ID
	lectureB := course.Chapters[0].Lectures[1].ID

	// user-1 marks A then B, user-2 marks B then A; both end with the union
	require.NoError(t, env.progress.MarkLectureComplete(ctx, "user-1", course.ID, lectureA))
	require.NoError(t, env.progress.MarkLectureComplete(ctx, "user-1", course.ID, lectureB))
	require.NoError(t, env.progress.MarkLectureComplete(ctx, "user-2", course.ID, lectureB))
	require.NoError(t, env.progress.MarkLectureComplete(ctx, "user-2", course.ID, lectureA))

	for _, userID := range []string{"user-1", "user-2"} {
		view, err := env.progress.Progress(ctx, userID, course.ID)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{lectureA, lectureB}, view.CompletedLectures)
		require.True(t, view.Completed)
	}
}

func TestMarkLectureCompleteRejectsForeignLecture(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := seedCourse(t, env.db, "edu-1", 0, 0, 1)
	other := seedCourse(t, env.db, "edu-1", 0, 0, 1)

	err := env.progress.MarkLectureComplete(ctx, "user-1", course.ID, other.Chapters[0].Lectures[0].ID)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	err = env.progress.MarkLectureComplete(ctx, "user-1", "missing-course", "whatever")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCompletionRatioZeroLectures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := seedCourse(t, env.db, "edu-1", 0, 0, 0)

	ratio, err := env.progress.CompletionRatio(ctx, "user-1", course.ID)
	require.NoError(t, err)
	require.Zero(t, ratio)
}

func TestAllProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	courseA := seedCourse(t, env.db, "edu-1", 0, 0, 1)
	courseB := seedCourse(t, env.db, "edu-1", 0, 0, 2)

	require.NoError(t, env.progress.MarkLectureComplete(ctx, "user-1", courseA.ID, courseA.Chapters[0].Lectures[0].ID))
	require.NoError(t, env.progress.MarkLectureComplete(ctx, "user-1", courseB.ID, courseB.Chapters[0].Lectures[0].ID))

	views, err := env.progress.AllProgress(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, views, 2)

	byCourse := map[string]bool{}
	for _, v := range views {
		byCourse[v.CourseID] = v.Completed
	}
	require.True(t, byCourse[courseA.ID])  // single lecture, fully done
	require.False(t, byCourse[courseB.ID]) // one of two
}
