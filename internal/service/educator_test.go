package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"edemy-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPurchase(t *testing.T, db *gorm.DB, userID, courseID string, amountCents int64, status string, createdAt time.Time) *model.Purchase {
	t.Helper()

	purchase := &model.Purchase{
		ID:          uuid.NewString(),
		UserID:      userID,
		CourseID:    courseID,
		AmountCents: amountCents,
		Status:      status,
		CreatedAt:   createdAt,
	}
	require.NoError(t, db.Create(purchase).Error)
	return purchase
}

func TestDashboardCountsOnlyCompletedPurchases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env.db, "user-1", "Alice", model.RoleStudent)
	seedUser(t, env.db, "user-2", "Bob", model.RoleStudent)
	courseA := seedCourse(t, env.db, "edu-1", 10000, 0, 1)
	courseB := seedCourse(t, env.db, "edu-1", 5000, 0, 1)
	other := seedCourse(t, env.db, "edu-2", 7000, 0, 1)

	now := time.Now()
	seedPurchase(t, env.db, "user-1", courseA.ID, 10000, model.PurchaseStatusCompleted, now.Add(-3*time.Hour))
	seedPurchase(t, env.db, "user-2", courseB.ID, 5000, model.PurchaseStatusCompleted, now.Add(-2*time.Hour))
	// pending and failed attempts never count toward earnings
	seedPurchase(t, env.db, "user-2", courseA.ID, 10000, model.PurchaseStatusPending, now.Add(-time.Hour))
	seedPurchase(t, env.db, "user-1", courseB.ID, 5000, model.PurchaseStatusFailed, now.Add(-time.Hour))
	// another educator's sale
	seedPurchase(t, env.db, "user-1", other.ID, 7000, model.PurchaseStatusCompleted, now)

	dash, err := env.educator.Dashboard(ctx, "edu-1")
	require.NoError(t, err)
	require.Equal(t, 2, dash.TotalCourses)
	require.Equal(t, 2, dash.TotalEnrollments)
	require.Equal(t, int64(15000), dash.TotalEarningsCents)
	require.Len(t, dash.LatestEnrollments, 2)
}

func TestDashboardLatestEnrollmentsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	course := seedCourse(t, env.db, "edu-1", 1000, 0, 1)

	now := time.Now()
	for i := 0; i < 7; i++ {
		id := fmt.Sprintf("user-%d", i)
		seedUser(t, env.db, id, fmt.Sprintf("Student %d", i), model.RoleStudent)
		seedPurchase(t, env.db, id, course.ID, 1000, model.PurchaseStatusCompleted, now.Add(time.Duration(i)*time.Minute))
	}

	dash, err := env.educator.Dashboard(ctx, "edu-1")
	require.NoError(t, err)
	require.Len(t, dash.LatestEnrollments, 5)
	for i, entry := range dash.LatestEnrollments {
		require.Equal(t, fmt.Sprintf("Student %d", 6-i), entry.Student.Name)
	}
}

func TestDashboardEmptyEducator(t *testing.T) {
	env := newTestEnv(t)

	dash, err := env.educator.Dashboard(context.Background(), "edu-none")
	require.NoError(t, err)
	require.Equal(t, 0, dash.TotalCourses)
	require.Equal(t, 0, dash.TotalEnrollments)
	require.Equal(t, int64(0), dash.TotalEarningsCents)
	require.Empty(t, dash.LatestEnrollments)
}

func TestCoursesWithEarningsSumsPerCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env.db, "user-1", "Alice", model.RoleStudent)
	seedUser(t, env.db, "user-2", "Bob", model.RoleStudent)
	courseA := seedCourse(t, env.db, "edu-1", 10000, 0, 1)
	courseB := seedCourse(t, env.db, "edu-1", 5000, 0, 1)

	now := time.Now()
	seedPurchase(t, env.db, "user-1", courseA.ID, 10000, model.PurchaseStatusCompleted, now)
	seedPurchase(t, env.db, "user-2", courseA.ID, 10000, model.PurchaseStatusCompleted, now)
	seedPurchase(t, env.db, "user-1", courseB.ID, 5000, model.PurchaseStatusPending, now)

	list, err := env.educator.CoursesWithEarnings(ctx, "edu-1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	byCourse := make(map[string]int64, len(list))
	for _, ce := range list {
		byCourse[ce.Course.ID] = ce.EarningsCents
	}
	require.Equal(t, int64(20000), byCourse[courseA.ID])
	require.Equal(t, int64(0), byCourse[courseB.ID])
}

func TestEnrolledStudentsJoinsNamesAndTitles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedUser(t, env.db, "user-1", "Alice", model.RoleStudent)
	require.NoError(t, env.db.Model(&model.User{}).
		Where("id = ?", "user-1").
		Update("image_url", "https://img.test/alice.png").Error)

	course := seedCourse(t, env.db, "edu-1", 1000, 0, 1)
	seedPurchase(t, env.db, "user-1", course.ID, 1000, model.PurchaseStatusCompleted, time.Now())

	entries, err := env.educator.EnrolledStudents(ctx, "edu-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Alice", entries[0].Student.Name)
	require.Equal(t, "https://img.test/alice.png", entries[0].Student.ImageURL)
	require.Equal(t, course.Title, entries[0].CourseTitle)
	require.False(t, entries[0].PurchasedAt.IsZero())
}
