package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"edemy-backend/internal/client"
	"edemy-backend/internal/config"
	"edemy-backend/internal/model"
	"edemy-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, client.AutoMigrate(db))

	return db
}

type testEnv struct {
	db       *gorm.DB
	checkout *fakeCheckoutClient
	media    *fakeMediaStorage

	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	purchaseRepo   repository.PurchaseRepository
	enrollmentRepo repository.EnrollmentRepository
	progressRepo   repository.ProgressRepository
	webhookRepo    repository.WebhookEventRepository

	linker    EnrollmentLinker
	purchases PurchaseService
	courses   CourseService
	progress  ProgressService
	educator  EducatorService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	checkout := &fakeCheckoutClient{}
	media := &fakeMediaStorage{}
	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)

	linker := NewEnrollmentLinker(userRepo, courseRepo, enrollmentRepo, log)
	retention := config.Retention{
		PurchaseTTL:      450 * time.Second,
		SweepInterval:    time.Minute,
		MaxInitiations:   3,
		InitiationWindow: time.Minute,
	}

	return &testEnv{
		db:             db,
		checkout:       checkout,
		media:          media,
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		purchaseRepo:   purchaseRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		webhookRepo:    webhookRepo,
		linker:         linker,
		purchases: NewPurchaseService(
			db, checkout,
			userRepo, courseRepo, purchaseRepo, enrollmentRepo, webhookRepo,
			linker, retention, "USD", log,
		),
		courses:  NewCourseService(db, media, courseRepo, enrollmentRepo, log),
		progress: NewProgressService(db, courseRepo, progressRepo, log),
		educator: NewEducatorService(courseRepo, purchaseRepo, userRepo, log),
	}
}

type fakeCheckoutClient struct {
	sessions  []*client.CheckoutSessionParams
	createErr error
	verifyErr error
}

func (f *fakeCheckoutClient) CreateSession(_ context.Context, params *client.CheckoutSessionParams) (*client.CheckoutSession, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.sessions = append(f.sessions, params)
	return &client.CheckoutSession{
		SessionID:  "cs_" + params.PurchaseID,
		SessionURL: "https://checkout.test/cs_" + params.PurchaseID,
	}, nil
}

func (f *fakeCheckoutClient) VerifyWebhookSignature(http.Header, []byte) error {
	return f.verifyErr
}

type fakeMediaStorage struct {
	removed []string
}

func (f *fakeMediaStorage) Remove(objectPath string) error {
	f.removed = append(f.removed, objectPath)
	return nil
}

func seedUser(t *testing.T, db *gorm.DB, id, name, role string) *model.User {
	t.Helper()

	user := &model.User{ID: id, Name: name, Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedCourse creates a published course with one chapter holding the given
// number of lectures; the first lecture is preview-free.
func seedCourse(t *testing.T, db *gorm.DB, educatorID string, priceCents int64, discount int32, lectures int) *model.Course {
	t.Helper()

	course := &model.Course{
		ID:              uuid.NewString(),
		Title:           "Test Course",
		Description:     "desc",
		PriceCents:      priceCents,
		DiscountPercent: discount,
		EducatorID:      educatorID,
		IsPublished:     true,
	}

	chapter := model.Chapter{
		ID:       uuid.NewString(),
		CourseID: course.ID,
		Position: 1,
		Title:    "Chapter 1",
	}
	for i := 0; i < lectures; i++ {
		chapter.Lectures = append(chapter.Lectures, model.Lecture{
			ID:              uuid.NewString(),
			ChapterID:       chapter.ID,
			Position:        int32(i + 1),
			Title:           fmt.Sprintf("Lecture %d", i+1),
			DurationMinutes: 10,
			ContentURL:      fmt.Sprintf("https://videos.test/%d", i+1),
			IsPreviewFree:   i == 0,
		})
	}
	course.Chapters = []model.Chapter{chapter}

	require.NoError(t, db.Create(course).Error)
	return course
}

func purchaseStatus(t *testing.T, db *gorm.DB, purchaseID string) string {
	t.Helper()

	var purchase model.Purchase
	require.NoError(t, db.Where("id = ?", purchaseID).First(&purchase).Error)
	return purchase.Status
}
