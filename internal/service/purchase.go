package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"edemy-backend/internal/apperr"
	"edemy-backend/internal/client"
	"edemy-backend/internal/config"
	"edemy-backend/internal/dto"
	"edemy-backend/internal/model"
	"edemy-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurchaseService owns the pending→completed/failed lifecycle of monetary
// transactions, the zero-price enrollment path, and the retention sweep.
type PurchaseService interface {
	Initiate(ctx context.Context, userID, courseID, origin string) (*dto.CheckoutResponse, error)
	EnrollFree(ctx context.Context, userID, courseID string) error
	MarkCompleted(ctx context.Context, purchaseID string) error
	MarkFailed(ctx context.Context, purchaseID string) error
	ReclaimExpired(ctx context.Context) (int64, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
}

// PaymentEvent is the asynchronous callback payload from the payment
// collaborator. Delivery is at-least-once; EventID dedup makes it effectively
// exactly-once.
type PaymentEvent struct {
	EventID string `json:"id"`
	Type    string `json:"type"`
	Data    struct {
		Object struct {
			ID       string `json:"id"`
			Metadata struct {
				PurchaseID string `json:"purchase_id"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

const (
	eventCheckoutCompleted = "checkout.session.completed"
	eventCheckoutExpired   = "checkout.session.expired"
	eventPaymentFailed     = "checkout.payment_failed"
)

type purchaseServiceImpl struct {
	db             *gorm.DB
	checkoutClient client.CheckoutClient
	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	purchaseRepo   repository.PurchaseRepository
	enrollmentRepo repository.EnrollmentRepository
	webhookRepo    repository.WebhookEventRepository
	linker         EnrollmentLinker
	retention      config.Retention
	currency       string
	logger         *zap.Logger
}

func NewPurchaseService(
	db *gorm.DB,
	checkoutClient client.CheckoutClient,
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	purchaseRepo repository.PurchaseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	webhookRepo repository.WebhookEventRepository,
	linker EnrollmentLinker,
	retention config.Retention,
	currency string,
	logger *zap.Logger,
) PurchaseService {
	return &purchaseServiceImpl{
		db:             db,
		checkoutClient: checkoutClient,
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		purchaseRepo:   purchaseRepo,
		enrollmentRepo: enrollmentRepo,
		webhookRepo:    webhookRepo,
		linker:         linker,
		retention:      retention,
		currency:       currency,
		logger:         logger,
	}
}

// Initiate computes the amount server-side from the course's current price and
// discount, records a pending purchase and opens a checkout session carrying
// the purchase id. Duplicate pendings for the same user/course are allowed;
// the sweep reclaims abandoned ones.
func (s *purchaseServiceImpl) Initiate(ctx context.Context, userID, courseID, origin string) (*dto.CheckoutResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	since := time.Now().Add(-s.retention.InitiationWindow)
	initiated, err := s.purchaseRepo.CountInitiatedSince(ctx, user.ID, since)
	if err != nil {
		return nil, fmt.Errorf("count recent initiations: %w", err)
	}
	if initiated >= int64(s.retention.MaxInitiations) {
		return nil, fmt.Errorf("too many checkout attempts: %w", apperr.ErrRateLimited)
	}

	amount := course.EffectivePriceCents()
	if amount == 0 {
		// free courses go through EnrollFree, not through the payment flow
		return nil, fmt.Errorf("course is free: %w", apperr.ErrInvalidState)
	}

	purchase := &model.Purchase{
		ID:          uuid.NewString(),
		CourseID:    course.ID,
		UserID:      user.ID,
		AmountCents: amount,
		Status:      model.PurchaseStatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.purchaseRepo.Create(ctx, tx, purchase)
	})
	if err != nil {
		return nil, fmt.Errorf("store purchase: %w", err)
	}

	session, err := s.checkoutClient.CreateSession(ctx, &client.CheckoutSessionParams{
		PurchaseID:  purchase.ID,
		ProductName: course.Title,
		AmountCents: amount,
		Currency:    s.currency,
		SuccessURL:  origin + "/loading/my-enrollments",
		CancelURL:   origin + "/",
	})
	if err != nil {
		// the pending purchase stays behind; the retention sweep reclaims it
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.Info("purchase initiated",
		zap.String("purchase_id", purchase.ID),
		zap.String("course_id", course.ID),
		zap.Int64("amount_cents", amount),
	)

	return &dto.CheckoutResponse{
		PurchaseID: purchase.ID,
		SessionURL: session.SessionURL,
	}, nil
}

// EnrollFree grants access to a zero-price course without a purchase record.
func (s *purchaseServiceImpl) EnrollFree(ctx context.Context, userID, courseID string) error {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course %s: %w", courseID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find course: %w", err)
	}

	if course.EffectivePriceCents() != 0 {
		return fmt.Errorf("course is not free: %w", apperr.ErrInvalidState)
	}

	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return fmt.Errorf("check enrollment: %w", err)
	}
	if enrolled {
		return apperr.ErrAlreadyEnrolled
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.linker.Link(ctx, tx, userID, courseID)
	})
}

// MarkCompleted transitions pending → completed and links the enrollment in
// the same transaction. Safe under duplicate delivery: a purchase that is
// already completed returns success without side effects.
func (s *purchaseServiceImpl) MarkCompleted(ctx context.Context, purchaseID string) error {
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("purchase %s: %w", purchaseID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find purchase: %w", err)
	}

	if purchase.Status == model.PurchaseStatusCompleted {
		s.logger.Info("duplicate completion ignored", zap.String("purchase_id", purchaseID))
		return nil
	}
	if purchase.Status == model.PurchaseStatusFailed {
		return fmt.Errorf("purchase already failed: %w", apperr.ErrInvalidState)
	}

	course, err := s.courseRepo.FindByID(ctx, purchase.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course %s: %w", purchase.CourseID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find course: %w", err)
	}

	// the amount was computed at initiation; if the price moved since, the
	// completion must not be honored blindly
	if course.EffectivePriceCents() != purchase.AmountCents {
		return fmt.Errorf("course price changed since checkout: %w", apperr.ErrConflict)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		moved, err := s.purchaseRepo.MarkCompleted(ctx, tx, purchaseID)
		if err != nil {
			return fmt.Errorf("mark purchase completed: %w", err)
		}
		if moved == 0 {
			// lost the race to a concurrent delivery; nothing left to do
			return nil
		}

		if err := s.linker.Link(ctx, tx, purchase.UserID, purchase.CourseID); err != nil {
			// rolls back the status flip; payment is never recorded without access
			return err
		}

		s.logger.Info("purchase completed",
			zap.String("purchase_id", purchaseID),
			zap.String("user_id", purchase.UserID),
			zap.String("course_id", purchase.CourseID),
		)

		return nil
	})
}

// MarkFailed transitions pending → failed. Terminal purchases are left alone.
func (s *purchaseServiceImpl) MarkFailed(ctx context.Context, purchaseID string) error {
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("purchase %s: %w", purchaseID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find purchase: %w", err)
	}

	if purchase.Status != model.PurchaseStatusPending {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.purchaseRepo.MarkFailed(ctx, tx, purchaseID)
		return err
	})
}

// ReclaimExpired removes pending/failed purchases older than the retention
// window. Completed purchases are permanent and exempt.
func (s *purchaseServiceImpl) ReclaimExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention.PurchaseTTL)

	removed, err := s.purchaseRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale purchases: %w", err)
	}

	if removed > 0 {
		s.logger.Info("reclaimed stale purchases", zap.Int64("count", removed))
	}

	return removed, nil
}

// HandleWebhook verifies, dedups and dispatches a payment callback.
func (s *purchaseServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if err := s.checkoutClient.VerifyWebhookSignature(headers, body); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	var event PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}
	if event.EventID == "" {
		return fmt.Errorf("missing event id: %w", apperr.ErrInvalidInput)
	}

	processed, err := s.webhookRepo.Exists(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		s.logger.Info("duplicate webhook event ignored", zap.String("event_id", event.EventID))
		return nil
	}

	purchaseID := event.Data.Object.Metadata.PurchaseID

	switch event.Type {
	case eventCheckoutCompleted:
		if purchaseID == "" {
			return fmt.Errorf("missing purchase_id in webhook payload: %w", apperr.ErrInvalidInput)
		}
		if err := s.MarkCompleted(ctx, purchaseID); err != nil {
			return err
		}
	case eventCheckoutExpired, eventPaymentFailed:
		if purchaseID == "" {
			return fmt.Errorf("missing purchase_id in webhook payload: %w", apperr.ErrInvalidInput)
		}
		if err := s.MarkFailed(ctx, purchaseID); err != nil {
			return err
		}
	default:
		// event types outside this purchase flow are acked so the provider
		// stops redelivering them
		s.logger.Debug("unhandled webhook event type", zap.String("type", event.Type))
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.webhookRepo.MarkProcessed(ctx, tx, event.EventID, event.Type)
	})
}
