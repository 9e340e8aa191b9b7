package sweeper

import (
	"context"
	"fmt"
	"time"

	"edemy-backend/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically reclaims purchases that never reached a completed
// state. Correctness never depends on it running; skipping a sweep only lets
// abandoned checkouts linger a while longer.
type Sweeper struct {
	purchaseService service.PurchaseService
	interval        time.Duration
	logger          *zap.Logger
	cron            *cron.Cron
}

func New(purchaseService service.PurchaseService, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		purchaseService: purchaseService,
		interval:        interval,
		logger:          logger,
	}
}

func (s *Sweeper) Start() error {
	c := cron.New()

	spec := fmt.Sprintf("@every %s", s.interval)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		removed, err := s.purchaseService.ReclaimExpired(ctx)
		if err != nil {
			s.logger.Error("purchase sweep failed", zap.Error(err))
			return
		}
		if removed > 0 {
			s.logger.Info("purchase sweep done", zap.Int64("removed", removed))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule purchase sweep: %w", err)
	}

	c.Start()
	s.cron = c
	s.logger.Info("purchase sweeper started", zap.Duration("interval", s.interval))

	return nil
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
