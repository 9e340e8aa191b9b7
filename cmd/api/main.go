package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edemy-backend/internal/client"
	"edemy-backend/internal/config"
	"edemy-backend/internal/handler"
	"edemy-backend/internal/repository"
	"edemy-backend/internal/server"
	"edemy-backend/internal/service"
	"edemy-backend/internal/sweeper"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db := client.InitMysqlClient(cfg.DatabaseURL)
	checkoutClient := client.NewCheckoutClient(&cfg.Checkout)
	mediaStorage := client.NewSupabaseStorage(&cfg.Storage)

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	linker := service.NewEnrollmentLinker(userRepo, courseRepo, enrollmentRepo, logger)
	purchaseService := service.NewPurchaseService(
		db, checkoutClient,
		userRepo, courseRepo, purchaseRepo, enrollmentRepo, webhookEventRepo,
		linker,
		cfg.Retention, cfg.Checkout.Currency,
		logger,
	)
	courseService := service.NewCourseService(db, mediaStorage, courseRepo, enrollmentRepo, logger)
	progressService := service.NewProgressService(db, courseRepo, progressRepo, logger)
	educatorService := service.NewEducatorService(courseRepo, purchaseRepo, userRepo, logger)

	courseHandler := handler.NewCourseHandler(courseService)
	userHandler := handler.NewUserHandler(userRepo, courseService, purchaseService, progressService)
	educatorHandler := handler.NewEducatorHandler(courseService, educatorService)
	paymentHandler := handler.NewPaymentHandler(purchaseService, logger)

	srv := server.NewServer(courseHandler, userHandler, educatorHandler, paymentHandler, cfg.Auth.JWTSecret)

	sweep := sweeper.New(purchaseService, cfg.Retention.SweepInterval, logger)
	if err := sweep.Start(); err != nil {
		logger.Fatal("failed to start purchase sweeper", zap.Error(err))
	}
	defer sweep.Stop()

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Echo().Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment.Name == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
