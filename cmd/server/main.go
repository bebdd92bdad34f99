package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitcoach/coaching-app/internal/analysis"
	"fitcoach/coaching-app/internal/api"
	"fitcoach/coaching-app/internal/config"
	"fitcoach/coaching-app/internal/email"
	"fitcoach/coaching-app/internal/payment"
	"fitcoach/coaching-app/internal/repository/postgres"
	"fitcoach/coaching-app/internal/service"
	"fitcoach/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const subscriptionSweepInterval = time.Hour

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.Info("starting coaching app server")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}

	// --- Database ---
	db, err := postgres.ConnectDB(cfg.Database.DSN)
	if err != nil {
		log.WithError(err).Fatal("could not connect to Postgres")
	}
	defer func() {
		if err := postgres.CloseDB(db); err != nil {
			log.WithError(err).Error("failed to close database")
		}
	}()
	if err := postgres.Migrate(db); err != nil {
		log.WithError(err).Fatal("schema migration failed")
	}
	log.Info("database ready")

	// --- External collaborators ---
	fileStorage, err := storage.NewS3Storage(cfg.S3, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize S3 storage")
	}
	mailer := email.NewMailer(cfg.SMTP, log)
	gateway := payment.NewSimulatedGateway()
	analyzer := analysis.NewSimulatedAnalyzer()

	// --- Repositories ---
	userRepo := postgres.NewUserRepository(db)
	trainerRepo := postgres.NewTrainerRepository(db)
	nutritionistRepo := postgres.NewNutritionistRepository(db)
	athleteRepo := postgres.NewAthleteRepository(db)
	exerciseRepo := postgres.NewExerciseRepository(db)
	workoutRepo := postgres.NewWorkoutRepository(db)
	foodRepo := postgres.NewFoodRepository(db)
	nutritionRepo := postgres.NewNutritionRepository(db)
	progressRepo := postgres.NewProgressRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	resetRepo := postgres.NewPasswordResetRepository(db)
	analysisRepo := postgres.NewAnalysisRepository(db)

	// --- Services ---
	notificationService := service.NewNotificationService(notificationRepo, messageRepo, userRepo, log)
	authService := service.NewAuthService(userRepo, resetRepo, mailer, log, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.SMTP.BaseURL)
	userService := service.NewUserService(userRepo, athleteRepo, trainerRepo, nutritionistRepo)
	trainerService := service.NewTrainerService(userRepo, trainerRepo, notificationService, log)
	nutritionistService := service.NewNutritionistService(userRepo, nutritionistRepo, notificationService, log)
	workoutService := service.NewWorkoutService(workoutRepo, exerciseRepo, trainerRepo, athleteRepo, userRepo, notificationService, mailer, log)
	nutritionService := service.NewNutritionService(nutritionRepo, foodRepo, nutritionistRepo, athleteRepo, analysisRepo, analyzer, notificationService, log)
	progressService := service.NewProgressService(progressRepo, athleteRepo, fileStorage, log)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, trainerRepo, nutritionistRepo, gateway, notificationService, mailer, log)

	// --- Background sweep ---
	// Reads already derive the expired state; the sweep persists it.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(subscriptionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := subscriptionService.ExpireOverdue(sweepCtx); err != nil {
					log.WithError(err).Error("subscription expiry sweep failed")
				}
			}
		}
	}()

	// --- HTTP ---
	router := gin.Default()
	handlers := api.NewHandlers(
		authService,
		userService,
		trainerService,
		nutritionistService,
		workoutService,
		nutritionService,
		progressService,
		notificationService,
		subscriptionService,
		cfg.Payment.WebhookSecret,
		log,
	)
	api.SetupRoutes(router, cfg.JWT.Secret, handlers)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	log.Info("server stopped")
}
