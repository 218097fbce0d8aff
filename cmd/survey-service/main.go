package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/config"
	"github.com/civicpulse/feedback-platform/pkg/common/database"
	"github.com/civicpulse/feedback-platform/pkg/common/kafka"
	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/feedback"
	"github.com/civicpulse/feedback-platform/pkg/gateway/middleware"
	"github.com/civicpulse/feedback-platform/pkg/observability/metrics"
	"github.com/civicpulse/feedback-platform/pkg/questionnaire"
	"github.com/civicpulse/feedback-platform/pkg/token"
	"github.com/civicpulse/feedback-platform/pkg/verification"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init("survey-service")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	tokenRepo := token.NewRepository(db)
	if err := tokenRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate token tables")
	}
	feedbackRepo := feedback.NewRepository(db)
	if err := feedbackRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate feedback tables")
	}

	catalog, err := questionnaire.Load(cfg.QuestionCatalogPath)
	if err != nil {
		logger.Log.WithError(err).Warn("question catalog unavailable, using built-in questionnaire")
	}

	producer := kafka.NewProducer(cfg.FeedbackTopic)
	defer producer.Close()

	tokenService := token.NewService(tokenRepo, cfg.TokenTTL, cfg.PublicOrigin)
	validator := feedback.NewValidator(catalog)
	feedbackService := feedback.NewService(feedbackRepo, tokenService, validator, producer)
	feedbackHandler := feedback.NewHandler(feedbackService)

	verifyService := verification.NewService(tokenService, feedbackRepo)
	verifyHandler := verification.NewHandler(verifyService)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1/survey").Subrouter()
	feedbackHandler.Register(api)
	verifyHandler.Register(api)

	var handler http.Handler = router
	handler = middleware.BodyLimit(cfg.MaxRequestBody)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.SurveyPort)
	server := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("Survey service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start survey service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down survey service...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Survey service forced to shutdown")
	}
	logger.Log.Info("Survey service stopped")
}
