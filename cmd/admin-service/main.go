package main

import (
	"context"
	"errors"
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
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/civicpulse/feedback-platform/pkg/feedback"
	"github.com/civicpulse/feedback-platform/pkg/gateway/auth"
	"github.com/civicpulse/feedback-platform/pkg/gateway/middleware"
	"github.com/civicpulse/feedback-platform/pkg/gateway/routes"
	"github.com/civicpulse/feedback-platform/pkg/observability/metrics"
	"github.com/civicpulse/feedback-platform/pkg/privacy"
	"github.com/civicpulse/feedback-platform/pkg/questionnaire"
	"github.com/civicpulse/feedback-platform/pkg/stats"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init("admin-service")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	feedbackRepo := feedback.NewRepository(db)
	if err := feedbackRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate feedback tables")
	}

	catalog, err := questionnaire.Load(cfg.QuestionCatalogPath)
	if err != nil {
		logger.Log.WithError(err).Warn("question catalog unavailable, using built-in questionnaire")
	}

	rules, err := privacy.LoadRules(cfg.PrivacyRulesPath)
	if err != nil {
		logger.Log.WithError(err).Warn("privacy rules unavailable, using defaults")
		rules = privacy.DefaultRules()
	}
	masker, err := privacy.NewMasker(rules)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to compile privacy rules")
	}

	cache := stats.NewCache(database.GetRedis(), cfg.StatsCacheTTL)
	statsService := stats.NewService(feedbackRepo, cache, catalog, cfg.StatsTopReasons)
	statsHandler := stats.NewHandler(statsService, masker)

	idp, err := auth.NewIdPAuthenticator(cfg.IdPIssuer, cfg.IdPClientID, cfg.IdPClientSecret, cfg.AdminRequestTimeout)
	if err != nil {
		logger.Log.WithError(err).Fatal("identity provider misconfigured")
	}
	authHandler := routes.NewAuthHandler(idp)

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

	authAPI := router.PathPrefix("/api/v1/auth").Subrouter()
	authHandler.Register(authAPI)

	adminAPI := router.PathPrefix("/api/v1/admin").Subrouter()
	adminAPI.Use(middleware.Authenticate(idp))
	adminAPI.Use(middleware.RateLimit(cfg.AdminRateLimitRPS, cfg.AdminRateLimitBurst))
	statsHandler.Register(adminAPI)

	var handler http.Handler = router
	handler = middleware.BodyLimit(cfg.MaxRequestBody)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)

	// Drop cached aggregates whenever a new submission lands.
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumer := kafka.NewConsumer(cfg.FeedbackTopic, cfg.KafkaGroupID)
	go func() {
		err := consumer.Consume(consumerCtx, func(ctx context.Context, event models.Event) error {
			if event.Type == models.EventFeedbackSubmitted {
				cache.Invalidate(ctx)
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.WithError(err).Error("Feedback event consumer stopped")
		}
	}()

	address := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.AdminPort)
	server := &http.Server{
		Addr:         address,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithField("addr", address).Info("Admin service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start admin service")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down admin service...")
	stopConsumer()
	consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Admin service forced to shutdown")
	}
	logger.Log.Info("Admin service stopped")
}
