package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"studycon/config"
	"studycon/internal/adapters/auth"
	"studycon/internal/adapters/email"
	deliveryhttp "studycon/internal/delivery/http"
	"studycon/internal/delivery/http/controllers"
	"studycon/internal/delivery/http/middleware"
	"studycon/internal/repository/postgres"
	"studycon/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title StudyCon Matching API
// @version 1.0
// @description Interest-based auto-matching backend for study events: profiles, events, invitations, and matching runs.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	matcher := services.NewMatchingService(eventRepo, userRepo, profileRepo, invitationRepo, logger, services.MatchingConfig{
		Threshold:        cfg.MatchThreshold,
		LimitPerEvent:    cfg.MatchLimitPerEvent,
		RadiusOverrideKm: cfg.RadiusKm,
	})
	eventService := services.NewEventService(eventRepo, userRepo, invitationRepo, matcher, emailService, logger, serviceTimeout)
	profileService := services.NewProfileService(profileRepo, userRepo, matcher, logger, serviceTimeout)
	visibilityService := services.NewVisibilityService(eventRepo, userRepo, invitationRepo, logger)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	requireAuth := middleware.RequireAuth(verifier, logger)

	eventController := controllers.NewEventController(logger, eventService, visibilityService)
	matchingController := controllers.NewMatchingController(logger, matcher)
	profileController := controllers.NewProfileController(logger, profileService)

	mux := deliveryhttp.NewRouter(eventController, matchingController, profileController, requireAuth)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown server", "err", err)
	}
	logger.Info("server stopped")
}
