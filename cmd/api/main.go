// Package main runs the EventHub HTTP server.
//
// @title EventHub API
// @version 1.0
// @description Events catalog, organizer management, reviews, favorites and tickets.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/access"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/calendar"
	"eventhub/internal/adapters/email"
	"eventhub/internal/adapters/throttle"
	"eventhub/internal/adapters/ticketprint"
	deliveryhttp "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
)

const (
	shutdownTimeout = 15 * time.Second
	limiterIdle     = 10 * time.Minute
	bcryptCost      = 12
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	attempts, closeAttempts, err := newAttemptStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAttempts()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	cityRepo := postgres.NewCityRepository(db)
	venueRepo := postgres.NewVenueRepository(db)
	organizerRepo := postgres.NewOrganizerRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	tagRepo := postgres.NewTagRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	favoriteRepo := postgres.NewFavoriteRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)

	// Adapters
	tokens := auth.NewJWT(cfg.JWTSecret)
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	// Services
	timeout := cfg.ContextTimeout
	resolver := access.NewResolver(membershipRepo)
	eventService := services.NewEventService(eventRepo, venueRepo, organizerRepo, reviewRepo, resolver,
		calendar.NewExporter(cfg.PublicBaseURL), loc, timeout)
	organizerService := services.NewOrganizerService(organizerRepo, eventRepo, timeout)
	venueService := services.NewVenueService(venueRepo, cityRepo, eventRepo, resolver, timeout)
	categoryService := services.NewCategoryService(categoryRepo, tagRepo, eventRepo, resolver, timeout)
	reviewService := services.NewReviewService(reviewRepo, eventRepo, timeout)
	favoriteService := services.NewFavoriteService(favoriteRepo, eventRepo, timeout)
	accountService := services.NewAccountService(orderRepo, ticketRepo, ticketprint.NewPrinter(), timeout)
	userService := services.NewUserService(userRepo, cityRepo, timeout)
	authService := services.NewAuthService(userRepo, auth.NewBcryptHasher(bcryptCost), tokens, tokens,
		services.NewEmailService(mailer, renderer, logger),
		services.NewLoginThrottle(attempts, cfg.LoginAttemptLimit, cfg.LoginAttemptTTL),
		services.AuthConfig{
			AccessTokenTTL: cfg.JWTExpiry,
			VerifyTokenTTL: cfg.VerifyTokenTTL,
			PublicBaseURL:  cfg.PublicBaseURL,
		}, logger, timeout)

	limiter := middleware.NewRateLimiter(cfg.APIRateLimitRPS, cfg.APIRateLimitBurst, limiterIdle)
	go limiter.Run(time.Minute)
	defer limiter.Stop()

	router := deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
		Logger:         logger,
		Tokens:         tokens,
		Principals:     userService,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		API:            controllers.NewAPIController(logger, eventService, categoryService, venueService, reviewService),
		Events:         controllers.NewEventController(logger, eventService),
		Catalog:        controllers.NewCatalogController(logger, organizerService, venueService, categoryService),
		Engagement:     controllers.NewEngagementController(logger, reviewService, favoriteService),
		Account:        controllers.NewAccountController(logger, accountService),
		Auth:           controllers.NewAuthController(logger, authService),
		Users:          controllers.NewUserController(logger, userService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newAttemptStore uses Redis when REDIS_ADDR is set and process memory otherwise.
func newAttemptStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.AttemptStore, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set; login attempts are counted in memory")
		return throttle.NewMemoryStore(), func() {}, nil
	}
	client, err := throttle.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	logger.Info("redis connected", "addr", cfg.RedisAddr)
	return throttle.NewRedisStore(client), func() { _ = client.Close() }, nil
}
