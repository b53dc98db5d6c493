package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tenantry/tenantry/internal/http/handlers"
	imw "github.com/tenantry/tenantry/internal/http/middleware"
	"github.com/tenantry/tenantry/internal/http/web"
	"github.com/tenantry/tenantry/internal/platform/mailer"
	"github.com/tenantry/tenantry/internal/repo/postgres"
	"github.com/tenantry/tenantry/internal/service"
	"github.com/tenantry/tenantry/pkg/config"
	"github.com/tenantry/tenantry/pkg/database"
	"github.com/tenantry/tenantry/pkg/events"
	"github.com/tenantry/tenantry/pkg/logger"
	mw "github.com/tenantry/tenantry/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns, cfg.Database.MaxLifetime)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	mailSvc := buildMailer(cfg)

	// Repositories
	invitationRepo := postgres.NewInvitationRepo(pool)
	maintenanceRepo := postgres.NewMaintenanceRepo(pool)
	tenantRepo := postgres.NewTenantRepo(pool)
	directoryRepo := postgres.NewDirectoryRepo(pool)

	// Services
	notifier := service.NewNotifier(mailSvc)
	invitationSvc := service.NewInvitationService(invitationRepo, tenantRepo, directoryRepo, mailSvc, eventBus, cfg)
	maintenanceSvc := service.NewMaintenanceService(maintenanceRepo, tenantRepo, directoryRepo, notifier, mailSvc, eventBus, cfg)
	authSvc := service.NewAuthService(directoryRepo, cfg)

	pages, err := web.NewRenderer()
	if err != nil {
		logger.Error("Failed to parse page templates", "error", err)
		os.Exit(1)
	}

	// Handlers
	invitationHandler := handlers.NewInvitationHandler(invitationSvc)
	confirmHandler := handlers.NewMaintenanceConfirmHandler(maintenanceSvc, pages)
	landlordHandler := handlers.NewLandlordHandler(invitationSvc, maintenanceSvc)
	authHandler := handlers.NewAuthHandler(authSvc)

	rateLimiter := imw.NewRateLimiter(redisClient, imw.RateLimitConfig{
		Requests: cfg.Auth.RateLimitMax,
		Window:   cfg.Auth.RateLimitWindow,
	})

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Token-credential endpoints: no session auth, rate limited.
	r.With(rateLimiter.Middleware()).Mount("/v1/invitations", invitationHandler.Routes())
	r.With(rateLimiter.Middleware()).Get("/confirm", confirmHandler.Confirm)

	r.Mount("/v1/auth", authHandler.Routes())

	r.Route("/v1/landlord", func(r chi.Router) {
		r.Use(imw.RequireRole("landlord", cfg.Auth.JWTSecret))
		r.Mount("/", landlordHandler.Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	if cfg.Email.DevMode {
		return mailer.NewDevMailer()
	}
	if cfg.Email.MailerSendKey != "" {
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	}
	return mailer.NewSMTPMailer(
		cfg.Email.SMTPHost, cfg.Email.SMTPPort,
		cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass,
		cfg.Email.SMTPUseTLS,
	)
}
