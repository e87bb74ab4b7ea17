package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/relayo-api/internal/config"
	"github.com/dimitrije/relayo-api/internal/crypto"
	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/handlers"
	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/metrics"
	authmw "github.com/dimitrije/relayo-api/internal/middleware"
	"github.com/dimitrije/relayo-api/internal/oauth"
	"github.com/dimitrije/relayo-api/internal/providers/google"
	"github.com/dimitrije/relayo-api/internal/providers/twilio"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/internal/sse"
	"github.com/dimitrije/relayo-api/internal/syncer"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatalw("failed to run migrations", "error", err)
	}

	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		logger.Fatalw("failed to init credential cipher", "error", err)
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		logger.Fatalw("failed to init token verifier", "error", err)
	}

	workspaceService := services.NewWorkspaceService(db)
	userService := services.NewUserService(db)
	integrationService := services.NewIntegrationService(db, cipher)
	customerService := services.NewCustomerService(db)
	reservationService := services.NewReservationService(db)
	messageService := services.NewMessageService(db)
	statsService := services.NewStatsService(db)
	emailService := services.NewEmailService(cfg.SMTP)

	googleProvider := oauth.NewGoogleProvider(cfg.Google)
	googleClient := google.NewClient(googleProvider, integrationService, logger)

	smsService := services.NewSMSService(integrationService, customerService, messageService, twilio.NewSender())
	bookingService := services.NewBookingService(services.BookingDeps{
		Integrations: integrationService,
		Customers:    customerService,
		Reservations: reservationService,
		Workspaces:   workspaceService,
		SMS:          smsService,
		Email:        emailService,
		Calendar:     googleClient,
		Sheets:       googleClient,
		Logger:       logger,
		Location:     cfg.Location(),
	})
	orchestrator := syncer.New(integrationService, reservationService, googleClient, googleClient, logger)

	hub := sse.NewHub()
	go hub.Run()

	states := oauth.NewStateStore(10 * time.Minute)
	go states.Cleanup(ctx, time.Minute)

	var consent handlers.ConsentProvider
	if cfg.GoogleConfigured() {
		consent = googleProvider
	} else {
		logger.Warnw("google oauth client not configured, calendar connect disabled")
	}

	userHandler := handlers.NewUserHandler(userService, workspaceService)
	customerHandler := handlers.NewCustomerHandler(customerService, messageService)
	reservationHandler := handlers.NewReservationHandler(reservationService, bookingService)
	messageHandler := handlers.NewMessageHandler(messageService, smsService)
	statsHandler := handlers.NewStatsHandler(statsService)
	integrationHandler := handlers.NewIntegrationHandler(integrationService, consent, states, cfg.DashboardURL, logger)
	syncHandler := handlers.NewSyncHandler(orchestrator, logger)
	sseHandler := handlers.NewSSEHandler(hub)
	webhookHandler := handlers.NewWebhookHandler(smsService, hub, cfg.Twilio.WebhookAuthToken, cfg.BaseURL, logger)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.DashboardURL},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})
	api.Get("/integrations/google/callback", integrationHandler.GoogleCallback)
	api.Post("/webhooks/twilio/sms", webhookHandler.TwilioSMS)

	protected := api.Group("")
	protected.Use(authmw.Auth(verifier, userService, logger))

	protected.Get("/me", userHandler.GetMe)
	protected.Patch("/workspace", userHandler.RenameWorkspace)

	protected.Get("/customers", customerHandler.List)
	protected.Post("/customers", customerHandler.Create)
	protected.Get("/customers/:customerId/messages", customerHandler.Messages)

	protected.Get("/reservations", reservationHandler.List)
	protected.Post("/reservations", reservationHandler.Create)
	protected.Patch("/reservations/:id", reservationHandler.Update)
	protected.Delete("/reservations/:id", reservationHandler.Delete)
	protected.Get("/calendar/events", reservationHandler.CalendarEvents)

	protected.Get("/messages", messageHandler.Conversations)
	protected.Post("/messages/sms", messageHandler.SendSMS)

	protected.Get("/stats", statsHandler.Get)

	protected.Get("/integrations", integrationHandler.List)
	protected.Get("/integrations/google/init", integrationHandler.GoogleInit)
	protected.Patch("/integrations/google", integrationHandler.UpdateGoogle)
	protected.Post("/integrations/twilio", integrationHandler.SaveTwilio)

	protected.Post("/sync/run", syncHandler.Run)

	protected.Get("/events", sseHandler.Connect)

	if cfg.MetricsEnabled {
		promHandler := metrics.Handler()
		app.Get("/metrics", func(c *drift.Context) {
			promHandler.ServeHTTP(c.Response, c.Request)
		})
	}

	if cfg.SyncInterval > 0 {
		go runSyncLoop(ctx, orchestrator, bookingService, cfg.SyncInterval, logger)
	}

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		logger.Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := app.Run(addr); err != nil {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infow("shutting down server")
}

func newVerifier(ctx context.Context, cfg *config.Config) (services.TokenVerifier, error) {
	if cfg.UsesOIDC() {
		return services.NewOIDCVerifier(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.Audience)
	}
	return services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry), nil
}

// runSyncLoop reconciles calendars and sends due reminders in-process on a
// fixed interval, for deployments that do not schedule relayo-sync
// externally.
func runSyncLoop(ctx context.Context, orchestrator *syncer.Orchestrator, bookings *services.BookingService, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			synced, err := orchestrator.Run(ctx)
			if err != nil {
				logger.Errorw("scheduled sync failed", "error", err)
			} else {
				logger.Infow("scheduled sync finished", "integrations", synced)
			}

			reminded, err := bookings.SendReminders(ctx, time.Now())
			if err != nil {
				logger.Errorw("scheduled reminders failed", "error", err)
				continue
			}
			logger.Infow("scheduled reminders sent", "count", reminded)
		}
	}
}
