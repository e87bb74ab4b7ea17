package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/relayo-api/internal/config"
	"github.com/dimitrije/relayo-api/internal/crypto"
	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/oauth"
	"github.com/dimitrije/relayo-api/internal/providers/google"
	"github.com/dimitrije/relayo-api/internal/providers/twilio"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send reminders for tomorrow's appointments",
	Long: `Send one reminder per confirmed appointment starting within the next 24 hours.
Customers are texted when the workspace has Twilio connected and emailed otherwise.`,
	Args: cobra.NoArgs,
	RunE: runRemind,
}

func init() {
	rootCmd.AddCommand(remindCmd)
}

type reminderSender interface {
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

func runRemind(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	cipher, err := crypto.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to init credential cipher: %w", err)
	}

	integrationService := services.NewIntegrationService(db, cipher)
	customerService := services.NewCustomerService(db)
	messageService := services.NewMessageService(db)
	googleClient := google.NewClient(oauth.NewGoogleProvider(cfg.Google), integrationService, logger)

	bookings := services.NewBookingService(services.BookingDeps{
		Integrations: integrationService,
		Customers:    customerService,
		Reservations: services.NewReservationService(db),
		Workspaces:   services.NewWorkspaceService(db),
		SMS:          services.NewSMSService(integrationService, customerService, messageService, twilio.NewSender()),
		Email:        services.NewEmailService(cfg.SMTP),
		Calendar:     googleClient,
		Sheets:       googleClient,
		Logger:       logger,
		Location:     cfg.Location(),
	})

	return sendReminders(ctx, bookings, time.Now(), logger)
}

func sendReminders(ctx context.Context, sender reminderSender, now time.Time, logger *logging.Logger) error {
	sent, err := sender.SendReminders(ctx, now)
	if err != nil {
		return fmt.Errorf("reminders failed: %w", err)
	}
	logger.Infow("reminders sent", "count", sent)
	return nil
}
