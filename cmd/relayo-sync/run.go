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
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/internal/syncer"
	"github.com/spf13/cobra"
)

var interval time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a calendar sync pass",
	Long: `Run one reconciliation pass over every connected calendar.
With --interval the pass repeats until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	runCmd.Flags().DurationVar(&interval, "interval", 0, "repeat the sync on this interval (e.g. 15m); 0 runs once")
	rootCmd.AddCommand(runCmd)
}

type syncRunner interface {
	Run(ctx context.Context) (int, error)
}

func runSync(cmd *cobra.Command, args []string) error {
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
	reservationService := services.NewReservationService(db)
	googleClient := google.NewClient(oauth.NewGoogleProvider(cfg.Google), integrationService, logger)

	orchestrator := syncer.New(integrationService, reservationService, googleClient, googleClient, logger)

	return runLoop(ctx, orchestrator, interval, logger)
}

// runLoop runs one pass, then keeps going every interval until ctx is done.
// A zero interval returns after the first pass with its error.
func runLoop(ctx context.Context, runner syncRunner, every time.Duration, logger *logging.Logger) error {
	synced, err := runner.Run(ctx)
	if every <= 0 {
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		logger.Infow("sync finished", "integrations", synced)
		return nil
	}
	logPass(logger, synced, err)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infow("sync loop stopped")
			return nil
		case <-ticker.C:
			synced, err := runner.Run(ctx)
			logPass(logger, synced, err)
		}
	}
}

func logPass(logger *logging.Logger, synced int, err error) {
	if err != nil {
		logger.Errorw("sync failed", "error", err)
		return
	}
	logger.Infow("sync finished", "integrations", synced)
}
