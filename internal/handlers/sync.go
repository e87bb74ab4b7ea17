package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type SyncHandler struct {
	runner SyncRunner
	logger *logging.Logger
}

func NewSyncHandler(runner SyncRunner, logger *logging.Logger) *SyncHandler {
	return &SyncHandler{
		runner: runner,
		logger: logger,
	}
}

// Run reconciles every connected calendar, not only the caller's.
func (h *SyncHandler) Run(c *drift.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	synced, err := h.runner.Run(ctx)
	if err != nil {
		h.logger.Errorw("sync run failed", "error", err)
		c.InternalServerError("sync failed")
		return
	}

	_ = c.JSON(200, dto.SyncResponse{Success: true, Synced: synced})
}
