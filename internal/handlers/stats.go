package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/relayo-api/internal/middleware"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type StatsHandler struct {
	statsService StatsServiceInterface
	now          func() time.Time
}

func NewStatsHandler(statsService StatsServiceInterface) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		now:          time.Now,
	}
}

func (h *StatsHandler) Get(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	stats, err := h.statsService.Get(context.Background(), workspaceID, h.now())
	if err != nil {
		c.InternalServerError("failed to fetch stats")
		return
	}

	_ = c.JSON(200, stats)
}
