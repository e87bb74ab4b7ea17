package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/google/uuid"
)

// RevenuePerBooking is the flat amount each confirmed booking contributes to
// the weekly revenue figure until reservations carry a price.
const RevenuePerBooking = 50

type StatsService struct {
	db *database.DB
}

func NewStatsService(db *database.DB) *StatsService {
	return &StatsService{db: db}
}

// Get computes the dashboard counters relative to now. Days start at local
// midnight of now's location and weeks start on Sunday.
func (s *StatsService) Get(ctx context.Context, workspaceID uuid.UUID, now time.Time) (*models.DashboardStats, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)

	var stats models.DashboardStats
	var weekConfirmed int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM reservations WHERE workspace_id = $1 AND start_time >= $2 AND start_time < $3),
			(SELECT COUNT(*) FROM reservations WHERE workspace_id = $1 AND status = $4),
			(SELECT COUNT(*) FROM customers WHERE workspace_id = $1),
			(SELECT COUNT(*) FROM reservations WHERE workspace_id = $1 AND status = $5 AND start_time >= $6 AND start_time < $7)
	`, workspaceID, today, tomorrow, models.StatusPending, models.StatusConfirmed, weekStart, weekEnd,
	).Scan(&stats.TodayBookings, &stats.PendingConfirmations, &stats.TotalCustomers, &weekConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	stats.ThisWeekRevenue = weekConfirmed * RevenuePerBooking
	return &stats, nil
}
